package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geowise/station-healthcheck/internal/report"
)

type AnalyzeCmd struct{}

func NewAnalyzeCmd() *AnalyzeCmd {
	return &AnalyzeCmd{}
}

func (c *AnalyzeCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze FILE...",
		Short: "Run the detectors over exported files and print the findings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			asJSON, err := cmd.Flags().GetBool("json")
			if err != nil {
				return fmt.Errorf("failed to get json flag: %w", err)
			}
			opts, err := readOptions(cmd)
			if err != nil {
				return err
			}

			tables, err := readFiles(args)
			if err != nil {
				return err
			}
			svc, err := newAnalysisService(opts, nil)
			if err != nil {
				return err
			}
			defer svc.Close()

			results, err := svc.AnalyzeAll(cmd.Context(), tables, opts.detect)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]interface{}{"files": results})
			}

			report.WriteSummary(out, results)
			for _, fr := range results {
				if fr.Results.AnomalyCount() == 0 {
					continue
				}
				fmt.Fprintf(out, "\n%s\n", fr.File)
				report.WriteFindings(out, fr)
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "print the results as JSON")

	return cmd
}
