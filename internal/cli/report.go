package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/geowise/station-healthcheck/internal/report"
	"github.com/geowise/station-healthcheck/internal/service"
)

type ReportCmd struct{}

func NewReportCmd() *ReportCmd {
	return &ReportCmd{}
}

func (c *ReportCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report FILE...",
		Short: "Write the dated fault report for exported files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := cmd.Flags().GetString("output")
			if err != nil {
				return fmt.Errorf("failed to get output flag: %w", err)
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

			doc := service.NewReportService(nil).Build(results)
			path := filepath.Join(dir, doc.FileName)
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("failed to create report: %w", err)
			}
			if err := report.WriteText(f, doc); err != nil {
				f.Close()
				return fmt.Errorf("failed to write report: %w", err)
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", ".", "directory the report is written to")

	return cmd
}
