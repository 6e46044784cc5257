package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geowise/station-healthcheck/internal/report"
)

type SignalCmd struct{}

func NewSignalCmd() *SignalCmd {
	return &SignalCmd{}
}

func (c *SignalCmd) Command() *cobra.Command {
	return &cobra.Command{
		Use:   "signal FILE...",
		Short: "Print the signal channels that crossed the threshold, flagged rows first",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			views, err := svc.SignalViews(tables, opts.detect)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, v := range views {
				if i > 0 {
					fmt.Fprintln(out)
				}
				report.WriteSignalView(out, v)
			}
			return nil
		},
	}
}
