// Package cli implements the healthcheck command line tool.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/geowise/station-healthcheck/internal/detect"
	"github.com/geowise/station-healthcheck/internal/domain"
	"github.com/geowise/station-healthcheck/internal/ingest"
	"github.com/geowise/station-healthcheck/internal/service"
	"github.com/geowise/station-healthcheck/internal/storage"
)

type ExitCode int

const (
	exitCodeSuccess = 0
	exitCodeError   = 1
)

func Run() ExitCode {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		return exitCodeError
	}
	return exitCodeSuccess
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "healthcheck",
		Short:        "Data-quality checks for geotechnical station exports.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := cmd.Help()
			if err != nil {
				return fmt.Errorf("failed to show help: %w", err)
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.BoolP("verbose", "v", false, "set debug logging level")
	flags.Float64("threshold", detect.DefaultLevelShiftThreshold, "level shift threshold between consecutive readings")
	flags.Float64("signal-threshold", detect.DefaultSignalThreshold, "signal readings above this value are flagged")
	flags.Int("min-run", detect.DefaultMinFrozenRun, "minimum repeated readings reported as frozen")
	flags.String("detectors", "all", "comma separated detectors to run")
	flags.Int("workers", 0, "files analyzed in parallel (0 = number of CPUs)")

	rootCmd.AddCommand(
		NewAnalyzeCmd().Command(),
		NewReportCmd().Command(),
		NewSignalCmd().Command(),
		NewImportCmd().Command(),
	)
	return rootCmd
}

// options holds the persistent flags shared by every subcommand.
type options struct {
	verbose bool
	workers int
	detect  detect.Config
}

func readOptions(cmd *cobra.Command) (options, error) {
	flags := cmd.Root().PersistentFlags()
	var opts options
	var err error
	if opts.verbose, err = flags.GetBool("verbose"); err != nil {
		return opts, fmt.Errorf("failed to get verbose flag: %w", err)
	}
	if opts.workers, err = flags.GetInt("workers"); err != nil {
		return opts, fmt.Errorf("failed to get workers flag: %w", err)
	}

	cfg := detect.DefaultConfig()
	if cfg.LevelShiftThreshold, err = flags.GetFloat64("threshold"); err != nil {
		return opts, fmt.Errorf("failed to get threshold flag: %w", err)
	}
	if cfg.SignalThreshold, err = flags.GetFloat64("signal-threshold"); err != nil {
		return opts, fmt.Errorf("failed to get signal-threshold flag: %w", err)
	}
	if cfg.MinFrozenRun, err = flags.GetInt("min-run"); err != nil {
		return opts, fmt.Errorf("failed to get min-run flag: %w", err)
	}
	names, err := flags.GetString("detectors")
	if err != nil {
		return opts, fmt.Errorf("failed to get detectors flag: %w", err)
	}
	if cfg.Detectors, err = detect.ParseToggles(strings.Split(names, ",")); err != nil {
		return opts, err
	}
	if err := cfg.Validate(); err != nil {
		return opts, err
	}
	opts.detect = cfg
	return opts, nil
}

// newAnalysisService builds the service for one command run. stations may be nil.
func newAnalysisService(opts options, stations storage.Repository) (*service.AnalysisService, error) {
	return service.NewAnalysisService(service.AnalysisConfig{
		Logger:   newLogger(opts.verbose),
		Detect:   opts.detect,
		Workers:  opts.workers,
		Stations: stations,
	})
}

func readFiles(paths []string) ([]*domain.Table, error) {
	tables := make([]*domain.Table, 0, len(paths))
	for _, p := range paths {
		t, err := ingest.ReadFile(p)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	}))
}
