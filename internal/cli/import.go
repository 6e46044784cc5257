package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/geowise/station-healthcheck/internal/ingest"
	"github.com/geowise/station-healthcheck/internal/storage"
)

type ImportCmd struct{}

func NewImportCmd() *ImportCmd {
	return &ImportCmd{}
}

func (c *ImportCmd) Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import STATION_ID FILE",
		Short: "Store an exported file as the readings of a station",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dsn, err := cmd.Flags().GetString("dsn")
			if err != nil {
				return fmt.Errorf("failed to get dsn flag: %w", err)
			}
			if dsn == "" {
				return fmt.Errorf("no database: set --dsn or DATABASE_DSN")
			}
			opts, err := readOptions(cmd)
			if err != nil {
				return err
			}

			t, err := ingest.ReadFile(args[1])
			if err != nil {
				return err
			}

			db, err := storage.NewPostgresDB(dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			svc, err := newAnalysisService(opts, storage.NewPostgresRepository(db))
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := svc.ImportStation(cmd.Context(), args[0], t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d rows into %s\n", len(t.Rows), args[0])
			return nil
		},
	}

	cmd.Flags().String("dsn", os.Getenv("DATABASE_DSN"), "PostgreSQL connection string")

	return cmd
}
