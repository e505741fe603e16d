package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/puskesmas-merdeka/simpus-api/internal/app"
	"github.com/puskesmas-merdeka/simpus-api/internal/repository/postgres"
	"github.com/puskesmas-merdeka/simpus-api/pkg/metrics"
)

func migrateCmd(load loader) *cobra.Command {
	var seed bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			db, err := postgres.NewDB(cfg.Database.DSN())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := postgres.Migrate(ctx, db); err != nil {
				return err
			}
			log.Info().Str("database", cfg.Database.Name).Msg("schema applied")

			if !seed {
				return nil
			}
			n, err := app.SeedDatabase(ctx, db, metrics.NewMetrics(app.Namespace, nil))
			if err != nil {
				return fmt.Errorf("failed to seed database: %w", err)
			}
			if n == 0 {
				log.Info().Msg("database already holds patients, seed skipped")
				return nil
			}
			log.Info().Int("patients", n).Msg("demo data seeded")
			return nil
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "Load the demo fixtures into an empty database")
	return cmd
}
