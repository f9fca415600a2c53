package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/formbff/internal/adapter/driven/sqlstore"
	"github.com/ericfisherdev/formbff/internal/config"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			slog.SetDefault(cfg.NewLogger(os.Stderr))

			db, err := openDatabase(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := db.Close(); closeErr != nil {
					slog.Error("error closing database", "error", closeErr)
				}
			}()

			if err := sqlstore.RunMigrations(db); err != nil {
				return err
			}
			slog.Info("migrations complete")
			return nil
		},
	}
}
