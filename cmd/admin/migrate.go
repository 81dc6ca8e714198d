package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/yourusername/galoya-api/internal/config"
)

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Apply all pending schema migrations to the PostgreSQL database.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := e.loadConfig()
			if err != nil {
				return oops.Code("CONFIG_INVALID").Wrap(err)
			}
			if cfg.StorageDriver != config.StorageDriverPostgres {
				return oops.Code("CONFIG_INVALID").Errorf("migrate requires STORAGE_DRIVER=%s", config.StorageDriverPostgres)
			}

			cmd.Println("Running migrations...")
			_, logger, storage, err := e.setup(cmd.Context(), true)
			if err != nil {
				return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
			}
			defer storage.Close()
			_ = logger.Sync()

			cmd.Println("Migrations completed successfully")
			return nil
		},
	}
}
