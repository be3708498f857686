package main

import (
	"fmt"

	"github.com/Freeeeeet/sessions_bot/internal/app"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and print the schema version",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		defer logger.Sync()

		if cfg.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for migrate")
		}

		ctx := cmd.Context()
		pool, err := openPool(ctx, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		migrator, err := app.NewMigrator(pool, cfg.MigrationsDir, logger)
		if err != nil {
			return err
		}
		defer migrator.Close()

		if err := migrator.Run(ctx); err != nil {
			return err
		}

		version, err := migrator.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "schema version: %d\n", version)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
