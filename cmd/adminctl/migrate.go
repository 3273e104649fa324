package main

import (
	"github.com/spf13/cobra"

	"github.com/noah-isme/church-events-api/pkg/database"
)

func newMigrateCmd(rt *runtime) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "migrations directory (default: embedded migrations)")

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return database.Migrate(rt.cfg.Database.URL(), migrationsDir(dir, rt), rt.logger)
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return database.Rollback(rt.cfg.Database.URL(), migrationsDir(dir, rt), rt.logger)
		},
	})
	return cmd
}

func migrationsDir(flag string, rt *runtime) string {
	if flag != "" {
		return flag
	}
	return rt.cfg.Database.MigrationsDir
}
