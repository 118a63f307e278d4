package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/shopkeep/internal/config"
	"github.com/Veraticus/shopkeep/internal/storage"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

This command ensures the database has all the tables and indexes the
application needs.`,
		RunE: runMigrate,
	}

	cmd.Flags().Bool("status", false, "Show current migration status without applying changes")

	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	status, _ := cmd.Flags().GetBool("status")
	ctx := cmd.Context()

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	slog.Info("Starting database migration",
		"driver", cfg.Database.Driver,
		"status_only", status)

	a, err := newApp(ctx, cfg, slog.Default(), !status)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	version, err := a.store.SchemaVersion(ctx)
	if err != nil {
		if status {
			version = 0
		} else {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if status {
		fmt.Fprintf(out, "Current version: %d\nLatest version:  %d\n", version, storage.ExpectedSchemaVersion)
		return nil
	}

	fmt.Fprintf(out, "✅ Database schema is at version %d\n", version)
	return nil
}
