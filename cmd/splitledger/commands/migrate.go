package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/storage/sqlite"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
			if err := sqlite.RunMigrations(cfg.DBPath); err != nil {
				return err
			}
			slog.Info("Database is up to date", "database", cfg.DBPath)
			return nil
		},
	}
}
