package commands

import (
	"github.com/spf13/cobra"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/pkg/logging"
)

var (
	cfg *config.Config

	dbPath   string
	logLevel string
)

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "splitledger",
		Short:        "Shared expense ledger: who owes whom",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := config.Load()
			if err != nil {
				return err
			}
			if dbPath != "" {
				loaded.DBPath = dbPath
			}
			if logLevel != "" {
				loaded.LogLevel = logLevel
			}
			cfg = loaded

			logging.Setup(cfg.LogLevel)
			return nil
		},
	}

	root.PersistentFlags().StringVar(&dbPath, "db", "", "database path (default $DB_PATH or ./data/ledger.db)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default $LOG_LEVEL)")

	root.AddCommand(serveCmd(), migrateCmd(), balancesCmd())
	return root
}
