package main

import (
	"fmt"
	"os"

	"notes-marketplace-api/internal/config"
	"notes-marketplace-api/internal/database"
	"notes-marketplace-api/pkg/logging"

	"github.com/spf13/cobra"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:     "marketctl",
		Short:   "Operator tooling for the notes marketplace",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = database.CloseDatabase()
			logging.Sync()
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(adminCmd())
	rootCmd.AddCommand(salesCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() error {
	if err := config.InitConfig(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	logging.InitLogging()
	if err := database.InitDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return nil
}
