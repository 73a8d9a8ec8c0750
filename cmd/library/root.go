package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/config"
	"github.com/AntonStoeckl/library-loans-go/internal/logging"
)

var (
	configPath string
	envFile    string

	cfg    config.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "library",
	Short: "Library loan ledger",
	Long: `Tracks books, users, and loans and keeps the book availability and
per-user active loan counters consistent with the set of active loans.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var envFiles []string
		if envFile != "" {
			envFiles = append(envFiles, envFile)
		}

		loaded, err := config.Load(configPath, envFiles...)
		if err != nil {
			return err
		}

		if err = loaded.Validate(); err != nil {
			return err
		}

		cfg = loaded
		logger = logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Console)

		return setupTelemetry(cmd.Context(), cfg.Observability)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return finishTelemetry()
	},
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	err := rootCmd.Execute()

	if shutdownErr := finishTelemetry(); shutdownErr != nil {
		logger.Warn().Err(shutdownErr).Msg("flushing telemetry failed")
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "path to a .env file (default .env)")
}
