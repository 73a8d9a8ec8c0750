package main

import (
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/internal/logging"
	"github.com/AntonStoeckl/library-loans-go/internal/seed"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Register the sample users and books",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePostgres("seed"); err != nil {
			return err
		}

		ctx := cmd.Context()
		log := logging.NewZerologLogger(logger)

		store, closeStore, err := openStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		l, err := newLedger(store, cfg, log)
		if err != nil {
			return err
		}

		report, err := seed.Run(ctx, l)
		if err != nil {
			return err
		}

		return printJSON(cmd, report)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}
