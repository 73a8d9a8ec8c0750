package main

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/internal/logging"
	"github.com/AntonStoeckl/library-loans-go/ledger"
)

var repairDryRun bool

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Re-derive drifted counters from the active loans and print a JSON report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePostgres("repair"); err != nil {
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

		var report ledger.RepairReport
		if repairDryRun {
			report, err = l.CheckInvariants(ctx)
		} else {
			report, err = l.RepairCounters(ctx)
		}

		if err != nil {
			return err
		}

		return printJSON(cmd, report)
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}

func init() {
	repairCmd.Flags().BoolVar(&repairDryRun, "dry-run", false, "only report drifted counters")
	rootCmd.AddCommand(repairCmd)
}
