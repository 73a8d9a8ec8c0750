package main

import (
	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-loans-go/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the PostgreSQL tables, constraints, and indexes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requirePostgres("migrate"); err != nil {
			return err
		}

		store, closeStore, err := openPostgres(cmd.Context(), cfg, logging.NewZerologLogger(logger))
		if err != nil {
			return err
		}
		defer closeStore()

		return store.Migrate(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
