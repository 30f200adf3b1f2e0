package main

import (
	"github.com/spf13/cobra"

	"smartbiz/internal/app"
	"smartbiz/pkg/logger"
)

var idempotencyCmd = &cobra.Command{
	Use:   "idempotency",
	Short: "Idempotency key maintenance",
}

var idempotencyCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete expired idempotency keys once",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend(cmd)
		if err != nil {
			return err
		}
		defer b.Close()

		removed := app.NewHousekeeper(b, 0, logger.Default()).RunOnce(cmd.Context())
		cmd.Printf("removed %d expired keys\n", removed["idempotency"])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(idempotencyCmd)
	idempotencyCmd.AddCommand(idempotencyCleanupCmd)
}
