// Package cli — sync.go implements the "stevedore sync" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewSyncCommand creates the "sync" cobra command.
func NewSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile tracked state with the container runtime",
		Long: `Reconcile the state document against the container runtime's
inventory. Units whose containers changed outside this tool get their
recorded status corrected; units whose containers are gone are marked
removed. Records are never deleted by sync.

Examples:
  stevedore sync`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			report, err := app.engine.Sync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Reconciled %d tracked unit(s): %d updated, %d missing\n",
				report.Tracked, report.Updated, report.Missing)
			return nil
		},
	}
}
