// Package cli — prune.go implements the "stevedore prune" command.
//
// Prune is bulk-destructive, so afterwards the state document is
// force-reconciled: records for units whose containers were swept away
// are deleted rather than merely marked removed.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPruneCommand creates the "prune" cobra command.
func NewPruneCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Remove stopped containers and reconcile state",
		Long: `Remove all stopped containers and dangling resources through the
runtime, then reconcile the state document. Records for units whose
containers were pruned are deleted.

Examples:
  stevedore prune`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			out, err := app.rt.Prune(cmd.Context())
			if err != nil {
				return err
			}
			if out != "" {
				fmt.Println(out)
			}

			report, err := app.engine.ForceSyncAfterCleanup(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("Pruned; %d stale record(s) deleted\n", report.Missing)
			return nil
		},
	}
}
