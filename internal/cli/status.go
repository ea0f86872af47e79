// Package cli — status.go implements the "stevedore status" command.
//
// Status reconciles the state document against the runtime first, so the
// printed summary reflects what the runtime actually has rather than the
// last recorded operation. A failing reconciliation degrades to the
// stored view instead of failing the command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatusCommand creates the "status" cobra command.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show tracked units and their current status",
		Long: `Show the tracked units, their statuses, the operation history, and
the last-used pointers. Statuses are reconciled against the container
runtime before printing.

Examples:
  stevedore status`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			if _, err := app.engine.Sync(cmd.Context()); err != nil {
				app.logger.Warn().Err(err).Msg("reconciliation failed; showing stored state")
			}

			summary, err := app.store.Summary()
			if err != nil {
				return err
			}
			fmt.Print(summary)
			return nil
		},
	}
}
