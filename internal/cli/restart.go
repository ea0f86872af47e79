// Package cli — restart.go implements the "stevedore restart" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRestartCommand creates the "restart" cobra command.
func NewRestartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "restart <unit>",
		Short: "Restart a unit",
		Long: `Restart the container of a unit: a graceful stop when it is running,
followed by a start.

Examples:
  stevedore restart web`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if err := app.ctrl.Restart(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Unit %q restarted\n", args[0])
			return nil
		},
	}
}
