// Package cli — start.go implements the "stevedore start" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStartCommand creates the "start" cobra command.
func NewStartCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start <unit>",
		Short: "Start a stopped unit",
		Long: `Start the container of a previously generated unit.

Starting a unit that is already running is a no-op success.

Examples:
  stevedore start web`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if err := app.ctrl.Start(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Unit %q started\n", args[0])
			return nil
		},
	}
}
