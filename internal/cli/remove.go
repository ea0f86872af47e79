// Package cli — remove.go implements the "stevedore remove" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRemoveCommand creates the "remove" cobra command.
func NewRemoveCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "remove <unit>",
		Short: "Remove a unit's container and its state record",
		Long: `Remove the container of a unit and delete its state record.

A running container is stopped gracefully first; with --force the runtime
removes it without a separate stop. Removing a unit that has neither a
container nor a record is a no-op success.

Examples:
  stevedore remove web
  stevedore remove --force web`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if err := app.ctrl.Remove(cmd.Context(), args[0], force); err != nil {
				return err
			}
			fmt.Printf("Unit %q removed\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Remove without a separate graceful stop")

	return cmd
}
