// Package cli — pull.go implements the "stevedore pull" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewPullCommand creates the "pull" cobra command.
func NewPullCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pull <image>",
		Short: "Pull an image through the configured runtime",
		Long: `Pull an image so a later generate does not pay the download cost.

Examples:
  stevedore pull nginx:alpine`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			if err := app.rt.Pull(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Pulled %s\n", args[0])
			return nil
		},
	}
}
