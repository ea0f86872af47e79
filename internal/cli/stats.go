// Package cli — stats.go implements the "stevedore stats" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewStatsCommand creates the "stats" cobra command.
func NewStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <unit>",
		Short: "Show a one-shot resource usage snapshot for a unit",
		Long: `Show a single resource usage snapshot (CPU, memory, network, block
I/O) for a unit's container.

Examples:
  stevedore stats web`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			out, err := app.rt.Stats(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}
