// Package cli — logs.go implements the "stevedore logs" command.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogsCommand creates the "logs" cobra command.
func NewLogsCommand() *cobra.Command {
	var tail int

	cmd := &cobra.Command{
		Use:   "logs <unit>",
		Short: "Show a unit's container logs",
		Long: `Show the logs of a unit's container. With --tail only the last N
lines are shown.

Examples:
  stevedore logs web
  stevedore logs --tail 50 web`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}

			out, err := app.rt.Logs(cmd.Context(), args[0], tail)
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&tail, "tail", 0, "Show only the last N lines (0 shows everything)")

	return cmd
}
