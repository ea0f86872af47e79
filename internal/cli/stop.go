// Package cli — stop.go implements the "stevedore stop" command.
//
// The default stop is graceful: the runtime grants the configured grace
// period before escalating to a kill. With --force the container is
// killed immediately.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/stevedore/internal/lifecycle"
)

// NewStopCommand creates the "stop" cobra command.
func NewStopCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "stop <unit>",
		Short: "Stop a running unit",
		Long: `Stop the container of a unit. Data and configuration are preserved
and the unit can be started again later.

Stopping a unit that is not running is a no-op success.

Examples:
  stevedore stop web
  stevedore stop --force web`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := newApp()
			if err != nil {
				return err
			}
			if err := app.ctrl.Stop(cmd.Context(), args[0], lifecycle.StopOptions{Force: force}); err != nil {
				return err
			}
			fmt.Printf("Unit %q stopped\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Kill the container instead of stopping it gracefully")

	return cmd
}
