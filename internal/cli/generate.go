// Package cli — generate.go implements the "stevedore generate" command,
// the primary user-facing operation: realize one unit from a declarative
// configuration document and wait for it to become ready.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/stevedore/internal/lifecycle"
	"github.com/mmr-tortoise/stevedore/internal/model"
)

// generateFlags holds the flag values for the generate command.
type generateFlags struct {
	unit    string // --unit: which declared unit to generate
	force   bool   // --force: remove a conflicting container first
	noStart bool   // --no-start: create without starting
	timeout int    // --timeout: readiness timeout override in seconds
}

// NewGenerateCommand creates the "generate" cobra command.
func NewGenerateCommand() *cobra.Command {
	flags := &generateFlags{}

	cmd := &cobra.Command{
		Use:   "generate <config-file>",
		Short: "Generate a container from a configuration document",
		Long: `Generate a container from a declarative configuration document.

The document may be a compose file, a stack file (compose with top-level
networks), or an ad hoc unit list. Without --unit the first declared unit
is generated. After creation the command waits for the unit to become
ready, using the container's health check when one is configured.

Examples:
  stevedore generate docker-compose.yml
  stevedore generate --unit db --force docker-compose.yml
  stevedore generate --no-start units.yaml
  stevedore generate --timeout 120 deploy.yaml`,

		Args: cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd.Context(), args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.unit, "unit", "", "Unit to generate (default: first declared unit)")
	cmd.Flags().BoolVar(&flags.force, "force", false, "Remove an existing container with the same name first")
	cmd.Flags().BoolVar(&flags.noStart, "no-start", false, "Create the container without starting it")
	cmd.Flags().IntVar(&flags.timeout, "timeout", 0, "Readiness timeout in seconds (default: manifest override or configured default)")

	return cmd
}

// runGenerate wires the probe's progress callback to stderr and delegates
// to the lifecycle controller.
func runGenerate(ctx context.Context, source string, flags *generateFlags) error {
	app, err := newApp()
	if err != nil {
		return err
	}

	probing := false
	app.prober.Progress = func(elapsed time.Duration) {
		probing = true
		fmt.Fprintf(os.Stderr, "\rWaiting for readiness... %ds", int(elapsed.Seconds()))
	}

	result, err := app.ctrl.Generate(ctx, source, lifecycle.GenerateOptions{
		Unit:    flags.unit,
		Force:   flags.force,
		NoStart: flags.noStart,
		Timeout: time.Duration(flags.timeout) * time.Second,
	})
	if probing {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Generated unit %q (container %s, %s dialect)\n", result.Unit, result.RuntimeName, result.Dialect)
	switch {
	case flags.noStart:
		fmt.Println("Container created but not started (--no-start)")
	case result.Outcome == model.ReadyHealthy:
		fmt.Println("Unit is healthy")
	case result.Outcome == model.ReadyRunningNoHealthcheck:
		fmt.Println("Unit is running (no health check configured)")
	default:
		fmt.Printf("Unit did not become ready; last observed status: %s\n", result.Status)
	}
	return nil
}
