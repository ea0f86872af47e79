// Package cli implements the cobra-based CLI commands for stevedore.
//
// Each subcommand (generate, start, stop, restart, remove, status, sync,
// logs, stats, pull, prune) is defined in its own file within this
// package. This file defines the root command that serves as the parent
// for all subcommands and handles global flags.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/stevedore/internal/model"
)

// verbose raises the log level to debug. It is bound to a persistent
// flag on the root command and therefore available to every subcommand.
var verbose bool

// version, commit, and date are set at build time via ldflags.
// They are injected from the main package to display version information.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// NewRootCommand creates and configures the root cobra command.
// This is the entry point for the entire CLI application.
//
// The root command itself does not perform any action — it only provides
// help text and global flags. Actual functionality is provided by the
// subcommands.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stevedore",
		Short: "Declarative container lifecycle manager",
		Long: `stevedore generates containers from declarative configuration documents
(compose files, stack files, or ad hoc unit lists) and manages them through
their lifecycle: start, stop, restart, remove.

Every operation is recorded in a local state document, and the sync command
reconciles that document against what the container runtime actually has.`,

		// SilenceUsage prevents cobra from printing usage on every error.
		SilenceUsage: true,

		// SilenceErrors prevents cobra from printing errors automatically;
		// Execute formats them itself.
		SilenceErrors: true,

		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, Date),
	}

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(NewGenerateCommand())
	rootCmd.AddCommand(NewStartCommand())
	rootCmd.AddCommand(NewStopCommand())
	rootCmd.AddCommand(NewRestartCommand())
	rootCmd.AddCommand(NewRemoveCommand())
	rootCmd.AddCommand(NewStatusCommand())
	rootCmd.AddCommand(NewSyncCommand())
	rootCmd.AddCommand(NewLogsCommand())
	rootCmd.AddCommand(NewStatsCommand())
	rootCmd.AddCommand(NewPullCommand())
	rootCmd.AddCommand(NewPruneCommand())

	return rootCmd
}

// Execute runs the root command and handles exit codes: zero on success,
// one on any failure. Errors carry their own context; runtime command
// failures additionally surface a remediation hint when one was derived
// from the captured output.
func Execute(rootCmd *cobra.Command) {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)

		var cmdErr *model.RuntimeCommandFailedError
		if errors.As(err, &cmdErr) && cmdErr.Hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", cmdErr.Hint)
		}
		os.Exit(1)
	}
}
