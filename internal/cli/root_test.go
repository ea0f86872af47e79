// Package cli — root_test.go verifies the command tree wiring without
// touching a container runtime: every subcommand is registered and the
// flags each one documents actually exist.
package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewRootCommand_RegistersSubcommands verifies the full command set
// is reachable from the root.
func TestNewRootCommand_RegistersSubcommands(t *testing.T) {
	root := NewRootCommand()

	want := []string{
		"generate", "start", "stop", "restart", "remove",
		"status", "sync", "logs", "stats", "pull", "prune",
	}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, cmd.Name())
	}
}

// TestNewRootCommand_PersistentFlags verifies the verbose flag is
// inherited by subcommands.
func TestNewRootCommand_PersistentFlags(t *testing.T) {
	root := NewRootCommand()
	generate, _, err := root.Find([]string{"generate"})
	require.NoError(t, err)

	assert.NotNil(t, generate.InheritedFlags().Lookup("verbose"))
}

// TestGenerateCommand_Flags verifies the generate flag surface.
func TestGenerateCommand_Flags(t *testing.T) {
	cmd := NewGenerateCommand()

	for _, name := range []string{"unit", "force", "no-start", "timeout"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
}

// TestStopCommand_ForceFlag verifies stop exposes the kill variant.
func TestStopCommand_ForceFlag(t *testing.T) {
	assert.NotNil(t, NewStopCommand().Flags().Lookup("force"))
}

// TestCommands_RequireUnitArgument verifies the unit-taking commands
// reject empty argument lists.
func TestCommands_RequireUnitArgument(t *testing.T) {
	for _, cmd := range []string{"start", "stop", "restart", "remove", "logs", "stats"} {
		root := NewRootCommand()
		root.SetArgs([]string{cmd})

		err := root.Execute()

		assert.Error(t, err, cmd)
	}
}
