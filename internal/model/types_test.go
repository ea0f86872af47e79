package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseUnitStatus verifies that every valid status string round-trips
// through ParseUnitStatus, case-insensitively.
func TestParseUnitStatus(t *testing.T) {
	valid := []string{"created", "running", "stopped", "exited", "removed", "unknown"}
	for _, s := range valid {
		status, err := ParseUnitStatus(s)
		require.NoError(t, err, "status %q should parse", s)
		assert.Equal(t, s, status.String())
	}

	// Uppercase input is normalized to lowercase.
	status, err := ParseUnitStatus("RUNNING")
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, status)
}

// TestParseUnitStatus_Invalid verifies that unrecognized strings are rejected.
func TestParseUnitStatus_Invalid(t *testing.T) {
	_, err := ParseUnitStatus("paused")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid unit status")
}

// TestOperationIsValid verifies the closed set of recognized operations.
func TestOperationIsValid(t *testing.T) {
	for _, op := range []Operation{OpCreate, OpStart, OpStop, OpRestart, OpRemove, OpSync} {
		assert.True(t, op.IsValid(), "operation %q should be valid", op)
	}
	assert.False(t, Operation("DESTROY").IsValid())
}

// TestValidateName exercises the naming rule: must start with a letter or
// underscore, thereafter alphanumerics, '.', '_', '-'.
func TestValidateName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		valid bool
	}{
		{"simple", "web", true},
		{"underscore start", "_internal", true},
		{"mixed separators", "db_primary-v1.2", true},
		{"single letter", "a", true},
		{"empty", "", false},
		{"digit start", "1web", false},
		{"hyphen start", "-web", false},
		{"dot start", ".web", false},
		{"space", "my unit", false},
		{"slash", "web/app", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				var invalid *InvalidNameError
				assert.True(t, errors.As(err, &invalid), "error should be an InvalidNameError")
			}
		})
	}
}

// TestReadinessOutcome_Ready verifies the readiness verdict mapping: both
// a passing health check and running-without-healthcheck count as ready.
func TestReadinessOutcome_Ready(t *testing.T) {
	assert.True(t, ReadyHealthy.Ready())
	assert.True(t, ReadyRunningNoHealthcheck.Ready())
	assert.False(t, NotReady.Ready())
}

// TestErrorTaxonomy_As verifies that each failure kind can be recovered
// from a wrapped error chain with errors.As, which is how the CLI layer
// distinguishes them.
func TestErrorTaxonomy_As(t *testing.T) {
	wrapped := errors.Join(errors.New("outer"), &AlreadyExistsError{Name: "web"})

	var exists *AlreadyExistsError
	require.True(t, errors.As(wrapped, &exists))
	assert.Equal(t, "web", exists.Name)

	cmdErr := &RuntimeCommandFailedError{
		Operation: OpCreate,
		Subject:   "web",
		ExitCode:  125,
		Output:    "port is already allocated",
		Hint:      "another container is using the requested host port",
	}
	assert.Contains(t, cmdErr.Error(), "exit 125")
	assert.Contains(t, cmdErr.Error(), "port is already allocated")
	assert.Equal(t, "another container is using the requested host port", cmdErr.Hint,
		"the hint travels as structured data for the CLI to present")
}

// TestRemovalFailedError_Unwrap verifies the retry-exhaustion error keeps
// the underlying cause reachable via errors.Is.
func TestRemovalFailedError_Unwrap(t *testing.T) {
	cause := errors.New("container is in use")
	err := &RemovalFailedError{Name: "web", Attempts: 3, Err: cause}

	assert.Contains(t, err.Error(), "after 3 attempts")
	assert.True(t, errors.Is(err, cause))
}
