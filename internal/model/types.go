package model

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// UnitStatus represents the lifecycle state of a managed container unit.
// The state transitions are:
//
//	absent → created → running ⇄ stopped → absent (removed)
//
// "exited" is a substate of "not running but the container object still
// exists" and is reported distinctly because the runtime distinguishes it.
type UnitStatus string

const (
	// StatusCreated indicates the container exists but has never been started
	// (for example after a generate with --no-start).
	StatusCreated UnitStatus = "created"

	// StatusRunning indicates the container is currently running.
	StatusRunning UnitStatus = "running"

	// StatusStopped indicates the container was stopped by this tool.
	StatusStopped UnitStatus = "stopped"

	// StatusExited indicates the container stopped on its own or was stopped
	// outside this tool; the container object still exists.
	StatusExited UnitStatus = "exited"

	// StatusRemoved indicates the container no longer exists in the runtime.
	// Records in this state are kept for diagnostics until reconciliation
	// or an explicit remove deletes them.
	StatusRemoved UnitStatus = "removed"

	// StatusUnknown indicates the runtime reported a phrase this tool does
	// not recognize.
	StatusUnknown UnitStatus = "unknown"
)

// String returns the string representation of UnitStatus,
// satisfying fmt.Stringer for CLI output and logging.
func (s UnitStatus) String() string {
	return string(s)
}

// IsValid checks whether the UnitStatus value is one of the
// predefined valid states.
func (s UnitStatus) IsValid() bool {
	switch s {
	case StatusCreated, StatusRunning, StatusStopped, StatusExited, StatusRemoved, StatusUnknown:
		return true
	default:
		return false
	}
}

// ParseUnitStatus converts a string to a UnitStatus.
// Returns an error if the string does not match any valid status.
func ParseUnitStatus(s string) (UnitStatus, error) {
	status := UnitStatus(strings.ToLower(s))
	if !status.IsValid() {
		return "", fmt.Errorf("invalid unit status: %q (valid: created, running, stopped, exited, removed, unknown)", s)
	}
	return status, nil
}

// Operation identifies a lifecycle operation recorded against a unit.
type Operation string

const (
	OpCreate  Operation = "CREATE"
	OpStart   Operation = "START"
	OpStop    Operation = "STOP"
	OpRestart Operation = "RESTART"
	OpRemove  Operation = "REMOVE"
	OpSync    Operation = "SYNC"
)

// String returns the string representation of Operation.
func (o Operation) String() string {
	return string(o)
}

// IsValid checks whether the Operation value is one of the
// predefined valid operations.
func (o Operation) IsValid() bool {
	switch o {
	case OpCreate, OpStart, OpStop, OpRestart, OpRemove, OpSync:
		return true
	default:
		return false
	}
}

// UnitRecord is the persisted bookkeeping entry for a single managed unit.
// A record exists only for units the lifecycle controller has operated on:
// it is created on the first successful operation and deleted when the unit
// is explicitly removed or found missing during post-cleanup reconciliation.
type UnitRecord struct {
	// LastOperation is the most recent lifecycle operation applied to the unit.
	LastOperation Operation `json:"last_operation"`

	// LastOperationTime is when LastOperation completed, in UTC RFC3339.
	LastOperationTime time.Time `json:"last_operation_time"`

	// ConfigSource is the path of the configuration document the unit was
	// generated from. Empty for units whose record was created by an
	// operation other than generate.
	ConfigSource string `json:"config_source,omitempty"`

	// RuntimeID is the container ID reported by the runtime, when known.
	RuntimeID string `json:"runtime_id,omitempty"`

	// Status is the last observed lifecycle state of the unit.
	Status UnitStatus `json:"status"`
}

// nameRegex enforces the unit naming rule: the name must start with a letter
// or underscore, followed by alphanumerics, ".", "_", or "-".
var nameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9._-]*$`)

// ValidateName checks if the given name is a valid unit name.
func ValidateName(name string) error {
	if name == "" {
		return &InvalidNameError{Name: name, Reason: "name must not be empty"}
	}
	if !nameRegex.MatchString(name) {
		return &InvalidNameError{
			Name:   name,
			Reason: "must start with a letter or underscore and contain only alphanumerics, '.', '_', '-'",
		}
	}
	return nil
}

// ReadinessOutcome is the three-way result of a readiness probe. The
// distinction between Healthy and RunningNoHealthcheck is deliberate:
// callers rely on knowing whether a passing health check or mere
// process liveness produced the verdict.
type ReadinessOutcome string

const (
	// ReadyHealthy means the unit's health check reported "healthy" before
	// the timeout elapsed.
	ReadyHealthy ReadinessOutcome = "healthy"

	// ReadyRunningNoHealthcheck means no health check was ever observed and
	// the unit was at least running when the timeout elapsed. Absent a
	// health check, "running" is the best available readiness signal.
	ReadyRunningNoHealthcheck ReadinessOutcome = "running-no-healthcheck"

	// NotReady means the unit either has a health check that never reached
	// "healthy" before the timeout, or is not running at all.
	NotReady ReadinessOutcome = "not-ready"
)

// Ready reports whether the outcome counts as a readiness success.
func (o ReadinessOutcome) Ready() bool {
	return o == ReadyHealthy || o == ReadyRunningNoHealthcheck
}

// String returns the string representation of ReadinessOutcome.
func (o ReadinessOutcome) String() string {
	return string(o)
}
