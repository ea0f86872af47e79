// errors.go defines the failure taxonomy surfaced by the lifecycle
// controller and its collaborators. Each kind is a distinct error type so
// callers can branch with errors.As without string matching.
//
// Remediation hints carried by RuntimeCommandFailedError are advisory
// presentation data: they never change the success/failure verdict.
package model

import "fmt"

// ConfigInvalidError reports a configuration document that could not be
// read or parsed, or that is missing a required field.
type ConfigInvalidError struct {
	Source string
	Reason string
	Err    error
}

func (e *ConfigInvalidError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid config %q: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid config %q: %s", e.Source, e.Reason)
}

func (e *ConfigInvalidError) Unwrap() error { return e.Err }

// NoUnitsFoundError reports a configuration document that declares no units.
type NoUnitsFoundError struct {
	Source string
}

func (e *NoUnitsFoundError) Error() string {
	return fmt.Sprintf("no units found in config %q", e.Source)
}

// InvalidNameError reports a unit name that violates the naming rule.
type InvalidNameError struct {
	Name   string
	Reason string
}

func (e *InvalidNameError) Error() string {
	return fmt.Sprintf("invalid unit name %q: %s", e.Name, e.Reason)
}

// AlreadyExistsError reports a generate conflict: the resolved runtime
// identifier already denotes an existing container and force was not set.
// This is recoverable only via explicit caller intent (the force flag);
// it is never silently overridden.
type AlreadyExistsError struct {
	Name string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("unit %q already exists (use force to overwrite)", e.Name)
}

// NotFoundError reports an operation against a unit that neither the state
// store nor the runtime knows about.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unit %q not found", e.Name)
}

// RemovalFailedError reports that a forced overwrite could not remove the
// pre-existing container within the bounded retry budget.
type RemovalFailedError struct {
	Name     string
	Attempts int
	Err      error
}

func (e *RemovalFailedError) Error() string {
	return fmt.Sprintf("failed to remove existing unit %q after %d attempts: %v", e.Name, e.Attempts, e.Err)
}

func (e *RemovalFailedError) Unwrap() error { return e.Err }

// RuntimeCommandFailedError reports a non-zero exit from the container
// runtime. Hint, when non-empty, is an actionable suggestion derived from
// known substrings in the captured output.
type RuntimeCommandFailedError struct {
	Operation Operation
	Subject   string
	ExitCode  int
	Output    string
	Hint      string
}

func (e *RuntimeCommandFailedError) Error() string {
	msg := fmt.Sprintf("runtime command failed for %s %s (exit %d)", e.Operation, e.Subject, e.ExitCode)
	if e.Output != "" {
		msg += ": " + e.Output
	}
	return msg
}

// UnsupportedDialectError reports a configuration dialect the controller
// cannot dispatch on. It exists for exhaustiveness; the closed dialect enum
// makes it unreachable in practice.
type UnsupportedDialectError struct {
	Dialect string
}

func (e *UnsupportedDialectError) Error() string {
	return fmt.Sprintf("unsupported config dialect %q", e.Dialect)
}
