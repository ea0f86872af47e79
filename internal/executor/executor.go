// Package executor runs container runtime commands as child processes.
//
// This is the leaf component everything else depends on: it applies a
// timeout, captures combined output and the exit code, measures duration,
// and emits a structured log record for every invocation. It never returns
// a Go error — all failures surface as a non-zero exit code plus captured
// output for the caller to interpret.
package executor

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// TimeoutExitCode is reported when the subprocess was forcibly terminated
// because it exceeded its timeout. 124 follows the coreutils timeout(1)
// convention so callers can distinguish timeouts from runtime failures.
const TimeoutExitCode = 124

// startFailureExitCode is reported when the subprocess could not be
// started at all (binary missing, permission denied on the executable).
const startFailureExitCode = 127

// Result is the outcome of a single command invocation.
type Result struct {
	// Output is the combined stdout and stderr, trimmed of trailing space.
	Output string

	// ExitCode is the subprocess exit code. Zero means success; 124 means
	// the timeout elapsed and the process was killed.
	ExitCode int

	// Duration is the wall-clock time the invocation took.
	Duration time.Duration
}

// Success reports whether the invocation exited cleanly.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// TimedOut reports whether the invocation was killed by its timeout.
func (r Result) TimedOut() bool {
	return r.ExitCode == TimeoutExitCode
}

// Executor runs a fixed binary with per-invocation arguments and timeouts.
type Executor struct {
	binary string
	logger zerolog.Logger
}

// New constructs an Executor for the given runtime binary (normally "docker").
func New(binary string, logger zerolog.Logger) *Executor {
	return &Executor{binary: binary, logger: logger}
}

// Execute runs the binary with args, bounded by timeout. opTag and subject
// identify the logical operation and the unit it targets; they appear only
// in the log record, never in the command line.
//
// The subprocess inherits the current environment. A timeout kills the
// process group via the context; the process is never left orphaned.
func (e *Executor) Execute(ctx context.Context, opTag, subject string, args []string, timeout time.Duration) Result {
	runCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(runCtx, e.binary, args...)
	cmd.Env = os.Environ()

	start := time.Now()
	output, err := cmd.CombinedOutput()
	duration := time.Since(start)

	result := Result{
		Output:   strings.TrimSpace(string(output)),
		Duration: duration,
	}

	switch {
	case err == nil:
		result.ExitCode = 0
	case runCtx.Err() == context.DeadlineExceeded:
		result.ExitCode = TimeoutExitCode
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			// The process never started; surface the spawn failure as
			// output so the caller has something to report.
			result.ExitCode = startFailureExitCode
			if result.Output == "" {
				result.Output = err.Error()
			}
		}
	}

	e.logRecord(opTag, subject, args, result)
	return result
}

// logRecord emits the structured trace of the command and its result.
func (e *Executor) logRecord(opTag, subject string, args []string, result Result) {
	event := e.logger.Debug()
	if !result.Success() {
		event = e.logger.Warn()
	}
	event.
		Str("op", opTag).
		Str("subject", subject).
		Str("command", e.binary+" "+strings.Join(args, " ")).
		Int("exit_code", result.ExitCode).
		Dur("duration", result.Duration).
		Msg("runtime command executed")
}
