// docker.go implements the Runtime interface by invoking the docker CLI
// through the command executor. One method issues one runtime command; the
// executor owns timeouts, output capture, and trace logging.
package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/rs/zerolog"

	"github.com/mmr-tortoise/stevedore/internal/executor"
	"github.com/mmr-tortoise/stevedore/internal/model"
)

// commandRunner is the slice of the executor the runtime needs. It is an
// interface so tests can substitute canned results.
type commandRunner interface {
	Execute(ctx context.Context, opTag, subject string, args []string, timeout time.Duration) executor.Result
}

// DockerRuntime is the CLI-backed Runtime implementation.
type DockerRuntime struct {
	exec    commandRunner
	timeout time.Duration
	logger  zerolog.Logger
}

// compile-time interface check
var _ Runtime = (*DockerRuntime)(nil)

// NewDockerRuntime builds a Runtime on top of the command executor.
// timeout bounds every individual runtime invocation.
func NewDockerRuntime(exec *executor.Executor, timeout time.Duration, logger zerolog.Logger) *DockerRuntime {
	return &DockerRuntime{exec: exec, timeout: timeout, logger: logger}
}

// newDockerRuntimeWithRunner is the test seam used by this package's tests.
func newDockerRuntimeWithRunner(exec commandRunner, timeout time.Duration, logger zerolog.Logger) *DockerRuntime {
	return &DockerRuntime{exec: exec, timeout: timeout, logger: logger}
}

// Inspect queries a single container with "docker inspect" and decodes the
// JSON output using the Docker API type definitions.
func (d *DockerRuntime) Inspect(ctx context.Context, name string) (*Inspection, bool, error) {
	result := d.exec.Execute(ctx, "INSPECT", name, []string{"inspect", name}, d.timeout)
	if !result.Success() {
		// "No such object" is the expected shape of a miss, not a failure.
		if strings.Contains(strings.ToLower(result.Output), "no such") {
			return nil, false, nil
		}
		return nil, false, commandError(model.OpSync, name, result)
	}

	// docker inspect prints a JSON array, one element per matched object.
	var responses []container.InspectResponse
	if err := json.Unmarshal([]byte(result.Output), &responses); err != nil {
		return nil, false, fmt.Errorf("failed to decode inspect output for %q: %w", name, err)
	}
	if len(responses) == 0 {
		return nil, false, nil
	}

	resp := responses[0]
	insp := &Inspection{ID: resp.ID}
	if resp.State != nil {
		insp.Running = resp.State.Running
		insp.Status = resp.State.Status
		insp.Health = resp.State.Health
	}
	return insp, true, nil
}

// Exists reports whether a container with the given name exists.
func (d *DockerRuntime) Exists(ctx context.Context, name string) (bool, error) {
	_, found, err := d.Inspect(ctx, name)
	return found, err
}

// ComposeUp creates and starts (or, with noStart, only creates) the
// services of a compose manifest via "docker compose".
func (d *DockerRuntime) ComposeUp(ctx context.Context, manifestPath, projectName string, noStart bool) error {
	args := []string{"compose", "-f", manifestPath}
	if projectName != "" {
		args = append(args, "-p", projectName)
	}
	if noStart {
		args = append(args, "create")
	} else {
		args = append(args, "up", "-d")
	}

	result := d.exec.Execute(ctx, "CREATE", projectName, args, d.timeout)
	if !result.Success() {
		return commandError(model.OpCreate, projectName, result)
	}
	return nil
}

// RunDirect issues a fully assembled "docker run" invocation.
func (d *DockerRuntime) RunDirect(ctx context.Context, name string, args []string) error {
	result := d.exec.Execute(ctx, "CREATE", name, args, d.timeout)
	if !result.Success() {
		return commandError(model.OpCreate, name, result)
	}
	return nil
}

// Start starts a stopped container.
func (d *DockerRuntime) Start(ctx context.Context, name string) error {
	result := d.exec.Execute(ctx, "START", name, []string{"start", name}, d.timeout)
	if !result.Success() {
		return commandError(model.OpStart, name, result)
	}
	return nil
}

// Stop stops a container gracefully with the given grace period.
func (d *DockerRuntime) Stop(ctx context.Context, name string, graceSeconds int) error {
	args := []string{"stop"}
	if graceSeconds > 0 {
		args = append(args, "-t", strconv.Itoa(graceSeconds))
	}
	args = append(args, name)

	result := d.exec.Execute(ctx, "STOP", name, args, d.timeout)
	if !result.Success() {
		return commandError(model.OpStop, name, result)
	}
	return nil
}

// Kill terminates a container immediately.
func (d *DockerRuntime) Kill(ctx context.Context, name string) error {
	result := d.exec.Execute(ctx, "STOP", name, []string{"kill", name}, d.timeout)
	if !result.Success() {
		return commandError(model.OpStop, name, result)
	}
	return nil
}

// Remove deletes a container object, optionally forcing a running one.
func (d *DockerRuntime) Remove(ctx context.Context, name string, force bool) error {
	args := []string{"rm"}
	if force {
		args = append(args, "-f")
	}
	args = append(args, name)

	result := d.exec.Execute(ctx, "REMOVE", name, args, d.timeout)
	if !result.Success() {
		return commandError(model.OpRemove, name, result)
	}
	return nil
}

// listFormat renders one tab-separated line per container so the output
// parses without quoting concerns (tabs cannot appear in names or IDs).
const listFormat = "{{.ID}}\t{{.Names}}\t{{.Status}}"

// List returns the full container inventory, including stopped containers.
func (d *DockerRuntime) List(ctx context.Context) ([]ContainerSummary, error) {
	args := []string{"ps", "-a", "--format", listFormat}
	result := d.exec.Execute(ctx, "LIST", "", args, d.timeout)
	if !result.Success() {
		return nil, commandError(model.OpSync, "", result)
	}

	var summaries []ContainerSummary
	for _, line := range strings.Split(result.Output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 3)
		if len(fields) != 3 {
			d.logger.Warn().Str("line", line).Msg("skipping unparseable container list line")
			continue
		}
		summaries = append(summaries, ContainerSummary{
			ID:           fields[0],
			Name:         fields[1],
			StatusPhrase: fields[2],
		})
	}
	return summaries, nil
}

// Logs returns the last tail lines of a container's log.
func (d *DockerRuntime) Logs(ctx context.Context, name string, tail int) (string, error) {
	args := []string{"logs"}
	if tail > 0 {
		args = append(args, "--tail", strconv.Itoa(tail))
	}
	args = append(args, name)

	result := d.exec.Execute(ctx, "LOGS", name, args, d.timeout)
	if !result.Success() {
		return "", commandError(model.OpSync, name, result)
	}
	return result.Output, nil
}

// Stats returns a one-shot resource usage snapshot.
func (d *DockerRuntime) Stats(ctx context.Context, name string) (string, error) {
	args := []string{"stats", "--no-stream", name}
	result := d.exec.Execute(ctx, "STATS", name, args, d.timeout)
	if !result.Success() {
		return "", commandError(model.OpSync, name, result)
	}
	return result.Output, nil
}

// Pull fetches an image.
func (d *DockerRuntime) Pull(ctx context.Context, image string) error {
	result := d.exec.Execute(ctx, "PULL", image, []string{"pull", image}, d.timeout)
	if !result.Success() {
		return commandError(model.OpCreate, image, result)
	}
	return nil
}

// Prune removes stopped containers and dangling resources.
func (d *DockerRuntime) Prune(ctx context.Context) (string, error) {
	result := d.exec.Execute(ctx, "PRUNE", "", []string{"system", "prune", "-f"}, d.timeout)
	if !result.Success() {
		return "", commandError(model.OpRemove, "", result)
	}
	return result.Output, nil
}

// commandError wraps a failed executor result in the runtime failure type,
// attaching a remediation hint when the output matches a known pattern.
func commandError(op model.Operation, subject string, result executor.Result) error {
	return &model.RuntimeCommandFailedError{
		Operation: op,
		Subject:   subject,
		ExitCode:  result.ExitCode,
		Output:    result.Output,
		Hint:      ClassifyHint(result.Output),
	}
}
