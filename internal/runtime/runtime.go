package runtime

import (
	"context"

	"github.com/docker/docker/api/types/container"

	"github.com/mmr-tortoise/stevedore/internal/model"
)

// ContainerSummary is one entry of the runtime's container inventory,
// as reported by a list query. StatusPhrase is the runtime's human status
// line (for example "Up 3 minutes (healthy)" or "Exited (0) 2 hours ago").
type ContainerSummary struct {
	ID           string
	Name         string
	StatusPhrase string
}

// Inspection is the decoded result of an inspect query for one container.
type Inspection struct {
	// ID is the container's runtime identifier.
	ID string

	// Running reports whether the container's main process is running.
	Running bool

	// Status is the runtime's short state string ("running", "exited", ...).
	Status string

	// Health is the container's health-check state, nil when the container
	// has no health check configured.
	Health *container.Health
}

// HealthStatus returns the health string ("starting", "healthy",
// "unhealthy") or "" when no health check is configured.
func (i *Inspection) HealthStatus() string {
	if i.Health == nil {
		return ""
	}
	return i.Health.Status
}

// Runtime is the boundary to the container runtime. Every method issues at
// most one runtime command; failures carry the real exit code and captured
// output as a model.RuntimeCommandFailedError.
type Runtime interface {
	// Inspect queries a single container. found is false when the runtime
	// has no container by that name; that is not an error.
	Inspect(ctx context.Context, name string) (insp *Inspection, found bool, err error)

	// Exists reports whether a container with the given name exists,
	// running or not.
	Exists(ctx context.Context, name string) (bool, error)

	// ComposeUp creates and starts the services of a compose manifest.
	// When noStart is true the containers are created but not started.
	ComposeUp(ctx context.Context, manifestPath, projectName string, noStart bool) error

	// RunDirect issues a fully assembled direct run invocation (the custom
	// dialect path). args is the complete argument vector after the binary
	// name, as produced by the config resolver.
	RunDirect(ctx context.Context, name string, args []string) error

	// Start starts an existing stopped container.
	Start(ctx context.Context, name string) error

	// Stop stops a running container gracefully, allowing graceSeconds
	// before the runtime escalates to a kill.
	Stop(ctx context.Context, name string, graceSeconds int) error

	// Kill terminates a running container immediately.
	Kill(ctx context.Context, name string) error

	// Remove deletes a container object. With force the runtime kills a
	// running container first.
	Remove(ctx context.Context, name string, force bool) error

	// List returns the full container inventory, including stopped ones.
	List(ctx context.Context) ([]ContainerSummary, error)

	// Logs returns the last tail lines of a container's log. tail <= 0
	// returns the full log.
	Logs(ctx context.Context, name string, tail int) (string, error)

	// Stats returns a one-shot resource usage snapshot for a container.
	Stats(ctx context.Context, name string) (string, error)

	// Pull fetches an image.
	Pull(ctx context.Context, image string) error

	// Prune removes all stopped containers and dangling resources.
	// It returns the runtime's report of what was reclaimed.
	Prune(ctx context.Context) (string, error)
}

// TranslateStatusPhrase maps a runtime status phrase from a list query to
// the internal status enum. Unrecognized phrases map to unknown rather
// than failing: drift interpretation must never be fatal.
func TranslateStatusPhrase(phrase string) model.UnitStatus {
	switch {
	case hasPrefixFold(phrase, "up"):
		return model.StatusRunning
	case hasPrefixFold(phrase, "exited"):
		return model.StatusExited
	case hasPrefixFold(phrase, "created"):
		return model.StatusCreated
	default:
		return model.StatusUnknown
	}
}

// hasPrefixFold is a case-insensitive ASCII prefix check, enough for the
// runtime's status vocabulary.
func hasPrefixFold(s, prefix string) bool {
	if len(s) < len(prefix) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		a, b := s[i], prefix[i]
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}
