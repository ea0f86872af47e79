// Package runtimetest provides a scriptable in-memory Runtime for tests.
// Behavior is configured per method with function fields; unset methods
// succeed with zero values. Call counts are recorded for idempotence
// assertions.
package runtimetest

import (
	"context"
	"sync"

	"github.com/mmr-tortoise/stevedore/internal/runtime"
)

// Fake implements runtime.Runtime with per-method hooks.
type Fake struct {
	mu    sync.Mutex
	calls map[string]int

	InspectFn   func(name string) (*runtime.Inspection, bool, error)
	ComposeUpFn func(manifestPath, projectName string, noStart bool) error
	RunDirectFn func(name string, args []string) error
	StartFn     func(name string) error
	StopFn      func(name string, graceSeconds int) error
	KillFn      func(name string) error
	RemoveFn    func(name string, force bool) error
	ListFn      func() ([]runtime.ContainerSummary, error)
	LogsFn      func(name string, tail int) (string, error)
	StatsFn     func(name string) (string, error)
	PullFn      func(image string) error
	PruneFn     func() (string, error)

	// LastRunArgs records the most recent RunDirect argument vector.
	LastRunArgs []string
}

var _ runtime.Runtime = (*Fake)(nil)

// New returns an empty Fake where every method succeeds.
func New() *Fake {
	return &Fake{calls: make(map[string]int)}
}

// Calls returns how many times the named method was invoked.
func (f *Fake) Calls(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method]
}

func (f *Fake) record(method string) {
	f.mu.Lock()
	f.calls[method]++
	f.mu.Unlock()
}

func (f *Fake) Inspect(_ context.Context, name string) (*runtime.Inspection, bool, error) {
	f.record("Inspect")
	if f.InspectFn != nil {
		return f.InspectFn(name)
	}
	return nil, false, nil
}

func (f *Fake) Exists(ctx context.Context, name string) (bool, error) {
	f.record("Exists")
	_, found, err := f.Inspect(ctx, name)
	return found, err
}

func (f *Fake) ComposeUp(_ context.Context, manifestPath, projectName string, noStart bool) error {
	f.record("ComposeUp")
	if f.ComposeUpFn != nil {
		return f.ComposeUpFn(manifestPath, projectName, noStart)
	}
	return nil
}

func (f *Fake) RunDirect(_ context.Context, name string, args []string) error {
	f.record("RunDirect")
	f.LastRunArgs = args
	if f.RunDirectFn != nil {
		return f.RunDirectFn(name, args)
	}
	return nil
}

func (f *Fake) Start(_ context.Context, name string) error {
	f.record("Start")
	if f.StartFn != nil {
		return f.StartFn(name)
	}
	return nil
}

func (f *Fake) Stop(_ context.Context, name string, graceSeconds int) error {
	f.record("Stop")
	if f.StopFn != nil {
		return f.StopFn(name, graceSeconds)
	}
	return nil
}

func (f *Fake) Kill(_ context.Context, name string) error {
	f.record("Kill")
	if f.KillFn != nil {
		return f.KillFn(name)
	}
	return nil
}

func (f *Fake) Remove(_ context.Context, name string, force bool) error {
	f.record("Remove")
	if f.RemoveFn != nil {
		return f.RemoveFn(name, force)
	}
	return nil
}

func (f *Fake) List(_ context.Context) ([]runtime.ContainerSummary, error) {
	f.record("List")
	if f.ListFn != nil {
		return f.ListFn()
	}
	return nil, nil
}

func (f *Fake) Logs(_ context.Context, name string, tail int) (string, error) {
	f.record("Logs")
	if f.LogsFn != nil {
		return f.LogsFn(name, tail)
	}
	return "", nil
}

func (f *Fake) Stats(_ context.Context, name string) (string, error) {
	f.record("Stats")
	if f.StatsFn != nil {
		return f.StatsFn(name)
	}
	return "", nil
}

func (f *Fake) Pull(_ context.Context, image string) error {
	f.record("Pull")
	if f.PullFn != nil {
		return f.PullFn(image)
	}
	return nil
}

func (f *Fake) Prune(_ context.Context) (string, error) {
	f.record("Prune")
	if f.PruneFn != nil {
		return f.PruneFn()
	}
	return "", nil
}
