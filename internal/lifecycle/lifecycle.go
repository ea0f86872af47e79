// Package lifecycle drives managed units through their container
// lifecycle: generate from a configuration document, start, stop,
// restart, remove. Every operation persists its result to the state
// store so later invocations and reconciliation see the same history.
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/mmr-tortoise/stevedore/internal/manifest"
	"github.com/mmr-tortoise/stevedore/internal/model"
	"github.com/mmr-tortoise/stevedore/internal/probe"
	"github.com/mmr-tortoise/stevedore/internal/runtime"
	"github.com/mmr-tortoise/stevedore/internal/state"
)

// removalAttempts bounds the force-overwrite removal loop.
const removalAttempts = 3

// removalBackoff is the pause between removal retries.
const removalBackoff = 500 * time.Millisecond

// Controller orchestrates unit lifecycle operations against the runtime
// and records every outcome in the state store.
type Controller struct {
	store  *state.Store
	rt     runtime.Runtime
	prober *probe.Prober
	logger zerolog.Logger

	// stopGraceSeconds is passed to graceful stops before the runtime
	// escalates to a kill.
	stopGraceSeconds int

	// sleep is a seam so tests do not pay the removal backoff.
	sleep func(time.Duration)
}

// New constructs a Controller.
func New(store *state.Store, rt runtime.Runtime, prober *probe.Prober, stopGraceSeconds int, logger zerolog.Logger) *Controller {
	if stopGraceSeconds <= 0 {
		stopGraceSeconds = 10
	}
	return &Controller{
		store:            store,
		rt:               rt,
		prober:           prober,
		logger:           logger,
		stopGraceSeconds: stopGraceSeconds,
		sleep:            time.Sleep,
	}
}

// GenerateOptions carries the caller's intent for one generate run.
type GenerateOptions struct {
	// Unit selects a unit from the document. Empty selects the first
	// declared unit.
	Unit string

	// Force removes a pre-existing container with the same runtime name
	// before generating. Without it a name collision is an error.
	Force bool

	// NoStart creates the container without starting it; no readiness
	// probe runs and the recorded status is created.
	NoStart bool

	// Timeout overrides the readiness timeout. Zero defers to the
	// manifest override, the configured default, or the fallback.
	Timeout time.Duration
}

// GenerateResult describes what a generate run produced.
type GenerateResult struct {
	Unit        string
	RuntimeName string
	Dialect     manifest.Dialect
	Status      model.UnitStatus

	// Outcome is empty when NoStart skipped the readiness probe.
	Outcome model.ReadinessOutcome
}

// Generate realizes one unit from the configuration document at source:
// parse, classify, pick the unit, validate its name, resolve the runtime
// name, clear any conflicting container (force only), dispatch by
// dialect, probe readiness, and persist the record.
func (c *Controller) Generate(ctx context.Context, source string, opts GenerateOptions) (*GenerateResult, error) {
	doc, err := manifest.Load(source)
	if err != nil {
		return nil, err
	}

	units, err := doc.ListUnits()
	if err != nil {
		return nil, err
	}

	unit := opts.Unit
	if unit == "" {
		unit = units[0]
	} else if !slices.Contains(units, unit) {
		return nil, &model.ConfigInvalidError{
			Source: source,
			Reason: fmt.Sprintf("unit %q is not declared in the document", unit),
		}
	}

	if err := model.ValidateName(unit); err != nil {
		return nil, err
	}

	runtimeName := doc.ResolveRuntimeName(unit)
	c.logger.Info().
		Str("unit", unit).
		Str("container", runtimeName).
		Str("dialect", doc.Dialect.String()).
		Str("source", source).
		Msg("generating unit")

	exists, err := c.rt.Exists(ctx, runtimeName)
	if err != nil {
		return nil, err
	}
	if exists {
		if !opts.Force {
			return nil, &model.AlreadyExistsError{Name: runtimeName}
		}
		if err := c.removeWithRetries(ctx, runtimeName); err != nil {
			return nil, err
		}
	}

	if doc.Dialect.IsComposeFamily() {
		err = c.generateCompose(ctx, doc, unit, runtimeName, opts.NoStart)
	} else {
		err = c.generateDirect(ctx, doc, unit, runtimeName, opts.NoStart)
	}
	if err != nil {
		return nil, err
	}

	result := &GenerateResult{
		Unit:        unit,
		RuntimeName: runtimeName,
		Dialect:     doc.Dialect,
		Status:      model.StatusCreated,
	}

	if !opts.NoStart {
		outcome, err := c.prober.WaitReady(ctx, runtimeName, doc, opts.Timeout)
		if err != nil {
			return nil, err
		}
		result.Outcome = outcome
		result.Status = c.observedStatus(ctx, runtimeName)
	}

	runtimeID := ""
	if insp, found, err := c.rt.Inspect(ctx, runtimeName); err == nil && found {
		runtimeID = insp.ID
	}

	// Records are keyed by the runtime identifier, not the declared name:
	// later operations and reconciliation both address containers by the
	// name the runtime knows.
	if err := c.persist(runtimeName, model.OpCreate, source, runtimeID, result.Status); err != nil {
		return nil, err
	}
	return result, nil
}

// generateCompose writes a single-unit manifest to a temp file and hands
// it to the runtime's compose path.
func (c *Controller) generateCompose(ctx context.Context, doc *manifest.Document, unit, runtimeName string, noStart bool) error {
	data, err := doc.SynthesizeUnitManifest(unit, runtimeName)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp("", "stevedore-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to write single-unit manifest: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write single-unit manifest: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write single-unit manifest: %w", err)
	}

	project := projectName(doc.Path, unit)
	return c.rt.ComposeUp(ctx, tmp.Name(), project, noStart)
}

// generateDirect assembles and issues a direct run for a custom-dialect
// unit. With noStart the container is created instead of run.
func (c *Controller) generateDirect(ctx context.Context, doc *manifest.Document, unit, runtimeName string, noStart bool) error {
	args, err := doc.ExtractRunCommand(unit, runtimeName)
	if err != nil {
		return err
	}
	if noStart {
		// run -d <rest> becomes create <rest>
		args = append([]string{"create"}, args[2:]...)
	}
	return c.rt.RunDirect(ctx, runtimeName, args)
}

// removeWithRetries clears a conflicting container, re-verifying after
// each forced removal. Runtimes occasionally report success while the
// container object lingers, so absence is checked, not assumed.
func (c *Controller) removeWithRetries(ctx context.Context, runtimeName string) error {
	var lastErr error
	for attempt := 1; attempt <= removalAttempts; attempt++ {
		if attempt > 1 {
			c.sleep(removalBackoff)
		}
		c.logger.Info().
			Str("container", runtimeName).
			Int("attempt", attempt).
			Msg("removing existing container before overwrite")

		lastErr = c.rt.Remove(ctx, runtimeName, true)

		exists, err := c.rt.Exists(ctx, runtimeName)
		if err != nil {
			lastErr = err
			continue
		}
		if !exists {
			return nil
		}
		if lastErr == nil {
			lastErr = fmt.Errorf("container %q still present after removal", runtimeName)
		}
	}
	return &model.RemovalFailedError{Name: runtimeName, Attempts: removalAttempts, Err: lastErr}
}

// Start starts a stopped unit. Starting a unit that is already running
// is a no-op success.
func (c *Controller) Start(ctx context.Context, unit string) error {
	insp, target, err := c.locate(ctx, unit)
	if err != nil {
		return err
	}
	if insp.Running {
		c.logger.Info().Str("unit", unit).Msg("unit already running")
		return nil
	}

	if err := c.rt.Start(ctx, target); err != nil {
		return err
	}
	return c.persist(unit, model.OpStart, "", insp.ID, model.StatusRunning)
}

// StopOptions selects between a graceful stop and an immediate kill.
type StopOptions struct {
	// Force kills the container instead of stopping it gracefully.
	Force bool
}

// Stop stops a running unit. Stopping a unit that is not running is a
// no-op success.
func (c *Controller) Stop(ctx context.Context, unit string, opts StopOptions) error {
	insp, target, err := c.locate(ctx, unit)
	if err != nil {
		return err
	}
	if !insp.Running {
		c.logger.Info().Str("unit", unit).Msg("unit already stopped")
		return nil
	}

	if opts.Force {
		err = c.rt.Kill(ctx, target)
	} else {
		err = c.rt.Stop(ctx, target, c.stopGraceSeconds)
	}
	if err != nil {
		return err
	}
	return c.persist(unit, model.OpStop, "", insp.ID, model.StatusStopped)
}

// Restart stops the unit gracefully when it is running, then starts it.
func (c *Controller) Restart(ctx context.Context, unit string) error {
	insp, target, err := c.locate(ctx, unit)
	if err != nil {
		return err
	}

	if insp.Running {
		if err := c.rt.Stop(ctx, target, c.stopGraceSeconds); err != nil {
			return err
		}
	}
	if err := c.rt.Start(ctx, target); err != nil {
		return err
	}
	return c.persist(unit, model.OpRestart, "", insp.ID, model.StatusRunning)
}

// Remove deletes the unit's container and its state record. Removing a
// unit with neither a container nor meaningful state is a no-op success:
// the desired end state already holds.
func (c *Controller) Remove(ctx context.Context, unit string, force bool) error {
	insp, target, found, err := c.find(ctx, unit)
	if err != nil {
		return err
	}
	if !found {
		c.logger.Info().Str("unit", unit).Msg("no container for unit; clearing any stale record")
		return c.store.Remove(unit)
	}

	if insp.Running && !force {
		if err := c.rt.Stop(ctx, target, c.stopGraceSeconds); err != nil {
			return err
		}
	}
	if err := c.rt.Remove(ctx, target, force); err != nil {
		return err
	}
	return c.store.Remove(unit)
}

// locate resolves a unit to a live container, by name first and then by
// the recorded runtime ID. A unit with no container is a NotFoundError.
func (c *Controller) locate(ctx context.Context, unit string) (*runtime.Inspection, string, error) {
	insp, target, found, err := c.find(ctx, unit)
	if err != nil {
		return nil, "", err
	}
	if !found {
		return nil, "", &model.NotFoundError{Name: unit}
	}
	return insp, target, nil
}

// find looks a unit up by name, then by recorded runtime ID. The second
// lookup covers compose-era containers whose name diverged from the unit
// name.
func (c *Controller) find(ctx context.Context, unit string) (*runtime.Inspection, string, bool, error) {
	insp, found, err := c.rt.Inspect(ctx, unit)
	if err != nil {
		return nil, "", false, err
	}
	if found {
		return insp, unit, true, nil
	}

	record, ok, err := c.store.Record(unit)
	if err != nil {
		return nil, "", false, err
	}
	if ok && record.RuntimeID != "" {
		insp, found, err = c.rt.Inspect(ctx, record.RuntimeID)
		if err != nil {
			return nil, "", false, err
		}
		if found {
			return insp, record.RuntimeID, true, nil
		}
	}
	return nil, "", false, nil
}

// observedStatus inspects once after generation to record what actually
// came up. Inspection failures degrade to unknown.
func (c *Controller) observedStatus(ctx context.Context, runtimeName string) model.UnitStatus {
	insp, found, err := c.rt.Inspect(ctx, runtimeName)
	switch {
	case err != nil:
		c.logger.Warn().Err(err).Str("container", runtimeName).Msg("post-generate inspect failed")
		return model.StatusUnknown
	case !found:
		return model.StatusRemoved
	case insp.Running:
		return model.StatusRunning
	default:
		return model.StatusExited
	}
}

// persist records the operation, updates the last-used pointers, and
// touches the history in that order.
func (c *Controller) persist(unit string, op model.Operation, source, runtimeID string, status model.UnitStatus) error {
	if err := c.store.RecordOperation(unit, op, source, runtimeID, status); err != nil {
		return err
	}
	if err := c.store.UpdatePointers(unit, op, source); err != nil {
		return err
	}
	return c.store.TouchHistory(unit)
}

// projectName derives a compose project name from the document location,
// falling back to the unit name when the directory is unusable.
func projectName(path, unit string) string {
	dir := filepath.Base(filepath.Dir(path))
	if dir == "." || dir == string(filepath.Separator) || dir == "" {
		return unit
	}
	return dir
}
