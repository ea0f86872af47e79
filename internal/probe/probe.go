// Package probe implements the readiness prober: after a unit is created
// or started, it polls the runtime until the unit reports healthy, turns
// out to have no health check while running, or the resolved timeout
// elapses.
package probe

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mmr-tortoise/stevedore/internal/model"
	"github.com/mmr-tortoise/stevedore/internal/runtime"
)

// FallbackTimeout is the hardcoded last resort when neither the manifest,
// the caller, nor the configuration supplies a readiness timeout.
const FallbackTimeout = 60 * time.Second

// healthHealthy is the runtime's health status marking a passing check.
const healthHealthy = "healthy"

// TimeoutSource names which link of the precedence chain produced the
// resolved timeout, for logging.
type TimeoutSource string

const (
	SourceManifest TimeoutSource = "manifest-override"
	SourceCaller   TimeoutSource = "caller"
	SourceConfig   TimeoutSource = "config-default"
	SourceFallback TimeoutSource = "fallback"
)

// overrideLookup resolves a per-unit timeout override from the
// configuration document; manifest.Document satisfies it.
type overrideLookup interface {
	ReadinessOverride(unitName string) (int, bool)
}

// Prober polls a unit until it is ready or the timeout elapses.
type Prober struct {
	rt             runtime.Runtime
	defaultTimeout time.Duration
	pollInterval   time.Duration
	logger         zerolog.Logger

	// Progress, when set, is invoked once per poll tick with the elapsed
	// time. It replaces the progress animation with a plain callback and
	// has no bearing on the probe outcome.
	Progress func(elapsed time.Duration)
}

// New constructs a Prober. defaultTimeout of zero means "unconfigured"
// and falls through to the hardcoded fallback. pollInterval of zero uses
// one second.
func New(rt runtime.Runtime, defaultTimeout, pollInterval time.Duration, logger zerolog.Logger) *Prober {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &Prober{
		rt:             rt,
		defaultTimeout: defaultTimeout,
		pollInterval:   pollInterval,
		logger:         logger,
	}
}

// ResolveTimeout applies the precedence chain, highest first: per-unit
// manifest override, explicit caller timeout, configured default,
// hardcoded fallback.
func (p *Prober) ResolveTimeout(doc overrideLookup, unitName string, callerTimeout time.Duration) (time.Duration, TimeoutSource) {
	if doc != nil {
		if seconds, ok := doc.ReadinessOverride(unitName); ok {
			return time.Duration(seconds) * time.Second, SourceManifest
		}
	}
	if callerTimeout > 0 {
		return callerTimeout, SourceCaller
	}
	if p.defaultTimeout > 0 {
		return p.defaultTimeout, SourceConfig
	}
	return FallbackTimeout, SourceFallback
}

// WaitReady polls the unit at the fixed interval until one of the three
// outcomes is reached:
//
//   - the health status reaches "healthy": ReadyHealthy, immediately;
//   - the timeout elapses with a health check observed but never healthy:
//     NotReady (a configured check that never passed is a failure);
//   - the timeout elapses with no health check ever observed: the unit's
//     running state decides — running means ReadyRunningNoHealthcheck,
//     anything else NotReady.
//
// Probe-time runtime errors are logged and treated as "not running" for
// that tick; they never abort the wait. Context cancellation returns
// NotReady with the context's error.
func (p *Prober) WaitReady(ctx context.Context, unitName string, doc overrideLookup, callerTimeout time.Duration) (model.ReadinessOutcome, error) {
	timeout, source := p.ResolveTimeout(doc, unitName, callerTimeout)
	p.logger.Debug().
		Str("unit", unitName).
		Dur("timeout", timeout).
		Str("timeout_source", string(source)).
		Msg("waiting for readiness")

	start := time.Now()
	deadline := start.Add(timeout)

	healthObserved := false
	lastRunning := false

	for {
		insp, found, err := p.rt.Inspect(ctx, unitName)
		switch {
		case err != nil:
			p.logger.Warn().Err(err).Str("unit", unitName).Msg("readiness probe query failed")
			lastRunning = false
		case !found:
			lastRunning = false
		default:
			lastRunning = insp.Running
			if health := insp.HealthStatus(); health != "" {
				healthObserved = true
				if health == healthHealthy {
					p.logger.Info().
						Str("unit", unitName).
						Dur("elapsed", time.Since(start)).
						Msg("unit is healthy")
					return model.ReadyHealthy, nil
				}
			}
		}

		if p.Progress != nil {
			p.Progress(time.Since(start))
		}

		// The last wait is shortened to land exactly on the deadline, so a
		// health check that flips to healthy inside the final partial
		// interval is still observed before the verdict.
		now := time.Now()
		if !now.Before(deadline) {
			break
		}
		wait := p.pollInterval
		if remaining := deadline.Sub(now); remaining < wait {
			wait = remaining
		}

		select {
		case <-ctx.Done():
			return model.NotReady, ctx.Err()
		case <-time.After(wait):
		}
	}

	if !healthObserved && lastRunning {
		p.logger.Info().
			Str("unit", unitName).
			Msg("no health check configured; unit is running")
		return model.ReadyRunningNoHealthcheck, nil
	}

	p.logger.Warn().
		Str("unit", unitName).
		Bool("health_check_seen", healthObserved).
		Bool("running", lastRunning).
		Msg("unit did not become ready before timeout")
	return model.NotReady, nil
}
