// Package cli — app.go wires the component graph every subcommand runs
// against: configuration, logger, executor, runtime, state store, prober,
// lifecycle controller, and reconciliation engine.
package cli

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mmr-tortoise/stevedore/internal/config"
	"github.com/mmr-tortoise/stevedore/internal/executor"
	"github.com/mmr-tortoise/stevedore/internal/lifecycle"
	"github.com/mmr-tortoise/stevedore/internal/logging"
	"github.com/mmr-tortoise/stevedore/internal/probe"
	"github.com/mmr-tortoise/stevedore/internal/reconcile"
	"github.com/mmr-tortoise/stevedore/internal/runtime"
	"github.com/mmr-tortoise/stevedore/internal/state"
)

// app holds the wired components. It is built once per command run.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
	store  *state.Store
	rt     runtime.Runtime
	prober *probe.Prober
	ctrl   *lifecycle.Controller
	engine *reconcile.Engine
}

// newApp loads configuration and builds the component graph. The --verbose
// flag overrides the configured log level.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}

	logger := logging.Setup(&cfg.Logging)
	exec := executor.New(cfg.Runtime.Binary, logger)
	rt := runtime.NewDockerRuntime(exec, cfg.CommandTimeoutDuration(), logger)

	store := state.New(cfg.State.Path, cfg.State.HistoryMax, state.ToolConfig{
		LogLevel:   cfg.Logging.Level,
		HistoryMax: cfg.State.HistoryMax,
	}, logger)

	prober := probe.New(rt,
		time.Duration(cfg.Readiness.DefaultTimeout)*time.Second,
		cfg.PollIntervalDuration(),
		logger)

	return &app{
		cfg:    cfg,
		logger: logger,
		store:  store,
		rt:     rt,
		prober: prober,
		ctrl:   lifecycle.New(store, rt, prober, cfg.Runtime.StopGraceSeconds, logger),
		engine: reconcile.New(store, rt, logger),
	}, nil
}
