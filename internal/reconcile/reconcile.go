// Package reconcile repairs drift between the state document and the
// container runtime's actual inventory. The runtime is always ground
// truth: state describing containers the runtime no longer has is stale,
// not an error.
package reconcile

import (
	"context"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/mmr-tortoise/stevedore/internal/model"
	"github.com/mmr-tortoise/stevedore/internal/runtime"
	"github.com/mmr-tortoise/stevedore/internal/state"
)

// Engine compares tracked units against the runtime inventory.
type Engine struct {
	store  *state.Store
	rt     runtime.Runtime
	logger zerolog.Logger
}

// New constructs a reconciliation engine.
func New(store *state.Store, rt runtime.Runtime, logger zerolog.Logger) *Engine {
	return &Engine{store: store, rt: rt, logger: logger}
}

// Report summarizes one reconciliation pass.
type Report struct {
	// Tracked is the number of units examined.
	Tracked int

	// Updated is the number of records whose status changed.
	Updated int

	// Missing is the number of tracked units with no runtime match:
	// marked removed by Sync, deleted outright by ForceSyncAfterCleanup.
	Missing int
}

// Sync updates every tracked unit's status from the runtime inventory.
// Units with no matching container are marked removed but their records
// are kept. Running Sync twice with no intervening runtime change leaves
// the state document identical.
func (e *Engine) Sync(ctx context.Context) (Report, error) {
	return e.sync(ctx, false)
}

// ForceSyncAfterCleanup is the stricter variant used after
// bulk-destructive operations: tracked units absent from the inventory
// are deleted from the store entirely, since after a bulk wipe there is
// nothing left to reconcile toward.
func (e *Engine) ForceSyncAfterCleanup(ctx context.Context) (Report, error) {
	return e.sync(ctx, true)
}

func (e *Engine) sync(ctx context.Context, deleteMissing bool) (Report, error) {
	var report Report

	doc, err := e.store.Load()
	if err != nil {
		return report, err
	}

	inventory, err := e.rt.List(ctx)
	if err != nil {
		return report, err
	}

	for name := range doc.State.Units {
		report.Tracked++

		summary, found := matchInventory(name, inventory)
		if !found {
			report.Missing++
			if deleteMissing {
				e.logger.Info().Str("unit", name).Msg("deleting record for unit missing after cleanup")
				if err := e.store.Remove(name); err != nil {
					return report, err
				}
				continue
			}
			changed, err := e.store.ReconcileStatus(name, model.StatusRemoved, "")
			if err != nil {
				return report, err
			}
			if changed {
				report.Updated++
				e.logger.Info().Str("unit", name).Msg("unit missing from runtime; marked removed")
			}
			continue
		}

		status := runtime.TranslateStatusPhrase(summary.StatusPhrase)
		changed, err := e.store.ReconcileStatus(name, status, summary.ID)
		if err != nil {
			return report, err
		}
		if changed {
			report.Updated++
			e.logger.Info().
				Str("unit", name).
				Str("status", status.String()).
				Msg("unit status reconciled from runtime")
		}
	}

	return report, nil
}

// matchInventory finds the inventory entry for a tracked unit: an exact
// name match first, then a namespaced fallback for compose-style names
// such as "project-web-1" or "project_web_1".
func matchInventory(unitName string, inventory []runtime.ContainerSummary) (runtime.ContainerSummary, bool) {
	for _, c := range inventory {
		if c.Name == unitName {
			return c, true
		}
	}
	for _, c := range inventory {
		if matchesNamespaced(unitName, c.Name) {
			return c, true
		}
	}
	return runtime.ContainerSummary{}, false
}

// matchesNamespaced reports whether containerName is a namespaced form of
// unitName: either "unit<sep>N" or "<project><sep>unit<sep>N" with "-" or
// "_" separators and a numeric replica suffix.
func matchesNamespaced(unitName, containerName string) bool {
	for _, sep := range []string{"-", "_"} {
		marker := sep + unitName + sep
		if strings.HasPrefix(containerName, unitName+sep) && numericSuffix(containerName[len(unitName)+1:]) {
			return true
		}
		if idx := strings.Index(containerName, marker); idx > 0 {
			rest := containerName[idx+len(marker):]
			if numericSuffix(rest) {
				return true
			}
		}
	}
	return false
}

// numericSuffix reports whether s is a pure replica index.
func numericSuffix(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
