package reconcile

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/stevedore/internal/model"
	"github.com/mmr-tortoise/stevedore/internal/runtime"
	"github.com/mmr-tortoise/stevedore/internal/runtime/runtimetest"
	"github.com/mmr-tortoise/stevedore/internal/state"
)

// newTestEngine wires an engine over a temp store and a fake runtime
// whose inventory is fixed.
func newTestEngine(t *testing.T, inventory []runtime.ContainerSummary) (*Engine, *state.Store) {
	t.Helper()
	store := state.New(filepath.Join(t.TempDir(), "state.json"), 10, state.ToolConfig{}, zerolog.Nop())
	fake := runtimetest.New()
	fake.ListFn = func() ([]runtime.ContainerSummary, error) {
		return inventory, nil
	}
	return New(store, fake, zerolog.Nop()), store
}

// TestSync_UpdatesStatuses verifies runtime phrases are translated into
// the internal status enum and written back to the tracked records.
func TestSync_UpdatesStatuses(t *testing.T) {
	inventory := []runtime.ContainerSummary{
		{ID: "id-web", Name: "web", StatusPhrase: "Up 3 minutes (healthy)"},
		{ID: "id-db", Name: "db", StatusPhrase: "Exited (0) 2 hours ago"},
	}
	engine, store := newTestEngine(t, inventory)
	require.NoError(t, store.RecordOperation("web", model.OpCreate, "", "", model.StatusCreated))
	require.NoError(t, store.RecordOperation("db", model.OpCreate, "", "", model.StatusRunning))

	report, err := engine.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, report.Tracked)
	assert.Equal(t, 2, report.Updated)

	web, _, err := store.Record("web")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRunning, web.Status)
	assert.Equal(t, "id-web", web.RuntimeID)

	db, _, err := store.Record("db")
	require.NoError(t, err)
	assert.Equal(t, model.StatusExited, db.Status)
}

// TestSync_MarksMissingRemoved verifies a tracked unit with no runtime
// match keeps its record but is marked removed.
func TestSync_MarksMissingRemoved(t *testing.T) {
	engine, store := newTestEngine(t, nil)
	require.NoError(t, store.RecordOperation("gone", model.OpCreate, "", "", model.StatusRunning))

	report, err := engine.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Missing)

	record, ok, err := store.Record("gone")
	require.NoError(t, err)
	require.True(t, ok, "Sync keeps the record")
	assert.Equal(t, model.StatusRemoved, record.Status)
}

// TestSync_FixedPoint verifies that a second run with no intervening
// runtime change leaves the state document byte-identical.
func TestSync_FixedPoint(t *testing.T) {
	inventory := []runtime.ContainerSummary{
		{ID: "id-web", Name: "web", StatusPhrase: "Up 1 minute"},
	}
	engine, store := newTestEngine(t, inventory)
	require.NoError(t, store.RecordOperation("web", model.OpCreate, "", "", model.StatusCreated))
	require.NoError(t, store.RecordOperation("gone", model.OpCreate, "", "", model.StatusRunning))

	_, err := engine.Sync(context.Background())
	require.NoError(t, err)
	first, err := store.Load()
	require.NoError(t, err)

	report, err := engine.Sync(context.Background())
	require.NoError(t, err)
	second, err := store.Load()
	require.NoError(t, err)

	assert.Equal(t, 0, report.Updated, "second run must change nothing")
	assert.Equal(t, first, second, "reconciliation must be a fixed point")
}

// TestSync_NamespacedFallbackMatch verifies the compose-style name
// fallback: "project-web-1" matches tracked unit "web" when no exact
// match exists.
func TestSync_NamespacedFallbackMatch(t *testing.T) {
	inventory := []runtime.ContainerSummary{
		{ID: "id-1", Name: "shop-web-1", StatusPhrase: "Up 10 seconds"},
		{ID: "id-2", Name: "legacy_api_1", StatusPhrase: "Exited (1) 1 hour ago"},
	}
	engine, store := newTestEngine(t, inventory)
	require.NoError(t, store.RecordOperation("web", model.OpCreate, "", "", model.StatusCreated))
	require.NoError(t, store.RecordOperation("api", model.OpCreate, "", "", model.StatusCreated))

	_, err := engine.Sync(context.Background())
	require.NoError(t, err)

	web, _, err := store.Record("web")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRunning, web.Status)
	assert.Equal(t, "id-1", web.RuntimeID)

	api, _, err := store.Record("api")
	require.NoError(t, err)
	assert.Equal(t, model.StatusExited, api.Status)
}

// TestSync_NoFalsePrefixMatch verifies that a container merely sharing a
// name prefix without a replica suffix does not match.
func TestSync_NoFalsePrefixMatch(t *testing.T) {
	inventory := []runtime.ContainerSummary{
		{ID: "id-1", Name: "webserver", StatusPhrase: "Up 10 seconds"},
	}
	engine, store := newTestEngine(t, inventory)
	require.NoError(t, store.RecordOperation("web", model.OpCreate, "", "", model.StatusRunning))

	_, err := engine.Sync(context.Background())
	require.NoError(t, err)

	record, _, err := store.Record("web")
	require.NoError(t, err)
	assert.Equal(t, model.StatusRemoved, record.Status, "webserver must not match unit web")
}

// TestForceSyncAfterCleanup verifies missing units are deleted outright.
func TestForceSyncAfterCleanup(t *testing.T) {
	inventory := []runtime.ContainerSummary{
		{ID: "id-web", Name: "web", StatusPhrase: "Up 1 minute"},
	}
	engine, store := newTestEngine(t, inventory)
	require.NoError(t, store.RecordOperation("web", model.OpCreate, "", "", model.StatusRunning))
	require.NoError(t, store.RecordOperation("gone", model.OpCreate, "", "", model.StatusRunning))
	require.NoError(t, store.TouchHistory("gone"))

	report, err := engine.ForceSyncAfterCleanup(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, report.Missing)

	_, ok, err := store.Record("gone")
	require.NoError(t, err)
	assert.False(t, ok, "record must be deleted, not merely marked")

	doc, err := store.Load()
	require.NoError(t, err)
	assert.NotContains(t, doc.State.History, "gone")
	assert.Contains(t, doc.State.Units, "web")
}

// TestSync_UnknownPhrase verifies unrecognized status phrases degrade to
// the unknown status rather than failing.
func TestSync_UnknownPhrase(t *testing.T) {
	inventory := []runtime.ContainerSummary{
		{ID: "id-web", Name: "web", StatusPhrase: "Restarting (1) 2 seconds ago"},
	}
	engine, store := newTestEngine(t, inventory)
	require.NoError(t, store.RecordOperation("web", model.OpCreate, "", "", model.StatusRunning))

	_, err := engine.Sync(context.Background())
	require.NoError(t, err)

	record, _, err := store.Record("web")
	require.NoError(t, err)
	assert.Equal(t, model.StatusUnknown, record.Status)
}
