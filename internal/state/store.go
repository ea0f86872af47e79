package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/tidwall/jsonc"

	"github.com/mmr-tortoise/stevedore/internal/model"
)

// ToolConfig echoes the tool's own operating parameters into the state
// document for diagnostics. These are not business data; numbers and
// booleans are stored as JSON numbers and booleans, not strings.
type ToolConfig struct {
	LogLevel   string `json:"log_level"`
	HistoryMax int    `json:"history_max"`
}

// StateData is the business half of the document.
type StateData struct {
	// LastUnit, LastOperation, and LastConfigSource point at the most
	// recent activity for quick "do it again" style lookups.
	LastUnit         string `json:"last_unit,omitempty"`
	LastOperation    string `json:"last_operation,omitempty"`
	LastConfigSource string `json:"last_config_source,omitempty"`

	// History lists recently touched unit names, most recent first,
	// deduplicated and bounded by the configured maximum.
	History []string `json:"history"`

	// Units maps runtime identifiers to their records. A unit can appear
	// here without being in History when history capacity was exceeded.
	Units map[string]model.UnitRecord `json:"units"`
}

// Document is the full persisted state document.
type Document struct {
	Config ToolConfig `json:"config"`
	State  StateData  `json:"state"`
}

// Scalar pointer keys accepted by Get and Set.
const (
	KeyLastUnit         = "last_unit"
	KeyLastOperation    = "last_operation"
	KeyLastConfigSource = "last_config_source"
)

// Store persists the state document at a fixed path.
type Store struct {
	path       string
	historyMax int
	toolConfig ToolConfig
	logger     zerolog.Logger

	// now is a clock seam for tests.
	now func() time.Time
}

// New constructs a Store. The document itself is lazily initialized with
// empty defaults before the first mutation; construction does not touch
// the filesystem.
func New(path string, historyMax int, toolConfig ToolConfig, logger zerolog.Logger) *Store {
	if historyMax <= 0 {
		historyMax = 10
	}
	return &Store{
		path:       path,
		historyMax: historyMax,
		toolConfig: toolConfig,
		logger:     logger,
		now:        time.Now,
	}
}

// Load reads the current document. A missing file yields an initialized
// empty document. Reads are tolerant of comments and trailing commas in a
// hand-edited file.
func (s *Store) Load() (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s.emptyDocument(), nil
		}
		return nil, fmt.Errorf("failed to read state document %s: %w", s.path, err)
	}

	var doc Document
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to parse state document %s: %w", s.path, err)
	}
	if doc.State.Units == nil {
		doc.State.Units = make(map[string]model.UnitRecord)
	}
	return &doc, nil
}

// emptyDocument builds the lazily-initialized default document.
func (s *Store) emptyDocument() *Document {
	return &Document{
		Config: s.toolConfig,
		State: StateData{
			Units: make(map[string]model.UnitRecord),
		},
	}
}

// mutate applies fn under the read-modify-write-rename discipline.
func (s *Store) mutate(fn func(*StateData)) error {
	doc, err := s.Load()
	if err != nil {
		return err
	}

	fn(&doc.State)

	// The config echo always reflects the running tool's parameters.
	doc.Config = s.toolConfig

	return s.write(doc)
}

// write serializes the document to a sibling temp file and renames it over
// the original so readers never see a partial document.
func (s *Store) write(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize state document: %w", err)
	}
	data = append(data, '\n')

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}

	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to swap state document into place: %w", err)
	}
	return nil
}

// Get returns a scalar pointer value, or def when the pointer is unset.
func (s *Store) Get(key, def string) (string, error) {
	doc, err := s.Load()
	if err != nil {
		return "", err
	}

	var value string
	switch key {
	case KeyLastUnit:
		value = doc.State.LastUnit
	case KeyLastOperation:
		value = doc.State.LastOperation
	case KeyLastConfigSource:
		value = doc.State.LastConfigSource
	default:
		return "", fmt.Errorf("unknown state key %q", key)
	}

	if value == "" {
		return def, nil
	}
	return value, nil
}

// Set updates a scalar pointer value. The three pointer keys are all
// strings; the document's non-string scalars (history cap, log level)
// live in the typed config echo, where encoding/json writes numbers and
// booleans unquoted rather than as strings.
func (s *Store) Set(key, value string) error {
	known := false
	err := s.mutate(func(st *StateData) {
		switch key {
		case KeyLastUnit:
			st.LastUnit = value
			known = true
		case KeyLastOperation:
			st.LastOperation = value
			known = true
		case KeyLastConfigSource:
			st.LastConfigSource = value
			known = true
		}
	})
	if err != nil {
		return err
	}
	if !known {
		return fmt.Errorf("unknown state key %q", key)
	}
	return nil
}

// RecordOperation upserts the unit's record: the operation, timestamp, and
// status are always replaced; config source and runtime ID are preserved
// from the existing record when not supplied.
func (s *Store) RecordOperation(unitName string, op model.Operation, configSource, runtimeID string, status model.UnitStatus) error {
	return s.mutate(func(st *StateData) {
		record := st.Units[unitName]
		record.LastOperation = op
		record.LastOperationTime = s.now().UTC()
		record.Status = status
		if configSource != "" {
			record.ConfigSource = configSource
		}
		if runtimeID != "" {
			record.RuntimeID = runtimeID
		}
		st.Units[unitName] = record
	})
}

// UpdatePointers sets the last-used unit/operation/source pointers in a
// single atomic write. Empty source leaves the previous pointer untouched.
func (s *Store) UpdatePointers(unitName string, op model.Operation, configSource string) error {
	return s.mutate(func(st *StateData) {
		st.LastUnit = unitName
		st.LastOperation = op.String()
		if configSource != "" {
			st.LastConfigSource = configSource
		}
	})
}

// TouchHistory moves the unit to the front of the history, removing any
// prior occurrence, then truncates to the configured maximum.
func (s *Store) TouchHistory(unitName string) error {
	return s.mutate(func(st *StateData) {
		st.History = touched(st.History, unitName, s.historyMax)
	})
}

// touched is the pure history update: front insertion, dedup, bound.
func touched(history []string, unitName string, max int) []string {
	next := make([]string, 0, len(history)+1)
	next = append(next, unitName)
	for _, h := range history {
		if h != unitName {
			next = append(next, h)
		}
	}
	if len(next) > max {
		next = next[:max]
	}
	return next
}

// Remove deletes the unit's record, strips it from the history, and clears
// the last-unit pointer if it pointed at the removed unit.
func (s *Store) Remove(unitName string) error {
	return s.mutate(func(st *StateData) {
		delete(st.Units, unitName)

		filtered := st.History[:0]
		for _, h := range st.History {
			if h != unitName {
				filtered = append(filtered, h)
			}
		}
		st.History = filtered

		if st.LastUnit == unitName {
			st.LastUnit = ""
		}
	})
}

// ReconcileStatus records the runtime's view of a unit's status. The
// record is rewritten only when the status or runtime ID actually changed,
// which keeps repeated reconciliation runs at a fixed point.
func (s *Store) ReconcileStatus(unitName string, status model.UnitStatus, runtimeID string) (bool, error) {
	changed := false
	err := s.mutate(func(st *StateData) {
		record, ok := st.Units[unitName]
		if !ok {
			return
		}
		if record.Status == status && (runtimeID == "" || record.RuntimeID == runtimeID) {
			return
		}
		record.Status = status
		if runtimeID != "" {
			record.RuntimeID = runtimeID
		}
		record.LastOperation = model.OpSync
		record.LastOperationTime = s.now().UTC()
		st.Units[unitName] = record
		changed = true
	})
	return changed, err
}

// Record returns the unit's record, if one exists.
func (s *Store) Record(unitName string) (model.UnitRecord, bool, error) {
	doc, err := s.Load()
	if err != nil {
		return model.UnitRecord{}, false, err
	}
	record, ok := doc.State.Units[unitName]
	return record, ok, nil
}

// Summary renders a human-readable snapshot: last pointers, history, and
// each tracked unit with its status, sorted by name for stable output.
func (s *Store) Summary() (string, error) {
	doc, err := s.Load()
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Last unit:    %s\n", orDash(doc.State.LastUnit))
	fmt.Fprintf(&b, "Last op:      %s\n", orDash(doc.State.LastOperation))
	fmt.Fprintf(&b, "Last config:  %s\n", orDash(doc.State.LastConfigSource))
	fmt.Fprintf(&b, "History:      %s\n", orDash(strings.Join(doc.State.History, ", ")))

	if len(doc.State.Units) == 0 {
		b.WriteString("No tracked units.\n")
		return b.String(), nil
	}

	names := make([]string, 0, len(doc.State.Units))
	for name := range doc.State.Units {
		names = append(names, name)
	}
	sort.Strings(names)

	b.WriteString("Units:\n")
	for _, name := range names {
		record := doc.State.Units[name]
		fmt.Fprintf(&b, "  %-20s %-8s %-8s %s\n",
			name, record.Status, record.LastOperation,
			record.LastOperationTime.Format(time.RFC3339))
	}
	return b.String(), nil
}

// orDash substitutes a dash for empty values in the summary.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
