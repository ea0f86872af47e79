package manifest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/stevedore/internal/model"
)

// Dialect classifies a configuration document. The set is closed: every
// consumer dispatches exhaustively over these three values.
type Dialect string

const (
	// DialectCompose is a compose-style document: a services mapping
	// without a top-level networks section.
	DialectCompose Dialect = "compose"

	// DialectStack is a compose-style document that additionally declares
	// a top-level networks section.
	DialectStack Dialect = "stack"

	// DialectCustom is anything else: an ad hoc document scanned for
	// container_name and image fields.
	DialectCustom Dialect = "custom"
)

// String returns the string representation of Dialect.
func (d Dialect) String() string {
	return string(d)
}

// IsComposeFamily reports whether the dialect is handled through the
// runtime's compose path rather than direct run assembly.
func (d Dialect) IsComposeFamily() bool {
	return d == DialectCompose || d == DialectStack
}

// readinessExtensionKey is the vendor extension field carrying a per-unit
// readiness timeout override, in seconds.
const readinessExtensionKey = "x-readiness-timeout"

// Document is a loaded configuration document. Documents are read fresh on
// every generation request and never mutated.
type Document struct {
	// Path is where the document was read from.
	Path string

	// Dialect is the classified dialect.
	Dialect Dialect

	// root is the document's top-level mapping node. Nil when only the
	// fallback scan succeeded.
	root *yaml.Node

	// fallbackUnits holds units extracted by the line scan when structured
	// parsing failed.
	fallbackUnits []fallbackUnit

	// usedFallback records that the line scan, not the parser, produced
	// the unit list.
	usedFallback bool
}

// fallbackUnit is a unit recovered by the heuristic line scan.
type fallbackUnit struct {
	name  string
	image string
}

// canonicalComposeNames are the filenames that mark a document as
// compose-style before any content is examined.
var canonicalComposeNames = map[string]bool{
	"docker-compose.yml":  true,
	"docker-compose.yaml": true,
	"compose.yml":         true,
	"compose.yaml":        true,
}

// Load reads and classifies a configuration document. A document that is
// unreadable is a hard ConfigInvalidError. A document that fails structured
// parsing degrades to the fallback line scan and is classified as custom.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.ConfigInvalidError{Source: path, Reason: "cannot read config file", Err: err}
	}

	// JSON and JSONC documents are comment-stripped first; the cleaned
	// bytes parse through the YAML pipeline unchanged.
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" || ext == ".jsonc" {
		data = jsonc.ToJSON(data)
	}

	doc := &Document{Path: path}

	var parsed yaml.Node
	if err := yaml.Unmarshal(data, &parsed); err != nil || docRoot(&parsed) == nil {
		// Structured parsing failed: degrade to the heuristic line scan.
		doc.Dialect = DialectCustom
		doc.usedFallback = true
		doc.fallbackUnits = scanFallbackUnits(string(data))
		if len(doc.fallbackUnits) == 0 {
			return nil, &model.ConfigInvalidError{Source: path, Reason: "not parseable and no units recoverable", Err: err}
		}
		return doc, nil
	}

	doc.root = docRoot(&parsed)
	doc.Dialect = classify(path, doc.root)
	return doc, nil
}

// classify applies the dialect heuristics: canonical compose filename
// first, then content (a services section makes it compose-style, an
// additional networks section makes it a stack), else custom.
func classify(path string, root *yaml.Node) Dialect {
	composeFamily := canonicalComposeNames[strings.ToLower(filepath.Base(path))]
	if !composeFamily {
		composeFamily = mappingValue(root, "services") != nil
	}
	if !composeFamily {
		return DialectCustom
	}
	if mappingValue(root, "networks") != nil {
		return DialectStack
	}
	return DialectCompose
}

// UsedFallback reports whether the heuristic line scan produced this
// document's units instead of the structured parser.
func (d *Document) UsedFallback() bool {
	return d.usedFallback
}

// ListUnits returns the declared unit names in document order.
//
// For compose-style dialects these are the services keys. For custom
// documents the tree is scanned for mappings carrying an image field; the
// unit name is the mapping's container_name when present, otherwise the
// image's base name. Results are deduplicated. An empty result is a hard
// NoUnitsFoundError.
func (d *Document) ListUnits() ([]string, error) {
	var names []string

	switch {
	case d.usedFallback:
		for _, u := range d.fallbackUnits {
			names = append(names, u.name)
		}
	case d.Dialect.IsComposeFamily():
		services := mappingValue(d.root, "services")
		if services != nil && services.Kind == yaml.MappingNode {
			for i := 0; i+1 < len(services.Content); i += 2 {
				names = append(names, services.Content[i].Value)
			}
		}
	default:
		for _, u := range d.customUnits() {
			names = append(names, u.name)
		}
	}

	names = dedup(names)
	if len(names) == 0 {
		return nil, &model.NoUnitsFoundError{Source: d.Path}
	}
	return names, nil
}

// ResolveRuntimeName resolves a declared unit name to its runtime
// identifier: an explicit container_name override wins, otherwise the
// declared name stands. The indirection exists because the logical name in
// the document and the name the runtime uses may legitimately differ.
func (d *Document) ResolveRuntimeName(declared string) string {
	unit := d.unitMapping(declared)
	if unit == nil {
		return declared
	}
	if override := scalarValue(unit, "container_name"); override != "" {
		return override
	}
	return declared
}

// ReadinessOverride looks up the per-unit readiness timeout extension.
// Malformed or non-numeric values are treated as absent, never as errors.
func (d *Document) ReadinessOverride(unitName string) (int, bool) {
	unit := d.unitMapping(unitName)
	if unit == nil {
		return 0, false
	}
	node := mappingValue(unit, readinessExtensionKey)
	if node == nil || node.Kind != yaml.ScalarNode {
		return 0, false
	}
	var seconds int
	if err := node.Decode(&seconds); err != nil || seconds <= 0 {
		return 0, false
	}
	return seconds, true
}

// unitMapping locates the mapping node describing the named unit:
// the services entry for compose-style documents, or the custom scan's
// matching mapping. Lookups tolerate being given either the declared name
// or the resolved runtime name.
func (d *Document) unitMapping(name string) *yaml.Node {
	if d.root == nil {
		return nil
	}

	if d.Dialect.IsComposeFamily() {
		services := mappingValue(d.root, "services")
		if services == nil || services.Kind != yaml.MappingNode {
			return nil
		}
		for i := 0; i+1 < len(services.Content); i += 2 {
			value := services.Content[i+1]
			if services.Content[i].Value == name || scalarValue(value, "container_name") == name {
				return value
			}
		}
		return nil
	}

	for _, candidate := range collectImageMappings(d.root) {
		if customUnitName(candidate) == name {
			return candidate
		}
	}
	return nil
}

// customUnits extracts the custom dialect's unit list from the parsed tree.
func (d *Document) customUnits() []fallbackUnit {
	var units []fallbackUnit
	for _, node := range collectImageMappings(d.root) {
		units = append(units, fallbackUnit{
			name:  customUnitName(node),
			image: scalarValue(node, "image"),
		})
	}
	return units
}

// customUnitName derives a unit name from a custom mapping: container_name
// when declared, otherwise the image's base name.
func customUnitName(node *yaml.Node) string {
	if name := scalarValue(node, "container_name"); name != "" {
		return name
	}
	return imageBaseName(scalarValue(node, "image"))
}

// collectImageMappings walks the tree and collects every mapping node that
// carries an image field. This is the custom dialect's best-effort unit
// discovery.
func collectImageMappings(node *yaml.Node) []*yaml.Node {
	if node == nil {
		return nil
	}
	var found []*yaml.Node
	if node.Kind == yaml.MappingNode && mappingValue(node, "image") != nil {
		found = append(found, node)
		return found
	}
	for _, child := range node.Content {
		found = append(found, collectImageMappings(child)...)
	}
	return found
}

// imageBaseName reduces an image reference to a bare name usable as a unit
// name: the last path segment with any tag stripped.
func imageBaseName(image string) string {
	if image == "" {
		return ""
	}
	base := image
	if idx := strings.LastIndex(base, "/"); idx >= 0 {
		base = base[idx+1:]
	}
	if idx := strings.Index(base, ":"); idx >= 0 {
		base = base[:idx]
	}
	return base
}

// mappingValue returns the value node for key within a mapping node,
// or nil when absent.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}

// scalarValue returns the scalar string value for key within a mapping
// node, or "" when absent or non-scalar.
func scalarValue(node *yaml.Node, key string) string {
	value := mappingValue(node, key)
	if value == nil || value.Kind != yaml.ScalarNode {
		return ""
	}
	return value.Value
}

// docRoot unwraps a parsed document to its top-level mapping node.
func docRoot(parsed *yaml.Node) *yaml.Node {
	if parsed.Kind == yaml.DocumentNode && len(parsed.Content) > 0 {
		parsed = parsed.Content[0]
	}
	if parsed.Kind != yaml.MappingNode {
		return nil
	}
	return parsed
}

// dedup removes duplicates while preserving first-seen order.
func dedup(names []string) []string {
	seen := make(map[string]bool, len(names))
	var out []string
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
