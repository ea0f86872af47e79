// runcmd.go assembles a direct runtime invocation for custom-dialect
// units, translating the extracted image, ports, environment, and volumes
// into "run" arguments.
package manifest

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/stevedore/internal/model"
)

// ExtractRunCommand builds the argument vector (after the binary name) for
// a detached direct run of the named unit. Only the custom dialect uses
// this path; compose-style units go through manifest synthesis instead.
//
// A unit without a determinable image is a hard ConfigInvalidError;
// malformed optional fields (ports, environment, volumes) are skipped.
func (d *Document) ExtractRunCommand(unitName, runtimeName string) ([]string, error) {
	image, unit := d.unitImage(unitName)
	if image == "" {
		return nil, &model.ConfigInvalidError{
			Source: d.Path,
			Reason: fmt.Sprintf("no image found for unit %q", unitName),
		}
	}

	args := []string{"run", "-d", "--name", runtimeName}
	if unit != nil {
		args = append(args, portArgs(unit)...)
		args = append(args, envArgs(unit)...)
		args = append(args, volumeArgs(unit)...)
	}
	args = append(args, image)
	return args, nil
}

// unitImage resolves a unit's image and, when available, its mapping node
// for reading optional fields. Fallback-scanned documents have no mapping.
func (d *Document) unitImage(unitName string) (string, *yaml.Node) {
	if d.usedFallback {
		for _, u := range d.fallbackUnits {
			if u.name == unitName {
				return u.image, nil
			}
		}
		return "", nil
	}

	unit := d.unitMapping(unitName)
	if unit == nil {
		return "", nil
	}
	return scalarValue(unit, "image"), unit
}

// portArgs converts a ports sequence into -p flags. Entries are expected
// in "host:container" form; plain scalars are passed through untouched.
func portArgs(unit *yaml.Node) []string {
	return sequenceFlags(unit, "ports", "-p")
}

// envArgs converts an environment declaration into -e flags. Both the
// sequence form ("KEY=value" entries) and the mapping form are accepted;
// mapping keys are emitted in sorted order for deterministic commands.
func envArgs(unit *yaml.Node) []string {
	env := mappingValue(unit, "environment")
	if env == nil {
		return nil
	}

	switch env.Kind {
	case yaml.SequenceNode:
		return sequenceFlags(unit, "environment", "-e")
	case yaml.MappingNode:
		keys := make([]string, 0, len(env.Content)/2)
		byKey := make(map[string]string)
		for i := 0; i+1 < len(env.Content); i += 2 {
			key := env.Content[i].Value
			value := env.Content[i+1]
			if value.Kind != yaml.ScalarNode {
				continue
			}
			keys = append(keys, key)
			byKey[key] = value.Value
		}
		sort.Strings(keys)

		args := make([]string, 0, len(keys)*2)
		for _, k := range keys {
			args = append(args, "-e", k+"="+byKey[k])
		}
		return args
	default:
		return nil
	}
}

// volumeArgs converts a volumes sequence into -v flags.
func volumeArgs(unit *yaml.Node) []string {
	return sequenceFlags(unit, "volumes", "-v")
}

// sequenceFlags emits one flag per scalar entry of the named sequence
// field, skipping non-scalar entries.
func sequenceFlags(unit *yaml.Node, key, flag string) []string {
	seq := mappingValue(unit, key)
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	var args []string
	for _, entry := range seq.Content {
		if entry.Kind != yaml.ScalarNode || entry.Value == "" {
			continue
		}
		args = append(args, flag, entry.Value)
	}
	return args
}
