// synthesize.go builds the minimal single-unit compose manifest the
// lifecycle controller hands to the runtime for compose-style generation.
// Only the selected service is carried over, plus any top-level volumes
// and networks sections it may reference.
package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/stevedore/internal/model"
)

// SynthesizeUnitManifest produces a compose document containing only the
// named service. The service definition is reused verbatim from the source
// document; top-level volumes and networks sections are copied wholesale
// so references inside the service stay valid. When the service declares
// no container_name, runtimeName is pinned as one so the runtime does not
// decorate the name with project and replica parts.
func (d *Document) SynthesizeUnitManifest(unitName, runtimeName string) ([]byte, error) {
	if !d.Dialect.IsComposeFamily() {
		return nil, &model.UnsupportedDialectError{Dialect: d.Dialect.String()}
	}

	service := d.unitMapping(unitName)
	if service == nil {
		return nil, &model.ConfigInvalidError{
			Source: d.Path,
			Reason: fmt.Sprintf("unit %q not found in services", unitName),
		}
	}

	if runtimeName != "" && scalarValue(service, "container_name") == "" {
		service = &yaml.Node{Kind: yaml.MappingNode, Content: service.Content}
		appendPair(service, "container_name", scalarNode(runtimeName))
	}

	root := &yaml.Node{Kind: yaml.MappingNode}
	appendPair(root, "services", &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			scalarNode(unitName),
			service,
		},
	})

	for _, section := range []string{"volumes", "networks"} {
		if node := mappingValue(d.root, section); node != nil {
			appendPair(root, section, node)
		}
	}

	out, err := yaml.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize single-unit manifest for %q: %w", unitName, err)
	}

	header := fmt.Sprintf("# Generated by stevedore from %s for unit %q\n", d.Path, unitName)
	return append([]byte(header), out...), nil
}

// appendPair appends a key/value pair to a mapping node.
func appendPair(mapping *yaml.Node, key string, value *yaml.Node) {
	mapping.Content = append(mapping.Content, scalarNode(key), value)
}

// scalarNode builds a plain string scalar.
func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: value}
}
