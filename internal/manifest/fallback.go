// fallback.go implements the line-scan extraction used when structured
// parsing of a custom document fails. It is heuristic: it can mis-extract
// on unusual formatting and is documented as best-effort, not as a parser.
package manifest

import (
	"regexp"
	"strings"
)

var (
	// fallbackNameRe matches "container_name: value" lines, tolerating
	// list dashes, quoting, and leading whitespace.
	fallbackNameRe = regexp.MustCompile(`^\s*-?\s*container_name\s*:\s*["']?([A-Za-z_][A-Za-z0-9._-]*)["']?\s*$`)

	// fallbackImageRe matches "image: value" lines the same way.
	fallbackImageRe = regexp.MustCompile(`^\s*-?\s*image\s*:\s*["']?([^\s"']+)["']?\s*$`)
)

// scanFallbackUnits walks the raw text line by line pairing image lines
// with the nearest preceding container_name line. An image without a
// preceding name gets its base name. Duplicate names keep the first hit.
func scanFallbackUnits(raw string) []fallbackUnit {
	var units []fallbackUnit
	seen := make(map[string]bool)
	pendingName := ""

	for _, line := range strings.Split(raw, "\n") {
		if m := fallbackNameRe.FindStringSubmatch(line); m != nil {
			pendingName = m[1]
			continue
		}
		m := fallbackImageRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		image := m[1]
		name := pendingName
		pendingName = ""
		if name == "" {
			name = imageBaseName(image)
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		units = append(units, fallbackUnit{name: name, image: image})
	}

	// A trailing container_name with no image line still names a unit.
	if pendingName != "" && !seen[pendingName] {
		units = append(units, fallbackUnit{name: pendingName})
	}

	return units
}
