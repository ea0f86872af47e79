// Package manifest parses and analyzes the declarative configuration
// documents stevedore generates containers from.
//
// Two dialect families are supported: compose-style documents (a services
// mapping, optionally with top-level networks, which marks the "stack"
// variant) and custom documents (an ad hoc scan for container_name and
// image fields). JSON and JSONC documents are accepted as well; comments
// are stripped with github.com/tidwall/jsonc before parsing, and the
// result flows through the same YAML pipeline since JSON is a YAML subset.
//
// When structured parsing fails outright, a best-effort line scan extracts
// container names and images so the caller still gets something usable.
// The fallback is heuristic by design and never overrides a successful
// structured parse.
package manifest
