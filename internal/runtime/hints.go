package runtime

import "strings"

// hintPattern pairs a known failure substring in runtime output with an
// actionable remediation hint. Hints are advisory presentation data; they
// never change the success/failure verdict of the command.
type hintPattern struct {
	substring string
	hint      string
}

// hintPatterns is checked in order; the first match wins.
var hintPatterns = []hintPattern{
	{"port is already allocated", "another container or process is using the requested host port"},
	{"address already in use", "another container or process is using the requested host port"},
	{"permission denied", "check that your user can access the runtime socket (docker group membership)"},
	{"no such image", "the image does not exist locally; pull it first or check the image name"},
	{"pull access denied", "the image does not exist or requires authentication (docker login)"},
	{"manifest unknown", "the image tag does not exist in the registry"},
	{"no space left on device", "the runtime host is out of disk space; prune unused images and volumes"},
	{"no such network", "a referenced network is missing; create it or remove the reference"},
	{"network not found", "a referenced network is missing; create it or remove the reference"},
	{"no such volume", "a referenced volume is missing; create it or remove the reference"},
}

// ClassifyHint inspects captured runtime output for known failure
// substrings and returns a remediation hint, or "" when none matches.
func ClassifyHint(output string) string {
	lowered := strings.ToLower(output)
	for _, p := range hintPatterns {
		if strings.Contains(lowered, p.substring) {
			return p.hint
		}
	}
	return ""
}
