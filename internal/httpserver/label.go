package httpserver

import (
	"net/url"
	"strings"
)

// splitProfiles splits a comma-separated profile path segment, trims
// whitespace, and drops empty entries, per spec.md §4.10's "profile may
// be a comma-separated list."
func splitProfiles(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// sanitizedLabel URL-decodes a label path segment, falling back to the
// raw segment if it isn't validly percent-encoded.
func sanitizedLabel(raw string) string {
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// validateLabel rejects a label containing ".." or any control
// character, per spec.md §4.10 scenario F (path-traversal rejection).
func validateLabel(label string) error {
	if strings.Contains(label, "..") {
		return errLabelTraversal
	}
	for _, r := range label {
		if r < 0x20 || r == 0x7f {
			return errLabelControlChar
		}
	}
	return nil
}
