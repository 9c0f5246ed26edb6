package httpserver

import "strings"

// Format identifies one of the three response encodings this server
// negotiates via the Accept header.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatProperties
)

// ContentType returns the header value written for f.
func (f Format) ContentType() string {
	switch f {
	case FormatYAML:
		return "application/x-yaml"
	case FormatProperties:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// FormatFromAccept classifies an Accept header value into a Format, per
// spec.md §4.10: application/x-yaml|text/yaml|application/yaml -> YAML,
// text/plain -> Properties, everything else (including application/json,
// */*, and an absent header) -> JSON.
func FormatFromAccept(accept string) Format {
	if accept == "" {
		return FormatJSON
	}
	lower := strings.ToLower(accept)
	switch {
	case strings.Contains(lower, "application/x-yaml"),
		strings.Contains(lower, "text/yaml"),
		strings.Contains(lower, "application/yaml"):
		return FormatYAML
	case strings.Contains(lower, "text/plain"):
		return FormatProperties
	default:
		return FormatJSON
	}
}
