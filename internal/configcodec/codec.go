// Package configcodec implements the JSON, YAML, and .properties codecs
// that parse configuration files into, and serialize them out of, the
// internal/configvalue tree. The .properties serializer flattens to
// dotted keys with configvalue.Flatten; the HTTP JSON response builds
// its "source" map with its own flattener in internal/httpserver.
package configcodec

import (
	"fmt"

	"github.com/cburgosro9303/vortex-config/internal/configvalue"
)

// Format identifies a supported configuration file format.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
	FormatProperties
)

// Extensions returns the extensions tried for a file in priority order,
// matching spec.md §4.6: yml, yaml, json, properties.
func Extensions() []string {
	return []string{"yml", "yaml", "json", "properties"}
}

// FormatForExtension maps a file extension to its Format, or reports ok
// == false for an unrecognized extension.
func FormatForExtension(ext string) (Format, bool) {
	switch ext {
	case "yml", "yaml":
		return FormatYAML, true
	case "json":
		return FormatJSON, true
	case "properties":
		return FormatProperties, true
	default:
		return 0, false
	}
}

// Parse decodes input according to format.
func Parse(format Format, input []byte) (*configvalue.Value, error) {
	switch format {
	case FormatYAML:
		return ParseYAML(input)
	case FormatJSON:
		return ParseJSON(input)
	case FormatProperties:
		return ParseProperties(string(input))
	default:
		return nil, fmt.Errorf("configcodec: unknown format %d", format)
	}
}

// Equal reports whether a and b are structurally equal, respecting
// object key insertion order. Used by round-trip identity tests:
// Parse(Serialize(v)) must Equal v.
func Equal(a, b *configvalue.Value) bool {
	if a == nil || b == nil {
		return (a == nil || a.Kind == configvalue.KindNull) == (b == nil || b.Kind == configvalue.KindNull)
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case configvalue.KindNull:
		return true
	case configvalue.KindBool:
		return a.Bool == b.Bool
	case configvalue.KindInt:
		return a.Int == b.Int
	case configvalue.KindFloat:
		return a.Float == b.Float
	case configvalue.KindString:
		return a.String == b.String
	case configvalue.KindArray:
		if len(a.Array) != len(b.Array) {
			return false
		}
		for i := range a.Array {
			if !Equal(a.Array[i], b.Array[i]) {
				return false
			}
		}
		return true
	case configvalue.KindObject:
		ak, bk := a.Object.Keys(), b.Object.Keys()
		if len(ak) != len(bk) {
			return false
		}
		for i, k := range ak {
			if bk[i] != k {
				return false
			}
			av, _ := a.Object.Get(k)
			bv, _ := b.Object.Get(k)
			if !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
