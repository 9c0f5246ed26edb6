package httpserver

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/cburgosro9303/vortex-config/internal/configcodec"
	"github.com/cburgosro9303/vortex-config/internal/configsource"
	"github.com/cburgosro9303/vortex-config/internal/configvalue"
)

// flatEntry is one dotted-path -> leaf pair in insertion order, the
// shape the JSON/YAML "source" maps of spec.md §6.1 require.
type flatEntry struct {
	Key   string
	Value *configvalue.Value
}

func flattenOrdered(v *configvalue.Value) []flatEntry {
	var out []flatEntry
	flattenOrderedInto(&out, "", v)
	return out
}

func flattenOrderedInto(out *[]flatEntry, prefix string, v *configvalue.Value) {
	if v == nil {
		return
	}
	if v.Kind != configvalue.KindObject || (v.Object.Len() == 0 && prefix != "") {
		if prefix == "" {
			return
		}
		*out = append(*out, flatEntry{Key: prefix, Value: v})
		return
	}
	for _, k := range v.Object.Keys() {
		child, _ := v.Object.Get(k)
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		flattenOrderedInto(out, key, child)
	}
}

// buildResponseValue renders a configsource.Result into the Spring
// Cloud Config-compatible response tree of spec.md §6.1: propertySources
// highest-precedence first, each source's config flattened to dotted
// keys.
func buildResponseValue(result *configsource.Result) *configvalue.Value {
	root := configvalue.NewObject()

	profiles := make([]*configvalue.Value, len(result.Profiles))
	for i, p := range result.Profiles {
		profiles[i] = configvalue.String(p)
	}

	root.Object.Set("name", configvalue.String(result.Name))
	root.Object.Set("profiles", configvalue.Array(profiles...))
	root.Object.Set("label", configvalue.String(result.Label))
	if result.HasVersion {
		root.Object.Set("version", configvalue.String(result.Version))
	} else {
		root.Object.Set("version", configvalue.Null())
	}
	root.Object.Set("state", configvalue.Null())

	sources := result.PropertySources.HighestPrecedenceFirst()
	items := make([]*configvalue.Value, len(sources))
	for i, ps := range sources {
		psObj := configvalue.NewObject()
		psObj.Object.Set("name", configvalue.String(ps.Name))

		srcObj := configvalue.NewObject()
		for _, e := range flattenOrdered(ps.Config) {
			srcObj.Object.Set(e.Key, e.Value)
		}
		psObj.Object.Set("source", srcObj)
		items[i] = psObj
	}
	root.Object.Set("propertySources", configvalue.Array(items...))

	return root
}

// propertiesBody renders result as Java-.properties text: header
// comments naming the application/profiles/label, then each property
// source's flattened content under its own "# Source:" comment, lowest
// precedence first (mirroring original_source's reversed iteration over
// a precedence-first list).
func propertiesBody(result *configsource.Result) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Application: %s\n", result.Name)
	fmt.Fprintf(&b, "# Profiles: %s\n", strings.Join(result.Profiles, ","))
	if result.Label != "" {
		fmt.Fprintf(&b, "# Label: %s\n", result.Label)
	}
	b.WriteByte('\n')

	for _, ps := range result.PropertySources.Sources() {
		fmt.Fprintf(&b, "# Source: %s\n", ps.Name)
		b.WriteString(configcodec.SerializeProperties(ps.Config))
		b.WriteByte('\n')
	}
	return b.String()
}

// writeConfigResponse serializes result in format and writes it with
// the matching Content-Type.
func writeConfigResponse(w http.ResponseWriter, result *configsource.Result, format Format) {
	w.Header().Set("Content-Type", format.ContentType())

	switch format {
	case FormatYAML:
		body, err := configcodec.SerializeYAML(buildResponseValue(result))
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	case FormatProperties:
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(propertiesBody(result)))
	default:
		body, err := configcodec.SerializeJSON(buildResponseValue(result))
		if err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}
