package configcodec

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/cburgosro9303/vortex-config/internal/configvalue"
)

// ParseError names the 1-based source line a .properties parse failed
// on, per spec.md §4.2's error contract.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("properties: line %d: %s", e.Line, e.Reason)
}

// ParseProperties parses Java-.properties-style content into a nested
// configvalue.Value object, building intermediate objects from
// dot-separated keys. An intermediate segment that already holds a
// non-object value is overwritten with a fresh empty object (last
// writer wins for container shape).
func ParseProperties(input string) (*configvalue.Value, error) {
	root := configvalue.NewObject()
	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		key, value, ok := splitPropertyLine(line)
		if !ok {
			return nil, &ParseError{Line: lineNum, Reason: "missing separator ('=' or ':')"}
		}
		insertNested(root.Object, strings.TrimSpace(key), strings.TrimSpace(value))
	}
	return root, nil
}

func splitPropertyLine(line string) (key, value string, ok bool) {
	idx := strings.IndexAny(line, "=:")
	if idx < 0 {
		return "", "", false
	}
	return line[:idx], line[idx+1:], true
}

func insertNested(root *configvalue.Object, key, value string) {
	parts := strings.Split(key, ".")
	cur := root
	for i, part := range parts {
		if i == len(parts)-1 {
			cur.Set(part, configvalue.String(value))
			return
		}
		next, ok := cur.Get(part)
		if !ok || next.Kind != configvalue.KindObject {
			next = configvalue.NewObject()
			cur.Set(part, next)
		}
		cur = next.Object
	}
}

// SerializeProperties flattens v to dotted keys (insertion order
// preserved) and renders it as Java-.properties text. Arrays render as
// comma-joined scalar strings and objects as inline JSON-ish text —
// both intentionally lossy, matching the source's own debug-style
// array/object rendering.
func SerializeProperties(v *configvalue.Value) string {
	flat := configvalue.Flatten(v)
	order := flattenOrder(v, "")
	var b strings.Builder
	for _, key := range order {
		leaf := flat[key]
		b.WriteString(escapePropertiesKey(key))
		b.WriteByte('=')
		b.WriteString(valueToPropertiesString(leaf))
		b.WriteByte('\n')
	}
	return b.String()
}

func valueToPropertiesString(v *configvalue.Value) string {
	if v == nil || v.Kind == configvalue.KindNull {
		return ""
	}
	switch v.Kind {
	case configvalue.KindBool:
		return strconv.FormatBool(v.Bool)
	case configvalue.KindInt:
		return strconv.FormatInt(v.Int, 10)
	case configvalue.KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case configvalue.KindString:
		return escapePropertiesValue(v.String)
	case configvalue.KindArray:
		parts := make([]string, len(v.Array))
		for i, item := range v.Array {
			parts[i] = valueToPropertiesString(item)
		}
		return strings.Join(parts, ",")
	case configvalue.KindObject:
		return inlineObject(v)
	default:
		return ""
	}
}

func inlineObject(v *configvalue.Value) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range v.Object.Keys() {
		if i > 0 {
			b.WriteByte(',')
		}
		child, _ := v.Object.Get(k)
		b.WriteString(k)
		b.WriteByte(':')
		b.WriteString(valueToPropertiesString(child))
	}
	b.WriteByte('}')
	return b.String()
}

func escapePropertiesKey(key string) string {
	r := strings.NewReplacer(`\`, `\\`, `:`, `\:`, `=`, `\=`, ` `, `\ `)
	return r.Replace(key)
}

func escapePropertiesValue(value string) string {
	r := strings.NewReplacer(`\`, `\\`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return r.Replace(value)
}

// flattenOrder returns the same dotted keys Flatten would produce, but
// in depth-first insertion order, since map iteration in Flatten's
// output is not itself ordered.
func flattenOrder(v *configvalue.Value, prefix string) []string {
	if v == nil {
		return nil
	}
	if v.Kind != configvalue.KindObject || (v.Object.Len() == 0 && prefix != "") {
		if prefix == "" {
			return nil
		}
		return []string{prefix}
	}
	var out []string
	for _, k := range v.Object.Keys() {
		child, _ := v.Object.Get(k)
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		out = append(out, flattenOrder(child, key)...)
	}
	return out
}
