package configcodec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/cburgosro9303/vortex-config/internal/configvalue"
)

// ParseJSON decodes JSON content into a configvalue.Value, preserving
// object key insertion order. encoding/json's Unmarshal into
// map[string]any loses order, so this drives the lower-level Decoder
// token stream directly.
func ParseJSON(input []byte) (*configvalue.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.UseNumber()
	v, err := decodeJSONValue(dec)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func decodeJSONValue(dec *json.Decoder) (*configvalue.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	return jsonValueFromToken(dec, tok)
}

func jsonValueFromToken(dec *json.Decoder, tok json.Token) (*configvalue.Value, error) {
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeJSONObject(dec)
		case '[':
			return decodeJSONArray(dec)
		default:
			return nil, fmt.Errorf("configcodec: unexpected delimiter %q", t)
		}
	case nil:
		return configvalue.Null(), nil
	case bool:
		return configvalue.Bool(t), nil
	case string:
		return configvalue.String(t), nil
	case json.Number:
		if i, err := strconv.ParseInt(t.String(), 10, 64); err == nil {
			return configvalue.Int(i), nil
		}
		f, err := strconv.ParseFloat(t.String(), 64)
		if err != nil {
			return nil, fmt.Errorf("configcodec: invalid number %q: %w", t.String(), err)
		}
		return configvalue.Float(f), nil
	default:
		return nil, fmt.Errorf("configcodec: unexpected token %T", tok)
	}
}

func decodeJSONObject(dec *json.Decoder) (*configvalue.Value, error) {
	obj := configvalue.NewObject()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("configcodec: expected object key, got %T", keyTok)
		}
		val, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		obj.Object.Set(key, val)
	}
	// consume closing '}'
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return obj, nil
}

func decodeJSONArray(dec *json.Decoder) (*configvalue.Value, error) {
	var items []*configvalue.Value
	for dec.More() {
		val, err := decodeJSONValue(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, val)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return configvalue.Array(items...), nil
}

// SerializeJSON renders v as pretty-printed JSON, preserving object key
// insertion order (the stdlib encoder would otherwise sort map keys).
func SerializeJSON(v *configvalue.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSONValue(&buf, v, 0, true); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeJSONCompact renders v as single-line JSON.
func SerializeJSONCompact(v *configvalue.Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSONValue(&buf, v, 0, false); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSONValue(w io.Writer, v *configvalue.Value, depth int, pretty bool) error {
	if v == nil || v.Kind == configvalue.KindNull {
		_, err := io.WriteString(w, "null")
		return err
	}
	switch v.Kind {
	case configvalue.KindBool:
		_, err := io.WriteString(w, strconv.FormatBool(v.Bool))
		return err
	case configvalue.KindInt:
		_, err := io.WriteString(w, strconv.FormatInt(v.Int, 10))
		return err
	case configvalue.KindFloat:
		_, err := io.WriteString(w, strconv.FormatFloat(v.Float, 'g', -1, 64))
		return err
	case configvalue.KindString:
		b, err := json.Marshal(v.String)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case configvalue.KindArray:
		return writeJSONArray(w, v.Array, depth, pretty)
	case configvalue.KindObject:
		return writeJSONObject(w, v.Object, depth, pretty)
	default:
		return fmt.Errorf("configcodec: unknown value kind %d", v.Kind)
	}
}

func indent(w io.Writer, depth int) {
	for i := 0; i < depth; i++ {
		io.WriteString(w, "  ")
	}
}

func writeJSONArray(w io.Writer, items []*configvalue.Value, depth int, pretty bool) error {
	if len(items) == 0 {
		_, err := io.WriteString(w, "[]")
		return err
	}
	io.WriteString(w, "[")
	for i, item := range items {
		if i > 0 {
			io.WriteString(w, ",")
		}
		if pretty {
			io.WriteString(w, "\n")
			indent(w, depth+1)
		}
		if err := writeJSONValue(w, item, depth+1, pretty); err != nil {
			return err
		}
	}
	if pretty {
		io.WriteString(w, "\n")
		indent(w, depth)
	}
	io.WriteString(w, "]")
	return nil
}

func writeJSONObject(w io.Writer, obj *configvalue.Object, depth int, pretty bool) error {
	keys := obj.Keys()
	if len(keys) == 0 {
		_, err := io.WriteString(w, "{}")
		return err
	}
	io.WriteString(w, "{")
	for i, k := range keys {
		if i > 0 {
			io.WriteString(w, ",")
		}
		if pretty {
			io.WriteString(w, "\n")
			indent(w, depth+1)
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return err
		}
		w.Write(kb)
		io.WriteString(w, ":")
		if pretty {
			io.WriteString(w, " ")
		}
		child, _ := obj.Get(k)
		if err := writeJSONValue(w, child, depth+1, pretty); err != nil {
			return err
		}
	}
	if pretty {
		io.WriteString(w, "\n")
		indent(w, depth)
	}
	io.WriteString(w, "}")
	return nil
}
