package configcodec

import (
	"fmt"
	"strconv"

	"github.com/cburgosro9303/vortex-config/internal/configvalue"
	"gopkg.in/yaml.v3"
)

// ParseYAML decodes YAML content into a configvalue.Value, preserving
// mapping key order via yaml.Node, whose Content slice is ordered as
// written in the source document (unlike decoding into map[string]any).
func ParseYAML(input []byte) (*configvalue.Value, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(input, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return configvalue.Null(), nil
	}
	return nodeToValue(doc.Content[0])
}

func nodeToValue(n *yaml.Node) (*configvalue.Value, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return configvalue.Null(), nil
		}
		return nodeToValue(n.Content[0])
	case yaml.MappingNode:
		obj := configvalue.NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			val, err := nodeToValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.Object.Set(key, val)
		}
		return obj, nil
	case yaml.SequenceNode:
		items := make([]*configvalue.Value, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := nodeToValue(c)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return configvalue.Array(items...), nil
	case yaml.ScalarNode:
		return scalarNodeToValue(n)
	case yaml.AliasNode:
		return nodeToValue(n.Alias)
	default:
		return nil, fmt.Errorf("configcodec: unsupported yaml node kind %d", n.Kind)
	}
}

func scalarNodeToValue(n *yaml.Node) (*configvalue.Value, error) {
	switch n.Tag {
	case "!!null":
		return configvalue.Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, err
		}
		return configvalue.Bool(b), nil
	case "!!int":
		if i, err := strconv.ParseInt(n.Value, 0, 64); err == nil {
			return configvalue.Int(i), nil
		}
		var i int64
		if err := n.Decode(&i); err != nil {
			return nil, err
		}
		return configvalue.Int(i), nil
	case "!!float":
		f, err := strconv.ParseFloat(n.Value, 64)
		if err != nil {
			return nil, err
		}
		return configvalue.Float(f), nil
	default:
		return configvalue.String(n.Value), nil
	}
}

// SerializeYAML renders v as YAML, preserving object key insertion
// order by building a yaml.Node tree instead of a map[string]any.
func SerializeYAML(v *configvalue.Value) ([]byte, error) {
	node := valueToNode(v)
	return yaml.Marshal(node)
}

func valueToNode(v *configvalue.Value) *yaml.Node {
	if v == nil || v.Kind == configvalue.KindNull {
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
	switch v.Kind {
	case configvalue.KindBool:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!bool", Value: strconv.FormatBool(v.Bool)}
	case configvalue.KindInt:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(v.Int, 10)}
	case configvalue.KindFloat:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: strconv.FormatFloat(v.Float, 'g', -1, 64)}
	case configvalue.KindString:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.String}
	case configvalue.KindArray:
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Array {
			seq.Content = append(seq.Content, valueToNode(item))
		}
		return seq
	case configvalue.KindObject:
		mp := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range v.Object.Keys() {
			child, _ := v.Object.Get(k)
			mp.Content = append(mp.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, valueToNode(child))
		}
		return mp
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}
