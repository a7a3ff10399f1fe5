package rawtree

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"calibcat/internal/datetime"
)

// ComplexTag marks a scalar to be read as a complex number, e.g. `!complex 1+2i`.
const ComplexTag = "!complex"

// LoadYAML decodes a single YAML document into a mapping.
func LoadYAML(r io.Reader) (*Map, error) {
	var doc yaml.Node
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return NewMap(), nil
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	root, err := fromYAML(&doc)
	if err != nil {
		return nil, err
	}
	if root.IsNull() {
		return NewMap(), nil
	}
	m, ok := root.AsMap()
	if !ok {
		return nil, fmt.Errorf("parse yaml: top level must be a mapping, got %s", root.Kind())
	}
	return m, nil
}

func fromYAML(n *yaml.Node) (Node, error) {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return Null(), nil
		}
		return fromYAML(n.Content[0])
	case yaml.AliasNode:
		if n.Alias == nil {
			return Null(), nil
		}
		return fromYAML(n.Alias)
	case yaml.SequenceNode:
		items := make([]Node, 0, len(n.Content))
		for _, child := range n.Content {
			item, err := fromYAML(child)
			if err != nil {
				return Node{}, err
			}
			items = append(items, item)
		}
		return List(items...), nil
	case yaml.MappingNode:
		return yamlMapping(n)
	case yaml.ScalarNode:
		return yamlScalar(n)
	default:
		return Node{}, fmt.Errorf("line %d: unsupported yaml node kind %d", n.Line, n.Kind)
	}
}

func yamlMapping(n *yaml.Node) (Node, error) {
	m := NewMap()
	for i := 0; i+1 < len(n.Content); i += 2 {
		keyNode, valueNode := n.Content[i], n.Content[i+1]
		if keyNode.ShortTag() == "!!merge" {
			merged, err := fromYAML(valueNode)
			if err != nil {
				return Node{}, err
			}
			if src, ok := merged.AsMap(); ok {
				for _, k := range src.Keys() {
					if _, exists := m.Get(k); !exists {
						v, _ := src.Get(k)
						m.Set(k, v)
					}
				}
			}
			continue
		}
		if keyNode.Kind != yaml.ScalarNode {
			return Node{}, fmt.Errorf("line %d: mapping keys must be scalars", keyNode.Line)
		}
		value, err := fromYAML(valueNode)
		if err != nil {
			return Node{}, fmt.Errorf("key %q: %w", keyNode.Value, err)
		}
		m.Set(keyNode.Value, value)
	}
	return Mapping(m), nil
}

func yamlScalar(n *yaml.Node) (Node, error) {
	quoted := n.Style&(yaml.DoubleQuotedStyle|yaml.SingleQuotedStyle) != 0
	switch tag := n.ShortTag(); tag {
	case "!!null":
		return Null(), nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return Node{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Bool(b), nil
	case "!!int":
		var i int64
		if err := n.Decode(&i); err != nil {
			return Node{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return Node{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Float(f), nil
	case "!!timestamp":
		if ts, err := datetime.Parse(n.Value); err == nil {
			return Time(ts), nil
		}
		var ts time.Time
		if err := n.Decode(&ts); err != nil {
			return Node{}, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return Time(ts.UTC()), nil
	case ComplexTag:
		c, err := strconv.ParseComplex(strings.TrimSpace(n.Value), 128)
		if err != nil {
			return Node{}, fmt.Errorf("line %d: complex value %q: %w", n.Line, n.Value, err)
		}
		return Complex(c), nil
	case "!!str":
		if !quoted && datetime.Looks(n.Value) {
			if ts, err := datetime.Parse(n.Value); err == nil {
				return Time(ts), nil
			}
		}
		return String(n.Value), nil
	default:
		return String(n.Value), nil
	}
}
