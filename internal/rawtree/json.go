package rawtree

import (
	"fmt"
	"io"
	"strings"

	"github.com/tidwall/gjson"

	"calibcat/internal/datetime"
)

// LoadJSON decodes a JSON object into a mapping. Numbers written without a
// fraction or exponent become integers; strings shaped like timestamps become
// timestamps since JSON has no date type.
func LoadJSON(r io.Reader) (*Map, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("parse json: invalid document")
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("parse json: top level must be an object")
	}
	node, err := fromJSON(root)
	if err != nil {
		return nil, err
	}
	m, _ := node.AsMap()
	return m, nil
}

func fromJSON(res gjson.Result) (Node, error) {
	switch {
	case res.IsObject():
		m := NewMap()
		var err error
		res.ForEach(func(key, value gjson.Result) bool {
			var n Node
			n, err = fromJSON(value)
			if err != nil {
				err = fmt.Errorf("key %q: %w", key.String(), err)
				return false
			}
			m.Set(key.String(), n)
			return true
		})
		if err != nil {
			return Node{}, err
		}
		return Mapping(m), nil
	case res.IsArray():
		items := make([]Node, 0)
		for _, item := range res.Array() {
			n, err := fromJSON(item)
			if err != nil {
				return Node{}, err
			}
			items = append(items, n)
		}
		return List(items...), nil
	}

	switch res.Type {
	case gjson.Null:
		return Null(), nil
	case gjson.True:
		return Bool(true), nil
	case gjson.False:
		return Bool(false), nil
	case gjson.Number:
		if strings.ContainsAny(res.Raw, ".eE") {
			return Float(res.Float()), nil
		}
		return Int(res.Int()), nil
	case gjson.String:
		return promoteString(res.String()), nil
	default:
		return Node{}, fmt.Errorf("unsupported json value %s", res.Raw)
	}
}

func promoteString(s string) Node {
	if datetime.Looks(s) {
		if ts, err := datetime.Parse(s); err == nil {
			return Time(ts)
		}
	}
	return String(s)
}
