package rawtree

import (
	"fmt"
	"sort"
	"strconv"
	"time"
)

// Kind tags the variant held by a Node.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindTime
	KindComplex
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindBool:
		return "boolean"
	case KindTime:
		return "timestamp"
	case KindComplex:
		return "complex"
	case KindList:
		return "list"
	case KindMap:
		return "mapping"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Node is one value of a settings tree.
type Node struct {
	kind    Kind
	str     string
	i       int64
	f       float64
	b       bool
	t       time.Time
	c       complex128
	list    []Node
	mapping *Map
}

func Null() Node { return Node{kind: KindNull} }
func String(v string) Node { return Node{kind: KindString, str: v} }
func Int(v int64) Node { return Node{kind: KindInt, i: v} }
func Float(v float64) Node { return Node{kind: KindFloat, f: v} }
func Bool(v bool) Node { return Node{kind: KindBool, b: v} }
func Time(v time.Time) Node { return Node{kind: KindTime, t: v} }
func Complex(v complex128) Node { return Node{kind: KindComplex, c: v} }
func List(items ...Node) Node { return Node{kind: KindList, list: items} }
func Mapping(m *Map) Node {
	if m == nil {
		m = NewMap()
	}
	return Node{kind: KindMap, mapping: m}
}

func (n Node) Kind() Kind { return n.kind }

func (n Node) IsNull() bool { return n.kind == KindNull }

// IsScalar reports whether the node is neither a list nor a mapping.
func (n Node) IsScalar() bool { return n.kind != KindList && n.kind != KindMap }

func (n Node) AsString() (string, bool) { return n.str, n.kind == KindString }
func (n Node) AsInt() (int64, bool) { return n.i, n.kind == KindInt }
func (n Node) AsFloat() (float64, bool) { return n.f, n.kind == KindFloat }
func (n Node) AsBool() (bool, bool) { return n.b, n.kind == KindBool }
func (n Node) AsTime() (time.Time, bool) { return n.t, n.kind == KindTime }
func (n Node) AsComplex() (complex128, bool) { return n.c, n.kind == KindComplex }
func (n Node) AsList() ([]Node, bool) { return n.list, n.kind == KindList }
func (n Node) AsMap() (*Map, bool) { return n.mapping, n.kind == KindMap }

// String renders the node for diagnostics.
func (n Node) String() string {
	switch n.kind {
	case KindNull:
		return "null"
	case KindString:
		return strconv.Quote(n.str)
	case KindInt:
		return strconv.FormatInt(n.i, 10)
	case KindFloat:
		return strconv.FormatFloat(n.f, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(n.b)
	case KindTime:
		return n.t.Format("2006-01-02T15:04:05.000")
	case KindComplex:
		return strconv.FormatComplex(n.c, 'g', -1, 128)
	case KindList:
		return fmt.Sprintf("list[%d]", len(n.list))
	case KindMap:
		return fmt.Sprintf("mapping[%d]", n.mapping.Len())
	default:
		return n.kind.String()
	}
}

// Map is a string-keyed mapping that remembers insertion order.
type Map struct {
	keys   []string
	values map[string]Node
}

func NewMap() *Map {
	return &Map{values: map[string]Node{}}
}

// Set inserts or replaces key. Replacing keeps the original position.
func (m *Map) Set(key string, value Node) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = value
}

func (m *Map) Get(key string) (Node, bool) {
	if m == nil {
		return Node{}, false
	}
	v, ok := m.values[key]
	return v, ok
}

func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.keys)
}

// FromGo converts decoded Go values (as produced by encoding/json-like
// decoders) into a Node. Map keys are sorted since Go maps carry no order.
func FromGo(v any) (Node, error) {
	switch val := v.(type) {
	case nil:
		return Null(), nil
	case Node:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(int64(val)), nil
	case int8:
		return Int(int64(val)), nil
	case int16:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint8:
		return Int(int64(val)), nil
	case uint16:
		return Int(int64(val)), nil
	case uint32:
		return Int(int64(val)), nil
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	case complex64:
		return Complex(complex128(val)), nil
	case complex128:
		return Complex(val), nil
	case time.Time:
		return Time(val.UTC()), nil
	case []any:
		items := make([]Node, 0, len(val))
		for i, item := range val {
			n, err := FromGo(item)
			if err != nil {
				return Node{}, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, n)
		}
		return List(items...), nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		m := NewMap()
		for _, k := range keys {
			n, err := FromGo(val[k])
			if err != nil {
				return Node{}, fmt.Errorf("key %q: %w", k, err)
			}
			m.Set(k, n)
		}
		return Mapping(m), nil
	default:
		return Node{}, fmt.Errorf("unsupported value type %T", v)
	}
}
