package config

import (
	"fmt"

	"calibcat/internal/fits"
	"calibcat/internal/rawtree"
	"calibcat/internal/value"
)

const (
	keyCategories = "categories"
	keySources    = "sources"
	keyFilters    = "filters"
	keyConfig     = "config"
)

// Keys that hold structure assembled by the parser itself.
var (
	forbiddenGlobalKeys   = map[string]bool{keyFilters: true}
	forbiddenCategoryKeys = map[string]bool{keyFilters: true, keyConfig: true, keyCategories: true}
)

// Parse builds a validated Config from a loaded settings tree.
func Parse(tree *rawtree.Map) (*Config, error) {
	if tree == nil {
		return nil, ErrNoCategories
	}
	cfg := New()

	var categories *rawtree.Map
	for _, rawKey := range tree.Keys() {
		node, _ := tree.Get(rawKey)
		key := NormalizeKey(rawKey)
		if key == keyCategories {
			m, ok := node.AsMap()
			if !ok {
				return nil, keyError(globalScope, rawKey, fmt.Errorf("%w: expected a mapping of categories, got %s", ErrTypeMismatch, node.Kind()))
			}
			categories = m
			continue
		}
		if err := cfg.applyGlobal(key, node); err != nil {
			return nil, keyError(globalScope, rawKey, err)
		}
	}

	if categories == nil || categories.Len() == 0 {
		return nil, ErrNoCategories
	}
	for _, name := range categories.Keys() {
		node, _ := categories.Get(name)
		if err := cfg.parseCategory(name, node); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyGlobal(key string, node rawtree.Node) error {
	if fits.IsKeyword(key) {
		f, err := ParseFilter(node)
		if err != nil {
			return err
		}
		c.Filters[key] = f
		return nil
	}
	if forbiddenGlobalKeys[key] {
		return ErrForbiddenKey
	}
	field, ok := ParseField(key)
	if !ok {
		return ErrUnknownKey
	}
	if node.IsNull() {
		return nil
	}
	v, err := ParseSettingValue(field, node)
	if err != nil {
		return err
	}
	return c.Set(field, v)
}

func (c *Config) parseCategory(name string, node rawtree.Node) error {
	scope := categoryScope(name)
	body, ok := node.AsMap()
	if !ok {
		if node.IsNull() {
			return keyError(scope, keySources, ErrMissingSources)
		}
		return keyError(scope, name, fmt.Errorf("%w: expected a mapping, got %s", ErrTypeMismatch, node.Kind()))
	}

	var sources Sources
	for _, rawKey := range body.Keys() {
		if NormalizeKey(rawKey) != keySources {
			continue
		}
		srcNode, _ := body.Get(rawKey)
		text, ok := srcNode.AsString()
		if !ok {
			return keyError(scope, rawKey, fmt.Errorf("%w: sources expects string, got %s", ErrTypeMismatch, srcNode.Kind()))
		}
		parsed, err := ParseSources(text)
		if err != nil {
			return keyError(scope, rawKey, err)
		}
		sources = parsed
	}

	cat, err := c.AddCategory(name, sources)
	if err != nil {
		return err
	}

	for _, rawKey := range body.Keys() {
		key := NormalizeKey(rawKey)
		if key == keySources {
			continue
		}
		node, _ := body.Get(rawKey)
		if err := cat.apply(key, node); err != nil {
			return keyError(scope, rawKey, err)
		}
	}
	return nil
}

func (c *Category) apply(key string, node rawtree.Node) error {
	if fits.IsKeyword(key) {
		f, err := ParseFilter(node)
		if err != nil {
			return err
		}
		c.Filters[key] = f
		return nil
	}
	if forbiddenCategoryKeys[key] {
		return ErrForbiddenKey
	}
	field, ok := ParseField(key)
	if !ok {
		return ErrUnknownKey
	}
	if node.IsNull() {
		return c.Set(field, Inherit)
	}
	v, err := ParseSettingValue(field, node)
	if err != nil {
		return err
	}
	return c.Set(field, v)
}

// ParseSettingValue coerces a raw node to the Go type held by field. Scalars
// are promoted to one-element lists for list settings and paths are cleaned.
func ParseSettingValue(field Field, node rawtree.Node) (any, error) {
	mismatch := func() error {
		return fmt.Errorf("%w: %s expects %s, got %s", ErrTypeMismatch, field, field.TypeName(), node.Kind())
	}

	switch field {
	case FieldTitle:
		s, ok := node.AsString()
		if !ok {
			return nil, mismatch()
		}
		return s, nil
	case FieldExptime:
		s, ok := node.AsString()
		if !ok {
			return nil, mismatch()
		}
		keyword := fits.NormalizeKeyword(s)
		if keyword != "" && !fits.IsKeyword(keyword) {
			return nil, fmt.Errorf("%w: exptime %q is not a header keyword", ErrTypeMismatch, s)
		}
		return keyword, nil
	case FieldROI:
		s, ok := node.AsString()
		if !ok {
			return nil, mismatch()
		}
		return ParseROI(s)
	case FieldDir:
		s, ok := node.AsString()
		if !ok {
			return nil, mismatch()
		}
		return cleanPath(s)
	case FieldHDU:
		if i, ok := node.AsInt(); ok {
			hdu := fits.HDUIndex(int(i))
			if err := hdu.Validate(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrTypeMismatch, err)
			}
			return hdu, nil
		}
		if s, ok := node.AsString(); ok && s != "" {
			return fits.HDUName(s), nil
		}
		return nil, mismatch()
	case FieldFiles, FieldSuffixes, FieldExcludeFiles:
		items, err := stringList(node)
		if err != nil {
			return nil, mismatch()
		}
		if field == FieldFiles {
			for i, p := range items {
				cleaned, err := cleanPath(p)
				if err != nil {
					return nil, err
				}
				items[i] = cleaned
			}
		}
		return items, nil
	case FieldIncludeSubdirectories, FieldFollowSymbolicLinks:
		b, ok := node.AsBool()
		if !ok {
			return nil, mismatch()
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: field %d", ErrUnknownKey, field)
	}
}

func stringList(node rawtree.Node) ([]string, error) {
	if s, ok := node.AsString(); ok {
		return []string{s}, nil
	}
	list, ok := node.AsList()
	if !ok {
		return nil, ErrTypeMismatch
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.AsString()
		if !ok {
			return nil, ErrTypeMismatch
		}
		out = append(out, s)
	}
	return out, nil
}

// ParseFilter dispatches on the node's shape: a mapping is a DateRange with
// exactly "min" and "max", a list is MultipleValues, a scalar SingleValue.
func ParseFilter(node rawtree.Node) (Filter, error) {
	switch node.Kind() {
	case rawtree.KindMap:
		m, _ := node.AsMap()
		return parseDateRange(m)
	case rawtree.KindList:
		items, _ := node.AsList()
		targets := make([]value.Scalar, 0, len(items))
		for i, item := range items {
			s, err := scalarFromNode(item)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			targets = append(targets, s)
		}
		return NewMultipleValues(targets)
	case rawtree.KindNull:
		return nil, fmt.Errorf("%w: filter has no value", ErrMalformedFilter)
	default:
		s, err := scalarFromNode(node)
		if err != nil {
			return nil, err
		}
		return NewSingleValue(s)
	}
}

func parseDateRange(m *rawtree.Map) (Filter, error) {
	keys := m.Keys()
	if len(keys) != 2 {
		return nil, fmt.Errorf("%w: date range needs exactly the keys min and max, got %v", ErrMalformedFilter, keys)
	}
	bounds := map[string]rawtree.Node{}
	for _, k := range keys {
		node, _ := m.Get(k)
		bounds[k] = node
	}
	minNode, okMin := bounds["min"]
	maxNode, okMax := bounds["max"]
	if !okMin || !okMax {
		return nil, fmt.Errorf("%w: date range needs exactly the keys min and max, got %v", ErrMalformedFilter, keys)
	}
	lo, ok := minNode.AsTime()
	if !ok {
		return nil, fmt.Errorf("%w: date range min must be a timestamp, got %s", ErrMalformedFilter, minNode.Kind())
	}
	hi, ok := maxNode.AsTime()
	if !ok {
		return nil, fmt.Errorf("%w: date range max must be a timestamp, got %s", ErrMalformedFilter, maxNode.Kind())
	}
	return NewDateRange(lo, hi)
}

func scalarFromNode(node rawtree.Node) (value.Scalar, error) {
	switch node.Kind() {
	case rawtree.KindString:
		s, _ := node.AsString()
		return value.String(s), nil
	case rawtree.KindBool:
		b, _ := node.AsBool()
		return value.Bool(b), nil
	case rawtree.KindInt:
		i, _ := node.AsInt()
		return value.Int(i), nil
	case rawtree.KindFloat:
		f, _ := node.AsFloat()
		return value.Float(f), nil
	case rawtree.KindTime:
		t, _ := node.AsTime()
		return value.Time(t), nil
	case rawtree.KindComplex:
		return value.Scalar{}, fmt.Errorf("%w: complex numbers cannot be filtered on", ErrUnsupportedType)
	default:
		return value.Scalar{}, fmt.Errorf("%w: %s", ErrUnsupportedType, node.Kind())
	}
}
