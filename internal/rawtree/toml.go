package rawtree

import (
	"fmt"
	"io"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// LoadTOML decodes a TOML document into a mapping. TOML tables carry no
// order once decoded, so keys come back sorted.
func LoadTOML(r io.Reader) (*Map, error) {
	var raw map[string]any
	if err := toml.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	root, err := FromGo(normalizeTOML(raw))
	if err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}
	m, _ := root.AsMap()
	return m, nil
}

// normalizeTOML rewrites local date/time values to UTC timestamps.
func normalizeTOML(v any) any {
	switch val := v.(type) {
	case map[string]any:
		for k, item := range val {
			val[k] = normalizeTOML(item)
		}
		return val
	case []any:
		for i, item := range val {
			val[i] = normalizeTOML(item)
		}
		return val
	case toml.LocalDateTime:
		return val.AsTime(time.UTC)
	case toml.LocalDate:
		return val.AsTime(time.UTC)
	case toml.LocalTime:
		return val.String()
	default:
		return v
	}
}
