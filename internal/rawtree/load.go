package rawtree

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format identifies a configuration text format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatForPath picks a format from the file extension. Unknown extensions
// are treated as YAML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".json":
		return FormatJSON
	default:
		return FormatYAML
	}
}

// LoadFile reads path with the loader for format.
func LoadFile(path string, format Format) (*Map, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	switch format {
	case FormatTOML:
		return LoadTOML(file)
	case FormatJSON:
		return LoadJSON(file)
	case FormatYAML, "":
		return LoadYAML(file)
	default:
		return nil, fmt.Errorf("config format: unsupported value %q", format)
	}
}
