package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"calibcat/internal/rawtree"
)

//go:embed sample_config.yaml
var sampleConfig string

// Load reads, parses and validates a configuration file. The loader is
// chosen from the file extension.
func Load(path string) (*Config, error) {
	return load(path, rawtree.FormatForPath(path))
}

// LoadYAML is Load with the YAML loader regardless of extension.
func LoadYAML(path string) (*Config, error) {
	return load(path, rawtree.FormatYAML)
}

func load(path string, format rawtree.Format) (*Config, error) {
	expanded, err := cleanPath(path)
	if err != nil {
		return nil, err
	}
	tree, err := rawtree.LoadFile(expanded, format)
	if err != nil {
		return nil, fmt.Errorf("parse config %q: %w", expanded, err)
	}
	cfg, err := Parse(tree)
	if err != nil {
		return nil, fmt.Errorf("config %q: %w", expanded, err)
	}
	return cfg, nil
}

// SampleConfig returns the commented sample configuration.
func SampleConfig() string {
	return sampleConfig
}

// CreateSample writes the sample configuration to path. An existing file is
// left alone and reported as fs.ErrExist.
func CreateSample(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("write sample config %q: %w", path, fs.ErrExist)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat %q: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
