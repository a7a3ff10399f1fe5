package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"calibcat/internal/config"
	"calibcat/internal/rawtree"
)

// ParseConfig parses YAML text into a validated Config, failing the test on
// any error.
func ParseConfig(t testing.TB, text string) *config.Config {
	t.Helper()

	tree, err := rawtree.LoadYAML(strings.NewReader(text))
	if err != nil {
		t.Fatalf("load yaml: %v", err)
	}
	cfg, err := config.Parse(tree)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	return cfg
}

// WriteConfig writes text to dir/name and returns the path.
func WriteConfig(t testing.TB, dir, name, text string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// FlatBackConfig is the two-category FLAT/BACK configuration used by
// assembly tests. FLAT reads the primary unit, BACK the second one.
const FlatBackConfig = `
exptime: EXPTIME
dir: data
CALIBTYPE: [FLAT, BACK]
categories:
  FLAT:
    sources: flat + back
    CALIBTYPE: FLAT
  BACK:
    sources: back
    hdu: 2
    CALIBTYPE: BACK
`
