package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// keyAliases maps legacy spellings (after space replacement) to current keys.
var keyAliases = map[string]string{
	"include_subdirectory": "include_subdirectories",
}

// NormalizeKey replaces spaces with underscores and resolves legacy aliases.
func NormalizeKey(key string) string {
	k := strings.ReplaceAll(strings.TrimSpace(key), " ", "_")
	if alias, ok := keyAliases[k]; ok {
		return alias
	}
	return k
}

// cleanPath expands a leading "~" and cleans the path. Relative paths stay
// relative; they are resolved against the run's base directory later.
func cleanPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	return filepath.Clean(pathValue), nil
}
