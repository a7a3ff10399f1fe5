package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolve returns p as an absolute, cleaned path. Relative paths are taken
// relative to basedir, which itself is made absolute against the process
// working directory.
func Resolve(basedir, p string) (string, error) {
	if filepath.IsAbs(p) {
		return filepath.Clean(p), nil
	}
	base, err := filepath.Abs(basedir)
	if err != nil {
		return "", fmt.Errorf("resolve base directory %q: %w", basedir, err)
	}
	return filepath.Join(base, p), nil
}

// IsRegularFile reports whether path exists and, after following symbolic
// links, is a regular file.
func IsRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// HasAnySuffix reports whether name ends with one of suffixes.
func HasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// ContainsAny reports whether name contains one of substrings. Empty
// substrings are ignored.
func ContainsAny(name string, substrings []string) bool {
	for _, s := range substrings {
		if s != "" && strings.Contains(name, s) {
			return true
		}
	}
	return false
}

// WriteFileAtomic writes data to a temporary sibling of path and renames it
// into place.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
