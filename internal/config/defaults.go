package config

import "calibcat/internal/fits"

const (
	defaultDir                   = "."
	defaultIncludeSubdirectories = true
	defaultFollowSymbolicLinks   = false
)

var defaultSuffixes = []string{".fits", ".fit", ".fts", ".fits.gz"}

// DefaultSettings returns the global settings used before a file is applied.
func DefaultSettings() Settings {
	suffixes := make([]string, len(defaultSuffixes))
	copy(suffixes, defaultSuffixes)
	return Settings{
		ROI:                   FullROI(),
		Dir:                   defaultDir,
		HDU:                   fits.Primary,
		Suffixes:              suffixes,
		IncludeSubdirectories: defaultIncludeSubdirectories,
		FollowSymbolicLinks:   defaultFollowSymbolicLinks,
	}
}
