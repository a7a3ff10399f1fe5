// Package discovery turns each category's file-system settings into a list
// of candidate files.
//
// An explicit files list wins over directory scanning. Otherwise the
// category's dir is walked: every regular file whose name ends with one of
// the suffixes and contains none of the exclude_files substrings is kept.
// The root directory is always listed; include_subdirectories gates
// descending further, and follow_symbolic_links gates descending through
// linked directories. Relative paths resolve against an explicit base
// directory; the process working directory is never changed.
package discovery
