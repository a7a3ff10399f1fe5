// Package report turns an assembly result into a summary that the CLI
// renders as a table and can persist as JSON.
//
// WriteJSON holds an advisory lock next to the target while it replaces the
// file, so concurrent runs (watch mode plus a manual run) never interleave
// their writes.
package report
