// Package filter decides whether a candidate file belongs to a category by
// evaluating header filters against the keywords gathered from the file.
//
// Filters are evaluated in keyword order so the reported culprit is stable.
// A value whose type differs from the filter's type never matches; the
// mismatch is logged as a warning rather than failing the run.
package filter
