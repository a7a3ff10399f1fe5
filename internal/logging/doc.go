// Package logging assembles structured slog loggers and formatting helpers used
// across calibcat.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, stamps every record of a run with its run ID, and exposes
// context-aware helpers so pipeline code can tag log lines with the category
// being processed. The package also provides a no-op logger for tests and
// library callers that pass no logger.
//
// Warnings follow one shape: an event_type naming what happened plus an
// impact describing what the run did about it.
package logging
