package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldCategory names the calibration category a record concerns.
	FieldCategory = "category"
	// FieldPath is the file a record concerns.
	FieldPath = "path"
	// FieldKeyword is a header keyword.
	FieldKeyword = "keyword"
	// FieldExptime is a resolved exposure time.
	FieldExptime = "exptime"
	// FieldRunID identifies one assembly run across all of its records.
	FieldRunID = "run_id"
	// FieldEventType classifies warnings so they can be counted and filtered.
	FieldEventType = "event_type"
	// FieldImpact describes what the run did about a warning.
	FieldImpact = "impact"
	// FieldErrorHint suggests a next step.
	FieldErrorHint = "error_hint"
)

type contextKey int

const (
	runIDKey contextKey = iota
	categoryKey
)

// ContextWithRunID returns a context carrying the run ID.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext returns the run ID stored by ContextWithRunID.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok && id != ""
}

// ContextWithCategory returns a context naming the category being processed.
func ContextWithCategory(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, categoryKey, name)
}

// CategoryFromContext returns the category stored by ContextWithCategory.
func CategoryFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	name, ok := ctx.Value(categoryKey).(string)
	return name, ok && name != ""
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if id, ok := RunIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRunID, id))
	}
	if name, ok := CategoryFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCategory, name))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
