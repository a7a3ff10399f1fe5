package logging

import (
	"context"
	"errors"
	"log/slog"
	"slices"
)

// multiHandler delivers each record to every branch enabled for its level.
// Branches keep their own levels, so a --log-file copy can be more verbose
// than the console.
type multiHandler []slog.Handler

// Multi combines handlers, dropping nil and no-op ones and flattening
// nested combinations.
func Multi(handlers ...slog.Handler) slog.Handler {
	var branches multiHandler
	for _, h := range handlers {
		switch h := h.(type) {
		case nil, NoopHandler:
		case multiHandler:
			branches = append(branches, h...)
		default:
			branches = append(branches, h)
		}
	}
	switch len(branches) {
	case 0:
		return NoopHandler{}
	case 1:
		return branches[0]
	}
	return branches
}

// WithCopy returns a logger writing to base and, in addition, to extra.
func WithCopy(base *slog.Logger, extra slog.Handler) *slog.Logger {
	if base == nil {
		return slog.New(Multi(extra))
	}
	return slog.New(Multi(base.Handler(), extra))
}

func (m multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return slices.ContainsFunc(m, func(h slog.Handler) bool { return h.Enabled(ctx, level) })
}

func (m multiHandler) Handle(ctx context.Context, record slog.Record) error {
	var errs []error
	for _, h := range m {
		if h.Enabled(ctx, record.Level) {
			errs = append(errs, h.Handle(ctx, record.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (m multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithAttrs(attrs) })
}

func (m multiHandler) WithGroup(name string) slog.Handler {
	return m.each(func(h slog.Handler) slog.Handler { return h.WithGroup(name) })
}

func (m multiHandler) each(fn func(slog.Handler) slog.Handler) multiHandler {
	out := make(multiHandler, len(m))
	for i, h := range m {
		out[i] = fn(h)
	}
	return out
}
