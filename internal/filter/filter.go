package filter

import (
	"log/slog"

	"calibcat/internal/config"
	"calibcat/internal/gather"
	"calibcat/internal/logging"
	"calibcat/internal/value"
)

// ChallengeFile evaluates filters against info. It returns true when every
// filter passes; otherwise false and the keyword of the first failing filter.
func ChallengeFile(filters map[string]config.Filter, info gather.FileInfo, path string, logger *slog.Logger) (bool, string) {
	logger = logging.OrNop(logger)
	for _, keyword := range gather.SortedKeys(filters) {
		f := filters[keyword]
		got := info.Get(keyword)
		if got.IsMissing() {
			return false, keyword
		}
		if !kindMatches(f, got) {
			logging.WarnWithContext(logger, "header value type does not match filter type", "filter_type_mismatch",
				logging.Path(path),
				logging.Keyword(keyword),
				logging.String("filter_type", f.Kind().String()),
				logging.String("value_type", got.Kind().String()),
				logging.String(logging.FieldImpact, "file rejected"),
			)
			return false, keyword
		}
		if !Matches(f, got) {
			return false, keyword
		}
	}
	return true, ""
}

func kindMatches(f config.Filter, v value.Scalar) bool {
	return f.Kind() == v.Kind()
}

// Matches reports whether v satisfies f. Values of another kind never match.
func Matches(f config.Filter, v value.Scalar) bool {
	switch flt := f.(type) {
	case config.SingleValue:
		return flt.Target.Equal(v)
	case config.MultipleValues:
		for _, target := range flt.Targets {
			if target.Equal(v) {
				return true
			}
		}
		return false
	case config.DateRange:
		if v.Kind() != value.KindTime {
			return false
		}
		ts := v.Time()
		return !ts.Before(flt.Min) && ts.Before(flt.Max)
	default:
		return false
	}
}

// Merge combines global and category filters; category entries replace
// global ones on the same keyword. Neither input is modified.
func Merge(global, category map[string]config.Filter) map[string]config.Filter {
	out := make(map[string]config.Filter, len(global)+len(category))
	for k, f := range global {
		out[k] = f
	}
	for k, f := range category {
		out[k] = f
	}
	return out
}

// ChallengeCategory checks a file for membership of cat: the exposure time
// must be present and numeric, then the merged global and category filters
// must pass.
func ChallengeCategory(cat *config.Category, info gather.FileInfo, path string, logger *slog.Logger) (bool, string) {
	logger = logging.OrNop(logger).With(logging.Category(cat.Name()))

	exptime := cat.Exptime()
	v := info.Get(exptime)
	if v.IsMissing() {
		logging.WarnWithContext(logger, "exposure time keyword missing", "exptime_missing",
			logging.Path(path),
			logging.Keyword(exptime),
			logging.String(logging.FieldImpact, "file rejected"),
		)
		return false, exptime
	}
	if _, ok := v.Number(); !ok {
		logging.WarnWithContext(logger, "exposure time is not numeric", "exptime_not_numeric",
			logging.Path(path),
			logging.Keyword(exptime),
			logging.String("value_type", v.Kind().String()),
			logging.String(logging.FieldImpact, "file rejected"),
		)
		return false, exptime
	}

	accepted, culprit := ChallengeFile(Merge(cat.Config().Filters, cat.Filters), info, path, logger)
	if accepted {
		logger.Debug("file accepted", logging.Path(path))
	} else {
		logger.Debug("file rejected", logging.Path(path), logging.Keyword(culprit))
	}
	return accepted, culprit
}
