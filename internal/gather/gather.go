package gather

import (
	"log/slog"
	"sort"

	"calibcat/internal/config"
	"calibcat/internal/datetime"
	"calibcat/internal/fits"
	"calibcat/internal/logging"
	"calibcat/internal/value"
)

// FileInfo maps each requested keyword to the value read from one file.
// Keywords absent from the header map to value.Missing.
type FileInfo map[string]value.Scalar

// Get returns the gathered value of keyword, or value.Missing.
func (fi FileInfo) Get(keyword string) value.Scalar {
	v, ok := fi[keyword]
	if !ok {
		return value.Missing
	}
	return v
}

// FiltersKeywords returns the union of keywords needed by cfg with their
// expected kinds: every exptime keyword (as float) and every filter keyword
// at global and category scope. When a keyword is requested with two kinds
// the first one wins and the conflict is logged.
func FiltersKeywords(cfg *config.Config, logger *slog.Logger) map[string]value.Kind {
	logger = logging.NewComponentLogger(logger, "gather")
	kinds := map[string]value.Kind{}

	add := func(scope, keyword string, kind value.Kind) {
		if keyword == "" {
			return
		}
		prev, seen := kinds[keyword]
		if !seen {
			kinds[keyword] = kind
			return
		}
		if prev != kind {
			logging.WarnWithContext(logger, "keyword requested with conflicting types", "keyword_type_conflict",
				logging.Keyword(keyword),
				logging.String("scope", scope),
				logging.String("kept", prev.String()),
				logging.String("ignored", kind.String()),
				logging.String(logging.FieldImpact, "first type is used for reading"),
			)
		}
	}
	addFilters := func(scope string, filters map[string]config.Filter) {
		for _, keyword := range SortedKeys(filters) {
			add(scope, keyword, filters[keyword].Kind())
		}
	}

	add("global", cfg.Exptime, value.KindFloat)
	addFilters("global", cfg.Filters)
	for _, cat := range cfg.Categories() {
		scope := "category " + cat.Name()
		if cat.IsSet(config.FieldExptime) {
			add(scope, cat.Exptime(), value.KindFloat)
		}
		addFilters(scope, cat.Filters)
	}
	return kinds
}

// SortedKeys returns the keys of m in ascending order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FilesInfos reads the primary header of every distinct path once and
// extracts the requested keywords. Timestamp keywords are parsed from text
// with the fallback date on failure; every other keyword keeps the header's
// native type. An unreadable header is logged and every keyword is recorded
// as missing for that file.
func FilesInfos(reader fits.Reader, paths []string, kinds map[string]value.Kind, logger *slog.Logger) map[string]FileInfo {
	logger = logging.NewComponentLogger(logger, "gather")
	keywords := SortedKeys(kinds)
	out := make(map[string]FileInfo, len(paths))

	for _, path := range paths {
		if _, done := out[path]; done {
			continue
		}
		info := make(FileInfo, len(keywords))
		out[path] = info

		hdr, err := reader.ReadHeader(path)
		if err != nil {
			logging.WarnWithContext(logger, "cannot read header", "header_unreadable",
				logging.Path(path),
				logging.Error(err),
				logging.String(logging.FieldImpact, "file will be rejected"),
			)
			for _, k := range keywords {
				info[k] = value.Missing
			}
			continue
		}
		for _, k := range keywords {
			info[k] = extract(hdr, path, k, kinds[k], logger)
		}
	}
	return out
}

func extract(hdr fits.Header, path, keyword string, kind value.Kind, logger *slog.Logger) value.Scalar {
	raw, ok := hdr.Lookup(keyword)
	if !ok || raw == nil {
		return value.Missing
	}
	if kind == value.KindTime {
		if text, isText := raw.(string); isText {
			return value.Time(datetime.ParseOr(logger.With(logging.Path(path), logging.Keyword(keyword)), text, datetime.Fallback))
		}
	}
	v, err := value.FromNative(raw)
	if err != nil {
		logging.WarnWithContext(logger, "cannot convert header value", "header_value_unsupported",
			logging.Path(path),
			logging.Keyword(keyword),
			logging.Error(err),
			logging.String(logging.FieldImpact, "keyword treated as missing"),
		)
		return value.Missing
	}
	return v
}
