package datetime

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"calibcat/internal/logging"
)

// Fallback is substituted for timestamps that cannot be parsed.
var Fallback = time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC)

// Accepted shapes: date, date+hh:mm, date+hh:mm:ss, optional 1-3 digit fraction.
var timestampPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2}(?:\.\d{1,3})?)?)?$`)

var layouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Parse converts text to a UTC timestamp. When the full string fails, the
// last character is dropped and parsing is attempted once more.
func Parse(text string) (time.Time, error) {
	trimmed := strings.TrimSpace(text)
	if ts, ok := parseStrict(trimmed); ok {
		return ts, nil
	}
	if len(trimmed) > 1 {
		if ts, ok := parseStrict(trimmed[:len(trimmed)-1]); ok {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: unsupported format", text)
}

// ParseOr parses text and substitutes fallback on failure, logging a warning.
// A nil logger warns through slog.Default.
func ParseOr(logger *slog.Logger, text string, fallback time.Time) time.Time {
	ts, err := Parse(text)
	if err == nil {
		return ts
	}
	if logger == nil {
		logger = slog.Default()
	}
	logging.WarnWithContext(logger, "timestamp not parseable, using fallback", "date_parse_fallback",
		logging.String("value", text),
		logging.String("fallback", fallback.Format(time.RFC3339)),
		logging.String(logging.FieldImpact, "fallback timestamp used"),
	)
	return fallback
}

// Looks reports whether text has the shape of a timestamp, including the
// over-long fractional form that Parse truncates.
func Looks(text string) bool {
	trimmed := strings.TrimSpace(text)
	if timestampPattern.MatchString(trimmed) {
		return true
	}
	return len(trimmed) > 1 && timestampPattern.MatchString(trimmed[:len(trimmed)-1]) &&
		strings.Contains(trimmed, ".")
}

func parseStrict(text string) (time.Time, bool) {
	if !timestampPattern.MatchString(text) {
		return time.Time{}, false
	}
	for _, layout := range layouts {
		// Go accepts a trailing fraction after the seconds field even when the
		// layout omits it; the pattern above already bounds it to 3 digits.
		if ts, err := time.ParseInLocation(layout, text, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
