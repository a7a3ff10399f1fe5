package datetime_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"calibcat/internal/datetime"
)

func TestParseMilliseconds(t *testing.T) {
	ts, err := datetime.Parse("2023-05-30T15:27:19.449")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	want := time.Date(2023, time.May, 30, 15, 27, 19, 449_000_000, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("unexpected timestamp: got %v want %v", ts, want)
	}
	if ms := ts.Nanosecond() / int(time.Millisecond); ms != 449 {
		t.Fatalf("expected 449 ms, got %d", ms)
	}
}

func TestParseTruncatesFourthFractionalDigit(t *testing.T) {
	four, err := datetime.Parse("2023-05-30T15:27:19.4499")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	three, err := datetime.Parse("2023-05-30T15:27:19.449")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if !four.Equal(three) {
		t.Fatalf("expected truncation, got %v and %v", four, three)
	}
}

func TestParseShapes(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2023-05-30", time.Date(2023, 5, 30, 0, 0, 0, 0, time.UTC)},
		{"2023-05-30T15:27", time.Date(2023, 5, 30, 15, 27, 0, 0, time.UTC)},
		{"2023-05-30 15:27:19", time.Date(2023, 5, 30, 15, 27, 19, 0, time.UTC)},
		{"2023-05-30T15:27:19.5", time.Date(2023, 5, 30, 15, 27, 19, 500_000_000, time.UTC)},
	}
	for _, tt := range tests {
		got, err := datetime.Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) returned error: %v", tt.in, err)
		}
		if !got.Equal(tt.want) {
			t.Fatalf("Parse(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseOrFallsBackWithWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	got := datetime.ParseOr(logger, "MDR", datetime.Fallback)
	if !got.Equal(time.Date(0, time.January, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected fallback timestamp, got %v", got)
	}
	if !strings.Contains(buf.String(), "date_parse_fallback") {
		t.Fatalf("expected warning, got %q", buf.String())
	}
}

func TestLooks(t *testing.T) {
	if !datetime.Looks("2023-05-30T15:27:19.4499") {
		t.Fatal("expected four-digit fraction to look like a timestamp")
	}
	if datetime.Looks("FLAT") || datetime.Looks("2023") {
		t.Fatal("expected plain text not to look like a timestamp")
	}
}

func TestParseOrNilLoggerUsesDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, nil)))
	t.Cleanup(func() { slog.SetDefault(prev) })

	got := datetime.ParseOr(nil, "not a date", datetime.Fallback)
	if !got.Equal(datetime.Fallback) {
		t.Fatalf("expected fallback timestamp, got %v", got)
	}
	if !strings.Contains(buf.String(), "date_parse_fallback") {
		t.Fatalf("expected warning on the default logger, got %q", buf.String())
	}
}
