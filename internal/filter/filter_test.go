package filter_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"calibcat/internal/config"
	"calibcat/internal/filter"
	"calibcat/internal/gather"
	"calibcat/internal/testsupport"
	"calibcat/internal/value"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func single(t *testing.T, v value.Scalar) config.Filter {
	t.Helper()
	f, err := config.NewSingleValue(v)
	if err != nil {
		t.Fatalf("NewSingleValue(%s): %v", v, err)
	}
	return f
}

func TestSingleValueAcceptsEqualValueOfEveryType(t *testing.T) {
	stamp := time.Date(2023, 5, 30, 15, 27, 19, 449_000_000, time.UTC)
	values := []value.Scalar{
		value.String("FLAT"),
		value.Bool(true),
		value.Int(42),
		value.Float(42.5),
		value.Time(stamp),
	}
	for _, v := range values {
		filters := map[string]config.Filter{"KEY": single(t, v)}
		ok, culprit := filter.ChallengeFile(filters, gather.FileInfo{"KEY": v}, "/f.fits", nil)
		if !ok || culprit != "" {
			t.Fatalf("%s: expected acceptance, got (%v, %q)", v.Kind(), ok, culprit)
		}
	}
}

func TestIntegerAndFloatNeverMatch(t *testing.T) {
	cases := []struct {
		target value.Scalar
		got    value.Scalar
	}{
		{value.Int(42), value.Float(42.0)},
		{value.Float(42.0), value.Int(42)},
		{value.String("1"), value.Int(1)},
		{value.Bool(true), value.Int(1)},
	}
	for _, tc := range cases {
		logger, buf := captureLogger()
		filters := map[string]config.Filter{"NCOMBINE": single(t, tc.target)}
		ok, culprit := filter.ChallengeFile(filters, gather.FileInfo{"NCOMBINE": tc.got}, "/f.fits", logger)
		if ok || culprit != "NCOMBINE" {
			t.Fatalf("%s vs %s: expected rejection naming NCOMBINE, got (%v, %q)", tc.target.Kind(), tc.got.Kind(), ok, culprit)
		}
		if !strings.Contains(buf.String(), `"event_type":"filter_type_mismatch"`) {
			t.Fatalf("expected type mismatch warning, got %s", buf.String())
		}
	}
}

func TestMissingKeywordRejectsWithoutTypeWarning(t *testing.T) {
	logger, buf := captureLogger()
	filters := map[string]config.Filter{"IMAGETYP": single(t, value.String("FLAT"))}
	ok, culprit := filter.ChallengeFile(filters, gather.FileInfo{"IMAGETYP": value.Missing}, "/f.fits", logger)
	if ok || culprit != "IMAGETYP" {
		t.Fatalf("expected rejection on missing value, got (%v, %q)", ok, culprit)
	}
	if strings.Contains(buf.String(), "filter_type_mismatch") {
		t.Fatal("missing values must not be reported as type mismatches")
	}
}

func TestMultipleValues(t *testing.T) {
	f, err := config.NewMultipleValues([]value.Scalar{value.String("FLAT"), value.String("SKYFLAT")})
	if err != nil {
		t.Fatal(err)
	}
	filters := map[string]config.Filter{"IMAGETYP": f}

	if ok, _ := filter.ChallengeFile(filters, gather.FileInfo{"IMAGETYP": value.String("SKYFLAT")}, "/f.fits", nil); !ok {
		t.Fatal("expected listed value to match")
	}
	if ok, culprit := filter.ChallengeFile(filters, gather.FileInfo{"IMAGETYP": value.String("DARK")}, "/f.fits", nil); ok || culprit != "IMAGETYP" {
		t.Fatalf("expected unlisted value to be rejected, got (%v, %q)", ok, culprit)
	}
}

func TestDateRangeBounds(t *testing.T) {
	lo := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	hi := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	f, err := config.NewDateRange(lo, hi)
	if err != nil {
		t.Fatal(err)
	}
	filters := map[string]config.Filter{"DATE-OBS": f}

	cases := []struct {
		name string
		at   time.Time
		want bool
	}{
		{"equal to min", lo, true},
		{"one unit inside", lo.Add(time.Millisecond), true},
		{"just below max", hi.Add(-time.Millisecond), true},
		{"equal to max", hi, false},
		{"before min", lo.Add(-time.Millisecond), false},
	}
	for _, tc := range cases {
		ok, _ := filter.ChallengeFile(filters, gather.FileInfo{"DATE-OBS": value.Time(tc.at)}, "/f.fits", nil)
		if ok != tc.want {
			t.Fatalf("%s: got %v want %v", tc.name, ok, tc.want)
		}
	}
}

func TestChallengeFileIsDeterministic(t *testing.T) {
	filters := map[string]config.Filter{
		"AAA": single(t, value.Int(1)),
		"BBB": single(t, value.Int(2)),
		"CCC": single(t, value.Int(3)),
	}
	info := gather.FileInfo{"AAA": value.Int(0), "BBB": value.Int(0), "CCC": value.Int(0)}
	for i := 0; i < 20; i++ {
		if _, culprit := filter.ChallengeFile(filters, info, "/f.fits", nil); culprit != "AAA" {
			t.Fatalf("expected AAA to be reported first, got %q", culprit)
		}
	}
}

func TestMergeCategoryWins(t *testing.T) {
	global := map[string]config.Filter{
		"INSTRUME": single(t, value.String("CAM1")),
		"IMAGETYP": single(t, value.String("ANY")),
	}
	category := map[string]config.Filter{"IMAGETYP": single(t, value.String("FLAT"))}

	merged := filter.Merge(global, category)
	if len(merged) != 2 {
		t.Fatalf("unexpected merged size %d", len(merged))
	}
	if merged["IMAGETYP"].String() != `"FLAT"` {
		t.Fatalf("expected category filter to win, got %s", merged["IMAGETYP"])
	}
	if global["IMAGETYP"].String() != `"ANY"` {
		t.Fatal("Merge must not modify its inputs")
	}
}

func TestChallengeCategoryChecksExptimeFirst(t *testing.T) {
	cfg := testsupport.ParseConfig(t, `
exptime: EXPTIME
INSTRUME: CAM1
categories:
  FLAT:
    sources: flat
    CALIBTYPE: FLAT
  BACK:
    sources: back
    INSTRUME: CAM2
`)
	flat, _ := cfg.Category("FLAT")
	back, _ := cfg.Category("BACK")

	logger, buf := captureLogger()
	ok, culprit := filter.ChallengeCategory(flat, gather.FileInfo{
		"EXPTIME":   value.Missing,
		"INSTRUME":  value.Missing,
		"CALIBTYPE": value.Missing,
	}, "/f.fits", logger)
	if ok || culprit != "EXPTIME" {
		t.Fatalf("expected exptime rejection, got (%v, %q)", ok, culprit)
	}
	if !strings.Contains(buf.String(), `"event_type":"exptime_missing"`) {
		t.Fatalf("expected dedicated exptime warning, got %s", buf.String())
	}

	info := gather.FileInfo{
		"EXPTIME":   value.Float(1),
		"INSTRUME":  value.String("CAM2"),
		"CALIBTYPE": value.String("FLAT"),
	}
	if ok, culprit := filter.ChallengeCategory(flat, info, "/f.fits", nil); ok || culprit != "INSTRUME" {
		t.Fatalf("expected global INSTRUME filter to reject for FLAT, got (%v, %q)", ok, culprit)
	}
	if ok, culprit := filter.ChallengeCategory(back, info, "/f.fits", nil); !ok {
		t.Fatalf("expected BACK override to accept CAM2, got culprit %q", culprit)
	}

	info["EXPTIME"] = value.String("long")
	if ok, culprit := filter.ChallengeCategory(back, info, "/f.fits", nil); ok || culprit != "EXPTIME" {
		t.Fatalf("expected non-numeric exptime rejection, got (%v, %q)", ok, culprit)
	}
}
