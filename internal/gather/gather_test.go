package gather_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"calibcat/internal/gather"
	"calibcat/internal/testsupport"
	"calibcat/internal/value"
)

func captureLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func TestFiltersKeywordsUnionFirstTypeWins(t *testing.T) {
	cfg := testsupport.ParseConfig(t, `
exptime: EXPTIME
NCOMBINE: 3
DATE-OBS: {min: 2023-01-01T00:00:00, max: 2023-02-01T00:00:00}
categories:
  FLAT:
    sources: flat
    CALIBTYPE: FLAT
    NCOMBINE: "three"
  BACK:
    sources: back
    exptime: ITIME
    GAIN: [1.5, 2.5]
`)
	logger, buf := captureLogger()

	got := gather.FiltersKeywords(cfg, logger)
	want := map[string]value.Kind{
		"EXPTIME":   value.KindFloat,
		"ITIME":     value.KindFloat,
		"NCOMBINE":  value.KindInt,
		"DATE-OBS":  value.KindTime,
		"CALIBTYPE": value.KindString,
		"GAIN":      value.KindFloat,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected keyword union (-want +got):\n%s", diff)
	}
	if !strings.Contains(buf.String(), `"event_type":"keyword_type_conflict"`) {
		t.Fatalf("expected conflict warning, got %s", buf.String())
	}
}

func TestFilesInfosReadsEachHeaderOnce(t *testing.T) {
	reader := testsupport.NewMemoryReader()
	reader.Add("/data/a.fits", testsupport.Unit{Cards: map[string]any{
		"EXPTIME":  int64(10),
		"IMAGETYP": "FLAT    ",
		"DATE-OBS": "2023-05-30T15:27:19.4499",
		"SIMPLE":   true,
	}})
	reader.Add("/data/b.fits", testsupport.Unit{Cards: map[string]any{
		"EXPTIME":  1.5,
		"DATE-OBS": "MDR",
	}})
	kinds := map[string]value.Kind{
		"EXPTIME":  value.KindFloat,
		"IMAGETYP": value.KindString,
		"DATE-OBS": value.KindTime,
		"SIMPLE":   value.KindBool,
	}
	logger, buf := captureLogger()

	infos := gather.FilesInfos(reader, []string{"/data/a.fits", "/data/b.fits", "/data/a.fits"}, kinds, logger)

	for _, p := range []string{"/data/a.fits", "/data/b.fits"} {
		if n := reader.HeaderReads(p); n != 1 {
			t.Fatalf("expected one header read for %s, got %d", p, n)
		}
	}

	a := infos["/data/a.fits"]
	if v := a.Get("EXPTIME"); v.Kind() != value.KindInt || v.Int() != 10 {
		t.Fatalf("expected native integer exptime, got %s", v)
	}
	if v := a.Get("IMAGETYP"); v.Str() != "FLAT" {
		t.Fatalf("expected trimmed string, got %q", v.Str())
	}
	wantDate := time.Date(2023, 5, 30, 15, 27, 19, 449_000_000, time.UTC)
	if v := a.Get("DATE-OBS"); !v.Time().Equal(wantDate) {
		t.Fatalf("unexpected date %s", v.Time())
	}
	if !a.Get("SIMPLE").Bool() {
		t.Fatal("expected boolean card")
	}

	b := infos["/data/b.fits"]
	if !b.Get("IMAGETYP").IsMissing() || !b.Get("SIMPLE").IsMissing() {
		t.Fatal("expected absent keywords to be missing")
	}
	if v := b.Get("DATE-OBS"); v.IsMissing() || v.Time().Year() != 0 {
		t.Fatalf("expected fallback date, got %s", v)
	}
	if !strings.Contains(buf.String(), "date_parse_fallback") {
		t.Fatalf("expected fallback warning, got %s", buf.String())
	}
}

func TestFilesInfosUnreadableHeader(t *testing.T) {
	reader := testsupport.NewMemoryReader()
	logger, buf := captureLogger()

	infos := gather.FilesInfos(reader, []string{"/nope.fits"}, map[string]value.Kind{"EXPTIME": value.KindFloat}, logger)

	info, ok := infos["/nope.fits"]
	if !ok || !info.Get("EXPTIME").IsMissing() {
		t.Fatalf("expected all keywords missing, got %v", info)
	}
	if !strings.Contains(buf.String(), "header_unreadable") {
		t.Fatalf("expected warning, got %s", buf.String())
	}
}
