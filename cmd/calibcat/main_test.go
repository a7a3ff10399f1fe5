package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"calibcat/internal/report"
	"calibcat/internal/testsupport"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected %q in output:\n%s", needle, haystack)
	}
}

const darkConfig = `
exptime: EXPTIME
dir: raw
categories:
  DARK:
    sources: dark
    IMAGETYP: DARK
  FLAT:
    sources: dark + flat
    IMAGETYP: FLAT
    NCOMBINE: 1
`

// writeDarkFixture writes two dark frames and one flat frame under base/raw.
func writeDarkFixture(t *testing.T, base string) string {
	t.Helper()
	frames := []struct {
		name, typ string
		level     float64
	}{
		{"dark1.fits", "DARK", 10},
		{"dark2.fits", "DARK", 20},
		{"flat1.fits", "FLAT", 1000},
	}
	for _, f := range frames {
		testsupport.WriteFITS(t, filepath.Join(base, "raw", f.name), testsupport.Unit{
			Axes:   []int{2, 2},
			Pixels: []float64{f.level, f.level, f.level, f.level},
			Cards:  map[string]any{"EXPTIME": 1.5, "IMAGETYP": f.typ, "NCOMBINE": 1},
		})
	}
	return testsupport.WriteConfig(t, base, "calib.yaml", darkConfig)
}

func TestInitWritesSampleAndRefusesOverwrite(t *testing.T) {
	target := filepath.Join(t.TempDir(), "conf", "calib.yaml")

	out, _, err := runCLI(t, "init", target)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	out, _, err = runCLI(t, "check", target)
	if err == nil {
		t.Fatal("expected check to fail: sample directories do not exist")
	}
	requireContains(t, out, "Configuration valid (3 categories)")

	if _, _, err := runCLI(t, "init", target); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("expected refusal to overwrite, got %v", err)
	}
}

func TestKeywordsCommandJSON(t *testing.T) {
	base := t.TempDir()
	path := testsupport.WriteConfig(t, base, "calib.yaml", darkConfig)

	out, _, err := runCLI(t, "keywords", "--json", path)
	if err != nil {
		t.Fatalf("keywords: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	want := map[string]string{"EXPTIME": "float", "IMAGETYP": "string", "NCOMBINE": "integer"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected keywords (-want +got):\n%s", diff)
	}
}

func TestDiscoverCommand(t *testing.T) {
	base := t.TempDir()
	path := writeDarkFixture(t, base)
	testsupport.Touch(t, base, "raw/notes.txt")

	out, _, err := runCLI(t, "--basedir", base, "discover", "--json", path)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	var got map[string][]string
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if len(got["DARK"]) != 3 || len(got["FLAT"]) != 3 {
		t.Fatalf("expected 3 candidates per category, got %v", got)
	}

	out, _, err = runCLI(t, "--basedir", base, "discover", path)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	requireContains(t, out, "6 candidate files in 2 categories")
	requireContains(t, out, "dark2.fits")
}

func TestCheckCommand(t *testing.T) {
	base := t.TempDir()
	path := writeDarkFixture(t, base)

	out, _, err := runCLI(t, "--basedir", base, "check", path)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	requireContains(t, out, "DARK directory")

	if _, _, err := runCLI(t, "--basedir", filepath.Join(base, "elsewhere"), "check", path); err == nil {
		t.Fatal("expected check to fail for a base directory without raw/")
	}
}

func TestRunCommandWritesReportAndMetrics(t *testing.T) {
	base := t.TempDir()
	path := writeDarkFixture(t, base)
	reportPath := filepath.Join(base, "out", "report.json")
	metricsPath := filepath.Join(base, "out", "calibcat.prom")
	if err := os.MkdirAll(filepath.Dir(metricsPath), 0o755); err != nil {
		t.Fatal(err)
	}

	out, _, err := runCLI(t, "--basedir", base, "run", path,
		"--json", "--report", reportPath, "--metrics-file", metricsPath)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	var printed report.Report
	if err := json.Unmarshal([]byte(out), &printed); err != nil {
		t.Fatalf("decode output: %v\n%s", err, out)
	}
	if printed.Frames != 3 || len(printed.Categories) != 2 {
		t.Fatalf("unexpected report: %+v", printed)
	}
	dark := printed.Categories[0]
	if dark.Name != "DARK" || len(dark.Buckets) != 1 || dark.Buckets[0].MeanLevel != 15 {
		t.Fatalf("unexpected DARK summary: %+v", dark)
	}

	saved, err := report.ReadJSON(reportPath)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	if saved.RunID == "" || saved.RunID != printed.RunID {
		t.Fatalf("expected matching run ids, got %q and %q", saved.RunID, printed.RunID)
	}

	prom, err := os.ReadFile(metricsPath)
	if err != nil {
		t.Fatalf("read metrics: %v", err)
	}
	requireContains(t, string(prom), `calibcat_files_accepted_total{category="DARK"} 2`)
	requireContains(t, string(prom), "calibcat_header_reads_total 3")
}

func TestRunCommandTableAndROI(t *testing.T) {
	base := t.TempDir()
	path := writeDarkFixture(t, base)

	out, _, err := runCLI(t, "--basedir", base, "run", path, "--roi", "(1:1, :)", "--float32")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	requireContains(t, out, "(1:1, 1:2)")
	requireContains(t, out, "3 frames in 2 categories")

	if _, _, err := runCLI(t, "--basedir", base, "run", path, "--roi", "(0:1, :)"); err == nil {
		t.Fatal("expected malformed --roi to fail")
	}
}

func TestWatchDirsIncludesNestedDirectories(t *testing.T) {
	base := t.TempDir()
	testsupport.Touch(t, base, "raw/a.fits", "raw/2024-01-02/b.fits", "lists/c.fits")
	cfg := testsupport.ParseConfig(t, `
exptime: EXPTIME
dir: raw
categories:
  DARK:
    sources: dark
  FLAT:
    sources: flat
    files: lists/c.fits
`)

	got := watchDirs(cfg, base)
	want := []string{
		filepath.Join(base, "raw"),
		filepath.Join(base, "raw", "2024-01-02"),
		filepath.Join(base, "lists"),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected watch directories (-want +got):\n%s", diff)
	}
}

func TestWriteJSONSortsKeysAndKeepsShortListsInline(t *testing.T) {
	var buf bytes.Buffer
	v := struct {
		Paths []string `json:"paths"`
		Count int      `json:"count"`
	}{Paths: []string{"a.fits", "b.fits"}, Count: 2}

	if err := writeJSON(&buf, v); err != nil {
		t.Fatalf("writeJSON: %v", err)
	}
	out := buf.String()
	if !json.Valid(buf.Bytes()) {
		t.Fatalf("invalid json:\n%s", out)
	}
	requireContains(t, out, `["a.fits", "b.fits"]`)
	if strings.Index(out, `"count"`) > strings.Index(out, `"paths"`) {
		t.Fatalf("expected sorted keys:\n%s", out)
	}
}
