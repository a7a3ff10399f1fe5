package report_test

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"calibcat/internal/assemble"
	"calibcat/internal/calibdata"
	"calibcat/internal/config"
	"calibcat/internal/report"
)

func sampleResult(t *testing.T) *assemble.Result {
	t.Helper()
	sources, err := config.ParseSources("flat + back")
	if err != nil {
		t.Fatal(err)
	}
	data := calibdata.New(calibdata.Float64)
	data.AddCategory("FLAT", sources)
	for _, level := range []float64{2, 4} {
		frame := calibdata.Frame{Width: 2, Height: 2, Pixels: []float64{level, level, level, level}}
		if err := data.PushFrame("FLAT", 1, frame); err != nil {
			t.Fatal(err)
		}
	}
	if err := data.PushFrame("FLAT", 10, calibdata.Frame{Width: 2, Height: 2, Pixels: []float64{1, 2, 3, 4}}); err != nil {
		t.Fatal(err)
	}
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return &assemble.Result{
		Data: data,
		Categories: []assemble.CategorySummary{
			{Name: "FLAT", Sources: "flat + back", Candidates: 1200, Accepted: 3, Frames: 3, ROI: "(1:2, 1:2)",
				Rejected: map[string]int{"IMAGETYP": 1000, "CALIBTYPE": 197}},
			{Name: "BACK", Sources: "back", Candidates: 0, Rejected: map[string]int{}, ROI: "(:, :)"},
		},
		Started:  started,
		Finished: started.Add(1500 * time.Millisecond),
	}
}

func TestBuildAndRows(t *testing.T) {
	r := report.Build(sampleResult(t), report.Meta{RunID: "run-1", Config: "calib.yaml", Precision: "float64"})

	if r.Frames != 3 || r.DurationSeconds != 1.5 {
		t.Fatalf("unexpected totals: frames=%d duration=%v", r.Frames, r.DurationSeconds)
	}
	want := []report.Bucket{
		{Exptime: 1, Frames: 2, Width: 2, Height: 2, MeanLevel: 3},
		{Exptime: 10, Frames: 1, Width: 2, Height: 2, MeanLevel: 2.5},
	}
	if diff := cmp.Diff(want, r.Categories[0].Buckets); diff != "" {
		t.Fatalf("unexpected buckets (-want +got):\n%s", diff)
	}
	if len(r.Categories[1].Buckets) != 0 {
		t.Fatalf("expected BACK without buckets, got %+v", r.Categories[1].Buckets)
	}

	rows := r.Rows()
	wantRows := []report.Row{
		{
			Category: "FLAT", Sources: "flat + back", ROI: "(1:2, 1:2)",
			Files: "3 / 1,200", Frames: "3", Exptimes: "1s (2), 10s (1)",
			Memory: "128 B", Rejected: "CALIBTYPE=197, IMAGETYP=1000",
		},
		{
			Category: "BACK", Sources: "back", ROI: "(:, :)",
			Files: "0 / 0", Frames: "0", Exptimes: "-", Memory: "0 B", Rejected: "-",
		},
	}
	if diff := cmp.Diff(wantRows, rows); diff != "" {
		t.Fatalf("unexpected rows (-want +got):\n%s", diff)
	}
	if got := r.Headline(); got != "3 frames in 2 categories (1.5s)" {
		t.Fatalf("unexpected headline %q", got)
	}
}

func TestWriteJSONConcurrentWriters(t *testing.T) {
	r := report.Build(sampleResult(t), report.Meta{RunID: "run-1"})
	path := filepath.Join(t.TempDir(), "reports", "last.json")

	var wg sync.WaitGroup
	errs := make(chan error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- report.WriteJSON(path, r)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("WriteJSON returned error: %v", err)
		}
	}

	got, err := report.ReadJSON(path)
	if err != nil {
		t.Fatalf("ReadJSON returned error: %v", err)
	}
	if got.RunID != "run-1" || len(got.Categories) != 2 || got.Categories[0].Buckets[1].Exptime != 10 {
		t.Fatalf("unexpected report read back: %+v", got)
	}
}
