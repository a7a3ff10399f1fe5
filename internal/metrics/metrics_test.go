package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"calibcat/internal/metrics"
)

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather error: %v", err)
	}
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
	metricLoop:
		for _, m := range f.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metricLoop
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s %v not found", name, labels)
	return 0
}

func TestRunCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewWithRegistry(reg)

	m.Discovered("FLAT", 3)
	m.Accepted("FLAT")
	m.Accepted("FLAT")
	m.Rejected("FLAT", "CALIBTYPE")
	m.FramePushed("FLAT")
	m.HeadersRead(5)

	if got := counterValue(t, reg, "calibcat_files_discovered_total", map[string]string{"category": "FLAT"}); got != 3 {
		t.Errorf("discovered = %v, want 3", got)
	}
	if got := counterValue(t, reg, "calibcat_files_accepted_total", map[string]string{"category": "FLAT"}); got != 2 {
		t.Errorf("accepted = %v, want 2", got)
	}
	if got := counterValue(t, reg, "calibcat_files_rejected_total", map[string]string{"category": "FLAT", "keyword": "CALIBTYPE"}); got != 1 {
		t.Errorf("rejected = %v, want 1", got)
	}
	if got := counterValue(t, reg, "calibcat_header_reads_total", nil); got != 5 {
		t.Errorf("header reads = %v, want 5", got)
	}
}

func TestNilRunIsSafe(t *testing.T) {
	var m *metrics.Run
	m.Discovered("FLAT", 1)
	m.Accepted("FLAT")
	m.Rejected("FLAT", "X")
	m.FramePushed("FLAT")
	m.HeadersRead(1)
	m.Finished(time.Now(), time.Now())
	if err := m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")); err == nil {
		t.Fatal("expected error writing nil run")
	}
}

func TestWriteTextfile(t *testing.T) {
	m := metrics.NewRun()
	m.FramePushed("BACK")
	start := time.Now()
	m.Finished(start, start.Add(2*time.Second))

	path := filepath.Join(t.TempDir(), "calibcat.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile returned error: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`calibcat_frames_pushed_total{category="BACK"} 1`, "calibcat_run_duration_seconds 2"} {
		if !strings.Contains(string(content), want) {
			t.Fatalf("expected %q in textfile:\n%s", want, content)
		}
	}
}
