package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "calibcat"

// Run holds the metrics of one assembly run. A nil *Run records nothing.
type Run struct {
	gatherer prometheus.Gatherer

	FilesDiscovered *prometheus.CounterVec
	FilesAccepted   *prometheus.CounterVec
	FilesRejected   *prometheus.CounterVec
	FramesPushed    *prometheus.CounterVec
	HeaderReads     prometheus.Counter

	RunDuration   prometheus.Gauge
	LastRunFinish prometheus.Gauge
}

// NewRun creates a Run backed by a fresh registry.
func NewRun() *Run {
	reg := prometheus.NewRegistry()
	r := NewWithRegistry(reg)
	r.gatherer = reg
	return r
}

// NewWithRegistry registers the run metrics with reg.
func NewWithRegistry(reg prometheus.Registerer) *Run {
	factory := promauto.With(reg)
	r := &Run{
		FilesDiscovered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_discovered_total",
				Help:      "Candidate files found by discovery",
			},
			[]string{"category"},
		),
		FilesAccepted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_accepted_total",
				Help:      "Candidate files that passed every filter",
			},
			[]string{"category"},
		),
		FilesRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "files_rejected_total",
				Help:      "Candidate files rejected, by the keyword that failed",
			},
			[]string{"category", "keyword"},
		),
		FramesPushed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "frames_pushed_total",
				Help:      "Frames accumulated into calibration buckets",
			},
			[]string{"category"},
		),
		HeaderReads: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "header_reads_total",
				Help:      "Primary header reads performed",
			},
		),
		RunDuration: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "run_duration_seconds",
				Help:      "Wall time of the last run",
			},
		),
		LastRunFinish: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the last run finished",
			},
		),
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		r.gatherer = g
	}
	return r
}

func (r *Run) Discovered(category string, n int) {
	if r == nil {
		return
	}
	r.FilesDiscovered.WithLabelValues(category).Add(float64(n))
}

func (r *Run) Accepted(category string) {
	if r == nil {
		return
	}
	r.FilesAccepted.WithLabelValues(category).Inc()
}

func (r *Run) Rejected(category, keyword string) {
	if r == nil {
		return
	}
	r.FilesRejected.WithLabelValues(category, keyword).Inc()
}

func (r *Run) FramePushed(category string) {
	if r == nil {
		return
	}
	r.FramesPushed.WithLabelValues(category).Inc()
}

func (r *Run) HeadersRead(n int) {
	if r == nil {
		return
	}
	r.HeaderReads.Add(float64(n))
}

// Finished records the run's duration and completion time.
func (r *Run) Finished(started, finished time.Time) {
	if r == nil {
		return
	}
	r.RunDuration.Set(finished.Sub(started).Seconds())
	r.LastRunFinish.Set(float64(finished.Unix()))
}

// WriteTextfile writes the run's metrics to path in the text exposition
// format, replacing the file atomically.
func (r *Run) WriteTextfile(path string) error {
	if r == nil || r.gatherer == nil {
		return fmt.Errorf("write metrics %s: no registry", path)
	}
	if err := prometheus.WriteToTextfile(path, r.gatherer); err != nil {
		return fmt.Errorf("write metrics %s: %w", path, err)
	}
	return nil
}
