package report

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"calibcat/internal/assemble"
)

// Meta is run context that the result does not carry.
type Meta struct {
	RunID     string
	Config    string
	Basedir   string
	Precision string
}

// Report is the persisted summary of one run.
type Report struct {
	RunID           string     `json:"run_id"`
	Config          string     `json:"config"`
	Basedir         string     `json:"basedir"`
	Precision       string     `json:"precision"`
	Started         time.Time  `json:"started"`
	Finished        time.Time  `json:"finished"`
	DurationSeconds float64    `json:"duration_seconds"`
	Frames          int        `json:"frames"`
	Categories      []Category `json:"categories"`
}

// Category summarises one category of the run.
type Category struct {
	Name       string         `json:"name"`
	Sources    string         `json:"sources"`
	ROI        string         `json:"roi"`
	Candidates int            `json:"candidates"`
	Accepted   int            `json:"accepted"`
	Frames     int            `json:"frames"`
	Rejected   map[string]int `json:"rejected,omitempty"`
	Buckets    []Bucket       `json:"buckets"`
}

// Bucket summarises one (category, exposure time) bucket.
type Bucket struct {
	Exptime float64 `json:"exptime"`
	Frames  int     `json:"frames"`
	Width   int     `json:"width"`
	Height  int     `json:"height"`
	// MeanLevel is the average of the per-pixel mean.
	MeanLevel float64 `json:"mean_level"`
}

// Build summarises res. Categories removed by pruning are kept with no
// buckets.
func Build(res *assemble.Result, meta Meta) Report {
	r := Report{
		RunID:           meta.RunID,
		Config:          meta.Config,
		Basedir:         meta.Basedir,
		Precision:       meta.Precision,
		Started:         res.Started,
		Finished:        res.Finished,
		DurationSeconds: res.Duration().Seconds(),
		Frames:          res.Data.Frames(),
	}
	for _, s := range res.Categories {
		c := Category{
			Name:       s.Name,
			Sources:    s.Sources,
			ROI:        s.ROI,
			Candidates: s.Candidates,
			Accepted:   s.Accepted,
			Frames:     s.Frames,
			Rejected:   s.Rejected,
			Buckets:    []Bucket{},
		}
		for _, e := range res.Data.Exptimes(s.Name) {
			b, ok := res.Data.Bucket(s.Name, e)
			if !ok {
				continue
			}
			c.Buckets = append(c.Buckets, Bucket{
				Exptime:   e,
				Frames:    b.Count(),
				Width:     b.Width,
				Height:    b.Height,
				MeanLevel: average(b.Mean()),
			})
		}
		r.Categories = append(r.Categories, c)
	}
	return r
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Row is one rendered table line.
type Row struct {
	Category string
	Sources  string
	ROI      string
	Files    string
	Frames   string
	Exptimes string
	Memory   string
	Rejected string
}

// Rows renders one line per category.
func (r Report) Rows() []Row {
	rows := make([]Row, 0, len(r.Categories))
	for _, c := range r.Categories {
		rows = append(rows, Row{
			Category: c.Name,
			Sources:  c.Sources,
			ROI:      c.ROI,
			Files:    humanize.Comma(int64(c.Accepted)) + " / " + humanize.Comma(int64(c.Candidates)),
			Frames:   humanize.Comma(int64(c.Frames)),
			Exptimes: exptimes(c.Buckets),
			Memory:   humanize.IBytes(memory(c.Buckets)),
			Rejected: rejected(c.Rejected),
		})
	}
	return rows
}

func exptimes(buckets []Bucket) string {
	if len(buckets) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(buckets))
	for _, b := range buckets {
		parts = append(parts, strconv.FormatFloat(b.Exptime, 'g', -1, 64)+"s ("+strconv.Itoa(b.Frames)+")")
	}
	return strings.Join(parts, ", ")
}

// memory estimates the accumulator footprint: mean and variance per pixel.
func memory(buckets []Bucket) uint64 {
	var total uint64
	for _, b := range buckets {
		total += uint64(b.Width) * uint64(b.Height) * 2 * 8
	}
	return total
}

func rejected(counts map[string]int) string {
	if len(counts) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+strconv.Itoa(counts[k]))
	}
	return strings.Join(parts, ", ")
}

// Headline is a one-line summary of the run.
func (r Report) Headline() string {
	return humanize.Comma(int64(r.Frames)) + " frames in " + strconv.Itoa(len(r.Categories)) +
		" categories (" + (time.Duration(r.DurationSeconds * float64(time.Second))).Round(time.Millisecond).String() + ")"
}
