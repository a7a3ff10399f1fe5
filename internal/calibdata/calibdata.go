package calibdata

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"calibcat/internal/config"
)

// ErrFrameSize reports a frame whose size differs from its bucket's.
var ErrFrameSize = errors.New("frame size does not match bucket")

// Precision selects the float width pixel values are rounded to before
// accumulation.
type Precision uint8

const (
	Float64 Precision = iota
	Float32
)

func (p Precision) String() string {
	if p == Float32 {
		return "float32"
	}
	return "float64"
}

// Frame is one 2D image in row-major order (first axis fastest).
type Frame struct {
	Width  int
	Height int
	Pixels []float64
}

// Bucket holds the running statistics of one (category, exposure time).
type Bucket struct {
	Width  int
	Height int
	count  int
	mean   []float64
	m2     []float64
}

// Count is the number of frames pushed into the bucket.
func (b *Bucket) Count() int { return b.count }

// Mean returns a copy of the per-pixel mean.
func (b *Bucket) Mean() []float64 {
	out := make([]float64, len(b.mean))
	copy(out, b.mean)
	return out
}

// Variance returns the per-pixel sample variance; zero with fewer than two
// frames.
func (b *Bucket) Variance() []float64 {
	out := make([]float64, len(b.m2))
	if b.count < 2 {
		return out
	}
	for i, v := range b.m2 {
		out[i] = v / float64(b.count-1)
	}
	return out
}

func (b *Bucket) push(pixels []float64, precision Precision) {
	if b.mean == nil {
		b.mean = make([]float64, len(pixels))
		b.m2 = make([]float64, len(pixels))
	}
	b.count++
	n := float64(b.count)
	for i, p := range pixels {
		if precision == Float32 {
			p = float64(float32(p))
		}
		delta := p - b.mean[i]
		b.mean[i] += delta / n
		b.m2[i] += delta * (p - b.mean[i])
	}
}

type category struct {
	sources config.Sources
	buckets map[float64]*Bucket
}

// Data is the aggregate of one run. It is not safe for concurrent use.
type Data struct {
	precision  Precision
	order      []string
	categories map[string]*category
}

func New(precision Precision) *Data {
	return &Data{precision: precision, categories: map[string]*category{}}
}

func (d *Data) Precision() Precision { return d.precision }

// AddCategory registers a category and its sources. Registering an existing
// category replaces its sources and keeps its buckets.
func (d *Data) AddCategory(name string, sources config.Sources) {
	if c, ok := d.categories[name]; ok {
		c.sources = sources
		return
	}
	d.categories[name] = &category{sources: sources, buckets: map[float64]*Bucket{}}
	d.order = append(d.order, name)
}

// PushFrame adds frame to the bucket of (name, exptime). Unknown categories
// are registered without sources.
func (d *Data) PushFrame(name string, exptime float64, frame Frame) error {
	if math.IsNaN(exptime) || math.IsInf(exptime, 0) {
		return fmt.Errorf("category %q: invalid exposure time %v", name, exptime)
	}
	if frame.Width <= 0 || frame.Height <= 0 || len(frame.Pixels) != frame.Width*frame.Height {
		return fmt.Errorf("category %q: %w: %dx%d with %d pixels", name, ErrFrameSize, frame.Width, frame.Height, len(frame.Pixels))
	}
	c, ok := d.categories[name]
	if !ok {
		d.AddCategory(name, nil)
		c = d.categories[name]
	}
	b, ok := c.buckets[exptime]
	if !ok {
		b = &Bucket{Width: frame.Width, Height: frame.Height}
		c.buckets[exptime] = b
	}
	if b.Width != frame.Width || b.Height != frame.Height {
		return fmt.Errorf("category %q exptime %g: %w: bucket is %dx%d, frame is %dx%d",
			name, exptime, ErrFrameSize, b.Width, b.Height, frame.Width, frame.Height)
	}
	b.push(frame.Pixels, d.precision)
	return nil
}

// Categories returns category names in registration order.
func (d *Data) Categories() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Sources returns the source expression of a category.
func (d *Data) Sources(name string) config.Sources {
	if c, ok := d.categories[name]; ok {
		return c.sources
	}
	return nil
}

// SourceNames returns every source referenced by a registered category,
// sorted.
func (d *Data) SourceNames() []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range d.categories {
		for _, name := range c.sources.Names() {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Exptimes returns the exposure times of a category, ascending.
func (d *Data) Exptimes(name string) []float64 {
	c, ok := d.categories[name]
	if !ok {
		return nil
	}
	out := make([]float64, 0, len(c.buckets))
	for e := range c.buckets {
		out = append(out, e)
	}
	sort.Float64s(out)
	return out
}

// Bucket returns the statistics of (name, exptime).
func (d *Data) Bucket(name string, exptime float64) (*Bucket, bool) {
	c, ok := d.categories[name]
	if !ok {
		return nil, false
	}
	b, ok := c.buckets[exptime]
	return b, ok
}

// Frames returns the total number of frames pushed.
func (d *Data) Frames() int {
	total := 0
	for _, c := range d.categories {
		for _, b := range c.buckets {
			total += b.count
		}
	}
	return total
}

// Prune removes empty buckets and then categories left without buckets.
// Sources disappear with the last category referencing them.
func (d *Data) Prune() {
	kept := d.order[:0]
	for _, name := range d.order {
		c := d.categories[name]
		for e, b := range c.buckets {
			if b.count == 0 {
				delete(c.buckets, e)
			}
		}
		if len(c.buckets) == 0 {
			delete(d.categories, name)
			continue
		}
		kept = append(kept, name)
	}
	d.order = kept
}
