package testsupport

import (
	"fmt"
	"path/filepath"
	"sync"

	"calibcat/internal/fits"
)

// MemoryReader is a fits.Reader backed by in-memory units. It counts header
// reads per path so tests can assert single-read behaviour.
type MemoryReader struct {
	mu          sync.Mutex
	files       map[string][]Unit
	headerReads map[string]int
	imageOpens  map[string]int
}

func NewMemoryReader() *MemoryReader {
	return &MemoryReader{
		files:       map[string][]Unit{},
		headerReads: map[string]int{},
		imageOpens:  map[string]int{},
	}
}

// Add registers the units of path. The first unit's cards form the primary
// header.
func (r *MemoryReader) Add(path string, units ...Unit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files[filepath.Clean(path)] = units
}

func (r *MemoryReader) ReadHeader(path string) (fits.Header, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	path = filepath.Clean(path)
	r.headerReads[path]++
	units, ok := r.files[path]
	if !ok || len(units) == 0 {
		return fits.Header{}, fmt.Errorf("open %s: no such file in memory reader", path)
	}
	return fits.NewHeader(units[0].Cards), nil
}

func (r *MemoryReader) OpenImage(path string, hdu fits.HDU) (*fits.Image, error) {
	if err := hdu.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	path = filepath.Clean(path)
	r.imageOpens[path]++
	units, ok := r.files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file in memory reader", path)
	}
	if hdu.IsNamed() {
		for _, u := range units {
			if u.Name == hdu.Name {
				return fits.NewImage(path, hdu, u.Axes, u.Pixels)
			}
		}
		return nil, fmt.Errorf("%s hdu %s: %w", path, hdu, fits.ErrUnitNotFound)
	}
	if hdu.Index > len(units) {
		return nil, fmt.Errorf("%s hdu %s: %w", path, hdu, fits.ErrUnitNotFound)
	}
	u := units[hdu.Index-1]
	if len(u.Axes) == 0 {
		return nil, fmt.Errorf("%s hdu %s: %w", path, hdu, fits.ErrNotImage)
	}
	return fits.NewImage(path, hdu, u.Axes, u.Pixels)
}

// HeaderReads returns how many times the header of path was read.
func (r *MemoryReader) HeaderReads(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.headerReads[filepath.Clean(path)]
}

// ImageOpens returns how many times an image unit of path was opened.
func (r *MemoryReader) ImageOpens(path string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.imageOpens[filepath.Clean(path)]
}
