package fits

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/astrogo/fitsio"
	"github.com/klauspost/compress/gzip"
)

// Header holds the native-typed card values of one header, keyed by
// normalized keyword.
type Header struct {
	cards map[string]any
}

// NewHeader builds a Header from keyword/value pairs.
func NewHeader(cards map[string]any) Header {
	h := Header{cards: make(map[string]any, len(cards))}
	for k, v := range cards {
		h.cards[NormalizeKeyword(k)] = v
	}
	return h
}

// Lookup returns the native value of keyword, if present.
func (h Header) Lookup(keyword string) (any, bool) {
	v, ok := h.cards[NormalizeKeyword(keyword)]
	return v, ok
}

func (h Header) Keys() []string {
	keys := make([]string, 0, len(h.cards))
	for k := range h.cards {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reader is the file-format collaborator used by gathering and assembly.
// Implementations open and close the file within each call.
type Reader interface {
	// ReadHeader returns the primary header of path.
	ReadHeader(path string) (Header, error)
	// OpenImage decodes the selected unit of path.
	OpenImage(path string, hdu HDU) (*Image, error)
}

// FileReader reads FITS files from disk. Gzip-compressed files are
// decompressed on the fly.
type FileReader struct{}

func NewFileReader() *FileReader { return &FileReader{} }

// ReadHeader decodes the primary unit only; later units are never read.
func (r *FileReader) ReadHeader(path string) (Header, error) {
	dec, closer, err := openDecoder(path)
	if err != nil {
		return Header{}, err
	}
	defer closer.Close()

	unit, err := dec.DecodeHDU()
	if err != nil {
		return Header{}, fmt.Errorf("decode %s: %w", path, err)
	}
	defer unit.Close()

	hdr := unit.Header()
	cards := make(map[string]any, len(hdr.Keys()))
	for _, key := range hdr.Keys() {
		if card := hdr.Get(key); card != nil {
			cards[key] = card.Value
		}
	}
	return NewHeader(cards), nil
}

// OpenImage decodes units in order up to the selected one.
func (r *FileReader) OpenImage(path string, hdu HDU) (*Image, error) {
	if err := hdu.Validate(); err != nil {
		return nil, err
	}
	dec, closer, err := openDecoder(path)
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	unit, err := selectUnit(dec, path, hdu)
	if err != nil {
		return nil, err
	}
	defer unit.Close()

	img, ok := unit.(fitsio.Image)
	if !ok {
		return nil, fmt.Errorf("%s hdu %s: %w", path, hdu, ErrNotImage)
	}
	hdr := img.Header()
	axes := hdr.Axes()
	if len(axes) == 0 {
		return nil, fmt.Errorf("%s hdu %s: %w", path, hdu, ErrNotImage)
	}
	pixels, err := readPixels(img)
	if err != nil {
		return nil, fmt.Errorf("%s hdu %s: read pixels: %w", path, hdu, err)
	}
	applyScaling(hdr, pixels)
	return NewImage(path, hdu, axes, pixels)
}

func selectUnit(dec fitsio.Decoder, path string, hdu HDU) (fitsio.HDU, error) {
	for i := 1; ; i++ {
		unit, err := dec.DecodeHDU()
		if errors.Is(err, io.EOF) && i > 1 {
			return nil, fmt.Errorf("%s hdu %s: %w (file has %d units)", path, hdu, ErrUnitNotFound, i-1)
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s unit %d: %w", path, i, err)
		}
		if hdu.IsNamed() && unit.Name() == hdu.Name || !hdu.IsNamed() && i == hdu.Index {
			return unit, nil
		}
		unit.Close()
	}
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var errs []error
	for i := len(m) - 1; i >= 0; i-- {
		errs = append(errs, m[i].Close())
	}
	return errors.Join(errs...)
}

// openDecoder opens path and sniffs the gzip magic so compressed files
// decode transparently.
func openDecoder(path string) (fitsio.Decoder, io.Closer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	br := bufio.NewReader(file)
	magic, err := br.Peek(2)
	if err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			file.Close()
			return nil, nil, fmt.Errorf("gunzip %s: %w", path, err)
		}
		return fitsio.NewDecoder(zr), multiCloser{file, zr}, nil
	}
	return fitsio.NewDecoder(br), file, nil
}

// readPixels decodes the unit's data at its stored width and widens it
// to float64.
func readPixels(img fitsio.Image) ([]float64, error) {
	switch bitpix := img.Header().Bitpix(); bitpix {
	case 8:
		return widen[uint8](img)
	case 16:
		return widen[int16](img)
	case 32:
		return widen[int32](img)
	case 64:
		return widen[int64](img)
	case -32:
		return widen[float32](img)
	case -64:
		return widen[float64](img)
	default:
		return nil, fmt.Errorf("unsupported BITPIX %d", bitpix)
	}
}

func widen[T uint8 | int16 | int32 | int64 | float32 | float64](img fitsio.Image) ([]float64, error) {
	n := 1
	for _, a := range img.Header().Axes() {
		n *= a
	}
	raw := make([]T, n)
	if err := img.Read(&raw); err != nil {
		return nil, err
	}
	if out, ok := any(raw).([]float64); ok {
		return out, nil
	}
	out := make([]float64, n)
	for i, v := range raw {
		out[i] = float64(v)
	}
	return out, nil
}

// applyScaling maps stored values to physical values with BSCALE/BZERO.
func applyScaling(hdr *fitsio.Header, pixels []float64) {
	scale, zero := 1.0, 0.0
	if card := hdr.Get("BSCALE"); card != nil {
		if v, ok := numeric(card.Value); ok {
			scale = v
		}
	}
	if card := hdr.Get("BZERO"); card != nil {
		if v, ok := numeric(card.Value); ok {
			zero = v
		}
	}
	if scale == 1 && zero == 0 {
		return
	}
	for i, p := range pixels {
		pixels[i] = zero + scale*p
	}
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	default:
		return 0, false
	}
}
