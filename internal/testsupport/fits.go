package testsupport

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/astrogo/fitsio"
	"github.com/klauspost/compress/gzip"
)

// Unit describes one image HDU for WriteFITS and MemoryReader. Name, when
// set, is written as EXTNAME. Bitpix selects the on-disk pixel type and
// defaults to -64; Pixels hold stored values, before BSCALE/BZERO.
type Unit struct {
	Name   string
	Bitpix int
	Axes   []int
	Pixels []float64
	Cards  map[string]any
}

// WriteFITS writes units as a FITS file at path; the first unit is the
// primary HDU.
func WriteFITS(t testing.TB, path string, units ...Unit) {
	t.Helper()

	if len(units) == 0 {
		t.Fatalf("WriteFITS %s: no units", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	out, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer out.Close()

	f, err := fitsio.Create(out)
	if err != nil {
		t.Fatalf("fitsio create %s: %v", path, err)
	}
	for i, u := range units {
		bitpix := u.Bitpix
		if bitpix == 0 {
			bitpix = -64
		}
		img := fitsio.NewImage(bitpix, u.Axes)
		if cards := unitCards(u); len(cards) > 0 {
			if err := img.Header().Append(cards...); err != nil {
				t.Fatalf("%s unit %d: append cards: %v", path, i, err)
			}
		}
		if err := img.Write(storedPixels(bitpix, u.Pixels)); err != nil {
			t.Fatalf("%s unit %d: write pixels: %v", path, i, err)
		}
		if err := f.Write(img); err != nil {
			t.Fatalf("%s unit %d: write hdu: %v", path, i, err)
		}
		if err := img.Close(); err != nil {
			t.Fatalf("%s unit %d: close hdu: %v", path, i, err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatalf("fitsio close %s: %v", path, err)
	}
}

// GzipFile compresses src into dst.
func GzipFile(t testing.TB, src, dst string) {
	t.Helper()

	data, err := os.ReadFile(src)
	if err != nil {
		t.Fatalf("read %s: %v", src, err)
	}
	out, err := os.Create(dst)
	if err != nil {
		t.Fatalf("create %s: %v", dst, err)
	}
	defer out.Close()
	zw := gzip.NewWriter(out)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip %s: %v", dst, err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close %s: %v", dst, err)
	}
}

func storedPixels(bitpix int, pixels []float64) any {
	switch bitpix {
	case 8:
		return convertPixels[uint8](pixels)
	case 16:
		return convertPixels[int16](pixels)
	case 32:
		return convertPixels[int32](pixels)
	case 64:
		return convertPixels[int64](pixels)
	case -32:
		return convertPixels[float32](pixels)
	default:
		return pixels
	}
}

func convertPixels[T uint8 | int16 | int32 | int64 | float32](pixels []float64) []T {
	out := make([]T, len(pixels))
	for i, p := range pixels {
		out[i] = T(p)
	}
	return out
}

func unitCards(u Unit) []fitsio.Card {
	keys := make([]string, 0, len(u.Cards))
	for k := range u.Cards {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cards := make([]fitsio.Card, 0, len(keys)+1)
	if u.Name != "" {
		cards = append(cards, fitsio.Card{Name: "EXTNAME", Value: u.Name})
	}
	for _, k := range keys {
		cards = append(cards, fitsio.Card{Name: k, Value: u.Cards[k]})
	}
	return cards
}
