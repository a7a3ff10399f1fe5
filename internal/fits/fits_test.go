package fits_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"calibcat/internal/fits"
	"calibcat/internal/testsupport"
)

func TestIsKeyword(t *testing.T) {
	valid := []string{"EXPTIME", "CALIBTYPE", "DATE-OBS", "NAXIS1", "ESO_DET_DIT"}
	for _, tok := range valid {
		if !fits.IsKeyword(tok) {
			t.Fatalf("expected %q to be a keyword", tok)
		}
	}
	invalid := []string{"", "dir", "exptime", "include_subdirectories", "Dir", "DATE OBS", "A.B"}
	for _, tok := range invalid {
		if fits.IsKeyword(tok) {
			t.Fatalf("expected %q not to be a keyword", tok)
		}
	}
}

func TestImageReadRegion(t *testing.T) {
	// 4x3 plane, value = 10*y + x, two planes offset by 100.
	pixels := make([]float64, 0, 24)
	for p := 0; p < 2; p++ {
		for y := 0; y < 3; y++ {
			for x := 0; x < 4; x++ {
				pixels = append(pixels, float64(100*p+10*y+x))
			}
		}
	}
	img, err := fits.NewImage("cube.fits", fits.Primary, []int{4, 3, 2}, pixels)
	if err != nil {
		t.Fatalf("NewImage returned error: %v", err)
	}
	if img.Planes() != 2 || img.Ndim() != 3 {
		t.Fatalf("unexpected shape: planes=%d ndim=%d", img.Planes(), img.Ndim())
	}

	region := fits.Region{
		X: fits.Span{Start: 1, Step: 2, Count: 2},
		Y: fits.Span{Start: 0, Step: 1, Count: 2},
	}
	got, err := img.ReadRegion(region, 1)
	if err != nil {
		t.Fatalf("ReadRegion returned error: %v", err)
	}
	want := []float64{101, 103, 111, 113}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected region (-want +got):\n%s", diff)
	}

	if _, err := img.ReadRegion(fits.Full(5, 3), 0); err == nil {
		t.Fatal("expected error for region wider than the image")
	}
	if _, err := img.ReadRegion(fits.Full(4, 3), 2); err == nil {
		t.Fatal("expected error for plane out of range")
	}
}

func TestNewImageRejectsMismatchedPixels(t *testing.T) {
	if _, err := fits.NewImage("x.fits", fits.Primary, []int{2, 2}, make([]float64, 3)); err == nil {
		t.Fatal("expected size mismatch error")
	}
	if _, err := fits.NewImage("x.fits", fits.Primary, nil, nil); !errors.Is(err, fits.ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
}

func TestHDUValidate(t *testing.T) {
	if err := fits.HDUIndex(0).Validate(); err == nil {
		t.Fatal("expected index 0 to be rejected")
	}
	if err := fits.HDUName("SCI").Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := fits.HDUName("SCI").String(); got != `"SCI"` {
		t.Fatalf("unexpected string form %q", got)
	}
}

func TestFileReaderRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.fits")
	testsupport.WriteFITS(t, path,
		testsupport.Unit{
			Axes:   []int{3, 2},
			Pixels: []float64{1, 2, 3, 4, 5, 6},
			Cards:  map[string]any{"EXPTIME": 1.5, "IMAGETYP": "FLAT", "NCOMBINE": 3},
		},
		testsupport.Unit{
			Axes:   []int{3, 2},
			Pixels: []float64{7, 8, 9, 10, 11, 12},
		},
	)

	reader := fits.NewFileReader()
	hdr, err := reader.ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader returned error: %v", err)
	}
	if v, ok := hdr.Lookup("exptime"); !ok || v != 1.5 {
		t.Fatalf("unexpected EXPTIME: %v (present=%v)", v, ok)
	}
	if _, ok := hdr.Lookup("MISSING"); ok {
		t.Fatal("expected MISSING to be absent")
	}

	img, err := reader.OpenImage(path, fits.HDUIndex(2))
	if err != nil {
		t.Fatalf("OpenImage returned error: %v", err)
	}
	if diff := cmp.Diff([]int{3, 2}, img.Axes()); diff != "" {
		t.Fatalf("unexpected axes (-want +got):\n%s", diff)
	}
	got, err := img.ReadRegion(fits.Full(3, 2), 0)
	if err != nil {
		t.Fatalf("ReadRegion returned error: %v", err)
	}
	if diff := cmp.Diff([]float64{7, 8, 9, 10, 11, 12}, got); diff != "" {
		t.Fatalf("unexpected pixels (-want +got):\n%s", diff)
	}

	if _, err := reader.OpenImage(path, fits.HDUIndex(3)); !errors.Is(err, fits.ErrUnitNotFound) {
		t.Fatalf("expected ErrUnitNotFound, got %v", err)
	}
}

func TestFileReaderDecodesStoredPixelTypes(t *testing.T) {
	tests := []struct {
		name   string
		bitpix int
		stored []float64
		cards  map[string]any
		want   []float64
	}{
		{name: "unsigned 8 bit", bitpix: 8, stored: []float64{0, 1, 200, 255}, want: []float64{0, 1, 200, 255}},
		{
			name:   "unsigned 16 bit via BZERO",
			bitpix: 16,
			stored: []float64{-32768, -1, 0, 32767},
			cards:  map[string]any{"BZERO": 32768},
			want:   []float64{0, 32767, 32768, 65535},
		},
		{name: "signed 32 bit", bitpix: 32, stored: []float64{-70000, 0, 1, 70000}, want: []float64{-70000, 0, 1, 70000}},
		{
			name:   "float 32 with BSCALE",
			bitpix: -32,
			stored: []float64{0.5, 1, 1.5, 2},
			cards:  map[string]any{"BSCALE": 2.0},
			want:   []float64{1, 2, 3, 4},
		},
		{name: "float 64", bitpix: -64, stored: []float64{0.25, 1, 2, 3}, want: []float64{0.25, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "frame.fits")
			testsupport.WriteFITS(t, path, testsupport.Unit{
				Bitpix: tt.bitpix,
				Axes:   []int{2, 2},
				Pixels: tt.stored,
				Cards:  tt.cards,
			})

			img, err := fits.NewFileReader().OpenImage(path, fits.Primary)
			if err != nil {
				t.Fatalf("OpenImage returned error: %v", err)
			}
			got, err := img.ReadRegion(fits.Full(2, 2), 0)
			if err != nil {
				t.Fatalf("ReadRegion returned error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Fatalf("unexpected pixels (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFileReaderReadsGzipFiles(t *testing.T) {
	dir := t.TempDir()
	plain := filepath.Join(dir, "dark.fits")
	testsupport.WriteFITS(t, plain,
		testsupport.Unit{
			Bitpix: 16,
			Axes:   []int{2, 2},
			Pixels: []float64{1, 2, 3, 4},
			Cards:  map[string]any{"IMAGETYP": "DARK"},
		},
		testsupport.Unit{Name: "SCI", Axes: []int{2, 1}, Pixels: []float64{5, 6}},
	)
	packed := filepath.Join(dir, "dark.fits.gz")
	testsupport.GzipFile(t, plain, packed)

	reader := fits.NewFileReader()
	hdr, err := reader.ReadHeader(packed)
	if err != nil {
		t.Fatalf("ReadHeader returned error: %v", err)
	}
	if v, ok := hdr.Lookup("IMAGETYP"); !ok || v != "DARK" {
		t.Fatalf("unexpected IMAGETYP: %v (present=%v)", v, ok)
	}

	img, err := reader.OpenImage(packed, fits.HDUName("SCI"))
	if err != nil {
		t.Fatalf("OpenImage returned error: %v", err)
	}
	got, err := img.ReadRegion(fits.Full(2, 1), 0)
	if err != nil {
		t.Fatalf("ReadRegion returned error: %v", err)
	}
	if diff := cmp.Diff([]float64{5, 6}, got); diff != "" {
		t.Fatalf("unexpected pixels (-want +got):\n%s", diff)
	}
}

func TestFileReaderIgnoresUnitsPastTheSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flat.fits")
	testsupport.WriteFITS(t, path, testsupport.Unit{
		Axes:   []int{2, 2},
		Pixels: []float64{1, 2, 3, 4},
		Cards:  map[string]any{"EXPTIME": 2.0},
	})
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		t.Fatalf("open for append: %v", err)
	}
	if _, err := f.Write(bytes.Repeat([]byte("X"), 100)); err != nil {
		t.Fatalf("append junk: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reader := fits.NewFileReader()
	hdr, err := reader.ReadHeader(path)
	if err != nil {
		t.Fatalf("ReadHeader returned error: %v", err)
	}
	if v, ok := hdr.Lookup("EXPTIME"); !ok || v != 2.0 {
		t.Fatalf("unexpected EXPTIME: %v (present=%v)", v, ok)
	}
	if _, err := reader.OpenImage(path, fits.Primary); err != nil {
		t.Fatalf("OpenImage returned error: %v", err)
	}
	if _, err := reader.OpenImage(path, fits.HDUIndex(2)); err == nil || errors.Is(err, fits.ErrUnitNotFound) {
		t.Fatalf("expected a decode error for the truncated unit, got %v", err)
	}
}
