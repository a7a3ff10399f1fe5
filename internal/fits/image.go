package fits

import "fmt"

// Image is a decoded image unit. Pixels are stored with the first axis
// varying fastest, as on disk.
type Image struct {
	Path   string
	HDU    HDU
	axes   []int
	pixels []float64
}

// NewImage wraps decoded pixel data. len(pixels) must equal the product of axes.
func NewImage(path string, hdu HDU, axes []int, pixels []float64) (*Image, error) {
	if len(axes) == 0 {
		return nil, fmt.Errorf("%s hdu %s: %w", path, hdu, ErrNotImage)
	}
	n := 1
	for _, a := range axes {
		if a <= 0 {
			return nil, fmt.Errorf("%s hdu %s: invalid axis length %d", path, hdu, a)
		}
		n *= a
	}
	if len(pixels) != n {
		return nil, fmt.Errorf("%s hdu %s: have %d pixels for axes %v", path, hdu, len(pixels), axes)
	}
	cp := make([]int, len(axes))
	copy(cp, axes)
	return &Image{Path: path, HDU: hdu, axes: cp, pixels: pixels}, nil
}

// Axes returns the axis lengths, first axis first.
func (img *Image) Axes() []int {
	out := make([]int, len(img.axes))
	copy(out, img.axes)
	return out
}

func (img *Image) Ndim() int { return len(img.axes) }

// Planes is the length of the third axis, or 1 for 2D data.
func (img *Image) Planes() int {
	if len(img.axes) < 3 {
		return 1
	}
	return img.axes[2]
}

// ReadRegion copies region out of the given 0-based plane.
func (img *Image) ReadRegion(region Region, plane int) ([]float64, error) {
	if len(img.axes) < 2 {
		return nil, fmt.Errorf("%s hdu %s: need at least 2 axes, have %d", img.Path, img.HDU, len(img.axes))
	}
	if len(img.axes) > 3 {
		return nil, fmt.Errorf("%s hdu %s: %d axes not supported", img.Path, img.HDU, len(img.axes))
	}
	nx, ny := img.axes[0], img.axes[1]
	if !region.fits(nx, ny) {
		return nil, fmt.Errorf("%s hdu %s: region %s outside %dx%d", img.Path, img.HDU, region, nx, ny)
	}
	if plane < 0 || plane >= img.Planes() {
		return nil, fmt.Errorf("%s hdu %s: plane %d out of range [0, %d)", img.Path, img.HDU, plane, img.Planes())
	}

	out := make([]float64, 0, region.Width()*region.Height())
	base := plane * nx * ny
	for j := 0; j < region.Y.Count; j++ {
		y := region.Y.Start + j*region.Y.Step
		row := base + y*nx
		for i := 0; i < region.X.Count; i++ {
			x := region.X.Start + i*region.X.Step
			out = append(out, img.pixels[row+x])
		}
	}
	return out, nil
}
