package config

import (
	"fmt"
	"strconv"
	"strings"

	"calibcat/internal/fits"
)

// Axis selects pixels along one image axis: either the whole axis or a
// 1-based inclusive stepped range start:step:stop.
type Axis struct {
	full  bool
	Start int
	Step  int
	Stop  int
}

// FullAxis selects the whole axis.
func FullAxis() Axis { return Axis{full: true} }

// AxisRange selects start:step:stop (1-based, inclusive).
func AxisRange(start, step, stop int) (Axis, error) {
	switch {
	case start < 1:
		return Axis{}, fmt.Errorf("%w: range start %d must be >= 1", ErrMalformedROI, start)
	case step < 1:
		return Axis{}, fmt.Errorf("%w: range step %d must be >= 1", ErrMalformedROI, step)
	case stop < start:
		return Axis{}, fmt.Errorf("%w: range stop %d precedes start %d", ErrMalformedROI, stop, start)
	}
	return Axis{Start: start, Step: step, Stop: stop}, nil
}

func (a Axis) IsFull() bool { return a.full }

// Len is the number of selected pixels; 0 for an unresolved full axis.
func (a Axis) Len() int {
	if a.full {
		return 0
	}
	return (a.Stop-a.Start)/a.Step + 1
}

// Resolve turns a full axis into 1:1:n and leaves ranges alone.
func (a Axis) Resolve(n int) Axis {
	if !a.full {
		return a
	}
	return Axis{Start: 1, Step: 1, Stop: n}
}

// Fits reports whether a resolved axis lies within n pixels.
func (a Axis) Fits(n int) bool {
	if a.full {
		return true
	}
	last := a.Start + (a.Len()-1)*a.Step
	return last <= n
}

func (a Axis) span() fits.Span {
	return fits.Span{Start: a.Start - 1, Step: a.Step, Count: a.Len()}
}

func (a Axis) String() string {
	switch {
	case a.full:
		return ":"
	case a.Step == 1:
		return strconv.Itoa(a.Start) + ":" + strconv.Itoa(a.Stop)
	default:
		return strconv.Itoa(a.Start) + ":" + strconv.Itoa(a.Step) + ":" + strconv.Itoa(a.Stop)
	}
}

// ROI is the region of interest over the two leading image axes.
type ROI struct {
	X Axis
	Y Axis
}

// FullROI selects every pixel.
func FullROI() ROI { return ROI{X: FullAxis(), Y: FullAxis()} }

// IsResolved reports whether neither axis is still "full".
func (r ROI) IsResolved() bool { return !r.X.full && !r.Y.full }

// Resolve replaces full axes with the concrete extent nx by ny.
func (r ROI) Resolve(nx, ny int) ROI {
	return ROI{X: r.X.Resolve(nx), Y: r.Y.Resolve(ny)}
}

// Fits reports whether the ROI lies inside an nx by ny plane.
func (r ROI) Fits(nx, ny int) bool { return r.X.Fits(nx) && r.Y.Fits(ny) }

// Region converts a resolved ROI to a 0-based pixel region.
func (r ROI) Region() (fits.Region, error) {
	if !r.IsResolved() {
		return fits.Region{}, fmt.Errorf("roi %s is not resolved", r)
	}
	return fits.Region{X: r.X.span(), Y: r.Y.span()}, nil
}

func (r ROI) String() string {
	return "(" + r.X.String() + ", " + r.Y.String() + ")"
}

// ParseROI reads the textual form "(X, Y)" where each axis is ":", "n",
// "start:stop" or "start:step:stop". Missing outer parentheses are added and
// redundant ones removed.
func ParseROI(text string) (ROI, error) {
	body := strings.TrimSpace(text)
	if body == "" {
		return ROI{}, fmt.Errorf("%w: empty value", ErrMalformedROI)
	}
	if !strings.HasPrefix(body, "(") {
		body = "(" + body + ")"
	}
	for strings.HasPrefix(body, "((") && strings.HasSuffix(body, "))") {
		body = body[1 : len(body)-1]
	}
	if !strings.HasPrefix(body, "(") || !strings.HasSuffix(body, ")") {
		return ROI{}, fmt.Errorf("%w: unbalanced parentheses in %q", ErrMalformedROI, text)
	}
	body = body[1 : len(body)-1]

	parts := strings.Split(body, ",")
	if len(parts) != 2 {
		return ROI{}, fmt.Errorf("%w: expected 2 axes in %q, found %d", ErrMalformedROI, text, len(parts))
	}
	x, err := parseAxis(parts[0])
	if err != nil {
		return ROI{}, fmt.Errorf("axis 1: %w", err)
	}
	y, err := parseAxis(parts[1])
	if err != nil {
		return ROI{}, fmt.Errorf("axis 2: %w", err)
	}
	return ROI{X: x, Y: y}, nil
}

func parseAxis(text string) (Axis, error) {
	text = strings.TrimSpace(text)
	if text == ":" {
		return FullAxis(), nil
	}
	fields := strings.Split(text, ":")
	nums := make([]int, len(fields))
	for i, f := range fields {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return Axis{}, fmt.Errorf("%w: %q is not an integer", ErrMalformedROI, f)
		}
		nums[i] = n
	}
	switch len(nums) {
	case 1:
		return AxisRange(nums[0], 1, nums[0])
	case 2:
		return AxisRange(nums[0], 1, nums[1])
	case 3:
		return AxisRange(nums[0], nums[1], nums[2])
	default:
		return Axis{}, fmt.Errorf("%w: %q has too many ':' separators", ErrMalformedROI, text)
	}
}
