package fits

import "fmt"

// Span is a 0-based stepped selection of Count indices along one axis.
type Span struct {
	Start int
	Step  int
	Count int
}

// Last returns the final index the span touches.
func (s Span) Last() int {
	if s.Count <= 0 {
		return s.Start
	}
	return s.Start + (s.Count-1)*s.Step
}

// Region selects a rectangle over the two leading axes.
type Region struct {
	X Span
	Y Span
}

// Full selects every pixel of an nx by ny plane.
func Full(nx, ny int) Region {
	return Region{X: Span{Start: 0, Step: 1, Count: nx}, Y: Span{Start: 0, Step: 1, Count: ny}}
}

func (r Region) Width() int { return r.X.Count }
func (r Region) Height() int { return r.Y.Count }

func (r Region) String() string {
	return fmt.Sprintf("[%d:%d:%d, %d:%d:%d]", r.X.Start, r.X.Step, r.X.Last(), r.Y.Start, r.Y.Step, r.Y.Last())
}

func (r Region) fits(nx, ny int) bool {
	check := func(s Span, n int) bool {
		return s.Count > 0 && s.Step > 0 && s.Start >= 0 && s.Last() < n
	}
	return check(r.X, nx) && check(r.Y, ny)
}
