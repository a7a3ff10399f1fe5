package config

import (
	"fmt"
	"strings"
	"time"

	"calibcat/internal/value"
)

// Filter is a predicate on one header keyword. The variants are
// SingleValue, MultipleValues and DateRange.
type Filter interface {
	// Kind is the scalar kind the filter expects the header value to have.
	Kind() value.Kind
	String() string
	isFilter()
}

// SingleValue accepts a header value equal to Target.
type SingleValue struct {
	Target value.Scalar
}

// MultipleValues accepts a header value equal to any of Targets.
type MultipleValues struct {
	Targets []value.Scalar
}

// DateRange accepts timestamps with Min <= t < Max.
type DateRange struct {
	Min time.Time
	Max time.Time
}

func (SingleValue) isFilter() {}
func (MultipleValues) isFilter() {}
func (DateRange) isFilter() {}

func (f SingleValue) Kind() value.Kind { return f.Target.Kind() }

func (f MultipleValues) Kind() value.Kind {
	if len(f.Targets) == 0 {
		return value.KindMissing
	}
	return f.Targets[0].Kind()
}

func (DateRange) Kind() value.Kind { return value.KindTime }

func (f SingleValue) String() string { return f.Target.String() }

func (f MultipleValues) String() string {
	parts := make([]string, len(f.Targets))
	for i, t := range f.Targets {
		parts[i] = t.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (f DateRange) String() string {
	const layout = "2006-01-02T15:04:05.000"
	return "[" + f.Min.Format(layout) + ", " + f.Max.Format(layout) + ")"
}

// NewSingleValue builds a SingleValue filter for a filterable scalar.
func NewSingleValue(target value.Scalar) (SingleValue, error) {
	if target.Kind() == value.KindComplex {
		return SingleValue{}, fmt.Errorf("%w: complex numbers cannot be filtered on", ErrUnsupportedType)
	}
	if !target.Kind().Filterable() {
		return SingleValue{}, fmt.Errorf("%w: %s", ErrUnsupportedType, target.Kind())
	}
	return SingleValue{Target: target}, nil
}

// NewMultipleValues builds a MultipleValues filter. All targets must share
// one filterable kind.
func NewMultipleValues(targets []value.Scalar) (MultipleValues, error) {
	if len(targets) == 0 {
		return MultipleValues{}, fmt.Errorf("%w: empty list", ErrMalformedFilter)
	}
	kind := targets[0].Kind()
	for i, t := range targets {
		if !t.Kind().Filterable() {
			return MultipleValues{}, fmt.Errorf("%w: element %d has type %s", ErrUnsupportedType, i, t.Kind())
		}
		if t.Kind() != kind {
			return MultipleValues{}, fmt.Errorf("%w: element %d has type %s, expected %s", ErrMalformedFilter, i, t.Kind(), kind)
		}
	}
	cp := make([]value.Scalar, len(targets))
	copy(cp, targets)
	return MultipleValues{Targets: cp}, nil
}

// NewDateRange builds a DateRange filter; max must not precede min.
func NewDateRange(min, max time.Time) (DateRange, error) {
	if max.Before(min) {
		return DateRange{}, fmt.Errorf("%w: max %s precedes min %s", ErrMalformedFilter,
			max.Format(time.RFC3339Nano), min.Format(time.RFC3339Nano))
	}
	return DateRange{Min: min, Max: max}, nil
}
