// Package value holds the typed scalars that filters target and that header
// keyword gathering produces, plus the explicit marker for absent keywords.
package value

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
	"time"
)

// Kind is the scalar category used for filter typing.
type Kind uint8

const (
	KindMissing Kind = iota
	KindString
	KindBool
	KindInt
	KindFloat
	KindTime
	KindComplex
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindString:
		return "string"
	case KindBool:
		return "boolean"
	case KindInt:
		return "integer"
	case KindFloat:
		return "float"
	case KindTime:
		return "timestamp"
	case KindComplex:
		return "complex"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Filterable reports whether filters may target values of this kind.
func (k Kind) Filterable() bool {
	switch k {
	case KindString, KindBool, KindInt, KindFloat, KindTime:
		return true
	default:
		return false
	}
}

// Scalar is one typed value. The zero Scalar is Missing.
type Scalar struct {
	kind Kind
	s    string
	b    bool
	i    int64
	f    float64
	t    time.Time
	c    complex128
}

// Missing marks a keyword absent from a file's header.
var Missing = Scalar{}

func String(v string) Scalar { return Scalar{kind: KindString, s: v} }
func Bool(v bool) Scalar { return Scalar{kind: KindBool, b: v} }
func Int(v int64) Scalar { return Scalar{kind: KindInt, i: v} }
func Float(v float64) Scalar { return Scalar{kind: KindFloat, f: v} }
func Time(v time.Time) Scalar { return Scalar{kind: KindTime, t: v} }
func Complex(v complex128) Scalar { return Scalar{kind: KindComplex, c: v} }

func (v Scalar) Kind() Kind { return v.kind }

func (v Scalar) IsMissing() bool { return v.kind == KindMissing }

func (v Scalar) Str() string { return v.s }
func (v Scalar) Bool() bool { return v.b }
func (v Scalar) Int() int64 { return v.i }
func (v Scalar) Float() float64 { return v.f }
func (v Scalar) Time() time.Time { return v.t }
func (v Scalar) Complex() complex128 { return v.c }

// Number returns the value as float64 for integer and float scalars.
func (v Scalar) Number() (float64, bool) {
	switch v.kind {
	case KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// Equal reports whether both scalars share a kind and a value.
func (v Scalar) Equal(other Scalar) bool {
	if v.kind != other.kind {
		return false
	}
	switch v.kind {
	case KindMissing:
		return true
	case KindString:
		return v.s == other.s
	case KindBool:
		return v.b == other.b
	case KindInt:
		return v.i == other.i
	case KindFloat:
		return v.f == other.f
	case KindTime:
		return v.t.Equal(other.t)
	case KindComplex:
		return v.c == other.c
	default:
		return false
	}
}

func (v Scalar) String() string {
	switch v.kind {
	case KindMissing:
		return "<missing>"
	case KindString:
		return strconv.Quote(v.s)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindTime:
		return v.t.Format("2006-01-02T15:04:05.000")
	case KindComplex:
		return strconv.FormatComplex(v.c, 'g', -1, 128)
	default:
		return v.kind.String()
	}
}

// FromNative converts a decoded header value to a Scalar. Integers of every
// width widen to int64 and floats to float64; strings lose FITS padding.
func FromNative(v any) (Scalar, error) {
	switch val := v.(type) {
	case string:
		return String(strings.TrimRight(val, " ")), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(int64(val)), nil
	case int8:
		return Int(int64(val)), nil
	case int16:
		return Int(int64(val)), nil
	case int32:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint8:
		return Int(int64(val)), nil
	case uint16:
		return Int(int64(val)), nil
	case uint32:
		return Int(int64(val)), nil
	case uint64:
		if val > math.MaxInt64 {
			return Scalar{}, fmt.Errorf("integer %d overflows int64", val)
		}
		return Int(int64(val)), nil
	case *big.Int:
		if val == nil || !val.IsInt64() {
			return Scalar{}, fmt.Errorf("integer %v overflows int64", val)
		}
		return Int(val.Int64()), nil
	case float32:
		return Float(float64(val)), nil
	case float64:
		return Float(val), nil
	case complex64:
		return Complex(complex128(val)), nil
	case complex128:
		return Complex(val), nil
	case time.Time:
		return Time(val), nil
	default:
		return Scalar{}, fmt.Errorf("unsupported value type %T", v)
	}
}
