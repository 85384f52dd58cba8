package value

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

// Str is an immutable sequence of UTF-16 code units with O(1) length and
// indexed code-unit access. FlatString is the materialized representation;
// RopeString defers concatenation and flattens lazily on first random
// access, matching spec.md §3's "MAY be represented as rope/concatenation
// trees flattened on first random access" allowance.
type Str interface {
	Length() int
	CodeUnitAt(i int) uint16
	Go() string
	Flatten() *FlatString
}

// FlatString is a materialized UTF-16 code-unit sequence.
type FlatString struct {
	units []uint16
}

func NewFlatString(s string) *FlatString {
	return &FlatString{units: utf16.Encode([]rune(s))}
}

func NewFlatStringUnits(units []uint16) *FlatString {
	cp := make([]uint16, len(units))
	copy(cp, units)
	return &FlatString{units: cp}
}

func (f *FlatString) Length() int             { return len(f.units) }
func (f *FlatString) CodeUnitAt(i int) uint16 { return f.units[i] }
func (f *FlatString) Go() string              { return string(utf16.Decode(f.units)) }
func (f *FlatString) Flatten() *FlatString    { return f }
func (f *FlatString) Units() []uint16         { return f.units }

// RopeString is an unflattened concatenation of two strings. Random
// indexed access (CodeUnitAt) triggers a one-time flatten; Length is O(1)
// regardless, per the invariant that length semantics never change
// depending on representation.
type RopeString struct {
	left, right Str
	length      int
	flat        *FlatString
}

func Concat(left, right Str) Str {
	if left.Length() == 0 {
		return right
	}
	if right.Length() == 0 {
		return left
	}
	return &RopeString{left: left, right: right, length: left.Length() + right.Length()}
}

func (r *RopeString) Length() int { return r.length }

func (r *RopeString) CodeUnitAt(i int) uint16 {
	return r.Flatten().CodeUnitAt(i)
}

func (r *RopeString) Flatten() *FlatString {
	if r.flat == nil {
		units := make([]uint16, 0, r.length)
		units = append(units, r.left.Flatten().units...)
		units = append(units, r.right.Flatten().units...)
		r.flat = &FlatString{units: units}
		r.left, r.right = nil, nil // allow the unflattened operands to be collected
	}
	return r.flat
}

func (r *RopeString) Go() string { return r.Flatten().Go() }

// StrEquals implements code-unit-wise string equality, used by
// strict-equality and SameValue(Zero).
func StrEquals(a, b Str) bool {
	if a.Length() != b.Length() {
		return false
	}
	af, bf := a.Flatten(), b.Flatten()
	for i, u := range af.units {
		if bf.units[i] != u {
			return false
		}
	}
	return true
}

// StrCompare implements code-unit lexicographic comparison (§6
// "String comparison is code-unit lexicographic"), returning -1, 0, or 1.
func StrCompare(a, b Str) int {
	af, bf := a.Flatten(), b.Flatten()
	n := af.Length()
	if bf.Length() < n {
		n = bf.Length()
	}
	for i := 0; i < n; i++ {
		if af.units[i] != bf.units[i] {
			if af.units[i] < bf.units[i] {
				return -1
			}
			return 1
		}
	}
	switch {
	case af.Length() < bf.Length():
		return -1
	case af.Length() > bf.Length():
		return 1
	default:
		return 0
	}
}

func formatNumber(f float64) string {
	if f != f { // NaN
		return "NaN"
	}
	if f == 0 {
		return "0"
	}
	if math.IsInf(f, 0) {
		if f > 0 {
			return "Infinity"
		}
		return "-Infinity"
	}
	// Number::toString uses plain decimal notation for magnitudes in
	// [1e-6, 1e21) and exponential notation outside that range.
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'e', -1, 64)
	// Go renders the exponent as e+09; ECMAScript wants e+9 (no leading
	// zero) and a lowercase e, which FormatFloat already gives except for
	// the zero-padded exponent digit.
	if idx := strings.IndexAny(s, "eE"); idx >= 0 {
		mantissa, exp := s[:idx], s[idx+1:]
		sign := "+"
		if len(exp) > 0 && (exp[0] == '+' || exp[0] == '-') {
			if exp[0] == '-' {
				sign = "-"
			}
			exp = exp[1:]
		}
		exp = strings.TrimLeft(exp, "0")
		if exp == "" {
			exp = "0"
		}
		s = mantissa + "e" + sign + exp
	}
	return s
}
