// Package numeric holds integer-limit constants and overflow-checked
// arithmetic shared by the value and builtins packages.
package numeric

import "math/bits"

// Integer limit values.
const (
	MaxInt8   = 1<<7 - 1
	MinInt8   = -1 << 7
	MaxInt16  = 1<<15 - 1
	MinInt16  = -1 << 15
	MaxInt32  = 1<<31 - 1
	MinInt32  = -1 << 31
	MaxUint8  = 1<<8 - 1
	MaxUint16 = 1<<16 - 1
	MaxUint32 = 1<<32 - 1
)

// SafeAdd returns x+y and whether the addition overflowed 64 bits.
func SafeAdd(x, y uint64) (uint64, bool) {
	sum, carryOut := bits.Add64(x, y, 0)
	return sum, carryOut != 0
}

// SafeMul returns x*y and whether the multiplication overflowed 64 bits.
func SafeMul(x, y uint64) (uint64, bool) {
	hi, lo := bits.Mul64(x, y)
	return lo, hi != 0
}

// CeilDiv divides x by y, rounding up. Returns 0 when y is 0.
func CeilDiv(x, y int) int {
	if y == 0 {
		return 0
	}
	return (x + y - 1) / y
}

// Max returns the larger of x and y.
func Max[T int | int64 | uint64](x, y T) T {
	if x > y {
		return x
	}
	return y
}

// Min returns the smaller of x and y.
func Min[T int | int64 | uint64](x, y T) T {
	if x < y {
		return x
	}
	return y
}
