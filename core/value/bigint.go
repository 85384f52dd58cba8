package value

import (
	"errors"
	"math/big"

	"github.com/holiman/uint256"
)

// ErrBigIntDivideByZero is the sentinel condition the vm package turns
// into a catchable RangeError (spec.md §3 "division by zero raises a
// range-type error").
var ErrBigIntDivideByZero = errors.New("bigint: division by zero")

// BigInt is an arbitrary-precision signed integer. Operations first try a
// github.com/holiman/uint256 (the teacher's own 256-bit word type)
// fast path when both operands and the result fit in an unsigned 256-bit
// magnitude; arbitrary-precision arithmetic (the general case, and the only
// case for anything wider than 256 bits or requiring negative
// intermediate magnitudes) falls back to math/big, the sole arbitrary
// precision integer representation available anywhere in the retrieved
// pack (see DESIGN.md).
type BigInt struct {
	neg  bool
	fast *uint256.Int // valid iff big == nil
	big  *big.Int     // set when the value does not fit in a uint256 fast path
}

func NewBigIntFromInt64(i int64) *BigInt {
	if i < 0 {
		u := uint256.NewInt(uint64(-i))
		return &BigInt{neg: true, fast: u}
	}
	return &BigInt{fast: uint256.NewInt(uint64(i))}
}

func NewBigIntFromUint64(u uint64) *BigInt {
	return &BigInt{fast: uint256.NewInt(u)}
}

// Uint64 returns the value reduced modulo 2^64, matching the BigInt
// asUintN(64, ...) truncation BigInt64Array/BigUint64Array views apply on
// write (spec.md §4.3 "typed arrays ... endianness is per-view").
func (b *BigInt) Uint64() (uint64, bool) {
	mag := b.toBig()
	var m big.Int
	m.Mod(mag, new(big.Int).Lsh(big.NewInt(1), 64))
	return m.Uint64(), true
}

func NewBigIntFromBig(b *big.Int) *BigInt {
	neg := b.Sign() < 0
	abs := new(big.Int).Abs(b)
	if abs.BitLen() <= 256 {
		u := new(uint256.Int)
		u.SetFromBig(abs)
		return &BigInt{neg: neg && u.Sign() != 0, fast: u}
	}
	return &BigInt{neg: neg, big: new(big.Int).Set(abs)}
}

func (b *BigInt) toBig() *big.Int {
	var mag *big.Int
	if b.big != nil {
		mag = b.big
	} else {
		mag = b.fast.ToBig()
	}
	if b.neg && mag.Sign() != 0 {
		return new(big.Int).Neg(mag)
	}
	return new(big.Int).Set(mag)
}

func (b *BigInt) Sign() int {
	if b.big != nil {
		if b.neg {
			return -1
		}
		if b.big.Sign() == 0 {
			return 0
		}
		return 1
	}
	if b.fast.IsZero() {
		return 0
	}
	if b.neg {
		return -1
	}
	return 1
}

func (b *BigInt) String() string { return b.toBig().String() }

func (b *BigInt) Float64() float64 {
	f, _ := new(big.Float).SetInt(b.toBig()).Float64()
	return f
}

func bigIntBinOp(a, bb *BigInt, op func(x, y *big.Int) *big.Int) *BigInt {
	// General path: always math/big. The uint256 fast paths live in the
	// callers that have one (BigIntAdd, BigIntMul), which fall back here
	// for negative operands or on overflow.
	result := op(a.toBig(), bb.toBig())
	return NewBigIntFromBig(result)
}

func BigIntAdd(a, b *BigInt) *BigInt {
	if !a.neg && !b.neg && a.big == nil && b.big == nil {
		sum, overflow := new(uint256.Int).AddOverflow(a.fast, b.fast)
		if !overflow {
			return &BigInt{fast: sum}
		}
	}
	return bigIntBinOp(a, b, func(x, y *big.Int) *big.Int { return new(big.Int).Add(x, y) })
}

func BigIntSub(a, b *BigInt) *BigInt {
	return bigIntBinOp(a, b, func(x, y *big.Int) *big.Int { return new(big.Int).Sub(x, y) })
}

func BigIntMul(a, b *BigInt) *BigInt {
	if !a.neg && !b.neg && a.big == nil && b.big == nil {
		prod, overflow := new(uint256.Int).MulOverflow(a.fast, b.fast)
		if !overflow {
			return &BigInt{fast: prod}
		}
	}
	return bigIntBinOp(a, b, func(x, y *big.Int) *big.Int { return new(big.Int).Mul(x, y) })
}

// BigIntDiv truncates toward zero, as spec.md §3 requires.
func BigIntDiv(a, b *BigInt) (*BigInt, error) {
	if b.Sign() == 0 {
		return nil, ErrBigIntDivideByZero
	}
	return bigIntBinOp(a, b, func(x, y *big.Int) *big.Int {
		q := new(big.Int)
		q.Quo(x, y) // Quo truncates toward zero, matching Div for BigInt
		return q
	}), nil
}

func BigIntMod(a, b *BigInt) (*BigInt, error) {
	if b.Sign() == 0 {
		return nil, ErrBigIntDivideByZero
	}
	return bigIntBinOp(a, b, func(x, y *big.Int) *big.Int {
		r := new(big.Int)
		r.Rem(x, y)
		return r
	}), nil
}

func BigIntNeg(a *BigInt) *BigInt {
	return bigIntBinOp(a, NewBigIntFromInt64(0), func(x, _ *big.Int) *big.Int { return new(big.Int).Neg(x) })
}

func BigIntCompare(a, b *BigInt) int { return a.toBig().Cmp(b.toBig()) }

func BigIntEquals(a, b *BigInt) bool { return BigIntCompare(a, b) == 0 }
