package value

import "math"

// SameValue implements the ECMAScript SameValue algorithm: +0 and -0 are
// distinct, NaN equals NaN.
func SameValue(a, b Value) bool {
	if a.kind != b.kind {
		if a.IsNumber() && b.IsNumber() {
			// fall through to numeric comparison below
		} else {
			return false
		}
	}
	switch a.kind {
	case Undefined, Null:
		return true
	case Boolean:
		return a.b == b.b
	case Number, Int32:
		if math.IsNaN(a.num) && math.IsNaN(b.num) {
			return true
		}
		if a.num == 0 && b.num == 0 {
			return math.Signbit(a.num) == math.Signbit(b.num)
		}
		return a.num == b.num
	case BigIntKind:
		return BigIntEquals(a.BigInt(), b.BigInt())
	case StringKind:
		return StrEquals(a.Str(), b.Str())
	case SymbolKind:
		return a.Symbol() == b.Symbol()
	case ObjectKind:
		return a.ref == b.ref
	default:
		return false
	}
}

// SameValueZero is SameValue except +0 and -0 compare equal (used by Map,
// Set, Array.prototype.includes, and typed-array operations).
func SameValueZero(a, b Value) bool {
	if a.IsNumber() && b.IsNumber() {
		if math.IsNaN(a.num) && math.IsNaN(b.num) {
			return true
		}
		return a.num == b.num
	}
	return SameValue(a, b)
}

// StrictEquals implements the === algorithm: like SameValue but +0 === -0
// and NaN !== NaN.
func StrictEquals(a, b Value) bool {
	if !sameType(a, b) {
		return false
	}
	switch a.kind {
	case Undefined, Null:
		return true
	case Boolean:
		return a.b == b.b
	case Number, Int32:
		return a.num == b.num
	case BigIntKind:
		return BigIntEquals(a.BigInt(), b.BigInt())
	case StringKind:
		return StrEquals(a.Str(), b.Str())
	case SymbolKind:
		return a.Symbol() == b.Symbol()
	case ObjectKind:
		return a.ref == b.ref
	default:
		return false
	}
}

func sameType(a, b Value) bool {
	if a.kind == b.kind {
		return true
	}
	return a.IsNumber() && b.IsNumber()
}

// HashKey returns a comparable Go value suitable for keying maps that need
// SameValueZero semantics (Map/Set backing index), collapsing +0/-0 and all
// NaN payloads to one canonical representative.
func HashKey(v Value) any {
	switch v.kind {
	case Undefined:
		return "u"
	case Null:
		return "n"
	case Boolean:
		return v.b
	case Number, Int32:
		if math.IsNaN(v.num) {
			return "NaN"
		}
		if v.num == 0 {
			return float64(0)
		}
		return v.num
	case BigIntKind:
		return "big:" + v.BigInt().String()
	case StringKind:
		return "str:" + v.Str().Go()
	case SymbolKind:
		return v.Symbol()
	case ObjectKind:
		return v.ref
	default:
		return nil
	}
}
