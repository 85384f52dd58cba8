package vm

import (
	"math"
	"strconv"
	"strings"

	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/value"
)

// toBoolean implements ToBoolean; it never calls script code.
func toBoolean(v value.Value) bool {
	switch v.Kind() {
	case value.Undefined, value.Null:
		return false
	case value.Boolean:
		return v.Bool()
	case value.Number, value.Int32:
		f := v.Float64()
		return f != 0 && !math.IsNaN(f)
	case value.BigIntKind:
		return v.BigInt().Sign() != 0
	case value.StringKind:
		return v.Str().Length() > 0
	default:
		return true // symbol, object
	}
}

// toPrimitive implements OrdinaryToPrimitive: for an object, try
// valueOf/toString (or the reverse, for a "string" hint) in order,
// accepting the first result that isn't itself an object. Calling either
// method runs script, so this is a VM method, not a free function.
func (vm *VM) toPrimitive(v value.Value, hint string) (value.Value, *ThrowSignal, error) {
	if !v.IsObject() {
		return v, nil, nil
	}
	o, _ := object.FromValue(v)
	methodNames := []string{"valueOf", "toString"}
	if hint == "string" {
		methodNames = []string{"toString", "valueOf"}
	}
	for _, name := range methodNames {
		fnVal, thrown, err := vm.getProperty(o, value.StringKey(name), v)
		if thrown != nil || err != nil {
			return value.UndefinedValue, thrown, err
		}
		if !fnVal.IsObject() {
			continue
		}
		fo, _ := object.FromValue(fnVal)
		if !fo.Callable() {
			continue
		}
		result, thrown, err := vm.call(fnVal, v, nil)
		if thrown != nil || err != nil {
			return value.UndefinedValue, thrown, err
		}
		if !result.IsObject() {
			return result, nil, nil
		}
	}
	return value.UndefinedValue, vm.newError("TypeError", "cannot convert object to primitive value"), nil
}

// toNumber implements ToNumber, calling into toPrimitive for objects.
func (vm *VM) toNumber(v value.Value) (float64, *ThrowSignal, error) {
	switch v.Kind() {
	case value.Number, value.Int32:
		return v.Float64(), nil, nil
	case value.Undefined:
		return math.NaN(), nil, nil
	case value.Null:
		return 0, nil, nil
	case value.Boolean:
		if v.Bool() {
			return 1, nil, nil
		}
		return 0, nil, nil
	case value.StringKind:
		return parseNumericString(v.Str().Go()), nil, nil
	case value.BigIntKind:
		return 0, vm.newError("TypeError", "cannot convert a BigInt to a number"), nil
	case value.ObjectKind:
		prim, thrown, err := vm.toPrimitive(v, "number")
		if thrown != nil || err != nil {
			return 0, thrown, err
		}
		return vm.toNumber(prim)
	default:
		return math.NaN(), nil, nil
	}
}

// parseNumericString implements StringToNumber: an all-whitespace-trimmed
// string is 0, "Infinity"/"+Infinity"/"-Infinity" are the signed
// infinities, and anything strconv can't parse whole is NaN.
func parseNumericString(s string) float64 {
	t := strings.TrimSpace(s)
	if t == "" {
		return 0
	}
	switch t {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	f, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// toStringValue implements ToString, calling into toPrimitive for objects.
func (vm *VM) toStringValue(v value.Value) (value.Str, *ThrowSignal, error) {
	switch v.Kind() {
	case value.StringKind:
		return v.Str(), nil, nil
	case value.ObjectKind:
		prim, thrown, err := vm.toPrimitive(v, "string")
		if thrown != nil || err != nil {
			return nil, thrown, err
		}
		return vm.toStringValue(prim)
	default:
		return value.NewFlatString(value.ToPropertyKeyString(v)), nil, nil
	}
}

// add implements the `+` operator: string concatenation if either operand
// is (after ToPrimitive) a string, numeric addition otherwise, including
// the BigInt/Number type-mix TypeError.
func (vm *VM) add(a, b value.Value) (value.Value, *ThrowSignal, error) {
	pa, thrown, err := vm.toPrimitive(a, "default")
	if thrown != nil || err != nil {
		return value.UndefinedValue, thrown, err
	}
	pb, thrown, err := vm.toPrimitive(b, "default")
	if thrown != nil || err != nil {
		return value.UndefinedValue, thrown, err
	}
	if pa.IsString() || pb.IsString() {
		sa, thrown, err := vm.toStringValue(pa)
		if thrown != nil || err != nil {
			return value.UndefinedValue, thrown, err
		}
		sb, thrown, err := vm.toStringValue(pb)
		if thrown != nil || err != nil {
			return value.UndefinedValue, thrown, err
		}
		return value.NewString(value.Concat(sa, sb)), nil, nil
	}
	if pa.IsBigInt() || pb.IsBigInt() {
		if !pa.IsBigInt() || !pb.IsBigInt() {
			return value.UndefinedValue, vm.newError("TypeError", "cannot mix BigInt and other types"), nil
		}
		return value.NewBigInt(value.BigIntAdd(pa.BigInt(), pb.BigInt())), nil, nil
	}
	na, thrown, err := vm.toNumber(pa)
	if thrown != nil || err != nil {
		return value.UndefinedValue, thrown, err
	}
	nb, thrown, err := vm.toNumber(pb)
	if thrown != nil || err != nil {
		return value.UndefinedValue, thrown, err
	}
	return value.NewNumber(na + nb), nil, nil
}

// numericBinOp implements the remaining arithmetic opcodes: -, *, /, %, **,
// bitwise and shift operators all reduce to ToNumber/ToBigInt then a plain
// Go arithmetic op.
func (vm *VM) numericBinOp(a, b value.Value, op func(x, y float64) float64, bigOp func(x, y *value.BigInt) (*value.BigInt, error)) (value.Value, *ThrowSignal, error) {
	if a.IsBigInt() || b.IsBigInt() {
		if !a.IsBigInt() || !b.IsBigInt() {
			return value.UndefinedValue, vm.newError("TypeError", "cannot mix BigInt and other types"), nil
		}
		if bigOp == nil {
			return value.UndefinedValue, vm.newError("TypeError", "unsupported BigInt operation"), nil
		}
		r, err := bigOp(a.BigInt(), b.BigInt())
		if err != nil {
			return value.UndefinedValue, vm.newError("RangeError", err.Error()), nil
		}
		return value.NewBigInt(r), nil, nil
	}
	na, thrown, err := vm.toNumber(a)
	if thrown != nil || err != nil {
		return value.UndefinedValue, thrown, err
	}
	nb, thrown, err := vm.toNumber(b)
	if thrown != nil || err != nil {
		return value.UndefinedValue, thrown, err
	}
	return value.NewNumber(op(na, nb)), nil, nil
}

// looseEquals implements the `==` abstract equality comparison algorithm.
func (vm *VM) looseEquals(a, b value.Value) (bool, *ThrowSignal, error) {
	if sameKindForEquality(a, b) {
		return value.StrictEquals(a, b), nil, nil
	}
	if a.IsNullish() && b.IsNullish() {
		return true, nil, nil
	}
	if a.IsNullish() || b.IsNullish() {
		return false, nil, nil
	}
	if a.IsNumber() && b.IsString() {
		nb, thrown, err := vm.toNumber(b)
		if thrown != nil || err != nil {
			return false, thrown, err
		}
		return a.Float64() == nb, nil, nil
	}
	if a.IsString() && b.IsNumber() {
		return vm.looseEquals(b, a)
	}
	if a.IsBoolean() {
		na, _, _ := vm.toNumber(a)
		return vm.looseEquals(value.NewNumber(na), b)
	}
	if b.IsBoolean() {
		nb, _, _ := vm.toNumber(b)
		return vm.looseEquals(a, value.NewNumber(nb))
	}
	if (a.IsNumber() || a.IsString() || a.IsBigInt()) && b.IsObject() {
		pb, thrown, err := vm.toPrimitive(b, "default")
		if thrown != nil || err != nil {
			return false, thrown, err
		}
		return vm.looseEquals(a, pb)
	}
	if a.IsObject() && (b.IsNumber() || b.IsString() || b.IsBigInt()) {
		return vm.looseEquals(b, a)
	}
	if a.IsBigInt() && b.IsNumber() || a.IsNumber() && b.IsBigInt() {
		bi, num := a, b
		if b.IsBigInt() {
			bi, num = b, a
		}
		f := num.Float64()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false, nil, nil
		}
		return bi.BigInt().Float64() == f, nil, nil
	}
	return false, nil, nil
}

func sameKindForEquality(a, b value.Value) bool {
	if a.Kind() == b.Kind() {
		return true
	}
	return a.IsNumber() && b.IsNumber()
}

// compare implements the Abstract Relational Comparison (<, <=, >, >=),
// returning (result, undefinedResult, throw, error); undefinedResult marks
// an incomparable pair (e.g. either side is NaN), which every relational
// opcode treats as false.
func (vm *VM) compare(a, b value.Value, leftFirst bool) (less bool, undefined bool, thrown *ThrowSignal, err error) {
	var pa, pb value.Value
	if leftFirst {
		pa, thrown, err = vm.toPrimitive(a, "number")
		if thrown != nil || err != nil {
			return false, false, thrown, err
		}
		pb, thrown, err = vm.toPrimitive(b, "number")
	} else {
		pb, thrown, err = vm.toPrimitive(b, "number")
		if thrown != nil || err != nil {
			return false, false, thrown, err
		}
		pa, thrown, err = vm.toPrimitive(a, "number")
	}
	if thrown != nil || err != nil {
		return false, false, thrown, err
	}
	if pa.IsString() && pb.IsString() {
		return value.StrCompare(pa.Str(), pb.Str()) < 0, false, nil, nil
	}
	if pa.IsBigInt() && pb.IsBigInt() {
		return value.BigIntCompare(pa.BigInt(), pb.BigInt()) < 0, false, nil, nil
	}
	na, thrown, err := vm.toNumber(pa)
	if thrown != nil || err != nil {
		return false, false, thrown, err
	}
	nb, thrown, err := vm.toNumber(pb)
	if thrown != nil || err != nil {
		return false, false, thrown, err
	}
	if math.IsNaN(na) || math.IsNaN(nb) {
		return false, true, nil, nil
	}
	return na < nb, false, nil, nil
}
