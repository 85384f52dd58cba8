// Package value implements the tagged Value union shared by the shape,
// object, gc and vm packages: undefined, null, boolean, number, the int32
// fast path, bigint, string, symbol, and object references.
package value

import "fmt"

// Kind discriminates the tagged union held by a Value.
type Kind uint8

const (
	Undefined Kind = iota
	Null
	Boolean
	Number
	Int32 // fast-path integer; always representable exactly as a float64 too
	BigIntKind
	StringKind
	SymbolKind
	ObjectKind
)

func (k Kind) String() string {
	switch k {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Number, Int32:
		return "number"
	case BigIntKind:
		return "bigint"
	case StringKind:
		return "string"
	case SymbolKind:
		return "symbol"
	case ObjectKind:
		return "object"
	default:
		return "invalid"
	}
}

// Value is a uniformly-sized tagged cell. Primitive payloads that fit are
// stored inline (num/b); heap payloads (BigInt, Str, *Symbol, and the
// object reference installed by package object) are stored in ref.
//
// Value is intentionally not parameterized over package object's concrete
// object type to avoid an import cycle: the object package stores Values
// in its property slots, so Value cannot import object. Object references
// are carried as `any` and unwrapped with ObjectRef/NewObject by callers
// that do know the concrete type (core/object, core/vm, core/builtins).
type Value struct {
	kind Kind
	num  float64
	b    bool
	ref  any
}

var (
	UndefinedValue = Value{kind: Undefined}
	NullValue      = Value{kind: Null}
	TrueValue      = Value{kind: Boolean, b: true}
	FalseValue     = Value{kind: Boolean, b: false}
)

func NewBool(b bool) Value {
	if b {
		return TrueValue
	}
	return FalseValue
}

func NewNumber(f float64) Value { return Value{kind: Number, num: f} }

// NewInt32 constructs a fast-path integer value. The arithmetic opcodes
// do not preserve this tag: their results are always Number.
func NewInt32(i int32) Value { return Value{kind: Int32, num: float64(i)} }

func NewBigInt(b *BigInt) Value { return Value{kind: BigIntKind, ref: b} }

func NewString(s Str) Value { return Value{kind: StringKind, ref: s} }

func NewStringGo(s string) Value { return Value{kind: StringKind, ref: NewFlatString(s)} }

func NewSymbolValue(s *Symbol) Value { return Value{kind: SymbolKind, ref: s} }

// NewObject wraps an arbitrary heap object reference (normally
// *object.Object) as a Value. Only package object is expected to call this.
func NewObject(ref any) Value { return Value{kind: ObjectKind, ref: ref} }

func (v Value) Kind() Kind       { return v.kind }
func (v Value) IsUndefined() bool { return v.kind == Undefined }
func (v Value) IsNull() bool      { return v.kind == Null }
func (v Value) IsNullish() bool   { return v.kind == Undefined || v.kind == Null }
func (v Value) IsBoolean() bool   { return v.kind == Boolean }
func (v Value) IsNumber() bool    { return v.kind == Number || v.kind == Int32 }
func (v Value) IsInt32() bool     { return v.kind == Int32 }
func (v Value) IsBigInt() bool    { return v.kind == BigIntKind }
func (v Value) IsString() bool    { return v.kind == StringKind }
func (v Value) IsSymbol() bool    { return v.kind == SymbolKind }
func (v Value) IsObject() bool    { return v.kind == ObjectKind }

func (v Value) Bool() bool {
	return v.b
}

func (v Value) Float64() float64 {
	return v.num
}

func (v Value) Int32() int32 {
	return int32(v.num)
}

func (v Value) BigInt() *BigInt {
	b, _ := v.ref.(*BigInt)
	return b
}

func (v Value) Str() Str {
	s, _ := v.ref.(Str)
	return s
}

func (v Value) Symbol() *Symbol {
	s, _ := v.ref.(*Symbol)
	return s
}

// ObjectRef returns the raw `any` stored for an ObjectKind Value; callers
// in package object unwrap it to their concrete pointer type.
func (v Value) ObjectRef() any {
	return v.ref
}

func (v Value) GoString() string {
	switch v.kind {
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Boolean:
		return fmt.Sprintf("%v", v.b)
	case Number, Int32:
		return fmt.Sprintf("%v", v.num)
	case BigIntKind:
		return v.BigInt().String() + "n"
	case StringKind:
		return v.Str().Go()
	case SymbolKind:
		return v.Symbol().String()
	case ObjectKind:
		return fmt.Sprintf("[object %T]", v.ref)
	default:
		return "<invalid value>"
	}
}

// PropertyKey is the comparable key type used by PropertyTable: either a
// Go string (a flattened String) or a *Symbol pointer, both of which are
// valid Go map keys carrying the right identity semantics (symbols compare
// by pointer, strings by content).
type PropertyKey struct {
	str string
	sym *Symbol
}

func StringKey(s string) PropertyKey { return PropertyKey{str: s} }

func ValueKey(v Value) PropertyKey {
	if v.IsSymbol() {
		return PropertyKey{sym: v.Symbol()}
	}
	return PropertyKey{str: ToPropertyKeyString(v)}
}

func SymbolKeyOf(s *Symbol) PropertyKey { return PropertyKey{sym: s} }

func (k PropertyKey) IsSymbol() bool  { return k.sym != nil }
func (k PropertyKey) String() string  { return k.str }
func (k PropertyKey) Symbol() *Symbol { return k.sym }

// ToPropertyKeyString renders a Value's ToString conversion for use as a
// PropertyKey; numbers format per ECMAScript's Number::toString and
// strings flatten to their Go representation.
func ToPropertyKeyString(v Value) string {
	switch v.Kind() {
	case StringKind:
		return v.Str().Go()
	case Number, Int32:
		return formatNumber(v.num)
	case Undefined:
		return "undefined"
	case Null:
		return "null"
	case Boolean:
		if v.b {
			return "true"
		}
		return "false"
	case SymbolKind:
		return v.Symbol().String()
	case BigIntKind:
		return v.BigInt().String()
	default:
		return ""
	}
}
