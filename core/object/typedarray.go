package object

import (
	"encoding/binary"
	"math"

	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
	"github.com/coreform/jsvm/internal/numeric"
)

// ElementKind identifies a typed array view's element type (spec.md
// §4.3 "typed arrays and array buffers").
type ElementKind uint8

const (
	Int8Array ElementKind = iota
	Uint8Array
	Uint8ClampedArray
	Int16Array
	Uint16Array
	Int32Array
	Uint32Array
	Float32Array
	Float64Array
	BigInt64Array
	BigUint64Array
)

func (k ElementKind) byteSize() int {
	switch k {
	case Int8Array, Uint8Array, Uint8ClampedArray:
		return 1
	case Int16Array, Uint16Array:
		return 2
	case Int32Array, Uint32Array, Float32Array:
		return 4
	default:
		return 8
	}
}

// typedArrayMethods is the TypedArray exotic object (spec.md §9):
// integer-indexed properties forward to the backing ArrayBuffer through
// an endian-aware element codec. On a detached buffer or past the length,
// reads yield undefined and writes fail with ErrTypedArrayOutOfBounds.
type typedArrayMethods struct {
	buf         *ArrayBuffer
	byteOffset  int
	length      int // element count
	kind        ElementKind
	littleEndian bool // per-view endianness, spec.md §4.3
	order       binary.ByteOrder
}

// NewTypedArray allocates a TypedArray view over buf.
func NewTypedArray(h *gc.Heap, s *shape.Shape, buf *ArrayBuffer, byteOffset, length int, kind ElementKind, littleEndian bool) (*Object, error) {
	order := binary.ByteOrder(binary.BigEndian)
	if littleEndian {
		order = binary.LittleEndian
	}
	m := &typedArrayMethods{buf: buf, byteOffset: byteOffset, length: length, kind: kind, littleEndian: littleEndian, order: order}
	return NewWithMethods(h, s, m, "TypedArray")
}

func (m *typedArrayMethods) inBounds(idx uint32) bool {
	return !m.buf.IsDetached() && int(idx) < m.length
}

func (m *typedArrayMethods) byteOf(idx uint32) int { return m.byteOffset + int(idx)*m.kind.byteSize() }

func (m *typedArrayMethods) read(idx uint32) value.Value {
	b := m.buf.Bytes()
	off := m.byteOf(idx)
	switch m.kind {
	case Int8Array:
		return value.NewInt32(int32(int8(b[off])))
	case Uint8Array, Uint8ClampedArray:
		return value.NewInt32(int32(b[off]))
	case Int16Array:
		return value.NewInt32(int32(int16(m.order.Uint16(b[off:]))))
	case Uint16Array:
		return value.NewInt32(int32(m.order.Uint16(b[off:])))
	case Int32Array:
		return value.NewNumber(float64(int32(m.order.Uint32(b[off:]))))
	case Uint32Array:
		return value.NewNumber(float64(m.order.Uint32(b[off:])))
	case Float32Array:
		return value.NewNumber(float64(math.Float32frombits(m.order.Uint32(b[off:]))))
	case Float64Array:
		return value.NewNumber(math.Float64frombits(m.order.Uint64(b[off:])))
	case BigInt64Array:
		return value.NewBigInt(value.NewBigIntFromInt64(int64(m.order.Uint64(b[off:]))))
	case BigUint64Array:
		return value.NewBigInt(value.NewBigIntFromUint64(m.order.Uint64(b[off:])))
	default:
		return value.UndefinedValue
	}
}

func (m *typedArrayMethods) write(idx uint32, v value.Value) {
	b := m.buf.Bytes()
	off := m.byteOf(idx)
	switch m.kind {
	case Int8Array, Uint8Array:
		b[off] = byte(numeric.ToInt32(v.Float64()))
	case Uint8ClampedArray:
		b[off] = numeric.ToUint8Clamp(v.Float64())
	case Int16Array, Uint16Array:
		m.order.PutUint16(b[off:], uint16(numeric.ToInt32(v.Float64())))
	case Int32Array, Uint32Array:
		m.order.PutUint32(b[off:], uint32(numeric.ToInt32(v.Float64())))
	case Float32Array:
		m.order.PutUint32(b[off:], math.Float32bits(float32(v.Float64())))
	case Float64Array:
		m.order.PutUint64(b[off:], math.Float64bits(v.Float64()))
	case BigInt64Array, BigUint64Array:
		if bi := v.BigInt(); bi != nil {
			u, _ := bi.Uint64()
			m.order.PutUint64(b[off:], u)
		}
	}
}

func (m *typedArrayMethods) GetPrototypeOf(o *Object) (*Object, bool) { return ordinary.GetPrototypeOf(o) }
func (m *typedArrayMethods) SetPrototypeOf(o *Object, proto *Object) error {
	return ordinary.SetPrototypeOf(o, proto)
}
func (m *typedArrayMethods) IsExtensible(o *Object) bool       { return ordinary.IsExtensible(o) }
func (m *typedArrayMethods) PreventExtensions(o *Object) error { return ordinary.PreventExtensions(o) }

func (m *typedArrayMethods) GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool) {
	if idx, ok := elementIndex(key); ok {
		if !m.inBounds(idx) {
			return PropertyDescriptor{}, false
		}
		return PropertyDescriptor{Value: m.read(idx), Attrs: shape.Writable | shape.Enumerable, HasValue: true, HasAttrs: true}, true
	}
	return ordinary.GetOwnProperty(o, key)
}

func (m *typedArrayMethods) DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error {
	if idx, ok := elementIndex(key); ok {
		if !m.inBounds(idx) {
			return ErrTypedArrayOutOfBounds
		}
		if desc.HasValue {
			m.write(idx, desc.Value)
		}
		return nil
	}
	return ordinary.DefineOwnProperty(o, key, desc)
}

func (m *typedArrayMethods) HasProperty(o *Object, key value.PropertyKey) bool {
	if idx, ok := elementIndex(key); ok {
		return m.inBounds(idx)
	}
	return ordinary.HasProperty(o, key)
}

func (m *typedArrayMethods) Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	if idx, ok := elementIndex(key); ok {
		if !m.inBounds(idx) {
			return value.UndefinedValue, nil
		}
		return m.read(idx), nil
	}
	return ordinary.Get(o, key, receiver)
}

func (m *typedArrayMethods) Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	if idx, ok := elementIndex(key); ok {
		if !m.inBounds(idx) {
			return ErrTypedArrayOutOfBounds
		}
		m.write(idx, v)
		return nil
	}
	return ordinary.Set(o, key, v, receiver)
}

func (m *typedArrayMethods) Delete(o *Object, key value.PropertyKey) (bool, error) {
	if _, ok := elementIndex(key); ok {
		return false, nil // integer-indexed exotic: delete never succeeds, never throws
	}
	return ordinary.Delete(o, key)
}

func (m *typedArrayMethods) OwnPropertyKeys(o *Object) []value.PropertyKey {
	keys := make([]value.PropertyKey, 0, m.length)
	if !m.buf.IsDetached() {
		for i := 0; i < m.length; i++ {
			keys = append(keys, value.StringKey(formatIndex(uint32(i))))
		}
	}
	return append(keys, ordinary.OwnPropertyKeys(o)...)
}

func (m *typedArrayMethods) Callable() bool    { return false }
func (m *typedArrayMethods) Constructor() bool { return false }
func (m *typedArrayMethods) TraceNative(*Object, func(gc.Cell)) {}

// ErrTypedArrayOutOfBounds is thrown (as a RangeError by core/vm) when an
// integer-indexed write or define on a typed array misses its backing
// length, or the view's buffer has been detached. Reads return undefined.
var ErrTypedArrayOutOfBounds = errTypedArrayOOB("object: typed array index out of bounds")

type errTypedArrayOOB string

func (e errTypedArrayOOB) Error() string { return string(e) }
