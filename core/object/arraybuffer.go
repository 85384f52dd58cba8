package object

import (
	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

var byteLengthKey = value.StringKey("byteLength")

// arrayBufferMethods is the ArrayBuffer exotic object (spec.md §4.3): a
// thin script-visible wrapper over the raw *ArrayBuffer byte region, with
// a computed "byteLength" that always reflects Detach having run, per
// spec.md's transferable semantics.
type arrayBufferMethods struct {
	buf *ArrayBuffer
}

// NewArrayBufferObject allocates the script-visible ArrayBuffer object
// wrapping buf.
func NewArrayBufferObject(h *gc.Heap, s *shape.Shape, buf *ArrayBuffer) (*Object, error) {
	return NewWithMethods(h, s, &arrayBufferMethods{buf: buf}, "ArrayBuffer")
}

// AsArrayBuffer returns o's backing *ArrayBuffer if o was built by
// NewArrayBufferObject, for core/builtins' typed-array constructors and
// core/clone's transfer handling.
func AsArrayBuffer(o *Object) (*ArrayBuffer, bool) {
	m, ok := o.methods.(*arrayBufferMethods)
	if !ok {
		return nil, false
	}
	return m.buf, true
}

func (m *arrayBufferMethods) GetPrototypeOf(o *Object) (*Object, bool) { return ordinary.GetPrototypeOf(o) }
func (m *arrayBufferMethods) SetPrototypeOf(o *Object, proto *Object) error {
	return ordinary.SetPrototypeOf(o, proto)
}
func (m *arrayBufferMethods) IsExtensible(o *Object) bool       { return ordinary.IsExtensible(o) }
func (m *arrayBufferMethods) PreventExtensions(o *Object) error { return ordinary.PreventExtensions(o) }

func (m *arrayBufferMethods) GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool) {
	if key == byteLengthKey {
		return PropertyDescriptor{Value: value.NewNumber(float64(m.buf.ByteLength())), Attrs: shape.Enumerable, HasValue: true, HasAttrs: true}, true
	}
	return ordinary.GetOwnProperty(o, key)
}

func (m *arrayBufferMethods) DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error {
	if key == byteLengthKey {
		return ErrNotWritable
	}
	return ordinary.DefineOwnProperty(o, key, desc)
}

func (m *arrayBufferMethods) HasProperty(o *Object, key value.PropertyKey) bool {
	if key == byteLengthKey {
		return true
	}
	return ordinary.HasProperty(o, key)
}

func (m *arrayBufferMethods) Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	if key == byteLengthKey {
		return value.NewNumber(float64(m.buf.ByteLength())), nil
	}
	return ordinary.Get(o, key, receiver)
}

func (m *arrayBufferMethods) Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	if key == byteLengthKey {
		return ErrNotWritable
	}
	return ordinary.Set(o, key, v, receiver)
}

func (m *arrayBufferMethods) Delete(o *Object, key value.PropertyKey) (bool, error) {
	if key == byteLengthKey {
		return false, ErrNotConfigurable
	}
	return ordinary.Delete(o, key)
}

func (m *arrayBufferMethods) OwnPropertyKeys(o *Object) []value.PropertyKey {
	return append([]value.PropertyKey{byteLengthKey}, ordinary.OwnPropertyKeys(o)...)
}

func (m *arrayBufferMethods) Callable() bool    { return false }
func (m *arrayBufferMethods) Constructor() bool { return false }
func (m *arrayBufferMethods) TraceNative(*Object, func(gc.Cell)) {}
