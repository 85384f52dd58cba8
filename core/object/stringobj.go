package object

import (
	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// stringMethods is the String exotic object (spec.md §9): indices
// 0..length-1 are non-configurable, non-writable, enumerable own data
// properties reflecting the wrapped primitive's code units; a "length"
// own property reports the code-unit count.
type stringMethods struct {
	wrapped value.Str
}

// NewStringObject wraps s as a String exotic object.
func NewStringObject(h *gc.Heap, sh *shape.Shape, s value.Str) (*Object, error) {
	return NewWithMethods(h, sh, &stringMethods{wrapped: s}, "String")
}

func (m *stringMethods) index(key value.PropertyKey) (int, bool) {
	idx, ok := elementIndex(key)
	if !ok || int64(idx) >= int64(m.wrapped.Length()) {
		return 0, false
	}
	return int(idx), true
}

func (m *stringMethods) GetPrototypeOf(o *Object) (*Object, bool) { return ordinary.GetPrototypeOf(o) }
func (m *stringMethods) SetPrototypeOf(o *Object, proto *Object) error {
	return ordinary.SetPrototypeOf(o, proto)
}
func (m *stringMethods) IsExtensible(o *Object) bool       { return ordinary.IsExtensible(o) }
func (m *stringMethods) PreventExtensions(o *Object) error { return ordinary.PreventExtensions(o) }

func (m *stringMethods) GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool) {
	if key == lengthKey {
		return PropertyDescriptor{Value: value.NewNumber(float64(m.wrapped.Length())), Attrs: 0, HasValue: true, HasAttrs: true}, true
	}
	if i, ok := m.index(key); ok {
		unit := m.wrapped.CodeUnitAt(i)
		return PropertyDescriptor{
			Value:    value.NewString(value.NewFlatStringUnits([]uint16{unit})),
			Attrs:    shape.Enumerable,
			HasValue: true, HasAttrs: true,
		}, true
	}
	return ordinary.GetOwnProperty(o, key)
}

func (m *stringMethods) DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error {
	if key == lengthKey {
		return ErrNotConfigurable
	}
	if _, ok := m.index(key); ok {
		return ErrNotWritable
	}
	return ordinary.DefineOwnProperty(o, key, desc)
}

func (m *stringMethods) HasProperty(o *Object, key value.PropertyKey) bool {
	if key == lengthKey {
		return true
	}
	if _, ok := m.index(key); ok {
		return true
	}
	return ordinary.HasProperty(o, key)
}

func (m *stringMethods) Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	if desc, ok := m.GetOwnProperty(o, key); ok {
		return desc.Value, nil
	}
	return ordinary.Get(o, key, receiver)
}

func (m *stringMethods) Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	if key == lengthKey {
		return ErrNotWritable
	}
	if _, ok := m.index(key); ok {
		return ErrNotWritable
	}
	return ordinary.Set(o, key, v, receiver)
}

func (m *stringMethods) Delete(o *Object, key value.PropertyKey) (bool, error) {
	if key == lengthKey {
		return false, ErrNotConfigurable
	}
	if _, ok := m.index(key); ok {
		return false, ErrNotConfigurable
	}
	return ordinary.Delete(o, key)
}

func (m *stringMethods) OwnPropertyKeys(o *Object) []value.PropertyKey {
	keys := make([]value.PropertyKey, 0, m.wrapped.Length()+1)
	for i := 0; i < m.wrapped.Length(); i++ {
		keys = append(keys, value.StringKey(formatIndex(uint32(i))))
	}
	keys = append(keys, lengthKey)
	return append(keys, ordinary.OwnPropertyKeys(o)...)
}

func (m *stringMethods) Callable() bool    { return false }
func (m *stringMethods) Constructor() bool { return false }
func (m *stringMethods) TraceNative(*Object, func(gc.Cell)) {}
