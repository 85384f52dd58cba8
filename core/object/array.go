package object

import (
	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

var lengthKey = value.StringKey("length")

// arrayMethods is the Array exotic object (spec.md §9): array-index
// writes beyond the current length extend it, and length is always a
// non-configurable data property coercing its writes per the
// array-length-update algorithm.
type arrayMethods struct{}

// NewArray allocates an Array exotic object with the given initial
// length and prototype already installed on s.
func NewArray(h *gc.Heap, s *shape.Shape, length uint32) (*Object, error) {
	o, err := NewWithMethods(h, s, arrayMethods{}, "Array")
	if err != nil {
		return nil, err
	}
	slotIdx := o.shape.PropertyCount()
	o.shape = o.shape.Insert(lengthKey, shape.Writable)
	o.setSlotValue(slotIdx, value.NewNumber(float64(length)))
	return o, nil
}

func (arrayMethods) length(o *Object) uint32 {
	slot, ok := o.shape.Lookup(lengthKey)
	if !ok {
		return 0
	}
	v := o.slotValue(slot.Index)
	if v.IsNumber() {
		return uint32(v.Float64())
	}
	return 0
}

func (m arrayMethods) setLength(o *Object, n uint32) {
	slot, ok := o.shape.Lookup(lengthKey)
	if !ok {
		return
	}
	o.setSlotValue(slot.Index, value.NewNumber(float64(n)))
}

func (arrayMethods) GetPrototypeOf(o *Object) (*Object, bool) { return ordinary.GetPrototypeOf(o) }
func (arrayMethods) SetPrototypeOf(o *Object, proto *Object) error {
	return ordinary.SetPrototypeOf(o, proto)
}
func (arrayMethods) IsExtensible(o *Object) bool        { return ordinary.IsExtensible(o) }
func (arrayMethods) PreventExtensions(o *Object) error  { return ordinary.PreventExtensions(o) }
func (arrayMethods) GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool) {
	return ordinary.GetOwnProperty(o, key)
}

func (m arrayMethods) DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error {
	if key == lengthKey {
		if !desc.HasValue {
			return ordinary.DefineOwnProperty(o, key, desc)
		}
		n := uint32(desc.Value.Float64())
		if float64(n) != desc.Value.Float64() {
			return ErrInvalidArrayLength
		}
		old := m.length(o)
		if n < old {
			// Truncate: drop every element index >= n.
			for i := old; i > n; i-- {
				o.elements.Delete(i - 1)
			}
		}
		m.setLength(o, n)
		return nil
	}
	if idx, ok := elementIndex(key); ok {
		if err := ordinary.DefineOwnProperty(o, key, desc); err != nil {
			return err
		}
		if idx >= m.length(o) {
			m.setLength(o, idx+1)
		}
		return nil
	}
	return ordinary.DefineOwnProperty(o, key, desc)
}

func (m arrayMethods) HasProperty(o *Object, key value.PropertyKey) bool {
	return ordinary.HasProperty(o, key)
}
func (m arrayMethods) Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	return ordinary.Get(o, key, receiver)
}
func (m arrayMethods) Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	if idx, ok := elementIndex(key); ok {
		if err := ordinary.Set(o, key, v, receiver); err != nil {
			return err
		}
		if idx >= m.length(o) {
			m.setLength(o, idx+1)
		}
		return nil
	}
	return ordinary.Set(o, key, v, receiver)
}
func (m arrayMethods) Delete(o *Object, key value.PropertyKey) (bool, error) {
	return ordinary.Delete(o, key)
}
func (arrayMethods) OwnPropertyKeys(o *Object) []value.PropertyKey {
	return ordinary.OwnPropertyKeys(o)
}
func (arrayMethods) Callable() bool    { return false }
func (arrayMethods) Constructor() bool { return false }
func (arrayMethods) TraceNative(*Object, func(gc.Cell)) {}
