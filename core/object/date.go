package object

import (
	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// dateMethods is the Date exotic object: an ordinary property table plus
// one native float64 slot holding epoch milliseconds (ECMA-262's
// internal [[DateValue]]), NaN for an Invalid Date.
type dateMethods struct {
	ms float64
}

// NewDateObject allocates a Date instance set to msEpoch.
func NewDateObject(h *gc.Heap, s *shape.Shape, msEpoch float64) (*Object, error) {
	return NewWithMethods(h, s, &dateMethods{ms: msEpoch}, "Date")
}

// DateValue returns o's epoch-milliseconds slot if o was built by
// NewDateObject.
func DateValue(o *Object) (float64, bool) {
	m, ok := o.methods.(*dateMethods)
	if !ok {
		return 0, false
	}
	return m.ms, true
}

// SetDateValue overwrites o's epoch-milliseconds slot (setTime/setFullYear
// family of mutators).
func SetDateValue(o *Object, msEpoch float64) bool {
	m, ok := o.methods.(*dateMethods)
	if !ok {
		return false
	}
	m.ms = msEpoch
	return true
}

func (m *dateMethods) GetPrototypeOf(o *Object) (*Object, bool) { return ordinary.GetPrototypeOf(o) }
func (m *dateMethods) SetPrototypeOf(o *Object, proto *Object) error {
	return ordinary.SetPrototypeOf(o, proto)
}
func (m *dateMethods) IsExtensible(o *Object) bool       { return ordinary.IsExtensible(o) }
func (m *dateMethods) PreventExtensions(o *Object) error { return ordinary.PreventExtensions(o) }
func (m *dateMethods) GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool) {
	return ordinary.GetOwnProperty(o, key)
}
func (m *dateMethods) DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error {
	return ordinary.DefineOwnProperty(o, key, desc)
}
func (m *dateMethods) HasProperty(o *Object, key value.PropertyKey) bool {
	return ordinary.HasProperty(o, key)
}
func (m *dateMethods) Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	return ordinary.Get(o, key, receiver)
}
func (m *dateMethods) Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	return ordinary.Set(o, key, v, receiver)
}
func (m *dateMethods) Delete(o *Object, key value.PropertyKey) (bool, error) {
	return ordinary.Delete(o, key)
}
func (m *dateMethods) OwnPropertyKeys(o *Object) []value.PropertyKey {
	return ordinary.OwnPropertyKeys(o)
}
func (m *dateMethods) Callable() bool                            { return false }
func (m *dateMethods) Constructor() bool                         { return false }
func (m *dateMethods) TraceNative(*Object, func(gc.Cell))        {}
