package object

import (
	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// argumentsMethods is the (unmapped) Arguments exotic object: an ordinary
// own-property set plus a Symbol.iterator and "length"/"callee", laid
// down as ordinary data properties at construction by core/vm — this
// variant only exists to tag the class name distinctly, since this
// engine does not implement the legacy sloppy-mode mapped-arguments
// index/variable aliasing (a non-goal carried over from the distilled
// spec, which never mentions it).
type argumentsMethods struct{}

// NewArguments allocates an Arguments exotic object whose indexed
// properties are ordinary own data properties (unmapped semantics).
func NewArguments(h *gc.Heap, s *shape.Shape) (*Object, error) {
	return NewWithMethods(h, s, argumentsMethods{}, "Arguments")
}

func (argumentsMethods) GetPrototypeOf(o *Object) (*Object, bool) { return ordinary.GetPrototypeOf(o) }
func (argumentsMethods) SetPrototypeOf(o *Object, proto *Object) error {
	return ordinary.SetPrototypeOf(o, proto)
}
func (argumentsMethods) IsExtensible(o *Object) bool       { return ordinary.IsExtensible(o) }
func (argumentsMethods) PreventExtensions(o *Object) error { return ordinary.PreventExtensions(o) }
func (argumentsMethods) GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool) {
	return ordinary.GetOwnProperty(o, key)
}
func (argumentsMethods) DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error {
	return ordinary.DefineOwnProperty(o, key, desc)
}
func (argumentsMethods) HasProperty(o *Object, key value.PropertyKey) bool {
	return ordinary.HasProperty(o, key)
}
func (argumentsMethods) Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	return ordinary.Get(o, key, receiver)
}
func (argumentsMethods) Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	return ordinary.Set(o, key, v, receiver)
}
func (argumentsMethods) Delete(o *Object, key value.PropertyKey) (bool, error) {
	return ordinary.Delete(o, key)
}
func (argumentsMethods) OwnPropertyKeys(o *Object) []value.PropertyKey {
	return ordinary.OwnPropertyKeys(o)
}
func (argumentsMethods) Callable() bool    { return false }
func (argumentsMethods) Constructor() bool { return false }
func (argumentsMethods) TraceNative(*Object, func(gc.Cell)) {}
