package vm

import (
	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// closureMethods is the exotic object backing a compiled function: a
// CodeBlock plus its captured upvalues. It lives in core/vm rather than
// core/object because CodeBlock is a vm concept and core/object must not
// import core/vm; it composes object.Ordinary() for every operation it
// does not override, the same pattern object's own exotic variants use.
type closureMethods struct {
	code     *CodeBlock
	upvalues []*upvalueCell
	homeObj  value.Value // [[HomeObject]] for super lookups; undefined unless a method
}

// NewClosure allocates a callable object wrapping code, capturing
// upvalues from the defining frame.
func NewClosure(h *gc.Heap, s *shape.Shape, code *CodeBlock, upvalues []*upvalueCell) (*object.Object, error) {
	return object.NewWithMethods(h, s, &closureMethods{code: code, upvalues: upvalues}, "Function")
}

// asClosure recovers the closureMethods table NewClosure installed, or
// (nil, false) for any object that isn't a compiled-function closure.
func asClosure(o *object.Object) (*closureMethods, bool) {
	cm, ok := object.Methods(o).(*closureMethods)
	return cm, ok
}

func (m *closureMethods) GetPrototypeOf(o *object.Object) (*object.Object, bool) {
	return object.Ordinary().GetPrototypeOf(o)
}
func (m *closureMethods) SetPrototypeOf(o *object.Object, proto *object.Object) error {
	return object.Ordinary().SetPrototypeOf(o, proto)
}
func (m *closureMethods) IsExtensible(o *object.Object) bool { return object.Ordinary().IsExtensible(o) }
func (m *closureMethods) PreventExtensions(o *object.Object) error {
	return object.Ordinary().PreventExtensions(o)
}
func (m *closureMethods) GetOwnProperty(o *object.Object, key value.PropertyKey) (object.PropertyDescriptor, bool) {
	return object.Ordinary().GetOwnProperty(o, key)
}
func (m *closureMethods) DefineOwnProperty(o *object.Object, key value.PropertyKey, desc object.PropertyDescriptor) error {
	return object.Ordinary().DefineOwnProperty(o, key, desc)
}
func (m *closureMethods) HasProperty(o *object.Object, key value.PropertyKey) bool {
	return object.Ordinary().HasProperty(o, key)
}
func (m *closureMethods) Get(o *object.Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	return object.Ordinary().Get(o, key, receiver)
}
func (m *closureMethods) Set(o *object.Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	return object.Ordinary().Set(o, key, v, receiver)
}
func (m *closureMethods) Delete(o *object.Object, key value.PropertyKey) (bool, error) {
	return object.Ordinary().Delete(o, key)
}
func (m *closureMethods) OwnPropertyKeys(o *object.Object) []value.PropertyKey {
	return object.Ordinary().OwnPropertyKeys(o)
}
func (m *closureMethods) Callable() bool { return true }
func (m *closureMethods) Constructor() bool {
	return !m.code.Flags.Arrow() && !m.code.Flags.Generator() && !m.code.Flags.Async()
}
func (m *closureMethods) TraceNative(o *object.Object, visit func(gc.Cell)) {
	for _, uv := range m.upvalues {
		traceValue(uv.value, visit)
	}
}

func traceValue(v value.Value, visit func(gc.Cell)) {
	if !v.IsObject() {
		return
	}
	if c, ok := v.ObjectRef().(gc.Cell); ok {
		visit(c)
	}
}
