package object

import (
	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// boundFunctionMethods is the bound-function exotic object (spec.md §9):
// wraps a target callable with a fixed `this` and a prefix of bound
// arguments. Invoking it is core/vm's job (it owns Call/Construct
// dispatch); this package exposes BoundTarget/BoundThis/BoundArgs so the
// VM can splice them in ahead of the caller-supplied arguments.
type boundFunctionMethods struct {
	target    *Object
	boundThis value.Value
	boundArgs []value.Value
}

// NewBoundFunction allocates a bound-function exotic object.
func NewBoundFunction(h *gc.Heap, s *shape.Shape, target *Object, boundThis value.Value, boundArgs []value.Value) (*Object, error) {
	return NewWithMethods(h, s, &boundFunctionMethods{target: target, boundThis: boundThis, boundArgs: boundArgs}, "Function")
}

func (m *boundFunctionMethods) BoundTarget() *Object        { return m.target }
func (m *boundFunctionMethods) BoundThis() value.Value      { return m.boundThis }
func (m *boundFunctionMethods) BoundArgs() []value.Value    { return m.boundArgs }

func (m *boundFunctionMethods) GetPrototypeOf(o *Object) (*Object, bool) { return ordinary.GetPrototypeOf(o) }
func (m *boundFunctionMethods) SetPrototypeOf(o *Object, proto *Object) error {
	return ordinary.SetPrototypeOf(o, proto)
}
func (m *boundFunctionMethods) IsExtensible(o *Object) bool       { return ordinary.IsExtensible(o) }
func (m *boundFunctionMethods) PreventExtensions(o *Object) error { return ordinary.PreventExtensions(o) }
func (m *boundFunctionMethods) GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool) {
	return ordinary.GetOwnProperty(o, key)
}
func (m *boundFunctionMethods) DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error {
	return ordinary.DefineOwnProperty(o, key, desc)
}
func (m *boundFunctionMethods) HasProperty(o *Object, key value.PropertyKey) bool {
	return ordinary.HasProperty(o, key)
}
func (m *boundFunctionMethods) Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	return ordinary.Get(o, key, receiver)
}
func (m *boundFunctionMethods) Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	return ordinary.Set(o, key, v, receiver)
}
func (m *boundFunctionMethods) Delete(o *Object, key value.PropertyKey) (bool, error) {
	return ordinary.Delete(o, key)
}
func (m *boundFunctionMethods) OwnPropertyKeys(o *Object) []value.PropertyKey {
	return ordinary.OwnPropertyKeys(o)
}
func (m *boundFunctionMethods) Callable() bool { return m.target != nil && m.target.Callable() }
func (m *boundFunctionMethods) Constructor() bool {
	return m.target != nil && m.target.Constructor()
}
func (m *boundFunctionMethods) TraceNative(o *Object, visit func(gc.Cell)) {
	if m.target != nil {
		visit(m.target)
	}
	traceValue(m.boundThis, visit)
	for _, a := range m.boundArgs {
		traceValue(a, visit)
	}
}

// BoundFunction is the ergonomic view core/vm's call opcode uses once it
// has recognized a bound-function target, so it can splice BoundArgs
// ahead of the caller-supplied arguments and call through to BoundTarget.
type BoundFunction interface {
	BoundTarget() *Object
	BoundThis() value.Value
	BoundArgs() []value.Value
}

// AsBoundFunction returns o's bound-function view if o was built by
// NewBoundFunction.
func AsBoundFunction(o *Object) (BoundFunction, bool) {
	m, ok := o.methods.(*boundFunctionMethods)
	return m, ok
}
