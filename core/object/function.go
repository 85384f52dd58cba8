package object

import (
	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// NativeCall is a built-in function's body: ordinary Go code standing in
// for a compiled code block. core/builtins constructs these; core/vm's
// call opcode recognizes a *nativeFunctionMethods target and invokes
// Fn directly instead of pushing a bytecode frame.
type NativeCall func(this value.Value, args []value.Value) (value.Value, error)

// NativeConstruct is the [[Construct]] body for a native constructor
// (e.g. `Array`, `Map`, `Error`); nil means the function is not a
// constructor.
type NativeConstruct func(args []value.Value, newTarget *Object) (value.Value, error)

type nativeFunctionMethods struct {
	fn        NativeCall
	construct NativeConstruct
	name      string
}

// NewNativeFunction allocates a callable ordinary-ish object backed by
// Go code rather than a compiled code block.
func NewNativeFunction(h *gc.Heap, s *shape.Shape, name string, fn NativeCall, construct NativeConstruct) (*Object, error) {
	return NewWithMethods(h, s, &nativeFunctionMethods{fn: fn, construct: construct, name: name}, "Function")
}

// Call invokes the native body directly (no bytecode frame involved).
func (m *nativeFunctionMethods) Call(this value.Value, args []value.Value) (value.Value, error) {
	return m.fn(this, args)
}

// Construct invokes the native constructor body, or fails with
// ErrNotConstructor if this function has none.
func (m *nativeFunctionMethods) Construct(args []value.Value, newTarget *Object) (value.Value, error) {
	if m.construct == nil {
		return value.UndefinedValue, ErrNotConstructor
	}
	return m.construct(args, newTarget)
}

func (m *nativeFunctionMethods) Name() string { return m.name }

func (m *nativeFunctionMethods) GetPrototypeOf(o *Object) (*Object, bool) { return ordinary.GetPrototypeOf(o) }
func (m *nativeFunctionMethods) SetPrototypeOf(o *Object, proto *Object) error {
	return ordinary.SetPrototypeOf(o, proto)
}
func (m *nativeFunctionMethods) IsExtensible(o *Object) bool       { return ordinary.IsExtensible(o) }
func (m *nativeFunctionMethods) PreventExtensions(o *Object) error { return ordinary.PreventExtensions(o) }
func (m *nativeFunctionMethods) GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool) {
	return ordinary.GetOwnProperty(o, key)
}
func (m *nativeFunctionMethods) DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error {
	return ordinary.DefineOwnProperty(o, key, desc)
}
func (m *nativeFunctionMethods) HasProperty(o *Object, key value.PropertyKey) bool {
	return ordinary.HasProperty(o, key)
}
func (m *nativeFunctionMethods) Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	return ordinary.Get(o, key, receiver)
}
func (m *nativeFunctionMethods) Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	return ordinary.Set(o, key, v, receiver)
}
func (m *nativeFunctionMethods) Delete(o *Object, key value.PropertyKey) (bool, error) {
	return ordinary.Delete(o, key)
}
func (m *nativeFunctionMethods) OwnPropertyKeys(o *Object) []value.PropertyKey {
	return ordinary.OwnPropertyKeys(o)
}
func (m *nativeFunctionMethods) Callable() bool    { return true }
func (m *nativeFunctionMethods) Constructor() bool { return m.construct != nil }
func (m *nativeFunctionMethods) TraceNative(*Object, func(gc.Cell)) {}

// NativeFunction is the ergonomic view core/vm's call opcode uses once
// it has recognized a native-backed callable.
type NativeFunction interface {
	Call(this value.Value, args []value.Value) (value.Value, error)
	Construct(args []value.Value, newTarget *Object) (value.Value, error)
	Name() string
}

// AsNativeFunction returns o's native-call table if o was built by
// NewNativeFunction.
func AsNativeFunction(o *Object) (NativeFunction, bool) {
	m, ok := o.methods.(*nativeFunctionMethods)
	return m, ok
}
