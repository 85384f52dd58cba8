package object

import (
	"errors"

	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// ErrNotCallable/ErrNotConstructor back the TypeError the VM throws when
// Call/Construct is invoked on an object whose variant does not support
// it (spec.md §9 "call (if callable), construct (if constructor)").
var (
	ErrNotCallable   = errors.New("object: not callable")
	ErrNotConstructor = errors.New("object: not a constructor")
)

// PropertyDescriptor mirrors the ECMAScript property descriptor record
// used by defineOwnProperty: a data or accessor value plus attrs.
type PropertyDescriptor struct {
	Value        value.Value // data property value; ignored when Attrs has an accessor
	Getter       value.Value // a callable Object wrapped as a Value, or undefined
	Setter       value.Value
	Attrs        shape.Attrs
	HasValue     bool
	HasAttrs     bool
}

// InternalMethods is the capability set spec.md §9 names: every exotic
// variant implements the subset it overrides and calls straight through
// to the shared ordinary method table for the rest.
type InternalMethods interface {
	GetPrototypeOf(o *Object) (*Object, bool)
	SetPrototypeOf(o *Object, proto *Object) error
	IsExtensible(o *Object) bool
	PreventExtensions(o *Object) error
	GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool)
	DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error
	HasProperty(o *Object, key value.PropertyKey) bool
	Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error)
	Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error
	Delete(o *Object, key value.PropertyKey) (bool, error)
	OwnPropertyKeys(o *Object) []value.PropertyKey

	Callable() bool
	Constructor() bool

	// TraceNative lets a variant holding GC references outside storage/
	// elements (a proxy's target+handler, a bound-function's bound
	// receiver+args, a module namespace's binding map) mark them.
	TraceNative(o *Object, visit func(gc.Cell))
}
