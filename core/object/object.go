// Package object implements the heap Object: a shape pointer plus a
// storage vector, dense/sparse integer-keyed elements, and the internal-
// method capability set that each exotic variant overrides (spec.md §3,
// §9 "Polymorphism").
package object

import (
	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// Object is the concrete heap cell wrapped by value.Value's ObjectKind.
// It implements gc.Cell directly: the tracer never needs a separate
// adapter, since every field it owns is already expressed in terms of
// value.Value/Object references.
type Object struct {
	shape   *shape.Shape
	storage []value.Value // indexed by slot: shape.Lookup gives the slot index

	elements Elements // integer-keyed properties, dense or sparse

	methods InternalMethods // variant dispatch table; nil means ordinaryMethods

	extensible bool
	class      string // [[Class]]-ish debug tag: "Object", "Array", "Arguments", ...

	private map[value.PropertyKey]value.Value // private-name fields (#x)
}

// New allocates a plain ordinary object with the given shape (normally
// shape.NewRoot() or a shape already carrying the prototype) through h,
// registering it as a heap cell.
func New(h *gc.Heap, s *shape.Shape) (*Object, error) {
	o := &Object{shape: s, extensible: true, class: "Object"}
	if _, err := h.Allocate(o); err != nil {
		return nil, err
	}
	return o, nil
}

// NewWithMethods allocates an object using a non-ordinary internal-method
// table (array/string/arguments/typed-array/proxy/module-namespace/
// bound-function exotic variants).
func NewWithMethods(h *gc.Heap, s *shape.Shape, methods InternalMethods, class string) (*Object, error) {
	o := &Object{shape: s, extensible: true, class: class, methods: methods}
	if _, err := h.Allocate(o); err != nil {
		return nil, err
	}
	return o, nil
}

// Trace implements gc.Cell: visit every Value slot and element that may
// itself carry an object reference, plus the private-field table and any
// native state the exotic variant owns.
func (o *Object) Trace(visit func(gc.Cell)) {
	for _, v := range o.storage {
		traceValue(v, visit)
	}
	o.elements.Trace(visit)
	for _, v := range o.private {
		traceValue(v, visit)
	}
	if proto, ok := o.shape.Prototype().(gc.Cell); ok && proto != nil {
		visit(proto)
	}
	if o.methods != nil {
		o.methods.TraceNative(o, visit)
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

// Shape returns the object's current shape.
func (o *Object) Shape() *shape.Shape { return o.shape }

// Class returns the debug/exotic-variant tag ("Object", "Array", ...).
func (o *Object) Class() string { return o.class }

// Value wraps o as a value.Value.
func (o *Object) Value() value.Value { return value.NewObject(o) }

// FromValue unwraps a value.Value previously produced by o.Value(), or
// returns (nil, false) if v is not an ObjectKind Value backed by *Object.
func FromValue(v value.Value) (*Object, bool) {
	if !v.IsObject() {
		return nil, false
	}
	o, ok := v.ObjectRef().(*Object)
	return o, ok
}

// slotValue/setSlotValue give ordinary property storage its [[Get]]/
// [[Set]] data-property semantics; accessor slots are interpreted by the
// caller (core/vm's property-access opcodes), since invoking a getter
// requires running bytecode, which this package does not do.
func (o *Object) slotValue(i int) value.Value {
	if i < 0 || i >= len(o.storage) {
		return value.UndefinedValue
	}
	return o.storage[i]
}

func (o *Object) setSlotValue(i int, v value.Value) {
	for len(o.storage) <= i {
		o.storage = append(o.storage, value.UndefinedValue)
	}
	o.storage[i] = v
}
