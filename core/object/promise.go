package object

import (
	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

type PromiseState int

const (
	PromisePending PromiseState = iota
	PromiseFulfilled
	PromiseRejected
)

// PromiseReaction is one .then registration awaiting settlement. Result
// is the Promise object .then derived (nil for a bare reaction with no
// derived promise); it is traced alongside the rest of PromiseData so a
// pending derived promise stays reachable purely through its parent's
// reaction list, matching how a script never holding the derived promise
// in a variable still observes it settle.
type PromiseReaction struct {
	OnFulfilled value.Value
	OnRejected  value.Value
	Result      *Object
}

// PromiseData is the Promise exotic backing: state, settled value, and
// the reaction list awaiting settlement (spec.md §3's "Promise jobs
// enqueue onto the job queue rather than running inline").
type PromiseData struct {
	State     PromiseState
	Result    value.Value
	Reactions []PromiseReaction
}

type promiseMethods struct {
	data *PromiseData
}

// NewPromiseObject allocates a pending Promise instance.
func NewPromiseObject(h *gc.Heap, s *shape.Shape) (*Object, error) {
	return NewWithMethods(h, s, &promiseMethods{data: &PromiseData{State: PromisePending}}, "Promise")
}

// AsPromise returns o's native settlement state if o was built by
// NewPromiseObject.
func AsPromise(o *Object) (*PromiseData, bool) {
	m, ok := o.methods.(*promiseMethods)
	if !ok {
		return nil, false
	}
	return m.data, true
}

func (m *promiseMethods) GetPrototypeOf(o *Object) (*Object, bool) { return ordinary.GetPrototypeOf(o) }
func (m *promiseMethods) SetPrototypeOf(o *Object, proto *Object) error {
	return ordinary.SetPrototypeOf(o, proto)
}
func (m *promiseMethods) IsExtensible(o *Object) bool       { return ordinary.IsExtensible(o) }
func (m *promiseMethods) PreventExtensions(o *Object) error { return ordinary.PreventExtensions(o) }
func (m *promiseMethods) GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool) {
	return ordinary.GetOwnProperty(o, key)
}
func (m *promiseMethods) DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error {
	return ordinary.DefineOwnProperty(o, key, desc)
}
func (m *promiseMethods) HasProperty(o *Object, key value.PropertyKey) bool {
	return ordinary.HasProperty(o, key)
}
func (m *promiseMethods) Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	return ordinary.Get(o, key, receiver)
}
func (m *promiseMethods) Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	return ordinary.Set(o, key, v, receiver)
}
func (m *promiseMethods) Delete(o *Object, key value.PropertyKey) (bool, error) {
	return ordinary.Delete(o, key)
}
func (m *promiseMethods) OwnPropertyKeys(o *Object) []value.PropertyKey {
	return ordinary.OwnPropertyKeys(o)
}
func (m *promiseMethods) Callable() bool    { return false }
func (m *promiseMethods) Constructor() bool { return false }
func (m *promiseMethods) TraceNative(o *Object, visit func(gc.Cell)) {
	traceValue(m.data.Result, visit)
	for _, r := range m.data.Reactions {
		traceValue(r.OnFulfilled, visit)
		traceValue(r.OnRejected, visit)
		if r.Result != nil {
			visit(r.Result)
		}
	}
}
