package object

import (
	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// Trap is a handler function slot: invoking a trap requires the VM's
// call machinery, so this package never calls one directly. core/vm looks
// a trap up through TrapHandler and calls it itself.
type Trap int

const (
	TrapGetPrototypeOf Trap = iota
	TrapSetPrototypeOf
	TrapIsExtensible
	TrapPreventExtensions
	TrapGetOwnPropertyDescriptor
	TrapDefineProperty
	TrapHas
	TrapGet
	TrapSet
	TrapDeleteProperty
	TrapOwnKeys
	TrapApply
	TrapConstruct
)

// TrapRequest describes one trap invocation (handler[trapName](...Args)).
// proxyMethods never returns it: its methods forward to the target, and
// core/vm finds and calls traps through TrapHandler.
type TrapRequest struct {
	Trap    Trap
	Target  *Object
	Handler *Object
	Args    []value.Value
}

func (r *TrapRequest) Error() string { return "object: proxy trap must be invoked by the VM" }

// proxyMethods is the Proxy exotic object (spec.md §4.2/§9): every
// internal method is overridden. A nil Handler means the proxy has been
// revoked (spec.md's revocable proxy), and every trap fails with
// ErrProxyRevoked.
type proxyMethods struct {
	target  *Object
	handler *Object
}

// NewProxy allocates a Proxy exotic object over target+handler.
func NewProxy(h *gc.Heap, s *shape.Shape, target, handler *Object) (*Object, error) {
	return NewWithMethods(h, s, &proxyMethods{target: target, handler: handler}, "Proxy")
}

// Revoke implements the revocable-proxy's `revoke()` function: once
// called, every trap on this proxy must fail instead of forwarding.
func (m *proxyMethods) Revoke() { m.handler = nil; m.target = nil }

// TrapHandler returns the handler's trap function for name, or
// (undefined, false) if the handler does not define it — in which case
// the operation forwards to target, per the proxy invariant tables. Only
// core/vm calls this: dispatching the returned function requires the
// bytecode call machinery, which this package does not own.
func (m *proxyMethods) TrapHandler(name string) (value.Value, bool) {
	if m.handler == nil {
		return value.UndefinedValue, false
	}
	v, err := m.handler.Get(value.StringKey(name), m.handler.Value())
	if err != nil && !IsAccessorResult(err) {
		return value.UndefinedValue, false
	}
	if v.IsUndefined() || v.IsNull() {
		return value.UndefinedValue, false
	}
	return v, true
}

func (m *proxyMethods) checkLive() error {
	if m.handler == nil {
		return ErrProxyRevoked
	}
	return nil
}

// Every method below is the untrapped fallback: it forwards straight to
// target. core/vm checks TrapHandler for the relevant trap name before
// reaching these (via IsProxy), since invoking a found trap requires the
// call machinery this package does not own; these implementations are
// what runs once no trap applies, and are what a plain (non-VM-mediated)
// embedder gets for free.

func (m *proxyMethods) GetPrototypeOf(o *Object) (*Object, bool) {
	if m.checkLive() != nil {
		return nil, false
	}
	return m.target.GetPrototypeOf()
}

func (m *proxyMethods) SetPrototypeOf(o *Object, proto *Object) error {
	if err := m.checkLive(); err != nil {
		return err
	}
	return m.target.SetPrototypeOf(proto)
}

func (m *proxyMethods) IsExtensible(o *Object) bool {
	if m.checkLive() != nil {
		return false
	}
	return m.target.IsExtensible()
}

func (m *proxyMethods) PreventExtensions(o *Object) error {
	if err := m.checkLive(); err != nil {
		return err
	}
	return m.target.PreventExtensions()
}

func (m *proxyMethods) GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool) {
	if m.checkLive() != nil {
		return PropertyDescriptor{}, false
	}
	return m.target.GetOwnProperty(key)
}

func (m *proxyMethods) DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error {
	if err := m.checkLive(); err != nil {
		return err
	}
	// Invariant (spec.md §4.2): defining over a non-configurable target
	// property with incompatible attrs must fail with a type error.
	if existing, ok := m.target.GetOwnProperty(key); ok && existing.HasAttrs && !existing.Attrs.IsConfigurable() {
		if desc.HasAttrs && desc.Attrs != existing.Attrs {
			return ErrProxyInvariant
		}
	}
	return m.target.DefineOwnProperty(key, desc)
}

func (m *proxyMethods) HasProperty(o *Object, key value.PropertyKey) bool {
	if m.checkLive() != nil {
		return false
	}
	return m.target.HasProperty(key)
}

func (m *proxyMethods) Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	if err := m.checkLive(); err != nil {
		return value.UndefinedValue, err
	}
	return m.target.Get(key, receiver)
}

func (m *proxyMethods) Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	if err := m.checkLive(); err != nil {
		return err
	}
	return m.target.Set(key, v, receiver)
}

func (m *proxyMethods) Delete(o *Object, key value.PropertyKey) (bool, error) {
	if err := m.checkLive(); err != nil {
		return false, err
	}
	if existing, ok := m.target.GetOwnProperty(key); ok && existing.HasAttrs && !existing.Attrs.IsConfigurable() {
		return false, ErrProxyInvariant
	}
	return m.target.Delete(key)
}

func (m *proxyMethods) OwnPropertyKeys(o *Object) []value.PropertyKey {
	if m.checkLive() != nil {
		return nil
	}
	return m.target.OwnPropertyKeys()
}

func (m *proxyMethods) Callable() bool {
	return m.target != nil && m.target.Callable()
}
func (m *proxyMethods) Constructor() bool {
	return m.target != nil && m.target.Constructor()
}
func (m *proxyMethods) TraceNative(o *Object, visit func(gc.Cell)) {
	if m.target != nil {
		visit(m.target)
	}
	if m.handler != nil {
		visit(m.handler)
	}
}

// IsProxy reports whether o is a Proxy exotic object. It also reports true
// for a revoked proxy, whose Handler() is nil.
func IsProxy(o *Object) (*proxyMethods, bool) {
	m, ok := o.methods.(*proxyMethods)
	return m, ok
}

func (m *proxyMethods) Target() *Object  { return m.target }
func (m *proxyMethods) Handler() *Object { return m.handler }
