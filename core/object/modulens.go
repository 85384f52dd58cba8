package object

import (
	"sort"

	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// moduleNamespaceMethods is the Module Namespace exotic object (spec.md
// §9): a read-only, non-configurable view over a module's exported
// bindings, sorted per the module-namespace [[OwnPropertyKeys]] ordering
// (string keys in code-unit order, ahead of symbol keys).
type moduleNamespaceMethods struct {
	exports map[value.PropertyKey]*bindingCell
}

// bindingCell is the live binding slot an export name resolves to; it is
// shared with the exporting module's own environment record so a
// namespace read always observes the exporter's current value
// (ECMAScript's "live binding" semantics for module exports).
type bindingCell struct {
	value value.Value
}

func NewBindingCell(v value.Value) *bindingCell { return &bindingCell{value: v} }
func (c *bindingCell) Get() value.Value         { return c.value }
func (c *bindingCell) Set(v value.Value)        { c.value = v }

// NewModuleNamespace allocates a Module Namespace exotic object over the
// given export-name -> binding-cell map.
func NewModuleNamespace(h *gc.Heap, s *shape.Shape, exports map[value.PropertyKey]*bindingCell) (*Object, error) {
	return NewWithMethods(h, s, &moduleNamespaceMethods{exports: exports}, "Module")
}

func (m *moduleNamespaceMethods) GetPrototypeOf(o *Object) (*Object, bool) { return nil, true }
func (m *moduleNamespaceMethods) SetPrototypeOf(o *Object, proto *Object) error {
	if proto != nil {
		return ErrProxyInvariant
	}
	return nil
}
func (m *moduleNamespaceMethods) IsExtensible(o *Object) bool       { return false }
func (m *moduleNamespaceMethods) PreventExtensions(o *Object) error { return nil }

func (m *moduleNamespaceMethods) GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool) {
	cell, ok := m.exports[key]
	if !ok {
		return PropertyDescriptor{}, false
	}
	return PropertyDescriptor{Value: cell.Get(), Attrs: shape.Writable | shape.Enumerable, HasValue: true, HasAttrs: true}, true
}

func (m *moduleNamespaceMethods) DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error {
	return ErrNotConfigurable
}

func (m *moduleNamespaceMethods) HasProperty(o *Object, key value.PropertyKey) bool {
	_, ok := m.exports[key]
	return ok
}

func (m *moduleNamespaceMethods) Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	cell, ok := m.exports[key]
	if !ok {
		return value.UndefinedValue, nil
	}
	return cell.Get(), nil
}

func (m *moduleNamespaceMethods) Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	return ErrNotWritable
}

func (m *moduleNamespaceMethods) Delete(o *Object, key value.PropertyKey) (bool, error) {
	return false, ErrNotConfigurable
}

func (m *moduleNamespaceMethods) OwnPropertyKeys(o *Object) []value.PropertyKey {
	keys := make([]value.PropertyKey, 0, len(m.exports))
	for k := range m.exports {
		if !k.IsSymbol() {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
	for k := range m.exports {
		if k.IsSymbol() {
			keys = append(keys, k)
		}
	}
	return keys
}

func (m *moduleNamespaceMethods) Callable() bool    { return false }
func (m *moduleNamespaceMethods) Constructor() bool { return false }
func (m *moduleNamespaceMethods) TraceNative(o *Object, visit func(gc.Cell)) {
	for _, cell := range m.exports {
		traceValue(cell.value, visit)
	}
}
