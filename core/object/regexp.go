package object

import (
	"github.com/dlclark/regexp2"

	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// regexpMethods is the RegExp exotic object: an ordinary property table
// plus the compiled pattern. A *regexp2.Regexp holds no Value/Cell
// references (it owns only its own parsed-pattern state), so TraceNative
// is a no-op.
type regexpMethods struct {
	re     *regexp2.Regexp
	source string
	flags  string
}

// NewRegExpObject allocates a RegExp instance wrapping a compiled
// pattern (grounded on dlclark/regexp2: stdlib regexp/RE2 cannot
// backtrack, so it rejects the backreferences and lookaround ECMA-262
// regular expressions require).
func NewRegExpObject(h *gc.Heap, s *shape.Shape, re *regexp2.Regexp, source, flags string) (*Object, error) {
	return NewWithMethods(h, s, &regexpMethods{re: re, source: source, flags: flags}, "RegExp")
}

// RegExpData returns o's compiled pattern plus source/flags if o was
// built by NewRegExpObject.
func RegExpData(o *Object) (re *regexp2.Regexp, source, flags string, ok bool) {
	m, ok := o.methods.(*regexpMethods)
	if !ok {
		return nil, "", "", false
	}
	return m.re, m.source, m.flags, true
}

func (m *regexpMethods) GetPrototypeOf(o *Object) (*Object, bool) { return ordinary.GetPrototypeOf(o) }
func (m *regexpMethods) SetPrototypeOf(o *Object, proto *Object) error {
	return ordinary.SetPrototypeOf(o, proto)
}
func (m *regexpMethods) IsExtensible(o *Object) bool       { return ordinary.IsExtensible(o) }
func (m *regexpMethods) PreventExtensions(o *Object) error { return ordinary.PreventExtensions(o) }
func (m *regexpMethods) GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool) {
	return ordinary.GetOwnProperty(o, key)
}
func (m *regexpMethods) DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error {
	return ordinary.DefineOwnProperty(o, key, desc)
}
func (m *regexpMethods) HasProperty(o *Object, key value.PropertyKey) bool {
	return ordinary.HasProperty(o, key)
}
func (m *regexpMethods) Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	return ordinary.Get(o, key, receiver)
}
func (m *regexpMethods) Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	return ordinary.Set(o, key, v, receiver)
}
func (m *regexpMethods) Delete(o *Object, key value.PropertyKey) (bool, error) {
	return ordinary.Delete(o, key)
}
func (m *regexpMethods) OwnPropertyKeys(o *Object) []value.PropertyKey {
	return ordinary.OwnPropertyKeys(o)
}
func (m *regexpMethods) Callable() bool                     { return false }
func (m *regexpMethods) Constructor() bool                  { return false }
func (m *regexpMethods) TraceNative(*Object, func(gc.Cell)) {}
