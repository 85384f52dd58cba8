package object

import "github.com/coreform/jsvm/core/value"

// impl returns the variant's InternalMethods table, defaulting to the
// ordinary implementation (spec.md §9: "ordinary is the default").
func (o *Object) impl() InternalMethods {
	if o.methods != nil {
		return o.methods
	}
	return ordinary
}

// Methods exposes o's resolved internal-method table so a variant defined
// outside this package (core/vm's closure, which cannot live here without
// an object->vm import cycle) can type-assert its own table back out of a
// *Object.
func Methods(o *Object) InternalMethods { return o.impl() }

// Ordinary returns the shared ordinary-object method table, so an
// out-of-package variant can compose it for the operations it does not
// override, the same way every in-package variant does.
func Ordinary() InternalMethods { return ordinary }

func (o *Object) GetPrototypeOf() (*Object, bool) { return o.impl().GetPrototypeOf(o) }
func (o *Object) SetPrototypeOf(proto *Object) error {
	return o.impl().SetPrototypeOf(o, proto)
}
func (o *Object) IsExtensible() bool      { return o.impl().IsExtensible(o) }
func (o *Object) PreventExtensions() error { return o.impl().PreventExtensions(o) }

func (o *Object) GetOwnProperty(key value.PropertyKey) (PropertyDescriptor, bool) {
	return o.impl().GetOwnProperty(o, key)
}
func (o *Object) DefineOwnProperty(key value.PropertyKey, desc PropertyDescriptor) error {
	return o.impl().DefineOwnProperty(o, key, desc)
}
func (o *Object) HasProperty(key value.PropertyKey) bool { return o.impl().HasProperty(o, key) }
func (o *Object) Get(key value.PropertyKey, receiver value.Value) (value.Value, error) {
	return o.impl().Get(o, key, receiver)
}
func (o *Object) Set(key value.PropertyKey, v value.Value, receiver value.Value) error {
	return o.impl().Set(o, key, v, receiver)
}
func (o *Object) Delete(key value.PropertyKey) (bool, error) { return o.impl().Delete(o, key) }
func (o *Object) OwnPropertyKeys() []value.PropertyKey       { return o.impl().OwnPropertyKeys(o) }

func (o *Object) Callable() bool    { return o.impl().Callable() }
func (o *Object) Constructor() bool { return o.impl().Constructor() }

// IsAccessorResult reports whether an error returned by Get/Set means
// "this property is an accessor; the caller (core/vm, which owns the
// call machinery) must invoke the getter/setter itself" rather than a
// real failure.
func IsAccessorResult(err error) bool {
	_, ok := err.(errAccessor)
	return ok
}
