package object

import (
	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// ordinaryMethods is the default InternalMethods implementation spec.md
// §9 calls "ordinary"; every exotic variant overrides a subset of it.
type ordinaryMethods struct{}

var ordinary InternalMethods = ordinaryMethods{}

func (ordinaryMethods) GetPrototypeOf(o *Object) (*Object, bool) {
	p, ok := o.shape.Prototype().(*Object)
	return p, ok
}

func (ordinaryMethods) SetPrototypeOf(o *Object, proto *Object) error {
	cur, _ := o.shape.Prototype().(*Object)
	if cur == proto {
		return nil
	}
	if !o.extensible {
		return ErrNotExtensible
	}
	if proto != nil && protoCycle(o, proto) {
		return ErrPrototypeCycle
	}
	var protoRef any
	if proto != nil {
		protoRef = proto
	}
	o.shape = o.shape.SetPrototype(protoRef)
	return nil
}

func protoCycle(o, proto *Object) bool {
	for p := proto; p != nil; {
		if p == o {
			return true
		}
		next, ok := p.shape.Prototype().(*Object)
		if !ok {
			break
		}
		p = next
	}
	return false
}

func (ordinaryMethods) IsExtensible(o *Object) bool { return o.extensible }

func (ordinaryMethods) PreventExtensions(o *Object) error {
	o.extensible = false
	return nil
}

func (ordinaryMethods) GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool) {
	if idx, ok := elementIndex(key); ok {
		v, ok := o.elements.Get(idx)
		if !ok {
			return PropertyDescriptor{}, false
		}
		return PropertyDescriptor{Value: v, Attrs: shape.DataDefault, HasValue: true, HasAttrs: true}, true
	}
	slot, ok := o.shape.Lookup(key)
	if !ok {
		return PropertyDescriptor{}, false
	}
	if slot.Attrs.HasAccessor() {
		return PropertyDescriptor{
			Getter: o.slotValue(slot.Index), Setter: o.slotValue(slot.Index + 1),
			Attrs: slot.Attrs, HasAttrs: true,
		}, true
	}
	return PropertyDescriptor{Value: o.slotValue(slot.Index), Attrs: slot.Attrs, HasValue: true, HasAttrs: true}, true
}

func (ordinaryMethods) DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error {
	if idx, ok := elementIndex(key); ok {
		if desc.HasAttrs && !desc.Attrs.IsWritable() && !desc.Attrs.HasAccessor() {
			// Non-writable indexed properties force the sparse map. Neither
			// mode stores per-index attributes: only the value is kept.
			o.elements.ForceSparse()
		}
		o.elements.Set(idx, desc.Value)
		return nil
	}
	if slot, ok := o.shape.Lookup(key); ok {
		if !slot.Attrs.IsConfigurable() && desc.HasAttrs && desc.Attrs != slot.Attrs {
			return ErrNotConfigurable
		}
		if !slot.Attrs.IsWritable() && !slot.Attrs.HasAccessor() && desc.HasValue {
			return ErrNotWritable
		}
		if desc.HasAttrs && desc.Attrs != slot.Attrs {
			var err error
			o.shape, err = o.shape.UpdateAttributes(key, desc.Attrs)
			if err != nil {
				return err
			}
		}
		if desc.HasValue {
			o.setSlotValue(slot.Index, desc.Value)
		}
		if desc.Attrs.HasAccessor() {
			o.setSlotValue(slot.Index, desc.Getter)
			o.setSlotValue(slot.Index+1, desc.Setter)
		}
		return nil
	}
	if !o.extensible {
		return ErrNotExtensible
	}
	attrs := desc.Attrs
	if !desc.HasAttrs {
		attrs = shape.DataDefault
	}
	slotBefore := o.shape.PropertyCount()
	o.shape = o.shape.Insert(key, attrs)
	if attrs.HasAccessor() {
		o.setSlotValue(slotBefore, desc.Getter)
		o.setSlotValue(slotBefore+1, desc.Setter)
	} else {
		o.setSlotValue(slotBefore, desc.Value)
	}
	return nil
}

func (m ordinaryMethods) HasProperty(o *Object, key value.PropertyKey) bool {
	if _, ok := m.GetOwnProperty(o, key); ok {
		return true
	}
	proto, ok := m.GetPrototypeOf(o)
	if !ok || proto == nil {
		return false
	}
	return proto.HasProperty(key)
}

func (m ordinaryMethods) Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	desc, ok := m.GetOwnProperty(o, key)
	if !ok {
		proto, ok := m.GetPrototypeOf(o)
		if !ok || proto == nil {
			return value.UndefinedValue, nil
		}
		return proto.Get(key, receiver)
	}
	if desc.Attrs.HasAccessor() {
		// Invoking the getter requires the VM's call machinery; this
		// package returns the getter function itself so core/vm can
		// invoke it with receiver as `this`.
		return desc.Getter, errAccessorGet
	}
	return desc.Value, nil
}

// errAccessorGet signals "Get hit an accessor" to core/vm without
// requiring object to import vm to perform the call itself.
var errAccessorGet = errAccessor("object: property is an accessor")

type errAccessor string

func (e errAccessor) Error() string { return string(e) }

func (m ordinaryMethods) Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	desc, ok := m.GetOwnProperty(o, key)
	if ok && desc.Attrs.HasAccessor() {
		return errAccessorGet // caller must invoke desc.Setter itself
	}
	if ok {
		return m.DefineOwnProperty(o, key, PropertyDescriptor{Value: v, HasValue: true})
	}
	proto, protoOK := m.GetPrototypeOf(o)
	if protoOK && proto != nil {
		if proto.HasProperty(key) {
			return proto.Set(key, v, receiver)
		}
	}
	if !o.extensible {
		return ErrNotExtensible
	}
	return m.DefineOwnProperty(o, key, PropertyDescriptor{Value: v, Attrs: shape.DataDefault, HasValue: true, HasAttrs: true})
}

func (ordinaryMethods) Delete(o *Object, key value.PropertyKey) (bool, error) {
	if idx, ok := elementIndex(key); ok {
		return o.elements.Delete(idx), nil
	}
	slot, ok := o.shape.Lookup(key)
	if !ok {
		return true, nil
	}
	if !slot.Attrs.IsConfigurable() {
		return false, ErrNotConfigurable
	}
	var err error
	o.shape, err = o.shape.Delete(key)
	if err != nil {
		return false, err
	}
	return true, nil
}

func (ordinaryMethods) OwnPropertyKeys(o *Object) []value.PropertyKey {
	keys := o.elements.Keys()
	keys = append(keys, o.shape.OwnKeys()...)
	return keys
}

func (ordinaryMethods) Callable() bool    { return false }
func (ordinaryMethods) Constructor() bool { return false }
func (ordinaryMethods) TraceNative(*Object, func(gc.Cell)) {}

// elementIndex reports whether key is a canonical array-index string
// ("0", "1", "2", ... no leading zero except "0" itself, < 2^32-1).
func elementIndex(key value.PropertyKey) (uint32, bool) {
	if key.IsSymbol() {
		return 0, false
	}
	return parseArrayIndex(key.String())
}

func parseArrayIndex(s string) (uint32, bool) {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return 0, false
	}
	var n uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
		if n > 0xFFFFFFFE {
			return 0, false
		}
	}
	return uint32(n), true
}
