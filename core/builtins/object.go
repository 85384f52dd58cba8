package builtins

import (
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// installObjectAndFunction builds %Object.prototype% and
// %Function.prototype% first: every other prototype installed later in
// Install chains its own [[Prototype]] to objectProto.
func (b *builder) installObjectAndFunction() error {
	objProto, err := b.newPlainProtoObject()
	if err != nil {
		return err
	}
	b.objectProto = objProto

	fnProto, err := object.NewNativeFunction(b.Heap, shape.NewRoot(), "", func(this value.Value, args []value.Value) (value.Value, error) {
		return value.UndefinedValue, nil
	}, nil)
	if err != nil {
		return err
	}
	_ = fnProto.SetPrototypeOf(objProto)
	b.functionProto = fnProto

	if _, err := b.newConstructor("Object", b.objectCall, b.objectConstruct, objProto); err != nil {
		return err
	}

	for name, fn := range map[string]object.NativeCall{
		"hasOwnProperty":      b.objHasOwnProperty,
		"isPrototypeOf":       b.objIsPrototypeOf,
		"propertyIsEnumerable": b.objPropertyIsEnumerable,
		"toString":            b.objToString,
		"valueOf":             b.objValueOf,
	} {
		if err := b.defineMethod(objProto, name, fn); err != nil {
			return err
		}
	}

	ctor, _ := object.FromValue(mustGet(b.Global, "Object"))
	for name, fn := range map[string]object.NativeCall{
		"keys":                   b.objectKeys,
		"values":                 b.objectValues,
		"entries":                b.objectEntries,
		"assign":                 b.objectAssign,
		"freeze":                 b.objectFreeze,
		"isFrozen":               b.objectIsFrozen,
		"preventExtensions":      b.objectPreventExtensions,
		"isExtensible":           b.objectIsExtensible,
		"getPrototypeOf":         b.objectGetPrototypeOf,
		"setPrototypeOf":         b.objectSetPrototypeOf,
		"create":                 b.objectCreate,
		"defineProperty":         b.objectDefineProperty,
		"getOwnPropertyNames":    b.objectGetOwnPropertyNames,
		"getOwnPropertyDescriptor": b.objectGetOwnPropertyDescriptor,
		"fromEntries":            b.objectFromEntries,
	} {
		if err := b.defineMethod(ctor, name, fn); err != nil {
			return err
		}
	}

	return b.defineMethod(fnProto, "call", b.functionCall)
}

func mustGet(o *object.Object, name string) value.Value {
	v, _ := o.Get(value.StringKey(name), o.Value())
	return v
}

func (b *builder) objectCall(this value.Value, args []value.Value) (value.Value, error) {
	return b.objectConstruct(args, nil)
}

func (b *builder) objectConstruct(args []value.Value, newTarget *object.Object) (value.Value, error) {
	arg := argAt(args, 0)
	if arg.IsObject() {
		return arg, nil
	}
	o, err := b.newObject()
	if err != nil {
		return value.UndefinedValue, err
	}
	return o.Value(), nil
}

func thisObject(this value.Value) (*object.Object, error) {
	o, ok := object.FromValue(this)
	if !ok {
		return nil, typeError("receiver is not an object")
	}
	return o, nil
}

func (b *builder) objHasOwnProperty(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	key := value.ValueKey(argAt(args, 0))
	_, ok := o.GetOwnProperty(key)
	return value.NewBool(ok), nil
}

func (b *builder) objIsPrototypeOf(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	target, ok := object.FromValue(argAt(args, 0))
	if !ok {
		return value.FalseValue, nil
	}
	for cur, has := target.GetPrototypeOf(); has && cur != nil; cur, has = cur.GetPrototypeOf() {
		if cur == o {
			return value.TrueValue, nil
		}
	}
	return value.FalseValue, nil
}

func (b *builder) objPropertyIsEnumerable(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	desc, ok := o.GetOwnProperty(value.ValueKey(argAt(args, 0)))
	return value.NewBool(ok && desc.Attrs.IsEnumerable()), nil
}

func (b *builder) objToString(this value.Value, args []value.Value) (value.Value, error) {
	if this.IsNullish() {
		return value.NewStringGo("[object " + this.Kind().String() + "]"), nil
	}
	o, err := thisObject(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	return value.NewStringGo("[object " + o.Class() + "]"), nil
}

func (b *builder) objValueOf(this value.Value, args []value.Value) (value.Value, error) {
	return this, nil
}

func enumerableOwnKeys(o *object.Object) []value.PropertyKey {
	var keys []value.PropertyKey
	for _, k := range o.OwnPropertyKeys() {
		if k.IsSymbol() {
			continue
		}
		if desc, ok := o.GetOwnProperty(k); ok && desc.Attrs.IsEnumerable() {
			keys = append(keys, k)
		}
	}
	return keys
}

func (b *builder) objectKeys(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	keys := enumerableOwnKeys(o)
	vals := make([]value.Value, len(keys))
	for i, k := range keys {
		vals[i] = value.NewStringGo(k.String())
	}
	return b.newArrayOf(vals)
}

func (b *builder) objectValues(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	keys := enumerableOwnKeys(o)
	vals := make([]value.Value, len(keys))
	for i, k := range keys {
		desc, _ := o.GetOwnProperty(k)
		vals[i] = desc.Value
	}
	return b.newArrayOf(vals)
}

func (b *builder) objectEntries(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	keys := enumerableOwnKeys(o)
	vals := make([]value.Value, len(keys))
	for i, k := range keys {
		desc, _ := o.GetOwnProperty(k)
		pair, err := b.newArrayOf([]value.Value{value.NewStringGo(k.String()), desc.Value})
		if err != nil {
			return value.UndefinedValue, err
		}
		vals[i] = pair
	}
	return b.newArrayOf(vals)
}

func (b *builder) objectAssign(this value.Value, args []value.Value) (value.Value, error) {
	target, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	for _, src := range args[1:] {
		so, ok := object.FromValue(src)
		if !ok {
			continue
		}
		for _, k := range enumerableOwnKeys(so) {
			desc, _ := so.GetOwnProperty(k)
			if err := target.DefineOwnProperty(k, object.PropertyDescriptor{
				Value: desc.Value, Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
			}); err != nil {
				return value.UndefinedValue, err
			}
		}
	}
	return target.Value(), nil
}

func (b *builder) objectFreeze(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	if err := o.PreventExtensions(); err != nil {
		return value.UndefinedValue, err
	}
	for _, k := range o.OwnPropertyKeys() {
		desc, ok := o.GetOwnProperty(k)
		if !ok {
			continue
		}
		attrs := desc.Attrs &^ (shape.Writable | shape.Configurable)
		if err := o.DefineOwnProperty(k, object.PropertyDescriptor{Attrs: attrs, HasAttrs: true}); err != nil {
			return value.UndefinedValue, err
		}
	}
	return o.Value(), nil
}

func (b *builder) objectIsFrozen(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	if o.IsExtensible() {
		return value.FalseValue, nil
	}
	for _, k := range o.OwnPropertyKeys() {
		desc, ok := o.GetOwnProperty(k)
		if ok && (desc.Attrs.IsWritable() || desc.Attrs.IsConfigurable()) {
			return value.FalseValue, nil
		}
	}
	return value.TrueValue, nil
}

func (b *builder) objectPreventExtensions(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	if err := o.PreventExtensions(); err != nil {
		return value.UndefinedValue, err
	}
	return o.Value(), nil
}

func (b *builder) objectIsExtensible(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := object.FromValue(argAt(args, 0))
	if !ok {
		return value.FalseValue, nil
	}
	return value.NewBool(o.IsExtensible()), nil
}

func (b *builder) objectGetPrototypeOf(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	proto, ok := o.GetPrototypeOf()
	if !ok || proto == nil {
		return value.NullValue, nil
	}
	return proto.Value(), nil
}

func (b *builder) objectSetPrototypeOf(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	protoArg := argAt(args, 1)
	var proto *object.Object
	if protoArg.IsObject() {
		proto, _ = object.FromValue(protoArg)
	} else if !protoArg.IsNull() {
		return value.UndefinedValue, typeError("prototype must be an object or null")
	}
	if err := o.SetPrototypeOf(proto); err != nil {
		return value.UndefinedValue, err
	}
	return o.Value(), nil
}

func (b *builder) objectCreate(this value.Value, args []value.Value) (value.Value, error) {
	protoArg := argAt(args, 0)
	o, err := object.New(b.Heap, shape.NewRoot())
	if err != nil {
		return value.UndefinedValue, err
	}
	if protoArg.IsObject() {
		proto, _ := object.FromValue(protoArg)
		_ = o.SetPrototypeOf(proto)
	} else if !protoArg.IsNull() {
		return value.UndefinedValue, typeError("Object.create proto must be an object or null")
	}
	if props, ok := object.FromValue(argAt(args, 1)); ok {
		for _, k := range enumerableOwnKeys(props) {
			descObj, _ := props.GetOwnProperty(k)
			valDesc, derr := b.toPropertyDescriptor(descObj.Value)
			if derr != nil {
				return value.UndefinedValue, derr
			}
			if err := o.DefineOwnProperty(k, valDesc); err != nil {
				return value.UndefinedValue, err
			}
		}
	}
	return o.Value(), nil
}

func (b *builder) objectDefineProperty(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	key := value.ValueKey(argAt(args, 1))
	desc, err := b.toPropertyDescriptor(argAt(args, 2))
	if err != nil {
		return value.UndefinedValue, err
	}
	if err := o.DefineOwnProperty(key, desc); err != nil {
		return value.UndefinedValue, err
	}
	return o.Value(), nil
}

// toPropertyDescriptor reads a plain descriptor object ({value, writable,
// enumerable, configurable, get, set}) into the engine's internal
// PropertyDescriptor, defaulting every attribute absent from descObj to
// false per ECMAScript's ToPropertyDescriptor.
func (b *builder) toPropertyDescriptor(descVal value.Value) (object.PropertyDescriptor, error) {
	descObj, ok := object.FromValue(descVal)
	if !ok {
		return object.PropertyDescriptor{}, typeError("property descriptor must be an object")
	}
	var attrs shape.Attrs
	var desc object.PropertyDescriptor
	if v, ok := descObj.GetOwnProperty(value.StringKey("value")); ok {
		desc.Value, desc.HasValue = v.Value, true
	}
	if v, ok := descObj.GetOwnProperty(value.StringKey("writable")); ok && v.Value.Bool() {
		attrs |= shape.Writable
	}
	if v, ok := descObj.GetOwnProperty(value.StringKey("enumerable")); ok && v.Value.Bool() {
		attrs |= shape.Enumerable
	}
	if v, ok := descObj.GetOwnProperty(value.StringKey("configurable")); ok && v.Value.Bool() {
		attrs |= shape.Configurable
	}
	if g, ok := descObj.GetOwnProperty(value.StringKey("get")); ok {
		desc.Getter, attrs = g.Value, attrs|shape.HasGetter
	}
	if s, ok := descObj.GetOwnProperty(value.StringKey("set")); ok {
		desc.Setter, attrs = s.Value, attrs|shape.HasSetter
	}
	desc.Attrs, desc.HasAttrs = attrs, true
	return desc, nil
}

func (b *builder) objectGetOwnPropertyNames(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	var vals []value.Value
	for _, k := range o.OwnPropertyKeys() {
		if !k.IsSymbol() {
			vals = append(vals, value.NewStringGo(k.String()))
		}
	}
	return b.newArrayOf(vals)
}

func (b *builder) objectGetOwnPropertyDescriptor(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	desc, ok := o.GetOwnProperty(value.ValueKey(argAt(args, 1)))
	if !ok {
		return value.UndefinedValue, nil
	}
	out, err := b.newObject()
	if err != nil {
		return value.UndefinedValue, err
	}
	if desc.Attrs.HasAccessor() {
		_ = b.defineValue(out, "get", desc.Getter, shape.DataDefault)
		_ = b.defineValue(out, "set", desc.Setter, shape.DataDefault)
	} else {
		_ = b.defineValue(out, "value", desc.Value, shape.DataDefault)
		_ = b.defineValue(out, "writable", value.NewBool(desc.Attrs.IsWritable()), shape.DataDefault)
	}
	_ = b.defineValue(out, "enumerable", value.NewBool(desc.Attrs.IsEnumerable()), shape.DataDefault)
	_ = b.defineValue(out, "configurable", value.NewBool(desc.Attrs.IsConfigurable()), shape.DataDefault)
	return out.Value(), nil
}

func (b *builder) objectFromEntries(this value.Value, args []value.Value) (value.Value, error) {
	iterable := argAt(args, 0)
	o, err := b.newObject()
	if err != nil {
		return value.UndefinedValue, err
	}
	err = b.forEachIterable(iterable, func(entry value.Value) error {
		eo, ok := object.FromValue(entry)
		if !ok {
			return typeError("entry is not an object")
		}
		kv, _ := eo.Get(value.StringKey("0"), entry)
		vv, _ := eo.Get(value.StringKey("1"), entry)
		return o.DefineOwnProperty(value.ValueKey(kv), object.PropertyDescriptor{
			Value: vv, Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
		})
	})
	if err != nil {
		return value.UndefinedValue, err
	}
	return o.Value(), nil
}

func (b *builder) functionCall(this value.Value, args []value.Value) (value.Value, error) {
	if !this.IsObject() {
		return value.UndefinedValue, typeError("Function.prototype.call on non-function")
	}
	thisArg := argAt(args, 0)
	rest := args
	if len(args) > 0 {
		rest = args[1:]
	}
	result, thrown, err := b.VM.Call(this, thisArg, rest)
	if err != nil {
		return value.UndefinedValue, err
	}
	if thrown != nil {
		return value.UndefinedValue, thrown
	}
	return result, nil
}

// forEachIterable drives the GetIterator/IteratorStep protocol over
// iterable, invoking fn on each step's value until done or fn errors.
func (b *builder) forEachIterable(iterable value.Value, fn func(value.Value) error) error {
	it, thrown, err := b.VM.GetIterator(iterable)
	if err != nil {
		return err
	}
	if thrown != nil {
		return thrown
	}
	for {
		step, thrown, err := b.VM.IteratorStep(it)
		if err != nil {
			return err
		}
		if thrown != nil {
			return thrown
		}
		stepObj, ok := object.FromValue(step)
		if !ok {
			return typeError("iterator result is not an object")
		}
		doneVal, _ := stepObj.Get(value.StringKey("done"), step)
		if doneVal.Bool() {
			return nil
		}
		v, _ := stepObj.Get(value.StringKey("value"), step)
		if err := fn(v); err != nil {
			_, _ = b.VM.IteratorClose(it)
			return err
		}
	}
}
