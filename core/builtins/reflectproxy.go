package builtins

import (
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// installReflectProxy builds the %Reflect% namespace and the Proxy
// constructor (spec.md §4.2/§9's exotic Proxy object, and the trap
// dispatch core/vm's property-access opcodes already implement via
// object.IsProxy/TrapHandler).
func (b *builder) installReflectProxy() error {
	if err := b.installReflect(); err != nil {
		return err
	}
	return b.installProxyCtor()
}

func (b *builder) installReflect() error {
	r, err := b.newObject()
	if err != nil {
		return err
	}
	methods := map[string]object.NativeCall{
		"get":                    b.reflectGet,
		"set":                    b.reflectSet,
		"has":                    b.reflectHas,
		"deleteProperty":         b.reflectDeleteProperty,
		"ownKeys":                b.reflectOwnKeys,
		"getPrototypeOf":         b.objectGetPrototypeOf,
		"setPrototypeOf":         b.reflectSetPrototypeOf,
		"isExtensible":           b.objectIsExtensible,
		"preventExtensions":      b.objectPreventExtensions,
		"defineProperty":         b.reflectDefineProperty,
		"getOwnPropertyDescriptor": b.objectGetOwnPropertyDescriptor,
		"apply":                  b.reflectApply,
		"construct":              b.reflectConstruct,
	}
	for name, fn := range methods {
		if err := b.defineMethod(r, name, fn); err != nil {
			return err
		}
	}
	return b.defineValue(b.Global, "Reflect", r.Value(), shape.Writable|shape.Configurable)
}

func (b *builder) reflectGet(this value.Value, args []value.Value) (value.Value, error) {
	target, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	receiver := argAt(args, 0)
	if len(args) > 2 {
		receiver = args[2]
	}
	v, thrown, err := b.VM.GetProperty(target, value.ValueKey(argAt(args, 1)), receiver)
	if err != nil {
		return value.UndefinedValue, err
	}
	if thrown != nil {
		return value.UndefinedValue, thrown
	}
	return v, nil
}

func (b *builder) reflectSet(this value.Value, args []value.Value) (value.Value, error) {
	target, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	receiver := argAt(args, 0)
	if len(args) > 3 {
		receiver = args[3]
	}
	thrown, err := b.VM.SetProperty(target, value.ValueKey(argAt(args, 1)), argAt(args, 2), receiver)
	if err != nil {
		return value.UndefinedValue, err
	}
	if thrown != nil {
		return value.FalseValue, nil
	}
	return value.TrueValue, nil
}

func (b *builder) reflectHas(this value.Value, args []value.Value) (value.Value, error) {
	target, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	return value.NewBool(target.HasProperty(value.ValueKey(argAt(args, 1)))), nil
}

func (b *builder) reflectDeleteProperty(this value.Value, args []value.Value) (value.Value, error) {
	target, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	ok, err := target.Delete(value.ValueKey(argAt(args, 1)))
	if err != nil {
		return value.UndefinedValue, err
	}
	return value.NewBool(ok), nil
}

func (b *builder) reflectOwnKeys(this value.Value, args []value.Value) (value.Value, error) {
	target, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	keys := target.OwnPropertyKeys()
	vals := make([]value.Value, len(keys))
	for i, k := range keys {
		if k.IsSymbol() {
			vals[i] = value.NewSymbolValue(k.Symbol())
		} else {
			vals[i] = value.NewStringGo(k.String())
		}
	}
	return b.newArrayOf(vals)
}

func (b *builder) reflectSetPrototypeOf(this value.Value, args []value.Value) (value.Value, error) {
	target, err := thisObject(argAt(args, 0))
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
	if err := target.SetPrototypeOf(proto); err != nil {
		return value.FalseValue, nil
	}
	return value.TrueValue, nil
}

func (b *builder) reflectDefineProperty(this value.Value, args []value.Value) (value.Value, error) {
	target, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	desc, err := b.toPropertyDescriptor(argAt(args, 2))
	if err != nil {
		return value.UndefinedValue, err
	}
	if err := target.DefineOwnProperty(value.ValueKey(argAt(args, 1)), desc); err != nil {
		return value.FalseValue, nil
	}
	return value.TrueValue, nil
}

func (b *builder) reflectApply(this value.Value, args []value.Value) (value.Value, error) {
	target := argAt(args, 0)
	thisArg := argAt(args, 1)
	var callArgs []value.Value
	if argsObj, ok := object.FromValue(argAt(args, 2)); ok {
		n := arrayLength(argsObj)
		for i := uint32(0); i < n; i++ {
			callArgs = append(callArgs, arrayElementAt(argsObj, i))
		}
	}
	v, thrown, err := b.VM.Call(target, thisArg, callArgs)
	if err != nil {
		return value.UndefinedValue, err
	}
	if thrown != nil {
		return value.UndefinedValue, thrown
	}
	return v, nil
}

func (b *builder) reflectConstruct(this value.Value, args []value.Value) (value.Value, error) {
	target := argAt(args, 0)
	newTarget := target
	if len(args) > 2 {
		newTarget = args[2]
	}
	var callArgs []value.Value
	if argsObj, ok := object.FromValue(argAt(args, 1)); ok {
		n := arrayLength(argsObj)
		for i := uint32(0); i < n; i++ {
			callArgs = append(callArgs, arrayElementAt(argsObj, i))
		}
	}
	v, thrown, err := b.VM.Construct(target, callArgs, newTarget)
	if err != nil {
		return value.UndefinedValue, err
	}
	if thrown != nil {
		return value.UndefinedValue, thrown
	}
	return v, nil
}

func (b *builder) installProxyCtor() error {
	ctor, err := object.NewNativeFunction(b.Heap, shape.NewRoot(), "Proxy", b.proxyCall, b.proxyConstruct)
	if err != nil {
		return err
	}
	if b.functionProto != nil {
		_ = ctor.SetPrototypeOf(b.functionProto)
	}
	if err := b.defineValue(b.Global, "Proxy", ctor.Value(), shape.Writable|shape.Configurable); err != nil {
		return err
	}
	b.Intrinsics["%Proxy%"] = ctor
	return b.defineMethod(ctor, "revocable", b.proxyRevocable)
}

func (b *builder) proxyCall(this value.Value, args []value.Value) (value.Value, error) {
	return value.UndefinedValue, typeError("Constructor Proxy requires 'new'")
}

func (b *builder) proxyConstruct(args []value.Value, newTarget *object.Object) (value.Value, error) {
	target, err := thisObject(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	handler, err := thisObject(argAt(args, 1))
	if err != nil {
		return value.UndefinedValue, err
	}
	p, err := object.NewProxy(b.Heap, shape.NewRoot(), target, handler)
	if err != nil {
		return value.UndefinedValue, err
	}
	return p.Value(), nil
}

func (b *builder) proxyRevocable(this value.Value, args []value.Value) (value.Value, error) {
	proxyVal, err := b.proxyConstruct(args, nil)
	if err != nil {
		return value.UndefinedValue, err
	}
	proxyObj, _ := object.FromValue(proxyVal)
	revokeFn, err := object.NewNativeFunction(b.Heap, shape.NewRoot(), "", func(value.Value, []value.Value) (value.Value, error) {
		if pm, ok := object.IsProxy(proxyObj); ok {
			pm.Revoke()
		}
		return value.UndefinedValue, nil
	}, nil)
	if err != nil {
		return value.UndefinedValue, err
	}
	out, err := b.newObject()
	if err != nil {
		return value.UndefinedValue, err
	}
	_ = b.defineValue(out, "proxy", proxyVal, shape.DataDefault)
	_ = b.defineValue(out, "revoke", revokeFn.Value(), shape.DataDefault)
	return out.Value(), nil
}
