package builtins

import (
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// errorKinds are the native error subtypes ECMA-262 specifies, each its
// own constructor/prototype pair chaining to %Error.prototype%.
var errorKinds = []string{"TypeError", "RangeError", "ReferenceError", "SyntaxError", "EvalError", "URIError"}

// installErrorTaxonomy builds %Error.prototype% and the native error
// subtype constructors (spec.md §4.4's catchable RuntimeLimitError and
// internal TypeErrors surface to script as instances of these).
func (b *builder) installErrorTaxonomy() error {
	proto, err := b.newObject()
	if err != nil {
		return err
	}
	b.errorProto = proto
	if err := b.defineValue(proto, "name", value.NewStringGo("Error"), shape.Writable|shape.Configurable); err != nil {
		return err
	}
	if err := b.defineValue(proto, "message", value.NewStringGo(""), shape.Writable|shape.Configurable); err != nil {
		return err
	}
	if err := b.defineMethod(proto, "toString", b.errorToString); err != nil {
		return err
	}
	if _, err := b.newConstructor("Error", b.errorCall("Error", proto), b.errorConstruct("Error", proto), proto); err != nil {
		return err
	}

	for _, kind := range errorKinds {
		subProto, err := b.newObject()
		if err != nil {
			return err
		}
		_ = subProto.SetPrototypeOf(proto)
		if err := b.defineValue(subProto, "name", value.NewStringGo(kind), shape.Writable|shape.Configurable); err != nil {
			return err
		}
		if _, err := b.newConstructor(kind, b.errorCall(kind, subProto), b.errorConstruct(kind, subProto), subProto); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) errorToString(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisObject(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	name := "Error"
	if v, err := o.Get(value.StringKey("name"), this); err == nil && !v.IsUndefined() {
		name = v.GoString()
	}
	msg := ""
	if v, err := o.Get(value.StringKey("message"), this); err == nil && !v.IsUndefined() {
		msg = v.GoString()
	}
	if msg == "" {
		return value.NewStringGo(name), nil
	}
	return value.NewStringGo(name + ": " + msg), nil
}

func (b *builder) errorCall(kind string, proto *object.Object) object.NativeCall {
	return func(this value.Value, args []value.Value) (value.Value, error) {
		return b.errorConstruct(kind, proto)(args, nil)
	}
}

func (b *builder) errorConstruct(kind string, proto *object.Object) object.NativeConstruct {
	return func(args []value.Value, newTarget *object.Object) (value.Value, error) {
		o, err := object.New(b.Heap, shape.NewRoot())
		if err != nil {
			return value.UndefinedValue, err
		}
		_ = o.SetPrototypeOf(proto)
		if msg := argAt(args, 0); !msg.IsUndefined() {
			if err := b.defineValue(o, "message", value.NewStringGo(msg.GoString()), shape.Writable|shape.Configurable); err != nil {
				return value.UndefinedValue, err
			}
		}
		if err := b.defineValue(o, "stack", value.NewStringGo(kind), shape.Writable|shape.Configurable); err != nil {
			return value.UndefinedValue, err
		}
		return o.Value(), nil
	}
}

// newErrorValue builds a throwable instance of the named error kind, for
// internal engine use sites (built-in argument validation) that want a
// proper Error object rather than a bare string ThrowSignal.
func (b *builder) newErrorValue(kind, msg string) value.Value {
	proto := b.errorProto
	if ctor, ok := b.Intrinsics["%"+kind+".prototype%"]; ok {
		proto = ctor
	}
	o, err := object.New(b.Heap, shape.NewRoot())
	if err != nil {
		return value.NewStringGo(kind + ": " + msg)
	}
	_ = o.SetPrototypeOf(proto)
	_ = b.defineValue(o, "message", value.NewStringGo(msg), shape.Writable|shape.Configurable)
	_ = b.defineValue(o, "name", value.NewStringGo(kind), shape.Writable|shape.Configurable)
	return o.Value()
}
