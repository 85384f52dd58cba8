package builtins

import (
	"github.com/coreform/jsvm/core/clone"
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// installStructuredClone wires the global structuredClone(value, options)
// function onto core/clone's identity-preserving deep copy (spec.md §4.3).
func (b *builder) installStructuredClone() error {
	fn, err := object.NewNativeFunction(b.Heap, shape.NewRoot(), "structuredClone", b.structuredClone, nil)
	if err != nil {
		return err
	}
	if b.functionProto != nil {
		_ = fn.SetPrototypeOf(b.functionProto)
	}
	return b.defineValue(b.Global, "structuredClone", fn.Value(), shape.Writable|shape.Configurable)
}

func (b *builder) structuredClone(this value.Value, args []value.Value) (value.Value, error) {
	opts := clone.Options{}
	if optsObj, ok := object.FromValue(argAt(args, 1)); ok {
		if tv, tok := optsObj.Get(value.StringKey("transfer"), optsObj.Value()); tok == nil {
			if transferArr, ok := object.FromValue(tv); ok {
				n := arrayLength(transferArr)
				for i := uint32(0); i < n; i++ {
					opts.Transfer = append(opts.Transfer, arrayElementAt(transferArr, i))
				}
			}
		}
	}
	out, err := clone.Clone(b.Heap, argAt(args, 0), opts)
	if err != nil {
		return value.UndefinedValue, typeError(err.Error())
	}
	return out, nil
}
