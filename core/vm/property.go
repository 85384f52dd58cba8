package vm

import (
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/value"
)

// GetProperty/SetProperty/ToPropertyKey/ToStringValue/ToNumberValue are
// core/builtins' entry points into the VM-completed half of property
// access and the abstract conversions: a built-in operating on an
// arbitrary (possibly proxied, possibly accessor-backed) object needs the
// same completion core/vm's own opcodes use, not the plain object.Get
// that stops at an accessor sentinel.
func (vm *VM) GetProperty(o *object.Object, key value.PropertyKey, receiver value.Value) (value.Value, *ThrowSignal, error) {
	return vm.getProperty(o, key, receiver)
}

func (vm *VM) SetProperty(o *object.Object, key value.PropertyKey, v, receiver value.Value) (*ThrowSignal, error) {
	return vm.setProperty(o, key, v, receiver)
}

func (vm *VM) ToPropertyKey(v value.Value) (value.PropertyKey, *ThrowSignal, error) {
	return vm.toPropertyKey(v)
}

func (vm *VM) ToStringValue(v value.Value) (value.Str, *ThrowSignal, error) {
	return vm.toStringValue(v)
}

func (vm *VM) ToNumberValue(v value.Value) (float64, *ThrowSignal, error) {
	return vm.toNumber(v)
}

// getProperty implements [[Get]] the way only the VM can finish it:
// checking a Proxy's "get" trap first, then falling back to o.Get, and
// invoking an accessor's getter when o.Get signals one via the errAccessor
// sentinel (object.IsAccessorResult).
func (vm *VM) getProperty(o *object.Object, key value.PropertyKey, receiver value.Value) (value.Value, *ThrowSignal, error) {
	if pm, ok := object.IsProxy(o); ok {
		if trap, has := pm.TrapHandler("get"); has {
			result, thrown, err := vm.call(trap, pm.Handler().Value(), []value.Value{pm.Target().Value(), keyToValue(key), receiver})
			if thrown != nil || err != nil {
				return value.UndefinedValue, thrown, err
			}
			if thrown := vm.checkProxyGetInvariant(pm, key, result); thrown != nil {
				return value.UndefinedValue, thrown, nil
			}
			return result, nil, nil
		}
	}
	v, err := o.Get(key, receiver)
	if err == nil {
		return v, nil, nil
	}
	if object.IsAccessorResult(err) {
		if v.IsUndefined() {
			return value.UndefinedValue, nil, nil
		}
		return vm.call(v, receiver, nil)
	}
	return value.UndefinedValue, nil, err
}

// checkProxyGetInvariant enforces the two [[Get]] invariants a Proxy trap
// must not violate (spec.md §4.2): against a non-configurable, non-writable
// data property, the trap's result must SameValue the target's own value;
// against a non-configurable accessor property with no getter, the trap's
// result must be undefined. Both mirror the non-configurable-property
// check proxy.go's DefineOwnProperty/Delete fallbacks already enforce for
// their own operations.
func (vm *VM) checkProxyGetInvariant(pm interface{ Target() *object.Object }, key value.PropertyKey, result value.Value) *ThrowSignal {
	desc, ok := pm.Target().GetOwnProperty(key)
	if !ok || !desc.HasAttrs || desc.Attrs.IsConfigurable() {
		return nil
	}
	if desc.Attrs.HasAccessor() {
		if desc.Getter.IsUndefined() && !result.IsUndefined() {
			return vm.newError("TypeError", "'get' on proxy: property is a non-configurable accessor property without a getter, but the trap did not return undefined")
		}
		return nil
	}
	if desc.HasValue && !desc.Attrs.IsWritable() && !value.SameValue(result, desc.Value) {
		return vm.newError("TypeError", "'get' on proxy: property is a non-configurable, non-writable own data property, but the trap did not return its value")
	}
	return nil
}

// setProperty implements [[Set]]'s VM-completed half: the Proxy "set"
// trap, and invoking an accessor's setter.
func (vm *VM) setProperty(o *object.Object, key value.PropertyKey, v, receiver value.Value) (*ThrowSignal, error) {
	if pm, ok := object.IsProxy(o); ok {
		if trap, has := pm.TrapHandler("set"); has {
			_, thrown, err := vm.call(trap, pm.Handler().Value(), []value.Value{pm.Target().Value(), keyToValue(key), v, receiver})
			return thrown, err
		}
	}
	err := o.Set(key, v, receiver)
	if err == nil {
		return nil, nil
	}
	if object.IsAccessorResult(err) {
		desc, ok := o.GetOwnProperty(key)
		if !ok || desc.Setter.IsUndefined() {
			return nil, nil // no setter: silently ignored, per non-strict [[Set]]
		}
		_, thrown, callErr := vm.call(desc.Setter, receiver, []value.Value{v})
		return thrown, callErr
	}
	return nil, err
}

func keyToValue(key value.PropertyKey) value.Value {
	if key.IsSymbol() {
		return value.NewSymbolValue(key.Symbol())
	}
	return value.NewStringGo(key.String())
}

// toPropertyKey implements ToPropertyKey: symbols stay symbols, everything
// else converts via ToString.
func (vm *VM) toPropertyKey(v value.Value) (value.PropertyKey, *ThrowSignal, error) {
	if v.IsSymbol() {
		return value.SymbolKeyOf(v.Symbol()), nil, nil
	}
	s, thrown, err := vm.toStringValue(v)
	if thrown != nil || err != nil {
		return value.PropertyKey{}, thrown, err
	}
	return value.StringKey(s.Go()), nil, nil
}
