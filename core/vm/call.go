package vm

import (
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/value"
)

// Call is the exported entry point core/builtins uses to invoke a
// script-visible callable from Go (e.g. Array.prototype.forEach's
// callback, a Promise reaction): it is the same dispatch call's opcode
// handlers use internally, just reachable from outside the package.
func (vm *VM) Call(callee, this value.Value, args []value.Value) (value.Value, *ThrowSignal, error) {
	return vm.call(callee, this, args)
}

// Construct is Call's `new` counterpart, exported for the same reason
// (core/builtins' Array/Map/Set/... constructors that must construct a
// user-supplied species constructor).
func (vm *VM) Construct(callee value.Value, args []value.Value, newTarget value.Value) (value.Value, *ThrowSignal, error) {
	return vm.construct(callee, args, newTarget)
}

// call invokes callee(this, args), dispatching on whichever exotic
// variant backs it: a closure re-enters Dispatch with a fresh frame, a
// native function runs its Go body directly, a bound function splices its
// bound receiver/args and recurses on the target, and a proxy's "apply"
// trap (or untrapped forward) is handled the same way property access is.
func (vm *VM) call(callee, this value.Value, args []value.Value) (value.Value, *ThrowSignal, error) {
	if !callee.IsObject() {
		return value.UndefinedValue, vm.newError("TypeError", "value is not a function"), nil
	}
	o, _ := object.FromValue(callee)
	if !o.Callable() {
		return value.UndefinedValue, vm.newError("TypeError", "value is not a function"), nil
	}

	if pm, ok := object.IsProxy(o); ok {
		if trap, has := pm.TrapHandler("apply"); has {
			// The real "apply" trap receives (target, thisArg, argumentsList)
			// where argumentsList is an array object; core/builtins' Array
			// isn't wired yet, so core/vm passes the arguments spread inline
			// until a realm-backed array constructor exists to box them.
			return vm.call(trap, pm.Handler().Value(), append([]value.Value{pm.Target().Value(), this}, args...))
		}
		return vm.call(pm.Target().Value(), this, args)
	}

	if nf, ok := object.AsNativeFunction(o); ok {
		v, err := nf.Call(this, args)
		if err != nil {
			if ts, ok := err.(*ThrowSignal); ok {
				return value.UndefinedValue, ts, nil
			}
			return value.UndefinedValue, nil, err
		}
		return v, nil, nil
	}

	if bf, ok := object.AsBoundFunction(o); ok {
		fullArgs := append(append([]value.Value{}, bf.BoundArgs()...), args...)
		return vm.call(bf.BoundTarget().Value(), bf.BoundThis(), fullArgs)
	}

	if cm, ok := asClosure(o); ok {
		if cm.code.Flags.Generator() {
			return vm.startGenerator(o, cm, this, args)
		}
		return vm.callCodeBlock(cm.code, this, value.UndefinedValue, cm.upvalues, args)
	}

	return value.UndefinedValue, vm.newError("TypeError", "value is not a function"), nil
}

// construct invokes callee as a `new` target, setting up [[Prototype]]
// from the constructor's "prototype" property per spec.md §4.4
// "Construction calls... install the [[Prototype]] correctly".
func (vm *VM) construct(callee value.Value, args []value.Value, newTarget value.Value) (value.Value, *ThrowSignal, error) {
	if !callee.IsObject() {
		return value.UndefinedValue, vm.newError("TypeError", "value is not a constructor"), nil
	}
	o, _ := object.FromValue(callee)
	if !o.Constructor() {
		return value.UndefinedValue, vm.newError("TypeError", "value is not a constructor"), nil
	}

	if pm, ok := object.IsProxy(o); ok {
		if trap, has := pm.TrapHandler("construct"); has {
			return vm.call(trap, pm.Handler().Value(), append([]value.Value{pm.Target().Value()}, args...))
		}
		return vm.construct(pm.Target().Value(), args, newTarget)
	}

	if nf, ok := object.AsNativeFunction(o); ok {
		newTargetObj, _ := object.FromValue(newTarget)
		v, err := nf.Construct(args, newTargetObj)
		if err != nil {
			if ts, ok := err.(*ThrowSignal); ok {
				return value.UndefinedValue, ts, nil
			}
			return value.UndefinedValue, nil, err
		}
		return v, nil, nil
	}

	if bf, ok := object.AsBoundFunction(o); ok {
		fullArgs := append(append([]value.Value{}, bf.BoundArgs()...), args...)
		return vm.construct(bf.BoundTarget().Value(), fullArgs, newTarget)
	}

	if cm, ok := asClosure(o); ok {
		instShape := vm.newObjectShape()
		inst, err := object.New(vm.heap, instShape)
		if err != nil {
			return value.UndefinedValue, nil, err
		}
		protoVal, thrown, err := vm.getProperty(o, value.StringKey("prototype"), callee)
		if thrown != nil || err != nil {
			return value.UndefinedValue, thrown, err
		}
		if protoObj, ok := object.FromValue(protoVal); ok {
			_ = inst.SetPrototypeOf(protoObj)
		}
		result, thrown, err := vm.callCodeBlock(cm.code, inst.Value(), newTarget, cm.upvalues, args)
		if thrown != nil || err != nil {
			return value.UndefinedValue, thrown, err
		}
		if result.IsObject() {
			return result, nil, nil
		}
		return inst.Value(), nil, nil
	}

	return value.UndefinedValue, vm.newError("TypeError", "value is not a constructor"), nil
}
