package vm

import "github.com/coreform/jsvm/core/value"

// getIterator/iteratorStep/iteratorClose implement the GetIterator/
// IteratorStep/IteratorClose abstract operations (spec.md §4.4
// "iterator: get-iterator, step, close"). getIterator does not look up
// Symbol.iterator (core/vm holds no symbol registry; it lives in
// core/builtins): an iterable is simply anything exposing a callable
// "next" method directly, the same duck-typed shape generator objects
// produce themselves. See DESIGN.md.
// GetIterator/IteratorStep/IteratorClose export the iterator protocol for
// core/builtins (Array.from, Map/Set's iterable constructor argument,
// spread in Promise.all/race/allSettled).
func (vm *VM) GetIterator(iterable value.Value) (value.Value, *ThrowSignal, error) {
	return vm.getIterator(iterable)
}

func (vm *VM) IteratorStep(it value.Value) (value.Value, *ThrowSignal, error) {
	return vm.iteratorStep(it)
}

func (vm *VM) IteratorClose(it value.Value) (*ThrowSignal, error) {
	return vm.iteratorClose(it)
}

func (vm *VM) getIterator(iterable value.Value) (value.Value, *ThrowSignal, error) {
	o, thrown, err := vm.toObject(iterable)
	if thrown != nil || err != nil {
		return value.UndefinedValue, thrown, err
	}
	nextFn, thrown, err := vm.getProperty(o, value.StringKey("next"), iterable)
	if thrown != nil || err != nil {
		return value.UndefinedValue, thrown, err
	}
	if !nextFn.IsObject() {
		return value.UndefinedValue, vm.newError("TypeError", "value is not iterable"), nil
	}
	return iterable, nil, nil
}

func (vm *VM) iteratorStep(it value.Value) (value.Value, *ThrowSignal, error) {
	o, thrown, err := vm.toObject(it)
	if thrown != nil || err != nil {
		return value.UndefinedValue, thrown, err
	}
	nextFn, thrown, err := vm.getProperty(o, value.StringKey("next"), it)
	if thrown != nil || err != nil {
		return value.UndefinedValue, thrown, err
	}
	return vm.call(nextFn, it, nil)
}

func (vm *VM) iteratorClose(it value.Value) (*ThrowSignal, error) {
	o, thrown, err := vm.toObject(it)
	if thrown != nil || err != nil {
		return thrown, err
	}
	returnFn, thrown, err := vm.getProperty(o, value.StringKey("return"), it)
	if thrown != nil || err != nil {
		return thrown, err
	}
	if !returnFn.IsObject() {
		return nil, nil
	}
	_, thrown, err = vm.call(returnFn, it, nil)
	return thrown, err
}
