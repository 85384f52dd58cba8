package vm

import (
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/value"
)

// generatorState is a generator's suspended-coroutine channel pair. Rather
// than the corpus's manual "detach the operand-stack slice, save the PC,
// reattach on resume" approach (spec.md §4.4), a generator body runs on
// its own goroutine against its own *VM instance sharing this engine's
// heap; the goroutine's own call stack IS the suspended continuation, and
// a strict, unbuffered handoff over yieldCh/resumeCh enforces that exactly
// one of {caller, generator} goroutine ever runs at a time — preserving
// "single-threaded cooperative" (spec.md §5) despite the extra goroutine.
// See DESIGN.md for why this was chosen over manual stack slicing.
type generatorState struct {
	yieldCh  chan generatorYield
	resumeCh chan generatorResume
	started  bool
	done     bool
}

type generatorYield struct {
	value  value.Value
	thrown *ThrowSignal
	err    error
	done   bool
}

type resumeKind int

const (
	resumeNext resumeKind = iota
	resumeThrow
	resumeReturn
)

type generatorResume struct {
	kind  resumeKind
	value value.Value
}

// earlyReturn is the control-flow signal OpYield uses to unwind dispatch
// immediately when resumed via generator.return(v): it behaves like an
// OpReturn executed right at the yield point, skipping any remaining
// opcodes in the frame (a documented simplification: pending `finally`
// blocks in the generator body are not run on a driven .return()).
type earlyReturn struct {
	value value.Value
}

// startGenerator builds the generator object (next/return/throw) and
// spawns its body's goroutine, parked until the first next() call.
func (vm *VM) startGenerator(fn *object.Object, cm *closureMethods, this value.Value, args []value.Value) (value.Value, *ThrowSignal, error) {
	gs := &generatorState{
		yieldCh:  make(chan generatorYield),
		resumeCh: make(chan generatorResume),
	}

	genVM := &VM{heap: vm.heap, cfg: vm.cfg, log: vm.log, global: vm.global}

	go func() {
		first := <-gs.resumeCh
		if first.kind == resumeReturn {
			gs.yieldCh <- generatorYield{value: first.value, done: true}
			return
		}
		genVM.activeGen = gs
		v, thrown, err := genVM.callCodeBlock(cm.code, this, value.UndefinedValue, cm.upvalues, args)
		gs.yieldCh <- generatorYield{value: v, thrown: thrown, err: err, done: true}
	}()

	genObjShape := vm.newObjectShape()
	genObj, err := object.New(vm.heap, genObjShape)
	if err != nil {
		return value.UndefinedValue, nil, err
	}
	install := func(name string, k resumeKind) error {
		nf, err := object.NewNativeFunction(vm.heap, vm.newObjectShape(), name, func(_ value.Value, callArgs []value.Value) (value.Value, error) {
			arg := value.UndefinedValue
			if len(callArgs) > 0 {
				arg = callArgs[0]
			}
			return vm.driveGenerator(genObj, gs, k, arg)
		}, nil)
		if err != nil {
			return err
		}
		return genObj.DefineOwnProperty(value.StringKey(name), object.PropertyDescriptor{
			Value: nf.Value(), HasValue: true,
		})
	}
	if err := install("next", resumeNext); err != nil {
		return value.UndefinedValue, nil, err
	}
	if err := install("throw", resumeThrow); err != nil {
		return value.UndefinedValue, nil, err
	}
	if err := install("return", resumeReturn); err != nil {
		return value.UndefinedValue, nil, err
	}
	return genObj.Value(), nil, nil
}

// driveGenerator implements one of next(v)/throw(v)/return(v): send a
// resume record, wait for the next yield or completion, and materialize
// the ECMAScript `{value, done}` IteratorResult as a plain object. Calling
// driveGenerator on an already-finished generator (gs.done) always
// returns {value: undefined, done: true} without waking the goroutine
// again (it has already exited).
func (vm *VM) driveGenerator(genObj *object.Object, gs *generatorState, kind resumeKind, arg value.Value) (value.Value, error) {
	if gs.done {
		return vm.iterResult(value.UndefinedValue, true)
	}
	gs.resumeCh <- generatorResume{kind: kind, value: arg}
	step := <-gs.yieldCh
	if step.done {
		gs.done = true
	}
	if step.err != nil {
		return value.Value{}, step.err
	}
	if step.thrown != nil {
		return value.Value{}, step.thrown
	}
	return vm.iterResult(step.value, step.done)
}

// iterResult builds a fresh {value, done} object, the shape every
// iterator-protocol step result takes.
func (vm *VM) iterResult(v value.Value, done bool) (value.Value, error) {
	o, err := object.New(vm.heap, vm.newObjectShape())
	if err != nil {
		return value.Value{}, err
	}
	if err := o.DefineOwnProperty(value.StringKey("value"), object.PropertyDescriptor{Value: v, HasValue: true}); err != nil {
		return value.Value{}, err
	}
	if err := o.DefineOwnProperty(value.StringKey("done"), object.PropertyDescriptor{Value: value.NewBool(done), HasValue: true}); err != nil {
		return value.Value{}, err
	}
	return o.Value(), nil
}

// yield is OpYield's implementation: suspend the active generator frame
// by handing the yielded value to the driving goroutine and blocking for
// the next resume.
func (vm *VM) yield(v value.Value) (value.Value, *earlyReturn, *ThrowSignal) {
	gs := vm.activeGen
	if gs == nil {
		// `yield` outside a generator body is a compile-time error in real
		// ECMAScript; the VM treats it as a no-op pass-through so a
		// malformed CodeBlock can't wedge the interpreter.
		return v, nil, nil
	}
	gs.yieldCh <- generatorYield{value: v}
	resume := <-gs.resumeCh
	switch resume.kind {
	case resumeReturn:
		return value.UndefinedValue, &earlyReturn{value: resume.value}, nil
	case resumeThrow:
		return value.UndefinedValue, nil, &ThrowSignal{Value: resume.value}
	default:
		return resume.value, nil, nil
	}
}
