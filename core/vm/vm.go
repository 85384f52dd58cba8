package vm

import (
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// VM is one engine instance's interpreter: a shared operand stack plus the
// active frame chain. It is not safe for concurrent use from more than one
// goroutine at a time (spec.md §5 "single-threaded cooperative per engine
// instance"); the interrupt flag is the one field a second goroutine (a
// host watchdog) is allowed to touch concurrently.
type VM struct {
	heap   *gc.Heap
	cfg    Config
	log    *zap.Logger
	global *object.Object

	stack []value.Value
	frame *Frame

	callDepth      int
	loopIterations int

	interrupted atomic.Bool

	// activeGen is non-nil only for a VM instance driving a generator
	// body's goroutine (see generator.go); OpYield looks here to find the
	// channel pair it suspends on.
	activeGen *generatorState
}

// New constructs a VM bound to heap, with global as the global object
// (property-get/set-global opcodes resolve against it).
func New(heap *gc.Heap, global *object.Object, cfg Config) *VM {
	return &VM{heap: heap, cfg: cfg, log: cfg.logger(), global: global}
}

// Heap returns the VM's heap, so core/realm/core/builtins can allocate
// objects through the same allocator the running bytecode uses.
func (vm *VM) Heap() *gc.Heap { return vm.heap }

// Global returns the VM's global object.
func (vm *VM) Global() *object.Object { return vm.global }

// SetNewError installs the error-construction hook (see Config.NewError)
// after construction, once core/builtins has built the Error taxonomy
// this VM's own construction order needs: core/realm builds the VM
// before builtins.Install runs, so the closure can only be wired in
// afterward.
func (vm *VM) SetNewError(fn func(kind, msg string) value.Value) {
	vm.cfg.NewError = fn
}

// Interrupt asks the running Dispatch loop to stop before its next
// instruction (the flag is checked on every iteration), raising a
// catchable runtime-limit-style exception. Safe to call from another
// goroutine.
func (vm *VM) Interrupt() { vm.interrupted.Store(true) }

func (vm *VM) clearInterrupt() { vm.interrupted.Store(false) }

func (vm *VM) push(v value.Value) {
	vm.stack = append(vm.stack, v)
}

// pushChecked is push with the MaxStackDepth limit enforced; OpConst and
// OpDup call this instead of push, and every other opcode pushes
// unchecked.
func (vm *VM) pushChecked(v value.Value) (*ThrowSignal, error) {
	if vm.cfg.MaxStackDepth > 0 && len(vm.stack) >= vm.cfg.MaxStackDepth {
		return vm.newRuntimeLimitThrow("stack-depth"), nil
	}
	vm.push(v)
	return nil, nil
}

func (vm *VM) pop() (value.Value, error) {
	n := len(vm.stack)
	if n == 0 {
		return value.UndefinedValue, ErrStackUnderflow
	}
	v := vm.stack[n-1]
	vm.stack = vm.stack[:n-1]
	return v, nil
}

func (vm *VM) peek(depth int) (value.Value, error) {
	i := len(vm.stack) - 1 - depth
	if i < 0 {
		return value.UndefinedValue, ErrStackUnderflow
	}
	return vm.stack[i], nil
}

// Run executes code as a fresh top-level call and drives Dispatch to
// completion, returning exactly one of (result, throw, fatal error) per
// spec.md §7.
func (vm *VM) Run(code *CodeBlock, this value.Value, args []value.Value) (value.Value, *ThrowSignal, error) {
	vm.clearInterrupt()
	return vm.callCodeBlock(code, this, value.UndefinedValue, nil, args)
}

// callCodeBlock pushes a fresh frame for code, binds params from args, and
// dispatches until it returns, throws, or hits a limit/fatal error.
func (vm *VM) callCodeBlock(code *CodeBlock, this, newTarget value.Value, upvalues []*upvalueCell, args []value.Value) (value.Value, *ThrowSignal, error) {
	if vm.cfg.MaxCallDepth > 0 && vm.callDepth >= vm.cfg.MaxCallDepth {
		return value.UndefinedValue, vm.newRuntimeLimitThrow("call-depth"), nil
	}

	base := len(vm.stack)
	f := newFrame(code, base, this, newTarget, upvalues, vm.frame)
	for i := 0; i < code.NumParams; i++ {
		if i < len(args) {
			f.locals[i] = args[i]
		}
	}
	vm.frame = f
	vm.callDepth++
	defer func() {
		vm.callDepth--
		vm.frame = f.caller
		vm.stack = vm.stack[:base]
	}()

	return vm.dispatch(f)
}

// newObjectShape is the empty root shape every OpMakeObject/OpMakeArray
// starts from; plain objects get no prototype wired here (core/realm
// installs %Object.prototype% via SetPrototypeOf once a realm exists).
func (vm *VM) newObjectShape() *shape.Shape { return shape.NewRoot() }
