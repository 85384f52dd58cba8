package vm

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/coreform/jsvm/core/value"
)

// ThrowSignal carries a script-visible thrown value up through Dispatch's
// return triple (spec.md §7: "Dispatch returns (value, *ThrowSignal,
// error) — exactly one of the three is non-nil"). Dispatch never returns
// it in the error slot, and the exception machinery of §4.4 only ever
// inspects this type. It implements error so a host (realm's Context.Eval)
// can return an uncaught throw as a Go error.
type ThrowSignal struct {
	Value value.Value
}

func (t *ThrowSignal) Error() string {
	return fmt.Sprintf("uncaught: %s", t.Value.GoString())
}

// RuntimeLimitError describes a runtime-limit violation (spec.md §4.4
// "exceeding a cap throws a runtime-limit error"). newRuntimeLimitThrow
// throws a RangeError carrying its Error() text as the message, so
// script-level try/catch observes it like any other exception.
type RuntimeLimitError struct {
	Limit string // "stack-depth", "call-depth", "loop-iterations", "interrupted"
}

func (e *RuntimeLimitError) Error() string {
	return fmt.Sprintf("vm: runtime limit exceeded: %s", e.Limit)
}

func (vm *VM) newRuntimeLimitThrow(limit string) *ThrowSignal {
	vm.log.Warn("vm: runtime limit exceeded", zap.String("limit", limit))
	return vm.newError("RangeError", (&RuntimeLimitError{Limit: limit}).Error())
}

// newError builds a catchable ThrowSignal for a language error core/vm
// raises internally, routing through cfg.NewError when core/realm has
// wired one so script sees a real Error instance instead of a bare
// string (SPEC_FULL.md §7).
func (vm *VM) newError(kind, msg string) *ThrowSignal {
	if vm.cfg.NewError != nil {
		return &ThrowSignal{Value: vm.cfg.NewError(kind, msg)}
	}
	return &ThrowSignal{Value: value.NewStringGo(kind + ": " + msg)}
}

// Fatal errors are host-level, never script-catchable (spec.md §4.4
// "Host-level fatal errors... unwind the interpreter and surface to the
// host"): heap exhaustion bubbling up from core/gc, or an internal
// invariant violation in the bytecode stream itself.
var (
	ErrInvalidOpcode  = errors.New("vm: invalid opcode")
	ErrStackUnderflow = errors.New("vm: operand stack underflow")
	ErrNoActiveFrame  = errors.New("vm: no active frame")
)
