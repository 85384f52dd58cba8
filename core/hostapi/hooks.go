// Package hostapi declares the host hook surface of spec.md §6: the
// pluggable function fields a host fills in to drive module resolution,
// the job queue, randomness, the clock, and uncaught-exception/rejection
// reporting, plus the optional debugger hooks. Every field is a plain Go
// function value — the idiomatic shape for a pluggable boundary that
// needs no state of its own.
package hostapi

import "github.com/coreform/jsvm/core/value"

// Module is whatever the host's module loader returns; the core treats
// it as opaque per spec.md §6 ("The AST shape is host-defined; the core
// treats it as opaque" applies equally to compiled modules).
type Module any

// PauseDecision is a debugger hook's verdict: resume immediately, or
// block the calling goroutine until the host signals resume (the host is
// expected to implement that blocking itself; the core only asks the
// question and acts on the answer for this one step).
type PauseDecision int

const (
	Continue PauseDecision = iota
	Pause
)

// DebugHooks are optional; a nil field means "never pause" (spec.md §6
// "each returning a pause/continue decision").
type DebugHooks struct {
	OnEnterFrame        func(frameName string) PauseDecision
	OnExitFrame         func(frameName string) PauseDecision
	OnStep              func(pc int) PauseDecision
	OnDebuggerStatement func() PauseDecision
	OnBreakpoint        func(pc int) PauseDecision
}

// Hooks is the full host boundary a Context is constructed with. Every
// field may be left nil: core/realm substitutes its own job queue for
// JobEnqueue/JobDrain, core/builtins falls back to its own generator and
// clock for Random and UTCNow, and the rest are simply skipped when
// unset. TZOffset is not read anywhere.
type Hooks struct {
	// ModuleLoader resolves `import specifier` relative to referrer.
	ModuleLoader func(referrer, specifier string) (Module, error)

	// JobEnqueue/JobDrain let the host control exactly when microtasks
	// run; core/realm's own core/job.Queue is the default implementation
	// wired in when these are left nil.
	JobEnqueue func(run func())
	JobDrain   func()

	// Random backs Math.random (spec.md §6); non-cryptographic.
	Random func() float64

	// UTCNow backs Date's clock. TZOffset is not consulted: Date has no
	// local-time conversion and its getters report UTC.
	UTCNow   func() int64
	TZOffset func(ms int64) int

	// OnUncaughtException/OnUnhandledRejection report terminal script
	// failures to the host (spec.md §7 "User-visible behavior").
	OnUncaughtException   func(v value.Value)
	OnUnhandledRejection  func(v value.Value)

	Debug DebugHooks
}
