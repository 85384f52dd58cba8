package vm

import (
	"go.uber.org/zap"

	"github.com/coreform/jsvm/core/value"
)

// Config tunes one VM instance's runtime limits (spec.md §4.4 "Runtime
// limits"). Zero value is usable: every limit of 0 is treated as
// unbounded.
type Config struct {
	MaxStackDepth     int
	MaxCallDepth      int
	MaxLoopIterations int
	Logger            *zap.Logger

	// NewError builds a throwable instance of the named native error
	// kind ("TypeError", "RangeError", ...) for language errors core/vm
	// raises internally (non-callable call target, bad coercions, proxy
	// invariant violations, runtime-limit overruns). builtins.Install sets
	// it after VM construction, through VM.SetNewError, once its Error
	// constructors exist, so a script's try/catch sees a real Error
	// instance (SPEC_FULL.md §7
	// "Language errors are *value.Value wrapping an ErrorObject"), not a
	// bare string. Left nil, core/vm's own unit tests (which construct a
	// bare VM with no realm) fall back to a plain string.
	NewError func(kind, msg string) value.Value
}

func (c Config) logger() *zap.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return zap.NewNop()
}
