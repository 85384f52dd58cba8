// Package realm implements spec.md §4.5: a Realm is the self-contained
// intrinsics/global-object/module-registry/job-queue world a script runs
// in; a Context is one engine instance's active frame stack, GC handle,
// and host hooks, and owns exactly one VM.
package realm

import (
	"go.uber.org/zap"

	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/hostapi"
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
)

// Realm owns one global object, its intrinsics table, and a module
// registry. Multiple realms may share one Context (spec.md §4.5
// "Multiple realms may coexist in a context, for sandboxed
// sub-evaluations").
type Realm struct {
	log        *zap.Logger
	Global     *object.Object
	Intrinsics map[string]*object.Object
	Modules    map[string]hostapi.Module
}

// NewRealm allocates a fresh global object and empty intrinsics/module
// tables through heap. Built-in installation is a separate step
// (core/builtins.Install) so this package never imports core/builtins,
// which would otherwise need to import realm back for Context access —
// Context.NewContext wires the two together.
func NewRealm(heap *gc.Heap, log *zap.Logger) (*Realm, error) {
	if log == nil {
		log = zap.NewNop()
	}
	global, err := object.New(heap, shape.NewRoot())
	if err != nil {
		return nil, err
	}
	return &Realm{
		log:        log,
		Global:     global,
		Intrinsics: make(map[string]*object.Object),
		Modules:    make(map[string]hostapi.Module),
	}, nil
}

// Intrinsic looks up an intrinsic by name ("%Array%", "%Object.prototype%", ...).
func (r *Realm) Intrinsic(name string) (*object.Object, bool) {
	o, ok := r.Intrinsics[name]
	return o, ok
}
