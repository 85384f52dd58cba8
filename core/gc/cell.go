// Package gc implements the tracing mark-and-sweep collector of spec.md
// §4.1: root enumeration, transitive mark, sweep-with-finalizers, weak
// handles, and weak-map ephemeron semantics.
//
// Scope: the collector manages heap Cells — in this engine, exclusively
// *object.Object instances (and the root/weak handles that reference
// them). Strings, Symbols and BigInts are immutable value types left to
// the host Go runtime's own collector; none of spec.md's testable GC
// properties (§8 "GC soundness", "Weak-map ephemeron") concern primitive
// interning, only object-graph liveness, so scoping the tracer to objects
// keeps the rooting discipline exercised precisely where it's observable.
package gc

// Cell is anything the tracing collector owns: an allocated heap object
// that can enumerate the other Cells it directly references.
type Cell interface {
	// Trace invokes visit on every Cell this cell directly owns a pointer
	// to. Trace must not allocate a new Cell (spec.md's "holding a raw
	// heap pointer across a potential allocation point is a safety
	// violation" applies doubly during marking).
	Trace(visit func(Cell))
}

// Finalizer is run once, in unspecified order within one sweep, for each
// Cell found unreachable (spec.md §4.1 "Finalization ordering").
type Finalizer func(self Cell)
