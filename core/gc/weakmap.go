package gc

import "sync"

// WeakMap implements the ephemeron table spec.md §4.1/§8 require: an
// entry's value is traced (kept alive) only once its key is already
// reachable through some other root path. Values held here are Cells
// because only Cells participate in this tracer; core/builtins' WeakMap
// exotic object composes this with a separate table for non-Cell (plain
// value.Value) values, which never need marking since Go's own runtime
// GC already keeps them alive as ordinary Go values.
type WeakMap struct {
	mu      sync.Mutex
	entries map[Cell]Cell
}

// NewWeakMap creates an empty ephemeron table registered with the heap.
func (h *Heap) NewWeakMap() *WeakMap {
	wm := &WeakMap{entries: make(map[Cell]Cell)}
	h.registerWeakMap(wm)
	return wm
}

// Set installs or overwrites the entry for key.
func (w *WeakMap) Set(key, value Cell) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.entries[key] = value
}

// Get returns the value for key and whether it is present. A key already
// determined dead by a prior Collect is absent even if Delete was never
// called (Collect's sweep phase removes it).
func (w *WeakMap) Get(key Cell) (Cell, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	v, ok := w.entries[key]
	return v, ok
}

// Delete removes the entry for key, returning whether it was present.
func (w *WeakMap) Delete(key Cell) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.entries[key]; !ok {
		return false
	}
	delete(w.entries, key)
	return true
}

// Len reports the current entry count, including entries a not-yet-run
// Collect would still drop.
func (w *WeakMap) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.entries)
}
