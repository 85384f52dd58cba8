package gc

import "sync"

// WeakHandle references a Cell without keeping it alive. Get returns
// (nil, false) once Collect has determined the target unreachable
// (spec.md §4.1 "a weak reference observed after its target's collection
// reads as absent, never as a dangling pointer").
type WeakHandle struct {
	mu      sync.Mutex
	target  Cell
	cleared bool
}

// NewWeak registers a weak handle to c.
func (h *Heap) NewWeak(c Cell) *WeakHandle {
	wh := &WeakHandle{target: c}
	h.registerWeakHandle(wh)
	return wh
}

// Get returns the target and true, or (nil, false) if it has been
// collected.
func (w *WeakHandle) Get() (Cell, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.cleared {
		return nil, false
	}
	return w.target, true
}
