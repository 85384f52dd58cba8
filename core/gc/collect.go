package gc

import (
	"time"

	"github.com/bits-and-blooms/bitset"
	"go.uber.org/zap"
)

// Stats summarizes one Collect cycle, reported via zap and prometheus.
type Stats struct {
	LiveBefore int
	LiveAfter  int
	Freed      int
	WeakFreed  int
}

// Collect runs one full mark-and-sweep cycle (spec.md §4.1):
//
//  1. Mark: every root is traced transitively via Cell.Trace.
//  2. Ephemeron fix-point: WeakMap entries whose key is unmarked are
//     provisionally dead; if marking a reachable value would newly mark a
//     key, iterate until no more keys are newly marked (spec.md's "a
//     weak-map entry keeps its value alive only once its key is already
//     alive through some other path").
//  3. Weak handles pointing at unmarked cells are cleared before any
//     finalizer runs, so a finalizer can never observe a handle that is
//     about to dangle.
//  4. Sweep: unmarked cells run their finalizer (if any) and their id is
//     returned to the free list.
func (h *Heap) Collect() Stats {
	start := time.Now()
	h.mu.Lock()
	n := len(h.cells)
	marks := bitset.New(uint(n))
	h.mu.Unlock()

	visited := make(map[Cell]bool, n)
	var stack []Cell
	visit := func(c Cell) {
		if c == nil || visited[c] {
			return
		}
		visited[c] = true
		stack = append(stack, c)
	}

	h.walkRoots(visit)
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.Trace(visit)
	}

	h.mu.Lock()
	for c, id := range h.ids {
		if visited[c] {
			marks.Set(uint(id))
		}
	}
	h.mu.Unlock()

	h.fixpointEphemerons(visited, visit)
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		c.Trace(visit)
	}
	h.mu.Lock()
	for c, id := range h.ids {
		if visited[c] {
			marks.Set(uint(id))
		}
	}
	h.mu.Unlock()

	h.clearDeadWeakHandles(visited)
	freed, liveAfter := h.sweep(marks, visited)

	h.mu.Lock()
	h.nextGC = uint64(float64(liveAfter)*h.growthFactor) + 64
	h.mu.Unlock()

	dur := time.Since(start)
	stats := Stats{LiveBefore: n, LiveAfter: liveAfter, Freed: freed}
	h.metrics.collectTotal.Inc()
	h.metrics.liveCells.Set(float64(liveAfter))
	h.metrics.pauseSeconds.Observe(dur.Seconds())
	h.log.Info("gc: collect",
		zap.Int("live_bytes", liveAfter),
		zap.Int("collected", freed),
		zap.Duration("duration", dur),
	)
	return stats
}

// fixpointEphemerons implements the weak-map ephemeron rule: repeatedly
// scan every registered WeakMap, and for each entry whose key is already
// marked, mark its value (which may transitively mark other keys). Stop
// when a full pass marks nothing new.
func (h *Heap) fixpointEphemerons(visited map[Cell]bool, visit func(Cell)) {
	h.weakMapsMu.Lock()
	maps := make([]*WeakMap, 0, len(h.weakMaps))
	for wm := range h.weakMaps {
		maps = append(maps, wm)
	}
	h.weakMapsMu.Unlock()

	for {
		before := len(visited)
		for _, wm := range maps {
			wm.mu.Lock()
			for k, v := range wm.entries {
				if !visited[k] {
					continue
				}
				visit(v)
				v.Trace(visit)
			}
			wm.mu.Unlock()
		}
		if len(visited) == before {
			return
		}
	}
}

func (h *Heap) clearDeadWeakHandles(visited map[Cell]bool) {
	h.weakHandlesMu.Lock()
	defer h.weakHandlesMu.Unlock()
	for wh := range h.weakHandles {
		wh.mu.Lock()
		if wh.target != nil && !visited[wh.target] {
			wh.target = nil
			wh.cleared = true
		}
		wh.mu.Unlock()
	}
}

func (h *Heap) sweep(marks *bitset.BitSet, visited map[Cell]bool) (freed, live int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.weakMapsMu.Lock()
	for wm := range h.weakMaps {
		wm.mu.Lock()
		for k := range wm.entries {
			if !visited[k] {
				delete(wm.entries, k)
			}
		}
		wm.mu.Unlock()
	}
	h.weakMapsMu.Unlock()

	for c, id := range h.ids {
		if marks.Test(uint(id)) {
			continue
		}
		if fn, ok := h.finals[c]; ok {
			fn(c)
			delete(h.finals, c)
		}
		delete(h.ids, c)
		h.cells[id] = nil
		h.free = append(h.free, id)
		freed++
	}
	return freed, len(h.cells) - len(h.free)
}
