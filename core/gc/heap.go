package gc

import (
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrHeapExhausted is the fatal error returned by Allocate once the heap's
// live cell count has reached its hard cell limit (spec.md §4.1
// "out-of-memory is fatal, not a thrown TypeError").
var ErrHeapExhausted = errors.New("gc: heap exhausted")

// Config tunes the collector. Zero value is usable: MaxCells of 0 means
// unbounded, GrowthFactor of 0 defaults to 1.5.
type Config struct {
	// MaxCells is the hard ceiling on live+garbage cells. 0 disables it.
	MaxCells uint64
	// GrowthFactor sets the next collection threshold to GrowthFactor
	// times the live set measured at the end of the previous sweep.
	GrowthFactor float64
	Logger       *zap.Logger
}

// Heap owns every Cell the engine allocates and drives mark-and-sweep
// collection over them, per spec.md §4.1.
type Heap struct {
	log          *zap.Logger
	maxCells     uint64
	growthFactor float64

	mu     sync.Mutex
	cells  []Cell          // arena: index i is cell id i
	ids    map[Cell]uint64 // reverse lookup
	free   []uint64        // ids whose slot is free for reuse
	finals map[Cell]Finalizer
	nextGC uint64 // cell count at which the next Collect is advisable

	rootsMu  sync.Mutex
	rootHead *RootHandle

	frameRoots FrameRootsFunc

	weakHandlesMu sync.Mutex
	weakHandles   map[*WeakHandle]struct{}

	weakMapsMu sync.Mutex
	weakMaps   map[*WeakMap]struct{}

	metrics *metricsSet
}

// NewHeap constructs a Heap ready to allocate.
func NewHeap(cfg Config) *Heap {
	gf := cfg.GrowthFactor
	if gf <= 1.0 {
		gf = 1.5
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Heap{
		log:          log,
		maxCells:     cfg.MaxCells,
		growthFactor: gf,
		ids:          make(map[Cell]uint64),
		finals:       make(map[Cell]Finalizer),
		nextGC:       256,
		weakHandles:  make(map[*WeakHandle]struct{}),
		weakMaps:     make(map[*WeakMap]struct{}),
		metrics:      newMetricsSet(),
	}
}

// Allocate registers c with the heap and returns it. If the heap is at or
// over its advisory threshold, Allocate first runs a collection; reaching
// the hard MaxCells ceiling does not itself trigger one. If the live cell
// count (including any garbage not yet collected) is at MaxCells, it
// returns ErrHeapExhausted (a fatal condition per spec.md, never a thrown
// TypeError — the caller is expected to abort the program, not the
// script's current statement).
func (h *Heap) Allocate(c Cell) (Cell, error) {
	h.mu.Lock()
	live := uint64(len(h.cells) - len(h.free))
	needsCollect := live >= h.nextGC
	h.mu.Unlock()

	if needsCollect {
		h.Collect()
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.maxCells != 0 && uint64(len(h.cells)-len(h.free)) >= h.maxCells {
		h.metrics.oomTotal.Inc()
		return nil, errors.Wrap(ErrHeapExhausted, "allocate")
	}

	var id uint64
	if n := len(h.free); n > 0 {
		id = h.free[n-1]
		h.free = h.free[:n-1]
		h.cells[id] = c
	} else {
		id = uint64(len(h.cells))
		h.cells = append(h.cells, c)
	}
	h.ids[c] = id
	h.metrics.allocTotal.Inc()
	h.metrics.liveCells.Set(float64(len(h.cells) - len(h.free)))
	return c, nil
}

// SetFinalizer registers fn to run once if c is found unreachable by a
// future Collect. Only one finalizer per cell is retained.
func (h *Heap) SetFinalizer(c Cell, fn Finalizer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.finals[c] = fn
}

func (h *Heap) registerWeakHandle(wh *WeakHandle) {
	h.weakHandlesMu.Lock()
	defer h.weakHandlesMu.Unlock()
	h.weakHandles[wh] = struct{}{}
}

func (h *Heap) registerWeakMap(wm *WeakMap) {
	h.weakMapsMu.Lock()
	defer h.weakMapsMu.Unlock()
	h.weakMaps[wm] = struct{}{}
}

// LiveCount returns the number of currently-registered (non-free) cells.
func (h *Heap) LiveCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.cells) - len(h.free)
}

// Cells returns a snapshot slice of every currently-live cell, for host
// tooling (e.g. cmd/jsvm's heap-top report) that needs to break the live
// set down by concrete type. The slice is a copy; it does not track
// later allocations or collections.
func (h *Heap) Cells() []Cell {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Cell, 0, len(h.cells)-len(h.free))
	for _, c := range h.cells {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}
