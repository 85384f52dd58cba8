package gc

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// testCell is a minimal Cell with mutable outgoing edges, used to build
// arbitrary object graphs for these tests.
type testCell struct {
	name string
	refs []Cell
}

func (c *testCell) Trace(visit func(Cell)) {
	for _, r := range c.refs {
		visit(r)
	}
}

func newTestCell(t *testing.T, h *Heap, name string) *testCell {
	t.Helper()
	c := &testCell{name: name}
	_, err := h.Allocate(c)
	require.NoError(t, err)
	return c
}

func TestCollectFreesUnreachable(t *testing.T) {
	h := NewHeap(Config{})
	a := newTestCell(t, h, "a")
	_ = newTestCell(t, h, "garbage")
	root := h.NewRoot(a)
	defer root.Release()

	require.Equal(t, 2, h.LiveCount())
	stats := h.Collect()
	require.Equal(t, 1, stats.LiveAfter)
	require.Equal(t, 1, h.LiveCount())
}

func TestCollectKeepsTransitiveReachable(t *testing.T) {
	h := NewHeap(Config{})
	leaf := newTestCell(t, h, "leaf")
	mid := newTestCell(t, h, "mid")
	mid.refs = append(mid.refs, leaf)
	root := h.NewRoot(mid)
	defer root.Release()

	stats := h.Collect()
	require.Equal(t, 2, stats.LiveAfter, "mid and leaf both survive through the root->mid->leaf chain")
}

func TestCollectHandlesCycles(t *testing.T) {
	h := NewHeap(Config{})
	a := newTestCell(t, h, "a")
	b := newTestCell(t, h, "b")
	a.refs = append(a.refs, b)
	b.refs = append(b.refs, a)
	// No root pins either: the cycle is garbage despite referencing
	// itself, per spec.md's "reachability is from roots, not refcounts".

	stats := h.Collect()
	require.Equal(t, 0, stats.LiveAfter)
	require.Equal(t, 2, stats.Freed)
}

func TestReleasedRootNoLongerPins(t *testing.T) {
	h := NewHeap(Config{})
	a := newTestCell(t, h, "a")
	root := h.NewRoot(a)
	root.Release()

	stats := h.Collect()
	require.Equal(t, 0, stats.LiveAfter)
}

func TestWeakHandleClearedOnCollection(t *testing.T) {
	h := NewHeap(Config{})
	a := newTestCell(t, h, "a")
	wh := h.NewWeak(a)

	_, ok := wh.Get()
	require.True(t, ok, "weak handle observes the live target before any collection")

	h.Collect()

	_, ok = wh.Get()
	require.False(t, ok, "weak handle clears once its unrooted target is collected")
}

func TestWeakHandleSurvivesWhileRooted(t *testing.T) {
	h := NewHeap(Config{})
	a := newTestCell(t, h, "a")
	root := h.NewRoot(a)
	defer root.Release()
	wh := h.NewWeak(a)

	h.Collect()

	got, ok := wh.Get()
	require.True(t, ok)
	require.Same(t, a, got)
}

func TestWeakMapEphemeronKeepsValueAliveOnlyThroughLiveKey(t *testing.T) {
	h := NewHeap(Config{})
	wm := h.NewWeakMap()

	key := newTestCell(t, h, "key")
	val := newTestCell(t, h, "val")
	wm.Set(key, val)
	// key is unrooted: both key and val should die.

	stats := h.Collect()
	require.Equal(t, 0, stats.LiveAfter)
	_, ok := wm.Get(key)
	require.False(t, ok, "sweep drops entries whose key died")
}

func TestWeakMapEphemeronRootedKeyKeepsValueAlive(t *testing.T) {
	h := NewHeap(Config{})
	wm := h.NewWeakMap()

	key := newTestCell(t, h, "key")
	val := newTestCell(t, h, "val")
	wm.Set(key, val)
	root := h.NewRoot(key)
	defer root.Release()

	stats := h.Collect()
	require.Equal(t, 2, stats.LiveAfter, "value survives because its key is reachable through the root")
	got, ok := wm.Get(key)
	require.True(t, ok)
	require.Same(t, val, got)
}

func TestWeakMapChainedEphemeronFixpoint(t *testing.T) {
	// key1 -> (rooted). wm maps key1 -> key2. wm2 maps key2 -> val.
	// val should survive only because key2 is kept alive transitively
	// through the first weak-map's value slot.
	h := NewHeap(Config{})
	wm1 := h.NewWeakMap()
	wm2 := h.NewWeakMap()

	key1 := newTestCell(t, h, "key1")
	key2 := newTestCell(t, h, "key2")
	val := newTestCell(t, h, "val")

	wm1.Set(key1, key2)
	wm2.Set(key2, val)

	root := h.NewRoot(key1)
	defer root.Release()

	stats := h.Collect()
	require.Equal(t, 3, stats.LiveAfter)
	_, ok := wm2.Get(key2)
	require.True(t, ok)
}

func TestAllocateFailsAtHardCeiling(t *testing.T) {
	h := NewHeap(Config{MaxCells: 2})
	_, err := h.Allocate(&testCell{name: "a"})
	require.NoError(t, err)
	_, err = h.Allocate(&testCell{name: "b"})
	require.NoError(t, err)

	_, err = h.Allocate(&testCell{name: "c"})
	require.ErrorIs(t, err, ErrHeapExhausted)
}

func TestCellsSnapshotsLiveSetAndExcludesFreed(t *testing.T) {
	h := NewHeap(Config{})
	a := newTestCell(t, h, "a")
	garbage := newTestCell(t, h, "garbage")
	root := h.NewRoot(a)
	defer root.Release()

	require.ElementsMatch(t, []Cell{a, garbage}, h.Cells())

	h.Collect()
	require.Equal(t, []Cell{a}, h.Cells())
}

func TestGCSoundnessProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := NewHeap(Config{})
		n := rapid.IntRange(1, 12).Draw(t, "n")
		cells := make([]*testCell, n)
		for i := range cells {
			cells[i] = newTestCell(t, h, "c")
		}
		// Random edges, including possible self/cycles.
		edgeCount := rapid.IntRange(0, n*2).Draw(t, "edges")
		for i := 0; i < edgeCount; i++ {
			from := rapid.IntRange(0, n-1).Draw(t, "from")
			to := rapid.IntRange(0, n-1).Draw(t, "to")
			cells[from].refs = append(cells[from].refs, cells[to])
		}
		rootedIdx := rapid.SliceOfDistinct(rapid.IntRange(0, n-1), func(i int) int { return i }).Draw(t, "roots")

		var roots []*RootHandle
		rootSet := make(map[int]bool)
		for _, i := range rootedIdx {
			roots = append(roots, h.NewRoot(cells[i]))
			rootSet[i] = true
		}

		reachable := make(map[int]bool)
		var mark func(int)
		mark = func(i int) {
			if reachable[i] {
				return
			}
			reachable[i] = true
			for _, r := range cells[i].refs {
				for j, c := range cells {
					if c == r {
						mark(j)
					}
				}
			}
		}
		for i := range rootSet {
			mark(i)
		}

		stats := h.Collect()
		require.Equal(t, len(reachable), stats.LiveAfter, "collector must keep exactly the transitively-reachable set")

		for _, r := range roots {
			r.Release()
		}
	})
}
