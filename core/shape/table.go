package shape

import "github.com/coreform/jsvm/core/value"

// Slot is the {slot index, attribute flags} descriptor spec.md §3 assigns
// to each PropertyTable entry.
type Slot struct {
	Index int
	Attrs Attrs
}

type tableEntry struct {
	key  value.PropertyKey
	slot Slot
}

// PropertyTable is the ordered mapping from property key to slot
// descriptor shared across a chain of shapes (spec.md §3). It is append-
// only and, while multiple shapes may share one *PropertyTable pointer
// along an unforked insertion chain, it is never mutated by more than one
// live "frontier" shape at a time — see Shape.Insert and DESIGN.md.
type PropertyTable struct {
	entries []tableEntry
	index   map[value.PropertyKey]int // key -> position in entries
}

func newEmptyTable() *PropertyTable {
	return &PropertyTable{index: make(map[value.PropertyKey]int)}
}

// entryAt returns the entry at table position i, assuming i < len(entries).
func (t *PropertyTable) entryAt(i int) tableEntry { return t.entries[i] }

func (t *PropertyTable) len() int { return len(t.entries) }

// Lookup returns the slot descriptor for key, restricted to the first n
// entries (the shape's own view of the shared table; see spec.md's
// "Properties beyond S.property_count in the PropertyTable do not belong
// to this object").
func (t *PropertyTable) Lookup(key value.PropertyKey, n int) (Slot, bool) {
	i, ok := t.index[key]
	if !ok || i >= n {
		return Slot{}, false
	}
	return t.entries[i].slot, true
}

// frontierAppend appends a new entry in place. Only valid when n (the
// calling shape's own entry count) equals len(t.entries) — i.e. this shape
// is the table's current frontier and no sibling has appended past it.
func (t *PropertyTable) frontierAppend(key value.PropertyKey, slot Slot) {
	t.entries = append(t.entries, tableEntry{key: key, slot: slot})
	t.index[key] = len(t.entries) - 1
}

// fork clones the first n entries into a brand-new PropertyTable, used
// when a sibling shape has already extended the shared table with a
// conflicting entry at this shape's next slot (spec.md's "fork").
func (t *PropertyTable) fork(n int) *PropertyTable {
	nt := &PropertyTable{
		entries: make([]tableEntry, n, n), // cap==len: any later append always reallocates
		index:   make(map[value.PropertyKey]int, n),
	}
	copy(nt.entries, t.entries[:n])
	for i, e := range nt.entries {
		nt.index[e.key] = i
	}
	return nt
}

// Keys returns the property keys belonging to the first n entries, in
// insertion order.
func (t *PropertyTable) Keys(n int) []value.PropertyKey {
	keys := make([]value.PropertyKey, 0, n)
	for i := 0; i < n && i < len(t.entries); i++ {
		keys = append(keys, t.entries[i].key)
	}
	return keys
}
