package object

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/value"
)

// sparseThreshold is the density below which dense storage converts to
// sparse (spec.md §3: "density falls below a threshold (e.g. < ~25%
// filled)").
const sparseThreshold = 0.25

// Elements holds an Object's integer-indexed own properties (array index
// properties, spec.md §3 "optional integer-indexed elements vector").
// Dense mode is a flat slice; sparse mode pairs a populated-index bitmap
// (for O(popcount) density checks and ordered enumeration over compressed
// runs) with a map for the actual values, since roaring bitmaps track
// membership, not payloads.
type Elements struct {
	dense  []value.Value // nil once converted to sparse
	sparse map[uint32]value.Value
	index  *roaring.Bitmap // non-nil only in sparse mode
	forced bool            // true once a non-writable/accessor index forced sparse mode
}

func (e *Elements) isSparse() bool { return e.sparse != nil }

// Get returns the value at idx and whether it is populated.
func (e *Elements) Get(idx uint32) (value.Value, bool) {
	if e.isSparse() {
		v, ok := e.sparse[idx]
		return v, ok
	}
	if int(idx) < len(e.dense) {
		// Dense mode has no hole-tracking bitmap: an index that was never
		// written and one explicitly set to undefined are indistinguishable,
		// trading hole fidelity for O(1) access below the density threshold.
		return e.dense[idx], true
	}
	return value.UndefinedValue, false
}

// Set installs idx=v, converting to sparse mode first if doing so dense
// would fall below the density threshold.
func (e *Elements) Set(idx uint32, v value.Value) {
	if !e.isSparse() {
		if e.shouldConvert(idx) {
			e.convertToSparse()
		} else {
			for uint32(len(e.dense)) <= idx {
				e.dense = append(e.dense, value.UndefinedValue)
			}
			e.dense[idx] = v
			return
		}
	}
	e.sparse[idx] = v
	e.index.Add(idx)
}

// ForceSparse converts to sparse mode immediately, used when a
// non-writable or accessor index property is installed (spec.md §3:
// "or when setting a non-writable/accessor index property").
func (e *Elements) ForceSparse() {
	e.forced = true
	if !e.isSparse() {
		e.convertToSparse()
	}
}

func (e *Elements) shouldConvert(newIdx uint32) bool {
	if e.forced {
		return true
	}
	span := int(newIdx) + 1
	if span < 16 {
		return false // too small a span for density to matter yet
	}
	populated := 0
	for _, v := range e.dense {
		if !v.IsUndefined() {
			populated++
		}
	}
	return float64(populated+1)/float64(span) < sparseThreshold
}

func (e *Elements) convertToSparse() {
	e.sparse = make(map[uint32]value.Value, len(e.dense))
	e.index = roaring.New()
	for i, v := range e.dense {
		if !v.IsUndefined() {
			e.sparse[uint32(i)] = v
			e.index.Add(uint32(i))
		}
	}
	e.dense = nil
}

// Delete removes idx, returning whether it had been populated.
func (e *Elements) Delete(idx uint32) bool {
	if e.isSparse() {
		if _, ok := e.sparse[idx]; !ok {
			return false
		}
		delete(e.sparse, idx)
		e.index.Remove(idx)
		return true
	}
	if int(idx) >= len(e.dense) {
		return false
	}
	had := !e.dense[idx].IsUndefined()
	e.dense[idx] = value.UndefinedValue
	// Trim trailing holes so an index past the last populated one reads as
	// absent again.
	for n := len(e.dense); n > 0 && e.dense[n-1].IsUndefined(); n = len(e.dense) {
		e.dense = e.dense[:n-1]
	}
	return had
}

// Keys returns populated indices as canonical string PropertyKeys in
// ascending numeric order (spec.md's ordered-enumeration requirement for
// integer-indexed properties precedes string-keyed ones in ownKeys).
func (e *Elements) Keys() []value.PropertyKey {
	var keys []value.PropertyKey
	if e.isSparse() {
		it := e.index.Iterator()
		for it.HasNext() {
			idx := it.Next()
			keys = append(keys, value.StringKey(formatIndex(idx)))
		}
		return keys
	}
	for i, v := range e.dense {
		if !v.IsUndefined() {
			keys = append(keys, value.StringKey(formatIndex(uint32(i))))
		}
	}
	return keys
}

// Trace marks every object reference held in elements.
func (e *Elements) Trace(visit func(gc.Cell)) {
	if e.isSparse() {
		idxs := make([]uint32, 0, len(e.sparse))
		for idx := range e.sparse {
			idxs = append(idxs, idx)
		}
		sort.Slice(idxs, func(i, j int) bool { return idxs[i] < idxs[j] })
		for _, idx := range idxs {
			traceValue(e.sparse[idx], visit)
		}
		return
	}
	for _, v := range e.dense {
		traceValue(v, visit)
	}
}

func formatIndex(i uint32) string {
	// Array indices never need leading zeros or signs; a small manual
	// itoa avoids pulling in strconv for the hot ownKeys/enumeration path.
	if i == 0 {
		return "0"
	}
	var buf [10]byte
	pos := len(buf)
	for i > 0 {
		pos--
		buf[pos] = byte('0' + i%10)
		i /= 10
	}
	return string(buf[pos:])
}
