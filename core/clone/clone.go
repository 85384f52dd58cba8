// Package clone implements structured clone (spec.md §4.3): an
// identity-preserving deep copy of a Value graph that transfers listed
// ArrayBuffers and rejects non-cloneable values. The identity-preserving
// walk is grounded on the teacher's own pattern for deep-copying a trie
// of account objects during state snapshots (a visited-set keyed by
// pointer identity so a node reachable twice in the source is linked,
// not duplicated, in the copy) — see DESIGN.md.
package clone

import (
	"github.com/pkg/errors"

	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// ErrNotCloneable is returned for functions and other host objects the
// algorithm has no serializable representation for (spec.md §4.3
// "rejects non-cloneable types... with a clone error").
var ErrNotCloneable = errors.New("clone: value is not structured-cloneable")

// Options configures one Clone call.
type Options struct {
	// Transfer lists ArrayBuffer values whose ownership moves to the
	// clone instead of being copied (spec.md §4.3, Scenario 3).
	Transfer []value.Value
}

type cloner struct {
	heap     *gc.Heap
	visited  map[*object.Object]*object.Object
	transfer map[*object.ArrayBuffer]bool
}

// Clone deep-copies v, preserving reference identity for any node
// reachable more than once (including cycles, spec.md §8 "Structured-
// clone identity preservation", Scenario 2).
func Clone(h *gc.Heap, v value.Value, opts Options) (value.Value, error) {
	c := &cloner{
		heap:     h,
		visited:  make(map[*object.Object]*object.Object),
		transfer: make(map[*object.ArrayBuffer]bool),
	}
	for _, t := range opts.Transfer {
		if o, ok := object.FromValue(t); ok {
			if buf, ok := object.AsArrayBuffer(o); ok {
				c.transfer[buf] = true
			}
		}
	}
	return c.cloneValue(v)
}

func (c *cloner) cloneValue(v value.Value) (value.Value, error) {
	if !v.IsObject() {
		// Primitives (undefined, null, boolean, number, bigint, string,
		// symbol) are already immutable value types; cloning is a no-op
		// copy. Symbols are cloned as themselves too: the clone lives in
		// the same heap/realm, so symbol identity is preserved exactly as
		// a same-realm clone should.
		return v, nil
	}
	o, _ := object.FromValue(v)
	clonedObj, err := c.cloneObject(o)
	if err != nil {
		return value.UndefinedValue, err
	}
	return clonedObj.Value(), nil
}

func (c *cloner) cloneObject(o *object.Object) (*object.Object, error) {
	if existing, ok := c.visited[o]; ok {
		return existing, nil
	}
	if o.Callable() {
		return nil, ErrNotCloneable
	}
	if buf, ok := object.AsArrayBuffer(o); ok {
		return c.cloneArrayBuffer(o, buf)
	}

	switch o.Class() {
	case "Array":
		return c.cloneArray(o)
	default:
		return c.clonePlainObject(o)
	}
}

func (c *cloner) cloneArrayBuffer(src *object.Object, buf *object.ArrayBuffer) (*object.Object, error) {
	var clonedBuf *object.ArrayBuffer
	if c.transfer[buf] {
		clonedBuf = object.NewArrayBufferFromBytes(buf.Detach())
	} else {
		data := buf.Bytes()
		dup := make([]byte, len(data))
		copy(dup, data)
		clonedBuf = object.NewArrayBufferFromBytes(dup)
	}
	dst, err := object.NewArrayBufferObject(c.heap, shape.NewRoot(), clonedBuf)
	if err != nil {
		return nil, err
	}
	c.visited[src] = dst
	return dst, nil
}

func (c *cloner) cloneArray(src *object.Object) (*object.Object, error) {
	dst, err := object.NewArray(c.heap, shape.NewRoot(), 0)
	if err != nil {
		return nil, err
	}
	c.visited[src] = dst
	for _, key := range src.OwnPropertyKeys() {
		desc, ok := src.GetOwnProperty(key)
		if !ok || !desc.HasValue {
			continue // skip accessor properties: cloning invokes no getters
		}
		clonedVal, err := c.cloneValue(desc.Value)
		if err != nil {
			return nil, err
		}
		if err := dst.DefineOwnProperty(key, object.PropertyDescriptor{
			Value: clonedVal, Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
		}); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

func (c *cloner) clonePlainObject(src *object.Object) (*object.Object, error) {
	dst, err := object.New(c.heap, shape.NewRoot())
	if err != nil {
		return nil, err
	}
	c.visited[src] = dst
	for _, key := range src.OwnPropertyKeys() {
		desc, ok := src.GetOwnProperty(key)
		if !ok || !desc.HasValue || !desc.Attrs.IsEnumerable() {
			continue
		}
		clonedVal, err := c.cloneValue(desc.Value)
		if err != nil {
			return nil, err
		}
		if err := dst.DefineOwnProperty(key, object.PropertyDescriptor{
			Value: clonedVal, Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
		}); err != nil {
			return nil, err
		}
	}
	return dst, nil
}
