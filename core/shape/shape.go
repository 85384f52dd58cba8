// Package shape implements the persistent shape (hidden-class) transition
// tree described in spec.md §3/§4.2: a root shape with no prototype and an
// empty PropertyTable, extended by prototype/insert/delete/attribute-change
// transitions that share PropertyTables until a conflicting insert forces a
// fork.
package shape

import (
	"errors"

	arc "github.com/hashicorp/golang-lru/arc/v2"

	"github.com/coreform/jsvm/core/value"
)

// ErrNoSuchProperty is returned by UpdateAttributes/Delete for a key the
// shape's view of the PropertyTable does not contain.
var ErrNoSuchProperty = errors.New("shape: no such property")

const defaultTransitionCacheSize = 64

type transitionKind uint8

const (
	transInsert transitionKind = iota
	transDelete
	transProto
	transAttrs
)

type transitionKey struct {
	kind  transitionKind
	key   value.PropertyKey
	attrs Attrs
	proto any
}

// Shape is one node of the transition tree. Forward transition edges are
// held in an adaptive-replacement cache (spec.md's "weak forward transition
// edges": an evicted entry is simply a forgotten edge, re-derived on demand
// by building a fresh child shape).
type Shape struct {
	root   *Shape
	parent *Shape
	proto  any // nil, or an object reference installed by package object
	table  *PropertyTable

	entryCount int // number of PropertyTable entries belonging to this shape
	slotCount  int // total storage slots belonging to this shape ("property_count")

	transitions *arc.ARCCache[transitionKey, *Shape]
	cacheSize   int
}

// NewRoot creates the root of a shape tree: no prototype, empty table.
func NewRoot() *Shape {
	s := &Shape{table: newEmptyTable(), cacheSize: defaultTransitionCacheSize}
	s.root = s
	s.transitions, _ = arc.NewARC[transitionKey, *Shape](s.cacheSize)
	return s
}

func (s *Shape) newChild(proto any, table *PropertyTable, entryCount, slotCount int) *Shape {
	c := &Shape{
		root:       s.root,
		parent:     s,
		proto:      proto,
		table:      table,
		entryCount: entryCount,
		slotCount:  slotCount,
		cacheSize:  s.cacheSize,
	}
	c.transitions, _ = arc.NewARC[transitionKey, *Shape](c.cacheSize)
	return c
}

func (s *Shape) Prototype() any   { return s.proto }
func (s *Shape) PropertyCount() int { return s.slotCount }
func (s *Shape) Parent() *Shape   { return s.parent }

// Lookup implements spec.md's lookup(object, key): fetch the slot
// descriptor, rejecting entries beyond this shape's property_count.
func (s *Shape) Lookup(key value.PropertyKey) (Slot, bool) {
	return s.table.Lookup(key, s.entryCount)
}

// OwnKeys returns this shape's own property keys in insertion (slot) order.
func (s *Shape) OwnKeys() []value.PropertyKey {
	return s.table.Keys(s.entryCount)
}

// Insert implements spec.md's insert(object, key, value, attrs) → new shape.
func (s *Shape) Insert(key value.PropertyKey, attrs Attrs) *Shape {
	tk := transitionKey{kind: transInsert, key: key, attrs: attrs}
	if cached, ok := s.transitions.Get(tk); ok {
		return cached
	}

	slotIdx := s.slotCount
	var table *PropertyTable
	switch {
	case s.table.len() == s.entryCount:
		// s is the table's frontier: safe to extend in place.
		table = s.table
		table.frontierAppend(key, Slot{Index: slotIdx, Attrs: attrs})
	default:
		existing := s.table.entryAt(s.entryCount)
		if existing.key == key && existing.slot == (Slot{Index: slotIdx, Attrs: attrs}) {
			// A sibling already installed the identical transition; reuse
			// the table unchanged (no fork needed, nothing to append).
			table = s.table
		} else {
			// Conflict: a sibling's different property already occupies
			// this slot position in the shared table. Fork before insert.
			table = s.table.fork(s.entryCount)
			table.frontierAppend(key, Slot{Index: slotIdx, Attrs: attrs})
		}
	}

	child := s.newChild(s.proto, table, s.entryCount+1, slotIdx+attrs.SlotWidth())
	s.transitions.Add(tk, child)
	return child
}

// UpdateAttributes implements update_attributes(object, key, new_attrs).
func (s *Shape) UpdateAttributes(key value.PropertyKey, newAttrs Attrs) (*Shape, error) {
	slot, ok := s.Lookup(key)
	if !ok {
		return nil, ErrNoSuchProperty
	}
	tk := transitionKey{kind: transAttrs, key: key, attrs: newAttrs}
	if cached, ok := s.transitions.Get(tk); ok {
		return cached, nil
	}
	table := s.table.fork(s.entryCount)
	i := table.index[key]
	table.entries[i].slot = Slot{Index: slot.Index, Attrs: newAttrs}
	child := s.newChild(s.proto, table, s.entryCount, s.slotCount)
	s.transitions.Add(tk, child)
	return child, nil
}

// SetPrototype implements set_prototype(object, new proto) → new shape: the
// PropertyTable is preserved, only the prototype reference changes.
func (s *Shape) SetPrototype(proto any) *Shape {
	tk := transitionKey{kind: transProto, proto: proto}
	if cached, ok := s.transitions.Get(tk); ok {
		return cached
	}
	child := s.newChild(proto, s.table, s.entryCount, s.slotCount)
	s.transitions.Add(tk, child)
	return child
}

// Delete implements delete(object, key) → new shape by rewinding to the
// root and replaying every remaining insertion (in original order, minus
// the deleted key) — spec.md's documented linear-cost strategy (see
// DESIGN.md's Open Question resolution: no dictionary-mode fallback).
// Replaying via Insert means the result shares structure with any other
// shape reachable by the same sequence, exactly like a direct transition
// would.
func (s *Shape) Delete(key value.PropertyKey) (*Shape, error) {
	if _, ok := s.Lookup(key); !ok {
		return nil, ErrNoSuchProperty
	}
	cur := s.root
	for _, k := range s.OwnKeys() {
		if k == key {
			continue
		}
		slot, _ := s.Lookup(k)
		cur = cur.Insert(k, slot.Attrs)
	}
	if s.proto != s.root.proto {
		cur = cur.SetPrototype(s.proto)
	}
	return cur, nil
}
