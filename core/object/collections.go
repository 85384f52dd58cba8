package object

import (
	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// CollectionData is the insertion-ordered native backing for a Map or
// Set instance (spec.md requires Map/Set iteration in insertion order,
// which a plain Go map cannot give). Values is left empty (len 0) for a
// Set, where only Keys is meaningful.
type CollectionData struct {
	Keys   []value.Value
	Values []value.Value
}

func (d *CollectionData) IndexOf(key value.Value) int {
	for i, k := range d.Keys {
		if value.SameValueZero(k, key) {
			return i
		}
	}
	return -1
}

// collectionMethods is the Map/Set exotic object: an ordinary property
// table (for any own properties script code adds) plus one native slot
// holding the collection's actual entries, traced alongside the rest of
// the object so its values stay reachable.
type collectionMethods struct {
	data *CollectionData
}

// NewCollectionObject allocates a Map or Set instance; class is "Map" or
// "Set" for Class()/debugging.
func NewCollectionObject(h *gc.Heap, s *shape.Shape, class string) (*Object, error) {
	return NewWithMethods(h, s, &collectionMethods{data: &CollectionData{}}, class)
}

// AsCollection returns o's native entry storage if o was built by
// NewCollectionObject.
func AsCollection(o *Object) (*CollectionData, bool) {
	m, ok := o.methods.(*collectionMethods)
	if !ok {
		return nil, false
	}
	return m.data, true
}

func (m *collectionMethods) GetPrototypeOf(o *Object) (*Object, bool) { return ordinary.GetPrototypeOf(o) }
func (m *collectionMethods) SetPrototypeOf(o *Object, proto *Object) error {
	return ordinary.SetPrototypeOf(o, proto)
}
func (m *collectionMethods) IsExtensible(o *Object) bool       { return ordinary.IsExtensible(o) }
func (m *collectionMethods) PreventExtensions(o *Object) error { return ordinary.PreventExtensions(o) }
func (m *collectionMethods) GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool) {
	return ordinary.GetOwnProperty(o, key)
}
func (m *collectionMethods) DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error {
	return ordinary.DefineOwnProperty(o, key, desc)
}
func (m *collectionMethods) HasProperty(o *Object, key value.PropertyKey) bool {
	return ordinary.HasProperty(o, key)
}
func (m *collectionMethods) Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	return ordinary.Get(o, key, receiver)
}
func (m *collectionMethods) Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	return ordinary.Set(o, key, v, receiver)
}
func (m *collectionMethods) Delete(o *Object, key value.PropertyKey) (bool, error) {
	return ordinary.Delete(o, key)
}
func (m *collectionMethods) OwnPropertyKeys(o *Object) []value.PropertyKey {
	return ordinary.OwnPropertyKeys(o)
}
func (m *collectionMethods) Callable() bool    { return false }
func (m *collectionMethods) Constructor() bool { return false }
func (m *collectionMethods) TraceNative(o *Object, visit func(gc.Cell)) {
	for _, v := range m.data.Keys {
		traceValue(v, visit)
	}
	for _, v := range m.data.Values {
		traceValue(v, visit)
	}
}

// weakCollectionMethods is the WeakMap/WeakSet exotic object: entries
// keyed by object identity live in a gc.WeakMap ephemeron table so a
// key's value is only kept alive once the key is independently
// reachable (spec.md §4.1/§8); a parallel Go map covers primitive
// (non-Cell) values, which Go's own GC already keeps alive.
type weakCollectionMethods struct {
	cells *gc.WeakMap
	prims map[*Object]value.Value
}

// NewWeakCollectionObject allocates a WeakMap or WeakSet instance.
func NewWeakCollectionObject(h *gc.Heap, s *shape.Shape, class string) (*Object, error) {
	return NewWithMethods(h, s, &weakCollectionMethods{
		cells: h.NewWeakMap(),
		prims: make(map[*Object]value.Value),
	}, class)
}

// AsWeakCollection returns o's native tables if o was built by
// NewWeakCollectionObject.
func AsWeakCollection(o *Object) (cells *gc.WeakMap, prims map[*Object]value.Value, ok bool) {
	m, ok := o.methods.(*weakCollectionMethods)
	if !ok {
		return nil, nil, false
	}
	return m.cells, m.prims, true
}

func (m *weakCollectionMethods) GetPrototypeOf(o *Object) (*Object, bool) { return ordinary.GetPrototypeOf(o) }
func (m *weakCollectionMethods) SetPrototypeOf(o *Object, proto *Object) error {
	return ordinary.SetPrototypeOf(o, proto)
}
func (m *weakCollectionMethods) IsExtensible(o *Object) bool       { return ordinary.IsExtensible(o) }
func (m *weakCollectionMethods) PreventExtensions(o *Object) error { return ordinary.PreventExtensions(o) }
func (m *weakCollectionMethods) GetOwnProperty(o *Object, key value.PropertyKey) (PropertyDescriptor, bool) {
	return ordinary.GetOwnProperty(o, key)
}
func (m *weakCollectionMethods) DefineOwnProperty(o *Object, key value.PropertyKey, desc PropertyDescriptor) error {
	return ordinary.DefineOwnProperty(o, key, desc)
}
func (m *weakCollectionMethods) HasProperty(o *Object, key value.PropertyKey) bool {
	return ordinary.HasProperty(o, key)
}
func (m *weakCollectionMethods) Get(o *Object, key value.PropertyKey, receiver value.Value) (value.Value, error) {
	return ordinary.Get(o, key, receiver)
}
func (m *weakCollectionMethods) Set(o *Object, key value.PropertyKey, v value.Value, receiver value.Value) error {
	return ordinary.Set(o, key, v, receiver)
}
func (m *weakCollectionMethods) Delete(o *Object, key value.PropertyKey) (bool, error) {
	return ordinary.Delete(o, key)
}
func (m *weakCollectionMethods) OwnPropertyKeys(o *Object) []value.PropertyKey {
	return ordinary.OwnPropertyKeys(o)
}
func (m *weakCollectionMethods) Callable() bool    { return false }
func (m *weakCollectionMethods) Constructor() bool { return false }
func (m *weakCollectionMethods) TraceNative(o *Object, visit func(gc.Cell)) {
	for _, v := range m.prims {
		traceValue(v, visit)
	}
}
