package builtins

import (
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// installMapSet builds Map, Set, WeakMap, and WeakSet. Map/Set are
// grounded on core/object.CollectionData, an insertion-ordered slice
// (spec.md requires Map/Set iteration in insertion order); WeakMap/
// WeakSet are grounded on core/gc.WeakMap, the ephemeron table spec.md
// §4.1's weak-reference semantics already implement, so a WeakMap
// entry's value is only kept alive once its key is independently
// reachable.
func (b *builder) installMapSet() error {
	if err := b.installMap(); err != nil {
		return err
	}
	if err := b.installSet(); err != nil {
		return err
	}
	if err := b.installWeakMap(); err != nil {
		return err
	}
	return b.installWeakSet()
}

func collectionOf(this value.Value) (*object.Object, *object.CollectionData, error) {
	o, ok := object.FromValue(this)
	if !ok {
		return nil, nil, typeError("receiver is not a collection")
	}
	d, ok := object.AsCollection(o)
	if !ok {
		return nil, nil, typeError("receiver is not a Map/Set")
	}
	return o, d, nil
}

func (b *builder) installMap() error {
	proto, err := b.newPlainProtoObject()
	if err != nil {
		return err
	}
	if b.objectProto != nil {
		_ = proto.SetPrototypeOf(b.objectProto)
	}
	b.mapProto = proto
	if _, err := b.newConstructor("Map", b.mapCall, b.mapConstruct, proto); err != nil {
		return err
	}
	methods := map[string]object.NativeCall{
		"get":     b.mapGet,
		"set":     b.mapSet,
		"has":     b.mapHas,
		"delete":  b.mapDelete,
		"clear":   b.mapClear,
		"forEach": b.mapForEach,
	}
	for name, fn := range methods {
		if err := b.defineMethod(proto, name, fn); err != nil {
			return err
		}
	}
	return b.defineMethod(proto, "size", b.mapSize)
}

func (b *builder) mapCall(this value.Value, args []value.Value) (value.Value, error) {
	return value.UndefinedValue, typeError("Constructor Map requires 'new'")
}

func (b *builder) mapConstruct(args []value.Value, newTarget *object.Object) (value.Value, error) {
	o, err := object.NewCollectionObject(b.Heap, shape.NewRoot(), "Map")
	if err != nil {
		return value.UndefinedValue, err
	}
	_ = o.SetPrototypeOf(b.mapProto)
	d, _ := object.AsCollection(o)
	if iterable := argAt(args, 0); !iterable.IsNullish() {
		if err := b.forEachIterable(iterable, func(entry value.Value) error {
			eo, ok := object.FromValue(entry)
			if !ok {
				return typeError("iterable for Map must yield entry objects")
			}
			k, _ := eo.Get(value.StringKey("0"), entry)
			v, _ := eo.Get(value.StringKey("1"), entry)
			if idx := d.IndexOf(k); idx >= 0 {
				d.Values[idx] = v
			} else {
				d.Keys = append(d.Keys, k)
				d.Values = append(d.Values, v)
			}
			return nil
		}); err != nil {
			return value.UndefinedValue, err
		}
	}
	return o.Value(), nil
}

func (b *builder) mapGet(this value.Value, args []value.Value) (value.Value, error) {
	_, d, err := collectionOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	if idx := d.IndexOf(argAt(args, 0)); idx >= 0 && idx < len(d.Values) {
		return d.Values[idx], nil
	}
	return value.UndefinedValue, nil
}

func (b *builder) mapSet(this value.Value, args []value.Value) (value.Value, error) {
	_, d, err := collectionOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	key, v := argAt(args, 0), argAt(args, 1)
	if idx := d.IndexOf(key); idx >= 0 {
		d.Values[idx] = v
	} else {
		d.Keys = append(d.Keys, key)
		d.Values = append(d.Values, v)
	}
	return this, nil
}

func (b *builder) mapHas(this value.Value, args []value.Value) (value.Value, error) {
	_, d, err := collectionOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	return value.NewBool(d.IndexOf(argAt(args, 0)) >= 0), nil
}

func (b *builder) mapDelete(this value.Value, args []value.Value) (value.Value, error) {
	_, d, err := collectionOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	idx := d.IndexOf(argAt(args, 0))
	if idx < 0 {
		return value.FalseValue, nil
	}
	d.Keys = append(d.Keys[:idx], d.Keys[idx+1:]...)
	if idx < len(d.Values) {
		d.Values = append(d.Values[:idx], d.Values[idx+1:]...)
	}
	return value.TrueValue, nil
}

func (b *builder) mapClear(this value.Value, args []value.Value) (value.Value, error) {
	_, d, err := collectionOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	d.Keys, d.Values = nil, nil
	return value.UndefinedValue, nil
}

func (b *builder) mapSize(this value.Value, args []value.Value) (value.Value, error) {
	_, d, err := collectionOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	return value.NewNumber(float64(len(d.Keys))), nil
}

func (b *builder) mapForEach(this value.Value, args []value.Value) (value.Value, error) {
	_, d, err := collectionOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	cb := argAt(args, 0)
	// Snapshot the key list before iterating: mapDelete shifts d.Keys/
	// d.Values in place, and ranging over the live slice while the
	// callback deletes from it would skip or double-visit entries
	// (spec.md §4.3 "delete during iteration must not skip subsequent
	// elements"). Re-resolving each key's index against the live d
	// before the call also means a key deleted before its turn is
	// skipped, matching Map.prototype.forEach.
	keys := append([]value.Value(nil), d.Keys...)
	for _, k := range keys {
		idx := d.IndexOf(k)
		if idx < 0 {
			continue
		}
		var v value.Value
		if idx < len(d.Values) {
			v = d.Values[idx]
		} else {
			v = k
		}
		_, thrown, err := b.VM.Call(cb, argAt(args, 1), []value.Value{v, k, this})
		if err != nil {
			return value.UndefinedValue, err
		}
		if thrown != nil {
			return value.UndefinedValue, thrown
		}
	}
	return value.UndefinedValue, nil
}

func (b *builder) installSet() error {
	proto, err := b.newPlainProtoObject()
	if err != nil {
		return err
	}
	if b.objectProto != nil {
		_ = proto.SetPrototypeOf(b.objectProto)
	}
	b.setProto = proto
	if _, err := b.newConstructor("Set", b.setCall, b.setConstruct, proto); err != nil {
		return err
	}
	methods := map[string]object.NativeCall{
		"add":     b.setAdd,
		"has":     b.mapHas,
		"delete":  b.mapDelete,
		"clear":   b.mapClear,
		"forEach": b.mapForEach,
	}
	for name, fn := range methods {
		if err := b.defineMethod(proto, name, fn); err != nil {
			return err
		}
	}
	return b.defineMethod(proto, "size", b.mapSize)
}

func (b *builder) setCall(this value.Value, args []value.Value) (value.Value, error) {
	return value.UndefinedValue, typeError("Constructor Set requires 'new'")
}

func (b *builder) setConstruct(args []value.Value, newTarget *object.Object) (value.Value, error) {
	o, err := object.NewCollectionObject(b.Heap, shape.NewRoot(), "Set")
	if err != nil {
		return value.UndefinedValue, err
	}
	_ = o.SetPrototypeOf(b.setProto)
	d, _ := object.AsCollection(o)
	if iterable := argAt(args, 0); !iterable.IsNullish() {
		if err := b.forEachIterable(iterable, func(v value.Value) error {
			if d.IndexOf(v) < 0 {
				d.Keys = append(d.Keys, v)
			}
			return nil
		}); err != nil {
			return value.UndefinedValue, err
		}
	}
	return o.Value(), nil
}

func (b *builder) setAdd(this value.Value, args []value.Value) (value.Value, error) {
	_, d, err := collectionOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	v := argAt(args, 0)
	if d.IndexOf(v) < 0 {
		d.Keys = append(d.Keys, v)
	}
	return this, nil
}

func weakCollectionOf(this value.Value) (*object.Object, error) {
	o, ok := object.FromValue(this)
	if !ok {
		return nil, typeError("receiver is not a collection")
	}
	if _, _, ok := object.AsWeakCollection(o); !ok {
		return nil, typeError("receiver is not a WeakMap/WeakSet")
	}
	return o, nil
}

func weakKeyOf(v value.Value) (*object.Object, error) {
	o, ok := object.FromValue(v)
	if !ok {
		return nil, typeError("WeakMap/WeakSet key must be an object")
	}
	return o, nil
}

func (b *builder) installWeakMap() error {
	proto, err := b.newPlainProtoObject()
	if err != nil {
		return err
	}
	if b.objectProto != nil {
		_ = proto.SetPrototypeOf(b.objectProto)
	}
	if _, err := b.newConstructor("WeakMap", b.weakMapCall, b.weakMapConstruct, proto); err != nil {
		return err
	}
	if err := b.defineMethod(proto, "set", b.weakMapSet); err != nil {
		return err
	}
	if err := b.defineMethod(proto, "get", b.weakMapGet); err != nil {
		return err
	}
	if err := b.defineMethod(proto, "has", b.weakMapHas); err != nil {
		return err
	}
	return b.defineMethod(proto, "delete", b.weakMapDeleteEntry)
}

func (b *builder) weakMapCall(this value.Value, args []value.Value) (value.Value, error) {
	return value.UndefinedValue, typeError("Constructor WeakMap requires 'new'")
}

func (b *builder) weakMapConstruct(args []value.Value, newTarget *object.Object) (value.Value, error) {
	o, err := object.NewWeakCollectionObject(b.Heap, shape.NewRoot(), "WeakMap")
	if err != nil {
		return value.UndefinedValue, err
	}
	if p, ok := b.Intrinsics["%WeakMap.prototype%"]; ok {
		_ = o.SetPrototypeOf(p)
	}
	return o.Value(), nil
}

func (b *builder) weakMapSet(this value.Value, args []value.Value) (value.Value, error) {
	o, err := weakCollectionOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	key, err := weakKeyOf(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	cells, prims, _ := object.AsWeakCollection(o)
	v := argAt(args, 1)
	if vo, ok := object.FromValue(v); ok {
		cells.Set(key, vo)
		delete(prims, key)
	} else {
		prims[key] = v
		cells.Delete(key)
	}
	return this, nil
}

func (b *builder) weakMapGet(this value.Value, args []value.Value) (value.Value, error) {
	o, err := weakCollectionOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	key, err := weakKeyOf(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	cells, prims, _ := object.AsWeakCollection(o)
	if v, ok := prims[key]; ok {
		return v, nil
	}
	if c, ok := cells.Get(key); ok {
		if vo, ok := c.(*object.Object); ok {
			return vo.Value(), nil
		}
	}
	return value.UndefinedValue, nil
}

func (b *builder) weakMapHas(this value.Value, args []value.Value) (value.Value, error) {
	o, err := weakCollectionOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	key, err := weakKeyOf(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	cells, prims, _ := object.AsWeakCollection(o)
	if _, ok := prims[key]; ok {
		return value.TrueValue, nil
	}
	_, ok := cells.Get(key)
	return value.NewBool(ok), nil
}

func (b *builder) weakMapDeleteEntry(this value.Value, args []value.Value) (value.Value, error) {
	o, err := weakCollectionOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	key, err := weakKeyOf(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	cells, prims, _ := object.AsWeakCollection(o)
	_, hadPrim := prims[key]
	delete(prims, key)
	hadCell := cells.Delete(key)
	return value.NewBool(hadPrim || hadCell), nil
}

func (b *builder) installWeakSet() error {
	proto, err := b.newPlainProtoObject()
	if err != nil {
		return err
	}
	if b.objectProto != nil {
		_ = proto.SetPrototypeOf(b.objectProto)
	}
	if _, err := b.newConstructor("WeakSet", b.weakSetCall, b.weakSetConstruct, proto); err != nil {
		return err
	}
	if err := b.defineMethod(proto, "add", b.weakSetAdd); err != nil {
		return err
	}
	if err := b.defineMethod(proto, "has", b.weakMapHas); err != nil {
		return err
	}
	return b.defineMethod(proto, "delete", b.weakMapDeleteEntry)
}

func (b *builder) weakSetCall(this value.Value, args []value.Value) (value.Value, error) {
	return value.UndefinedValue, typeError("Constructor WeakSet requires 'new'")
}

func (b *builder) weakSetConstruct(args []value.Value, newTarget *object.Object) (value.Value, error) {
	o, err := object.NewWeakCollectionObject(b.Heap, shape.NewRoot(), "WeakSet")
	if err != nil {
		return value.UndefinedValue, err
	}
	if p, ok := b.Intrinsics["%WeakSet.prototype%"]; ok {
		_ = o.SetPrototypeOf(p)
	}
	return o.Value(), nil
}

func (b *builder) weakSetAdd(this value.Value, args []value.Value) (value.Value, error) {
	o, err := weakCollectionOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	key, err := weakKeyOf(argAt(args, 0))
	if err != nil {
		return value.UndefinedValue, err
	}
	cells, _, _ := object.AsWeakCollection(o)
	cells.Set(key, key)
	return this, nil
}
