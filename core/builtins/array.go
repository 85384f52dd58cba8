package builtins

import (
	"math"

	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// newArrayOf builds a dense Array exotic object from a Go slice, the
// helper every other built-in (Object.keys, String.split, Map.entries,
// ...) uses to hand a Go-side collection back to script.
func (b *builder) newArrayOf(vals []value.Value) (value.Value, error) {
	arr, err := object.NewArray(b.Heap, shape.NewRoot(), uint32(len(vals)))
	if err != nil {
		return value.UndefinedValue, err
	}
	if b.arrayProto != nil {
		_ = arr.SetPrototypeOf(b.arrayProto)
	}
	for i, v := range vals {
		if err := arr.DefineOwnProperty(value.StringKey(indexKey(i)), object.PropertyDescriptor{
			Value: v, Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
		}); err != nil {
			return value.UndefinedValue, err
		}
	}
	return arr.Value(), nil
}

func indexKey(i int) string {
	return value.NewNumber(float64(i)).GoString()
}

func thisArray(this value.Value) (*object.Object, error) {
	o, ok := object.FromValue(this)
	if !ok {
		return nil, typeError("receiver is not an array")
	}
	return o, nil
}

func arrayLength(o *object.Object) uint32 {
	desc, ok := o.GetOwnProperty(value.StringKey("length"))
	if !ok || !desc.Value.IsNumber() {
		return 0
	}
	return uint32(desc.Value.Float64())
}

func arrayElementAt(o *object.Object, i uint32) value.Value {
	v, _ := o.Get(value.StringKey(indexKey(int(i))), o.Value())
	return v
}

// installArray installs %Array.prototype% plus the subset of
// ECMA-262's Array.prototype surface spec.md's VM dispatch relies on
// for-of/spread/iteration to make sense of: push/pop, map/filter/
// forEach/reduce, slice/indexOf/includes, join, and Array.isArray/of/
// from.
func (b *builder) installArray() error {
	proto, err := object.NewArray(b.Heap, shape.NewRoot(), 0)
	if err != nil {
		return err
	}
	if b.objectProto != nil {
		_ = proto.SetPrototypeOf(b.objectProto)
	}
	b.arrayProto = proto

	ctor, err := b.newConstructor("Array", b.arrayCall, b.arrayConstruct, proto)
	if err != nil {
		return err
	}
	if err := b.defineMethod(ctor, "isArray", b.arrayIsArray); err != nil {
		return err
	}
	if err := b.defineMethod(ctor, "of", b.arrayOf); err != nil {
		return err
	}
	if err := b.defineMethod(ctor, "from", b.arrayFrom); err != nil {
		return err
	}

	methods := map[string]object.NativeCall{
		"push":    b.arrayPush,
		"pop":     b.arrayPop,
		"join":    b.arrayJoin,
		"slice":   b.arraySlice,
		"indexOf": b.arrayIndexOf,
		"includes": b.arrayIncludes,
		"forEach": b.arrayForEach,
		"map":     b.arrayMap,
		"filter":  b.arrayFilter,
		"reduce":  b.arrayReduce,
		"concat":  b.arrayConcat,
		"reverse": b.arrayReverse,
		"toString": b.arrayToString,
	}
	for name, fn := range methods {
		if err := b.defineMethod(proto, name, fn); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) arrayCall(this value.Value, args []value.Value) (value.Value, error) {
	return b.arrayConstruct(args, nil)
}

func (b *builder) arrayConstruct(args []value.Value, newTarget *object.Object) (value.Value, error) {
	if len(args) == 1 && args[0].IsNumber() {
		n := args[0].Float64()
		if n < 0 || n != math.Trunc(n) {
			return value.UndefinedValue, rangeError("invalid array length")
		}
		arr, err := object.NewArray(b.Heap, shape.NewRoot(), uint32(n))
		if err != nil {
			return value.UndefinedValue, err
		}
		if b.arrayProto != nil {
			_ = arr.SetPrototypeOf(b.arrayProto)
		}
		return arr.Value(), nil
	}
	return b.newArrayOf(args)
}

func (b *builder) arrayIsArray(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := object.FromValue(argAt(args, 0))
	return value.NewBool(ok && o.Class() == "Array"), nil
}

func (b *builder) arrayOf(this value.Value, args []value.Value) (value.Value, error) {
	return b.newArrayOf(args)
}

func (b *builder) arrayFrom(this value.Value, args []value.Value) (value.Value, error) {
	var vals []value.Value
	src := argAt(args, 0)
	if err := b.forEachIterable(src, func(v value.Value) error {
		vals = append(vals, v)
		return nil
	}); err != nil {
		if o, ok := object.FromValue(src); ok {
			n := arrayLength(o)
			vals = vals[:0]
			for i := uint32(0); i < n; i++ {
				vals = append(vals, arrayElementAt(o, i))
			}
		} else {
			return value.UndefinedValue, err
		}
	}
	if mapFn := argAt(args, 1); mapFn.IsObject() {
		for i, v := range vals {
			mapped, thrown, err := b.VM.Call(mapFn, value.UndefinedValue, []value.Value{v, value.NewNumber(float64(i))})
			if err != nil {
				return value.UndefinedValue, err
			}
			if thrown != nil {
				return value.UndefinedValue, thrown
			}
			vals[i] = mapped
		}
	}
	return b.newArrayOf(vals)
}

func (b *builder) arrayPush(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisArray(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	n := arrayLength(o)
	for _, v := range args {
		if err := o.DefineOwnProperty(value.StringKey(indexKey(int(n))), object.PropertyDescriptor{
			Value: v, Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
		}); err != nil {
			return value.UndefinedValue, err
		}
		n++
	}
	return value.NewNumber(float64(n)), nil
}

func (b *builder) arrayPop(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisArray(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	n := arrayLength(o)
	if n == 0 {
		return value.UndefinedValue, nil
	}
	v := arrayElementAt(o, n-1)
	if _, err := o.Delete(value.StringKey(indexKey(int(n - 1)))); err != nil {
		return value.UndefinedValue, err
	}
	if err := o.DefineOwnProperty(value.StringKey("length"), object.PropertyDescriptor{
		Value: value.NewNumber(float64(n - 1)), HasValue: true,
	}); err != nil {
		return value.UndefinedValue, err
	}
	return v, nil
}

func (b *builder) arrayJoin(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisArray(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	sep := ","
	if s := argAt(args, 0); !s.IsUndefined() {
		sep = s.GoString()
	}
	n := arrayLength(o)
	out := make([]string, n)
	for i := uint32(0); i < n; i++ {
		v := arrayElementAt(o, i)
		if !v.IsNullish() {
			out[i] = v.GoString()
		}
	}
	joined := ""
	for i, s := range out {
		if i > 0 {
			joined += sep
		}
		joined += s
	}
	return value.NewStringGo(joined), nil
}

func (b *builder) arrayToString(this value.Value, args []value.Value) (value.Value, error) {
	return b.arrayJoin(this, nil)
}

func (b *builder) arraySlice(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisArray(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	n := int(arrayLength(o))
	start := clampIndex(argAt(args, 0), n, 0)
	end := clampIndex(argAt(args, 1), n, n)
	var out []value.Value
	for i := start; i < end; i++ {
		out = append(out, arrayElementAt(o, uint32(i)))
	}
	return b.newArrayOf(out)
}

func clampIndex(v value.Value, n int, def int) int {
	if v.IsUndefined() {
		return def
	}
	i := int(v.Float64())
	if i < 0 {
		i += n
	}
	if i < 0 {
		i = 0
	}
	if i > n {
		i = n
	}
	return i
}

func (b *builder) arrayIndexOf(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisArray(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	target := argAt(args, 0)
	n := arrayLength(o)
	for i := uint32(0); i < n; i++ {
		if value.StrictEquals(arrayElementAt(o, i), target) {
			return value.NewNumber(float64(i)), nil
		}
	}
	return value.NewNumber(-1), nil
}

func (b *builder) arrayIncludes(this value.Value, args []value.Value) (value.Value, error) {
	idx, err := b.arrayIndexOf(this, args)
	if err != nil {
		return value.UndefinedValue, err
	}
	return value.NewBool(idx.Float64() >= 0), nil
}

func (b *builder) arrayForEach(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisArray(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	cb := argAt(args, 0)
	thisArg := argAt(args, 1)
	n := arrayLength(o)
	for i := uint32(0); i < n; i++ {
		_, thrown, err := b.VM.Call(cb, thisArg, []value.Value{arrayElementAt(o, i), value.NewNumber(float64(i)), o.Value()})
		if err != nil {
			return value.UndefinedValue, err
		}
		if thrown != nil {
			return value.UndefinedValue, thrown
		}
	}
	return value.UndefinedValue, nil
}

func (b *builder) arrayMap(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisArray(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	cb := argAt(args, 0)
	thisArg := argAt(args, 1)
	n := arrayLength(o)
	out := make([]value.Value, n)
	for i := uint32(0); i < n; i++ {
		v, thrown, err := b.VM.Call(cb, thisArg, []value.Value{arrayElementAt(o, i), value.NewNumber(float64(i)), o.Value()})
		if err != nil {
			return value.UndefinedValue, err
		}
		if thrown != nil {
			return value.UndefinedValue, thrown
		}
		out[i] = v
	}
	return b.newArrayOf(out)
}

func (b *builder) arrayFilter(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisArray(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	cb := argAt(args, 0)
	thisArg := argAt(args, 1)
	n := arrayLength(o)
	var out []value.Value
	for i := uint32(0); i < n; i++ {
		elem := arrayElementAt(o, i)
		v, thrown, err := b.VM.Call(cb, thisArg, []value.Value{elem, value.NewNumber(float64(i)), o.Value()})
		if err != nil {
			return value.UndefinedValue, err
		}
		if thrown != nil {
			return value.UndefinedValue, thrown
		}
		if v.Bool() {
			out = append(out, elem)
		}
	}
	return b.newArrayOf(out)
}

func (b *builder) arrayReduce(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisArray(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	cb := argAt(args, 0)
	n := arrayLength(o)
	var acc value.Value
	i := uint32(0)
	if len(args) > 1 {
		acc = args[1]
	} else {
		if n == 0 {
			return value.UndefinedValue, typeError("Reduce of empty array with no initial value")
		}
		acc = arrayElementAt(o, 0)
		i = 1
	}
	for ; i < n; i++ {
		v, thrown, err := b.VM.Call(cb, value.UndefinedValue, []value.Value{acc, arrayElementAt(o, i), value.NewNumber(float64(i)), o.Value()})
		if err != nil {
			return value.UndefinedValue, err
		}
		if thrown != nil {
			return value.UndefinedValue, thrown
		}
		acc = v
	}
	return acc, nil
}

func (b *builder) arrayConcat(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisArray(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	var out []value.Value
	n := arrayLength(o)
	for i := uint32(0); i < n; i++ {
		out = append(out, arrayElementAt(o, i))
	}
	for _, arg := range args {
		if ao, ok := object.FromValue(arg); ok && ao.Class() == "Array" {
			an := arrayLength(ao)
			for i := uint32(0); i < an; i++ {
				out = append(out, arrayElementAt(ao, i))
			}
		} else {
			out = append(out, arg)
		}
	}
	return b.newArrayOf(out)
}

func (b *builder) arrayReverse(this value.Value, args []value.Value) (value.Value, error) {
	o, err := thisArray(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	n := arrayLength(o)
	for i, j := uint32(0), n; i < j; i, j = i+1, j-1 {
		vi := arrayElementAt(o, i)
		vj := arrayElementAt(o, j-1)
		_ = o.Set(value.StringKey(indexKey(int(i))), vj, o.Value())
		_ = o.Set(value.StringKey(indexKey(int(j-1))), vi, o.Value())
	}
	return o.Value(), nil
}
