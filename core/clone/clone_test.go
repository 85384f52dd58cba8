package clone_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/coreform/jsvm/core/clone"
	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// snapshotOwnProps flattens an object's own enumerable data properties
// into a plain map keyed by string, recursing into nested objects, so
// cmp.Diff can compare a clone's shape against its source structurally
// instead of property-by-property.
func snapshotOwnProps(t *testing.T, o *object.Object, v value.Value) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	for _, key := range o.OwnPropertyKeys() {
		if key.IsSymbol() {
			continue
		}
		desc, ok := o.GetOwnProperty(key)
		if !ok || !desc.HasAttrs || !desc.Attrs.IsEnumerable() || !desc.HasValue {
			continue
		}
		pv := desc.Value
		if child, ok := object.FromValue(pv); ok {
			out[key.String()] = snapshotOwnProps(t, child, pv)
			continue
		}
		out[key.String()] = pv.GoString()
	}
	return out
}

func TestCloneObjectStructurallyMatchesSource(t *testing.T) {
	h := newHeap(t)
	inner, err := object.New(h, shape.NewRoot())
	require.NoError(t, err)
	require.NoError(t, inner.DefineOwnProperty(value.StringKey("b"), object.PropertyDescriptor{
		Value: value.NewNumber(2), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	}))
	src, err := object.New(h, shape.NewRoot())
	require.NoError(t, err)
	require.NoError(t, src.DefineOwnProperty(value.StringKey("a"), object.PropertyDescriptor{
		Value: value.NewNumber(1), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	}))
	require.NoError(t, src.DefineOwnProperty(value.StringKey("nested"), object.PropertyDescriptor{
		Value: inner.Value(), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	}))

	out, err := clone.Clone(h, src.Value(), clone.Options{})
	require.NoError(t, err)
	dst, ok := object.FromValue(out)
	require.True(t, ok)

	if diff := cmp.Diff(snapshotOwnProps(t, src, src.Value()), snapshotOwnProps(t, dst, out)); diff != "" {
		t.Fatalf("clone diverged from source structurally (-want +got):\n%s", diff)
	}
}

func newHeap(t *testing.T) *gc.Heap {
	t.Helper()
	return gc.NewHeap(gc.Config{})
}

func TestClonePrimitivesPassThrough(t *testing.T) {
	h := newHeap(t)
	for _, v := range []value.Value{
		value.UndefinedValue, value.NullValue,
		value.NewBool(true), value.NewNumber(3.5), value.NewStringGo("hi"),
	} {
		out, err := clone.Clone(h, v, clone.Options{})
		require.NoError(t, err)
		require.True(t, value.SameValue(v, out))
	}
}

func TestCloneFunctionRejected(t *testing.T) {
	h := newHeap(t)
	fn, err := object.NewNativeFunction(h, shape.NewRoot(), "f", func(value.Value, []value.Value) (value.Value, error) {
		return value.UndefinedValue, nil
	}, nil)
	require.NoError(t, err)

	_, err = clone.Clone(h, fn.Value(), clone.Options{})
	require.ErrorIs(t, err, clone.ErrNotCloneable)
}

func TestCloneObjectIsDeepCopy(t *testing.T) {
	h := newHeap(t)
	src, err := object.New(h, shape.NewRoot())
	require.NoError(t, err)
	require.NoError(t, src.DefineOwnProperty(value.StringKey("a"), object.PropertyDescriptor{
		Value: value.NewNumber(1), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	}))

	out, err := clone.Clone(h, src.Value(), clone.Options{})
	require.NoError(t, err)
	dst, ok := object.FromValue(out)
	require.True(t, ok)
	require.NotSame(t, src, dst)

	v, err := dst.Get(value.StringKey("a"), out)
	require.NoError(t, err)
	require.Equal(t, 1.0, v.Float64())

	require.NoError(t, dst.DefineOwnProperty(value.StringKey("a"), object.PropertyDescriptor{
		Value: value.NewNumber(2), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	}))
	v, err = src.Get(value.StringKey("a"), src.Value())
	require.NoError(t, err)
	require.Equal(t, 1.0, v.Float64(), "mutating the clone must not affect the source")
}

func TestCloneObjectPreservesCycles(t *testing.T) {
	h := newHeap(t)
	src, err := object.New(h, shape.NewRoot())
	require.NoError(t, err)
	require.NoError(t, src.DefineOwnProperty(value.StringKey("self"), object.PropertyDescriptor{
		Value: src.Value(), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	}))

	out, err := clone.Clone(h, src.Value(), clone.Options{})
	require.NoError(t, err)
	dst, ok := object.FromValue(out)
	require.True(t, ok)

	self, err := dst.Get(value.StringKey("self"), out)
	require.NoError(t, err)
	selfObj, ok := object.FromValue(self)
	require.True(t, ok)
	require.Same(t, dst, selfObj, "a self-reference must clone to the same node, not recurse forever")
}

func TestCloneSharedReferenceStaysIdentical(t *testing.T) {
	h := newHeap(t)
	shared, err := object.New(h, shape.NewRoot())
	require.NoError(t, err)
	root, err := object.New(h, shape.NewRoot())
	require.NoError(t, err)
	require.NoError(t, root.DefineOwnProperty(value.StringKey("a"), object.PropertyDescriptor{
		Value: shared.Value(), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	}))
	require.NoError(t, root.DefineOwnProperty(value.StringKey("b"), object.PropertyDescriptor{
		Value: shared.Value(), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	}))

	out, err := clone.Clone(h, root.Value(), clone.Options{})
	require.NoError(t, err)
	dst, _ := object.FromValue(out)
	a, err := dst.Get(value.StringKey("a"), out)
	require.NoError(t, err)
	b, err := dst.Get(value.StringKey("b"), out)
	require.NoError(t, err)
	aObj, _ := object.FromValue(a)
	bObj, _ := object.FromValue(b)
	require.Same(t, aObj, bObj, "two properties referencing the same source object must clone to the same node")
}

func TestCloneArrayBufferTransferDetachesSource(t *testing.T) {
	h := newHeap(t)
	buf := object.NewArrayBuffer(4)
	src, err := object.NewArrayBufferObject(h, shape.NewRoot(), buf)
	require.NoError(t, err)

	out, err := clone.Clone(h, src.Value(), clone.Options{Transfer: []value.Value{src.Value()}})
	require.NoError(t, err)
	dst, ok := object.FromValue(out)
	require.True(t, ok)
	dstBuf, ok := object.AsArrayBuffer(dst)
	require.True(t, ok)
	require.Equal(t, 4, dstBuf.ByteLength())

	require.True(t, buf.IsDetached())
	require.Equal(t, 0, buf.ByteLength())
}

func TestCloneArrayBufferCopiesWithoutTransfer(t *testing.T) {
	h := newHeap(t)
	buf := object.NewArrayBuffer(4)
	buf.Bytes()[0] = 7
	src, err := object.NewArrayBufferObject(h, shape.NewRoot(), buf)
	require.NoError(t, err)

	out, err := clone.Clone(h, src.Value(), clone.Options{})
	require.NoError(t, err)
	dst, _ := object.FromValue(out)
	dstBuf, _ := object.AsArrayBuffer(dst)
	require.Equal(t, byte(7), dstBuf.Bytes()[0])

	dstBuf.Bytes()[0] = 9
	require.Equal(t, byte(7), buf.Bytes()[0], "copying (no transfer) must not alias the source bytes")
}
