package object

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

func newHeap() *gc.Heap { return gc.NewHeap(gc.Config{}) }

func TestOrdinaryDefineAndGet(t *testing.T) {
	h := newHeap()
	o, err := New(h, shape.NewRoot())
	require.NoError(t, err)

	err = o.DefineOwnProperty(value.StringKey("x"), PropertyDescriptor{
		Value: value.NewNumber(42), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	})
	require.NoError(t, err)

	v, err := o.Get(value.StringKey("x"), o.Value())
	require.NoError(t, err)
	require.Equal(t, 42.0, v.Float64())
}

func TestNonWritablePropertyRejectsSet(t *testing.T) {
	h := newHeap()
	o, err := New(h, shape.NewRoot())
	require.NoError(t, err)

	err = o.DefineOwnProperty(value.StringKey("x"), PropertyDescriptor{
		Value: value.NewNumber(1), Attrs: shape.Enumerable | shape.Configurable, HasValue: true, HasAttrs: true,
	})
	require.NoError(t, err)

	err = o.Set(value.StringKey("x"), value.NewNumber(2), o.Value())
	require.ErrorIs(t, err, ErrNotWritable)
}

func TestPrototypeChainLookup(t *testing.T) {
	h := newHeap()
	proto, err := New(h, shape.NewRoot())
	require.NoError(t, err)
	require.NoError(t, proto.DefineOwnProperty(value.StringKey("greeting"), PropertyDescriptor{
		Value: value.NewStringGo("hi"), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	}))

	child, err := New(h, shape.NewRoot())
	require.NoError(t, err)
	require.NoError(t, child.SetPrototypeOf(proto))

	require.True(t, child.HasProperty(value.StringKey("greeting")))
	v, err := child.Get(value.StringKey("greeting"), child.Value())
	require.NoError(t, err)
	require.Equal(t, "hi", v.Str().Go())
}

func TestPrototypeCycleRejected(t *testing.T) {
	h := newHeap()
	a, _ := New(h, shape.NewRoot())
	b, _ := New(h, shape.NewRoot())
	require.NoError(t, b.SetPrototypeOf(a))
	err := a.SetPrototypeOf(b)
	require.ErrorIs(t, err, ErrPrototypeCycle)
}

func TestDenseElementsConvertToSparseAtLowDensity(t *testing.T) {
	h := newHeap()
	o, err := New(h, shape.NewRoot())
	require.NoError(t, err)

	require.NoError(t, o.DefineOwnProperty(value.StringKey("0"), PropertyDescriptor{Value: value.NewNumber(1), HasValue: true}))
	require.False(t, o.elements.isSparse())

	// A single populated index at a far-away offset drives density well
	// under 25%, triggering the dense->sparse conversion.
	require.NoError(t, o.DefineOwnProperty(value.StringKey("1000"), PropertyDescriptor{Value: value.NewNumber(2), HasValue: true}))
	require.True(t, o.elements.isSparse())

	v, ok := o.elements.Get(0)
	require.True(t, ok)
	require.Equal(t, 1.0, v.Float64())
}

func TestArrayLengthUpdatesOnIndexedWrite(t *testing.T) {
	h := newHeap()
	arr, err := NewArray(h, shape.NewRoot(), 0)
	require.NoError(t, err)

	require.NoError(t, arr.Set(value.StringKey("5"), value.NewNumber(9), arr.Value()))
	length, err := arr.Get(lengthKey, arr.Value())
	require.NoError(t, err)
	require.Equal(t, 6.0, length.Float64())
}

func TestArrayLengthTruncateDropsElements(t *testing.T) {
	h := newHeap()
	arr, err := NewArray(h, shape.NewRoot(), 0)
	require.NoError(t, err)
	require.NoError(t, arr.Set(value.StringKey("0"), value.NewNumber(1), arr.Value()))
	require.NoError(t, arr.Set(value.StringKey("1"), value.NewNumber(2), arr.Value()))

	err = arr.DefineOwnProperty(lengthKey, PropertyDescriptor{Value: value.NewNumber(1), HasValue: true})
	require.NoError(t, err)

	v, ok := arr.elements.Get(1)
	require.False(t, ok)
	_ = v
}

func TestStringExoticIndexedAccess(t *testing.T) {
	h := newHeap()
	s := value.NewFlatString("abc")
	o, err := NewStringObject(h, shape.NewRoot(), s)
	require.NoError(t, err)

	v, err := o.Get(value.StringKey("1"), o.Value())
	require.NoError(t, err)
	require.Equal(t, "b", v.Str().Go())

	length, err := o.Get(lengthKey, o.Value())
	require.NoError(t, err)
	require.Equal(t, 3.0, length.Float64())

	err = o.Set(value.StringKey("1"), value.NewStringGo("z"), o.Value())
	require.ErrorIs(t, err, ErrNotWritable)
}

func TestTypedArrayReadWriteRoundTrip(t *testing.T) {
	h := newHeap()
	buf := NewArrayBuffer(8)
	ta, err := NewTypedArray(h, shape.NewRoot(), buf, 0, 2, Int32Array, true)
	require.NoError(t, err)

	require.NoError(t, ta.Set(value.StringKey("0"), value.NewNumber(-5), ta.Value()))
	v, err := ta.Get(value.StringKey("0"), ta.Value())
	require.NoError(t, err)
	require.Equal(t, -5.0, v.Float64())
}

func TestTypedArrayTrapsOnDetachedBuffer(t *testing.T) {
	h := newHeap()
	buf := NewArrayBuffer(4)
	ta, err := NewTypedArray(h, shape.NewRoot(), buf, 0, 1, Uint8Array, true)
	require.NoError(t, err)

	buf.Detach()
	err = ta.Set(value.StringKey("0"), value.NewNumber(1), ta.Value())
	require.ErrorIs(t, err, ErrTypedArrayOutOfBounds)

	v, err := ta.Get(value.StringKey("0"), ta.Value())
	require.NoError(t, err)
	require.True(t, v.IsUndefined())
}

func TestProxyForwardsToTargetWhenNoTrap(t *testing.T) {
	h := newHeap()
	target, _ := New(h, shape.NewRoot())
	require.NoError(t, target.DefineOwnProperty(value.StringKey("x"), PropertyDescriptor{
		Value: value.NewNumber(7), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	}))
	handler, _ := New(h, shape.NewRoot())
	proxy, err := NewProxy(h, shape.NewRoot(), target, handler)
	require.NoError(t, err)

	v, err := proxy.Get(value.StringKey("x"), proxy.Value())
	require.NoError(t, err)
	require.Equal(t, 7.0, v.Float64())
}

func TestRevokedProxyFailsEveryTrap(t *testing.T) {
	h := newHeap()
	target, _ := New(h, shape.NewRoot())
	handler, _ := New(h, shape.NewRoot())
	proxy, err := NewProxy(h, shape.NewRoot(), target, handler)
	require.NoError(t, err)

	pm, ok := IsProxy(proxy)
	require.True(t, ok)
	pm.Revoke()

	_, err = proxy.Get(value.StringKey("x"), proxy.Value())
	require.ErrorIs(t, err, ErrProxyRevoked)

	err = proxy.Set(value.StringKey("x"), value.NewNumber(1), proxy.Value())
	require.ErrorIs(t, err, ErrProxyRevoked)

	_, err = proxy.Delete(value.StringKey("x"))
	require.ErrorIs(t, err, ErrProxyRevoked)

	err = proxy.SetPrototypeOf(nil)
	require.ErrorIs(t, err, ErrProxyRevoked)
}

func TestObjectGraphIsTraced(t *testing.T) {
	h := newHeap()
	parent, err := New(h, shape.NewRoot())
	require.NoError(t, err)
	child, err := New(h, shape.NewRoot())
	require.NoError(t, err)
	require.NoError(t, parent.DefineOwnProperty(value.StringKey("child"), PropertyDescriptor{
		Value: child.Value(), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	}))

	root := h.NewRoot(parent)
	defer root.Release()

	stats := h.Collect()
	require.Equal(t, 2, stats.LiveAfter, "child survives through parent's storage slot")
}

func TestModuleNamespaceIsReadOnlyLiveBinding(t *testing.T) {
	h := newHeap()
	cell := NewBindingCell(value.NewNumber(1))
	ns, err := NewModuleNamespace(h, shape.NewRoot(), map[value.PropertyKey]*bindingCell{
		value.StringKey("count"): cell,
	})
	require.NoError(t, err)

	v, err := ns.Get(value.StringKey("count"), ns.Value())
	require.NoError(t, err)
	require.Equal(t, 1.0, v.Float64())

	cell.Set(value.NewNumber(2))
	v, err = ns.Get(value.StringKey("count"), ns.Value())
	require.NoError(t, err)
	require.Equal(t, 2.0, v.Float64(), "namespace read observes the exporter's live binding")

	err = ns.Set(value.StringKey("count"), value.NewNumber(3), ns.Value())
	require.ErrorIs(t, err, ErrNotWritable)
}

func TestBoundFunctionExposesTargetAndPrefix(t *testing.T) {
	h := newHeap()
	var called []value.Value
	target, err := NewNativeFunction(h, shape.NewRoot(), "f", func(this value.Value, args []value.Value) (value.Value, error) {
		called = args
		return value.UndefinedValue, nil
	}, nil)
	require.NoError(t, err)

	bound, err := NewBoundFunction(h, shape.NewRoot(), target, value.UndefinedValue, []value.Value{value.NewNumber(1)})
	require.NoError(t, err)

	nf, ok := AsNativeFunction(bound.methods.(*boundFunctionMethods).BoundTarget())
	require.True(t, ok)
	_, err = nf.Call(value.UndefinedValue, append(bound.methods.(*boundFunctionMethods).BoundArgs(), value.NewNumber(2)))
	require.NoError(t, err)
	require.Equal(t, []value.Value{value.NewNumber(1), value.NewNumber(2)}, called)
}
