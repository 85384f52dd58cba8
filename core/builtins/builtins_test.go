package builtins_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coreform/jsvm/core/hostapi"
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/realm"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

func newTestContext(t *testing.T) *realm.Context {
	t.Helper()
	ctx, err := realm.NewContext(realm.Config{})
	require.NoError(t, err)
	return ctx
}

func globalFunc(t *testing.T, ctx *realm.Context, name string) value.Value {
	t.Helper()
	v, err := ctx.Realm.Global.Get(value.StringKey(name), ctx.Realm.Global.Value())
	require.NoError(t, err)
	require.True(t, v.IsObject(), "global.%s must be installed", name)
	return v
}

func method(t *testing.T, o *object.Object, name string) value.Value {
	t.Helper()
	v, err := o.Get(value.StringKey(name), o.Value())
	require.NoError(t, err)
	return v
}

func hooksWithRandom(f float64) hostapi.Hooks {
	return hostapi.Hooks{Random: func() float64 { return f }}
}

// TestPromiseThenRunsAsMicrotaskAfterScript exercises Promise reaction
// scheduling end to end: .then's callback must not run synchronously
// during the construct/then calls, only once the job queue drains.
func TestPromiseThenRunsAsMicrotaskAfterScript(t *testing.T) {
	ctx := newTestContext(t)
	promiseCtor := globalFunc(t, ctx, "Promise")

	resolveNow, _ := object.NewNativeFunction(ctx.Heap, shape.NewRoot(), "", func(this value.Value, args []value.Value) (value.Value, error) {
		resolve, _ := object.FromValue(args[0])
		_, _, err := ctx.VM.Call(resolve.Value(), value.UndefinedValue, []value.Value{value.NewNumber(42)})
		return value.UndefinedValue, err
	}, nil)

	p, thrown, err := ctx.VM.Construct(promiseCtor, []value.Value{resolveNow.Value()}, promiseCtor)
	require.NoError(t, err)
	require.Nil(t, thrown)

	pObj, ok := object.FromValue(p)
	require.True(t, ok)
	thenFn := method(t, pObj, "then")

	var seen float64
	onFulfilled, _ := object.NewNativeFunction(ctx.Heap, shape.NewRoot(), "", func(this value.Value, args []value.Value) (value.Value, error) {
		seen = args[0].Float64()
		return value.UndefinedValue, nil
	}, nil)

	_, thrown, err = ctx.VM.Call(thenFn, p, []value.Value{onFulfilled.Value()})
	require.NoError(t, err)
	require.Nil(t, thrown)
	require.Zero(t, seen, ".then's callback must not run synchronously")

	ctx.DrainJobs()
	require.Equal(t, 42.0, seen, "draining the job queue must run the scheduled reaction")
}

func TestPromiseRejectionPropagatesToCatch(t *testing.T) {
	ctx := newTestContext(t)
	promiseCtor := globalFunc(t, ctx, "Promise")

	rejectNow, _ := object.NewNativeFunction(ctx.Heap, shape.NewRoot(), "", func(this value.Value, args []value.Value) (value.Value, error) {
		reject, _ := object.FromValue(args[1])
		_, _, err := ctx.VM.Call(reject.Value(), value.UndefinedValue, []value.Value{value.NewStringGo("nope")})
		return value.UndefinedValue, err
	}, nil)

	p, _, err := ctx.VM.Construct(promiseCtor, []value.Value{rejectNow.Value()}, promiseCtor)
	require.NoError(t, err)
	pObj, _ := object.FromValue(p)
	catchFn := method(t, pObj, "catch")

	var reason string
	onRejected, _ := object.NewNativeFunction(ctx.Heap, shape.NewRoot(), "", func(this value.Value, args []value.Value) (value.Value, error) {
		reason = args[0].Str().Go()
		return value.UndefinedValue, nil
	}, nil)

	_, thrown, err := ctx.VM.Call(catchFn, p, []value.Value{onRejected.Value()})
	require.NoError(t, err)
	require.Nil(t, thrown)

	ctx.DrainJobs()
	require.Equal(t, "nope", reason)
}

func TestMathRandomUsesHostHook(t *testing.T) {
	ctx, err := realm.NewContext(realm.Config{
		Hooks: hooksWithRandom(0.25),
	})
	require.NoError(t, err)

	mathObj := globalFunc(t, ctx, "Math")
	mObj, ok := object.FromValue(mathObj)
	require.True(t, ok)
	randomFn := method(t, mObj, "random")

	result, thrown, err := ctx.VM.Call(randomFn, value.UndefinedValue, nil)
	require.NoError(t, err)
	require.Nil(t, thrown)
	require.Equal(t, 0.25, result.Float64())
}

func TestJSONStringifyRoundTripsPlainObject(t *testing.T) {
	ctx := newTestContext(t)
	jsonObj := globalFunc(t, ctx, "JSON")
	jObj, ok := object.FromValue(jsonObj)
	require.True(t, ok)
	stringifyFn := method(t, jObj, "stringify")

	obj, err := object.New(ctx.Heap, shape.NewRoot())
	require.NoError(t, err)
	require.NoError(t, obj.DefineOwnProperty(value.StringKey("x"), object.PropertyDescriptor{
		Value: value.NewNumber(1), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	}))

	result, thrown, err := ctx.VM.Call(stringifyFn, value.UndefinedValue, []value.Value{obj.Value()})
	require.NoError(t, err)
	require.Nil(t, thrown)
	require.Equal(t, `{"x":1}`, result.Str().Go())
}
