package vm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

func newTestVM(t *testing.T) *VM {
	t.Helper()
	h := gc.NewHeap(gc.Config{})
	global, err := object.New(h, shape.NewRoot())
	require.NoError(t, err)
	return New(h, global, Config{})
}

func TestDispatchArithmeticReturn(t *testing.T) {
	v := newTestVM(t)
	code := &CodeBlock{
		Name:      "add",
		Code:      []byte{byte(OpConst), 0, byte(OpConst), 1, byte(OpAdd), byte(OpReturn)},
		Constants: []value.Value{value.NewNumber(1), value.NewNumber(2)},
	}

	result, thrown, err := v.Run(code, value.UndefinedValue, nil)
	require.NoError(t, err)
	require.Nil(t, thrown)
	require.Equal(t, 3.0, result.Float64())
}

func TestDispatchGlobalGetSet(t *testing.T) {
	v := newTestVM(t)
	code := &CodeBlock{
		Name: "globals",
		Code: []byte{
			byte(OpConst), 0,
			byte(OpSetGlobal), 1,
			byte(OpPop),
			byte(OpGetGlobal), 1,
			byte(OpReturn),
		},
		Constants: []value.Value{value.NewNumber(42), value.NewStringGo("x")},
	}

	result, thrown, err := v.Run(code, value.UndefinedValue, nil)
	require.NoError(t, err)
	require.Nil(t, thrown)
	require.Equal(t, 42.0, result.Float64())
}

func TestDispatchPropertyAccessor(t *testing.T) {
	v := newTestVM(t)
	h := v.heap

	obj, err := object.New(h, shape.NewRoot())
	require.NoError(t, err)

	getter, err := object.NewNativeFunction(h, shape.NewRoot(), "get val", func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewNumber(99), nil
	}, nil)
	require.NoError(t, err)

	require.NoError(t, obj.DefineOwnProperty(value.StringKey("val"), object.PropertyDescriptor{
		Getter: getter.Value(), Setter: value.UndefinedValue,
		Attrs: shape.HasGetter | shape.Enumerable | shape.Configurable, HasAttrs: true,
	}))

	code := &CodeBlock{
		Name:      "accessor",
		Code:      []byte{byte(OpConst), 0, byte(OpGetProp), 1, 0, byte(OpReturn)},
		Constants: []value.Value{obj.Value(), value.NewStringGo("val")},
	}

	result, thrown, err := v.Run(code, value.UndefinedValue, nil)
	require.NoError(t, err)
	require.Nil(t, thrown)
	require.Equal(t, 99.0, result.Float64())
}

func TestDispatchThrowCaughtByHandlerTable(t *testing.T) {
	v := newTestVM(t)
	code := &CodeBlock{
		Name:      "tryCatch",
		Code:      []byte{byte(OpConst), 0, byte(OpThrow), byte(OpReturn)},
		Constants: []value.Value{value.NewStringGo("boom")},
		Handlers: []ExceptionHandler{
			{StartPC: 0, EndPC: 3, HandlerPC: 3, Kind: HandlerCatch, StackDepth: 0},
		},
	}

	result, thrown, err := v.Run(code, value.UndefinedValue, nil)
	require.NoError(t, err)
	require.Nil(t, thrown)
	require.Equal(t, "boom", result.Str().Go())
}

func TestDispatchUnhandledThrowPropagates(t *testing.T) {
	v := newTestVM(t)
	code := &CodeBlock{
		Name:      "throws",
		Code:      []byte{byte(OpConst), 0, byte(OpThrow)},
		Constants: []value.Value{value.NewStringGo("uncaught")},
	}

	_, thrown, err := v.Run(code, value.UndefinedValue, nil)
	require.NoError(t, err)
	require.NotNil(t, thrown)
	require.Equal(t, "uncaught", thrown.Value.Str().Go())
}

func TestCallNativeFunction(t *testing.T) {
	v := newTestVM(t)
	fn, err := object.NewNativeFunction(v.heap, shape.NewRoot(), "inc", func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewNumber(args[0].Float64() + 1), nil
	}, nil)
	require.NoError(t, err)

	result, thrown, err := v.call(fn.Value(), value.UndefinedValue, []value.Value{value.NewNumber(41)})
	require.NoError(t, err)
	require.Nil(t, thrown)
	require.Equal(t, 42.0, result.Float64())
}

func TestGeneratorYieldsTwiceThenReturns(t *testing.T) {
	v := newTestVM(t)
	code := &CodeBlock{
		Name: "gen",
		Code: []byte{
			byte(OpConst), 0, byte(OpYield), byte(OpPop),
			byte(OpConst), 1, byte(OpYield), byte(OpPop),
			byte(OpConst), 2, byte(OpReturn),
		},
		Constants: []value.Value{value.NewNumber(1), value.NewNumber(2), value.NewNumber(3)},
		Flags:     FlagGenerator,
	}

	clo, err := NewClosure(v.heap, shape.NewRoot(), code, nil)
	require.NoError(t, err)

	genVal, thrown, err := v.call(clo.Value(), value.UndefinedValue, nil)
	require.NoError(t, err)
	require.Nil(t, thrown)

	genObj, ok := object.FromValue(genVal)
	require.True(t, ok)

	step := func() (float64, bool) {
		nextFn, err := genObj.Get(value.StringKey("next"), genVal)
		require.NoError(t, err)
		res, thrown, err := v.call(nextFn, genVal, nil)
		require.NoError(t, err)
		require.Nil(t, thrown)
		resObj, ok := object.FromValue(res)
		require.True(t, ok)
		val, err := resObj.Get(value.StringKey("value"), res)
		require.NoError(t, err)
		done, err := resObj.Get(value.StringKey("done"), res)
		require.NoError(t, err)
		return val.Float64(), toBoolean(done)
	}

	v1, d1 := step()
	require.Equal(t, 1.0, v1)
	require.False(t, d1)

	v2, d2 := step()
	require.Equal(t, 2.0, v2)
	require.False(t, d2)

	v3, d3 := step()
	require.Equal(t, 3.0, v3)
	require.True(t, d3)
}

func TestProxyGetTrapOverridesTarget(t *testing.T) {
	v := newTestVM(t)
	h := v.heap

	target, err := object.New(h, shape.NewRoot())
	require.NoError(t, err)
	require.NoError(t, target.DefineOwnProperty(value.StringKey("x"), object.PropertyDescriptor{
		Value: value.NewNumber(10), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	}))

	handler, err := object.New(h, shape.NewRoot())
	require.NoError(t, err)
	getTrap, err := object.NewNativeFunction(h, shape.NewRoot(), "get", func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewNumber(777), nil
	}, nil)
	require.NoError(t, err)
	require.NoError(t, handler.DefineOwnProperty(value.StringKey("get"), object.PropertyDescriptor{
		Value: getTrap.Value(), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	}))

	proxy, err := object.NewProxy(h, shape.NewRoot(), target, handler)
	require.NoError(t, err)

	result, thrown, err := v.getProperty(proxy, value.StringKey("x"), proxy.Value())
	require.NoError(t, err)
	require.Nil(t, thrown)
	require.Equal(t, 777.0, result.Float64())
}

func TestProxyGetTrapViolatingFrozenTargetThrows(t *testing.T) {
	v := newTestVM(t)
	h := v.heap

	target, err := object.New(h, shape.NewRoot())
	require.NoError(t, err)
	require.NoError(t, target.DefineOwnProperty(value.StringKey("x"), object.PropertyDescriptor{
		Value: value.NewNumber(1), Attrs: 0, HasValue: true, HasAttrs: true,
	}))

	handler, err := object.New(h, shape.NewRoot())
	require.NoError(t, err)
	getTrap, err := object.NewNativeFunction(h, shape.NewRoot(), "get", func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewNumber(2), nil
	}, nil)
	require.NoError(t, err)
	require.NoError(t, handler.DefineOwnProperty(value.StringKey("get"), object.PropertyDescriptor{
		Value: getTrap.Value(), Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
	}))

	proxy, err := object.NewProxy(h, shape.NewRoot(), target, handler)
	require.NoError(t, err)

	result, thrown, err := v.getProperty(proxy, value.StringKey("x"), proxy.Value())
	require.NoError(t, err)
	require.True(t, result.IsUndefined())
	require.NotNil(t, thrown)
	require.Contains(t, thrown.Value.GoString(), "TypeError")
}
