package realm

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coreform/jsvm/core/hostapi"
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
	"github.com/coreform/jsvm/core/vm"
)

func TestNewContextInstallsGlobals(t *testing.T) {
	ctx, err := NewContext(Config{})
	require.NoError(t, err)
	require.NotNil(t, ctx.Heap)
	require.NotNil(t, ctx.Realm)
	require.NotNil(t, ctx.VM)
	require.NotNil(t, ctx.Jobs)

	_, ok := ctx.Realm.Intrinsic("%Object.prototype%")
	require.True(t, ok, "builtins.Install must have populated the intrinsics table")
}

func TestEvalReturnsScriptResult(t *testing.T) {
	ctx, err := NewContext(Config{})
	require.NoError(t, err)

	code := &vm.CodeBlock{
		Name:      "add",
		Code:      []byte{byte(vm.OpConst), 0, byte(vm.OpConst), 1, byte(vm.OpAdd), byte(vm.OpReturn)},
		Constants: []value.Value{value.NewNumber(1), value.NewNumber(2)},
	}

	result, err := ctx.Eval(code)
	require.NoError(t, err)
	require.Equal(t, 3.0, result.Float64())
}

func TestEvalReportsUncaughtException(t *testing.T) {
	var reported value.Value
	var calls int
	ctx, err := NewContext(Config{
		Hooks: hostapi.Hooks{
			OnUncaughtException: func(v value.Value) {
				calls++
				reported = v
			},
		},
	})
	require.NoError(t, err)

	code := &vm.CodeBlock{
		Name:      "throws",
		Code:      []byte{byte(vm.OpConst), 0, byte(vm.OpThrow)},
		Constants: []value.Value{value.NewStringGo("boom")},
	}

	_, err = ctx.Eval(code)
	require.Error(t, err)
	require.Equal(t, 1, calls)
	require.Equal(t, "boom", reported.Str().Go())
}

func TestEvalDrainsJobQueueAfterScript(t *testing.T) {
	var ran bool
	var enqueued func()
	ctx, err := NewContext(Config{
		Hooks: hostapi.Hooks{
			JobEnqueue: func(run func()) { enqueued = run },
			JobDrain:   func() { ran = true },
		},
	})
	require.NoError(t, err)

	code := &vm.CodeBlock{
		Name:      "noop",
		Code:      []byte{byte(vm.OpConst), 0, byte(vm.OpReturn)},
		Constants: []value.Value{value.UndefinedValue},
	}

	_, err = ctx.Eval(code)
	require.NoError(t, err)
	require.True(t, ran, "Eval must drain jobs through the configured hook even when nothing was enqueued")
	require.Nil(t, enqueued)
}

func allocGarbage(t *testing.T, ctx *Context) {
	t.Helper()
	o, err := object.New(ctx.Heap, shape.NewRoot())
	require.NoError(t, err)
	_ = o // unreachable from any root once this function returns
}

func TestRequestGCRunsACollection(t *testing.T) {
	ctx, err := NewContext(Config{})
	require.NoError(t, err)

	allocGarbage(t, ctx)
	before := ctx.Heap.LiveCount()
	ctx.RequestGC()
	after := ctx.Heap.LiveCount()
	require.Less(t, after, before, "RequestGC must sweep the now-unreachable object")
}

func TestRequestGCIsRateLimited(t *testing.T) {
	ctx, err := NewContext(Config{GCRequestRate: 1, GCRequestBurst: 1})
	require.NoError(t, err)

	allocGarbage(t, ctx)
	ctx.RequestGC()
	afterFirst := ctx.Heap.LiveCount()

	allocGarbage(t, ctx)
	ctx.RequestGC()
	afterSecond := ctx.Heap.LiveCount()

	require.Equal(t, afterFirst+1, afterSecond, "a burst of 1 must block the immediately-following RequestGC, leaving the second allocation uncollected")
}
