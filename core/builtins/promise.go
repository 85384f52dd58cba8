package builtins

import (
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

type promiseState = object.PromiseState

const (
	promisePending  = object.PromisePending
	promiseFulfilled = object.PromiseFulfilled
	promiseRejected  = object.PromiseRejected
)

type promiseReaction = object.PromiseReaction

// promiseData is a PromiseData alias kept local for readability; the
// actual settlement state lives on the Promise object itself
// (core/object/promise.go) so it is traced like any other reachable
// value instead of sitting in a package-level sidecar map.
type promiseData = object.PromiseData

func promiseOf(this value.Value) (*object.Object, *promiseData, error) {
	o, ok := object.FromValue(this)
	if !ok {
		return nil, nil, typeError("receiver is not a Promise")
	}
	d, ok := object.AsPromise(o)
	if !ok {
		return nil, nil, typeError("receiver is not a Promise")
	}
	return o, d, nil
}

func (b *builder) newPromise() (*object.Object, *promiseData, error) {
	o, err := object.NewPromiseObject(b.Heap, shape.NewRoot())
	if err != nil {
		return nil, nil, err
	}
	_ = o.SetPrototypeOf(b.promiseProto)
	d, _ := object.AsPromise(o)
	return o, d, nil
}

// installPromise builds %Promise.prototype% and the Promise constructor,
// scheduling every reaction through env.Jobs/Hooks.JobEnqueue so
// .then callbacks always run as a microtask, never synchronously (spec.md
// §3).
func (b *builder) installPromise() error {
	proto, err := b.newPlainProtoObject()
	if err != nil {
		return err
	}
	if b.objectProto != nil {
		_ = proto.SetPrototypeOf(b.objectProto)
	}
	b.promiseProto = proto
	ctor, err := b.newConstructor("Promise", b.promiseCall, b.promiseConstruct, proto)
	if err != nil {
		return err
	}
	if err := b.defineMethod(proto, "then", b.promiseThen); err != nil {
		return err
	}
	if err := b.defineMethod(proto, "catch", b.promiseCatch); err != nil {
		return err
	}
	if err := b.defineMethod(proto, "finally", b.promiseFinally); err != nil {
		return err
	}
	if err := b.defineMethod(ctor, "resolve", b.promiseResolveStatic); err != nil {
		return err
	}
	if err := b.defineMethod(ctor, "reject", b.promiseRejectStatic); err != nil {
		return err
	}
	if err := b.defineMethod(ctor, "all", b.promiseAll); err != nil {
		return err
	}
	return b.defineMethod(ctor, "race", b.promiseRace)
}

func (b *builder) promiseCall(this value.Value, args []value.Value) (value.Value, error) {
	return value.UndefinedValue, typeError("Constructor Promise requires 'new'")
}

func (b *builder) promiseConstruct(args []value.Value, newTarget *object.Object) (value.Value, error) {
	o, d, err := b.newPromise()
	if err != nil {
		return value.UndefinedValue, err
	}
	executor := argAt(args, 0)
	resolveFn, _ := object.NewNativeFunction(b.Heap, shape.NewRoot(), "", func(_ value.Value, args []value.Value) (value.Value, error) {
		b.settlePromise(d, promiseFulfilled, argAt(args, 0))
		return value.UndefinedValue, nil
	}, nil)
	rejectFn, _ := object.NewNativeFunction(b.Heap, shape.NewRoot(), "", func(_ value.Value, args []value.Value) (value.Value, error) {
		b.settlePromise(d, promiseRejected, argAt(args, 0))
		return value.UndefinedValue, nil
	}, nil)
	_, thrown, err := b.VM.Call(executor, value.UndefinedValue, []value.Value{resolveFn.Value(), rejectFn.Value()})
	if err != nil {
		return value.UndefinedValue, err
	}
	if thrown != nil {
		b.settlePromise(d, promiseRejected, thrown.Value)
	}
	return o.Value(), nil
}

// settlePromise transitions a pending promise once, then schedules every
// waiting reaction as a separate job (never runs them inline).
func (b *builder) settlePromise(d *promiseData, state promiseState, result value.Value) {
	if d.State != promisePending {
		return
	}
	if innerO, ok := object.FromValue(result); ok && state == promiseFulfilled {
		if innerD, ok := object.AsPromise(innerO); ok {
			b.chainPromise(innerD, d)
			return
		}
	}
	d.State, d.Result = state, result
	reactions := d.Reactions
	d.Reactions = nil
	for _, r := range reactions {
		b.scheduleReaction(d, r)
	}
}

// chainPromise makes outer adopt inner's eventual state, per the
// Promise Resolve Thenable Job (resolving a promise with another promise
// flattens instead of nesting).
func (b *builder) chainPromise(inner *promiseData, outer *promiseData) {
	cb := func(state promiseState, v value.Value) {
		b.settlePromise(outer, state, v)
	}
	if inner.State != promisePending {
		state, v := inner.State, inner.Result
		b.Hooks.JobEnqueue(func() { cb(state, v) })
		return
	}
	resolveFn, _ := object.NewNativeFunction(b.Heap, shape.NewRoot(), "", func(_ value.Value, args []value.Value) (value.Value, error) {
		cb(promiseFulfilled, argAt(args, 0))
		return value.UndefinedValue, nil
	}, nil)
	rejectFn, _ := object.NewNativeFunction(b.Heap, shape.NewRoot(), "", func(_ value.Value, args []value.Value) (value.Value, error) {
		cb(promiseRejected, argAt(args, 0))
		return value.UndefinedValue, nil
	}, nil)
	inner.Reactions = append(inner.Reactions, promiseReaction{
		OnFulfilled: resolveFn.Value(),
		OnRejected:  rejectFn.Value(),
	})
}

func (b *builder) scheduleReaction(d *promiseData, r promiseReaction) {
	state, result := d.State, d.Result
	b.Hooks.JobEnqueue(func() {
		var cb value.Value
		if state == promiseFulfilled {
			cb = r.OnFulfilled
		} else {
			cb = r.OnRejected
		}
		if !cb.IsObject() || !mustCallable(cb) {
			if r.Result != nil {
				if rd, ok := object.AsPromise(r.Result); ok {
					b.settlePromise(rd, state, result)
				}
			}
			return
		}
		v, thrown, err := b.VM.Call(cb, value.UndefinedValue, []value.Value{result})
		if err != nil {
			if r.Result != nil && b.Hooks.OnUnhandledRejection != nil {
				b.Hooks.OnUnhandledRejection(value.NewStringGo(err.Error()))
			}
			return
		}
		if r.Result == nil {
			return
		}
		rd, ok := object.AsPromise(r.Result)
		if !ok {
			return
		}
		if thrown != nil {
			b.settlePromise(rd, promiseRejected, thrown.Value)
			return
		}
		b.settlePromise(rd, promiseFulfilled, v)
	})
}

func mustCallable(v value.Value) bool {
	o, ok := object.FromValue(v)
	return ok && o.Callable()
}

func (b *builder) promiseThen(this value.Value, args []value.Value) (value.Value, error) {
	_, d, err := promiseOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	resultObj, resultData, err := b.newPromise()
	if err != nil {
		return value.UndefinedValue, err
	}
	_ = resultData
	r := promiseReaction{OnFulfilled: argAt(args, 0), OnRejected: argAt(args, 1), Result: resultObj}
	if d.State == promisePending {
		d.Reactions = append(d.Reactions, r)
	} else {
		b.scheduleReaction(d, r)
	}
	return resultObj.Value(), nil
}

func (b *builder) promiseCatch(this value.Value, args []value.Value) (value.Value, error) {
	return b.promiseThen(this, []value.Value{value.UndefinedValue, argAt(args, 0)})
}

func (b *builder) promiseFinally(this value.Value, args []value.Value) (value.Value, error) {
	cb := argAt(args, 0)
	wrap, _ := object.NewNativeFunction(b.Heap, shape.NewRoot(), "", func(this value.Value, args []value.Value) (value.Value, error) {
		if mustCallable(cb) {
			if _, thrown, err := b.VM.Call(cb, value.UndefinedValue, nil); err != nil {
				return value.UndefinedValue, err
			} else if thrown != nil {
				return value.UndefinedValue, thrown
			}
		}
		return argAt(args, 0), nil
	}, nil)
	return b.promiseThen(this, []value.Value{wrap.Value(), wrap.Value()})
}

func (b *builder) promiseResolveStatic(this value.Value, args []value.Value) (value.Value, error) {
	v := argAt(args, 0)
	if o, ok := object.FromValue(v); ok {
		if _, ok := object.AsPromise(o); ok {
			return v, nil
		}
	}
	o, d, err := b.newPromise()
	if err != nil {
		return value.UndefinedValue, err
	}
	b.settlePromise(d, promiseFulfilled, v)
	return o.Value(), nil
}

func (b *builder) promiseRejectStatic(this value.Value, args []value.Value) (value.Value, error) {
	o, d, err := b.newPromise()
	if err != nil {
		return value.UndefinedValue, err
	}
	b.settlePromise(d, promiseRejected, argAt(args, 0))
	return o.Value(), nil
}

func (b *builder) promiseAll(this value.Value, args []value.Value) (value.Value, error) {
	var items []value.Value
	if err := b.forEachIterable(argAt(args, 0), func(v value.Value) error {
		items = append(items, v)
		return nil
	}); err != nil {
		return value.UndefinedValue, err
	}
	outObj, outData, err := b.newPromise()
	if err != nil {
		return value.UndefinedValue, err
	}
	if len(items) == 0 {
		arr, err := b.newArrayOf(nil)
		if err != nil {
			return value.UndefinedValue, err
		}
		b.settlePromise(outData, promiseFulfilled, arr)
		return outObj.Value(), nil
	}
	results := make([]value.Value, len(items))
	remaining := len(items)
	for i, item := range items {
		i := i
		resolved, err := b.promiseResolveStatic(value.UndefinedValue, []value.Value{item})
		if err != nil {
			return value.UndefinedValue, err
		}
		_, rd, _ := promiseOf(resolved)
		onOk, _ := object.NewNativeFunction(b.Heap, shape.NewRoot(), "", func(_ value.Value, args []value.Value) (value.Value, error) {
			results[i] = argAt(args, 0)
			remaining--
			if remaining == 0 {
				arr, err := b.newArrayOf(results)
				if err != nil {
					return value.UndefinedValue, err
				}
				b.settlePromise(outData, promiseFulfilled, arr)
			}
			return value.UndefinedValue, nil
		}, nil)
		onErr, _ := object.NewNativeFunction(b.Heap, shape.NewRoot(), "", func(_ value.Value, args []value.Value) (value.Value, error) {
			b.settlePromise(outData, promiseRejected, argAt(args, 0))
			return value.UndefinedValue, nil
		}, nil)
		r := promiseReaction{OnFulfilled: onOk.Value(), OnRejected: onErr.Value()}
		if rd.State == promisePending {
			rd.Reactions = append(rd.Reactions, r)
		} else {
			b.scheduleReaction(rd, r)
		}
	}
	return outObj.Value(), nil
}

func (b *builder) promiseRace(this value.Value, args []value.Value) (value.Value, error) {
	var items []value.Value
	if err := b.forEachIterable(argAt(args, 0), func(v value.Value) error {
		items = append(items, v)
		return nil
	}); err != nil {
		return value.UndefinedValue, err
	}
	outObj, outData, err := b.newPromise()
	if err != nil {
		return value.UndefinedValue, err
	}
	for _, item := range items {
		resolved, err := b.promiseResolveStatic(value.UndefinedValue, []value.Value{item})
		if err != nil {
			return value.UndefinedValue, err
		}
		_, rd, _ := promiseOf(resolved)
		onOk, _ := object.NewNativeFunction(b.Heap, shape.NewRoot(), "", func(_ value.Value, args []value.Value) (value.Value, error) {
			b.settlePromise(outData, promiseFulfilled, argAt(args, 0))
			return value.UndefinedValue, nil
		}, nil)
		onErr, _ := object.NewNativeFunction(b.Heap, shape.NewRoot(), "", func(_ value.Value, args []value.Value) (value.Value, error) {
			b.settlePromise(outData, promiseRejected, argAt(args, 0))
			return value.UndefinedValue, nil
		}, nil)
		r := promiseReaction{OnFulfilled: onOk.Value(), OnRejected: onErr.Value()}
		if rd.State == promisePending {
			rd.Reactions = append(rd.Reactions, r)
		} else {
			b.scheduleReaction(rd, r)
		}
	}
	return outObj.Value(), nil
}
