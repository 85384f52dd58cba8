// Package builtins implements the built-in prototypes and global
// functions of spec.md §4.3: Object, Array, Map/Set/WeakMap/WeakSet,
// Date, RegExp, Promise, Error family, JSON, Math, Reflect, Proxy.
// Each file below installs one concern's intrinsic(s) onto a shared
// *builder, grounded on whichever pack library DESIGN.md records for it.
package builtins

import (
	"go.uber.org/zap"

	"github.com/coreform/jsvm/core/gc"
	"github.com/coreform/jsvm/core/hostapi"
	"github.com/coreform/jsvm/core/job"
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
	"github.com/coreform/jsvm/core/vm"
)

// Env is everything Install needs from core/realm to wire the built-ins
// into a freshly constructed realm: the heap to allocate through, the
// global object and intrinsics table to populate, the VM to invoke
// script callables with, the job queue Promise reactions enqueue onto,
// and the host hooks (Random/UTCNow) built-ins fall back to a default
// for when unset; Hooks.TZOffset is not read.
type Env struct {
	Heap       *gc.Heap
	Global     *object.Object
	Intrinsics map[string]*object.Object
	VM         *vm.VM
	Jobs       *job.Queue
	Hooks      hostapi.Hooks
	Logger     *zap.Logger
}

// builder threads Env plus the handful of cross-referenced prototypes
// (Object.prototype is every other prototype's [[Prototype]]) through
// the per-concern install functions.
type builder struct {
	Env
	log *zap.Logger

	objectProto   *object.Object
	functionProto *object.Object
	arrayProto    *object.Object
	errorProto    *object.Object
	promiseProto  *object.Object
	mapProto      *object.Object
	setProto      *object.Object
	regexpProto   *object.Object
	dateProto     *object.Object
	symbolProto   *object.Object
}

// Install builds every built-in prototype/constructor and attaches the
// constructors to env.Global, matching spec.md §4.5 "built once at realm
// creation from core/builtins' install functions".
func Install(env Env) error {
	log := env.Logger
	if log == nil {
		log = zap.NewNop()
	}
	b := &builder{Env: env, log: log}

	steps := []func() error{
		b.installObjectAndFunction,
		b.installArray,
		b.installErrorTaxonomy,
		b.installMath,
		b.installJSON,
		b.installMapSet,
		b.installDate,
		b.installRegExp,
		b.installPromise,
		b.installReflectProxy,
		b.installSymbolGlobal,
		b.installArrayBufferAndTypedArrays,
		b.installStructuredClone,
		b.installConsole,
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	// Wire the VM's internal error-raising hook now that the Error
	// taxonomy exists: core/vm raises TypeError/RangeError/... for
	// language errors (bad calls, coercions, proxy invariant violations)
	// and needs a real Error instance, not a bare string, to satisfy
	// `e instanceof TypeError` (SPEC_FULL.md §7).
	if b.VM != nil {
		b.VM.SetNewError(b.newErrorValue)
	}
	return nil
}

// --- shared construction helpers -------------------------------------------------

func (b *builder) newObject() (*object.Object, error) {
	o, err := object.New(b.Heap, shape.NewRoot())
	if err != nil {
		return nil, err
	}
	if b.objectProto != nil {
		_ = o.SetPrototypeOf(b.objectProto)
	}
	return o, nil
}

func (b *builder) newPlainProtoObject() (*object.Object, error) {
	// Object.prototype itself and a few other root prototypes have no
	// [[Prototype]] of their own yet at the point they're built.
	return object.New(b.Heap, shape.NewRoot())
}

// defineMethod installs a native, writable+configurable-but-non-
// enumerable method, matching how ECMAScript's own built-in prototype
// methods are specified (enumerable: false).
func (b *builder) defineMethod(target *object.Object, name string, fn object.NativeCall) error {
	fo, err := object.NewNativeFunction(b.Heap, shape.NewRoot(), name, fn, nil)
	if err != nil {
		return err
	}
	if b.functionProto != nil {
		_ = fo.SetPrototypeOf(b.functionProto)
	}
	return target.DefineOwnProperty(value.StringKey(name), object.PropertyDescriptor{
		Value: fo.Value(), Attrs: shape.Writable | shape.Configurable, HasValue: true, HasAttrs: true,
	})
}

func (b *builder) defineValue(target *object.Object, name string, v value.Value, attrs shape.Attrs) error {
	return target.DefineOwnProperty(value.StringKey(name), object.PropertyDescriptor{
		Value: v, Attrs: attrs, HasValue: true, HasAttrs: true,
	})
}

// newConstructor builds a native function/constructor pair and both
// installs it as env.Global[name] and records it in env.Intrinsics under
// "%Name%", per spec.md §4.5's intrinsics-by-identity convention.
func (b *builder) newConstructor(name string, call object.NativeCall, construct object.NativeConstruct, proto *object.Object) (*object.Object, error) {
	ctor, err := object.NewNativeFunction(b.Heap, shape.NewRoot(), name, call, construct)
	if err != nil {
		return nil, err
	}
	if b.functionProto != nil {
		_ = ctor.SetPrototypeOf(b.functionProto)
	}
	if proto != nil {
		if err := b.defineValue(ctor, "prototype", proto.Value(), 0); err != nil {
			return nil, err
		}
		if err := b.defineValue(proto, "constructor", ctor.Value(), shape.Writable|shape.Configurable); err != nil {
			return nil, err
		}
	}
	if err := b.defineValue(b.Global, name, ctor.Value(), shape.Writable|shape.Configurable); err != nil {
		return nil, err
	}
	b.Intrinsics["%"+name+"%"] = ctor
	if proto != nil {
		b.Intrinsics["%"+name+".prototype%"] = proto
	}
	return ctor, nil
}

func argAt(args []value.Value, i int) value.Value {
	if i < 0 || i >= len(args) {
		return value.UndefinedValue
	}
	return args[i]
}

func typeError(msg string) error {
	return &vm.ThrowSignal{Value: value.NewStringGo("TypeError: " + msg)}
}

func rangeError(msg string) error {
	return &vm.ThrowSignal{Value: value.NewStringGo("RangeError: " + msg)}
}
