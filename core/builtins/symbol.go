package builtins

import (
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// symbolRegistry backs Symbol.for/Symbol.keyFor (the one process-wide-
// looking table ECMA-262 actually specifies per-realm; kept here rather
// than in core/value per that package's own "avoids process-wide
// singletons" note).
type symbolRegistry struct {
	byKey map[string]*value.Symbol
	nextID uint64
}

func (b *builder) installSymbolGlobal() error {
	proto, err := b.newPlainProtoObject()
	if err != nil {
		return err
	}
	if b.objectProto != nil {
		_ = proto.SetPrototypeOf(b.objectProto)
	}
	b.symbolProto = proto
	reg := &symbolRegistry{byKey: make(map[string]*value.Symbol)}

	ctor, err := object.NewNativeFunction(b.Heap, shape.NewRoot(), "Symbol", b.symbolCall(reg), nil)
	if err != nil {
		return err
	}
	if b.functionProto != nil {
		_ = ctor.SetPrototypeOf(b.functionProto)
	}
	if err := b.defineValue(ctor, "prototype", proto.Value(), 0); err != nil {
		return err
	}
	if err := b.defineValue(b.Global, "Symbol", ctor.Value(), shape.Writable|shape.Configurable); err != nil {
		return err
	}
	b.Intrinsics["%Symbol%"] = ctor

	wellKnown := []string{"iterator", "asyncIterator", "toPrimitive", "toStringTag", "hasInstance"}
	for i, name := range wellKnown {
		sym := value.NewSymbol(uint64(i+1), strPtr("Symbol."+name))
		if err := b.defineValue(ctor, name, value.NewSymbolValue(sym), 0); err != nil {
			return err
		}
	}
	reg.nextID = uint64(len(wellKnown) + 1)

	if err := b.defineMethod(ctor, "for", func(this value.Value, args []value.Value) (value.Value, error) {
		key := argAt(args, 0).GoString()
		if s, ok := reg.byKey[key]; ok {
			return value.NewSymbolValue(s), nil
		}
		reg.nextID++
		s := value.NewRegisteredSymbol(reg.nextID, key)
		reg.byKey[key] = s
		return value.NewSymbolValue(s), nil
	}); err != nil {
		return err
	}
	return b.defineMethod(ctor, "keyFor", func(this value.Value, args []value.Value) (value.Value, error) {
		if !argAt(args, 0).IsSymbol() {
			return value.UndefinedValue, typeError("Symbol.keyFor argument must be a symbol")
		}
		if key, ok := argAt(args, 0).Symbol().GlobalKey(); ok {
			return value.NewStringGo(key), nil
		}
		return value.UndefinedValue, nil
	})
}

func strPtr(s string) *string { return &s }

func (b *builder) symbolCall(reg *symbolRegistry) object.NativeCall {
	return func(this value.Value, args []value.Value) (value.Value, error) {
		reg.nextID++
		var desc *string
		if d := argAt(args, 0); !d.IsUndefined() {
			s := d.GoString()
			desc = &s
		}
		return value.NewSymbolValue(value.NewSymbol(reg.nextID, desc)), nil
	}
}
