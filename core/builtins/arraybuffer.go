package builtins

import (
	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

var typedArrayKinds = map[string]object.ElementKind{
	"Int8Array": object.Int8Array, "Uint8Array": object.Uint8Array, "Uint8ClampedArray": object.Uint8ClampedArray,
	"Int16Array": object.Int16Array, "Uint16Array": object.Uint16Array,
	"Int32Array": object.Int32Array, "Uint32Array": object.Uint32Array,
	"Float32Array": object.Float32Array, "Float64Array": object.Float64Array,
	"BigInt64Array": object.BigInt64Array, "BigUint64Array": object.BigUint64Array,
}

// installArrayBufferAndTypedArrays builds ArrayBuffer plus the eleven
// TypedArray constructors over core/object's typed-array exotic views
// (spec.md §4.3).
func (b *builder) installArrayBufferAndTypedArrays() error {
	bufProto, err := b.newPlainProtoObject()
	if err != nil {
		return err
	}
	if b.objectProto != nil {
		_ = bufProto.SetPrototypeOf(b.objectProto)
	}
	if _, err := b.newConstructor("ArrayBuffer", b.arrayBufferCall, b.arrayBufferConstruct, bufProto); err != nil {
		return err
	}
	if err := b.defineMethod(bufProto, "slice", b.arrayBufferSlice); err != nil {
		return err
	}

	for name, kind := range typedArrayKinds {
		name, kind := name, kind
		proto, err := b.newPlainProtoObject()
		if err != nil {
			return err
		}
		if b.objectProto != nil {
			_ = proto.SetPrototypeOf(b.objectProto)
		}
		if err := b.defineMethod(proto, "fill", b.typedArrayFill); err != nil {
			return err
		}
		if _, err := b.newConstructor(name, b.typedArrayCall(kind, proto), b.typedArrayConstruct(kind, proto), proto); err != nil {
			return err
		}
	}
	return nil
}

func (b *builder) arrayBufferCall(this value.Value, args []value.Value) (value.Value, error) {
	return value.UndefinedValue, typeError("Constructor ArrayBuffer requires 'new'")
}

func (b *builder) arrayBufferConstruct(args []value.Value, newTarget *object.Object) (value.Value, error) {
	n := int(argAt(args, 0).Float64())
	if n < 0 {
		return value.UndefinedValue, rangeError("invalid ArrayBuffer length")
	}
	buf := object.NewArrayBuffer(n)
	o, err := object.NewArrayBufferObject(b.Heap, shape.NewRoot(), buf)
	if err != nil {
		return value.UndefinedValue, err
	}
	if p, ok := b.Intrinsics["%ArrayBuffer.prototype%"]; ok {
		_ = o.SetPrototypeOf(p)
	}
	return o.Value(), nil
}

func (b *builder) arrayBufferSlice(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := object.FromValue(this)
	if !ok {
		return value.UndefinedValue, typeError("receiver is not an ArrayBuffer")
	}
	buf, ok := object.AsArrayBuffer(o)
	if !ok {
		return value.UndefinedValue, typeError("receiver is not an ArrayBuffer")
	}
	n := buf.ByteLength()
	start := clampIndex(argAt(args, 0), n, 0)
	end := clampIndex(argAt(args, 1), n, n)
	data := make([]byte, end-start)
	copy(data, buf.Bytes()[start:end])
	newBuf := object.NewArrayBufferFromBytes(data)
	out, err := object.NewArrayBufferObject(b.Heap, shape.NewRoot(), newBuf)
	if err != nil {
		return value.UndefinedValue, err
	}
	if p, ok := b.Intrinsics["%ArrayBuffer.prototype%"]; ok {
		_ = out.SetPrototypeOf(p)
	}
	return out.Value(), nil
}

func (b *builder) typedArrayCall(kind object.ElementKind, proto *object.Object) object.NativeCall {
	return func(this value.Value, args []value.Value) (value.Value, error) {
		return value.UndefinedValue, typeError("Constructor TypedArray requires 'new'")
	}
}

func (b *builder) typedArrayConstruct(kind object.ElementKind, proto *object.Object) object.NativeConstruct {
	return func(args []value.Value, newTarget *object.Object) (value.Value, error) {
		arg0 := argAt(args, 0)
		var bufObj *object.Object
		var byteOffset, length int
		if arg0.IsNumber() {
			n := int(arg0.Float64())
			buf := object.NewArrayBuffer(n * elementByteSize(kind))
			var err error
			bufObj, err = object.NewArrayBufferObject(b.Heap, shape.NewRoot(), buf)
			if err != nil {
				return value.UndefinedValue, err
			}
			length = n
		} else if o, ok := object.FromValue(arg0); ok {
			if _, ok := object.AsArrayBuffer(o); ok {
				bufObj = o
				byteOffset = int(argAt(args, 1).Float64())
				if lv := argAt(args, 2); !lv.IsUndefined() {
					length = int(lv.Float64())
				} else {
					buf, _ := object.AsArrayBuffer(o)
					length = (buf.ByteLength() - byteOffset) / elementByteSize(kind)
				}
			}
		}
		if bufObj == nil {
			return value.UndefinedValue, typeError("unsupported TypedArray argument")
		}
		buf, _ := object.AsArrayBuffer(bufObj)
		ta, err := object.NewTypedArray(b.Heap, shape.NewRoot(), buf, byteOffset, length, kind, true)
		if err != nil {
			return value.UndefinedValue, err
		}
		_ = ta.SetPrototypeOf(proto)
		return ta.Value(), nil
	}
}

func elementByteSize(kind object.ElementKind) int {
	switch kind {
	case object.Int8Array, object.Uint8Array, object.Uint8ClampedArray:
		return 1
	case object.Int16Array, object.Uint16Array:
		return 2
	case object.Int32Array, object.Uint32Array, object.Float32Array:
		return 4
	default:
		return 8
	}
}

func (b *builder) typedArrayFill(this value.Value, args []value.Value) (value.Value, error) {
	o, ok := object.FromValue(this)
	if !ok {
		return value.UndefinedValue, typeError("receiver is not a TypedArray")
	}
	n := arrayLength(o)
	v := argAt(args, 0)
	for i := uint32(0); i < n; i++ {
		_ = o.Set(value.StringKey(indexKey(int(i))), v, this)
	}
	return this, nil
}
