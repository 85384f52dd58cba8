package builtins

import (
	"strconv"
	"strings"

	"github.com/valyala/fastjson"

	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// installJSON builds the %JSON% namespace. JSON.parse is grounded on
// valyala/fastjson, a zero-allocation DOM parser; JSON.stringify is
// hand-rolled because ECMAScript's key-ordering (insertion order, not
// fastjson's map iteration) has no fastjson analog. JSON.stringify
// serializes its first argument only; replacer and space are ignored.
func (b *builder) installJSON() error {
	j, err := b.newObject()
	if err != nil {
		return err
	}
	if err := b.defineMethod(j, "parse", b.jsonParse); err != nil {
		return err
	}
	if err := b.defineMethod(j, "stringify", b.jsonStringify); err != nil {
		return err
	}
	return b.defineValue(b.Global, "JSON", j.Value(), shape.Writable|shape.Configurable)
}

func (b *builder) jsonParse(this value.Value, args []value.Value) (value.Value, error) {
	text := argAt(args, 0).GoString()
	var p fastjson.Parser
	v, err := p.Parse(text)
	if err != nil {
		return value.UndefinedValue, typeError("invalid JSON: " + err.Error())
	}
	return b.fromFastjson(v)
}

func (b *builder) fromFastjson(v *fastjson.Value) (value.Value, error) {
	switch v.Type() {
	case fastjson.TypeNull:
		return value.NullValue, nil
	case fastjson.TypeTrue:
		return value.TrueValue, nil
	case fastjson.TypeFalse:
		return value.FalseValue, nil
	case fastjson.TypeNumber:
		return value.NewNumber(v.GetFloat64()), nil
	case fastjson.TypeString:
		s, _ := v.StringBytes()
		return value.NewStringGo(string(s)), nil
	case fastjson.TypeArray:
		items, _ := v.Array()
		vals := make([]value.Value, len(items))
		for i, it := range items {
			cv, err := b.fromFastjson(it)
			if err != nil {
				return value.UndefinedValue, err
			}
			vals[i] = cv
		}
		return b.newArrayOf(vals)
	case fastjson.TypeObject:
		o, err := b.newObject()
		if err != nil {
			return value.UndefinedValue, err
		}
		obj, _ := v.Object()
		obj.Visit(func(key []byte, val *fastjson.Value) {
			cv, cerr := b.fromFastjson(val)
			if cerr != nil {
				return
			}
			_ = o.DefineOwnProperty(value.StringKey(string(key)), object.PropertyDescriptor{
				Value: cv, Attrs: shape.DataDefault, HasValue: true, HasAttrs: true,
			})
		})
		return o.Value(), nil
	default:
		return value.UndefinedValue, nil
	}
}

func (b *builder) jsonStringify(this value.Value, args []value.Value) (value.Value, error) {
	v := argAt(args, 0)
	var sb strings.Builder
	ok, err := b.stringifyInto(&sb, v)
	if err != nil {
		return value.UndefinedValue, err
	}
	if !ok {
		return value.UndefinedValue, nil
	}
	return value.NewStringGo(sb.String()), nil
}

// stringifyInto writes v's JSON text into sb, reporting false when v
// (a function, undefined, or symbol) serializes to no text at all per
// ECMA-262's JSON.stringify abstract operation.
func (b *builder) stringifyInto(sb *strings.Builder, v value.Value) (bool, error) {
	switch {
	case v.IsUndefined() || v.IsSymbol():
		return false, nil
	case v.IsNull():
		sb.WriteString("null")
	case v.IsBoolean():
		sb.WriteString(strconv.FormatBool(v.Bool()))
	case v.IsNumber():
		sb.WriteString(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case v.IsString():
		sb.WriteString(strconv.Quote(v.GoString()))
	case v.IsObject():
		o, _ := object.FromValue(v)
		if toJSON, err := o.Get(value.StringKey("toJSON"), v); err == nil && toJSON.IsObject() {
			replaced, thrown, err := b.VM.Call(toJSON, v, nil)
			if err != nil {
				return false, err
			}
			if thrown != nil {
				return false, thrown
			}
			return b.stringifyInto(sb, replaced)
		}
		if o.Callable() {
			return false, nil
		}
		if o.Class() == "Array" {
			return b.stringifyArray(sb, o)
		}
		return b.stringifyObject(sb, o)
	}
	return true, nil
}

func (b *builder) stringifyArray(sb *strings.Builder, o *object.Object) (bool, error) {
	sb.WriteByte('[')
	n := arrayLength(o)
	for i := uint32(0); i < n; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		v := arrayElementAt(o, i)
		ok, err := b.stringifyInto(sb, v)
		if err != nil {
			return false, err
		}
		if !ok {
			sb.WriteString("null")
		}
	}
	sb.WriteByte(']')
	return true, nil
}

func (b *builder) stringifyObject(sb *strings.Builder, o *object.Object) (bool, error) {
	sb.WriteByte('{')
	first := true
	for _, k := range enumerableOwnKeys(o) {
		desc, _ := o.GetOwnProperty(k)
		var tmp strings.Builder
		ok, err := b.stringifyInto(&tmp, desc.Value)
		if err != nil {
			return false, err
		}
		if !ok {
			continue
		}
		if !first {
			sb.WriteByte(',')
		}
		first = false
		sb.WriteString(strconv.Quote(k.String()))
		sb.WriteByte(':')
		sb.WriteString(tmp.String())
	}
	sb.WriteByte('}')
	return true, nil
}
