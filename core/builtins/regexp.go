package builtins

import (
	"strings"

	"github.com/dlclark/regexp2"

	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// regexpData is a view onto one RegExp instance's exotic state
// (core/object/regexp.go), grounded on dlclark/regexp2: stdlib
// regexp/RE2 cannot backtrack, so it rejects backreferences and
// lookaround that ECMA-262 regular expressions require.
type regexpData struct {
	re     *regexp2.Regexp
	source string
	flags  string
}

func regexpOf(this value.Value) (*object.Object, *regexpData, error) {
	o, ok := object.FromValue(this)
	if !ok {
		return nil, nil, typeError("receiver is not a RegExp")
	}
	re, source, flags, ok := object.RegExpData(o)
	if !ok {
		return nil, nil, typeError("receiver is not a RegExp")
	}
	return o, &regexpData{re: re, source: source, flags: flags}, nil
}

func compileRegexp2(source, flags string) (*regexp2.Regexp, error) {
	opts := regexp2.None
	if strings.Contains(flags, "i") {
		opts |= regexp2.IgnoreCase
	}
	if strings.Contains(flags, "s") {
		opts |= regexp2.Singleline
	}
	if strings.Contains(flags, "m") {
		opts |= regexp2.Multiline
	}
	re, err := regexp2.Compile(source, opts)
	if err != nil {
		return nil, err
	}
	return re, nil
}

func (b *builder) installRegExp() error {
	proto, err := b.newPlainProtoObject()
	if err != nil {
		return err
	}
	if b.objectProto != nil {
		_ = proto.SetPrototypeOf(b.objectProto)
	}
	b.regexpProto = proto
	if _, err := b.newConstructor("RegExp", b.regexpCall, b.regexpConstruct, proto); err != nil {
		return err
	}
	if err := b.defineMethod(proto, "test", b.regexpTest); err != nil {
		return err
	}
	if err := b.defineMethod(proto, "exec", b.regexpExec); err != nil {
		return err
	}
	return b.defineMethod(proto, "toString", b.regexpToString)
}

func (b *builder) regexpCall(this value.Value, args []value.Value) (value.Value, error) {
	return b.regexpConstruct(args, nil)
}

func (b *builder) regexpConstruct(args []value.Value, newTarget *object.Object) (value.Value, error) {
	source := "(?:)"
	if s := argAt(args, 0); !s.IsUndefined() {
		if _, existing, err := regexpOf(s); err == nil {
			source = existing.source
		} else {
			source = s.GoString()
		}
	}
	flags := ""
	if f := argAt(args, 1); !f.IsUndefined() {
		flags = f.GoString()
	}
	re, err := compileRegexp2(source, flags)
	if err != nil {
		return value.UndefinedValue, typeError("invalid regular expression: " + err.Error())
	}
	o, err := object.NewRegExpObject(b.Heap, shape.NewRoot(), re, source, flags)
	if err != nil {
		return value.UndefinedValue, err
	}
	_ = o.SetPrototypeOf(b.regexpProto)
	if err := b.defineValue(o, "source", value.NewStringGo(source), 0); err != nil {
		return value.UndefinedValue, err
	}
	if err := b.defineValue(o, "flags", value.NewStringGo(flags), 0); err != nil {
		return value.UndefinedValue, err
	}
	if err := b.defineValue(o, "lastIndex", value.NewNumber(0), shape.Writable); err != nil {
		return value.UndefinedValue, err
	}
	return o.Value(), nil
}

func (b *builder) regexpTest(this value.Value, args []value.Value) (value.Value, error) {
	_, d, err := regexpOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	m, merr := d.re.FindStringMatch(argAt(args, 0).GoString())
	if merr != nil {
		return value.UndefinedValue, typeError("regexp match failed: " + merr.Error())
	}
	return value.NewBool(m != nil), nil
}

func (b *builder) regexpExec(this value.Value, args []value.Value) (value.Value, error) {
	_, d, err := regexpOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	m, merr := d.re.FindStringMatch(argAt(args, 0).GoString())
	if merr != nil {
		return value.UndefinedValue, typeError("regexp match failed: " + merr.Error())
	}
	if m == nil {
		return value.NullValue, nil
	}
	groups := m.Groups()
	vals := make([]value.Value, len(groups))
	for i, g := range groups {
		if len(g.Captures) == 0 {
			vals[i] = value.UndefinedValue
		} else {
			vals[i] = value.NewStringGo(g.String())
		}
	}
	arr, err := b.newArrayOf(vals)
	if err != nil {
		return value.UndefinedValue, err
	}
	arrObj, _ := object.FromValue(arr)
	_ = b.defineValue(arrObj, "index", value.NewNumber(float64(m.Index)), shape.DataDefault)
	_ = b.defineValue(arrObj, "input", argAt(args, 0), shape.DataDefault)
	return arr, nil
}

func (b *builder) regexpToString(this value.Value, args []value.Value) (value.Value, error) {
	_, d, err := regexpOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	return value.NewStringGo("/" + d.source + "/" + d.flags), nil
}
