package builtins

import (
	"time"

	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

func dateOf(this value.Value) (*object.Object, float64, error) {
	o, ok := object.FromValue(this)
	if !ok {
		return nil, 0, typeError("receiver is not a Date")
	}
	ms, ok := object.DateValue(o)
	if !ok {
		return nil, 0, typeError("receiver is not a Date")
	}
	return o, ms, nil
}

func (b *builder) installDate() error {
	proto, err := b.newPlainProtoObject()
	if err != nil {
		return err
	}
	if b.objectProto != nil {
		_ = proto.SetPrototypeOf(b.objectProto)
	}
	b.dateProto = proto
	if _, err := b.newConstructor("Date", b.dateCall, b.dateConstruct, proto); err != nil {
		return err
	}
	methods := map[string]object.NativeCall{
		"getTime":        b.dateGetTime,
		"valueOf":        b.dateGetTime,
		"getFullYear":    b.dateField(func(t time.Time) int { return t.Year() }),
		"getMonth":       b.dateField(func(t time.Time) int { return int(t.Month()) - 1 }),
		"getDate":        b.dateField(func(t time.Time) int { return t.Day() }),
		"getDay":         b.dateField(func(t time.Time) int { return int(t.Weekday()) }),
		"getHours":       b.dateField(func(t time.Time) int { return t.Hour() }),
		"getMinutes":     b.dateField(func(t time.Time) int { return t.Minute() }),
		"getSeconds":     b.dateField(func(t time.Time) int { return t.Second() }),
		"getMilliseconds": b.dateField(func(t time.Time) int { return t.Nanosecond() / 1e6 }),
		"toISOString":    b.dateToISOString,
		"toString":       b.dateToISOString,
	}
	for name, fn := range methods {
		if err := b.defineMethod(proto, name, fn); err != nil {
			return err
		}
	}
	ctor, _ := object.FromValue(mustGet(b.Global, "Date"))
	return b.defineMethod(ctor, "now", b.dateNow)
}

func (b *builder) nowMillis() int64 {
	if b.Hooks.UTCNow != nil {
		return b.Hooks.UTCNow()
	}
	return time.Now().UnixMilli()
}

func (b *builder) dateCall(this value.Value, args []value.Value) (value.Value, error) {
	return value.NewStringGo(time.UnixMilli(b.nowMillis()).UTC().Format(time.RFC3339)), nil
}

func (b *builder) dateConstruct(args []value.Value, newTarget *object.Object) (value.Value, error) {
	var ms float64
	switch len(args) {
	case 0:
		ms = float64(b.nowMillis())
	case 1:
		if args[0].IsString() {
			t, perr := time.Parse(time.RFC3339, args[0].GoString())
			if perr != nil {
				ms = nan()
			} else {
				ms = float64(t.UnixMilli())
			}
		} else {
			ms = args[0].Float64()
		}
	default:
		y, mo, d := int(argAt(args, 0).Float64()), int(argAt(args, 1).Float64()), 1
		if len(args) > 2 {
			d = int(args[2].Float64())
		}
		h, mi, s := 0, 0, 0
		if len(args) > 3 {
			h = int(args[3].Float64())
		}
		if len(args) > 4 {
			mi = int(args[4].Float64())
		}
		if len(args) > 5 {
			s = int(args[5].Float64())
		}
		t := time.Date(y, time.Month(mo+1), d, h, mi, s, 0, time.UTC)
		ms = float64(t.UnixMilli())
	}
	o, err := object.NewDateObject(b.Heap, shape.NewRoot(), ms)
	if err != nil {
		return value.UndefinedValue, err
	}
	_ = o.SetPrototypeOf(b.dateProto)
	return o.Value(), nil
}

func nan() float64 { var z float64; return z / z }

func (b *builder) dateGetTime(this value.Value, args []value.Value) (value.Value, error) {
	_, ms, err := dateOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	return value.NewNumber(ms), nil
}

func (b *builder) dateField(extract func(time.Time) int) object.NativeCall {
	return func(this value.Value, args []value.Value) (value.Value, error) {
		_, ms, err := dateOf(this)
		if err != nil {
			return value.UndefinedValue, err
		}
		t := time.UnixMilli(int64(ms)).UTC()
		return value.NewNumber(float64(extract(t))), nil
	}
}

func (b *builder) dateToISOString(this value.Value, args []value.Value) (value.Value, error) {
	_, ms, err := dateOf(this)
	if err != nil {
		return value.UndefinedValue, err
	}
	t := time.UnixMilli(int64(ms)).UTC()
	return value.NewStringGo(t.Format("2006-01-02T15:04:05.000Z")), nil
}

func (b *builder) dateNow(this value.Value, args []value.Value) (value.Value, error) {
	return value.NewNumber(float64(b.nowMillis())), nil
}
