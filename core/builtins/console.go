package builtins

import (
	"strings"

	"github.com/coreform/jsvm/core/object"
	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// installConsole wires console.log/info/warn/error/debug onto the
// realm's zap.Logger (the teacher threads a *zap.Logger through every
// long-lived component rather than calling the log package directly).
func (b *builder) installConsole() error {
	c, err := b.newObject()
	if err != nil {
		return err
	}
	methods := map[string]func([]string){
		"log":   func(parts []string) { b.log.Info(strings.Join(parts, " ")) },
		"info":  func(parts []string) { b.log.Info(strings.Join(parts, " ")) },
		"warn":  func(parts []string) { b.log.Warn(strings.Join(parts, " ")) },
		"error": func(parts []string) { b.log.Error(strings.Join(parts, " ")) },
		"debug": func(parts []string) { b.log.Debug(strings.Join(parts, " ")) },
	}
	for name, logFn := range methods {
		logFn := logFn
		if err := b.defineMethod(c, name, b.consoleMethod(logFn)); err != nil {
			return err
		}
	}
	return b.defineValue(b.Global, "console", c.Value(), shape.Writable|shape.Configurable)
}

func (b *builder) consoleMethod(logFn func([]string)) object.NativeCall {
	return func(this value.Value, args []value.Value) (value.Value, error) {
		parts := make([]string, len(args))
		for i, a := range args {
			parts[i] = b.consoleFormat(a)
		}
		logFn(parts)
		return value.UndefinedValue, nil
	}
}

func (b *builder) consoleFormat(v value.Value) string {
	switch {
	case v.IsUndefined():
		return "undefined"
	case v.IsNull():
		return "null"
	case v.IsString():
		return v.GoString()
	case v.IsObject():
		o, _ := object.FromValue(v)
		if o.Callable() {
			return "[Function]"
		}
		var sb strings.Builder
		ok, err := b.stringifyInto(&sb, v)
		if err != nil || !ok {
			return "[object Object]"
		}
		return sb.String()
	default:
		return v.GoString()
	}
}
