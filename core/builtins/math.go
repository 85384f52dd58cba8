package builtins

import (
	"math"

	"modernc.org/mathutil"

	"github.com/coreform/jsvm/core/shape"
	"github.com/coreform/jsvm/core/value"
)

// installMath builds the %Math% namespace object. Math.random defaults
// to modernc.org/mathutil's FC32 generator (a full-period, seekable LCG
// used elsewhere in the pack for reproducible pseudo-random streams)
// when env.Hooks.Random is unset, letting a host substitute a seeded
// source for deterministic test replay per spec.md §6.
func (b *builder) installMath() error {
	m, err := b.newObject()
	if err != nil {
		return err
	}

	consts := map[string]float64{
		"PI": math.Pi, "E": math.E, "LN2": math.Ln2, "LN10": math.Log(10),
		"LOG2E": 1 / math.Ln2, "LOG10E": 1 / math.Log(10), "SQRT2": math.Sqrt2, "SQRT1_2": math.Sqrt(0.5),
	}
	for name, v := range consts {
		if err := b.defineValue(m, name, value.NewNumber(v), 0); err != nil {
			return err
		}
	}

	unary := map[string]func(float64) float64{
		"abs": math.Abs, "floor": math.Floor, "ceil": math.Ceil, "round": mathRound,
		"trunc": math.Trunc, "sqrt": math.Sqrt, "cbrt": math.Cbrt, "sign": mathSign,
		"sin": math.Sin, "cos": math.Cos, "tan": math.Tan, "log": math.Log,
		"log2": math.Log2, "log10": math.Log10, "exp": math.Exp,
	}
	for name, fn := range unary {
		fn := fn
		if err := b.defineMethod(m, name, func(this value.Value, args []value.Value) (value.Value, error) {
			return value.NewNumber(fn(argAt(args, 0).Float64())), nil
		}); err != nil {
			return err
		}
	}

	if err := b.defineMethod(m, "pow", func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewNumber(math.Pow(argAt(args, 0).Float64(), argAt(args, 1).Float64())), nil
	}); err != nil {
		return err
	}
	if err := b.defineMethod(m, "max", func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewNumber(mathVariadic(args, math.Inf(-1), math.Max)), nil
	}); err != nil {
		return err
	}
	if err := b.defineMethod(m, "min", func(this value.Value, args []value.Value) (value.Value, error) {
		return value.NewNumber(mathVariadic(args, math.Inf(1), math.Min)), nil
	}); err != nil {
		return err
	}

	gen := mathutil.NewFC32(0, math.MaxInt32, true)
	if err := b.defineMethod(m, "random", func(this value.Value, args []value.Value) (value.Value, error) {
		if b.Hooks.Random != nil {
			return value.NewNumber(b.Hooks.Random()), nil
		}
		return value.NewNumber(float64(gen.Next()) / float64(math.MaxInt32)), nil
	}); err != nil {
		return err
	}

	return b.defineValue(b.Global, "Math", m.Value(), shape.Writable|shape.Configurable)
}

func mathRound(f float64) float64 { return math.Floor(f + 0.5) }

func mathSign(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	default:
		return f
	}
}

func mathVariadic(args []value.Value, identity float64, combine func(a, b float64) float64) float64 {
	acc := identity
	for _, a := range args {
		acc = combine(acc, a.Float64())
	}
	return acc
}
