package stdlib

import (
	"math"

	"github.com/ardnew/formula/lang"
)

func constants() map[string]lang.Value {
	return map[string]lang.Value{
		"math.e":   lang.Float(math.E),
		"math.inf": lang.Float(math.Inf(1)),
		"math.nan": lang.Float(math.NaN()),
		"math.pi":  lang.Float(math.Pi),
		"math.tau": lang.Float(2 * math.Pi),
	}
}

type unary struct {
	name string
	fn   func(float64) float64
}

var (
	mathAtan  = unary{"math.atan", math.Atan}
	mathCeil  = unary{"math.ceil", math.Ceil}
	mathCos   = unary{"math.cos", math.Cos}
	mathFloor = unary{"math.floor", math.Floor}
	mathSin   = unary{"math.sin", math.Sin}
	mathSqrt  = unary{"math.sqrt", math.Sqrt}
	mathTan   = unary{"math.tan", math.Tan}
)

// unaryMath adapts a float64 function to a one-argument Callable accepting
// any numeric value.
func unaryMath(u unary) lang.Callable {
	return func(args []lang.Value) (lang.Value, error) {
		if err := arity(u.name, args, 1, 1); err != nil {
			return lang.None(), err
		}

		x, ok := number(args[0])
		if !ok {
			return lang.None(), mismatch(u.name, args[0])
		}

		return lang.Float(u.fn(x)), nil
	}
}

func degreesFn(args []lang.Value) (lang.Value, error) {
	return scale("math.degrees", args, 180/math.Pi)
}

func radiansFn(args []lang.Value) (lang.Value, error) {
	return scale("math.radians", args, math.Pi/180)
}

func scale(name string, args []lang.Value, factor float64) (lang.Value, error) {
	if err := arity(name, args, 1, 1); err != nil {
		return lang.None(), err
	}

	v, err := lang.Mul(args[0], lang.Float(factor))
	if err != nil {
		return lang.None(), mismatch(name, args[0])
	}

	return v, nil
}

func logFn(args []lang.Value) (lang.Value, error) {
	if err := arity("math.log", args, 1, 2); err != nil {
		return lang.None(), err
	}

	x, ok := number(args[0])
	if !ok {
		return lang.None(), mismatch("math.log", args[0])
	}

	if len(args) == 1 {
		return lang.Float(math.Log(x)), nil
	}

	base, ok := number(args[1])
	if !ok {
		return lang.None(), mismatch("math.log", args[1])
	}

	return lang.Float(math.Log(x) / math.Log(base)), nil
}
