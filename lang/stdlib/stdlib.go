// Package stdlib provides the standard formula environment: numeric, list
// and string built-ins, the math namespace, and delimited-list helpers.
//
// The environment is an explicit value. Each call to [New] builds a fresh
// [lang.Map] that the host may extend or layer under its own variables.
package stdlib

import (
	"log/slog"
	"math"
	"strconv"

	"github.com/ardnew/formula/lang"
)

// builtins maps every registered function name to its implementation.
var builtins = map[string]lang.Callable{
	"abs":   absFn,
	"all":   allFn,
	"any":   anyFn,
	"float": floatFn,
	"int":   intFn,
	"len":   lenFn,
	"map":   mapFn,
	"max":   maxFn,
	"min":   minFn,
	"round": roundFn,
	"str":   strFn,
	"sum":   sumFn,

	"math.atan":    unaryMath(mathAtan),
	"math.ceil":    unaryMath(mathCeil),
	"math.cos":     unaryMath(mathCos),
	"math.degrees": degreesFn,
	"math.floor":   unaryMath(mathFloor),
	"math.log":     logFn,
	"math.radians": radiansFn,
	"math.sin":     unaryMath(mathSin),
	"math.sqrt":    unaryMath(mathSqrt),
	"math.tan":     unaryMath(mathTan),

	"mung.prefix":   mungPrefix,
	"mung.prefixif": mungPrefixIf,
}

// New returns a fresh standard environment.
func New() *lang.Map {
	m := lang.NewMap(constants())

	for name, call := range builtins {
		m.SetFunc(name, call)
	}

	return m
}

// Names returns the sorted names bound by [New].
func Names() []string { return lang.Names(New()) }

// arity returns an InvalidNumberOfArguments error unless min <= n <= max.
func arity(name string, args []lang.Value, minArgs, maxArgs int) error {
	if n := len(args); n < minArgs || n > maxArgs {
		return lang.ErrInvalidNumberOfArguments.With(
			slog.String("function", name),
			slog.Int("have", n),
			slog.String("want", want(minArgs, maxArgs)),
		)
	}

	return nil
}

func want(minArgs, maxArgs int) string {
	switch maxArgs {
	case minArgs:
		return strconv.Itoa(minArgs)
	case math.MaxInt:
		return "at least " + strconv.Itoa(minArgs)
	}

	return strconv.Itoa(minArgs) + ".." + strconv.Itoa(maxArgs)
}

func mismatch(name string, arg lang.Value) error {
	return lang.ErrTypeMismatch.With(
		slog.String("function", name),
		slog.String("arg", arg.Kind().String()),
	)
}

func valueError(name, issue string) error {
	return lang.ErrValueError.With(
		slog.String("function", name),
		slog.String("issue", issue),
	)
}

// number projects Bool, Int and Float arguments onto float64.
func number(v lang.Value) (float64, bool) {
	switch v.Kind() {
	case lang.KindBool:
		b, _ := v.AsBool()
		if b {
			return 1, true
		}

		return 0, true
	case lang.KindInt:
		i, _ := v.AsInt()

		return float64(i), true
	case lang.KindFloat:
		return v.AsFloat()
	default:
		return 0, false
	}
}
