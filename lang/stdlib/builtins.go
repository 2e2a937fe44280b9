package stdlib

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/ardnew/formula/lang"
)

func absFn(args []lang.Value) (lang.Value, error) {
	if err := arity("abs", args, 1, 1); err != nil {
		return lang.None(), err
	}

	switch x := args[0]; x.Kind() {
	case lang.KindBool:
		f, _ := number(x)

		return lang.Int(int64(f)), nil
	case lang.KindInt:
		i, _ := x.AsInt()
		if i < 0 {
			i = -i
		}

		return lang.Int(i), nil
	case lang.KindFloat:
		f, _ := x.AsFloat()

		return lang.Float(math.Abs(f)), nil
	default:
		return lang.None(), mismatch("abs", x)
	}
}

func allFn(args []lang.Value) (lang.Value, error) {
	return truthAcross("all", args, false)
}

func anyFn(args []lang.Value) (lang.Value, error) {
	return truthAcross("any", args, true)
}

// truthAcross stops at the first element whose truthiness equals stop and
// returns stop; otherwise it returns !stop.
func truthAcross(name string, args []lang.Value, stop bool) (lang.Value, error) {
	if err := arity(name, args, 1, 1); err != nil {
		return lang.None(), err
	}

	elems, ok := args[0].AsList()
	if !ok {
		return lang.None(), mismatch(name, args[0])
	}

	for _, e := range elems {
		t, err := lang.Truthy(e)
		if err != nil {
			return lang.None(), err
		}

		if t == stop {
			return lang.Bool(stop), nil
		}
	}

	return lang.Bool(!stop), nil
}

func floatFn(args []lang.Value) (lang.Value, error) {
	if err := arity("float", args, 1, 1); err != nil {
		return lang.None(), err
	}

	x := args[0]
	if s, ok := x.AsString(); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return lang.None(), valueError("float", "could not convert "+x.Repr())
		}

		return lang.Float(f), nil
	}

	f, ok := number(x)
	if !ok {
		return lang.None(), mismatch("float", x)
	}

	return lang.Float(f), nil
}

func intFn(args []lang.Value) (lang.Value, error) {
	if err := arity("int", args, 1, 2); err != nil {
		return lang.None(), err
	}

	if len(args) == 2 {
		return intBase(args[0], args[1])
	}

	switch x := args[0]; x.Kind() {
	case lang.KindBool, lang.KindInt:
		f, _ := number(x)

		return lang.Int(int64(f)), nil
	case lang.KindFloat:
		f, _ := x.AsFloat()

		return truncate("int", math.Round(f))
	case lang.KindString:
		s, _ := x.AsString()

		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return lang.None(), valueError("int", "invalid literal "+x.Repr())
		}

		return truncate("int", math.Trunc(f))
	default:
		return lang.None(), mismatch("int", x)
	}
}

func intBase(x, b lang.Value) (lang.Value, error) {
	s, ok := x.AsString()
	if !ok {
		return lang.None(), mismatch("int", x)
	}

	base, ok := b.AsInt()
	if !ok {
		return lang.None(), mismatch("int", b)
	}

	if base < 2 || base > 36 {
		return lang.None(), valueError("int", "base must be in 2..36")
	}

	i, err := strconv.ParseInt(strings.TrimSpace(s), int(base), 64)
	if err != nil {
		return lang.None(), valueError("int",
			fmt.Sprintf("invalid literal %s for base %d", x.Repr(), base))
	}

	return lang.Int(i), nil
}

// truncate converts an integral float to Int, rejecting values that have no
// int64 representation.
func truncate(name string, f float64) (lang.Value, error) {
	if math.IsNaN(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return lang.None(), valueError(name, "cannot convert "+lang.Float(f).Repr()+" to int")
	}

	return lang.Int(int64(f)), nil
}

func lenFn(args []lang.Value) (lang.Value, error) {
	if err := arity("len", args, 1, 1); err != nil {
		return lang.None(), err
	}

	switch x := args[0]; x.Kind() {
	case lang.KindList:
		return lang.Int(int64(x.Len())), nil
	case lang.KindString:
		s, _ := x.AsString()

		return lang.Int(int64(len([]rune(s)))), nil
	default:
		return lang.None(), mismatch("len", x)
	}
}

func mapFn(args []lang.Value) (lang.Value, error) {
	if err := arity("map", args, 2, 2); err != nil {
		return lang.None(), err
	}

	fn, ok := args[0].AsFunc()
	if !ok || fn == nil || fn.Call == nil {
		return lang.None(), mismatch("map", args[0])
	}

	elems, ok := args[1].AsList()
	if !ok {
		return lang.None(), mismatch("map", args[1])
	}

	out := make([]lang.Value, len(elems))

	for i, e := range elems {
		v, err := fn.Call([]lang.Value{e})
		if err != nil {
			return lang.None(), lang.ErrTypeMismatch.With(
				slog.String("function", "map"),
				slog.Int("index", i),
				slog.String("cause", err.Error()),
			)
		}

		out[i] = v
	}

	return lang.List(out...), nil
}

func maxFn(args []lang.Value) (lang.Value, error) {
	return extreme("max", args, lang.Greater)
}

func minFn(args []lang.Value) (lang.Value, error) {
	return extreme("min", args, lang.Less)
}

// extreme returns the first candidate c for which no later candidate x
// satisfies better(x, c). A lone list argument supplies the candidates; any
// other lone argument is returned as is.
func extreme(
	name string,
	args []lang.Value,
	better func(a, b lang.Value) (bool, error),
) (lang.Value, error) {
	if len(args) == 0 {
		return lang.None(), arity(name, args, 1, maxArgs)
	}

	cands := args
	if len(args) == 1 {
		elems, ok := args[0].AsList()
		if !ok {
			return args[0], nil
		}

		if len(elems) == 0 {
			return lang.None(), valueError(name, "empty sequence")
		}

		cands = elems
	}

	best := cands[0]

	for _, c := range cands[1:] {
		ok, err := better(c, best)
		if err != nil {
			return lang.None(), lang.ErrTypeMismatch.With(
				slog.String("function", name),
				slog.String("lhs", c.Kind().String()),
				slog.String("rhs", best.Kind().String()),
			)
		}

		if ok {
			best = c
		}
	}

	return best, nil
}

func roundFn(args []lang.Value) (lang.Value, error) {
	if err := arity("round", args, 1, 2); err != nil {
		return lang.None(), err
	}

	x := args[0]
	if k := x.Kind(); k != lang.KindInt && k != lang.KindFloat {
		return lang.None(), mismatch("round", x)
	}

	var digits int64

	if len(args) == 2 {
		n, ok := args[1].AsInt()
		if !ok {
			return lang.None(), mismatch("round", args[1])
		}

		digits = n
	}

	f, _ := number(x)
	p := math.Pow(10, float64(digits))
	r := math.Round(f*p) / p

	if digits <= 0 {
		return truncate("round", math.Round(r))
	}

	return lang.Float(r), nil
}

func strFn(args []lang.Value) (lang.Value, error) {
	if err := arity("str", args, 1, 1); err != nil {
		return lang.None(), err
	}

	x := args[0]
	if f, ok := x.AsFloat(); ok {
		return lang.String(fmt.Sprintf("%f", f)), nil
	}

	return lang.String(x.String()), nil
}

func sumFn(args []lang.Value) (lang.Value, error) {
	if err := arity("sum", args, 1, 1); err != nil {
		return lang.None(), err
	}

	elems, ok := args[0].AsList()
	if !ok {
		return lang.None(), mismatch("sum", args[0])
	}

	acc := lang.Int(0)

	for _, e := range elems {
		var err error
		if acc, err = lang.Add(acc, e); err != nil {
			return lang.None(), err
		}
	}

	return acc, nil
}
