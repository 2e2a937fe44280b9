package lang

import (
	"log/slog"
	"math"
	"slices"
	"strings"
)

// Add implements +: concatenation of strings and of lists, numeric addition
// otherwise. Bool operands promote to Int.
func Add(a, b Value) (Value, error) {
	switch {
	case a.kind == KindString && b.kind == KindString:
		return String(a.s + b.s), nil
	case a.kind == KindList && b.kind == KindList:
		return listOf(slices.Concat(a.l, b.l)), nil
	}

	return arith("+", a, b,
		func(x, y int64) int64 { return x + y },
		func(x, y float64) float64 { return x + y },
	)
}

// Sub implements -.
func Sub(a, b Value) (Value, error) {
	return arith("-", a, b,
		func(x, y int64) int64 { return x - y },
		func(x, y float64) float64 { return x - y },
	)
}

// Mul implements *: numeric product, or repetition of a string or list by
// an Int count on either side.
func Mul(a, b Value) (Value, error) {
	if n, ok := b.AsInt(); ok && a.repeatable() {
		return repeat(a, n)
	}

	if n, ok := a.AsInt(); ok && b.repeatable() {
		return repeat(b, n)
	}

	return arith("*", a, b,
		func(x, y int64) int64 { return x * y },
		func(x, y float64) float64 { return x * y },
	)
}

// MaxRepeatLen bounds the length, in bytes for strings and in elements for
// lists, of a value produced by repetition.
const MaxRepeatLen = 1 << 24

func (v Value) repeatable() bool { return v.kind == KindString || v.kind == KindList }

// repeat concatenates n copies of the string or list v. Counts below one
// produce an empty value.
func repeat(v Value, n int64) (Value, error) {
	n = max(n, 0)

	size := int64(len(v.s))
	if v.kind == KindList {
		size = int64(len(v.l))
	}

	if size > 0 && n > MaxRepeatLen/size {
		return None(), ErrValueError.With(
			slog.String("op", "*"),
			slog.String("kind", v.kind.String()),
			slog.Int64("count", n),
			slog.Int("limit", MaxRepeatLen),
		)
	}

	if v.kind == KindString {
		return String(strings.Repeat(v.s, int(n))), nil
	}

	if size == 0 || n == 0 {
		return listOf(nil), nil
	}

	out := make([]Value, 0, size*n)
	for range n {
		out = append(out, v.l...)
	}

	return listOf(out), nil
}

// Div implements /. The result is always a Float.
func Div(a, b Value) (Value, error) {
	x, okx := a.numeric()
	y, oky := b.numeric()

	if !okx || !oky {
		return None(), mismatch("/", a, b)
	}

	if y == 0 {
		return None(), ErrDivisionByZero.With(slog.String("op", "/"))
	}

	return Float(x / y), nil
}

// Mod implements %. Both operands must be Int or both Float.
func Mod(a, b Value) (Value, error) {
	switch {
	case a.kind == KindInt && b.kind == KindInt:
		if b.i == 0 {
			return None(), ErrDivisionByZero.With(slog.String("op", "%"))
		}

		return Int(a.i % b.i), nil

	case a.kind == KindFloat && b.kind == KindFloat:
		return Float(math.Mod(a.f, b.f)), nil
	}

	return None(), mismatch("%", a, b)
}

// Pow implements **. Operands must be Int or Float; Bool is rejected. Two
// Int operands produce an Int computed in floating point and truncated
// toward zero.
func Pow(a, b Value) (Value, error) {
	if !a.number() || !b.number() {
		return None(), mismatch("**", a, b)
	}

	if a.kind == KindInt && b.kind == KindInt {
		return Int(int64(math.Pow(float64(a.i), float64(b.i)))), nil
	}

	x, _ := a.numeric()
	y, _ := b.numeric()

	return Float(math.Pow(x, y)), nil
}

// number reports whether v is an Int or a Float.
func (v Value) number() bool { return v.kind == KindInt || v.kind == KindFloat }

// arith applies the numeric promotion rule: integral operands use fi,
// any Float operand promotes both to Float and uses ff.
func arith(
	op string,
	a, b Value,
	fi func(x, y int64) int64,
	ff func(x, y float64) float64,
) (Value, error) {
	if x, ok := a.integral(); ok {
		if y, ok := b.integral(); ok {
			return Int(fi(x, y)), nil
		}
	}

	x, okx := a.numeric()
	y, oky := b.numeric()

	if !okx || !oky {
		return None(), mismatch(op, a, b)
	}

	return Float(ff(x, y)), nil
}

// And implements the logical conjunction of two Bool operands.
func And(a, b Value) (Value, error) {
	x, okx := a.AsBool()
	y, oky := b.AsBool()

	if !okx || !oky {
		return None(), mismatch("and", a, b)
	}

	return Bool(x && y), nil
}

// Or implements the logical disjunction of two Bool operands.
func Or(a, b Value) (Value, error) {
	x, okx := a.AsBool()
	y, oky := b.AsBool()

	if !okx || !oky {
		return None(), mismatch("or", a, b)
	}

	return Bool(x || y), nil
}

// Neg implements unary minus. A Bool negates as the Int 0 or -1.
func Neg(v Value) (Value, error) {
	switch v.kind {
	case KindBool, KindInt:
		return Int(-v.i), nil
	case KindFloat:
		return Float(-v.f), nil
	default:
		return None(), mismatchUnary("-", v)
	}
}

// Not implements logical negation.
func Not(v Value) (Value, error) {
	switch v.kind {
	case KindBool:
		return Bool(v.i == 0), nil
	case KindInt:
		return Bool(v.i == 0), nil
	case KindFloat:
		return Bool(v.f == 0), nil
	case KindString:
		return Bool(v.s == ""), nil
	case KindList:
		return Bool(len(v.l) == 0), nil
	default:
		return None(), mismatchUnary("not", v)
	}
}

// Truthy reports the truth value of v. None and functions have no truth
// value.
func Truthy(v Value) (bool, error) {
	n, err := Not(v)
	if err != nil {
		return false, mismatchUnary("truth", v)
	}

	return n.i == 0, nil
}

// Eq implements ==. Bool, Int and Float compare numerically; strings and
// lists compare by content; any other pair of kinds is unequal. None is
// unequal to everything, itself included. Use [Value.Equal] for identity.
func Eq(a, b Value) bool {
	if x, ok := a.integral(); ok {
		if y, ok := b.integral(); ok {
			return x == y
		}
	}

	if x, ok := a.numeric(); ok {
		y, ok := b.numeric()

		return ok && x == y
	}

	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindString:
		return a.s == b.s
	case KindList:
		return slices.EqualFunc(a.l, b.l, Eq)
	case KindFunc:
		return a.fn == b.fn
	default:
		return false
	}
}

// Less implements <.
func Less(a, b Value) (bool, error) {
	return order("<", a, b,
		func(x, y int64) bool { return x < y },
		func(x, y float64) bool { return x < y },
		func(x, y string) bool { return x < y },
	)
}

// LessEqual implements <=.
func LessEqual(a, b Value) (bool, error) {
	return order("<=", a, b,
		func(x, y int64) bool { return x <= y },
		func(x, y float64) bool { return x <= y },
		func(x, y string) bool { return x <= y },
	)
}

// Greater implements >.
func Greater(a, b Value) (bool, error) {
	return order(">", a, b,
		func(x, y int64) bool { return x > y },
		func(x, y float64) bool { return x > y },
		func(x, y string) bool { return x > y },
	)
}

// GreaterEqual implements >=.
func GreaterEqual(a, b Value) (bool, error) {
	return order(">=", a, b,
		func(x, y int64) bool { return x >= y },
		func(x, y float64) bool { return x >= y },
		func(x, y string) bool { return x >= y },
	)
}

func order(
	op string,
	a, b Value,
	fi func(x, y int64) bool,
	ff func(x, y float64) bool,
	fs func(x, y string) bool,
) (bool, error) {
	if x, ok := a.integral(); ok {
		if y, ok := b.integral(); ok {
			return fi(x, y), nil
		}
	}

	if x, ok := a.numeric(); ok {
		if y, ok := b.numeric(); ok {
			return ff(x, y), nil
		}
	}

	if a.kind == KindString && b.kind == KindString {
		return fs(a.s, b.s), nil
	}

	return false, mismatch(op, a, b)
}

// In implements membership of needle in the list haystack using [Eq].
func In(needle, haystack Value) (bool, error) {
	if haystack.kind != KindList {
		return false, mismatch("in", needle, haystack)
	}

	return slices.ContainsFunc(haystack.l, func(e Value) bool {
		return Eq(needle, e)
	}), nil
}
