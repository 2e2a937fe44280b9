package lang

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
)

// Kind identifies the dynamic type of a [Value].
type Kind uint8

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindFunc
)

// String returns the kind name used in error attributes.
func (k Kind) String() string {
	switch k {
	case KindNone:
		return "None"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindList:
		return "List"
	case KindFunc:
		return "Function"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Callable is the shape of every built-in function.
// Implementations validate their own arguments and must be pure and
// reentrant: the evaluator may call them repeatedly and concurrently.
type Callable func(args []Value) (Value, error)

// Function is a named built-in. Function values compare equal only when they
// refer to the same *Function.
type Function struct {
	Name string
	Call Callable
}

// Value is an immutable dynamically typed formula value.
// The zero Value is None.
type Value struct {
	s    string
	l    []Value
	fn   *Function
	i    int64 // KindBool (0 or 1) and KindInt
	f    float64
	kind Kind
}

// None returns the none marker.
func None() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value {
	v := Value{kind: KindBool}
	if b {
		v.i = 1
	}

	return v
}

// Int returns an integer value.
func Int(i int64) Value { return Value{kind: KindInt, i: i} }

// Float returns a floating-point value.
func Float(f float64) Value { return Value{kind: KindFloat, f: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List returns a list value holding a copy of elems.
func List(elems ...Value) Value {
	return Value{kind: KindList, l: slices.Clone(elems)}
}

// listOf wraps elems without copying; callers must not retain elems.
func listOf(elems []Value) Value {
	if elems == nil {
		elems = []Value{}
	}

	return Value{kind: KindList, l: elems}
}

// Func returns a function value for a new named built-in.
func Func(name string, call Callable) Value {
	return FuncOf(&Function{Name: name, Call: call})
}

// FuncOf returns a function value referring to fn.
func FuncOf(fn *Function) Value { return Value{kind: KindFunc, fn: fn} }

// Kind returns the dynamic type of v.
func (v Value) Kind() Kind { return v.kind }

// IsNone reports whether v is the none marker.
func (v Value) IsNone() bool { return v.kind == KindNone }

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) { return v.i != 0, v.kind == KindBool }

// AsInt returns the integer held by v.
func (v Value) AsInt() (int64, bool) { return v.i, v.kind == KindInt }

// AsFloat returns the float held by v.
func (v Value) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// AsList returns a copy of the elements held by v.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}

	return slices.Clone(v.l), true
}

// AsFunc returns the function held by v.
func (v Value) AsFunc() (*Function, bool) { return v.fn, v.kind == KindFunc }

// Len returns the number of elements of a list, or 0 for any other kind.
func (v Value) Len() int { return len(v.l) }

// numeric projects bool, int and float onto float64.
func (v Value) numeric() (float64, bool) {
	switch v.kind {
	case KindBool, KindInt:
		return float64(v.i), true
	case KindFloat:
		return v.f, true
	default:
		return 0, false
	}
}

// integral projects bool and int onto int64.
func (v Value) integral() (int64, bool) {
	switch v.kind {
	case KindBool, KindInt:
		return v.i, true
	default:
		return 0, false
	}
}

// Equal reports whether v and o are structurally identical: same kind and
// same contents, with no numeric coercion. Functions are identical when they
// refer to the same built-in. NaN floats are identical to each other.
//
// Use [Eq] for the language's == operator.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}

	switch v.kind {
	case KindNone:
		return true
	case KindBool, KindInt:
		return v.i == o.i
	case KindFloat:
		return v.f == o.f || (math.IsNaN(v.f) && math.IsNaN(o.f))
	case KindString:
		return v.s == o.s
	case KindList:
		return slices.EqualFunc(v.l, o.l, Value.Equal)
	case KindFunc:
		return v.fn == o.fn
	default:
		return false
	}
}

// String returns the display form of v: strings are unquoted, elements of
// lists are rendered with [Value.Repr].
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindFloat:
		return displayFloat(v.f)
	default:
		return v.Repr()
	}
}

// Repr returns a formula literal that evaluates back to v against the
// standard environment. Functions render as their registered name.
func (v Value) Repr() string {
	switch v.kind {
	case KindNone:
		return "None"
	case KindBool:
		if v.i != 0 {
			return "True"
		}

		return "False"
	case KindInt:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		switch {
		case math.IsNaN(v.f):
			return "math.nan"
		case math.IsInf(v.f, 1):
			return "math.inf"
		case math.IsInf(v.f, -1):
			return "-math.inf"
		}

		return literalFloat(v.f)
	case KindString:
		return quote(v.s)
	case KindList:
		var buf strings.Builder

		buf.WriteByte('[')

		for i, e := range v.l {
			if i > 0 {
				buf.WriteString(", ")
			}

			buf.WriteString(e.Repr())
		}

		buf.WriteByte(']')

		return buf.String()
	case KindFunc:
		if v.fn == nil || v.fn.Name == "" {
			return "<function>"
		}

		return v.fn.Name
	default:
		return "<invalid>"
	}
}

// LogValue implements slog.LogValuer.
func (v Value) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("kind", v.kind.String()),
		slog.String("value", v.Repr()),
	)
}

// displayFloat renders f in its shortest round-trip form, switching to
// exponent notation for very large and very small magnitudes.
func displayFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "nan"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}

	if a := math.Abs(f); a != 0 && (a < 1e-4 || a >= 1e16) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}

	return literalFloat(f)
}

// literalFloat renders a finite f as digits with a fractional part, the only
// float syntax the parser accepts. Negative values keep their sign, which
// reads back as a negation.
func literalFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}

	return s
}

// quote wraps s in double quotes unless it contains a double quote and no
// single quote. Formula strings have no escapes, so a string holding both
// quote characters has no literal form.
func quote(s string) string {
	if strings.ContainsRune(s, '"') && !strings.ContainsRune(s, '\'') {
		return "'" + s + "'"
	}

	return `"` + s + `"`
}

// Native converts v into plain Go data: nil, bool, int64, float64, string,
// []any, or the function name for function values.
func (v Value) Native() any {
	switch v.kind {
	case KindBool:
		return v.i != 0
	case KindInt:
		return v.i
	case KindFloat:
		return v.f
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.l))
		for i, e := range v.l {
			out[i] = e.Native()
		}

		return out
	case KindFunc:
		return v.Repr()
	default:
		return nil
	}
}

// FromNative converts decoded JSON or YAML data into a Value. Maps and other
// composite types have no formula representation and yield ErrTypeMismatch.
func FromNative(x any) (Value, error) {
	switch t := x.(type) {
	case nil:
		return None(), nil
	case Value:
		return t, nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(int64(t)), nil
	case int8:
		return Int(int64(t)), nil
	case int16:
		return Int(int64(t)), nil
	case int32:
		return Int(int64(t)), nil
	case int64:
		return Int(t), nil
	case uint:
		return fromUnsigned(uint64(t))
	case uint8:
		return Int(int64(t)), nil
	case uint16:
		return Int(int64(t)), nil
	case uint32:
		return Int(int64(t)), nil
	case uint64:
		return fromUnsigned(t)
	case float32:
		return Float(float64(t)), nil
	case float64:
		return Float(t), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i), nil
		}

		f, err := t.Float64()
		if err != nil {
			return None(), ErrValueError.Wrap(err)
		}

		return Float(f), nil
	case string:
		return String(t), nil
	case []string:
		out := make([]Value, len(t))
		for i, s := range t {
			out[i] = String(s)
		}

		return listOf(out), nil
	case []any:
		out := make([]Value, len(t))
		for i, e := range t {
			v, err := FromNative(e)
			if err != nil {
				return None(), err
			}

			out[i] = v
		}

		return listOf(out), nil
	default:
		return None(), ErrTypeMismatch.With(
			slog.String("native", fmt.Sprintf("%T", x)),
		)
	}
}

func fromUnsigned(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return None(), ErrValueError.With(
			slog.String("issue", "integer overflows int64"),
			slog.String("value", strconv.FormatUint(u, 10)),
		)
	}

	return Int(int64(u)), nil
}
