package stdlib_test

import (
	"errors"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/lang/stdlib"
)

func eval(t *testing.T, src string, vars map[string]lang.Value) (lang.Value, error) {
	t.Helper()

	e, err := lang.Parse(t.Context(), src)
	if err != nil {
		t.Fatalf("Parse(%q) error: %v", src, err)
	}

	return lang.Evaluate(t.Context(), e, lang.Layer(lang.NewMap(vars), stdlib.New()))
}

func ints(xs ...int64) lang.Value {
	vs := make([]lang.Value, len(xs))
	for i, x := range xs {
		vs[i] = lang.Int(x)
	}

	return lang.List(vs...)
}

func TestBuiltins(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  lang.Value
	}{
		{"abs(-3)", lang.Int(3)},
		{"abs(-2.5)", lang.Float(2.5)},
		{"abs(True)", lang.Int(1)},
		{"all([1, True, 'x'])", lang.Bool(true)},
		{"all([1, 0])", lang.Bool(false)},
		{"all([])", lang.Bool(true)},
		{"any([0, '', []])", lang.Bool(false)},
		{"any([0, 2])", lang.Bool(true)},
		{"all(x > 0 for x in [1, 2])", lang.Bool(true)},
		{"float(2)", lang.Float(2)},
		{"float(' 2.5 ')", lang.Float(2.5)},
		{"float(True)", lang.Float(1)},
		{"int(0.1)", lang.Int(0)},
		{"int(-0.1)", lang.Int(0)},
		{"int(2.5)", lang.Int(3)},
		{"int(-2.5)", lang.Int(-3)},
		{"int('100')", lang.Int(100)},
		{"int('2.9')", lang.Int(2)},
		{"int('100', 2)", lang.Int(4)},
		{"int('ff', 16)", lang.Int(255)},
		{"int(False)", lang.Int(0)},
		{"len([1, 2, 3])", lang.Int(3)},
		{"len('hello')", lang.Int(5)},
		{"map(abs, [1, -2, 3, -4])", ints(1, 2, 3, 4)},
		{"map(abs, [1, -2, 3, -4])[0]", lang.Int(1)},
		{"max(1, 2, 3, 4)", lang.Int(4)},
		{"max([3, 9.5, 2])", lang.Float(9.5)},
		{"min(1, 2, 3, 4)", lang.Int(1)},
		{"min(['b', 'a'])", lang.String("a")},
		{"max(5)", lang.Int(5)},
		{"min(5)", lang.Int(5)},
		{"min('abc')", lang.String("abc")},
		{"round(1.5)", lang.Int(2)},
		{"round(2.5)", lang.Int(3)},
		{"round(-1.5)", lang.Int(-2)},
		{"round(1.5, 1)", lang.Float(1.5)},
		{"round(15, -1)", lang.Int(20)},
		{"round(0.2 * 60 / 100, 5)", lang.Float(0.12)},
		{"round(3)", lang.Int(3)},
		{"str(1)", lang.String("1")},
		{"str(1.5)", lang.String("1.500000")},
		{"str(True)", lang.String("True")},
		{"str('x')", lang.String("x")},
		{"str([1, 'a'])", lang.String(`[1, "a"]`)},
		{"str(None)", lang.String("None")},
		{"sum([1, 2, 3, 4])", lang.Int(10)},
		{"sum([1, 2.5])", lang.Float(3.5)},
		{"sum([])", lang.Int(0)},
		{"math.floor(0.1)", lang.Float(0)},
		{"math.ceil(0.1)", lang.Float(1)},
		{"math.log(1)", lang.Float(0)},
		{"math.log(True)", lang.Float(0)},
		{"math.sqrt(16)", lang.Float(4)},
		{"math.cos(0)", lang.Float(1)},
		{"math.sin(0)", lang.Float(0)},
		{"math.atan(0)", lang.Float(0)},
		{"math.tan(0)", lang.Float(0)},
		{"round(math.degrees(math.pi), 9)", lang.Float(180)},
		{"round(math.radians(180), 9) == round(math.pi, 9)", lang.Bool(true)},
		{"math.tau == 2 * math.pi", lang.Bool(true)},
		{"math.inf > 1000000.0", lang.Bool(true)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := eval(t, tt.input, nil)
			if err != nil {
				t.Fatalf("eval(%q) error: %v", tt.input, err)
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("eval(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestMathLogBase(t *testing.T) {
	t.Parallel()

	got, err := eval(t, "math.log(4096, 8)", nil)
	if err != nil {
		t.Fatal(err)
	}

	f, ok := got.AsFloat()
	if !ok || math.Abs(f-4) > 1e-9 {
		t.Errorf("math.log(4096, 8) = %v, want ~4", got)
	}
}

func TestMathNaN(t *testing.T) {
	t.Parallel()

	got, err := eval(t, "math.nan", nil)
	if err != nil {
		t.Fatal(err)
	}

	if f, ok := got.AsFloat(); !ok || !math.IsNaN(f) {
		t.Errorf("math.nan = %v", got)
	}
}

func TestBuiltins_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  lang.EvalErrorKind
	}{
		{"abs('x')", lang.TypeMismatch},
		{"abs()", lang.InvalidNumberOfArguments},
		{"abs(1, 2)", lang.InvalidNumberOfArguments},
		{"all(1)", lang.TypeMismatch},
		{"any([None])", lang.TypeMismatch},
		{"float('abc')", lang.ValueError},
		{"float([])", lang.TypeMismatch},
		{"int('abc')", lang.ValueError},
		{"int('12', 1)", lang.ValueError},
		{"int('12', 37)", lang.ValueError},
		{"int('12', 2)", lang.ValueError},
		{"int(12, 2)", lang.TypeMismatch},
		{"int('12', 2.0)", lang.TypeMismatch},
		{"int(math.nan)", lang.ValueError},
		{"int(math.inf)", lang.ValueError},
		{"int(None)", lang.TypeMismatch},
		{"len(1)", lang.TypeMismatch},
		{"map(1, [1])", lang.TypeMismatch},
		{"map(abs, 1)", lang.TypeMismatch},
		{"map(abs, ['x'])", lang.TypeMismatch},
		{"map(int, ['x'])", lang.TypeMismatch},
		{"max()", lang.InvalidNumberOfArguments},
		{"max([])", lang.ValueError},
		{"max(1, 'a')", lang.TypeMismatch},
		{"min([1, [2]])", lang.TypeMismatch},
		{"round('1')", lang.TypeMismatch},
		{"round(True)", lang.TypeMismatch},
		{"round(1.5, 1.0)", lang.TypeMismatch},
		{"round(1, 2, 3)", lang.InvalidNumberOfArguments},
		{"sum(1)", lang.TypeMismatch},
		{"sum(['a'])", lang.TypeMismatch},
		{"str()", lang.InvalidNumberOfArguments},
		{"math.sqrt('x')", lang.TypeMismatch},
		{"math.log('x')", lang.TypeMismatch},
		{"math.log(2, 'x')", lang.TypeMismatch},
		{"math.log(1, 2, 3)", lang.InvalidNumberOfArguments},
		{"math.degrees('x')", lang.TypeMismatch},
		{"mung.prefix(1)", lang.TypeMismatch},
		{"mung.prefix()", lang.InvalidNumberOfArguments},
		{"mung.prefix('a', 1)", lang.TypeMismatch},
		{"mung.prefix('a', [1])", lang.TypeMismatch},
		{"mung.prefixif('a', 'b')", lang.TypeMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := eval(t, tt.input, nil)
			if err == nil {
				t.Fatalf("eval(%q) = %v, want error", tt.input, got)
			}

			if kind := lang.ErrorKind(err); kind != tt.want {
				t.Errorf("ErrorKind(%v) = %v, want %v", err, kind, tt.want)
			}
		})
	}
}

func TestMapWrapsExactlyOneKind(t *testing.T) {
	t.Parallel()

	_, err := eval(t, "map(int, ['x'])", nil)

	if !errors.Is(err, lang.ErrTypeMismatch) {
		t.Fatalf("error %v is not a type mismatch", err)
	}

	if errors.Is(err, lang.ErrValueError) {
		t.Errorf("error %v also matches ErrValueError", err)
	}
}

func TestMungPrefix(t *testing.T) {
	t.Parallel()

	sep := string(os.PathListSeparator)
	vars := map[string]lang.Value{
		"PATH": lang.String(strings.Join([]string{"/usr/bin", "/bin"}, sep)),
	}

	got, err := eval(t, "mung.prefix(PATH, '/opt/bin')", vars)
	if err != nil {
		t.Fatalf("mung.prefix error: %v", err)
	}

	s, ok := got.AsString()
	if !ok {
		t.Fatalf("mung.prefix = %v, want a string", got)
	}

	parts := strings.Split(s, sep)
	if len(parts) == 0 || parts[0] != "/opt/bin" {
		t.Errorf("mung.prefix = %q, want /opt/bin first", s)
	}

	for _, p := range []string{"/usr/bin", "/bin"} {
		if !strings.Contains(s, p) {
			t.Errorf("mung.prefix = %q, missing %q", s, p)
		}
	}
}

func TestMungPrefixIf(t *testing.T) {
	t.Parallel()

	sep := string(os.PathListSeparator)

	env := stdlib.New().
		Set("PATH", lang.String("/bin")).
		SetFunc("keep", func(args []lang.Value) (lang.Value, error) {
			s, _ := args[0].AsString()

			return lang.Bool(!strings.HasPrefix(s, "/tmp")), nil
		}).
		SetFunc("boom", func([]lang.Value) (lang.Value, error) {
			return lang.None(), lang.ErrValueError
		})

	e := lang.MustParse("mung.prefixif(PATH, keep, ['/opt/bin', '/tmp/bin'])")

	got, err := lang.Evaluate(t.Context(), e, env)
	if err != nil {
		t.Fatalf("mung.prefixif error: %v", err)
	}

	s, _ := got.AsString()
	if strings.Contains(s, "/tmp/bin") {
		t.Errorf("mung.prefixif = %q, filtered item present", s)
	}

	if !strings.HasPrefix(s, "/opt/bin"+sep) && s != "/opt/bin" {
		t.Errorf("mung.prefixif = %q, want /opt/bin first", s)
	}

	_, err = lang.Evaluate(t.Context(), lang.MustParse("mung.prefixif(PATH, boom, '/x')"), env)
	if lang.ErrorKind(err) != lang.ValueError {
		t.Errorf("predicate error = %v, want ValueError", err)
	}
}

func TestNew_Fresh(t *testing.T) {
	t.Parallel()

	a := stdlib.New()
	a.Set("abs", lang.Int(1))

	b := stdlib.New()

	v, ok := b.Lookup("abs")
	if !ok || v.Kind() != lang.KindFunc {
		t.Errorf("second environment sees mutation of the first: %v", v)
	}
}

func TestNames(t *testing.T) {
	t.Parallel()

	names := stdlib.Names()

	for _, want := range []string{
		"abs", "all", "any", "float", "int", "len", "map", "max", "min",
		"round", "str", "sum", "math.pi", "math.log", "mung.prefix",
	} {
		found := false

		for _, n := range names {
			if n == want {
				found = true

				break
			}
		}

		if !found {
			t.Errorf("Names() missing %q", want)
		}
	}

	for i := 1; i < len(names); i++ {
		if names[i-1] >= names[i] {
			t.Fatalf("Names() not sorted at %d: %q >= %q", i, names[i-1], names[i])
		}
	}
}

func BenchmarkMap(b *testing.B) {
	e := lang.MustParse("sum(map(abs, [x - 50 for x in xs]))")

	xs := make([]lang.Value, 100)
	for i := range xs {
		xs[i] = lang.Int(int64(i))
	}

	env := lang.Layer(lang.NewMap(map[string]lang.Value{"xs": lang.List(xs...)}), stdlib.New())

	b.ResetTimer()

	for b.Loop() {
		if _, err := lang.Evaluate(b.Context(), e, env); err != nil {
			b.Fatal(err)
		}
	}
}
