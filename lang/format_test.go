package lang

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"
)

func TestMarshalTree(t *testing.T) {
	t.Parallel()

	got := MarshalTree(MustParse("a[1:] if x < 2 else [y for y, z in w if y]"))

	want := map[string]any{
		"kind": "Condition",
		"then": map[string]any{
			"kind":  "Slice",
			"array": map[string]any{"kind": "Variable", "name": "a"},
			"start": map[string]any{"kind": "Literal", "type": "Int", "value": int64(1)},
		},
		"cond": map[string]any{
			"kind": "ComparisonChain",
			"operands": []any{
				map[string]any{"kind": "Variable", "name": "x"},
				map[string]any{"kind": "Literal", "type": "Int", "value": int64(2)},
			},
			"operators": []any{"<"},
		},
		"else": map[string]any{
			"kind":   "Comprehension",
			"result": map[string]any{"kind": "Variable", "name": "y"},
			"loops": []any{
				map[string]any{
					"binder":   []any{"y", "z"},
					"tuple":    true,
					"iterable": map[string]any{"kind": "Variable", "name": "w"},
					"conds":    []any{map[string]any{"kind": "Variable", "name": "y"}},
				},
			},
		},
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MarshalTree mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatJSON(t *testing.T) {
	t.Parallel()

	e := MustParse("-(1 + 2.5)")

	tests := []struct {
		name   string
		indent int
		lines  int
	}{
		{name: "compact", indent: 0, lines: 1},
		{name: "indented", indent: 2, lines: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			if err := FormatJSON(t.Context(), &buf, e, tt.indent); err != nil {
				t.Fatal(err)
			}

			out := strings.TrimSpace(buf.String())
			if n := strings.Count(out, "\n") + 1; tt.lines > 0 && n != tt.lines {
				t.Errorf("got %d lines, want %d:\n%s", n, tt.lines, out)
			}

			if tt.indent > 0 && !strings.Contains(out, "\n  \"") {
				t.Errorf("output not indented:\n%s", out)
			}

			var decoded map[string]any
			if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}

			if decoded["kind"] != "UnaryOp" || decoded["op"] != "-" {
				t.Errorf("decoded = %v", decoded)
			}
		})
	}
}

func TestFormatYAML(t *testing.T) {
	t.Parallel()

	for _, indent := range []int{0, 4} {
		var buf bytes.Buffer
		if err := FormatYAML(t.Context(), &buf, MustParse("f(x, 'y')"), indent); err != nil {
			t.Fatal(err)
		}

		var decoded map[string]any
		if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("invalid YAML (indent %d): %v\n%s", indent, err, buf.String())
		}

		if decoded["kind"] != "Call" {
			t.Errorf("indent %d: decoded = %v", indent, decoded)
		}

		args, _ := decoded["args"].([]any)
		if len(args) != 2 {
			t.Errorf("indent %d: args = %v", indent, decoded["args"])
		}
	}
}

func TestFormatValue(t *testing.T) {
	t.Parallel()

	v := List(Int(1), Float(2.5), String("x"), Bool(false), None())

	var buf bytes.Buffer
	if err := FormatValueJSON(t.Context(), &buf, v, 0); err != nil {
		t.Fatal(err)
	}

	if got, want := strings.TrimSpace(buf.String()), `[1,2.5,"x",false,null]`; got != want {
		t.Errorf("FormatValueJSON = %s, want %s", got, want)
	}

	buf.Reset()

	if err := FormatValueYAML(t.Context(), &buf, Int(7), 2); err != nil {
		t.Fatal(err)
	}

	if got := strings.TrimSpace(buf.String()); got != "7" {
		t.Errorf("FormatValueYAML = %q, want 7", got)
	}
}
