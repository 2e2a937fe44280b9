package lang

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"
)

// MarshalTree converts e into a tree of plain maps and slices suitable for
// JSON or YAML encoding. Every node carries its type under "kind".
func MarshalTree(e Expr) map[string]any {
	switch n := e.(type) {
	case *Literal:
		return map[string]any{
			"kind":  "Literal",
			"type":  n.Value.Kind().String(),
			"value": n.Value.Native(),
		}
	case *Variable:
		return map[string]any{"kind": "Variable", "name": n.Name}
	case *UnaryOp:
		return map[string]any{
			"kind":    "UnaryOp",
			"op":      n.Op.String(),
			"operand": MarshalTree(n.Operand),
		}
	case *BinaryOp:
		return map[string]any{
			"kind": "BinaryOp",
			"op":   n.Op.String(),
			"lhs":  MarshalTree(n.LHS),
			"rhs":  MarshalTree(n.RHS),
		}
	case *ComparisonChain:
		ops := make([]any, 0, len(n.links))
		for _, op := range n.Operators() {
			ops = append(ops, op.String())
		}

		return map[string]any{
			"kind":      "ComparisonChain",
			"operands":  marshalList(n.Operands()),
			"operators": ops,
		}
	case *Condition:
		return map[string]any{
			"kind": "Condition",
			"then": MarshalTree(n.Then),
			"cond": MarshalTree(n.Cond),
			"else": MarshalTree(n.Else),
		}
	case *Index:
		return map[string]any{
			"kind":  "Index",
			"array": MarshalTree(n.Array),
			"index": MarshalTree(n.Index),
		}
	case *Slice:
		m := map[string]any{"kind": "Slice", "array": MarshalTree(n.Array)}

		for key, part := range map[string]Expr{
			"start": n.Start,
			"end":   n.End,
			"step":  n.Step,
		} {
			if part != nil {
				m[key] = MarshalTree(part)
			}
		}

		return m
	case *ListExpr:
		return map[string]any{"kind": "List", "elems": marshalList(n.Elems)}
	case *TupleExpr:
		return map[string]any{"kind": "Tuple", "elems": marshalList(n.Elems)}
	case *Call:
		return map[string]any{
			"kind":   "Call",
			"callee": MarshalTree(n.Callee),
			"args":   marshalList(n.Args),
		}
	case *Comprehension:
		loops := make([]any, 0, n.Loops.Len())

		for _, l := range n.Loops.All() {
			names := make([]any, len(l.Binder.Names))
			for i, name := range l.Binder.Names {
				names[i] = name
			}

			loops = append(loops, map[string]any{
				"binder":   names,
				"tuple":    l.Binder.Tuple,
				"iterable": MarshalTree(l.Iterable),
				"conds":    marshalList(l.Conds),
			})
		}

		return map[string]any{
			"kind":   "Comprehension",
			"result": MarshalTree(n.Result),
			"loops":  loops,
		}
	default:
		return map[string]any{"kind": fmt.Sprintf("%T", e)}
	}
}

func marshalList(es []Expr) []any {
	out := make([]any, len(es))
	for i, e := range es {
		out[i] = MarshalTree(e)
	}

	return out
}

// FormatJSON writes the tree of e as JSON. An indent of zero writes a
// single line.
func FormatJSON(_ context.Context, w io.Writer, e Expr, indent int) error {
	return writeJSON(w, MarshalTree(e), indent)
}

// FormatYAML writes the tree of e as YAML. An indent of zero writes flow
// style.
func FormatYAML(ctx context.Context, w io.Writer, e Expr, indent int) error {
	return writeYAML(ctx, w, MarshalTree(e), indent)
}

// FormatValueJSON writes the native form of v as JSON.
func FormatValueJSON(_ context.Context, w io.Writer, v Value, indent int) error {
	return writeJSON(w, v.Native(), indent)
}

// FormatValueYAML writes the native form of v as YAML.
func FormatValueYAML(ctx context.Context, w io.Writer, v Value, indent int) error {
	return writeYAML(ctx, w, v.Native(), indent)
}

func writeJSON(w io.Writer, data any, indent int) error {
	var (
		jsonData []byte
		err      error
	)

	if indent > 0 {
		jsonData, err = json.MarshalIndent(data, "", strings.Repeat(" ", indent))
	} else {
		jsonData, err = json.Marshal(data)
	}

	if err != nil {
		return WrapError(err)
	}

	_, err = fmt.Fprintln(w, string(jsonData))

	return err
}

func writeYAML(ctx context.Context, w io.Writer, data any, indent int) error {
	var opts []yaml.EncodeOption
	if indent > 0 {
		opts = append(opts, yaml.Indent(indent))
	} else {
		opts = append(opts, yaml.Flow(true))
	}

	yamlData, err := yaml.MarshalContext(ctx, data, opts...)
	if err != nil {
		return WrapError(err)
	}

	_, err = w.Write(yamlData)

	return err
}
