// Package transpile translates formula trees into expr-lang source and
// runs them on the expr virtual machine.
//
// The translation covers the subset of the language whose semantics
// expr-lang shares: literals, arithmetic, boolean logic, comparison chains,
// conditionals, indexing, list literals, calls by name and single-loop
// comprehensions. Anything else yields [ErrUnsupported].
//
// Differences that remain: expr-lang's ** always produces a float, and its
// conditions and filters require booleans where formulas accept any value
// with a truth value.
package transpile

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/ardnew/formula/lang"
)

// Predefined errors.
var (
	ErrUnsupported = lang.NewError("construct not supported by expr-lang")
	ErrCompile     = lang.NewError("expr-lang compile failed")
	ErrRun         = lang.NewError("expr-lang run failed")
)

// ToExpr returns expr-lang source equivalent to e.
func ToExpr(e lang.Expr) (string, error) {
	var w writer
	if err := w.expr(e); err != nil {
		return "", err
	}

	return w.String(), nil
}

type writer struct {
	strings.Builder

	// binder is the comprehension variable rendered as expr-lang's '#'.
	binder string
}

func unsupported(e lang.Expr, issue string) error {
	return ErrUnsupported.With(
		slog.String("node", e.String()),
		slog.String("issue", issue),
	)
}

//nolint:cyclop,funlen // one case per node type
func (w *writer) expr(e lang.Expr) error {
	switch n := e.(type) {
	case *lang.Literal:
		return w.literal(n, n.Value)
	case *lang.Variable:
		if w.binder != "" && n.Name == w.binder {
			w.WriteByte('#')
		} else {
			w.WriteString(n.Name)
		}

		return nil
	case *lang.UnaryOp:
		w.WriteByte('(')

		if n.Op == lang.OpNot {
			w.WriteString("not ")
		} else {
			w.WriteByte('-')
		}

		if err := w.expr(n.Operand); err != nil {
			return err
		}

		w.WriteByte(')')

		return nil
	case *lang.BinaryOp:
		return w.infix(n.LHS, n.Op.String(), n.RHS)
	case *lang.ComparisonChain:
		return w.chain(n)
	case *lang.Condition:
		w.WriteByte('(')

		if err := w.expr(n.Cond); err != nil {
			return err
		}

		w.WriteString(" ? ")

		if err := w.expr(n.Then); err != nil {
			return err
		}

		w.WriteString(" : ")

		if err := w.expr(n.Else); err != nil {
			return err
		}

		w.WriteByte(')')

		return nil
	case *lang.Index:
		if err := w.expr(n.Array); err != nil {
			return err
		}

		w.WriteByte('[')

		if err := w.expr(n.Index); err != nil {
			return err
		}

		w.WriteByte(']')

		return nil
	case *lang.Slice:
		return unsupported(e, "inclusive slices have no expr-lang form")
	case *lang.ListExpr:
		return w.array(n.Elems)
	case *lang.TupleExpr:
		return w.array(n.Elems)
	case *lang.Call:
		callee, ok := n.Callee.(*lang.Variable)
		if !ok || callee.Name == w.binder {
			return unsupported(e, "only named functions can be called")
		}

		w.WriteString(callee.Name)
		w.WriteByte('(')

		if err := w.list(n.Args); err != nil {
			return err
		}

		w.WriteByte(')')

		return nil
	case *lang.Comprehension:
		return w.comprehension(n)
	default:
		return unsupported(e, "unknown node")
	}
}

func (w *writer) literal(e lang.Expr, v lang.Value) error {
	switch v.Kind() {
	case lang.KindNone:
		w.WriteString("nil")
	case lang.KindBool:
		b, _ := v.AsBool()
		w.WriteString(strconv.FormatBool(b))
	case lang.KindInt:
		i, _ := v.AsInt()
		w.WriteString(strconv.FormatInt(i, 10))
	case lang.KindFloat:
		f, _ := v.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return unsupported(e, "non-finite float literal")
		}

		s := strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.ContainsRune(s, '.') {
			s += ".0"
		}

		w.WriteString(s)
	case lang.KindString:
		s, _ := v.AsString()
		w.WriteString(strconv.Quote(s))
	case lang.KindList:
		elems, _ := v.AsList()

		w.WriteByte('[')

		for i, el := range elems {
			if i > 0 {
				w.WriteString(", ")
			}

			if err := w.literal(e, el); err != nil {
				return err
			}
		}

		w.WriteByte(']')
	default:
		return unsupported(e, "function literal")
	}

	return nil
}

func (w *writer) infix(lhs lang.Expr, op string, rhs lang.Expr) error {
	w.WriteByte('(')

	if err := w.expr(lhs); err != nil {
		return err
	}

	w.WriteByte(' ')
	w.WriteString(op)
	w.WriteByte(' ')

	if err := w.expr(rhs); err != nil {
		return err
	}

	w.WriteByte(')')

	return nil
}

// chain expands a < b < c into (a < b and b < c). Inner operands are
// rendered twice, which is sound because formulas have no side effects.
func (w *writer) chain(n *lang.ComparisonChain) error {
	operands := n.Operands()

	w.WriteByte('(')

	for i, op := range n.Operators() {
		if i > 0 {
			w.WriteString(" and ")
		}

		if err := w.infix(operands[i], op.String(), operands[i+1]); err != nil {
			return err
		}
	}

	w.WriteByte(')')

	return nil
}

func (w *writer) array(elems []lang.Expr) error {
	w.WriteByte('[')

	if err := w.list(elems); err != nil {
		return err
	}

	w.WriteByte(']')

	return nil
}

func (w *writer) list(elems []lang.Expr) error {
	for i, el := range elems {
		if i > 0 {
			w.WriteString(", ")
		}

		if err := w.expr(el); err != nil {
			return err
		}
	}

	return nil
}

// comprehension renders [r for x in xs if c] as map(filter(xs, c), r) with
// x replaced by '#'.
func (w *writer) comprehension(n *lang.Comprehension) error {
	if n.Loops.Len() != 1 {
		return unsupported(n, "nested loops")
	}

	if w.binder != "" {
		return unsupported(n, "nested comprehension")
	}

	loop := n.Loops.First
	if loop.Binder.Tuple || len(loop.Binder.Names) != 1 {
		return unsupported(n, "tuple binder")
	}

	for _, sub := range append([]lang.Expr{n.Result}, loop.Conds...) {
		for node := range lang.Walk(sub) {
			if _, ok := node.(*lang.Comprehension); ok {
				return unsupported(n, "nested comprehension")
			}
		}
	}

	w.WriteString("map(")

	if len(loop.Conds) > 0 {
		w.WriteString("filter(")
	}

	if err := w.expr(loop.Iterable); err != nil {
		return err
	}

	w.binder = loop.Binder.Names[0]
	defer func() { w.binder = "" }()

	if len(loop.Conds) > 0 {
		w.WriteString(", ")

		for i, c := range loop.Conds {
			if i > 0 {
				w.WriteString(" and ")
			}

			if err := w.expr(c); err != nil {
				return err
			}
		}

		w.WriteByte(')')
	}

	w.WriteString(", ")

	if err := w.expr(n.Result); err != nil {
		return err
	}

	w.WriteByte(')')

	return nil
}
