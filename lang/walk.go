package lang

import "iter"

// Inspect traverses e in pre-order, calling fn for each node before its
// children. If fn returns false the children of that node are skipped.
func Inspect(e Expr, fn func(Expr) bool) {
	if e == nil || !fn(e) {
		return
	}

	for _, c := range Children(e) {
		Inspect(c, fn)
	}
}

// Walk returns an iterator over every node of e in pre-order.
func Walk(e Expr) iter.Seq[Expr] {
	return func(yield func(Expr) bool) {
		stop := false

		Inspect(e, func(n Expr) bool {
			if stop {
				return false
			}

			stop = !yield(n)

			return !stop
		})
	}
}

// Children returns the direct sub-expressions of e in source order.
// A comprehension lists its result first, then each loop's iterable and
// conditions.
func Children(e Expr) []Expr {
	switch n := e.(type) {
	case *Literal, *Variable:
		return nil
	case *UnaryOp:
		return []Expr{n.Operand}
	case *BinaryOp:
		return []Expr{n.LHS, n.RHS}
	case *ComparisonChain:
		return n.Operands()
	case *Condition:
		return []Expr{n.Then, n.Cond, n.Else}
	case *Index:
		return []Expr{n.Array, n.Index}
	case *Slice:
		out := []Expr{n.Array}

		for _, c := range []Expr{n.Start, n.End, n.Step} {
			if c != nil {
				out = append(out, c)
			}
		}

		return out
	case *ListExpr:
		return append([]Expr(nil), n.Elems...)
	case *TupleExpr:
		return append([]Expr(nil), n.Elems...)
	case *Call:
		return append([]Expr{n.Callee}, n.Args...)
	case *Comprehension:
		out := []Expr{n.Result}

		for _, l := range n.Loops.All() {
			out = append(out, l.Iterable)
			out = append(out, l.Conds...)
		}

		return out
	default:
		return nil
	}
}
