package lang

import "slices"

// Equal reports whether a and b are structurally equal: the same node
// types with equal operators, names, literal values and children.
func Equal(a, b Expr) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	switch x := a.(type) {
	case *Literal:
		y, ok := b.(*Literal)

		return ok && x.Value.Equal(y.Value)
	case *Variable:
		y, ok := b.(*Variable)

		return ok && x.Name == y.Name
	case *UnaryOp:
		y, ok := b.(*UnaryOp)

		return ok && x.Op == y.Op && Equal(x.Operand, y.Operand)
	case *BinaryOp:
		y, ok := b.(*BinaryOp)

		return ok && x.Op == y.Op && Equal(x.LHS, y.LHS) && Equal(x.RHS, y.RHS)
	case *ComparisonChain:
		y, ok := b.(*ComparisonChain)

		return ok && Equal(x.first, y.first) &&
			slices.EqualFunc(x.links, y.links, func(l, m Link) bool {
				return l.Op == m.Op && Equal(l.Operand, m.Operand)
			})
	case *Condition:
		y, ok := b.(*Condition)

		return ok && Equal(x.Then, y.Then) && Equal(x.Cond, y.Cond) &&
			Equal(x.Else, y.Else)
	case *Index:
		y, ok := b.(*Index)

		return ok && Equal(x.Array, y.Array) && Equal(x.Index, y.Index)
	case *Slice:
		y, ok := b.(*Slice)

		return ok && Equal(x.Array, y.Array) && Equal(x.Start, y.Start) &&
			Equal(x.End, y.End) && Equal(x.Step, y.Step)
	case *ListExpr:
		y, ok := b.(*ListExpr)

		return ok && slices.EqualFunc(x.Elems, y.Elems, Equal)
	case *TupleExpr:
		y, ok := b.(*TupleExpr)

		return ok && slices.EqualFunc(x.Elems, y.Elems, Equal)
	case *Call:
		y, ok := b.(*Call)

		return ok && Equal(x.Callee, y.Callee) &&
			slices.EqualFunc(x.Args, y.Args, Equal)
	case *Comprehension:
		y, ok := b.(*Comprehension)

		return ok && Equal(x.Result, y.Result) &&
			slices.EqualFunc(x.Loops.All(), y.Loops.All(), equalLoop)
	default:
		return false
	}
}

func equalLoop(a, b Loop) bool {
	return a.Binder.Tuple == b.Binder.Tuple &&
		slices.Equal(a.Binder.Names, b.Binder.Names) &&
		Equal(a.Iterable, b.Iterable) &&
		slices.EqualFunc(a.Conds, b.Conds, Equal)
}
