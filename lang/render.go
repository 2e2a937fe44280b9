package lang

import "strings"

// String renders the literal in a form the parser reads back.
func (n *Literal) String() string { return n.Value.Repr() }

func (n *Variable) String() string { return n.Name }

func (n *UnaryOp) String() string {
	return "(" + n.Op.String() + " " + nested(n.Operand) + ")"
}

func (n *BinaryOp) String() string {
	return "(" + nested(n.LHS) + " " + n.Op.String() + " " + nested(n.RHS) + ")"
}

func (n *ComparisonChain) String() string {
	var buf strings.Builder

	buf.WriteString(nested(n.first))

	for _, l := range n.links {
		buf.WriteByte(' ')
		buf.WriteString(l.Op.String())
		buf.WriteByte(' ')
		buf.WriteString(nested(l.Operand))
	}

	return buf.String()
}

func (n *Condition) String() string {
	return "(" + n.Then.String() + " if " + n.Cond.String() +
		" else " + n.Else.String() + ")"
}

func (n *Index) String() string {
	return suffixed(n.Array) + "[" + n.Index.String() + "]"
}

func (n *Slice) String() string {
	var buf strings.Builder

	buf.WriteString(suffixed(n.Array))
	buf.WriteByte('[')

	if n.Start != nil {
		buf.WriteString(n.Start.String())
	}

	buf.WriteByte(':')

	if n.End != nil {
		buf.WriteString(n.End.String())
	}

	if n.Step != nil {
		buf.WriteByte(':')
		buf.WriteString(n.Step.String())
	}

	buf.WriteByte(']')

	return buf.String()
}

func (n *ListExpr) String() string { return "[" + joinExprs(n.Elems) + "]" }

func (n *TupleExpr) String() string {
	if len(n.Elems) == 1 {
		return "(" + n.Elems[0].String() + ",)"
	}

	return "(" + joinExprs(n.Elems) + ")"
}

func (n *Call) String() string {
	args := "(" + joinExprs(n.Args) + ")"

	if v, ok := n.Callee.(*Variable); ok {
		return "(" + v.Name + args + ")"
	}

	return "((" + n.Callee.String() + ")" + args + ")"
}

func (n *Comprehension) String() string {
	var buf strings.Builder

	buf.WriteByte('(')
	buf.WriteString(n.Result.String())

	for _, l := range n.Loops.All() {
		buf.WriteString(" for ")
		buf.WriteString(l.Binder.String())
		buf.WriteString(" in ")
		buf.WriteString(l.Iterable.String())

		for _, c := range l.Conds {
			buf.WriteString(" if ")
			buf.WriteString(c.String())
		}
	}

	buf.WriteByte(')')

	return buf.String()
}

// String renders the binder as a name or a parenthesized tuple of names.
func (b Binder) String() string {
	if !b.Tuple {
		return strings.Join(b.Names, ", ")
	}

	if len(b.Names) == 1 {
		return "(" + b.Names[0] + ",)"
	}

	return "(" + strings.Join(b.Names, ", ") + ")"
}

func joinExprs(es []Expr) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}

	return strings.Join(parts, ", ")
}

// nested renders an operand of an operator. Comparison chains are flat, so
// a chain nested inside an operator needs explicit parentheses.
func nested(e Expr) string {
	if _, ok := e.(*ComparisonChain); ok {
		return "(" + e.String() + ")"
	}

	return e.String()
}

// suffixed renders the base of an index or slice. Literals and chains take
// no suffix without parentheses.
func suffixed(e Expr) string {
	switch e.(type) {
	case *Literal, *ComparisonChain:
		return "(" + e.String() + ")"
	default:
		return e.String()
	}
}
