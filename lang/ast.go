package lang

import (
	"context"
	"strconv"
)

// Expr is a node of a parsed formula. The set of node types is closed:
// [*Literal], [*Variable], [*UnaryOp], [*BinaryOp], [*ComparisonChain],
// [*Condition], [*Index], [*Slice], [*ListExpr], [*TupleExpr], [*Call] and
// [*Comprehension].
//
// A tree is never mutated after construction and may be evaluated
// concurrently against distinct environments.
type Expr interface {
	// Eval evaluates the node against env.
	Eval(ctx context.Context, env Environment) (Value, error)
	// String returns the canonical rendering of the node.
	String() string

	node()
}

// UnaryOperator identifies a prefix operator.
type UnaryOperator uint8

const (
	OpNeg UnaryOperator = iota // -
	OpNot                      // not
)

func (op UnaryOperator) String() string {
	switch op {
	case OpNeg:
		return "-"
	case OpNot:
		return "not"
	default:
		return "UnaryOperator(" + strconv.Itoa(int(op)) + ")"
	}
}

// BinaryOperator identifies an infix arithmetic or logical operator.
type BinaryOperator uint8

const (
	OpAdd BinaryOperator = iota // +
	OpSub                       // -
	OpMul                       // *
	OpDiv                       // /
	OpMod                       // %
	OpPow                       // **
	OpAnd                       // and
	OpOr                        // or
)

var binaryOperators = [...]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
	OpMod: "%",
	OpPow: "**",
	OpAnd: "and",
	OpOr:  "or",
}

func (op BinaryOperator) String() string {
	if int(op) < len(binaryOperators) {
		return binaryOperators[op]
	}

	return "BinaryOperator(" + strconv.Itoa(int(op)) + ")"
}

// CompareOperator identifies a link of a comparison chain.
type CompareOperator uint8

const (
	CmpEq    CompareOperator = iota // ==
	CmpNe                           // !=
	CmpLt                           // <
	CmpGt                           // >
	CmpLe                           // <=
	CmpGe                           // >=
	CmpIn                           // in
	CmpNotIn                        // not in
)

var compareOperators = [...]string{
	CmpEq:    "==",
	CmpNe:    "!=",
	CmpLt:    "<",
	CmpGt:    ">",
	CmpLe:    "<=",
	CmpGe:    ">=",
	CmpIn:    "in",
	CmpNotIn: "not in",
}

func (op CompareOperator) String() string {
	if int(op) < len(compareOperators) {
		return compareOperators[op]
	}

	return "CompareOperator(" + strconv.Itoa(int(op)) + ")"
}

// Literal is a constant: Bool, Int, Float, String or None.
type Literal struct {
	Value Value
}

// Variable is a reference to a name in the environment.
type Variable struct {
	Name string
}

// UnaryOp applies a prefix operator.
type UnaryOp struct {
	Operand Expr
	Op      UnaryOperator
}

// BinaryOp applies an infix operator. Both operands are always evaluated,
// left first.
type BinaryOp struct {
	LHS Expr
	RHS Expr
	Op  BinaryOperator
}

// Link is one step of a comparison chain: the operator and its right-hand
// operand.
type Link struct {
	Operand Expr
	Op      CompareOperator
}

// ComparisonChain is a flat sequence of comparisons such as a < b <= c.
// It always holds at least two operands.
type ComparisonChain struct {
	first Expr
	links []Link
}

// NewComparisonChain returns the chain first link rest...
func NewComparisonChain(first Expr, link Link, rest ...Link) *ComparisonChain {
	links := make([]Link, 0, 1+len(rest))

	return &ComparisonChain{first: first, links: append(append(links, link), rest...)}
}

// First returns the leftmost operand.
func (c *ComparisonChain) First() Expr { return c.first }

// Links returns a copy of the operator and operand pairs following
// [ComparisonChain.First].
func (c *ComparisonChain) Links() []Link { return append([]Link(nil), c.links...) }

// Operands returns every operand in order.
func (c *ComparisonChain) Operands() []Expr {
	out := make([]Expr, 0, len(c.links)+1)
	out = append(out, c.first)

	for _, l := range c.links {
		out = append(out, l.Operand)
	}

	return out
}

// Operators returns every operator in order; there is always one fewer
// than there are operands.
func (c *ComparisonChain) Operators() []CompareOperator {
	out := make([]CompareOperator, len(c.links))
	for i, l := range c.links {
		out[i] = l.Op
	}

	return out
}

// Condition is the ternary Then if Cond else Else.
type Condition struct {
	Then Expr
	Cond Expr
	Else Expr
}

// Index selects one element of a list.
type Index struct {
	Array Expr
	Index Expr
}

// Slice selects a range of a list. Start, End and Step are nil when
// omitted. The range is inclusive of End.
type Slice struct {
	Array Expr
	Start Expr
	End   Expr
	Step  Expr
}

// ListExpr is a list display [a, b].
type ListExpr struct {
	Elems []Expr
}

// TupleExpr is a tuple display (a, b). Tuples evaluate to lists.
type TupleExpr struct {
	Elems []Expr
}

// Call applies a function value to arguments.
type Call struct {
	Callee Expr
	Args   []Expr
}

// Binder names the variables bound by one comprehension loop: either a
// single name or a tuple destructuring a list element.
type Binder struct {
	Names []string
	Tuple bool
}

// Loop is one "for Binder in Iterable if Cond..." clause.
type Loop struct {
	Iterable Expr
	Binder   Binder
	Conds    []Expr
}

// Loops is the non-empty sequence of loops of a comprehension.
type Loops struct {
	First Loop
	Rest  []Loop
}

// All returns every loop, outermost first.
func (l Loops) All() []Loop {
	out := make([]Loop, 0, 1+len(l.Rest))

	return append(append(out, l.First), l.Rest...)
}

// Len returns the number of loops.
func (l Loops) Len() int { return 1 + len(l.Rest) }

// At returns loop i, outermost first.
func (l Loops) At(i int) Loop {
	if i == 0 {
		return l.First
	}

	return l.Rest[i-1]
}

// Comprehension builds a list from Result for every binding produced by
// Loops.
type Comprehension struct {
	Result Expr
	Loops  Loops
}

func (*Literal) node()         {}
func (*Variable) node()        {}
func (*UnaryOp) node()         {}
func (*BinaryOp) node()        {}
func (*ComparisonChain) node() {}
func (*Condition) node()       {}
func (*Index) node()           {}
func (*Slice) node()           {}
func (*ListExpr) node()        {}
func (*TupleExpr) node()       {}
func (*Call) node()            {}
func (*Comprehension) node()   {}
