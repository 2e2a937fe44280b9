package lang

import (
	"context"
	"log/slog"
)

// Evaluate evaluates e against env. The first error in left-to-right
// depth-first order aborts evaluation.
func Evaluate(
	ctx context.Context,
	e Expr,
	env Environment,
	opts ...Option,
) (Value, error) {
	cfg := makeConfig(opts...)

	if env == nil {
		env = NewMap(nil)
	}

	v, err := e.Eval(ctx, env)
	if err != nil {
		cfg.logger.TraceContext(ctx, "eval failed",
			slog.String("kind", ErrorKind(err).String()),
			slog.Any("error", err))

		return None(), err
	}

	cfg.logger.TraceContext(ctx, "eval complete", slog.Any("result", v))

	return v, nil
}

// Eval returns the literal value.
func (n *Literal) Eval(context.Context, Environment) (Value, error) {
	return n.Value, nil
}

// Eval resolves the variable in env.
func (n *Variable) Eval(_ context.Context, env Environment) (Value, error) {
	if v, ok := env.Lookup(n.Name); ok {
		return v, nil
	}

	return None(), ErrUndefinedVariable.With(slog.String("name", n.Name))
}

// Eval applies the operator to the evaluated operand.
func (n *UnaryOp) Eval(ctx context.Context, env Environment) (Value, error) {
	v, err := n.Operand.Eval(ctx, env)
	if err != nil {
		return None(), err
	}

	switch n.Op {
	case OpNeg:
		return Neg(v)
	case OpNot:
		return Not(v)
	default:
		return None(), mismatchUnary(n.Op.String(), v)
	}
}

var binaryFuncs = [...]func(a, b Value) (Value, error){
	OpAdd: Add,
	OpSub: Sub,
	OpMul: Mul,
	OpDiv: Div,
	OpMod: Mod,
	OpPow: Pow,
	OpAnd: And,
	OpOr:  Or,
}

// Eval evaluates both operands, left first, then applies the operator.
func (n *BinaryOp) Eval(ctx context.Context, env Environment) (Value, error) {
	lhs, err := n.LHS.Eval(ctx, env)
	if err != nil {
		return None(), err
	}

	rhs, err := n.RHS.Eval(ctx, env)
	if err != nil {
		return None(), err
	}

	if int(n.Op) >= len(binaryFuncs) {
		return None(), mismatch(n.Op.String(), lhs, rhs)
	}

	return binaryFuncs[n.Op](lhs, rhs)
}

// Eval evaluates the chain left to right and stops at the first false link.
func (n *ComparisonChain) Eval(
	ctx context.Context,
	env Environment,
) (Value, error) {
	lhs, err := n.first.Eval(ctx, env)
	if err != nil {
		return None(), err
	}

	for _, link := range n.links {
		rhs, err := link.Operand.Eval(ctx, env)
		if err != nil {
			return None(), err
		}

		ok, err := compare(link.Op, lhs, rhs)
		if err != nil {
			return None(), err
		}

		if !ok {
			return Bool(false), nil
		}

		lhs = rhs
	}

	return Bool(true), nil
}

func compare(op CompareOperator, lhs, rhs Value) (bool, error) {
	switch op {
	case CmpEq:
		return Eq(lhs, rhs), nil
	case CmpNe:
		return !Eq(lhs, rhs), nil
	case CmpLt:
		return Less(lhs, rhs)
	case CmpGt:
		return Greater(lhs, rhs)
	case CmpLe:
		return LessEqual(lhs, rhs)
	case CmpGe:
		return GreaterEqual(lhs, rhs)
	case CmpIn:
		return In(lhs, rhs)
	case CmpNotIn:
		in, err := In(lhs, rhs)

		return !in, err
	default:
		return false, mismatch(op.String(), lhs, rhs)
	}
}

// Eval evaluates exactly one branch selected by the truth of Cond.
func (n *Condition) Eval(ctx context.Context, env Environment) (Value, error) {
	c, err := n.Cond.Eval(ctx, env)
	if err != nil {
		return None(), err
	}

	ok, err := Truthy(c)
	if err != nil {
		return None(), err
	}

	if ok {
		return n.Then.Eval(ctx, env)
	}

	return n.Else.Eval(ctx, env)
}

// Eval selects an element. Negative indices count from the end.
func (n *Index) Eval(ctx context.Context, env Environment) (Value, error) {
	arr, err := n.Array.Eval(ctx, env)
	if err != nil {
		return None(), err
	}

	idx, err := n.Index.Eval(ctx, env)
	if err != nil {
		return None(), err
	}

	i, ok := idx.AsInt()
	if arr.kind != KindList || !ok {
		return None(), mismatch("[]", arr, idx)
	}

	size := int64(len(arr.l))
	if i < 0 {
		i += size
	}

	if i < 0 || i >= size {
		return None(), ErrIndexOutOfBounds.With(
			slog.Any("index", idx),
			slog.Int64("length", size),
		)
	}

	return arr.l[i], nil
}

// Eval selects every element from start to end inclusive by step.
func (n *Slice) Eval(ctx context.Context, env Environment) (Value, error) {
	arr, err := n.Array.Eval(ctx, env)
	if err != nil {
		return None(), err
	}

	part := func(e Expr, name string) (int64, bool, error) {
		if e == nil {
			return 0, false, nil
		}

		v, err := e.Eval(ctx, env)
		if err != nil {
			return 0, false, err
		}

		i, ok := v.AsInt()
		if !ok {
			return 0, false, ErrTypeMismatch.With(
				slog.String("op", "[:]"),
				slog.String(name, v.Kind().String()),
			)
		}

		return i, true, nil
	}

	start, hasStart, err := part(n.Start, "start")
	if err != nil {
		return None(), err
	}

	end, hasEnd, err := part(n.End, "end")
	if err != nil {
		return None(), err
	}

	step, hasStep, err := part(n.Step, "step")
	if err != nil {
		return None(), err
	}

	if arr.kind != KindList {
		return None(), mismatchUnary("[:]", arr)
	}

	if !hasStep {
		step = 1
	}

	if step == 0 {
		return None(), ErrValueError.With(
			slog.String("op", "[:]"),
			slog.String("issue", "slice step cannot be zero"),
		)
	}

	return listOf(sliceRange(arr.l, start, end, step, hasStart, hasEnd)), nil
}

func sliceRange(
	elems []Value,
	start, end, step int64,
	hasStart, hasEnd bool,
) []Value {
	size := int64(len(elems))
	if size == 0 {
		return nil
	}

	last := size - 1

	resolve := func(v int64) int64 {
		if v < 0 {
			v += last
		}

		return min(max(v, 0), last)
	}

	switch {
	case !hasStart && step > 0:
		start = 0
	case !hasStart:
		start = last
	default:
		start = resolve(start)
	}

	switch {
	case !hasEnd && step > 0:
		end = last
	case !hasEnd:
		end = 0
	default:
		end = resolve(end)
	}

	var out []Value

	if step > 0 {
		for i := start; i <= end; i += step {
			out = append(out, elems[i])

			if step > end-i {
				break
			}
		}
	} else {
		for i := start; i >= end; i += step {
			out = append(out, elems[i])
		}
	}

	return out
}

// Eval evaluates the elements left to right.
func (n *ListExpr) Eval(ctx context.Context, env Environment) (Value, error) {
	return evalElems(ctx, env, n.Elems)
}

// Eval evaluates the elements left to right into a list.
func (n *TupleExpr) Eval(ctx context.Context, env Environment) (Value, error) {
	return evalElems(ctx, env, n.Elems)
}

func evalElems(ctx context.Context, env Environment, elems []Expr) (Value, error) {
	out := make([]Value, len(elems))

	for i, e := range elems {
		v, err := e.Eval(ctx, env)
		if err != nil {
			return None(), err
		}

		out[i] = v
	}

	return listOf(out), nil
}

// Eval evaluates the callee and the arguments, then invokes the function.
func (n *Call) Eval(ctx context.Context, env Environment) (Value, error) {
	callee, err := n.Callee.Eval(ctx, env)
	if err != nil {
		return None(), err
	}

	fn, ok := callee.AsFunc()
	if !ok || fn == nil || fn.Call == nil {
		return None(), mismatchUnary("()", callee)
	}

	args := make([]Value, len(n.Args))

	for i, a := range n.Args {
		v, err := a.Eval(ctx, env)
		if err != nil {
			return None(), err
		}

		args[i] = v
	}

	return fn.Call(args)
}
