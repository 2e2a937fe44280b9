package lang

import (
	"context"
	"log/slog"
)

// Eval runs the loops depth first in one scope chained to env and collects
// Result for every binding that passes all conditions. The scope is shared
// by every loop and iteration, so binders with the same name at different
// depths alias each other.
func (n *Comprehension) Eval(
	ctx context.Context,
	env Environment,
) (Value, error) {
	c := comprehension{
		ctx:   ctx,
		expr:  n,
		scope: NewScope(env),
		out:   []Value{},
	}

	if err := c.run(0); err != nil {
		return None(), err
	}

	return listOf(c.out), nil
}

type comprehension struct {
	ctx   context.Context
	expr  *Comprehension
	scope *Scope
	out   []Value
}

func (c *comprehension) run(depth int) error {
	loop := c.expr.Loops.At(depth)

	iter, err := loop.Iterable.Eval(c.ctx, c.scope)
	if err != nil {
		return err
	}

	if iter.kind != KindList {
		return mismatchUnary("for", iter)
	}

	for _, elem := range iter.l {
		if err := c.ctx.Err(); err != nil {
			return ErrEvalCanceled.Wrap(context.Cause(c.ctx))
		}

		if err := c.bind(loop.Binder, elem); err != nil {
			return err
		}

		ok, err := c.accept(loop.Conds)
		if err != nil {
			return err
		}

		if !ok {
			continue
		}

		if depth+1 < c.expr.Loops.Len() {
			if err := c.run(depth + 1); err != nil {
				return err
			}

			continue
		}

		v, err := c.expr.Result.Eval(c.ctx, c.scope)
		if err != nil {
			return err
		}

		c.out = append(c.out, v)
	}

	return nil
}

func (c *comprehension) bind(b Binder, elem Value) error {
	if !b.Tuple {
		for _, name := range b.Names {
			c.scope.Bind(name, elem)
		}

		return nil
	}

	if elem.kind != KindList {
		return mismatchUnary("unpack", elem)
	}

	if len(elem.l) != len(b.Names) {
		return ErrValueError.With(
			slog.String("issue", "cannot unpack list"),
			slog.Int("want", len(b.Names)),
			slog.Int("have", len(elem.l)),
		)
	}

	for i, name := range b.Names {
		c.scope.Bind(name, elem.l[i])
	}

	return nil
}

func (c *comprehension) accept(conds []Expr) (bool, error) {
	for _, cond := range conds {
		v, err := cond.Eval(c.ctx, c.scope)
		if err != nil {
			return false, err
		}

		ok, err := Truthy(v)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}
