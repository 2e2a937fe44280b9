package transpile

import (
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/formula/lang"
)

// Program is a formula compiled to expr-lang bytecode.
type Program struct {
	source  string
	free    []string
	program *vm.Program
}

// Source returns the expr-lang source the program was compiled from.
func (p *Program) Source() string { return p.source }

// Compile translates e and compiles it against the names visible in env.
// Environment names that collide with expr-lang built-ins take precedence
// over the built-ins.
func Compile(e lang.Expr, env lang.Environment) (*Program, error) {
	source, err := ToExpr(e)
	if err != nil {
		return nil, err
	}

	free := lang.FreeVariables(e)
	names := native(env, free)

	opts := []expr.Option{
		expr.Env(names),
		expr.AllowUndefinedVariables(),
		expr.Patch(&dottedPatcher{env: names}),
	}

	comprehends := hasComprehension(e)

	for _, name := range free {
		if comprehends && (name == "map" || name == "filter") {
			return nil, unsupported(e, "comprehension shadows "+name)
		}

		opts = append(opts, expr.DisableBuiltin(name))
	}

	program, err := expr.Compile(source, opts...)
	if err != nil {
		return nil, ErrCompile.Wrap(err).With(slog.String("source", source))
	}

	return &Program{source: source, free: free, program: program}, nil
}

// Run executes p against env and converts the result back to a Value.
func (p *Program) Run(env lang.Environment) (lang.Value, error) {
	out, err := vm.Run(p.program, native(env, p.free))
	if err != nil {
		return lang.None(), ErrRun.Wrap(err).With(slog.String("source", p.source))
	}

	v, err := lang.FromNative(out)
	if err != nil {
		return lang.None(), ErrRun.Wrap(err).With(slog.String("source", p.source))
	}

	return v, nil
}

func hasComprehension(e lang.Expr) bool {
	for n := range lang.Walk(e) {
		if _, ok := n.(*lang.Comprehension); ok {
			return true
		}
	}

	return false
}

// native converts the bindings of names into expr-lang environment values.
// Functions become variadic Go functions that round-trip their arguments
// through [lang.FromNative].
func native(env lang.Environment, names []string) map[string]any {
	out := make(map[string]any, len(names))

	if env == nil {
		return out
	}

	for _, name := range names {
		v, ok := env.Lookup(name)
		if !ok {
			continue
		}

		fn, isFunc := v.AsFunc()
		if !isFunc {
			out[name] = v.Native()

			continue
		}

		out[name] = func(args ...any) (any, error) {
			vals := make([]lang.Value, len(args))

			for i, a := range args {
				val, err := lang.FromNative(a)
				if err != nil {
					return nil, err
				}

				vals[i] = val
			}

			res, err := fn.Call(vals)
			if err != nil {
				return nil, err
			}

			return res.Native(), nil
		}
	}

	return out
}

// dottedPatcher rewrites member chains such as math.pi, which expr-lang
// parses as field access, into the single dotted identifier bound in the
// environment.
type dottedPatcher struct {
	env map[string]any
}

// Visit implements ast.Visitor.
func (p *dottedPatcher) Visit(node *ast.Node) {
	member, ok := (*node).(*ast.MemberNode)
	if !ok {
		return
	}

	path, ok := memberPath(member)
	if !ok {
		return
	}

	name := strings.Join(path, ".")
	if _, bound := p.env[name]; bound {
		ast.Patch(node, &ast.IdentifierNode{Value: name})
	}
}

// memberPath walks a MemberNode chain with constant string properties.
func memberPath(node ast.Node) ([]string, bool) {
	switch n := node.(type) {
	case *ast.IdentifierNode:
		return []string{n.Value}, true
	case *ast.MemberNode:
		prop, ok := n.Property.(*ast.StringNode)
		if !ok {
			return nil, false
		}

		base, ok := memberPath(n.Node)
		if !ok {
			return nil, false
		}

		return append(base, prop.Value), true
	default:
		return nil, false
	}
}
