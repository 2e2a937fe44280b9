package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/lang/transpile"
	"github.com/ardnew/formula/log"
)

// Output encodings of a result.
const (
	outputText = "text"
	outputRepr = "repr"
	outputJSON = "json"
	outputYAML = "yaml"
)

// Evaluation engines.
const (
	engineNative = "native"
	engineExpr   = "expr"
)

// Eval evaluates formulas.
type Eval struct {
	Env `embed:""`

	Formulas []string `arg:""               help:"Formulas to evaluate. Without any, formulas are read one per line from --file or stdin." optional:""`
	File     []string `help:"Read formulas from FILE, one per line; '-' is stdin. Blank lines and lines starting with '#' are skipped." placeholder:"FILE" short:"f"`
	Output   string   `default:"text"       enum:"text,repr,json,yaml" help:"Result encoding: ${enum}."                  short:"o"`
	Free     bool     `help:"Print the free variables of each formula instead of evaluating it."`
	Show     bool     `help:"Prefix each result with the canonical form of its formula."`
	Engine   string   `default:"native"     enum:"native,expr"          help:"Evaluator: ${enum}. expr compiles formulas to expr-lang bytecode."`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	env, release, err := e.open(ctx)
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, release()) }()

	in, out := ioFrom(ctx)

	eval := func(src, origin string, line int) error {
		if err := e.eval(ctx, out, env, src); err != nil {
			return ErrEval.Wrap(err).With(
				slog.String("formula", src),
				slog.String("source", origin),
				slog.Int("line", line))
		}

		return nil
	}

	if len(e.Formulas) > 0 {
		for i, src := range e.Formulas {
			if err := eval(src, "args", i+1); err != nil {
				return err
			}
		}

		return nil
	}

	paths := e.File
	if len(paths) == 0 {
		paths = []string{stdinSource}
	}

	srcs, err := openSources(paths, in)
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, srcs.Close()) }()

	for name, r := range srcs.All() {
		if err := eachLine(r, func(src string, line int) error {
			return eval(src, name, line)
		}); err != nil {
			return err
		}
	}

	return nil
}

// eachLine calls fn with every formula in r and its 1-based line number.
func eachLine(r io.Reader, fn func(src string, line int) error) error {
	sc := bufio.NewScanner(r)

	for line := 1; sc.Scan(); line++ {
		src := strings.TrimSpace(sc.Text())
		if src == "" || strings.HasPrefix(src, "#") {
			continue
		}

		if err := fn(src, line); err != nil {
			return err
		}
	}

	if err := sc.Err(); err != nil {
		return ErrSource.Wrap(err)
	}

	return nil
}

func (e *Eval) eval(ctx context.Context, w io.Writer, env lang.Environment, src string) error {
	logger := log.Default()

	expr, err := lang.ParseCached(ctx, src, lang.WithLogger(logger))
	if err != nil {
		return err
	}

	if e.Free {
		if err := writeLine(w, strings.Join(lang.FreeVariables(expr), " ")); err != nil {
			return ErrOutput.Wrap(err)
		}

		return nil
	}

	v, err := e.evaluate(ctx, expr, env)
	if err != nil {
		return err
	}

	logger.DebugContext(ctx, "evaluated",
		slog.String("formula", src),
		slog.Any("value", v))

	if e.Show {
		if _, err := fmt.Fprintf(w, "%s = ", expr); err != nil {
			return ErrOutput.Wrap(err)
		}
	}

	return writeValue(ctx, w, e.Output, v)
}

func (e *Eval) evaluate(ctx context.Context, expr lang.Expr, env lang.Environment) (lang.Value, error) {
	if e.Engine != engineExpr {
		return lang.Evaluate(ctx, expr, env, lang.WithLogger(log.Default()))
	}

	p, err := transpile.Compile(expr, env)
	if err != nil {
		return lang.None(), err
	}

	log.TraceContext(ctx, "compiled", slog.String("source", p.Source()))

	return p.Run(env)
}

func writeValue(ctx context.Context, w io.Writer, output string, v lang.Value) error {
	var err error

	switch output {
	case outputRepr:
		err = writeLine(w, v.Repr())
	case outputJSON:
		err = lang.FormatValueJSON(ctx, w, v, 0)
	case outputYAML:
		err = lang.FormatValueYAML(ctx, w, v, 0)
	default:
		err = writeLine(w, v.String())
	}

	if err != nil {
		return ErrOutput.Wrap(err).With(slog.String("output", output))
	}

	return nil
}

func writeLine(w io.Writer, s string) error {
	_, err := io.WriteString(w, s+"\n")

	return err
}
