package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/lang/transpile"
	"github.com/ardnew/formula/log"
)

// Fmt prints the syntax tree of a formula.
type Fmt struct {
	Canonical Canonical `cmd:"" default:"withargs" help:"Print the fully parenthesized form (default)."`
	JSON      JSON      `cmd:""                    help:"Print the tree as JSON."`
	YAML      YAML      `cmd:""                    help:"Print the tree as YAML."`
	Expr      Expr      `cmd:""                    help:"Print the equivalent expr-lang expression."`
}

// Input is the positional argument shared by the fmt subcommands.
type Input struct {
	Formula string `arg:"" default:"-" help:"Formula to format, or '-' to read it from stdin."`
}

func (f Input) parse(ctx context.Context, format string) (lang.Expr, error) {
	opt := lang.WithLogger(log.Default())

	var (
		e   lang.Expr
		err error
	)

	if f.Formula == stdinSource {
		in, _ := ioFrom(ctx)
		e, err = lang.ParseReader(ctx, in, opt)
	} else {
		e, err = lang.Parse(ctx, f.Formula, opt)
	}

	if err != nil {
		return nil, lang.WrapError(err).With(slog.String("format", format))
	}

	return e, nil
}

// Canonical prints a formula with every operation parenthesized.
type Canonical struct {
	Input `embed:""`
}

// Run executes the fmt canonical command.
func (c *Canonical) Run(ctx context.Context) error {
	e, err := c.parse(ctx, "canonical")
	if err != nil {
		return err
	}

	_, out := ioFrom(ctx)

	if err := writeLine(out, e.String()); err != nil {
		return ErrOutput.Wrap(err)
	}

	return nil
}

// JSON prints the syntax tree as JSON.
type JSON struct {
	Input `embed:""`

	Indent int `default:"2" help:"Indent width; 0 prints one line." short:"i"`
}

// Run executes the fmt json command.
func (j *JSON) Run(ctx context.Context) error {
	e, err := j.parse(ctx, "json")
	if err != nil {
		return err
	}

	_, out := ioFrom(ctx)

	if err := lang.FormatJSON(ctx, out, e, j.Indent); err != nil {
		return ErrOutput.Wrap(err).With(slog.String("format", "json"))
	}

	return nil
}

// YAML prints the syntax tree as YAML.
type YAML struct {
	Input `embed:""`

	Indent int `default:"2" help:"Indent width; 0 prints flow style." short:"i"`
}

// Run executes the fmt yaml command.
func (y *YAML) Run(ctx context.Context) error {
	e, err := y.parse(ctx, "yaml")
	if err != nil {
		return err
	}

	_, out := ioFrom(ctx)

	if err := lang.FormatYAML(ctx, out, e, y.Indent); err != nil {
		return ErrOutput.Wrap(err).With(slog.String("format", "yaml"))
	}

	return nil
}

// Expr prints the expr-lang translation of a formula.
type Expr struct {
	Input `embed:""`
}

// Run executes the fmt expr command.
func (x *Expr) Run(ctx context.Context) error {
	e, err := x.parse(ctx, "expr")
	if err != nil {
		return err
	}

	src, err := transpile.ToExpr(e)
	if err != nil {
		return err
	}

	_, out := ioFrom(ctx)

	if err := writeLine(out, strings.TrimSpace(src)); err != nil {
		return ErrOutput.Wrap(err)
	}

	return nil
}
