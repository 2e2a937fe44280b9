package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/lang/stdlib"
	"github.com/ardnew/formula/log"
	"github.com/ardnew/formula/store"
)

// Vars manages the variable store.
type Vars struct {
	Set VarsSet `cmd:"" help:"Evaluate a formula and save the result."`
	Get VarsGet `cmd:"" help:"Print a saved variable."`
	Rm  VarsRm  `cmd:"" help:"Delete saved variables."`
	Ls  VarsLs  `cmd:"" help:"List saved variables."`
}

// StoreFile selects the database used by the vars commands.
type StoreFile struct {
	StorePath string `default:"${store}" help:"Variable database." type:"path"`
}

func (f StoreFile) with(ctx context.Context, fn func(*store.Store) error) (err error) {
	s, err := store.Open(f.StorePath)
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, s.Close()) }()

	log.TraceContext(ctx, "store open", slog.String("path", s.Path()))

	return fn(s)
}

// VarsSet saves the value of a formula.
type VarsSet struct {
	StoreFile `embed:""`

	Name    string `arg:"" help:"Variable name."`
	Formula string `arg:"" help:"Formula evaluated against the saved variables and the standard library."`
}

// Run executes the vars set command.
func (c *VarsSet) Run(ctx context.Context) error {
	if err := checkName(ctx, c.Name); err != nil {
		return err
	}

	return c.with(ctx, func(s *store.Store) error {
		e, err := lang.Parse(ctx, c.Formula, lang.WithLogger(log.Default()))
		if err != nil {
			return err
		}

		v, err := lang.Evaluate(ctx, e, lang.Layer(s, stdlib.New()), lang.WithLogger(log.Default()))
		if err != nil {
			return ErrEval.Wrap(err).With(slog.String("formula", c.Formula))
		}

		if err := s.Set(c.Name, v); err != nil {
			return err
		}

		log.DebugContext(ctx, "variable saved",
			slog.String("name", c.Name),
			slog.Any("value", v))

		return nil
	})
}

// VarsGet prints saved variables.
type VarsGet struct {
	StoreFile `embed:""`

	Names  []string `arg:""          help:"Variable names."`
	Output string   `default:"repr" enum:"text,repr,json,yaml" help:"Value encoding: ${enum}." short:"o"`
}

// Run executes the vars get command.
func (c *VarsGet) Run(ctx context.Context) error {
	_, out := ioFrom(ctx)

	return c.with(ctx, func(s *store.Store) error {
		for _, name := range c.Names {
			v, err := s.Get(name)
			if err != nil {
				return err
			}

			if err := writeValue(ctx, out, c.Output, v); err != nil {
				return err
			}
		}

		return nil
	})
}

// VarsRm deletes saved variables.
type VarsRm struct {
	StoreFile `embed:""`

	Names []string `arg:"" help:"Variable names."`
}

// Run executes the vars rm command.
func (c *VarsRm) Run(ctx context.Context) error {
	return c.with(ctx, func(s *store.Store) error {
		for _, name := range c.Names {
			if err := s.Delete(name); err != nil {
				return err
			}

			log.DebugContext(ctx, "variable deleted", slog.String("name", name))
		}

		return nil
	})
}

// VarsLs lists saved variables as "name = literal" lines in name order.
type VarsLs struct {
	StoreFile `embed:""`

	Names bool `help:"Print names only." short:"n"`
}

// Run executes the vars ls command.
func (c *VarsLs) Run(ctx context.Context) error {
	_, out := ioFrom(ctx)

	return c.with(ctx, func(s *store.Store) error {
		names, err := s.Names()
		if err != nil {
			return err
		}

		for _, name := range names {
			line := name

			if !c.Names {
				v, err := s.Get(name)
				if err != nil {
					return err
				}

				line = fmt.Sprintf("%s = %s", name, v.Repr())
			}

			if err := writeLine(out, line); err != nil {
				return ErrOutput.Wrap(err)
			}
		}

		return nil
	})
}
