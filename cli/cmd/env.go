package cmd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/lang/stdlib"
	"github.com/ardnew/formula/log"
	"github.com/ardnew/formula/store"
)

// Env selects the variables visible to formulas. From highest precedence:
// definitions, variables files (later files first), the store, and the
// standard library.
type Env struct {
	Define    []string `help:"Bind NAME to the value of FORMULA. Later definitions may refer to earlier ones." placeholder:"NAME=FORMULA" short:"D"`
	Vars      []string `help:"Bind the keys of a YAML mapping. Nested keys join with dots."                     placeholder:"FILE"         type:"existingfile"`
	Store     bool     `default:"true"                                                                         help:"Include variables saved with 'vars set'." negatable:""`
	StorePath string   `default:"${store}"                                                                     help:"Variable database."                       type:"path"`
}

// open builds the environment. The returned function releases the store.
func (e *Env) open(ctx context.Context) (lang.Environment, func() error, error) {
	release := func() error { return nil }

	var layers []lang.Environment

	if e.Store && e.StorePath != "" {
		s, err := store.Open(e.StorePath)
		if err != nil {
			return nil, nil, err
		}

		release = s.Close
		layers = append(layers, s)
	}

	layers = append(layers, stdlib.New())

	files, err := loadVarsFiles(ctx, e.Vars)
	if err != nil {
		return nil, nil, errors.Join(err, release())
	}

	defs := lang.NewMap(nil)
	env := lang.Layer(append([]lang.Environment{defs, files}, layers...)...)

	for _, def := range e.Define {
		name, v, err := define(ctx, def, env)
		if err != nil {
			return nil, nil, errors.Join(err, release())
		}

		defs.Set(name, v)
	}

	log.DebugContext(ctx, "environment ready",
		slog.Int("definitions", defs.Len()),
		slog.Int("file_vars", files.Len()),
		slog.Bool("store", e.Store))

	return env, release, nil
}

// define evaluates one NAME=FORMULA binding against env.
func define(ctx context.Context, def string, env lang.Environment) (string, lang.Value, error) {
	name, src, ok := strings.Cut(def, "=")
	name = strings.TrimSpace(name)

	if !ok {
		return "", lang.None(), ErrDefine.With(slog.String("define", def))
	}

	if err := checkName(ctx, name); err != nil {
		return "", lang.None(), ErrDefine.Wrap(err).With(slog.String("define", def))
	}

	e, err := lang.ParseCached(ctx, src, lang.WithLogger(log.Default()))
	if err != nil {
		return "", lang.None(), ErrDefine.Wrap(err).With(slog.String("define", def))
	}

	v, err := lang.Evaluate(ctx, e, env, lang.WithLogger(log.Default()))
	if err != nil {
		return "", lang.None(), ErrDefine.Wrap(err).With(slog.String("define", def))
	}

	return name, v, nil
}

// checkName reports whether name parses as a lone variable reference.
func checkName(ctx context.Context, name string) error {
	e, err := lang.Parse(ctx, name)
	if err != nil {
		return ErrName.Wrap(err).With(slog.String("name", name))
	}

	if v, ok := e.(*lang.Variable); !ok || v.Name != name {
		return ErrName.With(slog.String("name", name))
	}

	return nil
}

// loadVarsFiles reads YAML mappings from paths into one map, later files
// overriding earlier ones.
func loadVarsFiles(ctx context.Context, paths []string) (*lang.Map, error) {
	vars := lang.NewMap(nil)

	for _, path := range paths {
		if err := loadVarsFile(ctx, path, vars); err != nil {
			return nil, ErrVarsFile.Wrap(err).With(slog.String("file", path))
		}
	}

	return vars, nil
}

func loadVarsFile(ctx context.Context, path string, into *lang.Map) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var doc map[string]any

	err = yaml.NewDecoder(f).DecodeContext(ctx, &doc)
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return bindNative(ctx, "", doc, into)
}

func bindNative(ctx context.Context, prefix string, doc map[string]any, into *lang.Map) error {
	for key, x := range doc {
		name := key
		if prefix != "" {
			name = prefix + "." + key
		}

		if m, ok := x.(map[string]any); ok {
			if err := bindNative(ctx, name, m, into); err != nil {
				return err
			}

			continue
		}

		if err := checkName(ctx, name); err != nil {
			return err
		}

		v, err := lang.FromNative(x)
		if err != nil {
			return err
		}

		into.Set(name, v)
	}

	return nil
}
