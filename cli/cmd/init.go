package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/formula/log"
	"github.com/ardnew/formula/profile"
)

const defaultConfigIndent = 2

// Init writes the global flags, with the values in effect, as the YAML
// configuration file.
type Init struct {
	Force bool   `help:"Overwrite an existing configuration file."`
	Path  string `default:"${config}" help:"Configuration file." hidden:"" type:"path"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	fail := ErrWriteConfig.With(slog.String("file", i.Path))

	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !i.Force {
		flag |= os.O_EXCL
	}

	if err := os.MkdirAll(filepath.Dir(i.Path), 0o700); err != nil {
		return fail.Wrap(err)
	}

	f, err := os.OpenFile(i.Path, flag, 0o600)
	if errors.Is(err, os.ErrExist) {
		return fail.Wrap(ErrFileExists)
	}

	if err != nil {
		return fail.Wrap(err)
	}

	defer func() { err = errors.Join(err, f.Close()) }()

	data, err := yaml.MarshalContext(ctx, flagValues(kongContextFrom(ctx)),
		yaml.Indent(defaultConfigIndent))
	if err != nil {
		return fail.Wrap(err)
	}

	if _, err := f.Write(data); err != nil {
		return fail.Wrap(err)
	}

	log.DebugContext(ctx, "configuration written", slog.String("path", i.Path))

	return nil
}

// flagValues collects the application-level flags of ktx by name, leaving
// out help, profiling, and unset values.
func flagValues(ktx *kong.Context) map[string]any {
	values := map[string]any{}
	if ktx == nil {
		return values
	}

	skip := []string{"help", profile.Tag}

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(skip, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		v := ktx.FlagValue(flag)
		if v == nil {
			continue
		}

		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.String {
			v = rv.String()
		}

		if (rv.Kind() == reflect.Slice && rv.Len() == 0) || v == "" {
			continue
		}

		values[flag.Name] = v
	}

	return values
}
