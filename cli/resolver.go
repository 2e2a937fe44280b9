package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/formula/log"
)

// resolve returns a [kong.ConfigurationLoader] for YAML configuration files.
//
// Keys name flags, with either hyphens or underscores. Nested mappings are
// joined with hyphens, so these are equivalent:
//
//	log-level: debug
//
//	log:
//	  level: debug
//
// Scalars are passed to kong as strings and sequences as lists of strings.
// A file that does not decode is logged and ignored.
func resolve(ctx context.Context) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		var doc map[string]any

		err := yaml.NewDecoder(r).DecodeContext(ctx, &doc)
		if err != nil && !errors.Is(err, io.EOF) {
			log.WarnContext(ctx, "ignoring configuration file",
				slog.String("error", err.Error()))

			return config{}, nil
		}

		cfg := config{}
		cfg.flatten("", doc)

		log.TraceContext(ctx, "configuration loaded", slog.Int("keys", len(cfg)))

		return cfg, nil
	}
}

// config implements [kong.Resolver] over a flattened YAML document.
type config map[string]any

func (c config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		key := strings.ReplaceAll(k, "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		switch t := v.(type) {
		case map[string]any:
			c.flatten(key, t)
		case []any:
			list := make([]any, len(t))
			for i, e := range t {
				list[i] = scalar(e)
			}

			c[key] = list
		default:
			c[key] = scalar(v)
		}
	}
}

// scalar renders v the way it would be typed on the command line. Kong
// parses numbers from strings.
func scalar(v any) any {
	switch t := v.(type) {
	case nil, bool, string:
		return t
	default:
		return fmt.Sprint(t)
	}
}

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil
}
