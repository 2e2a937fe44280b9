package cli

import (
	"context"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/formula/log"
)

// logLevel configures the default logger as soon as kong decodes it, so
// errors reported while parsing the rest of the command line honor it.
type logLevel string

// UnmarshalText implements [encoding.TextUnmarshaler].
func (l *logLevel) UnmarshalText(text []byte) error {
	*l = logLevel(text)
	log.Config(log.WithLevel(log.ParseLevel(string(*l))))

	return nil
}

// logFormat is the [logLevel] counterpart for the record encoding.
type logFormat string

// UnmarshalText implements [encoding.TextUnmarshaler].
func (f *logFormat) UnmarshalText(text []byte) error {
	*f = logFormat(text)
	log.Config(log.WithFormat(log.ParseFormat(string(*f))))

	return nil
}

type logFlags struct {
	Level      logLevel  `default:"${logLevel}"  enum:"${logLevelEnum}"  help:"Minimum level of logged records."`
	Format     logFormat `default:"${logFormat}" enum:"${logFormatEnum}" help:"Record encoding."`
	TimeLayout string    `default:"rfc3339"      help:"Timestamp layout: a Go layout or a name such as rfc3339, kitchen, ms, none."`
	Caller     bool      `default:"false"        help:"Record the source location of each call."   negatable:""`
	Pretty     bool      `default:"${logPretty}" help:"Colorize records (default: when stderr is a terminal)." negatable:""`
}

func (logFlags) vars() kong.Vars {
	return kong.Vars{
		"logLevel":      log.DefaultLevel.String(),
		"logLevelEnum":  strings.Join(slices.Collect(log.Levels()), ","),
		"logFormat":     log.DefaultFormat.String(),
		"logFormatEnum": strings.Join(slices.Collect(log.Formats()), ","),
		"logPretty":     strconv.FormatBool(log.IsTerminal(os.Stderr)),
	}
}

func (logFlags) group() kong.Group {
	return kong.Group{Key: "log", Title: "Logging options"}
}

func (f *logFlags) options() []log.Option {
	return []log.Option{
		log.WithLevel(log.ParseLevel(string(f.Level))),
		log.WithFormat(log.ParseFormat(string(f.Format))),
		log.WithTimeLayout(f.TimeLayout),
		log.WithCaller(f.Caller),
		log.WithPretty(f.Pretty),
	}
}

// start applies every parsed flag to the default logger.
func (f *logFlags) start(ctx context.Context) {
	log.Config(f.options()...)

	log.DebugContext(ctx, "logger configured",
		slog.String("level", string(f.Level)),
		slog.String("format", string(f.Format)),
		slog.String("time", f.TimeLayout),
		slog.Bool("caller", f.Caller),
		slog.Bool("pretty", f.Pretty))
}

// scan applies logging flags found in args before kong parses them, so
// the boolean flags that bypass [encoding.TextUnmarshaler] take effect as
// early as the others. Unrecognized and malformed flags are left to kong.
func (f *logFlags) scan(args []string) {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if arg == "--" {
			return
		}

		negated := strings.HasPrefix(arg, "--no-log-")
		if !negated && !strings.HasPrefix(arg, "--log-") {
			continue
		}

		name, value, assigned := strings.Cut(arg, "=")
		name = strings.TrimPrefix(strings.TrimPrefix(name, "--no-log-"), "--log-")

		// Non-boolean flags take the next argument when no value is assigned.
		next := func() string {
			if !assigned && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
				i++

				return args[i]
			}

			return value
		}

		// Boolean flags only take a value with "=".
		truth := func() (bool, bool) {
			b := true
			if assigned {
				var err error
				if b, err = strconv.ParseBool(value); err != nil {
					return false, false
				}
			}

			return b != negated, true
		}

		switch name {
		case "level", "format", "time-layout":
			if negated {
				continue
			}
		}

		switch name {
		case "level":
			_ = f.Level.UnmarshalText([]byte(next()))
		case "format":
			_ = f.Format.UnmarshalText([]byte(next()))
		case "time-layout":
			f.TimeLayout = next()
			log.Config(log.WithTimeLayout(f.TimeLayout))
		case "pretty":
			if b, ok := truth(); ok {
				f.Pretty = b
				log.Config(log.WithPretty(b))
			}
		case "caller":
			if b, ok := truth(); ok {
				f.Caller = b
				log.Config(log.WithCaller(b))
			}
		}
	}
}
