package log

import (
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
)

// DefaultTimeLayout is the timestamp layout of a new [Logger].
const DefaultTimeLayout = time.RFC3339

// Option configures a [Logger].
type Option func(config) config

type config struct {
	output     io.Writer
	formatTime func(time.Time) string
	attrs      []slog.Attr
	level      Level
	format     Format
	caller     bool
	pretty     bool
	prettySet  bool
}

func makeConfig(w io.Writer, opts ...Option) config {
	c := config{
		formatTime: makeFormatTime(DefaultTimeLayout),
		level:      DefaultLevel,
		format:     DefaultFormat,
	}

	return c.apply(append([]Option{WithOutput(w)}, opts...)...)
}

func (c config) apply(opts ...Option) config {
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// IsTerminal reports whether w is a file attached to a terminal. Pretty
// output defaults to this.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c config) handlerOptions() *slog.HandlerOptions {
	return &slog.HandlerOptions{
		AddSource: c.caller,
		Level:     slog.Level(c.level),
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if len(groups) > 0 {
				return a
			}

			switch a.Key {
			case slog.TimeKey:
				t, ok := a.Value.Any().(time.Time)
				if !ok {
					return a
				}

				s := c.formatTime(t)
				if s == "" {
					return slog.Attr{}
				}

				a.Value = slog.StringValue(s)

			case slog.LevelKey:
				if l, ok := a.Value.Any().(slog.Level); ok {
					a.Value = slog.StringValue(Level(l).String())
				}
			}

			return a
		},
	}
}

func (c config) handler() slog.Handler {
	var h slog.Handler

	switch {
	case c.pretty:
		h = newPrettyHandler(c.output, c.handlerOptions(), c.format, c.formatTime)
	case c.format == FormatJSON:
		h = slog.NewJSONHandler(c.output, c.handlerOptions())
	case c.format == FormatText:
		h = slog.NewTextHandler(c.output, c.handlerOptions())
	default:
		return slog.DiscardHandler
	}

	if len(c.attrs) > 0 {
		h = h.WithAttrs(c.attrs)
	}

	return h
}

// WithOutput writes records to w, or discards them if w is nil. Unless
// [WithPretty] was given, pretty output follows whether w is a terminal.
func WithOutput(w io.Writer) Option {
	return func(c config) config {
		if w == nil {
			w = io.Discard
		}

		c.output = w

		if !c.prettySet {
			c.pretty = IsTerminal(w)
		}

		return c
	}
}

// WithLevel discards records below level.
func WithLevel(level Level) Option {
	return func(c config) config {
		c.level = level

		return c
	}
}

// WithFormat selects the record encoding.
func WithFormat(format Format) Option {
	return func(c config) config {
		c.format = format

		return c
	}
}

// WithCaller adds the source file and line of each call.
func WithCaller(enable bool) Option {
	return func(c config) config {
		c.caller = enable

		return c
	}
}

// WithPretty forces styled output on or off.
func WithPretty(enable bool) Option {
	return func(c config) config {
		c.pretty = enable
		c.prettySet = true

		return c
	}
}

// WithTimeLayout formats timestamps with layout, which may name one of the
// [time] package layouts case-insensitively ("rfc3339nano", "kitchen") or be
// a literal layout. An empty layout or "none" omits timestamps.
func WithTimeLayout(layout string) Option {
	return func(c config) config {
		c.formatTime = makeFormatTime(layout)

		return c
	}
}

func withAttrs(attrs ...slog.Attr) Option {
	return func(c config) config {
		c.attrs = append(slices.Clip(c.attrs), attrs...)

		return c
	}
}

var timeLayouts = map[string]string{
	"rfc3339":     time.RFC3339,
	"rfc3339nano": time.RFC3339Nano,
	"ansic":       time.ANSIC,
	"unixdate":    time.UnixDate,
	"rubydate":    time.RubyDate,
	"rfc822":      time.RFC822,
	"rfc822z":     time.RFC822Z,
	"rfc850":      time.RFC850,
	"kitchen":     time.Kitchen,
	"datetime":    time.DateTime,
	"timeonly":    time.TimeOnly,
	"stamp":       time.Stamp,
	"stampmilli":  time.StampMilli,
	"stampmicro":  time.StampMicro,
	"stampnano":   time.StampNano,
	"ms":          time.StampMilli,
	"us":          time.StampMicro,
	"ns":          time.StampNano,
	"none":        "",
}

func makeFormatTime(layout string) func(time.Time) string {
	key := strings.Map(func(r rune) rune {
		if ('a' <= r && r <= 'z') || ('0' <= r && r <= '9') {
			return r
		}

		return -1
	}, strings.ToLower(layout))

	if std, ok := timeLayouts[key]; ok {
		layout = std
	}

	if strings.TrimSpace(layout) == "" {
		return func(time.Time) string { return "" }
	}

	return func(t time.Time) string { return t.Format(layout) }
}
