package log

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	key, str, num, yes, no, when, null lipgloss.Style
	levels                             map[Level]lipgloss.Style
}

func newPalette(w io.Writer) palette {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return palette{
		key:  fg("8"),
		str:  fg("6"),
		num:  fg("3"),
		yes:  fg("2"),
		no:   fg("1"),
		when: fg("4"),
		null: fg("8").Italic(true),
		levels: map[Level]lipgloss.Style{
			LevelTrace: fg("5").Bold(true),
			LevelDebug: fg("4").Bold(true),
			LevelInfo:  fg("2").Bold(true),
			LevelWarn:  fg("3").Bold(true),
			LevelError: fg("1").Bold(true),
		},
	}
}

func (p palette) level(l slog.Level) string {
	name := strings.ToUpper(Level(l).String())

	for _, named := range slices.Backward(levels) {
		if Level(l) >= named {
			return p.levels[named].Render(name)
		}
	}

	return p.levels[LevelTrace].Render(name)
}

// prettyHandler renders records for a human reading a terminal. Text records
// occupy one line; JSON-format records are indented objects with one field per
// line and unquoted strings.
type prettyHandler struct {
	opts       slog.HandlerOptions
	formatTime func(time.Time) string
	palette    palette
	format     Format

	mu *sync.Mutex
	w  io.Writer

	prefix string // dotted group path applied to attribute keys
	attrs  []slog.Attr
}

func newPrettyHandler(
	w io.Writer,
	opts *slog.HandlerOptions,
	format Format,
	formatTime func(time.Time) string,
) *prettyHandler {
	return &prettyHandler{
		opts:       *opts,
		formatTime: formatTime,
		palette:    newPalette(w),
		format:     format,
		mu:         &sync.Mutex{},
		w:          w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	lowest := slog.LevelInfo
	if h.opts.Level != nil {
		lowest = h.opts.Level.Level()
	}

	return level >= lowest
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = slices.Concat(h.attrs, h.qualify(attrs))

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.prefix = h.prefix + name + "."

	return &c
}

func (h *prettyHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.prefix == "" {
		return attrs
	}

	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: h.prefix + a.Key, Value: a.Value}
	}

	return out
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	if !r.Time.IsZero() {
		if s := h.formatTime(r.Time); s != "" {
			fields = append(fields, slog.String(slog.TimeKey, s))
		}
	}

	fields = append(fields, slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource {
		if src := r.Source(); src != nil && src.File != "" {
			fields = append(fields, slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	fields = append(fields, slog.String(slog.MessageKey, r.Message))
	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, h.qualify([]slog.Attr{a})...)

		return true
	})

	var buf bytes.Buffer

	if h.format == FormatJSON {
		h.writeObject(&buf, fields)
	} else {
		h.writeLine(&buf, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeLine(buf *bytes.Buffer, fields []slog.Attr) {
	for i, a := range flatten("", fields) {
		if i > 0 {
			buf.WriteByte(' ')
		}

		switch a.Key {
		case slog.LevelKey, slog.MessageKey:
			buf.WriteString(h.value(a.Value))
		default:
			buf.WriteString(h.palette.key.Render(a.Key + "="))
			buf.WriteString(h.value(a.Value))
		}
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) writeObject(buf *bytes.Buffer, fields []slog.Attr) {
	buf.WriteString("{\n")

	for i, a := range flatten("", fields) {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(h.palette.key.Render(a.Key + ":"))
		buf.WriteByte(' ')
		buf.WriteString(h.value(a.Value))
	}

	buf.WriteString("\n}\n")
}

// flatten expands group values into dotted keys and drops empty attributes.
func flatten(prefix string, attrs []slog.Attr) []slog.Attr {
	out := make([]slog.Attr, 0, len(attrs))

	for _, a := range attrs {
		a.Value = a.Value.Resolve()

		if a.Equal(slog.Attr{}) {
			continue
		}

		if a.Value.Kind() == slog.KindGroup {
			p := prefix
			if a.Key != "" {
				p += a.Key + "."
			}

			out = append(out, flatten(p, a.Value.Group())...)

			continue
		}

		out = append(out, slog.Attr{Key: prefix + a.Key, Value: a.Value})
	}

	return out
}

func (h *prettyHandler) value(v slog.Value) string {
	p := h.palette

	switch v.Kind() {
	case slog.KindString:
		return p.str.Render(v.String())
	case slog.KindInt64:
		return p.num.Render(strconv.FormatInt(v.Int64(), 10))
	case slog.KindUint64:
		return p.num.Render(strconv.FormatUint(v.Uint64(), 10))
	case slog.KindFloat64:
		return p.num.Render(strconv.FormatFloat(v.Float64(), 'g', -1, 64))
	case slog.KindBool:
		if v.Bool() {
			return p.yes.Render("true")
		}

		return p.no.Render("false")
	case slog.KindDuration:
		return p.when.Render(v.Duration().String())
	case slog.KindTime:
		return p.when.Render(h.formatTime(v.Time()))
	case slog.KindAny:
		switch a := v.Any().(type) {
		case slog.Level:
			return p.level(a)
		case nil:
			return p.null.Render("null")
		case error:
			return p.no.Render(a.Error())
		}
	}

	return p.str.Render(v.String())
}
