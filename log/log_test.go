package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func decode(t *testing.T, b []byte) map[string]any {
	t.Helper()

	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("invalid JSON record %q: %v", b, err)
	}

	return m
}

func TestMake_Defaults(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := Make(&buf)

	if l.Level() != DefaultLevel || l.Format() != DefaultFormat {
		t.Errorf("Level, Format = %v, %v; want %v, %v", l.Level(), l.Format(), DefaultLevel, DefaultFormat)
	}

	if l.pretty {
		t.Error("pretty enabled for a non-terminal writer")
	}

	l.Debug("hidden")
	l.Info("shown", slog.Int("n", 3))

	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "msg=shown") || !strings.Contains(out, "n=3") {
		t.Errorf("unexpected output %q", out)
	}

	if !strings.Contains(out, "level=info") {
		t.Errorf("level not rendered by name: %q", out)
	}
}

func TestLogger_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		level Level
		want  []string
	}{
		{LevelTrace, []string{"trace", "debug", "info", "warn", "error"}},
		{LevelDebug, []string{"debug", "info", "warn", "error"}},
		{LevelWarn, []string{"warn", "error"}},
		{LevelError, []string{"error"}},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			l := Make(&buf, WithLevel(tt.level), WithFormat(FormatJSON), WithTimeLayout("none"))
			l.Trace("m")
			l.Debug("m")
			l.Info("m")
			l.Warn("m")
			l.Error("m")

			var got []string

			for line := range strings.Lines(buf.String()) {
				got = append(got, decode(t, []byte(line))["level"].(string))
			}

			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("levels mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLogger_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatJSON), WithTimeLayout(""))
	l.InfoContext(t.Context(), "evaluated", slog.String("formula", "1 + 2"), slog.Float64("value", 3))

	got := decode(t, buf.Bytes())
	want := map[string]any{
		"level":   "info",
		"msg":     "evaluated",
		"formula": "1 + 2",
		"value":   3.0,
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestLogger_TimeLayout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		layout string
		check  func(string) bool
	}{
		{"RFC3339Nano", func(s string) bool { return strings.Contains(s, "T") && strings.Contains(s, ".") }},
		{"kitchen", func(s string) bool { return strings.HasSuffix(s, "M") }},
		{"2006", func(s string) bool { return len(s) == 4 }},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer

			Make(&buf, WithFormat(FormatJSON), WithTimeLayout(tt.layout)).Info("x")

			ts, _ := decode(t, buf.Bytes())["time"].(string)
			if !tt.check(ts) {
				t.Errorf("time %q does not match layout %q", ts, tt.layout)
			}
		})
	}
}

func TestLogger_Caller(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatJSON), WithCaller(true))
	l.Warn("here")
	l.WarnContext(t.Context(), "here")

	for line := range strings.Lines(buf.String()) {
		src, _ := decode(t, []byte(line))["source"].(map[string]any)

		if file, _ := src["file"].(string); !strings.HasSuffix(file, "log_test.go") {
			t.Errorf("source file = %q, want this test file", file)
		}
	}
}

func TestLogger_WithSurvivesWrap(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := Make(&buf, WithFormat(FormatJSON)).With(slog.String("doc", "a.formula"))
	l = l.Wrap(WithLevel(LevelDebug))
	l.Debug("line", slog.Int("n", 2))

	got := decode(t, buf.Bytes())
	if got["doc"] != "a.formula" || got["n"] != 2.0 {
		t.Errorf("record = %v, want doc and n attributes", got)
	}
}

func TestLogger_Zero(t *testing.T) {
	t.Parallel()

	var l Logger

	l.Error("dropped")
	l.TraceContext(context.Background(), "dropped")

	if l.With(slog.Int("a", 1)).Logger != nil {
		t.Error("With on zero Logger allocated a logger")
	}

	if l.Enabled(t.Context(), LevelError) {
		t.Error("zero Logger is enabled")
	}

	if l.Level() != DefaultLevel {
		t.Errorf("Level() = %v", l.Level())
	}
}

func TestLogger_Concurrent(t *testing.T) {
	t.Parallel()

	var (
		buf bytes.Buffer
		wg  sync.WaitGroup
	)

	l := Make(&buf, WithFormat(FormatJSON), WithPretty(true))

	for i := range 16 {
		wg.Go(func() { l.With(slog.Int("worker", i)).Info("tick") })
	}

	wg.Wait()

	if n := strings.Count(buf.String(), "tick"); n != 16 {
		t.Errorf("logged %d records, want 16", n)
	}
}

func TestPretty_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := Make(&buf, WithPretty(true), WithTimeLayout("none"))
	withGroup(l, "eval").Info("done", slog.Bool("ok", true), slog.Any("result", nil))

	got := buf.String()
	for _, want := range []string{"INFO", "done", "eval.ok=", "true", "eval.result=", "null"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q missing %q", got, want)
		}
	}

	if strings.Count(got, "\n") != 1 {
		t.Errorf("text record spans lines: %q", got)
	}
}

func TestPretty_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	l := Make(&buf, WithPretty(true), WithFormat(FormatJSON), WithTimeLayout("none"))
	l.With(slog.String("uri", "file:///x")).Error("failed",
		slog.Group("pos", slog.Int("line", 2), slog.Int("column", 7)))

	lines := slices.Collect(strings.Lines(buf.String()))

	want := []string{"{", "level: ERROR", "msg: failed", "uri: file:///x", "pos.line: 2", "pos.column: 7", "}"}
	if len(lines) != len(want) {
		t.Fatalf("got %d lines %q, want %d", len(lines), lines, len(want))
	}

	for i, line := range lines {
		if !strings.Contains(line, want[i]) {
			t.Errorf("line %d = %q, want it to contain %q", i, line, want[i])
		}
	}
}

func withGroup(l Logger, name string) Logger {
	return Logger{Logger: slog.New(l.Handler().WithGroup(name)), config: l.config}
}
