package log

import (
	"bytes"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want Level
	}{
		{"trace", LevelTrace},
		{"TRACE", LevelTrace},
		{"debug", LevelDebug},
		{" Info ", LevelInfo},
		{"warn", LevelWarn},
		{"ERROR", LevelError},
		{"warn+2", Level(slog.LevelWarn + 2)},
		{"loud", DefaultLevel},
		{"", DefaultLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestLevel_String(t *testing.T) {
	t.Parallel()

	got := slices.Collect(Levels())
	want := []string{"trace", "debug", "info", "warn", "error"}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Levels mismatch (-want +got):\n%s", diff)
	}

	for _, name := range want {
		if ParseLevel(name).String() != name {
			t.Errorf("%q does not round-trip", name)
		}
	}

	if s := Level(slog.LevelInfo + 1).String(); s != "info+1" {
		t.Errorf("String() = %q, want info+1", s)
	}
}

func TestFormat(t *testing.T) {
	t.Parallel()

	if diff := cmp.Diff([]string{"text", "json"}, slices.Collect(Formats())); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}

	tests := map[string]Format{
		"json":  FormatJSON,
		"JSON ": FormatJSON,
		"text":  FormatText,
		"yaml":  DefaultFormat,
	}

	for in, want := range tests {
		if got := ParseFormat(in); got != want {
			t.Errorf("ParseFormat(%q) = %v, want %v", in, got, want)
		}
	}
}

// The default logger is shared, so these tests do not run in parallel.

func TestDefault_Config(t *testing.T) {
	saved := Default()
	t.Cleanup(func() { SetDefault(saved) })

	var buf bytes.Buffer

	SetDefault(Make(&buf, WithFormat(FormatJSON)))
	Config(WithLevel(LevelDebug), WithTimeLayout("none"))

	tests := []struct {
		fn    func(string, ...slog.Attr)
		level string
	}{
		{Debug, `"level":"debug"`},
		{Info, `"level":"info"`},
		{Warn, `"level":"warn"`},
		{Error, `"level":"error"`},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.fn("message", slog.String("key", "value"))

		out := buf.String()
		for _, want := range []string{tt.level, `"msg":"message"`, `"key":"value"`} {
			if !strings.Contains(out, want) {
				t.Errorf("output %q missing %s", out, want)
			}
		}

		if strings.Contains(out, `"time"`) {
			t.Errorf("time not omitted: %q", out)
		}
	}

	buf.Reset()
	Trace("quiet")

	if buf.Len() != 0 {
		t.Errorf("trace record written at debug level: %q", buf.String())
	}

	buf.Reset()
	With(slog.Int("id", 7)).InfoContext(t.Context(), "scoped")

	if !strings.Contains(buf.String(), `"id":7`) {
		t.Errorf("With attributes missing: %q", buf.String())
	}
}
