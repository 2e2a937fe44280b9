package repl

import (
	"io"
	"slices"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/formula/lang"
)

func TestWordBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input      string
		cursor     int
		word       string
		start, end int
	}{
		{"abs(max", 7, "max", 4, 7},
		{"math.sq", 7, "math.sq", 0, 7},
		{"foo bar", 1, "foo", 0, 3},
		{"1 + ", 4, "", 4, 4},
		{"x_1", 100, "x_1", 0, 3},
		{"", 0, "", 0, 0},
	}

	for _, tt := range tests {
		word, start, end := wordBounds(tt.input, tt.cursor)
		if word != tt.word || start != tt.start || end != tt.end {
			t.Errorf("wordBounds(%q, %d) = %q, %d, %d; want %q, %d, %d",
				tt.input, tt.cursor, word, start, end, tt.word, tt.start, tt.end)
		}
	}
}

func TestCandidates(t *testing.T) {
	t.Parallel()

	env := lang.NewMap(map[string]lang.Value{"nozzle": lang.Float(0.4), "not": lang.None()})

	if got := candidates(env, ": ", 2); !slices.Equal(got, commands) {
		t.Errorf("command candidates = %v", got)
	}

	got := candidates(env, "1 + no", 4)

	if !slices.IsSorted(got) || len(slices.Compact(slices.Clone(got))) != len(got) {
		t.Errorf("candidates not sorted and unique: %v", got)
	}

	for _, want := range []string{"nozzle", "not", "True"} {
		if !slices.Contains(got, want) {
			t.Errorf("candidates %v missing %q", got, want)
		}
	}

	if m := matchWord("", got); m != nil {
		t.Errorf("matchWord of empty word = %v", m)
	}

	if m := matchWord("nozz", got); len(m) != 1 || m[0].Str != "nozzle" {
		t.Errorf("matchWord(nozz) = %v", m)
	}
}

func TestRenderCandidateBar(t *testing.T) {
	t.Parallel()

	s := newStyles(lipgloss.NewRenderer(io.Discard))

	matches := fuzzy.Matches{
		{Str: "max", MatchedIndexes: []int{0, 1}},
		{Str: "math.pi", MatchedIndexes: []int{0, 1}},
	}

	isFunc := func(name string) bool { return name == "max" }

	tests := []struct {
		width int
		want  string
	}{
		{80, "max()  math.pi"},
		{10, "max()  ..."},
		{0, ""},
	}

	for _, tt := range tests {
		if got := renderCandidateBar(s, matches, 0, isFunc, tt.width); got != tt.want {
			t.Errorf("width %d: bar = %q, want %q", tt.width, got, tt.want)
		}
	}

	if got := renderCandidateBar(s, nil, -1, isFunc, 80); got != "" {
		t.Errorf("empty bar = %q", got)
	}
}
