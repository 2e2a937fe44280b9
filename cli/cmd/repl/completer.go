package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/formula/lang"
)

// commandPrefix starts a REPL command line.
const commandPrefix = ":"

// commands lists the REPL commands without their prefix.
var commands = []string{"clear", "help", "names", "quit", "set", "unset"}

// isWordByte reports whether b may appear in a completed word. Dotted names
// such as math.sqrt complete as one word.
func isWordByte(b byte) bool {
	return b == '_' || b == '.' ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

// wordBounds returns the word around cursor and its byte offsets in input.
// The word is empty when cursor sits between two non-word bytes.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor
	for start > 0 && isWordByte(input[start-1]) {
		start--
	}

	end = cursor
	for end < len(input) && isWordByte(input[end]) {
		end++
	}

	return input[start:end], start, end
}

// candidates returns the completions for the word starting at wordStart:
// command names directly after the command prefix, else keywords and the
// names bound in env.
func candidates(env lang.Environment, input string, wordStart int) []string {
	if strings.TrimSpace(input[:wordStart]) == commandPrefix {
		return commands
	}

	names := append(lang.Keywords(), lang.Names(env)...)
	slices.Sort(names)

	return slices.Compact(names)
}

// matchWord ranks candidates against word, best first. An empty word matches
// nothing so the hint line stays visible.
func matchWord(word string, cands []string) fuzzy.Matches {
	if word == "" || len(cands) == 0 {
		return nil
	}

	return fuzzy.Find(word, cands)
}

// renderCandidateBar renders matches on one line of at most width cells,
// ending in an ellipsis when they do not fit. The selected match is
// highlighted while tab-cycling.
func renderCandidateBar(
	s styles,
	matches fuzzy.Matches,
	selected int,
	isFunc func(string) bool,
	width int,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	ellipsis := s.hint.Render("...")
	reserve := lipgloss.Width(sep) + lipgloss.Width(ellipsis)

	var (
		b    strings.Builder
		used int
	)

	for i, m := range matches {
		r := renderCandidate(s, m, i == selected, isFunc(m.Str))

		w := lipgloss.Width(r)
		if i > 0 {
			w += lipgloss.Width(sep)
		}

		if i > 0 && used+w+reserve > width {
			b.WriteString(sep + ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(r)

		used += w
	}

	return b.String()
}

// renderCandidate renders one match with its matched bytes emphasized.
// Functions get a "()" suffix that is not part of the completion.
func renderCandidate(s styles, m fuzzy.Match, selected, fn bool) string {
	base, mark := s.suggestion, s.match
	if selected {
		base, mark = s.selected, s.selectedMatch
	}

	matched := make(map[int]bool, len(m.MatchedIndexes))
	for _, i := range m.MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder

	for i := 0; i < len(m.Str); {
		_, size := utf8.DecodeRuneInString(m.Str[i:])

		if matched[i] {
			b.WriteString(mark.Render(m.Str[i : i+size]))
		} else {
			b.WriteString(base.Render(m.Str[i : i+size]))
		}

		i += size
	}

	if fn {
		b.WriteString(base.Render("()"))
	}

	return b.String()
}
