package lsp

import (
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/formula/lang"
)

func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}

	return lines
}

// utf16Len returns the length of s in UTF-16 code units, which is how LSP
// counts characters.
func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}

	return n
}

// byteIndex converts a UTF-16 character offset within line to a byte offset,
// clamped to the line.
func byteIndex(line string, char int) int {
	units := 0

	for i, r := range line {
		if units >= char {
			return i
		}

		units += utf16.RuneLen(r)
	}

	return len(line)
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '.' ||
		('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

// identifierAt returns the byte span of the identifier touching col.
func identifierAt(line string, col int) (start, end int) {
	start, end = col, col
	for start > 0 && isIdentByte(line[start-1]) {
		start--
	}

	for end < len(line) && isIdentByte(line[end]) {
		end++
	}

	return start, end
}

// indexIdentifier finds name in line where it is not part of a longer
// identifier, or returns -1.
func indexIdentifier(line, name string) int {
	for off := 0; off < len(line); {
		i := strings.Index(line[off:], name)
		if i < 0 {
			return -1
		}

		i += off
		end := i + len(name)

		if (i == 0 || !isIdentByte(line[i-1])) && (end == len(line) || !isIdentByte(line[end])) {
			return i
		}

		_, size := utf8.DecodeRuneInString(line[i:])
		off = i + size
	}

	return -1
}

type candidate struct {
	name   string
	detail string
	kind   lsp.CompletionItemKind
}

// complete ranks environment names and keywords against prefix.
func complete(env lang.Environment, prefix string) []candidate {
	words := lang.Keywords()
	words = append(words, lang.Names(env)...)

	var matches fuzzy.Matches
	if prefix == "" {
		matches = make(fuzzy.Matches, len(words))
		for i, w := range words {
			matches[i] = fuzzy.Match{Str: w, Index: i}
		}
	} else {
		matches = fuzzy.Find(prefix, words)
	}

	out := make([]candidate, 0, len(matches))

	for _, m := range matches {
		c := candidate{name: m.Str, kind: lsp.CIKKeyword, detail: "keyword"}

		if !lang.IsKeyword(m.Str) {
			v, _ := env.Lookup(m.Str)
			c.detail = describe(v)
			c.kind = lsp.CIKVariable

			if _, ok := v.AsFunc(); ok {
				c.kind = lsp.CIKFunction
			}
		}

		out = append(out, c)
	}

	return out
}
