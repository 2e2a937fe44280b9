package lang

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"
)

type tokenKind uint8

const (
	tokEOF tokenKind = iota
	tokInt
	tokFloat
	tokString
	tokIdent // identifiers and keywords
	tokPunct
)

type token struct {
	text string // raw text; string content without quotes
	val  Value  // literal value of numbers and strings
	pos  Position
	kind tokenKind
}

var keywords = map[string]bool{
	"and":   true,
	"or":    true,
	"not":   true,
	"in":    true,
	"if":    true,
	"else":  true,
	"for":   true,
	"True":  true,
	"False": true,
	"None":  true,
}

// IsKeyword reports whether s is reserved and cannot name a variable.
func IsKeyword(s string) bool { return keywords[s] }

// Keywords returns the reserved words in sorted order.
func Keywords() []string { return slices.Sorted(maps.Keys(keywords)) }

// scanner splits formula source into tokens.
type scanner struct {
	src  string
	pos  int
	line int
	col  int
}

func scan(src string) ([]token, error) {
	s := &scanner{src: src, line: 1, col: 1}

	var toks []token

	for {
		tok, err := s.next()
		if err != nil {
			return nil, err
		}

		toks = append(toks, tok)

		if tok.kind == tokEOF {
			return toks, nil
		}
	}
}

func (s *scanner) next() (token, error) {
	s.skipSpace()

	pos := s.position()

	if s.eof() {
		return token{kind: tokEOF, pos: pos}, nil
	}

	ch := s.peek()

	switch {
	case isDigit(ch) || ch == '.':
		return s.number(pos)
	case isIdentStart(ch):
		return s.ident(pos), nil
	case ch == '"' || ch == '\'':
		return s.str(pos)
	}

	for _, p := range [...]string{"**", "==", "!=", "<=", ">="} {
		if strings.HasPrefix(s.src[s.pos:], p) {
			s.advance()
			s.advance()

			return token{kind: tokPunct, text: p, pos: pos}, nil
		}
	}

	if strings.IndexByte("+-*/%<>()[],:", ch) >= 0 {
		s.advance()

		return token{kind: tokPunct, text: string(ch), pos: pos}, nil
	}

	r, _ := utf8.DecodeRuneInString(s.src[s.pos:])

	return token{}, s.fail(pos, string(r), "", "expression")
}

func (s *scanner) number(pos Position) (token, error) {
	start := s.pos
	dots, digits := 0, 0

	for !s.eof() && (isDigit(s.peek()) || s.peek() == '.') {
		if s.peek() == '.' {
			dots++
		} else {
			digits++
		}

		s.advance()
	}

	text := s.src[start:s.pos]

	switch {
	case digits == 0:
		return token{}, s.fail(pos, text, "", "number")
	case dots > 1:
		return token{}, s.fail(pos, text,
			"malformed number "+strconv.Quote(text))
	case dots == 1:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, s.fail(pos, text,
				"malformed number "+strconv.Quote(text))
		}

		return token{kind: tokFloat, text: text, val: Float(f), pos: pos}, nil
	}

	i, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return token{}, s.fail(pos, text,
			"integer literal out of range "+strconv.Quote(text))
	}

	return token{kind: tokInt, text: text, val: Int(i), pos: pos}, nil
}

func (s *scanner) ident(pos Position) token {
	start := s.pos

	for !s.eof() && isIdentContinue(s.peek()) {
		s.advance()
	}

	return token{kind: tokIdent, text: s.src[start:s.pos], pos: pos}
}

func (s *scanner) str(pos Position) (token, error) {
	quote := s.peek()
	s.advance()

	start := s.pos

	for {
		if s.eof() {
			return token{}, s.fail(s.position(), "",
				"unterminated string", string(quote))
		}

		ch := s.peek()
		if ch == quote {
			text := s.src[start:s.pos]
			s.advance()

			return token{kind: tokString, text: text, val: String(text), pos: pos}, nil
		}

		if !isStringChar(ch) {
			r, _ := utf8.DecodeRuneInString(s.src[s.pos:])

			return token{}, s.fail(s.position(), string(r), "", string(quote))
		}

		s.advance()
	}
}

func (s *scanner) fail(
	pos Position,
	found, detail string,
	expected ...string,
) *SyntaxError {
	return &SyntaxError{
		Position: pos,
		Source:   s.src,
		Found:    found,
		Detail:   detail,
		Expected: expected,
	}
}

func (s *scanner) skipSpace() {
	for !s.eof() && isSpace(s.peek()) {
		s.advance()
	}
}

func (s *scanner) peek() byte { return s.src[s.pos] }

func (s *scanner) advance() {
	if s.eof() {
		return
	}

	if s.src[s.pos] == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}

	s.pos++
}

func (s *scanner) eof() bool { return s.pos >= len(s.src) }

func (s *scanner) position() Position {
	return Position{Offset: s.pos, Line: s.line, Column: s.col}
}

// Character classification

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func isDigit(ch byte) bool { return '0' <= ch && ch <= '9' }

func isLetter(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z')
}

func isIdentStart(ch byte) bool { return isLetter(ch) || ch == '_' }

func isIdentContinue(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_' || ch == '.'
}

func isStringChar(ch byte) bool {
	return isLetter(ch) || isDigit(ch) ||
		strings.IndexByte("_ ,/.-+();\\\n={}><:!\"'", ch) >= 0
}
