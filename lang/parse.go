package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"github.com/klauspost/readahead"
)

// Parse parses text as a single formula. The whole input must be consumed;
// any failure is reported as a [*SyntaxError] and no partial tree is
// returned.
func Parse(ctx context.Context, text string, opts ...Option) (Expr, error) {
	cfg := makeConfig(opts...)

	toks, err := scan(text)
	if err != nil {
		cfg.logger.TraceContext(ctx, "scan failed", slog.Any("error", err))

		return nil, err
	}

	p := &parser{src: text, toks: toks, maxDepth: cfg.maxDepth}

	e, err := p.parse()
	if err != nil {
		cfg.logger.TraceContext(ctx, "parse failed", slog.Any("error", err))

		return nil, err
	}

	cfg.logger.TraceContext(ctx, "parse complete",
		slog.Int("source_bytes", len(text)),
		slog.Int("token_count", len(toks)))

	return e, nil
}

// ParseReader reads all of r and parses it as a single formula.
func ParseReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) (Expr, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).With(slog.String("source", "reader"))
	}

	return Parse(ctx, string(data), opts...)
}

// MustParse is like [Parse] but panics on error.
// It simplifies static tables and tests.
func MustParse(text string) Expr {
	e, err := Parse(context.Background(), text)
	if err != nil {
		panic(err)
	}

	return e
}

// parser is a recursive-descent parser over the token stream.
// Each method parses one precedence level, lowest first.
type parser struct {
	src      string
	toks     []token
	pos      int
	depth    int
	maxDepth int
}

func (p *parser) parse() (Expr, error) {
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}

	if p.peek().kind != tokEOF {
		return nil, p.fail("end of input")
	}

	return e, nil
}

// parseExpr parses: Ternary [Comprehension]. A comprehension without
// brackets is accepted wherever an element or a whole formula is expected.
func (p *parser) parseExpr() (Expr, error) {
	e, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	if p.isKeyword(p.peek(), "for") {
		return p.parseComprehension(e)
	}

	return e, nil
}

// parseTernary parses: Or ['if' Or 'else' Ternary].
func (p *parser) parseTernary() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	then, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if !p.acceptKeyword("if") {
		return then, nil
	}

	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}

	if !p.acceptKeyword("else") {
		return nil, p.fail("else")
	}

	els, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	return &Condition{Then: then, Cond: cond, Else: els}, nil
}

// parseOr parses: And ('or' And)*.
func (p *parser) parseOr() (Expr, error) {
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}

	for p.acceptKeyword("or") {
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}

		lhs = &BinaryOp{Op: OpOr, LHS: lhs, RHS: rhs}
	}

	return lhs, nil
}

// parseAnd parses: Not ('and' Not)*.
func (p *parser) parseAnd() (Expr, error) {
	lhs, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	for p.acceptKeyword("and") {
		rhs, err := p.parseNot()
		if err != nil {
			return nil, err
		}

		lhs = &BinaryOp{Op: OpAnd, LHS: lhs, RHS: rhs}
	}

	return lhs, nil
}

// parseNot parses: 'not' Not | Comparison.
func (p *parser) parseNot() (Expr, error) {
	if !p.isKeyword(p.peek(), "not") {
		return p.parseComparison()
	}

	p.advance()

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	operand, err := p.parseNot()
	if err != nil {
		return nil, err
	}

	return &UnaryOp{Op: OpNot, Operand: operand}, nil
}

// parseComparison parses: Sum (CompareOp Sum)*.
func (p *parser) parseComparison() (Expr, error) {
	first, err := p.parseSum()
	if err != nil {
		return nil, err
	}

	var links []Link

	for {
		op, ok := p.acceptCompareOp()
		if !ok {
			break
		}

		rhs, err := p.parseSum()
		if err != nil {
			return nil, err
		}

		links = append(links, Link{Op: op, Operand: rhs})
	}

	if len(links) == 0 {
		return first, nil
	}

	return NewComparisonChain(first, links[0], links[1:]...), nil
}

func (p *parser) acceptCompareOp() (CompareOperator, bool) {
	tok := p.peek()

	if tok.kind == tokPunct {
		for op, s := range compareOperators {
			if tok.text == s {
				p.advance()

				return CompareOperator(op), true
			}
		}

		return 0, false
	}

	switch {
	case p.isKeyword(tok, "in"):
		p.advance()

		return CmpIn, true
	case p.isKeyword(tok, "not") && p.isKeyword(p.peekAt(1), "in"):
		p.advance()
		p.advance()

		return CmpNotIn, true
	}

	return 0, false
}

// parseSum parses: Product (('+' | '-') Product)*.
func (p *parser) parseSum() (Expr, error) {
	return p.parseLeft(p.parseProduct, map[string]BinaryOperator{
		"+": OpAdd,
		"-": OpSub,
	})
}

// parseProduct parses: Unary (('*' | '/' | '%') Unary)*.
func (p *parser) parseProduct() (Expr, error) {
	return p.parseLeft(p.parseUnary, map[string]BinaryOperator{
		"*": OpMul,
		"/": OpDiv,
		"%": OpMod,
	})
}

func (p *parser) parseLeft(
	operand func() (Expr, error),
	ops map[string]BinaryOperator,
) (Expr, error) {
	lhs, err := operand()
	if err != nil {
		return nil, err
	}

	for {
		tok := p.peek()

		op, ok := ops[tok.text]
		if tok.kind != tokPunct || !ok {
			return lhs, nil
		}

		p.advance()

		rhs, err := operand()
		if err != nil {
			return nil, err
		}

		lhs = &BinaryOp{Op: op, LHS: lhs, RHS: rhs}
	}
}

// parseUnary parses: '-' Unary | Power.
func (p *parser) parseUnary() (Expr, error) {
	if !p.acceptPunct("-") {
		return p.parsePower()
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}

	return &UnaryOp{Op: OpNeg, Operand: operand}, nil
}

// parsePower parses: Postfix ['**' Power].
func (p *parser) parsePower() (Expr, error) {
	base, err := p.parsePostfix()
	if err != nil {
		return nil, err
	}

	if !p.acceptPunct("**") {
		return base, nil
	}

	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	exp, err := p.parsePower()
	if err != nil {
		return nil, err
	}

	return &BinaryOp{Op: OpPow, LHS: base, RHS: exp}, nil
}

// parsePostfix parses an atom followed by any call, index and slice
// suffixes. Number, string and keyword literals take no suffixes.
func (p *parser) parsePostfix() (Expr, error) {
	e, suffixes, err := p.parseAtom()
	if err != nil || !suffixes {
		return e, err
	}

	for {
		switch {
		case p.acceptPunct("("):
			args, err := p.parseArgs()
			if err != nil {
				return nil, err
			}

			e = &Call{Callee: e, Args: args}
		case p.acceptPunct("["):
			e, err = p.parseSubscript(e)
			if err != nil {
				return nil, err
			}
		default:
			return e, nil
		}
	}
}

func (p *parser) parseAtom() (Expr, bool, error) {
	tok := p.peek()

	switch tok.kind {
	case tokInt, tokFloat, tokString:
		p.advance()

		return &Literal{Value: tok.val}, false, nil
	case tokIdent:
		switch tok.text {
		case "True":
			p.advance()

			return &Literal{Value: Bool(true)}, false, nil
		case "False":
			p.advance()

			return &Literal{Value: Bool(false)}, false, nil
		case "None":
			p.advance()

			return &Literal{Value: None()}, false, nil
		}

		if IsKeyword(tok.text) {
			return nil, false, p.fail(atomStarts...)
		}

		p.advance()

		return &Variable{Name: tok.text}, true, nil
	case tokPunct:
		switch tok.text {
		case "(":
			p.advance()

			e, err := p.parseParens()

			return e, true, err
		case "[":
			p.advance()

			e, err := p.parseList()

			return e, true, err
		}
	}

	return nil, false, p.fail(atomStarts...)
}

var atomStarts = []string{"(", "[", "-", "not", "identifier", "number", "string"}

// parseParens parses the remainder of a parenthesized expression, tuple or
// comprehension after the opening '('.
func (p *parser) parseParens() (Expr, error) {
	if p.acceptPunct(")") {
		return &TupleExpr{}, nil
	}

	first, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	if p.isKeyword(p.peek(), "for") {
		if first, err = p.parseComprehension(first); err != nil {
			return nil, err
		}

		if p.acceptPunct(")") {
			return first, nil
		}
	} else if p.acceptPunct(")") {
		return first, nil
	}

	if !p.acceptPunct(",") {
		return nil, p.fail(",", ")", "for")
	}

	elems, err := p.parseElems([]Expr{first}, ")")
	if err != nil {
		return nil, err
	}

	return &TupleExpr{Elems: elems}, nil
}

// parseList parses the remainder of a list display or comprehension after
// the opening '['.
func (p *parser) parseList() (Expr, error) {
	if p.acceptPunct("]") {
		return &ListExpr{}, nil
	}

	first, err := p.parseTernary()
	if err != nil {
		return nil, err
	}

	if p.isKeyword(p.peek(), "for") {
		if first, err = p.parseComprehension(first); err != nil {
			return nil, err
		}

		if p.acceptPunct("]") {
			return first, nil
		}
	} else if p.acceptPunct("]") {
		return &ListExpr{Elems: []Expr{first}}, nil
	}

	if !p.acceptPunct(",") {
		return nil, p.fail(",", "]", "for")
	}

	elems, err := p.parseElems([]Expr{first}, "]")
	if err != nil {
		return nil, err
	}

	return &ListExpr{Elems: elems}, nil
}

// parseElems parses the comma-separated elements following a ',' up to and
// including the closing delimiter. A trailing comma is permitted.
func (p *parser) parseElems(elems []Expr, closing string) ([]Expr, error) {
	for {
		if p.acceptPunct(closing) {
			return elems, nil
		}

		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		elems = append(elems, e)

		if p.acceptPunct(closing) {
			return elems, nil
		}

		if !p.acceptPunct(",") {
			return nil, p.fail(",", closing)
		}
	}
}

// parseArgs parses call arguments after the opening '('.
func (p *parser) parseArgs() ([]Expr, error) {
	args := []Expr{}

	for {
		if p.acceptPunct(")") {
			return args, nil
		}

		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		args = append(args, arg)

		if p.acceptPunct(")") {
			return args, nil
		}

		if !p.acceptPunct(",") {
			return nil, p.fail(",", ")")
		}
	}
}

// parseSubscript parses an index or slice after the opening '['.
func (p *parser) parseSubscript(array Expr) (Expr, error) {
	var (
		start Expr
		err   error
	)

	if !p.isPunct(p.peek(), ":") {
		if p.isPunct(p.peek(), "]") {
			return nil, p.fail(append([]string{":"}, atomStarts...)...)
		}

		start, err = p.parseTernary()
		if err != nil {
			return nil, err
		}

		if p.acceptPunct("]") {
			return &Index{Array: array, Index: start}, nil
		}
	}

	if !p.acceptPunct(":") {
		return nil, p.fail(":", "]")
	}

	s := &Slice{Array: array, Start: start}

	if !p.isPunct(p.peek(), ":") && !p.isPunct(p.peek(), "]") {
		if s.End, err = p.parseTernary(); err != nil {
			return nil, err
		}
	}

	if p.acceptPunct(":") && !p.isPunct(p.peek(), "]") {
		if s.Step, err = p.parseTernary(); err != nil {
			return nil, err
		}
	}

	return s, p.expectPunct("]")
}

// parseComprehension parses the loops following the result expression.
func (p *parser) parseComprehension(result Expr) (Expr, error) {
	var loops []Loop

	for p.acceptKeyword("for") {
		binder, err := p.parseBinder()
		if err != nil {
			return nil, err
		}

		if !p.acceptKeyword("in") {
			return nil, p.fail("in")
		}

		iter, err := p.parseOr()
		if err != nil {
			return nil, err
		}

		loop := Loop{Binder: binder, Iterable: iter}

		for p.acceptKeyword("if") {
			cond, err := p.parseOr()
			if err != nil {
				return nil, err
			}

			loop.Conds = append(loop.Conds, cond)
		}

		loops = append(loops, loop)
	}

	return &Comprehension{
		Result: result,
		Loops:  Loops{First: loops[0], Rest: loops[1:]},
	}, nil
}

// parseBinder parses a loop target: a name, a bare list of names, or a
// parenthesized list of names.
func (p *parser) parseBinder() (Binder, error) {
	if p.acceptPunct("(") {
		var b Binder

		for !p.acceptPunct(")") {
			name, err := p.parseName()
			if err != nil {
				return Binder{}, err
			}

			b.Names = append(b.Names, name)

			if p.acceptPunct(",") {
				b.Tuple = true
			} else if !p.isPunct(p.peek(), ")") {
				return Binder{}, p.fail(",", ")")
			}
		}

		if len(b.Names) == 0 {
			return Binder{}, p.fail("identifier")
		}

		return b, nil
	}

	name, err := p.parseName()
	if err != nil {
		return Binder{}, err
	}

	b := Binder{Names: []string{name}}

	for p.acceptPunct(",") {
		b.Tuple = true

		if p.isKeyword(p.peek(), "in") {
			break
		}

		name, err := p.parseName()
		if err != nil {
			return Binder{}, err
		}

		b.Names = append(b.Names, name)
	}

	return b, nil
}

func (p *parser) parseName() (string, error) {
	tok := p.peek()
	if tok.kind != tokIdent || IsKeyword(tok.text) {
		return "", p.fail("identifier")
	}

	p.advance()

	return tok.text, nil
}

// Helper methods

func (p *parser) peek() token { return p.peekAt(0) }

func (p *parser) peekAt(n int) token {
	if i := p.pos + n; i < len(p.toks) {
		return p.toks[i]
	}

	return p.toks[len(p.toks)-1]
}

func (p *parser) advance() {
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
}

func (p *parser) isPunct(tok token, s string) bool {
	return tok.kind == tokPunct && tok.text == s
}

func (p *parser) isKeyword(tok token, s string) bool {
	return tok.kind == tokIdent && tok.text == s
}

func (p *parser) acceptPunct(s string) bool {
	if p.isPunct(p.peek(), s) {
		p.advance()

		return true
	}

	return false
}

func (p *parser) acceptKeyword(s string) bool {
	if p.isKeyword(p.peek(), s) {
		p.advance()

		return true
	}

	return false
}

func (p *parser) expectPunct(s string) error {
	if p.acceptPunct(s) {
		return nil
	}

	return p.fail(s)
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > p.maxDepth {
		tok := p.peek()

		return &SyntaxError{
			Position: tok.pos,
			Source:   p.src,
			Found:    tok.text,
			Detail:   "expression nested deeper than " + strconv.Itoa(p.maxDepth) + " levels",
		}
	}

	return nil
}

func (p *parser) leave() { p.depth-- }

// fail reports the current token as unexpected.
func (p *parser) fail(expected ...string) error {
	tok := p.peek()

	found := tok.text
	switch tok.kind {
	case tokString:
		found = quote(tok.text)
	case tokEOF:
		found = ""
	}

	return &SyntaxError{
		Position: tok.pos,
		Source:   p.src,
		Found:    found,
		Expected: expected,
	}
}
