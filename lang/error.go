package lang

import (
	"errors"
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Predefined errors (sentinel values).
//
// Evaluation failures always match exactly one of the evaluation sentinels
// with [errors.Is]; parse failures match [ErrSyntax].
var (
	ErrSyntax                   = NewError("syntax error")
	ErrTypeMismatch             = NewError("type mismatch")
	ErrUndefinedVariable        = NewError("undefined variable")
	ErrDivisionByZero           = NewError("division by zero")
	ErrInvalidNumberOfArguments = NewError("invalid number of arguments")
	ErrIndexOutOfBounds         = NewError("index out of bounds")
	ErrValueError               = NewError("value error")
	ErrReadInput                = NewError("failed to read input")
	ErrEvalCanceled             = NewError("evaluation canceled")
)

// Error represents an error with optional structured logging attributes.
// It implements both error and slog.LogValuer interfaces.
type Error struct {
	msg   string
	err   error       // Wrapped error (for errors.Unwrap)
	base  *Error      // Sentinel this error was derived from
	attrs []slog.Attr // Attributes for structured logging
}

// NewError creates a new Error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

// WrapError wraps a standard error into an Error.
func WrapError(err error) *Error {
	ee := &Error{}
	if errors.As(err, &ee) {
		return ee
	}

	return &Error{err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	// Build error message using the first available format,
	// depending on which fields are set:
	//
	//   1. "<msg>: <err>" // base and wrapped error both set
	//   2. "<msg>"        // wrapped error is nil
	//   3. "<err>"        // base error message is empty
	//   4. ""             // no fields are set
	part := make([]string, 0, 2)

	if e.msg != "" {
		part = append(part, e.msg)
	}

	if e.err != nil {
		part = append(part, e.err.Error())
	}

	return strings.Join(part, ": ")
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error { return e.err }

// Is reports whether target is the sentinel e was derived from.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.root() == t.root()
}

func (e *Error) root() *Error {
	if e.base != nil {
		return e.base
	}

	return e
}

// LogValue implements slog.LogValuer for rich structured logging.
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Attrs returns a copy of the structured attributes attached to e.
func (e *Error) Attrs() []slog.Attr { return slices.Clone(e.attrs) }

// Wrap creates a new Error wrapping another error.
func (e *Error) Wrap(err error) *Error {
	return &Error{
		msg:   e.msg,
		err:   err,
		base:  e.root(),
		attrs: e.attrs, // Share attrs
	}
}

// With adds attributes to the error for structured logging.
// This creates a new Error instance to maintain immutability.
func (e *Error) With(attrs ...slog.Attr) *Error {
	newAttrs := make([]slog.Attr, len(e.attrs)+len(attrs))
	copy(newAttrs, e.attrs)
	copy(newAttrs[len(e.attrs):], attrs)

	return &Error{
		msg:   e.msg,
		err:   e.err,
		base:  e.root(),
		attrs: newAttrs,
	}
}

// EvalErrorKind enumerates the closed set of evaluation failures.
type EvalErrorKind int

const (
	NoEvalError EvalErrorKind = iota
	TypeMismatch
	UndefinedVariable
	DivisionByZero
	InvalidNumberOfArguments
	IndexOutOfBounds
	ValueError
)

var evalErrorKinds = []struct {
	kind     EvalErrorKind
	sentinel *Error
}{
	{TypeMismatch, ErrTypeMismatch},
	{UndefinedVariable, ErrUndefinedVariable},
	{DivisionByZero, ErrDivisionByZero},
	{InvalidNumberOfArguments, ErrInvalidNumberOfArguments},
	{IndexOutOfBounds, ErrIndexOutOfBounds},
	{ValueError, ErrValueError},
}

// ErrorKind classifies err. It returns [NoEvalError] for nil and for errors
// that are not evaluation failures, such as syntax errors or cancellation.
func ErrorKind(err error) EvalErrorKind {
	if err == nil {
		return NoEvalError
	}

	for _, k := range evalErrorKinds {
		if errors.Is(err, k.sentinel) {
			return k.kind
		}
	}

	return NoEvalError
}

func (k EvalErrorKind) String() string {
	switch k {
	case NoEvalError:
		return "NoEvalError"
	case TypeMismatch:
		return "TypeMismatch"
	case UndefinedVariable:
		return "UndefinedVariable"
	case DivisionByZero:
		return "DivisionByZero"
	case InvalidNumberOfArguments:
		return "InvalidNumberOfArguments"
	case IndexOutOfBounds:
		return "IndexOutOfBounds"
	case ValueError:
		return "ValueError"
	default:
		return "EvalErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Position identifies a location in formula source text.
// Line and Column are 1-based; Column counts bytes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// SyntaxError describes why a formula could not be parsed.
type SyntaxError struct {
	Position

	Source   string   // Formula text being parsed
	Found    string   // Text at the failure position, empty at end of input
	Detail   string   // Describes a malformed token; replaces Found if set
	Expected []string // Tokens or productions that would have been accepted
}

// Error implements the error interface.
func (e *SyntaxError) Error() string {
	var buf strings.Builder

	buf.WriteString("syntax error at line ")
	buf.WriteString(strconv.Itoa(e.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Column))

	switch {
	case e.Detail != "":
		buf.WriteString(": ")
		buf.WriteString(e.Detail)
	case e.Found == "":
		buf.WriteString(": unexpected end of input")
	default:
		buf.WriteString(": unexpected ")
		buf.WriteString(strconv.Quote(e.Found))
	}

	if exp := e.expected(); len(exp) > 0 {
		buf.WriteString(", expected ")
		buf.WriteString(strings.Join(exp, ", "))
	}

	return buf.String()
}

// Snippet renders the offending source line with a caret under the failure
// column, or an empty string if the position is outside the source.
func (e *SyntaxError) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Line <= 0 || e.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	src.WriteString("  ")
	src.WriteString(strconv.Itoa(e.Line))
	src.WriteString(" | ")
	src.WriteString(lines[e.Line-1])
	src.WriteRune('\n')

	// 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(e.Line))+5)
	if e.Column > 0 {
		padding += strings.Repeat(" ", e.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

// Is matches [ErrSyntax].
func (e *SyntaxError) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.root() == ErrSyntax
}

// LogValue implements slog.LogValuer.
func (e *SyntaxError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrSyntax.msg),
		slog.Int("line", e.Line),
		slog.Int("column", e.Column),
		slog.String("found", e.Found),
		slog.String("detail", e.Detail),
		slog.String("expected", strings.Join(e.expected(), ", ")),
	)
}

func (e *SyntaxError) expected() []string {
	exp := make([]string, 0, len(e.Expected))
	for _, s := range e.Expected {
		exp = append(exp, strconv.Quote(s))
	}

	slices.Sort(exp)

	return slices.Compact(exp)
}

// mismatch builds a TypeMismatch error for a binary operator.
func mismatch(op string, lhs, rhs Value) *Error {
	return ErrTypeMismatch.With(
		slog.String("op", op),
		slog.String("lhs", lhs.Kind().String()),
		slog.String("rhs", rhs.Kind().String()),
	)
}

// mismatchUnary builds a TypeMismatch error for a unary operator.
func mismatchUnary(op string, operand Value) *Error {
	return ErrTypeMismatch.With(
		slog.String("op", op),
		slog.String("operand", operand.Kind().String()),
	)
}
