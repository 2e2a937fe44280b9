package repl

import "github.com/ardnew/formula/lang"

// Predefined errors.
var (
	ErrOutOfBounds = lang.NewError("history index out of range")
	ErrCommand     = lang.NewError("unknown command")
	ErrUsage       = lang.NewError("usage")
)
