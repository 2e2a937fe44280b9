package cmd

import (
	"context"
	"errors"

	"github.com/ardnew/formula/log"
	"github.com/ardnew/formula/lsp"
)

// Lsp serves the language server protocol on stdin and stdout.
type Lsp struct {
	Env `embed:""`
}

// Run executes the lsp command.
func (l *Lsp) Run(ctx context.Context) (err error) {
	env, release, err := l.open(ctx)
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, release()) }()

	in, out := ioFrom(ctx)

	return lsp.Serve(ctx, lsp.Stdio{In: in, Out: out}, env, lsp.WithLogger(log.Default()))
}
