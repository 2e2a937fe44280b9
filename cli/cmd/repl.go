package cmd

import (
	"context"
	"errors"

	"github.com/ardnew/formula/cli/cmd/repl"
	"github.com/ardnew/formula/log"
)

// Repl evaluates formulas interactively.
type Repl struct {
	Env `embed:""`

	History string `default:"${history}" help:"History file; empty disables it." type:"path"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	env, release, err := r.open(ctx)
	if err != nil {
		return err
	}

	defer func() { err = errors.Join(err, release()) }()

	in, out := ioFrom(ctx)

	return repl.Run(ctx, env,
		repl.WithHistory(r.History),
		repl.WithLogger(log.Default()),
		repl.WithIO(in, out))
}
