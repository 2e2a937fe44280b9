// Package lsp implements a language server for formula documents.
//
// A document holds one formula per line. The server publishes a diagnostic
// for every line that fails to parse and warns about free variables the
// environment does not bind. Hover shows the canonical form of the formula
// under the cursor, and completion offers environment names matched fuzzily
// against the identifier being typed.
package lsp

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/ardnew/formula/lang"
	"github.com/ardnew/formula/log"
)

// Option configures the server.
type Option func(config) config

type config struct {
	logger log.Logger
}

// WithLogger logs requests and protocol errors to logger.
func WithLogger(logger log.Logger) Option {
	return func(c config) config {
		c.logger = logger

		return c
	}
}

// Serve answers LSP requests read from rwc until the client disconnects or
// ctx is canceled. Names are resolved against env.
func Serve(
	ctx context.Context,
	rwc io.ReadWriteCloser,
	env lang.Environment,
	opts ...Option,
) error {
	var cfg config
	for _, opt := range opts {
		cfg = opt(cfg)
	}

	s := newServer(env, cfg.logger)

	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}),
		s.handler())

	cfg.logger.DebugContext(ctx, "language server started")

	select {
	case <-conn.DisconnectNotify():
		cfg.logger.DebugContext(ctx, "client disconnected")
	case <-ctx.Done():
		cfg.logger.DebugContext(ctx, "language server canceled",
			slog.Any("cause", context.Cause(ctx)))

		if err := conn.Close(); err != nil && !errors.Is(err, jsonrpc2.ErrClosed) {
			return err
		}
	}

	return nil
}

// Stdio joins standard input and output into one stream for [Serve].
// Close closes whichever of the two implements [io.Closer].
type Stdio struct {
	In  io.Reader
	Out io.Writer
}

func (c Stdio) Read(p []byte) (int, error)  { return c.In.Read(p) }
func (c Stdio) Write(p []byte) (int, error) { return c.Out.Write(p) }

// Close closes both streams.
func (c Stdio) Close() error {
	var errs []error

	for _, s := range []any{c.In, c.Out} {
		if cl, ok := s.(io.Closer); ok {
			errs = append(errs, cl.Close())
		}
	}

	return errors.Join(errs...)
}
