package lang

import "github.com/ardnew/formula/log"

// DefaultMaxDepth is the default limit on syntactic nesting accepted by the
// parser.
const DefaultMaxDepth = 200

// Option configures parsing and evaluation.
type Option func(config) config

type config struct {
	logger   log.Logger
	maxDepth int
}

func makeConfig(opts ...Option) config {
	cfg := config{maxDepth: DefaultMaxDepth}

	for _, opt := range opts {
		cfg = opt(cfg)
	}

	return cfg
}

// WithLogger traces parse and evaluation events to logger.
func WithLogger(logger log.Logger) Option {
	return func(c config) config {
		c.logger = logger

		return c
	}
}

// WithMaxDepth limits how deeply expressions may nest. Deeper input is
// rejected with a syntax error. Values less than 1 select
// [DefaultMaxDepth].
func WithMaxDepth(depth int) Option {
	return func(c config) config {
		if depth < 1 {
			depth = DefaultMaxDepth
		}

		c.maxDepth = depth

		return c
	}
}
