package profile

import "slices"

// Stopper ends a profiling session and flushes its output.
type Stopper interface{ Stop() }

// Config selects what to profile and where to write it.
type Config struct {
	Mode  string
	Path  string
	Quiet bool
}

// Option adjusts a [Config].
type Option func(Config) Config

// New returns the Config built from opts.
func New(opts ...Option) Config {
	var c Config
	for _, opt := range opts {
		c = opt(c)
	}

	return c
}

// WithMode selects one of [Modes].
func WithMode(mode string) Option {
	return func(c Config) Config {
		c.Mode = mode

		return c
	}
}

// WithPath sets the output directory.
func WithPath(path string) Option {
	return func(c Config) Config {
		c.Path = path

		return c
	}
}

// WithQuiet suppresses the profiler's own start and stop messages.
func WithQuiet(quiet bool) Option {
	return func(c Config) Config {
		c.Quiet = quiet

		return c
	}
}

// Enabled reports whether c names a mode this build supports.
func (c Config) Enabled() bool {
	return c.Mode != "" && slices.Contains(Modes(), c.Mode)
}

// Start begins profiling. It returns a no-op Stopper when c is not
// [Config.Enabled].
func (c Config) Start() Stopper {
	if !c.Enabled() {
		return ignore{}
	}

	return start(c)
}

type ignore struct{}

func (ignore) Stop() {}
