// Package log wraps [log/slog] with the leveled, attribute-only interface used
// throughout formula.
//
// A [Logger] is an immutable value. Options are applied when it is made with
// [Make] or derived with [Logger.Wrap], so a Logger can be shared between
// goroutines without locking. The zero Logger discards everything.
//
//	logger := log.Make(os.Stderr,
//		log.WithLevel(log.LevelDebug),
//		log.WithFormat(log.FormatText))
//	logger.Debug("parsed", slog.String("formula", src))
//
// Output is either [FormatJSON] or [FormatText]. Pretty output renders the
// same records with lipgloss styles, one field per line for JSON, and is
// enabled by default when the output is a terminal.
//
// The package-level functions log through a default Logger writing to
// standard error, reconfigured with [Config].
package log
