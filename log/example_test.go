package log_test

import (
	"log/slog"
	"os"

	"github.com/ardnew/formula/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithTimeLayout("none"),
		log.WithPretty(false))

	logger.Info("evaluated", slog.String("formula", "2 ** 10"), slog.Int("value", 1024))
	logger.Debug("not shown")

	// Output:
	// level=info msg=evaluated formula="2 ** 10" value=1024
}

func Example_json() {
	logger := log.Make(os.Stdout,
		log.WithFormat(log.FormatJSON),
		log.WithLevel(log.LevelTrace),
		log.WithTimeLayout("none"),
		log.WithPretty(false)).
		With(slog.String("doc", "profile.formula"))

	logger.Trace("parsed", slog.Int("line", 3))

	// Output:
	// {"level":"trace","msg":"parsed","doc":"profile.formula","line":3}
}
