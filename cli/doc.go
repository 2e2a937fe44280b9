// Package cli is the formula command line.
//
// Without a subcommand, the arguments are formulas to evaluate:
//
//	formula 'max(3, 4) ** 2'
//	formula -D layer=0.2 -D 'height=layer * 40' 'height / 2'
//
// # Configuration
//
// Flag defaults are read from YAML at $XDG_CONFIG_HOME/formula/config and
// from JSON at config.json beside it. Keys name flags; hyphens and
// underscores are interchangeable and nested mappings join with hyphens.
// "formula init" writes the effective flags in that format.
//
//	log:
//	  level: debug
//	  pretty: false
//	store: false
//
// # Logging
//
// The --log-* flags configure the default logger before any other flag is
// parsed: level (trace, debug, info, warn, error), format (text, json),
// time layout, caller, and pretty (colorized; on by default when stderr is
// a terminal). Records go to stderr.
//
// # Profiling
//
// Builds with the pprof tag add --pprof-mode and --pprof-dir:
//
//	go build -tags pprof
//	formula --pprof-mode=cpu eval -f batch.txt
//
// Profiles are written under $XDG_CACHE_HOME/formula/pprof by default.
package cli
