// Package cmd implements the formula subcommands.
//
// Every command has a Run(context.Context) error method called by kong.
// Commands read input from, and print results to, the streams installed
// with [WithIO], or the process's standard streams by default.
package cmd

// Names of the kong variables holding per-user paths.
var (
	// CacheIdentifier names the cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier names the YAML configuration file.
	ConfigIdentifier = "config"

	// StoreIdentifier names the default variable database.
	StoreIdentifier = "store"

	// HistoryIdentifier names the REPL history file.
	HistoryIdentifier = "history"
)
