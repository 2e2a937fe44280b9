// Package pkg identifies the formula program.
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version returns the semantic version embedded from the VERSION file.
func Version() string { return strings.TrimSpace(version) }

const (
	// Name is the command name. It also names the configuration and cache
	// directories.
	Name = "formula"
	// Description is the one-line summary shown in help output.
	Description = "Evaluate spreadsheet-style formulas over named variables"
)
