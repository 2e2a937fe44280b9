package cmd

import (
	"context"

	"github.com/ardnew/formula/pkg"
)

// Version prints the program name and version.
type Version struct{}

// Run executes the version command.
func (Version) Run(ctx context.Context) error {
	_, out := ioFrom(ctx)

	if err := writeLine(out, pkg.Name+" "+pkg.Version()); err != nil {
		return ErrOutput.Wrap(err)
	}

	return nil
}
