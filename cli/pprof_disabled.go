//go:build !pprof

package cli

import (
	"context"

	"github.com/alecthomas/kong"
)

// pprofFlags adds no flags without the pprof build tag.
type pprofFlags struct{}

func (pprofFlags) vars() kong.Vars { return kong.Vars{} }

func (pprofFlags) group() kong.Group { return kong.Group{Key: "pprof", Title: "Profiling (pprof)"} }

func (pprofFlags) start(context.Context) (stop func()) { return func() {} }
