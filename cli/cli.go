package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/formula/cli/cmd"
	"github.com/ardnew/formula/pkg"
)

// CLI is the root of the formula command line.
type CLI struct {
	Log   logFlags   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofFlags `embed:"" group:"pprof" prefix:"pprof-"`

	Eval    cmd.Eval    `cmd:"" default:"withargs" help:"Evaluate formulas."`
	Fmt     cmd.Fmt     `cmd:""                    help:"Print the syntax tree of a formula."`
	Vars    cmd.Vars    `cmd:""                    help:"Manage saved variables."`
	Repl    cmd.Repl    `cmd:""                    help:"Evaluate formulas interactively."`
	Lsp     cmd.Lsp     `cmd:""                    help:"Serve the language server protocol on stdin and stdout."`
	Init    cmd.Init    `cmd:""                    help:"Write the effective flags to the configuration file."`
	Version cmd.Version `cmd:""                    help:"Print the version."`
}

// Run parses args and runs the selected command. Kong calls exit after
// printing help or a usage error.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	configFile := configPath(baseConfig)

	vars := kong.Vars{
		cmd.ConfigIdentifier:  configFile,
		cmd.CacheIdentifier:   cacheDir(),
		cmd.StoreIdentifier:   cachePath(baseStore),
		cmd.HistoryIdentifier: cachePath(baseHistory),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups([]kong.Group{cli.Log.group(), cli.Pprof.group()}),
		// The provider reads ctx when a command runs, after it is replaced below.
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, configFile+".json"),
		kong.Configuration(resolve(ctx), configFile),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)

	cli.Log.start(ctx)

	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}
