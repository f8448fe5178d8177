package cli

import (
	"context"

	"github.com/alecthomas/kong"

	"github.com/ardnew/tplc/cli/cmd"
	"github.com/ardnew/tplc/pkg"
)

// CLI declares the complete flag and command grammar for tplc.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Dir  []string `help:"Add directory to the template search path" name:"dir" short:"C" type:"existingdir"`
	Path []string `hidden:"" name:"path"`

	Version kong.VersionFlag `help:"Print version and quit" short:"V"`

	Init  cmd.Init  `cmd:"" help:"Initialize configuration file"`
	Check cmd.Check `cmd:"" help:"Verify templates without writing output"`
	Dump  cmd.Dump  `cmd:"" help:"Print the parsed form of a single template"`

	Build cmd.Build `cmd:"" default:"withargs" help:"Compile templates"`
}

// Run parses args and executes the selected command. The exit function
// receives the process exit code when kong terminates early, as it does
// for --help, --version, and usage errors.
func Run(ctx context.Context, exit func(code int), args ...string) error {
	if err := mkdirAllRequired(); err != nil {
		return err
	}

	var cli CLI

	// Logger flags apply before parsing so records emitted by kong
	// hooks and resolvers already use the requested configuration.
	cli.Log.scan(args)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	parser, err := newParser(ctx, &cli, exit)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithSearchPath(ctx, searchPath(cli.Dir, cli.Path))

	// Apply the values kong resolved from flags, config files, and
	// defaults. The pre-scan saw command-line flags only.
	cli.Log.start(ctx)

	defer cli.Pprof.start(ctx)()

	return ktx.Run(ctx, &cli)
}

// newParser assembles the kong parser. Configuration files resolve in
// precedence order: the per-project file overrides the user config,
// and explicit flags override both.
func newParser(ctx context.Context, cli *CLI, exit func(int)) (*kong.Kong, error) {
	confPath := configPath(baseConfig + ".yaml")

	vars := kong.Vars{
		"version":            pkg.Name + " " + pkg.Version(),
		cmd.ConfigIdentifier: confPath,
		cmd.CacheIdentifier:  cacheDir(),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	return kong.New(cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context { return ctx }),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			Summary:             true,
			Tree:                true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, configPath(baseConfig+".json")),
		kong.Configuration(resolve(), confPath, cmd.ProjectFile),
		vars,
	)
}
