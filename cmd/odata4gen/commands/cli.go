package commands

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/alecthomas/kong"

	ferrors "git.home.luguber.info/inful/odata4gen/internal/foundation/errors"
	"git.home.luguber.info/inful/odata4gen/internal/version"
)

// Global carries the process writers and the logger installed after parsing.
type Global struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// CLI definition & global flags.
type CLI struct {
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" default:"withargs" help:"Generate client code from OData metadata (default)"`
	Watch    WatchCmd    `cmd:"" help:"Regenerate whenever the metadata changes"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(g.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// exitCode unwinds kong's exit requests (help, version) back to Execute.
type exitCode int

// Execute parses args, runs the selected command and returns the process
// exit code.
func Execute(args []string, stdout, stderr io.Writer) (code int) {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(stderr, "Specify --help for a list of available options and commands.")
		return ferrors.ExitUsage
	}

	var cli CLI
	global := &Global{Stdout: stdout, Stderr: stderr}
	parser, err := kong.New(&cli,
		kong.Name("odata4gen"),
		kong.Description("Generate OData v4 client code from service metadata."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(c int) { panic(exitCode(c)) }),
		kong.Vars{"version": version.Short()},
		kong.Bind(global),
	)
	if err != nil {
		_, _ = fmt.Fprintf(stderr, "odata4gen: %v\n", err)
		return ferrors.ExitInternal
	}

	defer func() {
		if r := recover(); r != nil {
			ec, ok := r.(exitCode)
			if !ok {
				panic(r)
			}
			code = int(ec)
		}
	}()

	kctx, err := parser.Parse(args)
	if err != nil {
		parser.Errorf("%s", err)
		return ferrors.ExitUsage
	}

	adapter := ferrors.NewCLIErrorAdapter(cli.Verbose, global.Logger)
	adapter.SetOutput(stderr)
	return adapter.Report(kctx.Run(&cli))
}
