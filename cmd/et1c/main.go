// et1c compiles, evaluates and inspects Et1 programs.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"gopkg.in/urfave/cli.v1"

	"github.com/excyrender/et1/internal/compiler"
	"github.com/excyrender/et1/internal/config"
	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/passes"
)

var (
	configFileFlag = cli.StringFlag{
		Name:  "config",
		Usage: "TOML configuration file",
	}
	verboseFlag = cli.BoolFlag{
		Name:  "verbose",
		Usage: "Log pass progress at debug level",
	}
)

func main() {
	app := cli.NewApp()
	app.Name = "et1c"
	app.Usage = "the Et1 compiler"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{configFileFlag, verboseFlag}
	app.Commands = []cli.Command{
		compileCommand,
		evalCommand,
		fmtCommand,
		dumpCommand,
		testCommand,
		lspCommand,
		dumpConfigCommand,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// session is the per-invocation state shared by the commands.
type session struct {
	cfg      config.Config
	logger   *slog.Logger
	compiler *compiler.Compiler
}

func newSession(ctx *cli.Context) (*session, error) {
	cfg, err := config.Load(ctx.GlobalString(configFileFlag.Name))
	if err != nil {
		return nil, err
	}

	level := cfg.SlogLevel()
	if ctx.GlobalBool(verboseFlag.Name) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	c, err := compiler.New(cfg.CompilerOptions(logger))
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, compiler: c}, nil
}

func (s *session) passOptions() []passes.Option {
	return []passes.Option{passes.WithLogger(s.logger), passes.WithMaxResolveRuns(s.cfg.MaxResolveRuns)}
}

// report prints err to stderr, with a source snippet when it is a
// diagnostic for one of sources.
func (s *session) report(err error, sources map[string]string) error {
	f := diag.NewFormatter(os.Stderr, s.cfg.Color && !color.NoColor)
	for name, src := range sources {
		f.AddSource(name, src)
	}
	f.FormatError(err)
	return cli.NewExitError("", 1)
}

func readSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
