package main

import (
	"fmt"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/urfave/cli.v1"

	"github.com/excyrender/et1/internal/codegen"
	"github.com/excyrender/et1/internal/diag"
	"github.com/excyrender/et1/internal/parser"
	"github.com/excyrender/et1/internal/passes"
)

var stageNames = []string{
	"parse",
	string(diag.StageLift),
	string(diag.StageResolve),
	string(diag.StageMangle),
	string(diag.StageGlobalize),
}

var (
	stageFlag = cli.StringFlag{
		Name:  "stage",
		Usage: "Last stage to run (" + strings.Join(stageNames, ", ") + ")",
		Value: string(diag.StageGlobalize),
	}
	rawFlag = cli.BoolFlag{
		Name:  "raw",
		Usage: "Dump the Go tree structure instead of Et1 source",
	}

	dumpCommand = cli.Command{
		Action:    dumpFile,
		Name:      "dump",
		Usage:     "Show the program after a pipeline stage",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{stageFlag, rawFlag},
	}
)

func dumpFile(ctx *cli.Context) error {
	if len(ctx.Args()) != 1 {
		return cli.NewExitError("usage: et1c dump [--stage name] [--raw] <file>", 1)
	}
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	path := ctx.Args().First()
	src, err := readSource(path)
	if err != nil {
		return err
	}
	sources := map[string]string{path: src}

	prog, err := parser.Parse(src, parser.WithFilename(path))
	if err != nil {
		return s.report(err, sources)
	}
	if stage := ctx.String(stageFlag.Name); stage != "parse" {
		if err := passes.RunThrough(prog, diag.Stage(stage), s.passOptions()...); err != nil {
			return s.report(err, sources)
		}
	}

	if ctx.Bool(rawFlag.Name) {
		cfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
		cfg.Dump(prog)
		return nil
	}
	fmt.Println(codegen.Print(prog))
	return nil
}
