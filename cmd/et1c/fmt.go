package main

import (
	"fmt"
	"os"

	"gopkg.in/urfave/cli.v1"

	"github.com/excyrender/et1/internal/codegen"
	"github.com/excyrender/et1/internal/parser"
)

var (
	writeFlag = cli.BoolFlag{
		Name:  "w",
		Usage: "Write the result back to the source file instead of stdout",
	}

	fmtCommand = cli.Command{
		Action:    fmtFile,
		Name:      "fmt",
		Usage:     "Print an Et1 source file in canonical form",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{writeFlag},
	}
)

func fmtFile(ctx *cli.Context) error {
	if len(ctx.Args()) != 1 {
		return cli.NewExitError("usage: et1c fmt [-w] <file>", 1)
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

	prog, err := parser.Parse(src, parser.WithFilename(path))
	if err != nil {
		return s.report(err, map[string]string{path: src})
	}
	out := codegen.Print(prog)
	if ctx.Bool(writeFlag.Name) {
		return os.WriteFile(path, []byte(out+"\n"), 0o644)
	}
	fmt.Println(out)
	return nil
}
