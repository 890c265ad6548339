package main

import (
	"context"
	"fmt"
	"time"

	"gopkg.in/urfave/cli.v1"

	"github.com/excyrender/et1/internal/eval"
)

var (
	viaFlag = cli.StringFlag{
		Name:  "via",
		Usage: "Evaluation strategy: tree (walk the resolved tree) or js (run generated JavaScript)",
		Value: "tree",
	}
	timeoutFlag = cli.DurationFlag{
		Name:  "timeout",
		Usage: "Abort JavaScript evaluation after this long",
		Value: 10 * time.Second,
	}

	evalCommand = cli.Command{
		Action:    evalFile,
		Name:      "eval",
		Usage:     "Evaluate an Et1 program and print its value",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{viaFlag, timeoutFlag},
	}
)

func evalFile(ctx *cli.Context) error {
	if len(ctx.Args()) != 1 {
		return cli.NewExitError("usage: et1c eval [--via tree|js] <file>", 1)
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

	var v eval.Value
	switch via := ctx.String(viaFlag.Name); via {
	case "tree":
		prog, cerr := s.compiler.CompileFile(path, src)
		if cerr != nil {
			return s.report(cerr, map[string]string{path: src})
		}
		v, err = eval.New(prog).Eval()
	case "js":
		runCtx, cancel := context.WithTimeout(context.Background(), ctx.Duration(timeoutFlag.Name))
		defer cancel()
		v, err = s.compiler.EvalJS(runCtx, src)
	default:
		return cli.NewExitError(fmt.Sprintf("unknown evaluation strategy %q", via), 1)
	}
	if err != nil {
		return s.report(err, map[string]string{path: src, "": src})
	}
	fmt.Println(v)
	return nil
}
