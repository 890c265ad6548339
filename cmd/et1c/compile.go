package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/urfave/cli.v1"

	"github.com/excyrender/et1/internal/codegen"
)

var (
	backendFlag = cli.StringFlag{
		Name:  "backend",
		Usage: "Target backend (" + strings.Join(codegen.Names(), ", ") + "); defaults to the configured one",
	}
	outDirFlag = cli.StringFlag{
		Name:  "out",
		Usage: "Directory receiving one output file per input; stdout when empty",
	}

	compileCommand = cli.Command{
		Action:    compileFiles,
		Name:      "compile",
		Usage:     "Compile Et1 source files",
		ArgsUsage: "<file> [<file>...]",
		Flags:     []cli.Flag{backendFlag, outDirFlag},
		Description: `The compile command runs the full pass pipeline on every file
concurrently and renders the result with the selected backend.`,
	}
)

var extensions = map[string]string{
	"et1":    ".et1",
	"js":     ".js",
	"python": ".py",
}

type compiled struct {
	path string
	src  string
	text string
}

func compileFiles(ctx *cli.Context) error {
	if len(ctx.Args()) == 0 {
		return cli.NewExitError("usage: et1c compile <file> [<file>...]", 1)
	}
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	backend := s.cfg.Backend
	if ctx.IsSet(backendFlag.Name) {
		backend = ctx.String(backendFlag.Name)
	}
	if _, err := codegen.Lookup(backend); err != nil {
		return s.report(err, nil)
	}

	results := make([]compiled, len(ctx.Args()))
	var g errgroup.Group
	for i, path := range ctx.Args() {
		i, path := i, path
		g.Go(func() error {
			src, err := readSource(path)
			if err != nil {
				return err
			}
			results[i] = compiled{path: path, src: src}
			art, err := s.compiler.CompileFileTo(backend, path, src)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i].text = art.Text
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		sources := map[string]string{}
		for _, r := range results {
			if r.path != "" {
				sources[r.path] = r.src
			}
		}
		return s.report(err, sources)
	}

	outDir := ctx.String(outDirFlag.Name)
	for _, r := range results {
		if outDir == "" {
			fmt.Println(r.text)
			continue
		}
		base := strings.TrimSuffix(filepath.Base(r.path), filepath.Ext(r.path))
		out := filepath.Join(outDir, base+extensions[backend])
		if err := os.WriteFile(out, []byte(r.text+"\n"), 0o644); err != nil {
			return err
		}
		s.logger.Info("wrote", "file", out, "backend", backend)
	}
	return nil
}
