package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/urfave/cli.v1"

	"github.com/excyrender/et1/internal/lsp"
)

var lspCommand = cli.Command{
	Action:   serveLSP,
	Name:     "lsp",
	Usage:    "Run the Et1 language server on stdin and stdout",
	Category: "MISCELLANEOUS COMMANDS",
	Description: `The lsp command speaks the Language Server Protocol. It reports pipeline
diagnostics on every edit and answers hover, definition and completion
requests. Logs go to stderr.`,
}

func serveLSP(ctx *cli.Context) error {
	s, err := newSession(ctx)
	if err != nil {
		return err
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := lsp.NewServer(s.logger, s.passOptions()...)
	return srv.Run(runCtx, os.Stdin, os.Stdout)
}
