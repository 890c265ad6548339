package main

import (
	"os"

	"gopkg.in/urfave/cli.v1"
)

var dumpConfigCommand = cli.Command{
	Action:      dumpConfig,
	Name:        "dumpconfig",
	Usage:       "Show configuration values",
	ArgsUsage:   "",
	Category:    "MISCELLANEOUS COMMANDS",
	Description: `The dumpconfig command shows the configuration after the file and ET1_* environment overrides are applied.`,
}

func dumpConfig(ctx *cli.Context) error {
	s, err := newSession(ctx)
	if err != nil {
		return err
	}
	out, err := s.cfg.Dump()
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
