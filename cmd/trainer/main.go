package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "trainer",
		Usage: "run untrusted OCaml, Java and C programs against test cases",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to trainer.toml",
				Sources: cli.EnvVars("TRAINER_CONFIG"),
			},
		},
		Commands: []*cli.Command{
			listenNatsCommand(),
			listenSqsCommand(),
			runCommand(),
			behaveCommand(),
			healthCommand(),
		},
	}
}
