package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/programme-lv/trainer/internal/behave"
	"github.com/programme-lv/trainer/internal/gatherer/termgath"
	"github.com/programme-lv/trainer/internal/tester"
	"github.com/urfave/cli/v3"
)

func behaveCommand() *cli.Command {
	return &cli.Command{
		Name:      "behave",
		Usage:     "verify behaviour scenarios (TOML, optionally .zst compressed)",
		ArgsUsage: "<scenario file>...",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return cli.Exit("expected at least one scenario file", 2)
			}
			a, err := setup(cmd)
			if err != nil {
				return err
			}

			var extra tester.ResultGatherer
			if cmd.Bool("verbose") {
				extra = termgath.New(true)
			}

			failed := 0
			total := 0
			for _, path := range cmd.Args().Slice() {
				cases, err := behave.Parse(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				for _, r := range behave.Verify(ctx, a.tester, cases, extra) {
					total++
					if r.Ok() {
						fmt.Fprintf(color.Output, "%s %s\n", color.GreenString("PASS"), r.Name)
						continue
					}
					failed++
					fmt.Fprintf(color.Output, "%s %s\n", color.RedString("FAIL"), r.Name)
					for _, p := range r.Problems {
						fmt.Fprintf(color.Output, "     %s\n", p)
					}
				}
			}

			fmt.Fprintf(color.Output, "%d/%d scenarios passed\n", total-failed, total)
			if failed > 0 {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}
