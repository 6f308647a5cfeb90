package main

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/fatih/color"
	"github.com/programme-lv/trainer/internal/environment"
	"github.com/programme-lv/trainer/internal/toolchain"
	"github.com/urfave/cli/v3"
)

type feedbackRow struct {
	unit    string
	ok      bool
	message string
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "check that the configured toolchains are installed",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := environment.LoadConfig(environment.ResolveConfigPath(cmd.String("config")))
			if err != nil {
				return err
			}
			tc, err := cfg.Toolchain()
			if err != nil {
				return err
			}

			rows := checkToolchains(tc)
			healthy := true
			for _, r := range rows {
				status := color.GreenString("OK   ")
				if !r.ok {
					status = color.RedString("ERROR")
					healthy = false
				}
				fmt.Fprintf(color.Output, "%s %-14s %s\n", status, r.unit, r.message)
			}
			if !healthy {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func checkToolchains(tc toolchain.Config) []feedbackRow {
	binaries := map[toolchain.Language][]string{
		toolchain.LanguageOCaml: {tc.OCaml.Interpreter},
		toolchain.LanguageJava:  {tc.Java.Compiler, tc.Java.Runtime},
		toolchain.LanguageC:     {tc.C.Compiler},
	}

	var rows []feedbackRow
	for _, lang := range tc.Enabled {
		for _, bin := range binaries[lang] {
			unit := fmt.Sprintf("%s (%s)", lang, bin)
			path, err := exec.LookPath(bin)
			if err != nil {
				rows = append(rows, feedbackRow{unit: unit, message: err.Error()})
				continue
			}
			rows = append(rows, feedbackRow{unit: unit, ok: true, message: path})
		}
	}
	return rows
}
