package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/trainer/api"
	"github.com/programme-lv/trainer/internal/gatherer/termgath"
	"github.com/programme-lv/trainer/internal/grading"
	"github.com/urfave/cli/v3"
)

type testFile struct {
	Tests []struct {
		In  string `toml:"in"`
		Ans string `toml:"ans"`
	} `toml:"tests"`
}

func runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "run one source file against test cases and print the results",
		ArgsUsage: "<source file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "lang", Aliases: []string{"l"}, Usage: "ocaml, java or c; guessed from the file extension when omitted"},
			&cli.StringFlag{Name: "tests", Aliases: []string{"t"}, Usage: "TOML file with [[tests]] in/ans entries"},
			&cli.StringSliceFlag{Name: "input", Aliases: []string{"i"}, Usage: "invocation input of an extra test case with no expected output"},
			&cli.BoolFlag{Name: "verbose", Aliases: []string{"v"}},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return cli.Exit("expected exactly one source file", 2)
			}
			srcPath := cmd.Args().First()
			code, err := os.ReadFile(srcPath)
			if err != nil {
				return fmt.Errorf("failed to read source file: %w", err)
			}

			lang := cmd.String("lang")
			if lang == "" {
				lang, err = languageFromExt(srcPath)
				if err != nil {
					return err
				}
			}

			tests, err := loadTests(cmd.String("tests"))
			if err != nil {
				return err
			}
			for _, in := range cmd.StringSlice("input") {
				tests = append(tests, api.Test{Input: in})
			}
			if len(tests) == 0 {
				return cli.Exit("no test cases given; use --tests or --input", 2)
			}

			a, err := setup(cmd)
			if err != nil {
				return err
			}

			req := api.ExecReq{
				EvalUuid: uuid.NewString(),
				Language: lang,
				Code:     string(code),
				Tests:    tests,
			}
			results, err := a.tester.RunTests(ctx, req, termgath.New(cmd.Bool("verbose")))
			if err != nil {
				return err
			}
			if !grading.AllPassed(results) {
				return cli.Exit("", 1)
			}
			return nil
		},
	}
}

func languageFromExt(path string) (string, error) {
	switch filepath.Ext(path) {
	case ".ml":
		return "ocaml", nil
	case ".java":
		return "java", nil
	case ".c":
		return "c", nil
	default:
		return "", fmt.Errorf("cannot guess language of %s; use --lang", path)
	}
}

func loadTests(path string) ([]api.Test, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read tests file: %w", err)
	}
	var tf testFile
	if err := toml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse tests file: %w", err)
	}
	tests := make([]api.Test, 0, len(tf.Tests))
	for _, t := range tf.Tests {
		tests = append(tests, api.Test{Input: t.In, ExpectedOutput: t.Ans})
	}
	return tests, nil
}
