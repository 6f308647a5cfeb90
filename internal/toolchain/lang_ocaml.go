package toolchain

import (
	"context"
	"strings"

	"github.com/programme-lv/trainer/internal/workspace"
)

const ocamlSourceFilename = "main.ml"

type OCamlConfig struct {
	Interpreter string
	Flags       []string
}

type ocamlDriver struct {
	cfg  OCamlConfig
	exec *executor
}

func (d *ocamlDriver) Language() Language     { return LanguageOCaml }
func (d *ocamlDriver) Variant() Variant       { return Interpreted }
func (d *ocamlDriver) SourceFilename() string { return ocamlSourceFilename }

func (d *ocamlDriver) Run(ctx context.Context, ws *workspace.Workspace, sourceCode string, invocationInput string) Outcome {
	if err := ws.AddFile(ocamlSourceFilename, []byte(sourceCode)); err != nil {
		return writeSourceFailed(err)
	}

	argv := command(d.cfg.Interpreter,
		d.cfg.Flags,
		[]string{ws.FilePath(ocamlSourceFilename)},
		programArgs(invocationInput, ocamlLaunchPrefix),
	)
	return d.exec.run(ctx, ws, argv)
}

// ocamlLaunchPrefix recognises "ocaml <file>.ml".
func ocamlLaunchPrefix(tokens []string) int {
	if len(tokens) >= 2 && tokens[0] == "ocaml" && strings.HasSuffix(tokens[1], ".ml") {
		return 2
	}
	return 0
}
