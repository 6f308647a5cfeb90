package toolchain

import (
	"context"
	"strings"

	"github.com/programme-lv/trainer/internal/workspace"
)

const (
	cSourceFilename = "main.c"
	cBinaryFilename = "program"
)

type CConfig struct {
	Compiler     string
	CompileFlags []string
	// LinkFlags go after the source file, where linkers expect libraries.
	LinkFlags []string
}

type cDriver struct {
	cfg  CConfig
	exec *executor
}

func (d *cDriver) Language() Language     { return LanguageC }
func (d *cDriver) Variant() Variant       { return Native }
func (d *cDriver) SourceFilename() string { return cSourceFilename }

func (d *cDriver) Run(ctx context.Context, ws *workspace.Workspace, sourceCode string, invocationInput string) Outcome {
	if err := ws.AddFile(cSourceFilename, []byte(sourceCode)); err != nil {
		return writeSourceFailed(err)
	}

	binary := ws.FilePath(cBinaryFilename)
	buildArgv := command(d.cfg.Compiler,
		d.cfg.CompileFlags,
		[]string{cSourceFilename, "-o", binary},
		d.cfg.LinkFlags,
	)
	if outcome, ok := d.exec.build(ctx, ws, buildArgv); !ok {
		return outcome
	}
	if !ws.HasFile(cBinaryFilename) {
		return Outcome{Kind: BuildFailed, Stderr: "compilation did not produce an executable"}
	}

	runArgv := command(binary, programArgs(invocationInput, cLaunchPrefix))
	return d.exec.run(ctx, ws, runArgv)
}

// cLaunchPrefix recognises a leading "./<executable>".
func cLaunchPrefix(tokens []string) int {
	if len(tokens) >= 1 && strings.HasPrefix(tokens[0], "./") {
		return 1
	}
	return 0
}
