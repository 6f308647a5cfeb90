package toolchain

import (
	"context"

	"github.com/programme-lv/trainer/internal/workspace"
)

const (
	javaSourceFilename = "Main.java"
	javaClassFilename  = "Main.class"
	javaMainClass      = "Main"
)

type JavaConfig struct {
	Compiler     string
	Runtime      string
	CompileFlags []string
	RunFlags     []string
}

type javaDriver struct {
	cfg  JavaConfig
	exec *executor
}

func (d *javaDriver) Language() Language     { return LanguageJava }
func (d *javaDriver) Variant() Variant       { return Managed }
func (d *javaDriver) SourceFilename() string { return javaSourceFilename }

func (d *javaDriver) Run(ctx context.Context, ws *workspace.Workspace, sourceCode string, invocationInput string) Outcome {
	if err := ws.AddFile(javaSourceFilename, []byte(sourceCode)); err != nil {
		return writeSourceFailed(err)
	}

	buildArgv := command(d.cfg.Compiler, d.cfg.CompileFlags, []string{javaSourceFilename})
	if outcome, ok := d.exec.build(ctx, ws, buildArgv); !ok {
		return outcome
	}
	if !ws.HasFile(javaClassFilename) {
		return Outcome{
			Kind:   BuildFailed,
			Stderr: "compilation did not produce " + javaClassFilename + "; the entry class must be named " + javaMainClass,
		}
	}

	runArgv := command(d.cfg.Runtime,
		d.cfg.RunFlags,
		[]string{"-cp", ws.Path(), javaMainClass},
		programArgs(invocationInput, javaLaunchPrefix),
	)
	return d.exec.run(ctx, ws, runArgv)
}

// javaLaunchPrefix recognises "java Main".
func javaLaunchPrefix(tokens []string) int {
	if len(tokens) >= 2 && tokens[0] == "java" && tokens[1] == javaMainClass {
		return 2
	}
	return 0
}
