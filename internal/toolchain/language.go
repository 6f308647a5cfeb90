package toolchain

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/programme-lv/trainer/internal/workspace"
)

type Language string

const (
	LanguageOCaml Language = "ocaml"
	LanguageJava  Language = "java"
	LanguageC     Language = "c"
)

func ParseLanguage(s string) (Language, error) {
	switch lang := Language(strings.ToLower(strings.TrimSpace(s))); lang {
	case LanguageOCaml, LanguageJava, LanguageC:
		return lang, nil
	default:
		return "", fmt.Errorf("unsupported language %q", s)
	}
}

// Variant describes how a language gets from source to a running process.
type Variant string

const (
	Interpreted Variant = "interpreted"
	Managed     Variant = "managed" // compiled to bytecode, run on a VM
	Native      Variant = "native"
)

type OutcomeKind string

const (
	Completed    OutcomeKind = "completed"
	TimedOut     OutcomeKind = "timed_out"
	BuildFailed  OutcomeKind = "build_failed"
	RuntimeError OutcomeKind = "runtime_error"
)

// Outcome is how a single build-and-run attempt ended. Stdout and Stderr
// are exactly what the process produced, up to the capture limit.
type Outcome struct {
	Kind      OutcomeKind
	Stdout    string
	Stderr    string
	ExitCode  int
	Wall      time.Duration
	Truncated bool
}

// Driver knows how to materialize, optionally build, and run source code
// of one language inside a workspace.
type Driver interface {
	Language() Language
	Variant() Variant
	SourceFilename() string
	// Run never returns an error: every failure is described by the Outcome.
	Run(ctx context.Context, ws *workspace.Workspace, sourceCode string, invocationInput string) Outcome
}
