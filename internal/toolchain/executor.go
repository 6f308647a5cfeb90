package toolchain

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/programme-lv/trainer/internal/workspace"
)

// executor runs build and program processes inside a workspace under the
// configured limits. It is shared by all drivers.
type executor struct {
	limits Limits
	log    *slog.Logger
}

func newExecutor(limits Limits, logger *slog.Logger) *executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &executor{limits: limits, log: logger.With("component", "toolchain")}
}

// build runs a compiler. ok is false when the build did not succeed, in
// which case the returned outcome describes why and the run step must be
// skipped.
func (e *executor) build(ctx context.Context, ws *workspace.Workspace, argv []string) (outcome Outcome, ok bool) {
	e.log.Debug("building", "workspace", ws.ID(), "argv", argv)
	res := runProcess(ctx, procSpec{
		argv:    argv,
		dir:     ws.Path(),
		timeout: e.limits.CompileTimeout,
		limit:   e.limits.OutputLimitBytes,
	})

	switch {
	case res.err != nil:
		return Outcome{Kind: RuntimeError, Stderr: res.err.Error(), Wall: res.wall}, false
	case res.timedOut:
		return Outcome{Kind: BuildFailed, Stderr: "compilation timed out", Wall: res.wall}, false
	case res.exitCode != 0:
		msg := res.stderr
		if strings.TrimSpace(msg) == "" {
			msg = res.stdout
		}
		if strings.TrimSpace(msg) == "" {
			msg = fmt.Sprintf("compilation failed with exit code %d", res.exitCode)
		}
		return Outcome{
			Kind:      BuildFailed,
			Stderr:    msg,
			ExitCode:  res.exitCode,
			Wall:      res.wall,
			Truncated: res.truncated,
		}, false
	}
	return Outcome{}, true
}

func (e *executor) run(ctx context.Context, ws *workspace.Workspace, argv []string) Outcome {
	e.log.Debug("running", "workspace", ws.ID(), "argv", argv)
	res := runProcess(ctx, procSpec{
		argv:    argv,
		dir:     ws.Path(),
		timeout: e.limits.Timeout,
		limit:   e.limits.OutputLimitBytes,
	})

	switch {
	case res.err != nil:
		return Outcome{Kind: RuntimeError, Stderr: res.err.Error(), Wall: res.wall}
	case res.timedOut:
		e.log.Debug("run timed out", "workspace", ws.ID(), "timeout", e.limits.Timeout)
		return Outcome{Kind: TimedOut, Wall: res.wall}
	}
	return Outcome{
		Kind:      Completed,
		Stdout:    res.stdout,
		Stderr:    res.stderr,
		ExitCode:  res.exitCode,
		Wall:      res.wall,
		Truncated: res.truncated,
	}
}

func writeSourceFailed(err error) Outcome {
	return Outcome{Kind: RuntimeError, Stderr: err.Error()}
}

func command(bin string, parts ...[]string) []string {
	argv := []string{bin}
	for _, p := range parts {
		argv = append(argv, p...)
	}
	return argv
}
