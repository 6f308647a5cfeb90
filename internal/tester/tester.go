package tester

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/programme-lv/trainer/api"
	"github.com/programme-lv/trainer/internal/toolchain"
	"github.com/programme-lv/trainer/internal/workspace"
)

type Tester struct {
	workspaces *workspace.Manager
	drivers    *toolchain.Registry
	systemInfo string
	log        *slog.Logger
}

func NewTester(workspaces *workspace.Manager, drivers *toolchain.Registry, logger *slog.Logger) *Tester {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tester{
		workspaces: workspaces,
		drivers:    drivers,
		systemInfo: getSystemInfo(),
		log:        logger.With("component", "tester"),
	}
}

func (t *Tester) SystemInfo() string { return t.systemInfo }

func getSystemInfo() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("%s %s/%s, %d CPUs, %s",
		host, runtime.GOOS, runtime.GOARCH, runtime.NumCPU(), runtime.Version())
}

// RunTests runs req.Code once per test case, in order, each in a fresh
// workspace. Student failures are part of the results; an error is returned
// only when the request as a whole cannot be processed, in which case the
// results gathered so far are returned with it.
func (t *Tester) RunTests(ctx context.Context, req api.ExecReq, gath ResultGatherer) ([]api.TestCaseResult, error) {
	log := t.log.With("eval_uuid", req.EvalUuid, "language", req.Language)
	gath.StartJob(req.Language, len(req.Tests), t.systemInfo)

	driver, err := t.drivers.Lookup(req.Language)
	if err != nil {
		log.Warn("rejecting request", "error", err)
		msg := err.Error()
		gath.FinishJob(nil, &msg)
		return nil, err
	}

	log.Info("running tests", "tests", len(req.Tests))
	results := make([]api.TestCaseResult, 0, len(req.Tests))
	for i, test := range req.Tests {
		if err := ctx.Err(); err != nil {
			err = fmt.Errorf("execution cancelled after %d of %d tests: %w", i, len(req.Tests), err)
			msg := err.Error()
			gath.FinishJob(results, &msg)
			return results, err
		}

		gath.ReachTest(i, test)
		outcome := t.runTest(ctx, driver, req.Code, test)
		result := Normalize(test, outcome)
		results = append(results, result)
		log.Debug("test finished", "test_idx", i, "outcome", outcome.Kind, "wall", outcome.Wall)
		gath.FinishTest(i, result, runData(outcome))
	}

	gath.FinishJob(results, nil)
	return results, nil
}

func (t *Tester) runTest(ctx context.Context, driver toolchain.Driver, code string, test api.Test) toolchain.Outcome {
	var outcome toolchain.Outcome
	err := t.workspaces.With(func(ws *workspace.Workspace) error {
		outcome = driver.Run(ctx, ws, code, test.Input)
		return nil
	})
	if err != nil {
		// Only a workspace that could not be created ends up here.
		t.log.Error("workspace unavailable", "error", err)
		return toolchain.Outcome{Kind: toolchain.RuntimeError, Stderr: err.Error()}
	}
	return outcome
}
