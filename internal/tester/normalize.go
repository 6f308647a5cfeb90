package tester

import (
	"strings"

	"github.com/programme-lv/trainer/api"
	"github.com/programme-lv/trainer/internal/toolchain"
	"github.com/programme-lv/trainer/internal/utils"
)

const (
	timedOutMessage = "Error: Execution timed out"
	errorPrefix     = "Error: "

	maxErrorHeight = 40
	maxErrorWidth  = 200
)

// Normalize turns the outcome of running one test case into the result
// presented to the student. Input and expected output are copied as is.
func Normalize(test api.Test, outcome toolchain.Outcome) api.TestCaseResult {
	return api.TestCaseResult{
		Input:          test.Input,
		ExpectedOutput: test.ExpectedOutput,
		ActualOutput:   actualOutput(outcome),
	}
}

func actualOutput(outcome toolchain.Outcome) string {
	switch outcome.Kind {
	case toolchain.Completed:
		out := strings.TrimSpace(outcome.Stdout)
		stderr := strings.TrimSpace(outcome.Stderr)
		if stderr == "" {
			return out
		}
		if out == "" {
			return errorPrefix + stderr
		}
		return out + "\n" + errorPrefix + stderr
	case toolchain.TimedOut:
		return timedOutMessage
	default:
		return errorText(outcome.Stderr)
	}
}

// errorText bounds build and runtime failure messages. Program stderr
// from a completed run is reported whole.
func errorText(msg string) string {
	msg = utils.TrimStrToRect(strings.TrimSpace(msg), maxErrorHeight, maxErrorWidth)
	return errorPrefix + msg
}

// runData exposes the raw outcome alongside the normalized result.
func runData(outcome toolchain.Outcome) *api.RunData {
	return &api.RunData{
		Outcome:   string(outcome.Kind),
		Stdout:    outcome.Stdout,
		Stderr:    outcome.Stderr,
		ExitCode:  int64(outcome.ExitCode),
		WallMs:    outcome.Wall.Milliseconds(),
		Truncated: outcome.Truncated,
	}
}
