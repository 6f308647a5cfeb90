package tester

import (
	"github.com/programme-lv/trainer/api"
)

// ResultGatherer receives progress events for one request, in order:
// StartJob, then ReachTest and FinishTest per test case, then FinishJob.
type ResultGatherer interface {
	StartJob(language string, testCount int, systemInfo string)

	ReachTest(testIdx int, test api.Test)
	FinishTest(testIdx int, result api.TestCaseResult, runData *api.RunData)

	// FinishJob is always the last event. errMsg is set when the request
	// could not be processed to the end.
	FinishJob(results []api.TestCaseResult, errMsg *string)
}

// Discard ignores every event.
type Discard struct{}

func (Discard) StartJob(language string, testCount int, systemInfo string) {}
func (Discard) ReachTest(testIdx int, test api.Test) {}
func (Discard) FinishTest(testIdx int, result api.TestCaseResult, runData *api.RunData) {}
func (Discard) FinishJob(results []api.TestCaseResult, errMsg *string) {}
