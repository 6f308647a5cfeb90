package gatherer

import (
	"github.com/programme-lv/trainer/api"
	"github.com/programme-lv/trainer/internal/tester"
)

// Multi forwards every event to each gatherer in order.
type Multi []tester.ResultGatherer

func (m Multi) StartJob(language string, testCount int, systemInfo string) {
	for _, g := range m {
		g.StartJob(language, testCount, systemInfo)
	}
}

func (m Multi) ReachTest(testIdx int, test api.Test) {
	for _, g := range m {
		g.ReachTest(testIdx, test)
	}
}

func (m Multi) FinishTest(testIdx int, result api.TestCaseResult, runData *api.RunData) {
	for _, g := range m {
		g.FinishTest(testIdx, result, runData)
	}
}

func (m Multi) FinishJob(results []api.TestCaseResult, errMsg *string) {
	for _, g := range m {
		g.FinishJob(results, errMsg)
	}
}
