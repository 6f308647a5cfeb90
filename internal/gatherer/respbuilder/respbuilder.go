package respbuilder

import (
	"sync"
	"time"

	"github.com/programme-lv/trainer/api"
	"github.com/programme-lv/trainer/internal/grading"
)

// Builder gathers execution events and builds a complete api.RunTestsResponse.
type Builder struct {
	mu sync.Mutex

	evalUuid   string
	systemInfo string

	started  time.Time
	finished *time.Time

	verdicts []api.TestVerdict
	results  []api.TestCaseResult

	status       api.ExecStatus
	errorMessage *string
}

func New(evalUuid string) *Builder {
	return &Builder{
		evalUuid: evalUuid,
		started:  time.Now(),
		status:   api.Success,
	}
}

// StartJob implements tester.ResultGatherer.
func (b *Builder) StartJob(language string, testCount int, systemInfo string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.systemInfo = systemInfo
	b.verdicts = make([]api.TestVerdict, 0, testCount)
}

// ReachTest implements tester.ResultGatherer.
func (b *Builder) ReachTest(testIdx int, test api.Test) {}

// FinishTest implements tester.ResultGatherer.
func (b *Builder) FinishTest(testIdx int, result api.TestCaseResult, runData *api.RunData) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.verdicts = append(b.verdicts, api.TestVerdict{
		TestCaseResult: result,
		Passed:         grading.Passed(result),
		RunData:        runData,
	})
}

// FinishJob implements tester.ResultGatherer.
func (b *Builder) FinishJob(results []api.TestCaseResult, errMsg *string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := time.Now()
	b.finished = &now
	b.results = results
	if errMsg != nil {
		msg := *errMsg
		b.status = api.InternalError
		b.errorMessage = &msg
	}
}

// Response builds the api.RunTestsResponse from gathered data.
func (b *Builder) Response() api.RunTestsResponse {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := b.started.Format(time.RFC3339)
	finish := start
	total := int64(0)
	if b.finished != nil {
		finish = b.finished.Format(time.RFC3339)
		total = b.finished.Sub(b.started).Milliseconds()
	}

	results := b.results
	if results == nil {
		results = []api.TestCaseResult{}
	}
	verdicts := b.verdicts
	if verdicts == nil {
		verdicts = []api.TestVerdict{}
	}

	resp := api.RunTestsResponse{
		EvalUuid:    b.evalUuid,
		Status:      b.status,
		Results:     results,
		Verdicts:    verdicts,
		AllPassed:   b.status == api.Success && grading.AllPassed(results),
		StartTime:   start,
		FinishTime:  finish,
		TotalTimeMs: total,
	}
	if b.errorMessage != nil {
		msg := *b.errorMessage
		resp.ErrorMessage = &msg
	}
	if b.systemInfo != "" {
		info := b.systemInfo
		resp.SystemInfo = &info
	}
	return resp
}
