package gatherer

import (
	"encoding/json"
	"log/slog"

	"github.com/programme-lv/trainer/api"
	"github.com/programme-lv/trainer/internal/grading"
	"github.com/programme-lv/trainer/internal/utils"
)

// SendFunc delivers one encoded streaming message.
type SendFunc func(payload []byte) error

// Stream encodes events as api streaming messages and hands them to a
// transport. Results and runtime data are bounded so every message fits
// the transport; verdicts are computed before bounding.
type Stream struct {
	evalUuid string
	send     SendFunc
	log      *slog.Logger
}

func NewStream(evalUuid string, send SendFunc, logger *slog.Logger) *Stream {
	if logger == nil {
		logger = slog.Default()
	}
	return &Stream{evalUuid: evalUuid, send: send, log: logger}
}

func (s *Stream) StartJob(language string, testCount int, systemInfo string) {
	s.emit(api.NewStartJob(s.evalUuid, language, testCount, systemInfo))
}

func (s *Stream) ReachTest(testIdx int, test api.Test) {
	s.emit(api.NewReachTest(s.evalUuid, testIdx,
		utils.StrPtrIfNotEmpty(trim(test.Input)),
		utils.StrPtrIfNotEmpty(trim(test.ExpectedOutput)),
	))
}

func (s *Stream) FinishTest(testIdx int, result api.TestCaseResult, runData *api.RunData) {
	s.emit(api.NewFinishTest(s.evalUuid, testIdx, trimResult(result), grading.Passed(result), trimRunData(runData)))
}

// FinishJob drops the aggregated results when they would not fit in one
// message.
func (s *Stream) FinishJob(results []api.TestCaseResult, errMsg *string) {
	allPassed := errMsg == nil && grading.AllPassed(results)
	trimmed := make([]api.TestCaseResult, len(results))
	for i, r := range results {
		trimmed[i] = trimResult(r)
	}
	msg := api.NewFinishJob(s.evalUuid, trimmed, allPassed, errMsg)

	b, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("failed to marshal message", "eval_uuid", s.evalUuid, "error", err)
		return
	}
	if len(b) > api.MaxMessageBytes {
		s.log.Warn("results too large for job_finish, omitting them",
			"eval_uuid", s.evalUuid, "bytes", len(b), "tests", len(results))
		msg.Results = nil
		msg.ResultsOmitted = true
		s.emit(msg)
		return
	}
	s.sendEncoded(b)
}

func (s *Stream) emit(msg any) {
	b, err := json.Marshal(msg)
	if err != nil {
		s.log.Error("failed to marshal message", "eval_uuid", s.evalUuid, "error", err)
		return
	}
	s.sendEncoded(b)
}

func (s *Stream) sendEncoded(b []byte) {
	if err := s.send(b); err != nil {
		s.log.Error("failed to send message", "eval_uuid", s.evalUuid, "error", err)
	}
}

func trim(s string) string {
	return utils.TrimStrToRect(s, api.MaxRuntimeDataHeight, api.MaxRuntimeDataWidth)
}

func trimResult(r api.TestCaseResult) api.TestCaseResult {
	return api.TestCaseResult{
		Input:          utils.TrimStrToRect(r.Input, api.MaxResultHeight, api.MaxResultWidth),
		ExpectedOutput: utils.TrimStrToRect(r.ExpectedOutput, api.MaxResultHeight, api.MaxResultWidth),
		ActualOutput:   utils.TrimStrToRect(r.ActualOutput, api.MaxResultHeight, api.MaxResultWidth),
	}
}

func trimRunData(data *api.RunData) *api.RunData {
	if data == nil {
		return nil
	}
	trimmed := *data
	trimmed.Stdout = trim(data.Stdout)
	trimmed.Stderr = trim(data.Stderr)
	return &trimmed
}
