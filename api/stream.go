package api

import "time"

// MsgType is a message type for streaming responses
type MsgType string

const (
	StartJobMsg   MsgType = "job_start"
	ReachTestMsg  MsgType = "test_reach"
	FinishTestMsg MsgType = "test_finish"
	FinishJobMsg  MsgType = "job_finish"
)

// Runtime data size constraints for streaming
const (
	MaxRuntimeDataHeight = 40
	MaxRuntimeDataWidth  = 80

	// Bounds on each streamed result field.
	MaxResultHeight = 100
	MaxResultWidth  = 200

	// MaxMessageBytes keeps an encoded message under the SQS body limit
	// of 256 KiB with room for attributes.
	MaxMessageBytes = 240 << 10
)

// Header is the common header for all streaming response messages
type Header struct {
	EvalUuid string  `json:"eval_uuid"`
	MsgType  MsgType `json:"msg_type"`
}

// StartJob message sent when evaluation begins
type StartJob struct {
	Header
	Language    string `json:"language"`
	TestCount   int    `json:"test_count"`
	SystemInfo  string `json:"system_info"`
	StartedTime string `json:"started_time"`
}

// ReachTest message sent when a test case is about to run
type ReachTest struct {
	Header
	TestIdx        int     `json:"test_idx"`
	Input          *string `json:"input"`
	ExpectedOutput *string `json:"expected_output"`
}

// FinishTest message sent when a test case completes
type FinishTest struct {
	Header
	TestIdx int            `json:"test_idx"`
	Result  TestCaseResult `json:"result"`
	Passed  bool           `json:"passed"`
	RunData *RunData       `json:"run_data"`
}

// FinishJob message sent when evaluation completes
type FinishJob struct {
	Header
	Results []TestCaseResult `json:"results"`
	// ResultsOmitted is set when Results were too large to send; each
	// result has already been delivered in its test_finish message.
	ResultsOmitted bool    `json:"results_omitted,omitempty"`
	AllPassed      bool    `json:"all_passed"`
	ErrorMessage   *string `json:"error_message"`
	InternalError  bool    `json:"internal_error"`
}

func NewHeader(evalUuid string, msgType MsgType) Header {
	return Header{
		EvalUuid: evalUuid,
		MsgType:  msgType,
	}
}

func NewStartJob(evalUuid, language string, testCount int, systemInfo string) StartJob {
	return StartJob{
		Header:      NewHeader(evalUuid, StartJobMsg),
		Language:    language,
		TestCount:   testCount,
		SystemInfo:  systemInfo,
		StartedTime: time.Now().Format(time.RFC3339),
	}
}

func NewReachTest(evalUuid string, testIdx int, input, expected *string) ReachTest {
	return ReachTest{
		Header:         NewHeader(evalUuid, ReachTestMsg),
		TestIdx:        testIdx,
		Input:          input,
		ExpectedOutput: expected,
	}
}

func NewFinishTest(evalUuid string, testIdx int, result TestCaseResult, passed bool, runData *RunData) FinishTest {
	return FinishTest{
		Header:  NewHeader(evalUuid, FinishTestMsg),
		TestIdx: testIdx,
		Result:  result,
		Passed:  passed,
		RunData: runData,
	}
}

func NewFinishJob(evalUuid string, results []TestCaseResult, allPassed bool, errorMessage *string) FinishJob {
	return FinishJob{
		Header:        NewHeader(evalUuid, FinishJobMsg),
		Results:       results,
		AllPassed:     allPassed,
		ErrorMessage:  errorMessage,
		InternalError: errorMessage != nil,
	}
}
