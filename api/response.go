package api

// TestCaseResult is the normalized outcome of running one test case.
type TestCaseResult struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
	ActualOutput   string `json:"actual_output"`
}

type ExecStatus string

const (
	Success       ExecStatus = "success"
	InternalError ExecStatus = "internal_error"
)

// TestVerdict pairs a result with the exact-match comparison of its outputs.
type TestVerdict struct {
	TestCaseResult
	Passed  bool     `json:"passed"`
	RunData *RunData `json:"run_data,omitempty"`
}

// RunTestsResponse is a simple, complete response for one ExecReq.
type RunTestsResponse struct {
	EvalUuid string `json:"eval_uuid"`

	Status  ExecStatus       `json:"status"`
	Results []TestCaseResult `json:"results"`
	// Verdicts mirrors Results with per-test comparison and runtime details.
	Verdicts []TestVerdict `json:"verdicts"`
	// AllPassed is true when every actual output equals its expected output.
	AllPassed bool `json:"all_passed"`

	ErrorMessage *string `json:"error_message,omitempty"`

	StartTime   string `json:"start_time"`
	FinishTime  string `json:"finish_time"`
	TotalTimeMs int64  `json:"total_time_ms"`

	SystemInfo *string `json:"system_info,omitempty"`
}
