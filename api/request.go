package api

// ExecReq asks for one source file to be run against a sequence of test cases.
type ExecReq struct {
	EvalUuid string `json:"eval_uuid"`

	Language string `json:"language"`
	Code     string `json:"code"`
	Tests    []Test `json:"tests"`

	// Optional SQS queue to stream results to. Used only by the SQS listener.
	ResSqsUrl *string `json:"res_sqs_url,omitempty"`
}

// Test is one invocation input with the output it is expected to produce.
// Input holds the program arguments, optionally preceded by the launch
// command (e.g. "java Main World").
type Test struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expected_output"`
}
