package behave

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	"github.com/pelletier/go-toml/v2"
	"github.com/programme-lv/trainer/api"
	"github.com/programme-lv/trainer/internal/gatherer"
	"github.com/programme-lv/trainer/internal/gatherer/respbuilder"
	"github.com/programme-lv/trainer/internal/grading"
	"github.com/programme-lv/trainer/internal/tester"
)

// SpecTest is a single test case in the behaviour file
type SpecTest struct {
	In  string `toml:"in"`
	Ans string `toml:"ans"`
}

// SpecRequest represents a request block inside a scenario entry
type SpecRequest struct {
	Language string     `toml:"language"`
	Code     string     `toml:"code"`
	Tests    []SpecTest `toml:"tests"`
}

// SpecTestVerdict is the expectation for one test result. Actual and
// ActualPrefix are optional checks on the normalized output.
type SpecTestVerdict struct {
	Verdict      string  `toml:"verdict"`
	Actual       *string `toml:"actual"`
	ActualPrefix string  `toml:"actual_prefix"`
}

// SpecExpect describes expected overall status and per-test verdicts
type SpecExpect struct {
	Status      string            `toml:"status"`
	AllPassed   *bool             `toml:"all_passed"`
	TestResults []SpecTestVerdict `toml:"test_results"`
}

// specSuite maps to [[scenarios]] entries. The request is written as an
// array-of-tables, so it is modelled as a slice and the first element used.
type specSuite struct {
	Description string        `toml:"description"`
	RequestAOT  []SpecRequest `toml:"request"`
	Expect      SpecExpect    `toml:"expect"`
}

type specRoot struct {
	Suites []specSuite `toml:"scenarios"`
}

// Case is a runnable scenario converted from TOML
type Case struct {
	Name    string
	Request api.ExecReq
	Expect  SpecExpect
}

// Parse reads a behaviour TOML file, zstd-compressed when it ends in .zst,
// and converts it to runnable cases.
func Parse(path string) ([]Case, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read behaviour file: %w", err)
	}
	return ParseBytes(data)
}

func ParseBytes(data []byte) ([]Case, error) {
	var root specRoot
	if err := toml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	cases := make([]Case, 0, len(root.Suites))
	for i, suite := range root.Suites {
		if len(suite.RequestAOT) == 0 {
			return nil, fmt.Errorf("scenario %d (%q) is missing request block", i, suite.Description)
		}
		reqSpec := suite.RequestAOT[0]
		if reqSpec.Language == "" {
			return nil, fmt.Errorf("scenario %d (%q) has no language", i, suite.Description)
		}
		if n := len(suite.Expect.TestResults); n != 0 && n != len(reqSpec.Tests) {
			return nil, fmt.Errorf("scenario %d (%q) expects %d results for %d tests",
				i, suite.Description, n, len(reqSpec.Tests))
		}

		tests := make([]api.Test, 0, len(reqSpec.Tests))
		for _, t := range reqSpec.Tests {
			tests = append(tests, api.Test{Input: t.In, ExpectedOutput: t.Ans})
		}

		name := suite.Description
		if name == "" {
			name = fmt.Sprintf("scenario %d", i+1)
		}
		cases = append(cases, Case{
			Name: name,
			Request: api.ExecReq{
				EvalUuid: uuid.NewString(),
				Language: reqSpec.Language,
				Code:     reqSpec.Code,
				Tests:    tests,
			},
			Expect: suite.Expect,
		})
	}
	return cases, nil
}

func readFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if filepath.Ext(path) != ".zst" {
		return io.ReadAll(f)
	}
	d, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd reader: %w", err)
	}
	defer d.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, d); err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}
	return buf.Bytes(), nil
}

type Runner interface {
	RunTests(ctx context.Context, req api.ExecReq, gath tester.ResultGatherer) ([]api.TestCaseResult, error)
}

// Report is the verification result of one case.
type Report struct {
	Name     string
	Response api.RunTestsResponse
	Problems []string
}

func (r Report) Ok() bool { return len(r.Problems) == 0 }

// Verify runs every case and compares the response with its expectation.
// extra receives the events of every run, e.g. for terminal output.
func Verify(ctx context.Context, runner Runner, cases []Case, extra tester.ResultGatherer) []Report {
	reports := make([]Report, 0, len(cases))
	for _, c := range cases {
		builder := respbuilder.New(c.Request.EvalUuid)
		var gath tester.ResultGatherer = builder
		if extra != nil {
			gath = gatherer.Multi{builder, extra}
		}
		// Request-level errors are reflected in the response status.
		_, _ = runner.RunTests(ctx, c.Request, gath)

		resp := builder.Response()
		reports = append(reports, Report{
			Name:     c.Name,
			Response: resp,
			Problems: check(c.Expect, resp),
		})
	}
	return reports
}

func check(exp SpecExpect, resp api.RunTestsResponse) []string {
	var problems []string
	if exp.Status != "" && exp.Status != string(resp.Status) {
		problems = append(problems, fmt.Sprintf("status: expected %s, got %s", exp.Status, resp.Status))
	}
	if exp.AllPassed != nil && *exp.AllPassed != resp.AllPassed {
		problems = append(problems, fmt.Sprintf("all_passed: expected %t, got %t", *exp.AllPassed, resp.AllPassed))
	}
	if len(exp.TestResults) == 0 {
		return problems
	}
	if len(resp.Results) != len(exp.TestResults) {
		return append(problems, fmt.Sprintf("results: expected %d, got %d", len(exp.TestResults), len(resp.Results)))
	}
	for i, want := range exp.TestResults {
		got := resp.Results[i]
		if want.Verdict != "" && want.Verdict != string(grading.VerdictOf(got)) {
			problems = append(problems, fmt.Sprintf("test %d: expected %s, got %s (actual %q)",
				i+1, want.Verdict, grading.VerdictOf(got), got.ActualOutput))
		}
		if want.Actual != nil && *want.Actual != got.ActualOutput {
			problems = append(problems, fmt.Sprintf("test %d: expected actual %q, got %q", i+1, *want.Actual, got.ActualOutput))
		}
		if want.ActualPrefix != "" && !strings.HasPrefix(got.ActualOutput, want.ActualPrefix) {
			problems = append(problems, fmt.Sprintf("test %d: expected actual to start with %q, got %q",
				i+1, want.ActualPrefix, got.ActualOutput))
		}
	}
	return problems
}
