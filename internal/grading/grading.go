// Package grading compares actual outputs with expected ones. Comparison is
// exact: results are already trimmed by the tester, and nothing else is
// forgiven.
package grading

import "github.com/programme-lv/trainer/api"

type Verdict string

const (
	VerdictPassed Verdict = "passed"
	VerdictFailed Verdict = "failed"
)

func Passed(r api.TestCaseResult) bool {
	return r.ActualOutput == r.ExpectedOutput
}

// AllPassed reports whether every result passed. An empty slice passes.
func AllPassed(results []api.TestCaseResult) bool {
	for _, r := range results {
		if !Passed(r) {
			return false
		}
	}
	return true
}

func VerdictOf(r api.TestCaseResult) Verdict {
	if Passed(r) {
		return VerdictPassed
	}
	return VerdictFailed
}

// CountPassed returns how many results passed.
func CountPassed(results []api.TestCaseResult) int {
	n := 0
	for _, r := range results {
		if Passed(r) {
			n++
		}
	}
	return n
}
