package termgath

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/programme-lv/trainer/api"
	"github.com/programme-lv/trainer/internal/grading"
)

// TerminalGatherer prints a human-readable report of a run.
type TerminalGatherer struct {
	StartedAt time.Time
	out       io.Writer
	verbose   bool
	passed    int
	finished  int
}

func New(verbose bool) *TerminalGatherer {
	return NewWithWriter(color.Output, verbose)
}

func NewWithWriter(w io.Writer, verbose bool) *TerminalGatherer {
	if w == nil {
		w = os.Stdout
	}
	return &TerminalGatherer{StartedAt: time.Now(), out: w, verbose: verbose}
}

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen, color.Bold).SprintFunc()
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	faint  = color.New(color.Faint).SprintFunc()
)

func (t *TerminalGatherer) StartJob(language string, testCount int, systemInfo string) {
	fmt.Fprintf(t.out, "%s %s, %d tests\n", bold("== Run started:"), language, testCount)
	if t.verbose && systemInfo != "" {
		fmt.Fprintln(t.out, faint(systemInfo))
	}
}

func (t *TerminalGatherer) ReachTest(testIdx int, test api.Test) {
	if t.verbose {
		fmt.Fprintf(t.out, "-> Test %d: %s\n", testIdx+1, test.Input)
	}
}

func (t *TerminalGatherer) FinishTest(testIdx int, result api.TestCaseResult, runData *api.RunData) {
	t.finished++
	verdict := grading.VerdictOf(result)
	label := red(strings.ToUpper(string(verdict)))
	if verdict == grading.VerdictPassed {
		t.passed++
		label = green(strings.ToUpper(string(verdict)))
	}

	timing := ""
	if runData != nil {
		timing = faint(fmt.Sprintf(" [%s, %dms]", runData.Outcome, runData.WallMs))
	}
	fmt.Fprintf(t.out, "<- Test %d %s%s\n", testIdx+1, label, timing)

	if verdict == grading.VerdictFailed {
		fmt.Fprintf(t.out, "   input:    %s\n", result.Input)
		fmt.Fprintf(t.out, "   expected: %s\n", indent(result.ExpectedOutput))
		fmt.Fprintf(t.out, "   actual:   %s\n", yellow(indent(result.ActualOutput)))
	}
}

func (t *TerminalGatherer) FinishJob(results []api.TestCaseResult, errMsg *string) {
	dur := time.Since(t.StartedAt).Round(time.Millisecond)
	if errMsg != nil {
		fmt.Fprintf(t.out, "%s %s\n", red("== Internal error:"), *errMsg)
		return
	}
	summary := fmt.Sprintf("%d/%d passed", t.passed, t.finished)
	if grading.AllPassed(results) {
		summary = green(summary)
	} else {
		summary = red(summary)
	}
	fmt.Fprintf(t.out, "== Run finished in %s: %s ==\n", dur, summary)
}

func indent(s string) string {
	return strings.ReplaceAll(s, "\n", "\n             ")
}
