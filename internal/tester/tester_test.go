package tester_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/programme-lv/trainer/api"
	"github.com/programme-lv/trainer/internal/tester"
	"github.com/programme-lv/trainer/internal/toolchain"
	"github.com/programme-lv/trainer/internal/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	events []string
	errMsg *string
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) StartJob(language string, testCount int, systemInfo string) {
	r.add("start %s %d", language, testCount)
}

func (r *recorder) ReachTest(testIdx int, test api.Test) {
	r.add("reach %d", testIdx)
}

func (r *recorder) FinishTest(testIdx int, result api.TestCaseResult, runData *api.RunData) {
	r.add("finish %d %s", testIdx, runData.Outcome)
}

func (r *recorder) FinishJob(results []api.TestCaseResult, errMsg *string) {
	r.errMsg = errMsg
	r.add("done %d", len(results))
}

// newTester runs "ocaml" code through sh so these tests need no real toolchain.
func newTester(t *testing.T) (*tester.Tester, *workspace.Manager) {
	t.Helper()
	cfg := toolchain.DefaultConfig()
	cfg.Limits.Timeout = time.Second
	cfg.Enabled = []toolchain.Language{toolchain.LanguageOCaml}
	cfg.OCaml = toolchain.OCamlConfig{Interpreter: "sh"}

	reg, err := toolchain.NewRegistryFromConfig(cfg, nil)
	require.NoError(t, err)
	ws, err := workspace.NewManager(t.TempDir(), nil)
	require.NoError(t, err)
	return tester.NewTester(ws, reg, nil), ws
}

func assertRootEmpty(t *testing.T, m *workspace.Manager) {
	t.Helper()
	entries, err := os.ReadDir(m.Root())
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 0, m.Live())
}

func TestRunTestsInOrder(t *testing.T) {
	tst, m := newTester(t)
	rec := &recorder{}

	req := api.ExecReq{
		EvalUuid: "eval-1",
		Language: "ocaml",
		Code:     `echo "Hello, $1"`,
		Tests: []api.Test{
			{Input: "Alice", ExpectedOutput: "Hello, Alice"},
			{Input: "ocaml main.ml Bob", ExpectedOutput: "Hello, Bob"},
			{Input: "", ExpectedOutput: "Hello,"},
		},
	}
	results, err := tst.RunTests(context.Background(), req, rec)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Hello, Alice", results[0].ActualOutput)
	assert.Equal(t, "Hello, Bob", results[1].ActualOutput)
	assert.Equal(t, "Hello,", results[2].ActualOutput)
	for i, r := range results {
		assert.Equal(t, req.Tests[i].Input, r.Input)
		assert.Equal(t, req.Tests[i].ExpectedOutput, r.ExpectedOutput)
	}

	assert.Equal(t, []string{
		"start ocaml 3",
		"reach 0", "finish 0 completed",
		"reach 1", "finish 1 completed",
		"reach 2", "finish 2 completed",
		"done 3",
	}, rec.events)
	assert.Nil(t, rec.errMsg)
	assertRootEmpty(t, m)
}

func TestRunTestsTimeoutDoesNotStopLaterTests(t *testing.T) {
	tst, m := newTester(t)

	req := api.ExecReq{
		Language: "ocaml",
		Code:     `if [ "$1" = slow ]; then sleep 30; fi; echo "$1"`,
		Tests: []api.Test{
			{Input: "slow", ExpectedOutput: "slow"},
			{Input: "fast", ExpectedOutput: "fast"},
		},
	}
	results, err := tst.RunTests(context.Background(), req, &recorder{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Error: Execution timed out", results[0].ActualOutput)
	assert.Equal(t, "fast", results[1].ActualOutput)
	assertRootEmpty(t, m)
}

func TestRunTestsStderr(t *testing.T) {
	tst, _ := newTester(t)

	req := api.ExecReq{
		Language: "ocaml",
		Code:     `echo "Fatal error: exception Not_found" >&2; exit 2`,
		Tests:    []api.Test{{Input: "x", ExpectedOutput: "x"}},
	}
	results, err := tst.RunTests(context.Background(), req, &recorder{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Error: Fatal error: exception Not_found", results[0].ActualOutput)
}

func TestRunTestsUnsupportedLanguage(t *testing.T) {
	tst, m := newTester(t)
	rec := &recorder{}

	_, err := tst.RunTests(context.Background(), api.ExecReq{
		Language: "python",
		Code:     "print(1)",
		Tests:    []api.Test{{Input: "", ExpectedOutput: "1"}},
	}, rec)
	require.ErrorContains(t, err, "unsupported language")
	require.NotNil(t, rec.errMsg)
	assert.Contains(t, *rec.errMsg, "python")
	assert.Equal(t, []string{"start python 1", "done 0"}, rec.events)
	assertRootEmpty(t, m)
}

func TestRunTestsWorkspaceFailureBecomesResult(t *testing.T) {
	tst, m := newTester(t)
	require.NoError(t, os.RemoveAll(m.Root()))
	require.NoError(t, os.WriteFile(m.Root(), nil, 0644))

	results, err := tst.RunTests(context.Background(), api.ExecReq{
		Language: "ocaml",
		Code:     "echo hi",
		Tests: []api.Test{
			{Input: "a", ExpectedOutput: "hi"},
			{Input: "b", ExpectedOutput: "hi"},
		},
	}, &recorder{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.Contains(t, r.ActualOutput, "Error: failed to create workspace")
	}
}

func TestRunTestsCancelled(t *testing.T) {
	tst, m := newTester(t)
	rec := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	results, err := tst.RunTests(ctx, api.ExecReq{
		Language: "ocaml",
		Code:     "echo hi",
		Tests:    []api.Test{{Input: "", ExpectedOutput: "hi"}},
	}, rec)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
	require.NotNil(t, rec.errMsg)
	assertRootEmpty(t, m)
}

func TestRunTestsConcurrentRequests(t *testing.T) {
	tst, m := newTester(t)

	const n = 8
	var wg sync.WaitGroup
	outputs := make([]string, n)
	for i := range n {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results, err := tst.RunTests(context.Background(), api.ExecReq{
				Language: "ocaml",
				Code:     `echo "req-$1" > out.txt; cat out.txt`,
				Tests:    []api.Test{{Input: fmt.Sprint(i)}},
			}, &recorder{})
			if assert.NoError(t, err) && assert.Len(t, results, 1) {
				outputs[i] = results[0].ActualOutput
			}
		}(i)
	}
	wg.Wait()

	for i, out := range outputs {
		assert.Equal(t, fmt.Sprintf("req-%d", i), out)
	}
	assertRootEmpty(t, m)
}
