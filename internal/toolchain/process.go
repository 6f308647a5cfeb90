package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// waitDelay bounds how long Wait keeps draining pipes that a descendant
// still holds open after the main process has exited or been killed.
const waitDelay = 500 * time.Millisecond

type procSpec struct {
	argv    []string
	dir     string
	timeout time.Duration
	limit   int
}

type procResult struct {
	stdout    string
	stderr    string
	exitCode  int
	wall      time.Duration
	timedOut  bool
	truncated bool
	// err is set when the process could not be started or was cancelled
	// by the caller rather than by the timeout.
	err error
}

func runProcess(ctx context.Context, spec procSpec) procResult {
	if len(spec.argv) == 0 {
		return procResult{err: errors.New("empty command")}
	}

	runCtx, cancel := context.WithTimeout(ctx, spec.timeout)
	defer cancel()

	stdout := newCappedBuffer(spec.limit)
	stderr := newCappedBuffer(spec.limit)

	cmd := exec.CommandContext(runCtx, spec.argv[0], spec.argv[1:]...)
	cmd.Dir = spec.dir
	cmd.Env = sandboxEnv(spec.dir)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return procResult{err: err}
	}
	waitErr := cmd.Wait()
	wall := time.Since(start)
	// The leader is gone; take down anything it left behind in its group.
	killProcessGroup(cmd)

	res := procResult{
		stdout:    stdout.String(),
		stderr:    stderr.String(),
		wall:      wall,
		truncated: stdout.truncated || stderr.truncated,
	}

	if ctx.Err() != nil {
		res.err = fmt.Errorf("execution cancelled: %w", ctx.Err())
		return res
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		res.timedOut = true
		res.stdout, res.stderr = "", ""
		return res
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil, errors.Is(waitErr, exec.ErrWaitDelay):
		res.exitCode = 0
	case errors.As(waitErr, &exitErr):
		res.exitCode = exitErr.ExitCode()
	default:
		res.err = waitErr
	}
	return res
}

func sandboxEnv(dir string) []string {
	env := []string{
		"HOME=" + dir,
		"TMPDIR=" + dir,
		"LANG=C.UTF-8",
	}
	if path, ok := os.LookupEnv("PATH"); ok {
		env = append(env, "PATH="+path)
	}
	return env
}

// cappedBuffer keeps the first limit bytes written to it and silently
// discards the rest, so a chatty child never blocks on a full pipe.
type cappedBuffer struct {
	buf       bytes.Buffer
	limit     int
	truncated bool
}

func newCappedBuffer(limit int) *cappedBuffer {
	return &cappedBuffer{limit: limit}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	room := b.limit - b.buf.Len()
	if room <= 0 {
		if len(p) > 0 {
			b.truncated = true
		}
		return len(p), nil
	}
	if len(p) > room {
		b.buf.Write(p[:room])
		b.truncated = true
		return len(p), nil
	}
	return b.buf.Write(p)
}

func (b *cappedBuffer) String() string {
	return b.buf.String()
}
