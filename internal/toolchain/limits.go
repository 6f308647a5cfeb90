package toolchain

import (
	"fmt"
	"time"
)

type Limits struct {
	// Timeout bounds the wall-clock time of the run step.
	Timeout time.Duration
	// CompileTimeout bounds the wall-clock time of the build step.
	CompileTimeout time.Duration
	// OutputLimitBytes caps captured stdout and stderr, per stream.
	OutputLimitBytes int
}

func DefaultLimits() Limits {
	return Limits{
		Timeout:          10 * time.Second,
		CompileTimeout:   30 * time.Second,
		OutputLimitBytes: 1 << 20,
	}
}

func (l Limits) Validate() error {
	if l.Timeout <= 0 {
		return fmt.Errorf("run timeout must be positive, got %s", l.Timeout)
	}
	if l.CompileTimeout <= 0 {
		return fmt.Errorf("compile timeout must be positive, got %s", l.CompileTimeout)
	}
	if l.OutputLimitBytes <= 0 {
		return fmt.Errorf("output limit must be positive, got %d", l.OutputLimitBytes)
	}
	return nil
}
