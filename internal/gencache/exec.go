package gencache

import (
	"context"
	"errors"
	"os/exec"
)

// ProcessExecutor runs generation tools as external processes.
type ProcessExecutor struct {
	// Dir is the working directory for invocations; empty means inherit.
	Dir string
}

// Run executes the tool and captures combined stdout/stderr. A non-zero
// exit comes back through exitCode with err == nil so the caller can wrap
// it into a GenerationFailure carrying the log location.
func (e *ProcessExecutor) Run(ctx context.Context, tool string, args []string) (int, []byte, error) {
	cmd := exec.CommandContext(ctx, tool, args...)
	cmd.Dir = e.Dir

	combined, err := cmd.CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), combined, nil
		}
		return -1, combined, err
	}
	return 0, combined, nil
}
