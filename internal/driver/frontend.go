package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

var (
	// ErrFrontendTimeout is returned when the frontend did not finish in time.
	// The process has been killed by then.
	ErrFrontendTimeout = errors.New("frontend timed out")
	// ErrNoFrontend is returned for source files when no frontend command is
	// configured.
	ErrNoFrontend = errors.New("no frontend configured")
	// ErrFrontendFailed wraps a non-zero exit of the frontend.
	ErrFrontendFailed = errors.New("frontend failed")
)

// Frontend is the external process that turns a source file into Core IR
// JSON on its standard output.
type Frontend struct {
	Command string
	Args    []string
	Timeout time.Duration
}

// Emit runs the frontend on path and returns its standard output. The run
// is bounded by f.Timeout (DefaultFrontendTimeout when zero) and by ctx.
func (f Frontend) Emit(ctx context.Context, path string) ([]byte, error) {
	if strings.TrimSpace(f.Command) == "" {
		return nil, fmt.Errorf("%s: %w (set %s or [frontend].command)", path, ErrNoFrontend, EnvFrontend)
	}
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = DefaultFrontendTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := append(append([]string(nil), f.Args...), path)
	cmd := exec.CommandContext(runCtx, f.Command, args...)
	// pipes stay open if the process spawned children; don't wait on them forever
	cmd.WaitDelay = time.Second
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil {
		return nil, fmt.Errorf("%s: %w after %s", path, ErrFrontendTimeout, timeout)
	}
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%s: frontend: %w", path, ctx.Err())
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			msg := strings.TrimSpace(stderr.String())
			if msg == "" {
				msg = exitErr.Error()
			}
			return nil, fmt.Errorf("%s: %w: %s", path, ErrFrontendFailed, msg)
		}
		return nil, fmt.Errorf("%s: run frontend %q: %w", path, f.Command, err)
	}
	return stdout.Bytes(), nil
}
