// Package cmd provides helpers for executing shell commands with proper error handling.
package cmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/g4-api/git-submodules-manager/internal/log"
)

// Result holds the combined output and exit status of a finished command.
type Result struct {
	Output   string // stdout and stderr interleaved, trimmed
	ExitCode int
}

// OK reports whether the command exited with status 0.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// command builds an exec.Cmd scoped to dir. The process working directory is
// never changed; an empty dir inherits the caller's.
func command(ctx context.Context, dir, name string, args ...string) *exec.Cmd {
	c := exec.CommandContext(ctx, name, args...)
	c.Dir = dir
	return c
}

// logged wraps a command run with verbose logging of the invocation and its duration.
func logged(ctx context.Context, dir, name string, args []string, run func() error) error {
	done := log.FromContext(ctx).Command(dir, name, args...)
	start := time.Now()
	err := run()
	done(time.Since(start))
	return err
}

// RunContext executes a command in dir and returns stderr in the error message if it fails.
// A cancelled or expired context is returned as-is so callers can detect it.
func RunContext(ctx context.Context, dir, name string, args ...string) error {
	c := command(ctx, dir, name, args...)
	var stderr bytes.Buffer
	c.Stderr = &stderr

	err := logged(ctx, dir, name, args, c.Run)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if errMsg := strings.TrimSpace(stderr.String()); errMsg != "" {
			return fmt.Errorf("%s", errMsg)
		}
		return err
	}
	return nil
}

// OutputContext executes a command in dir and returns stdout, with stderr in error if it fails.
func OutputContext(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	c := command(ctx, dir, name, args...)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	err := logged(ctx, dir, name, args, c.Run)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if errMsg := strings.TrimSpace(stderr.String()); errMsg != "" {
			return nil, fmt.Errorf("%s", errMsg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// CombinedContext executes a command in dir and captures combined output and
// exit status. A non-zero exit is not an error; the caller inspects the
// Result. An error is returned only when the command could not be started or
// the context ended.
func CombinedContext(ctx context.Context, dir, name string, args ...string) (Result, error) {
	c := command(ctx, dir, name, args...)
	var out bytes.Buffer
	c.Stdout = &out
	c.Stderr = &out

	err := logged(ctx, dir, name, args, c.Run)
	res := Result{Output: strings.TrimSpace(out.String())}
	if err == nil {
		return res, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return res, err
}
