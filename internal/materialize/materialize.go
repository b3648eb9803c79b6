// Package materialize puts module repositories on disk.
//
// Two strategies implement one [Materializer] contract: [Sparse] keeps a
// plain clone narrowed with cone-mode sparse checkout, [Submodule] registers
// the module as a nested repository of the project. After a successful
// Checkout both leave the working copy detached at the requested commit.
package materialize

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/g4-api/git-submodules-manager/internal/git"
)

// Strategy names a materialization strategy.
type Strategy string

const (
	StrategySparse    Strategy = "sparse"
	StrategySubmodule Strategy = "submodule"
)

// Materializer creates, narrows, checks out and removes one module's working copy.
type Materializer interface {
	Strategy() Strategy
	// EnsurePresent creates the repository if absent and refreshes it
	// otherwise. Safe to call repeatedly.
	EnsurePresent(ctx context.Context) (git.Repo, error)
	// Narrow restricts the working tree to the declared subtree.
	Narrow(ctx context.Context, repo git.Repo) error
	// Checkout detaches HEAD at commit and runs strategy follow-ups.
	Checkout(ctx context.Context, repo git.Repo, commit string) error
	// Remove deletes the working copy. Only the directory deletion is a hard
	// step; everything else is reported as a warning.
	Remove(ctx context.Context) Cleanup
}

// Spec describes the module a materializer works on.
type Spec struct {
	Name      string
	URL       string
	Root      string // project root, absolute
	TargetDir string // slash-separated, relative to Root
	Subtree   string // repo-relative subtree to keep, "" for everything
	Recursive bool   // init the module's own submodules after checkout
	Remote    string
}

// Dir returns the absolute module directory.
func (s Spec) Dir() string {
	return filepath.Join(s.Root, filepath.FromSlash(s.TargetDir))
}

// New returns the materializer for spec.
func New(spec Spec, submodule bool) Materializer {
	if submodule {
		return &Submodule{spec: spec}
	}
	return &Sparse{spec: spec}
}

// Error marks a failure of a clone, fetch, registration or checkout command.
type Error struct {
	Step string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fail(step string, err error) error {
	return &Error{Step: step, Err: err}
}

// StepResult is the outcome of one cleanup step.
type StepResult struct {
	Step string
	Err  error
	Hard bool // a hard failure fails the module; a soft one is a warning
}

// Cleanup collects the outcome of every step of a removal.
type Cleanup []StepResult

func (c *Cleanup) soft(step string, err error) {
	*c = append(*c, StepResult{Step: step, Err: err})
}

func (c *Cleanup) hard(step string, err error) {
	*c = append(*c, StepResult{Step: step, Err: err, Hard: true})
}

// Err joins the hard failures, nil if there were none.
func (c Cleanup) Err() error {
	var errs []error
	for _, r := range c {
		if r.Hard && r.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.Step, r.Err))
		}
	}
	return errors.Join(errs...)
}

// Warnings returns the failed soft steps.
func (c Cleanup) Warnings() []StepResult {
	var warnings []StepResult
	for _, r := range c {
		if !r.Hard && r.Err != nil {
			warnings = append(warnings, r)
		}
	}
	return warnings
}

// removeDir deletes dir; a missing directory is success.
func removeDir(c *Cleanup, dir string) {
	c.hard("delete directory", os.RemoveAll(dir))
}

// isEmptyDir reports whether dir is missing or has no entries.
func isEmptyDir(dir string) bool {
	entries, err := os.ReadDir(dir)
	return err != nil || len(entries) == 0
}
