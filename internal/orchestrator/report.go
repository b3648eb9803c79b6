package orchestrator

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/g4-api/git-submodules-manager/internal/materialize"
)

// Op is one of the four module operations.
type Op string

const (
	OpInstall Op = "install"
	OpUpdate  Op = "update"
	OpRestore Op = "restore"
	OpRemove  Op = "remove"
)

// Outcome is what happened to a module.
type Outcome string

const (
	OutcomeInstalled Outcome = "installed"
	OutcomeUpdated   Outcome = "updated"
	OutcomeUnchanged Outcome = "unchanged"
	OutcomeRestored  Outcome = "restored"
	OutcomeRemoved   Outcome = "removed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// outcomeOrder fixes the order of counts in Summary.
var outcomeOrder = []Outcome{
	OutcomeInstalled, OutcomeUpdated, OutcomeUnchanged, OutcomeRestored,
	OutcomeRemoved, OutcomeSkipped, OutcomeFailed,
}

// Result describes one module after an operation.
type Result struct {
	Module   string
	Strategy materialize.Strategy
	Dir      string // project-relative, slash-separated
	Outcome  Outcome
	Commit   string // commit the module is pinned to afterwards
	Previous string // locked commit before the operation, if any
	Warnings []string
	Err      *ModuleError
	Duration time.Duration
}

// Report collects the results of one operation run.
type Report struct {
	Op      Op
	Results []Result
}

// Err joins every module failure, nil if all modules succeeded.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Results {
		if res.Err != nil {
			errs = append(errs, res.Err)
		}
	}
	return errors.Join(errs...)
}

// Failed returns the number of failed modules.
func (r *Report) Failed() int {
	n := 0
	for _, res := range r.Results {
		if res.Err != nil {
			n++
		}
	}
	return n
}

// Summary returns a one-line count of outcomes, e.g.
// "install: 3 modules, 2 installed, 1 failed".
func (r *Report) Summary() string {
	counts := make(map[Outcome]int)
	for _, res := range r.Results {
		counts[res.Outcome]++
	}

	noun := "modules"
	if len(r.Results) == 1 {
		noun = "module"
	}
	parts := []string{fmt.Sprintf("%d %s", len(r.Results), noun)}
	for _, o := range outcomeOrder {
		if counts[o] > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", counts[o], o))
		}
	}
	return fmt.Sprintf("%s: %s", r.Op, strings.Join(parts, ", "))
}
