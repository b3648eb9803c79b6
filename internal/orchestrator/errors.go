package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/g4-api/git-submodules-manager/internal/git"
)

// Kind classifies why a module failed.
type Kind string

const (
	KindUnresolvedReference   Kind = "unresolved-reference"
	KindAmbiguousReference    Kind = "ambiguous-reference"
	KindCommitNotFound        Kind = "commit-not-found"
	KindMaterialization       Kind = "materialization-failure"
	KindManifestInconsistency Kind = "manifest-inconsistency"
	KindTransient             Kind = "transient-failure"
	KindLock                  Kind = "lock-failure"
)

// ErrUnknownModule is returned when a name filter matches no module.
var ErrUnknownModule = errors.New("unknown module")

// ModuleError is a failure of one module in one operation.
type ModuleError struct {
	Module string
	Op     Op
	Kind   Kind
	Err    error
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("%s: %s: %s: %v", e.Module, e.Op, e.Kind, e.Err)
}

func (e *ModuleError) Unwrap() error {
	return e.Err
}

// classify maps err to a Kind. ctx is the module's context, so a deadline
// that fired mid-command is recognized even when the command error text
// does not wrap it.
func classify(ctx context.Context, err error) Kind {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) || ctx.Err() != nil {
		return KindTransient
	}

	var unresolved *git.UnresolvedRefError
	var ambiguous *git.AmbiguousRefError
	var notFound *git.CommitNotFoundError
	switch {
	case errors.As(err, &unresolved):
		return KindUnresolvedReference
	case errors.As(err, &ambiguous):
		return KindAmbiguousReference
	case errors.As(err, &notFound):
		return KindCommitNotFound
	}
	// clone, fetch, registration and checkout failures
	return KindMaterialization
}
