package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/g4-api/git-submodules-manager/internal/git"
)

func TestSummary(t *testing.T) {
	t.Parallel()

	r := &Report{Op: OpInstall, Results: []Result{
		{Module: "a", Outcome: OutcomeInstalled},
		{Module: "b", Outcome: OutcomeFailed, Err: &ModuleError{Module: "b"}},
		{Module: "c", Outcome: OutcomeInstalled},
	}}
	if got, want := r.Summary(), "install: 3 modules, 2 installed, 1 failed"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
	if r.Failed() != 1 {
		t.Errorf("Failed() = %d, want 1", r.Failed())
	}

	one := &Report{Op: OpRemove, Results: []Result{{Module: "a", Outcome: OutcomeRemoved}}}
	if got, want := one.Summary(), "remove: 1 module, 1 removed"; got != want {
		t.Errorf("Summary() = %q, want %q", got, want)
	}
	if one.Err() != nil {
		t.Errorf("Err() = %v, want nil", one.Err())
	}
}

func TestClassify(t *testing.T) {
	t.Parallel()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	bg := context.Background()

	tests := []struct {
		name string
		ctx  context.Context
		err  error
		want Kind
	}{
		{"unresolved", bg, &git.UnresolvedRefError{Ref: "x"}, KindUnresolvedReference},
		{"ambiguous", bg, fmt.Errorf("resolve: %w", &git.AmbiguousRefError{Ref: "abcd", Candidates: 2}), KindAmbiguousReference},
		{"commit not found", bg, &git.CommitNotFoundError{Commit: "abc"}, KindCommitNotFound},
		{"deadline", bg, context.DeadlineExceeded, KindTransient},
		{"context done", cancelled, errors.New("signal: killed"), KindTransient},
		{"other", bg, errors.New("clone failed"), KindMaterialization},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := classify(tt.ctx, tt.err); got != tt.want {
				t.Errorf("classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSuggest(t *testing.T) {
	t.Parallel()

	names := []string{"lib", "docs", "tooling"}
	tests := []struct {
		input string
		want  string
	}{
		{"lb", "lib"},
		{"libb", "lib"},
		{"tool", "tooling"},
		{"zzz", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := suggest(tt.input, names); got != tt.want {
				t.Errorf("suggest(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestModuleError(t *testing.T) {
	t.Parallel()

	inner := &git.CommitNotFoundError{Commit: "abc"}
	err := &ModuleError{Module: "lib", Op: OpRestore, Kind: KindCommitNotFound, Err: inner}
	var target *git.CommitNotFoundError
	if !errors.As(err, &target) {
		t.Error("ModuleError does not unwrap to its cause")
	}
}
