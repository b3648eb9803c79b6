package git

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/g4-api/git-submodules-manager/internal/log"
)

// History makes sure a repository has enough objects and refs for
// resolution and for checking out arbitrary commits.
type History struct {
	Remote string
}

// NewHistory creates a history guarantor fetching from remote.
func NewHistory(remote string) *History {
	return &History{Remote: remote}
}

// step is a named best-effort fetch action.
type step struct {
	name string
	run  func(ctx context.Context, path string) error
}

// EnsureFull unshallows the repository if needed, fetches all branches and
// tags with pruning, points the remote HEAD at the real default branch, and
// fast-forwards local branches to their remote-tracking counterparts.
// Individual step failures are logged; an error is returned only when every
// network step failed.
func (h *History) EnsureFull(ctx context.Context, repo Repo) error {
	l := log.FromContext(ctx)

	var steps []step
	shallow, err := IsShallow(ctx, repo.Path)
	if err != nil {
		l.Debug("could not determine shallow state", "path", repo.Path, "error", err)
	}
	if shallow {
		steps = append(steps, step{"unshallow", h.unshallow})
	}
	steps = append(steps,
		step{"fetch", func(ctx context.Context, path string) error { return Fetch(ctx, path, h.Remote) }},
		step{"set-head", h.setHead},
	)

	var failed []error
	for _, s := range steps {
		if err := s.run(ctx, repo.Path); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			l.Warn("history step failed", "step", s.name, "path", repo.Path, "error", err)
			failed = append(failed, fmt.Errorf("%s: %w", s.name, err))
		}
	}
	if len(failed) == len(steps) {
		return fmt.Errorf("could not complete history for %s: %w", repo.Path, errors.Join(failed...))
	}

	if err := h.syncBranches(ctx, repo.Path); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		l.Warn("could not sync local branches", "path", repo.Path, "error", err)
	}
	return nil
}

// EnsureCommitAvailable makes commit locatable in the local object store,
// escalating: local check, prune-all fetch, all-refs mirroring fetch.
// Returns *CommitNotFoundError if the commit is still missing afterwards.
func (h *History) EnsureCommitAvailable(ctx context.Context, repo Repo, commit string) error {
	l := log.FromContext(ctx)

	rungs := []step{
		{"local", nil},
		{"fetch-all", h.fetchAll},
		{"fetch-mirror", h.fetchMirror},
	}
	for _, r := range rungs {
		if r.run != nil {
			l.Debug("commit not local, escalating fetch", "commit", commit, "rung", r.name, "path", repo.Path)
			if err := r.run(ctx, repo.Path); err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				l.Warn("fetch failed", "rung", r.name, "path", repo.Path, "error", err)
			}
		}
		ok, err := CommitExists(ctx, repo.Path, commit)
		if err != nil {
			return err
		}
		if ok {
			return nil
		}
	}
	return &CommitNotFoundError{Commit: commit, Path: repo.Path}
}

func (h *History) unshallow(ctx context.Context, path string) error {
	return runGit(ctx, path, "fetch", h.Remote, "--unshallow", "--tags", "--quiet")
}

// setHead points refs/remotes/<remote>/HEAD at the remote's default branch.
func (h *History) setHead(ctx context.Context, path string) error {
	return runGit(ctx, path, "remote", "set-head", h.Remote, "--auto")
}

// syncBranches moves each local branch that is not checked out to its
// remote-tracking ref. gsm never commits on branches, so local branches are
// only ever stale copies and must not shadow fresher remote state.
func (h *History) syncBranches(ctx context.Context, path string) error {
	out, err := outputGit(ctx, path, "for-each-ref", "--format=%(refname:short)", "refs/heads")
	if err != nil {
		return err
	}
	current := ""
	if !IsDetached(ctx, path) {
		if head, err := outputGit(ctx, path, "symbolic-ref", "--quiet", "--short", "HEAD"); err == nil {
			current = strings.TrimSpace(string(head))
		}
	}

	var errs []error
	for _, branch := range strings.Split(string(out), "\n") {
		branch = strings.TrimSpace(branch)
		if branch == "" || branch == current {
			continue
		}
		remoteRef := "refs/remotes/" + h.Remote + "/" + branch
		commit, ok, err := VerifyCommit(ctx, path, remoteRef)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if err := runGit(ctx, path, "update-ref", "refs/heads/"+branch, commit); err != nil {
			errs = append(errs, fmt.Errorf("%s: %v", branch, err))
		}
	}
	return errors.Join(errs...)
}

func (h *History) fetchAll(ctx context.Context, path string) error {
	args := []string{"fetch", "--all", "--prune", "--tags", "--quiet"}
	if shallow, _ := IsShallow(ctx, path); shallow {
		args = append(args, "--unshallow")
	}
	return runGit(ctx, path, args...)
}

func (h *History) fetchMirror(ctx context.Context, path string) error {
	return runGit(ctx, path, "fetch", h.Remote, "--tags", "--update-head-ok", "--quiet", "+refs/*:refs/*")
}
