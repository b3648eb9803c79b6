package git

import (
	"context"
	"regexp"
	"strings"
)

// shortHashPattern matches abbreviated commit ids git accepts (4 to 39 hex digits).
var shortHashPattern = regexp.MustCompile(`^[0-9a-fA-F]{4,39}$`)

// tier is one resolution attempt. ok=true ends resolution with commit;
// a non-nil error ends it with that error; otherwise the next tier runs.
type tier func(ctx context.Context, repo Repo, ref string) (commit string, ok bool, err error)

// Resolver turns human-supplied references into full commit ids.
// It never mutates the repository; history must already be complete.
type Resolver struct {
	Remote string

	listCommits func(ctx context.Context, path string) ([]string, error)
}

// NewResolver creates a resolver that qualifies bare branch names with remote.
func NewResolver(remote string) *Resolver {
	return &Resolver{Remote: remote, listCommits: ListCommits}
}

// Resolve returns the single commit ref names in repo.
// Tiers, in order: ref as given, <remote>/<ref>, refs/tags/<ref>, short hash.
func (r *Resolver) Resolve(ctx context.Context, repo Repo, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", &UnresolvedRefError{Ref: ref, Path: repo.Path}
	}

	for _, try := range r.tiers() {
		commit, ok, err := try(ctx, repo, ref)
		if err != nil {
			return "", err
		}
		if ok {
			return commit, nil
		}
	}
	return "", &UnresolvedRefError{Ref: ref, Path: repo.Path}
}

func (r *Resolver) tiers() []tier {
	return []tier{r.asGiven, r.remoteBranch, r.tagRef, r.shortHash}
}

func (r *Resolver) asGiven(ctx context.Context, repo Repo, ref string) (string, bool, error) {
	return VerifyCommit(ctx, repo.Path, ref)
}

func (r *Resolver) remoteBranch(ctx context.Context, repo Repo, ref string) (string, bool, error) {
	return VerifyCommit(ctx, repo.Path, r.Remote+"/"+ref)
}

func (r *Resolver) tagRef(ctx context.Context, repo Repo, ref string) (string, bool, error) {
	return VerifyCommit(ctx, repo.Path, "refs/tags/"+ref)
}

func (r *Resolver) shortHash(ctx context.Context, repo Repo, ref string) (string, bool, error) {
	if !shortHashPattern.MatchString(ref) {
		return "", false, nil
	}
	commits, err := r.listCommits(ctx, repo.Path)
	if err != nil {
		return "", false, err
	}

	matches := MatchPrefix(commits, ref)
	switch len(matches) {
	case 0:
		return "", false, nil
	case 1:
		return matches[0], true, nil
	default:
		return "", false, &AmbiguousRefError{Ref: ref, Path: repo.Path, Candidates: len(matches)}
	}
}

// MatchPrefix returns the distinct commits starting with prefix (case-insensitive).
func MatchPrefix(commits []string, prefix string) []string {
	prefix = strings.ToLower(prefix)
	seen := make(map[string]bool)
	var matches []string
	for _, c := range commits {
		c = strings.ToLower(c)
		if strings.HasPrefix(c, prefix) && !seen[c] {
			seen[c] = true
			matches = append(matches, c)
		}
	}
	return matches
}

// DesiredRef picks the reference to resolve for a module.
// An explicit ref always wins over a tag; with neither, the remote's default
// branch is used. defaultBranch is only called when needed.
func DesiredRef(ref, tag string, defaultBranch func() string) string {
	if ref = strings.TrimSpace(ref); ref != "" {
		return ref
	}
	if tag = strings.TrimSpace(tag); tag != "" {
		if strings.HasPrefix(tag, "refs/tags/") {
			return tag
		}
		return "refs/tags/" + tag
	}
	return defaultBranch()
}
