package git

import "fmt"

// UnresolvedRefError is returned when no resolution tier matches a reference.
type UnresolvedRefError struct {
	Ref  string
	Path string
}

func (e *UnresolvedRefError) Error() string {
	return fmt.Sprintf("reference %q does not resolve to a commit in %s", e.Ref, e.Path)
}

// AmbiguousRefError is returned when a short hash matches more than one commit.
type AmbiguousRefError struct {
	Ref        string
	Path       string
	Candidates int
}

func (e *AmbiguousRefError) Error() string {
	return fmt.Sprintf("short hash %q is ambiguous in %s: %d commits match, use a longer prefix", e.Ref, e.Path, e.Candidates)
}

// CommitNotFoundError is returned when a locked commit cannot be made
// available locally even after escalating fetches.
type CommitNotFoundError struct {
	Commit string
	Path   string
}

func (e *CommitNotFoundError) Error() string {
	return fmt.Sprintf("commit %s not found in %s after a full fetch: it may no longer exist upstream "+
		"(force-push or garbage collection); run 'gsm update' to re-pin to a currently valid commit", e.Commit, e.Path)
}
