package git

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Repo is a handle to a repository working copy on disk.
// It is owned by whoever created it; other callers borrow it per call.
type Repo struct {
	Path        string
	Initialized bool // Path holds a .git directory or gitfile
}

// OpenRepo returns a handle for path, detecting whether a git store exists yet.
func OpenRepo(path string) Repo {
	_, err := os.Lstat(filepath.Join(path, ".git"))
	return Repo{Path: path, Initialized: err == nil}
}

// IsGitfile reports whether path/.git is a file, which is how submodules
// and linked worktrees point at their real git directory.
func IsGitfile(path string) bool {
	info, err := os.Lstat(filepath.Join(path, ".git"))
	return err == nil && info.Mode().IsRegular()
}

var fullHashPattern = regexp.MustCompile(`^[0-9a-f]{40}$`)

// IsFullHash reports whether s is a full-length lowercase SHA-1 commit id.
func IsFullHash(s string) bool {
	return fullHashPattern.MatchString(s)
}

// IsShallow returns true if the repository has truncated history.
func IsShallow(ctx context.Context, path string) (bool, error) {
	out, err := outputGit(ctx, path, "rev-parse", "--is-shallow-repository")
	if err != nil {
		return false, fmt.Errorf("failed to check shallow state: %v", err)
	}
	return strings.TrimSpace(string(out)) == "true", nil
}

// HeadCommit returns the full commit hash HEAD points at.
func HeadCommit(ctx context.Context, path string) (string, error) {
	out, err := outputGit(ctx, path, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("failed to read HEAD: %v", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// IsDetached returns true if HEAD is not on a named branch.
func IsDetached(ctx context.Context, path string) bool {
	out, err := outputGit(ctx, path, "rev-parse", "--symbolic-full-name", "HEAD")
	return err == nil && strings.TrimSpace(string(out)) == "HEAD"
}

// CommitExists reports whether commit is present in the local object store.
func CommitExists(ctx context.Context, path, commit string) (bool, error) {
	res, err := probeGit(ctx, path, "cat-file", "-e", commit+"^{commit}")
	if err != nil {
		return false, err
	}
	return res.OK(), nil
}

// VerifyCommit resolves ref to exactly one commit object.
// Returns ok=false when ref does not name a commit; err is reserved for git
// failing to run at all.
func VerifyCommit(ctx context.Context, path, ref string) (commit string, ok bool, err error) {
	res, err := probeGit(ctx, path, "rev-parse", "--verify", "--quiet", "--end-of-options", ref+"^{commit}")
	if err != nil {
		return "", false, err
	}
	commit = strings.TrimSpace(res.Output)
	if !res.OK() || !IsFullHash(commit) {
		return "", false, nil
	}
	return commit, true, nil
}

// ListCommits returns every commit reachable from any ref.
func ListCommits(ctx context.Context, path string) ([]string, error) {
	out, err := outputGit(ctx, path, "rev-list", "--all")
	if err != nil {
		return nil, fmt.Errorf("failed to list commits: %v", err)
	}
	var commits []string
	for _, line := range strings.Split(string(out), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			commits = append(commits, line)
		}
	}
	return commits, nil
}

// DefaultBranch returns the remote's default branch name (e.g. "main").
// It reads the remote HEAD symbolic ref, then asks the remote directly via
// "git remote show", and finally returns fallback.
func DefaultBranch(ctx context.Context, path, remote, fallback string) string {
	output, err := outputGit(ctx, path, "symbolic-ref", "--quiet", "refs/remotes/"+remote+"/HEAD")
	if err == nil {
		// Output is like "refs/remotes/origin/main"
		ref := strings.TrimSpace(string(output))
		if branch := strings.TrimPrefix(ref, "refs/remotes/"+remote+"/"); branch != ref && branch != "" {
			return branch
		}
	}

	output, err = outputGit(ctx, path, "remote", "show", remote)
	if err == nil {
		if branch := parseRemoteShowHead(string(output)); branch != "" {
			return branch
		}
	}

	return fallback
}

// parseRemoteShowHead extracts the branch from the "HEAD branch: X" line of
// "git remote show" output. Returns "" when absent or unknown.
func parseRemoteShowHead(output string) string {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		branch, found := strings.CutPrefix(line, "HEAD branch:")
		if !found {
			continue
		}
		branch = strings.TrimSpace(branch)
		if branch == "" || branch == "(unknown)" {
			return ""
		}
		return branch
	}
	return ""
}

// Clone clones url into dest without checking out any files, naming the
// remote remote.
func Clone(ctx context.Context, url, dest, remote string) error {
	if err := runGit(ctx, "", "clone", "--no-checkout", "--origin", remote, "--", url, dest); err != nil {
		return fmt.Errorf("failed to clone %s: %v", url, err)
	}
	return nil
}

// Fetch fetches all branches and tags from remote, pruning stale remote-tracking refs.
func Fetch(ctx context.Context, path, remote string) error {
	refspec := fmt.Sprintf("+refs/heads/*:refs/remotes/%s/*", remote)
	if err := runGit(ctx, path, "fetch", remote, "--prune", "--tags", "--quiet", refspec); err != nil {
		return fmt.Errorf("failed to fetch %s: %v", remote, err)
	}
	return nil
}

// GetOriginURL gets the URL of remote for a repository
func GetOriginURL(ctx context.Context, path, remote string) (string, error) {
	output, err := outputGit(ctx, path, "remote", "get-url", remote)
	if err != nil {
		return "", fmt.Errorf("failed to get %s URL: %v", remote, err)
	}
	return strings.TrimSpace(string(output)), nil
}
