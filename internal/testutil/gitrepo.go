package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// gitEnv isolates fixture commands from the developer's git configuration.
var gitEnv = []string{
	"GIT_AUTHOR_NAME=Test User",
	"GIT_AUTHOR_EMAIL=test@test.com",
	"GIT_COMMITTER_NAME=Test User",
	"GIT_COMMITTER_EMAIL=test@test.com",
	"GIT_CONFIG_NOSYSTEM=1",
}

// Git runs git in dir and returns trimmed combined output, failing the test on error.
func Git(t testing.TB, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), gitEnv...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %s (in %s) failed: %v\n%s", strings.Join(args, " "), dir, err, out)
	}
	return strings.TrimSpace(string(out))
}

// TempDir creates a temp directory and resolves macOS symlinks.
func TempDir(t testing.TB) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	return resolved
}

// AllowFileProtocol lets git clone submodules from local paths, which
// git >= 2.38.1 refuses by default. Uses t.Setenv, so callers cannot be parallel.
func AllowFileProtocol(t *testing.T) {
	t.Helper()
	t.Setenv("GIT_CONFIG_COUNT", "1")
	t.Setenv("GIT_CONFIG_KEY_0", "protocol.file.allow")
	t.Setenv("GIT_CONFIG_VALUE_0", "always")
}

// Remote is a bare origin repository with a seed clone for authoring history.
type Remote struct {
	t    testing.TB
	Path string // bare repository, usable as a clone URL
	seed string
}

// NewRemote creates a bare origin whose default branch is defaultBranch,
// with one initial commit containing README.md.
func NewRemote(t testing.TB, defaultBranch string) *Remote {
	t.Helper()
	dir := TempDir(t)
	r := &Remote{
		t:    t,
		Path: filepath.Join(dir, "origin.git"),
		seed: filepath.Join(dir, "seed"),
	}

	Git(t, dir, "init", "--bare", "-b", defaultBranch, r.Path)
	Git(t, dir, "init", "-b", defaultBranch, r.seed)
	Git(t, r.seed, "config", "commit.gpgsign", "false")
	Git(t, r.seed, "config", "tag.gpgsign", "false")
	Git(t, r.seed, "remote", "add", "origin", r.Path)
	r.Commit("README.md", "# origin\n", "Initial commit")
	return r
}

// Commit writes file (slash-separated, relative) with content on the current
// seed branch, commits, pushes, and returns the new commit id.
func (r *Remote) Commit(file, content, msg string) string {
	r.t.Helper()
	full := filepath.Join(r.seed, filepath.FromSlash(file))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		r.t.Fatalf("failed to create dir for %s: %v", file, err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		r.t.Fatalf("failed to write %s: %v", file, err)
	}
	Git(r.t, r.seed, "add", "--", file)
	Git(r.t, r.seed, "commit", "--quiet", "-m", msg)
	Git(r.t, r.seed, "push", "--quiet", "origin", "HEAD")
	return r.Head()
}

// Head returns the commit id at the seed's HEAD.
func (r *Remote) Head() string {
	r.t.Helper()
	return Git(r.t, r.seed, "rev-parse", "HEAD")
}

// Branch creates branch at the current seed HEAD, switches to it and pushes it.
func (r *Remote) Branch(name string) {
	r.t.Helper()
	Git(r.t, r.seed, "checkout", "--quiet", "-b", name)
	Git(r.t, r.seed, "push", "--quiet", "origin", name)
}

// Switch changes the seed's current branch.
func (r *Remote) Switch(name string) {
	r.t.Helper()
	Git(r.t, r.seed, "checkout", "--quiet", name)
}

// Tag creates an annotated tag at the seed's HEAD and pushes it.
func (r *Remote) Tag(name string) {
	r.t.Helper()
	Git(r.t, r.seed, "tag", "-a", "-m", name, name)
	Git(r.t, r.seed, "push", "--quiet", "origin", name)
}

// ForcePush rewrites the current branch to drop its last commit and expires
// the dropped objects from origin, simulating a history rewrite upstream.
func (r *Remote) ForcePush() {
	r.t.Helper()
	Git(r.t, r.seed, "reset", "--quiet", "--hard", "HEAD~1")
	Git(r.t, r.seed, "push", "--quiet", "--force", "origin", "HEAD")
	Git(r.t, r.Path, "reflog", "expire", "--expire=now", "--all")
	Git(r.t, r.Path, "gc", "--quiet", "--prune=now")
}

// Clone clones the origin into a fresh temp directory and returns its path.
func (r *Remote) Clone() string {
	r.t.Helper()
	dest := filepath.Join(TempDir(r.t), "clone")
	Git(r.t, "", "clone", "--quiet", r.Path, dest)
	return dest
}

// NewProject creates an empty git work tree to host modules, with one commit
// so submodules can be added to it.
func NewProject(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(TempDir(t), "project")
	Git(t, "", "init", "--quiet", "-b", "main", dir)
	Git(t, dir, "config", "commit.gpgsign", "false")
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte("*.lock\n"), 0o644); err != nil {
		t.Fatalf("failed to write .gitignore: %v", err)
	}
	Git(t, dir, "add", ".gitignore")
	Git(t, dir, "commit", "--quiet", "-m", "Initial commit")
	return dir
}
