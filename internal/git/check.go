package git

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ErrGitNotFound indicates git is not installed or not in PATH
var ErrGitNotFound = fmt.Errorf("git not found: please install git (https://git-scm.com)")

// CheckGit verifies that git is available in PATH
func CheckGit() error {
	_, err := exec.LookPath("git")
	if err != nil {
		return ErrGitNotFound
	}
	return nil
}

// IsInsideWorkTree returns true if the given path is inside a git work tree
func IsInsideWorkTree(ctx context.Context, path string) bool {
	out, err := outputGit(ctx, path, "rev-parse", "--is-inside-work-tree")
	return err == nil && strings.TrimSpace(string(out)) == "true"
}
