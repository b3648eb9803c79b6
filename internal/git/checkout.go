package git

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// NormalizeSubtree converts a declared subtree to the slash-separated,
// repo-relative form git expects. "" means the whole repository.
func NormalizeSubtree(subtree string) string {
	subtree = strings.ReplaceAll(strings.TrimSpace(subtree), "\\", "/")
	if subtree == "" {
		return ""
	}
	subtree = strings.Trim(path.Clean(subtree), "/")
	if subtree == "." {
		return ""
	}
	return subtree
}

// SetSparse narrows the working tree to subtree using cone-mode sparse
// checkout. An empty or "." subtree restores the full tree.
func SetSparse(ctx context.Context, repoPath, subtree string) error {
	subtree = NormalizeSubtree(subtree)
	if subtree == "" {
		return disableSparse(ctx, repoPath)
	}
	if err := runGit(ctx, repoPath, "sparse-checkout", "set", "--cone", subtree); err != nil {
		return fmt.Errorf("failed to set sparse checkout to %s: %v", subtree, err)
	}
	return nil
}

// disableSparse turns sparse checkout off if it was ever enabled.
func disableSparse(ctx context.Context, repoPath string) error {
	out, err := outputGit(ctx, repoPath, "config", "--bool", "--get", "core.sparseCheckout")
	if err != nil || strings.TrimSpace(string(out)) != "true" {
		// Unset config exits 1: nothing to disable.
		return nil
	}
	if err := runGit(ctx, repoPath, "sparse-checkout", "disable"); err != nil {
		return fmt.Errorf("failed to disable sparse checkout: %v", err)
	}
	return nil
}

// CheckoutDetached detaches HEAD and checks out commit in one step, then
// verifies HEAD landed exactly on commit.
func CheckoutDetached(ctx context.Context, repoPath, commit string) error {
	if err := runGit(ctx, repoPath, "-c", "advice.detachedHead=false", "checkout", "--quiet", "--detach", commit); err != nil {
		return fmt.Errorf("failed to check out %s: %v", commit, err)
	}
	head, err := HeadCommit(ctx, repoPath)
	if err != nil {
		return err
	}
	if head != commit {
		return fmt.Errorf("checkout of %s left HEAD at %s", commit, head)
	}
	if !IsDetached(ctx, repoPath) {
		return fmt.Errorf("checkout of %s did not detach HEAD", commit)
	}
	return nil
}

// InitNested recursively initializes and updates the submodules of the
// repository at repoPath.
func InitNested(ctx context.Context, repoPath string) error {
	if err := runGit(ctx, repoPath, "submodule", "update", "--init", "--recursive"); err != nil {
		return fmt.Errorf("failed to initialize nested submodules: %v", err)
	}
	return nil
}
