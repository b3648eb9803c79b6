package git

import (
	"context"

	"github.com/g4-api/git-submodules-manager/internal/cmd"
)

// gitArgs prepends -C <dir> to args if dir is non-empty.
func gitArgs(dir string, args []string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

// runGit executes a git command with context support and verbose logging.
func runGit(ctx context.Context, dir string, args ...string) error {
	return cmd.RunContext(ctx, "", "git", gitArgs(dir, args)...)
}

// outputGit executes a git command with context support and verbose logging,
// returning stdout.
func outputGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	return cmd.OutputContext(ctx, "", "git", gitArgs(dir, args)...)
}

// probeGit executes a git command whose exit status is the answer.
// A non-nil error means git could not run at all (or ctx ended).
func probeGit(ctx context.Context, dir string, args ...string) (cmd.Result, error) {
	return cmd.CombinedContext(ctx, "", "git", gitArgs(dir, args)...)
}
