// Package cmd provides helpers for executing external commands with proper error handling.
//
// Every helper takes an explicit working directory instead of relying on the
// process's current directory, so a failing command can never leave the
// caller in a different directory than it started in.
//
// # Usage
//
//	// Fail on non-zero exit, stderr becomes the error text:
//	if err := cmd.RunContext(ctx, repoDir, "git", "fetch"); err != nil {
//	    return fmt.Errorf("fetch: %w", err)
//	}
//
//	// Capture stdout:
//	out, err := cmd.OutputContext(ctx, repoDir, "git", "rev-parse", "HEAD")
//
//	// Never fail on non-zero exit, inspect the result instead:
//	res, err := cmd.CombinedContext(ctx, repoDir, "git", "cat-file", "-e", sha)
//	if err == nil && res.OK() { ... }
//
// # Design Notes
//
// gsm shells out to the git CLI rather than using a Go git library. This
// keeps behavior identical to what users get from git on their machine,
// including SSH keys, credential helpers, and partial clone support.
package cmd
