// Package git provides the git operations gsm needs, via shell commands.
//
// All operations call the git CLI with an explicit "-C <dir>" instead of
// changing the process working directory, so every invocation is scoped and
// a failing command cannot leave later modules running from the wrong place.
//
// # Resolution
//
//   - [Resolver.Resolve]: turn a branch, tag, full or short hash into one commit
//   - [DesiredRef]: pick the reference to resolve from a module declaration
//   - [DefaultBranch]: discover the remote's default branch
//
// # History
//
//   - [History.EnsureFull]: unshallow and fetch all branches and tags
//   - [History.EnsureCommitAvailable]: escalate fetches until a locked commit exists
//
// # Working copies
//
//   - [Clone], [Fetch]: plain clones without checkout
//   - [SetSparse]: cone-mode sparse checkout scoped to a subtree
//   - [CheckoutDetached]: detached HEAD at an exact commit
//   - [AddSubmodule], [UpdateSubmodule], [DeinitSubmodule]: nested repositories
package git
