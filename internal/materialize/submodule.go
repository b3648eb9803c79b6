package materialize

import (
	"context"
	"fmt"

	"github.com/g4-api/git-submodules-manager/internal/git"
	"github.com/g4-api/git-submodules-manager/internal/log"
)

// Submodule materializes a module as a nested repository of the project.
type Submodule struct {
	spec Spec
}

func (s *Submodule) Strategy() Strategy { return StrategySubmodule }

// EnsurePresent registers the submodule if it is not registered yet, then
// always runs a recursive init/update so partial registrations converge.
func (s *Submodule) EnsurePresent(ctx context.Context) (git.Repo, error) {
	l := log.FromContext(ctx)
	root, path := s.spec.Root, s.spec.TargetDir

	if !git.IsInsideWorkTree(ctx, root) {
		return git.Repo{Path: s.spec.Dir()}, fail("submodule add", fmt.Errorf("project root %s is not a git work tree", root))
	}

	if _, registered := git.FindSubmodule(ctx, root, path); !registered {
		l.Debug("registering submodule", "module", s.spec.Name, "url", s.spec.URL, "path", path)
		if err := git.AddSubmodule(ctx, root, s.spec.URL, path); err != nil {
			return git.Repo{Path: s.spec.Dir()}, fail("submodule add", err)
		}
	}
	if err := git.UpdateSubmodule(ctx, root, path); err != nil {
		return git.Repo{Path: s.spec.Dir()}, fail("submodule update", err)
	}
	return git.OpenRepo(s.spec.Dir()), nil
}

// Narrow applies sparse checkout inside the submodule when a subtree is declared.
func (s *Submodule) Narrow(ctx context.Context, repo git.Repo) error {
	if err := git.SetSparse(ctx, repo.Path, s.spec.Subtree); err != nil {
		return fail("sparse-checkout", err)
	}
	return nil
}

// Checkout detaches the submodule at commit and records it as the project's
// gitlink, so a later "submodule update" lands on the same commit.
func (s *Submodule) Checkout(ctx context.Context, repo git.Repo, commit string) error {
	if err := git.CheckoutDetached(ctx, repo.Path, commit); err != nil {
		return fail("checkout", err)
	}
	if s.spec.Recursive {
		if err := git.InitNested(ctx, repo.Path); err != nil {
			return fail("nested submodules", err)
		}
	}
	if err := git.StageGitlink(ctx, s.spec.Root, s.spec.TargetDir); err != nil {
		return fail("stage gitlink", err)
	}
	return nil
}

// Remove deinitializes, unregisters and strips configuration best-effort,
// then deletes the directory regardless of how the earlier steps went.
func (s *Submodule) Remove(ctx context.Context) Cleanup {
	var c Cleanup
	root, path := s.spec.Root, s.spec.TargetDir
	name, _ := git.FindSubmodule(ctx, root, path)

	c.soft("deinit", git.DeinitSubmodule(ctx, root, path))
	c.soft("unregister", git.UnstageSubmodule(ctx, root, path))
	c.soft("strip config", git.RemoveSubmoduleConfig(ctx, root, name))
	c.soft("remove git dir", git.RemoveSubmoduleGitDir(ctx, root, name))
	removeDir(&c, s.spec.Dir())
	return c
}
