package materialize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/g4-api/git-submodules-manager/internal/git"
	"github.com/g4-api/git-submodules-manager/internal/log"
)

// Sparse materializes a module as a plain clone with cone-mode sparse checkout.
type Sparse struct {
	spec Spec
}

func (s *Sparse) Strategy() Strategy { return StrategySparse }

// EnsurePresent clones without checkout when no repository exists at the
// target, then fetches; an existing repository is only fetched.
func (s *Sparse) EnsurePresent(ctx context.Context) (git.Repo, error) {
	l := log.FromContext(ctx)
	dir := s.spec.Dir()
	repo := git.OpenRepo(dir)

	if !repo.Initialized {
		if !isEmptyDir(dir) {
			return repo, fail("clone", fmt.Errorf("%s exists and is not a git repository", dir))
		}
		if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
			return repo, fail("clone", err)
		}
		l.Debug("cloning module", "module", s.spec.Name, "url", s.spec.URL, "dir", dir)
		if err := git.Clone(ctx, s.spec.URL, dir, s.spec.Remote); err != nil {
			return repo, fail("clone", err)
		}
		repo = git.OpenRepo(dir)
	}

	if err := git.Fetch(ctx, dir, s.spec.Remote); err != nil {
		return repo, fail("fetch", err)
	}
	return repo, nil
}

func (s *Sparse) Narrow(ctx context.Context, repo git.Repo) error {
	if err := git.SetSparse(ctx, repo.Path, s.spec.Subtree); err != nil {
		return fail("sparse-checkout", err)
	}
	return nil
}

func (s *Sparse) Checkout(ctx context.Context, repo git.Repo, commit string) error {
	if err := git.CheckoutDetached(ctx, repo.Path, commit); err != nil {
		return fail("checkout", err)
	}
	if s.spec.Recursive {
		if err := git.InitNested(ctx, repo.Path); err != nil {
			return fail("nested submodules", err)
		}
	}
	return nil
}

func (s *Sparse) Remove(ctx context.Context) Cleanup {
	var c Cleanup
	removeDir(&c, s.spec.Dir())
	return c
}
