package doctor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/g4-api/git-submodules-manager/internal/git"
	"github.com/g4-api/git-submodules-manager/internal/lockfile"
	"github.com/g4-api/git-submodules-manager/internal/manifest"
)

// checkLockEntries checks every entry on its own and against the manifest.
func checkLockEntries(root string, m *manifest.Manifest, doc *lockfile.Document) []Issue {
	var issues []Issue
	seen := make(map[string]bool)

	for _, e := range doc.Modules {
		if seen[e.Name] {
			issues = append(issues, Issue{
				Key:         e.Name,
				Description: "duplicate lock entry; only the first is used",
				Hint:        fmt.Sprintf("gsm update %s", e.Name),
			})
			continue
		}
		seen[e.Name] = true

		if !git.IsFullHash(e.ResolvedCommit) {
			issues = append(issues, Issue{
				Key:         e.Name,
				Description: fmt.Sprintf("locked commit %q is not a full commit id", e.ResolvedCommit),
				Hint:        fmt.Sprintf("gsm update %s", e.Name),
			})
		}

		if _, ok := m.Find(e.Name); !ok {
			issues = append(issues, orphanIssue(root, e))
			continue
		}

		if e.Repo == "" || e.TargetDir == "" {
			issues = append(issues, Issue{
				Key:         e.Name,
				Description: "lock entry is missing its repository or directory",
				Hint:        fmt.Sprintf("gsm restore %s", e.Name),
			})
		}
	}

	for i := range issues {
		issues[i].Category = CategoryLockfile
	}
	return issues
}

// orphanIssue reports an entry whose module left the manifest. Without a
// working copy the entry can simply be dropped.
func orphanIssue(root string, e lockfile.Entry) Issue {
	if e.TargetDir != "" {
		if _, err := os.Stat(filepath.Join(root, filepath.FromSlash(e.TargetDir))); err == nil {
			return Issue{
				Key:         e.Name,
				Description: fmt.Sprintf("not in the manifest, working copy still at %s", e.TargetDir),
				Hint:        fmt.Sprintf("gsm remove %s", e.Name),
			}
		}
	}
	return Issue{
		Key:         e.Name,
		Description: "not in the manifest and no working copy",
		FixAction:   FixDropEntry,
	}
}

// checkModules compares each locked manifest module with its working copy.
// healthy counts modules with no issue.
func checkModules(ctx context.Context, root, modulesDir, remote string, m *manifest.Manifest, doc *lockfile.Document) (issues []Issue, checked, healthy int) {
	for _, mod := range m.Modules {
		e, ok := doc.Find(mod.Name)
		if !ok || !git.IsFullHash(e.ResolvedCommit) {
			continue
		}
		checked++

		dir := e.TargetDir
		if dir == "" {
			dir = mod.Dir(modulesDir)
		}
		if issue, ok := checkModule(ctx, filepath.Join(root, filepath.FromSlash(dir)), remote, mod, e); ok {
			issue.Key = mod.Name
			issue.Category = CategoryModule
			issues = append(issues, issue)
			continue
		}
		healthy++
	}
	return issues, checked, healthy
}

func checkModule(ctx context.Context, path, remote string, mod manifest.Module, e lockfile.Entry) (Issue, bool) {
	repo := git.OpenRepo(path)
	if !repo.Initialized {
		return Issue{
			Description: "locked but not materialized",
			Hint:        "gsm restore " + mod.Name,
		}, true
	}

	if gitfile := git.IsGitfile(path); gitfile != mod.Submodule {
		have, want := "plain clone", "submodule"
		if gitfile {
			have, want = want, have
		}
		return Issue{
			Description: fmt.Sprintf("materialized as a %s, manifest declares a %s", have, want),
			Hint:        fmt.Sprintf("gsm remove %s && gsm install %s", mod.Name, mod.Name),
		}, true
	}

	if mod.Submodule {
		remote = "origin"
	}
	if url, err := git.GetOriginURL(ctx, path, remote); err == nil && url != mod.Repo {
		return Issue{
			Description: fmt.Sprintf("remote %s points at %s, manifest declares %s", remote, url, mod.Repo),
			Hint:        fmt.Sprintf("gsm remove %s && gsm install %s", mod.Name, mod.Name),
		}, true
	}

	head, err := git.HeadCommit(ctx, path)
	if err != nil {
		return Issue{
			Description: fmt.Sprintf("cannot read HEAD: %v", err),
			Hint:        "gsm restore " + mod.Name,
		}, true
	}
	if head != e.ResolvedCommit {
		return Issue{
			Description: fmt.Sprintf("at %s, locked at %s", short(head), short(e.ResolvedCommit)),
			Hint:        "gsm restore " + mod.Name,
		}, true
	}
	return Issue{}, false
}

// checkLeftovers finds temporary files of interrupted lockfile saves and
// artifact copies.
func checkLeftovers(root, lockPath string, m *manifest.Manifest) []Issue {
	candidates := []string{lockPath + ".tmp"}
	for _, mod := range m.Modules {
		for _, a := range mod.Artifacts {
			pattern := filepath.Join(root, filepath.FromSlash(a.To), "*.gsm-tmp")
			matches, _ := filepath.Glob(pattern)
			candidates = append(candidates, matches...)
		}
	}

	var issues []Issue
	seen := make(map[string]bool)
	for _, path := range candidates {
		if seen[path] {
			continue
		}
		seen[path] = true
		if info, err := os.Lstat(path); err != nil || !info.Mode().IsRegular() {
			continue
		}
		issues = append(issues, Issue{
			Key:         path,
			Description: "temporary file left by an interrupted run",
			FixAction:   FixDeleteFile,
			Category:    CategoryFiles,
		})
	}
	return issues
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
