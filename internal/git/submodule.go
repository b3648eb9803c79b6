package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FindSubmodule looks up the submodule registered at path (slash-separated,
// relative to root). It returns the submodule name and whether path is both
// listed in .gitmodules and recorded as a gitlink in the index.
func FindSubmodule(ctx context.Context, root, path string) (name string, registered bool) {
	name = submoduleNameFor(ctx, root, path)
	if name == "" {
		return path, false
	}

	out, err := outputGit(ctx, root, "ls-files", "--stage", "--", path)
	if err != nil {
		return name, false
	}
	// Gitlinks are staged with mode 160000.
	return name, strings.HasPrefix(strings.TrimSpace(string(out)), "160000 ")
}

// submoduleNameFor returns the .gitmodules section name whose path is path.
func submoduleNameFor(ctx context.Context, root, path string) string {
	if _, err := os.Stat(filepath.Join(root, ".gitmodules")); err != nil {
		return ""
	}
	out, err := outputGit(ctx, root, "config", "--file", ".gitmodules", "--get-regexp", `^submodule\..*\.path$`)
	if err != nil {
		return ""
	}
	return parseSubmodulePaths(string(out))[path]
}

// parseSubmodulePaths maps path -> name from "git config --get-regexp" lines
// like "submodule.libs/foo.path libs/foo".
func parseSubmodulePaths(output string) map[string]string {
	paths := make(map[string]string)
	for _, line := range strings.Split(output, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), " ")
		if !ok {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(key, "submodule."), ".path")
		if name == "" || name == key {
			continue
		}
		paths[strings.TrimSpace(value)] = name
	}
	return paths
}

// AddSubmodule registers url at path, overwriting any stale registration.
func AddSubmodule(ctx context.Context, root, url, path string) error {
	if err := runGit(ctx, root, "submodule", "add", "--force", "--", url, path); err != nil {
		return fmt.Errorf("failed to add submodule %s: %v", path, err)
	}
	return nil
}

// UpdateSubmodule initializes and updates the submodule at path recursively.
func UpdateSubmodule(ctx context.Context, root, path string) error {
	if err := runGit(ctx, root, "submodule", "update", "--init", "--recursive", "--", path); err != nil {
		return fmt.Errorf("failed to update submodule %s: %v", path, err)
	}
	return nil
}

// DeinitSubmodule unregisters the submodule's working tree from .git/config.
func DeinitSubmodule(ctx context.Context, root, path string) error {
	if err := runGit(ctx, root, "submodule", "deinit", "--force", "--", path); err != nil {
		return fmt.Errorf("failed to deinit submodule %s: %v", path, err)
	}
	return nil
}

// UnstageSubmodule removes the gitlink for path from the index.
func UnstageSubmodule(ctx context.Context, root, path string) error {
	if err := runGit(ctx, root, "rm", "--cached", "-r", "--force", "--quiet", "--", path); err != nil {
		return fmt.Errorf("failed to remove %s from index: %v", path, err)
	}
	return nil
}

// RemoveSubmoduleConfig strips the submodule's sections from .gitmodules and
// .git/config and stages the updated .gitmodules. Missing sections are fine.
func RemoveSubmoduleConfig(ctx context.Context, root, name string) error {
	var errs []string
	section := "submodule." + name
	if _, err := os.Stat(filepath.Join(root, ".gitmodules")); err == nil {
		if err := removeSection(ctx, root, section, "--file", ".gitmodules"); err != nil {
			errs = append(errs, fmt.Sprintf(".gitmodules: %v", err))
		} else if err := runGit(ctx, root, "add", "--", ".gitmodules"); err != nil {
			errs = append(errs, fmt.Sprintf("stage .gitmodules: %v", err))
		}
	}
	if err := removeSection(ctx, root, section); err != nil {
		errs = append(errs, fmt.Sprintf(".git/config: %v", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("failed to remove config for submodule %s: %s", name, strings.Join(errs, "; "))
	}
	return nil
}

func removeSection(ctx context.Context, root, section string, fileArgs ...string) error {
	args := append([]string{"config"}, fileArgs...)
	args = append(args, "--remove-section", section)
	err := runGit(ctx, root, args...)
	if err != nil && strings.Contains(err.Error(), "no such section") {
		return nil
	}
	return err
}

// RemoveSubmoduleGitDir deletes the submodule's git directory under .git/modules.
func RemoveSubmoduleGitDir(ctx context.Context, root, name string) error {
	out, err := outputGit(ctx, root, "rev-parse", "--git-path", "modules/"+name)
	if err != nil {
		return fmt.Errorf("failed to locate git dir of submodule %s: %v", name, err)
	}
	gitDir := strings.TrimSpace(string(out))
	if !filepath.IsAbs(gitDir) {
		gitDir = filepath.Join(root, gitDir)
	}
	return os.RemoveAll(gitDir)
}

// StageGitlink records the submodule's current HEAD as the gitlink in the
// project index.
func StageGitlink(ctx context.Context, root, path string) error {
	if err := runGit(ctx, root, "add", "--", path); err != nil {
		return fmt.Errorf("failed to stage submodule %s: %v", path, err)
	}
	return nil
}
