// Package artifact copies files out of a materialized module into the project.
package artifact

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/g4-api/git-submodules-manager/internal/log"
)

// Rule copies files matching From, a glob relative to the module directory,
// into To, a directory relative to the project root.
type Rule struct {
	From string
	To   string
}

// inGitDir reports whether relPath is inside a .git directory.
func inGitDir(relPath string) bool {
	return slices.Contains(strings.Split(filepath.ToSlash(relPath), "/"), ".git")
}

// CopyFile copies src to dst, creating parent directories as needed.
// An existing dst is replaced atomically. Preserves the source file's
// permission bits.
func CopyFile(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer srcFile.Close()

	tmp := dst + ".gsm-tmp"
	dstFile, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, srcInfo.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		dstFile.Close()
		os.Remove(tmp) // clean up partial tmp
		return err
	}
	if err := dstFile.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	// OpenFile mode is filtered by umask
	if err := os.Chmod(tmp, srcInfo.Mode().Perm()); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, dst); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

// Copy applies rules for the module checked out at moduleDir. Only regular
// files are copied; each lands in its rule's destination under its base
// name. Returns the project-relative paths written. A rule matching
// nothing is not an error.
func Copy(ctx context.Context, moduleDir, root string, rules []Rule) ([]string, error) {
	l := log.FromContext(ctx)

	var copied []string
	var errs []error

	for _, rule := range rules {
		if !filepath.IsLocal(filepath.FromSlash(rule.From)) || !filepath.IsLocal(filepath.FromSlash(rule.To)) {
			errs = append(errs, fmt.Errorf("artifact %q -> %q: paths must stay inside the module and the project", rule.From, rule.To))
			continue
		}
		matches, err := filepath.Glob(filepath.Join(moduleDir, filepath.FromSlash(rule.From)))
		if err != nil {
			errs = append(errs, fmt.Errorf("artifact %q: %w", rule.From, err))
			continue
		}
		if len(matches) == 0 {
			l.Debug("artifact: pattern matched nothing", "from", rule.From, "module", moduleDir)
			continue
		}

		for _, src := range matches {
			rel, err := filepath.Rel(moduleDir, src)
			if err != nil || inGitDir(rel) {
				continue
			}
			info, err := os.Stat(src)
			if err != nil || !info.Mode().IsRegular() {
				continue
			}

			dstRel := filepath.Join(filepath.FromSlash(rule.To), filepath.Base(src))
			if err := CopyFile(src, filepath.Join(root, dstRel)); err != nil {
				errs = append(errs, fmt.Errorf("artifact %s: %w", rel, err))
				continue
			}
			l.Debug("artifact: copied", "from", rel, "to", dstRel)
			copied = append(copied, filepath.ToSlash(dstRel))
		}
	}

	return copied, errors.Join(errs...)
}
