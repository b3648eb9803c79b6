// Package manifest loads the module manifest, modules.json by default.
//
// The manifest is read once per run and never written by gsm.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned by Load when the manifest file does not exist.
var ErrNotFound = errors.New("manifest not found")

// Artifact copies files matching From (a glob relative to the module
// directory) into To (a directory relative to the project root).
type Artifact struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Module declares one pinned external repository.
type Module struct {
	Name      string     `json:"name"`
	Repo      string     `json:"repo"`                // clone URL
	LocalPath string     `json:"localPath,omitempty"` // subtree to keep, "" or "." for everything
	Ref       string     `json:"ref,omitempty"`       // branch, tag or commit; wins over Tag
	Tag       string     `json:"tag,omitempty"`
	Submodule bool       `json:"submodule,omitempty"` // nested repository instead of sparse clone
	TargetDir string     `json:"targetDir,omitempty"` // project-relative, default <modules_dir>/<name>
	Recursive bool       `json:"recursive,omitempty"` // init the module's own submodules
	Artifacts []Artifact `json:"artifacts,omitempty"`
}

// Dir returns the slash-separated, project-relative module directory.
func (m Module) Dir(modulesDir string) string {
	if dir := strings.TrimSpace(m.TargetDir); dir != "" {
		return path.Clean(strings.ReplaceAll(dir, "\\", "/"))
	}
	return path.Join(filepath.ToSlash(modulesDir), m.Name)
}

// CheckName rejects module names that cannot be a single directory name.
func CheckName(name string) error {
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("name %q must be a single directory name", name)
	}
	return nil
}

// CheckDir rejects module directories outside the project or equal to the
// project root itself.
func CheckDir(dir string) error {
	clean := path.Clean(strings.ReplaceAll(dir, "\\", "/"))
	if clean == "." || !filepath.IsLocal(filepath.FromSlash(clean)) {
		return fmt.Errorf("directory %q must be inside the project and not its root", dir)
	}
	return nil
}

// Manifest holds all declared modules in file order.
type Manifest struct {
	Modules []Module `json:"modules"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("invalid manifest %s: %w", path, err)
	}
	return &m, nil
}

// Validate checks names, repositories and paths of every module.
func (m *Manifest) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(m.Modules))
	for i, mod := range m.Modules {
		name := strings.TrimSpace(mod.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("modules[%d]: name is required", i))
			continue
		}
		if seen[name] {
			errs = append(errs, fmt.Errorf("modules[%d]: duplicate module name %q", i, name))
		}
		seen[name] = true

		if err := CheckName(mod.Name); err != nil {
			errs = append(errs, fmt.Errorf("module %q: %w", name, err))
		}
		if strings.TrimSpace(mod.Repo) == "" {
			errs = append(errs, fmt.Errorf("module %q: repo is required", name))
		}
		if mod.TargetDir != "" {
			if err := CheckDir(mod.TargetDir); err != nil {
				errs = append(errs, fmt.Errorf("module %q: targetDir: %w", name, err))
			}
		}
		if mod.LocalPath != "" && mod.LocalPath != "." && !filepath.IsLocal(filepath.FromSlash(mod.LocalPath)) {
			errs = append(errs, fmt.Errorf("module %q: localPath %q must be relative to the module repository", name, mod.LocalPath))
		}
		for j, a := range mod.Artifacts {
			if a.From == "" || a.To == "" {
				errs = append(errs, fmt.Errorf("module %q: artifacts[%d]: from and to are required", name, j))
				continue
			}
			if _, err := filepath.Match(a.From, ""); err != nil {
				errs = append(errs, fmt.Errorf("module %q: artifacts[%d]: invalid pattern %q: %w", name, j, a.From, err))
			} else if !filepath.IsLocal(filepath.FromSlash(a.From)) {
				errs = append(errs, fmt.Errorf("module %q: artifacts[%d]: from %q must stay inside the module directory", name, j, a.From))
			}
			if !filepath.IsLocal(filepath.FromSlash(a.To)) {
				errs = append(errs, fmt.Errorf("module %q: artifacts[%d]: to %q must be a relative path inside the project", name, j, a.To))
			}
		}
	}
	return errors.Join(errs...)
}

// Find returns the module with the given name.
func (m *Manifest) Find(name string) (Module, bool) {
	for _, mod := range m.Modules {
		if mod.Name == name {
			return mod, true
		}
	}
	return Module{}, false
}

// Names returns all module names in file order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Modules))
	for _, mod := range m.Modules {
		names = append(names, mod.Name)
	}
	return names
}
