package main

import (
	"context"
	"path/filepath"

	"github.com/g4-api/git-submodules-manager/internal/git"
	"github.com/g4-api/git-submodules-manager/internal/lockfile"
	"github.com/g4-api/git-submodules-manager/internal/manifest"
	"github.com/g4-api/git-submodules-manager/internal/materialize"
	"github.com/g4-api/git-submodules-manager/internal/ui/static"
	"github.com/g4-api/git-submodules-manager/internal/ui/styles"
)

// Module states reported by gsm status.
const (
	stateOK       = "ok"
	stateDrift    = "drift"
	stateMissing  = "missing"
	stateUnlocked = "unlocked"
	stateOrphan   = "orphan"
)

var statusHeaders = []string{"MODULE", "STRATEGY", "DIR", "LOCKED", "HEAD", "STATE"}

type statusRow struct {
	Name     string `json:"name"`
	Strategy string `json:"strategy,omitempty"`
	Dir      string `json:"dir"`
	Locked   string `json:"locked,omitempty"`
	Head     string `json:"head,omitempty"`
	State    string `json:"state"`
}

func (r statusRow) cells() []string {
	state := r.State
	switch r.State {
	case stateMissing:
		state = styles.Error(state)
	case stateDrift, stateUnlocked, stateOrphan:
		state = styles.Warning(state)
	}
	return []string{r.Name, r.Strategy, r.Dir, static.ShortCommit(r.Locked), static.ShortCommit(r.Head), state}
}

// collectStatus lists manifest modules in order, then orphan lock entries.
func collectStatus(ctx context.Context, root, modulesDir string, m *manifest.Manifest, doc *lockfile.Document) []statusRow {
	var rows []statusRow
	for _, mod := range m.Modules {
		row := statusRow{Name: mod.Name, Dir: mod.Dir(modulesDir), Strategy: string(strategyOf(mod.Submodule))}
		if e, ok := doc.Find(mod.Name); ok {
			row.Locked = e.ResolvedCommit
			if e.TargetDir != "" {
				row.Dir = e.TargetDir
			}
		}
		row.Head = headOf(ctx, root, row.Dir)
		row.State = stateOf(row.Locked, row.Head, true)
		rows = append(rows, row)
	}
	for _, e := range doc.Modules {
		if _, ok := m.Find(e.Name); ok {
			continue
		}
		row := statusRow{Name: e.Name, Dir: e.TargetDir, Locked: e.ResolvedCommit}
		row.Head = headOf(ctx, root, row.Dir)
		row.State = stateOf(row.Locked, row.Head, false)
		rows = append(rows, row)
	}
	return rows
}

// stateOf derives a module state from its locked and checked-out commits.
func stateOf(locked, head string, inManifest bool) string {
	switch {
	case !inManifest:
		return stateOrphan
	case locked == "":
		return stateUnlocked
	case head == "":
		return stateMissing
	case head == locked:
		return stateOK
	default:
		return stateDrift
	}
}

func strategyOf(submodule bool) materialize.Strategy {
	if submodule {
		return materialize.StrategySubmodule
	}
	return materialize.StrategySparse
}

// headOf returns the commit checked out in dir, "" if dir holds no repository.
func headOf(ctx context.Context, root, dir string) string {
	if dir == "" {
		return ""
	}
	path := filepath.Join(root, filepath.FromSlash(dir))
	if !git.OpenRepo(path).Initialized {
		return ""
	}
	head, err := git.HeadCommit(ctx, path)
	if err != nil {
		return ""
	}
	return head
}
