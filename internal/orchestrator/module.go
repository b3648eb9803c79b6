package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/g4-api/git-submodules-manager/internal/artifact"
	"github.com/g4-api/git-submodules-manager/internal/git"
	"github.com/g4-api/git-submodules-manager/internal/lockfile"
	"github.com/g4-api/git-submodules-manager/internal/log"
	"github.com/g4-api/git-submodules-manager/internal/manifest"
	"github.com/g4-api/git-submodules-manager/internal/materialize"
)

// submoduleRemote is the remote name git gives submodule clones.
const submoduleRemote = "origin"

// spec builds the materializer input for a module at dir.
func (o *Orchestrator) spec(name, url, dir, subtree string, mod *manifest.Module, submodule bool) materialize.Spec {
	s := materialize.Spec{
		Name:      name,
		URL:       url,
		Root:      o.root,
		TargetDir: dir,
		Subtree:   subtree,
		Remote:    o.cfg.Remote,
	}
	if mod != nil {
		s.Recursive = mod.Recursive
	}
	if submodule {
		s.Remote = submoduleRemote
	}
	return s
}

// pin runs install or update for one module.
func (o *Orchestrator) pin(ctx context.Context, op Op, t target, doc *lockfile.Document) (Result, *lockfile.Document) {
	l := log.FromContext(ctx)
	mod := t.module
	dir := mod.Dir(o.cfg.ModulesDir)
	res := Result{Module: t.name, Dir: dir}
	if t.entry != nil {
		res.Previous = t.entry.ResolvedCommit
		if t.entry.TargetDir != "" && t.entry.TargetDir != dir {
			res.Warnings = append(res.Warnings, fmt.Sprintf("module moved from %s to %s; the old directory was left in place", t.entry.TargetDir, dir))
		}
	}

	if err := manifest.CheckDir(dir); err != nil {
		res.fail(op, KindManifestInconsistency, err)
		return res, doc
	}

	spec := o.spec(t.name, mod.Repo, dir, mod.LocalPath, mod, mod.Submodule)
	m := materialize.New(spec, mod.Submodule)
	res.Strategy = m.Strategy()

	repo, err := m.EnsurePresent(ctx)
	if err != nil {
		res.fail(op, classify(ctx, err), err)
		return res, doc
	}

	if err := git.NewHistory(spec.Remote).EnsureFull(ctx, repo); err != nil {
		res.fail(op, classify(ctx, err), err)
		return res, doc
	}

	ref := git.DesiredRef(mod.Ref, mod.Tag, func() string {
		return git.DefaultBranch(ctx, repo.Path, spec.Remote, o.cfg.DefaultBranch)
	})
	commit, err := git.NewResolver(spec.Remote).Resolve(ctx, repo, ref)
	if err != nil {
		res.fail(op, classify(ctx, err), err)
		return res, doc
	}
	l.Debug("resolved reference", "module", t.name, "ref", ref, "commit", commit)

	if err := checkout(ctx, m, repo, commit); err != nil {
		res.fail(op, classify(ctx, err), err)
		return res, doc
	}
	res.Commit = commit

	entry := lockfile.Entry{
		Name:           t.name,
		Repo:           mod.Repo,
		TargetDir:      dir,
		LocalPath:      git.NormalizeSubtree(mod.LocalPath),
		ResolvedCommit: commit,
	}

	next := doc
	switch {
	case op == OpInstall && t.entry != nil && t.entry.SameState(entry):
		res.Outcome = OutcomeUnchanged
	case op == OpInstall && t.entry == nil:
		res.Outcome = OutcomeInstalled
		next = lockfile.Upsert(doc, entry, o.now())
	default:
		res.Outcome = OutcomeUpdated
		next = lockfile.Upsert(doc, entry, o.now())
	}

	res.Warnings = append(res.Warnings, o.copyArtifacts(ctx, mod, dir)...)
	return res, next
}

// restore checks out the locked commit of one module.
func (o *Orchestrator) restore(ctx context.Context, t target, doc *lockfile.Document) (Result, *lockfile.Document) {
	res := Result{Module: t.name}

	if t.entry == nil {
		res.Dir = t.module.Dir(o.cfg.ModulesDir)
		res.Outcome = OutcomeSkipped
		res.Warnings = append(res.Warnings, "not in the lockfile; run 'gsm install' to pin it")
		log.FromContext(ctx).Warn("module has no lock entry", "module", t.name)
		return res, doc
	}
	if t.module == nil {
		res.Dir = t.entry.TargetDir
		res.fail(OpRestore, KindManifestInconsistency,
			fmt.Errorf("lock entry %q has no module in the manifest", t.name))
		return res, doc
	}

	mod, locked := t.module, *t.entry
	res.Previous = locked.ResolvedCommit
	if !git.IsFullHash(locked.ResolvedCommit) {
		res.Dir = locked.TargetDir
		res.fail(OpRestore, KindCommitNotFound,
			fmt.Errorf("locked commit %q is not a full commit id; run 'gsm update %s' to re-pin", locked.ResolvedCommit, t.name))
		return res, doc
	}

	// Entries written by older tools may lack fields; fill them from the
	// manifest and re-pin the same commit.
	repaired := locked
	if repaired.Repo == "" {
		repaired.Repo = mod.Repo
	}
	if repaired.TargetDir == "" {
		repaired.TargetDir = mod.Dir(o.cfg.ModulesDir)
		repaired.LocalPath = git.NormalizeSubtree(mod.LocalPath)
	}
	res.Dir = repaired.TargetDir
	if err := manifest.CheckDir(repaired.TargetDir); err != nil {
		res.fail(OpRestore, KindManifestInconsistency, fmt.Errorf("lock entry %q: %w", t.name, err))
		return res, doc
	}

	spec := o.spec(t.name, repaired.Repo, repaired.TargetDir, repaired.LocalPath, mod, mod.Submodule)
	m := materialize.New(spec, mod.Submodule)
	res.Strategy = m.Strategy()

	repo, err := m.EnsurePresent(ctx)
	if err != nil {
		res.fail(OpRestore, classify(ctx, err), err)
		return res, doc
	}
	if err := git.NewHistory(spec.Remote).EnsureCommitAvailable(ctx, repo, locked.ResolvedCommit); err != nil {
		res.fail(OpRestore, classify(ctx, err), err)
		return res, doc
	}
	if err := checkout(ctx, m, repo, locked.ResolvedCommit); err != nil {
		res.fail(OpRestore, classify(ctx, err), err)
		return res, doc
	}
	res.Commit = locked.ResolvedCommit
	res.Outcome = OutcomeRestored

	next := doc
	if !repaired.SameState(locked) {
		next = lockfile.Upsert(doc, repaired, o.now())
	}

	res.Warnings = append(res.Warnings, o.copyArtifacts(ctx, mod, repaired.TargetDir)...)
	return res, next
}

// remove deletes one module's working copy and lock entry.
func (o *Orchestrator) remove(ctx context.Context, t target, doc *lockfile.Document) (Result, *lockfile.Document) {
	l := log.FromContext(ctx)
	res := Result{Module: t.name}

	if t.entry == nil && t.module == nil {
		res.Outcome = OutcomeSkipped
		res.Warnings = append(res.Warnings, "not in the manifest or the lockfile; nothing to remove")
		if t.hint != "" {
			res.Warnings = append(res.Warnings, fmt.Sprintf("did you mean %q?", t.hint))
		}
		return res, doc
	}

	var dir, url string
	var submodule bool
	switch {
	case t.entry != nil && t.entry.TargetDir != "":
		dir, url = t.entry.TargetDir, t.entry.Repo
	case t.module != nil:
		dir, url = t.module.Dir(o.cfg.ModulesDir), t.module.Repo
	default:
		dir = o.defaultDir(t.name)
	}
	if t.module != nil {
		submodule = t.module.Submodule
	} else {
		// The manifest no longer says; a gitfile means a submodule.
		submodule = git.IsGitfile(filepath.Join(o.root, filepath.FromSlash(dir)))
	}
	res.Dir = dir
	if err := manifest.CheckDir(dir); err != nil {
		res.fail(OpRemove, KindManifestInconsistency, fmt.Errorf("refusing to delete: %w", err))
		return res, doc
	}

	m := materialize.New(o.spec(t.name, url, dir, "", t.module, submodule), submodule)
	res.Strategy = m.Strategy()

	cleanup := m.Remove(ctx)
	for _, w := range cleanup.Warnings() {
		l.Warn("cleanup step failed", "module", t.name, "step", w.Step, "error", w.Err)
		res.Warnings = append(res.Warnings, fmt.Sprintf("%s: %v", w.Step, w.Err))
	}
	if err := cleanup.Err(); err != nil {
		res.fail(OpRemove, classify(ctx, err), err)
		return res, doc
	}

	res.Outcome = OutcomeRemoved
	if t.entry == nil {
		return res, doc
	}
	res.Previous = t.entry.ResolvedCommit
	return res, lockfile.Remove(doc, t.name)
}

func (o *Orchestrator) defaultDir(name string) string {
	return manifest.Module{Name: name}.Dir(o.cfg.ModulesDir)
}

// checkout narrows the working tree, then detaches at commit.
func checkout(ctx context.Context, m materialize.Materializer, repo git.Repo, commit string) error {
	if err := m.Narrow(ctx, repo); err != nil {
		return err
	}
	return m.Checkout(ctx, repo, commit)
}

// copyArtifacts runs the module's artifact rules; failures become warnings.
func (o *Orchestrator) copyArtifacts(ctx context.Context, mod *manifest.Module, dir string) []string {
	if len(mod.Artifacts) == 0 {
		return nil
	}
	rules := make([]artifact.Rule, len(mod.Artifacts))
	for i, a := range mod.Artifacts {
		rules[i] = artifact.Rule{From: a.From, To: a.To}
	}

	copied, err := artifact.Copy(ctx, filepath.Join(o.root, filepath.FromSlash(dir)), o.root, rules)
	log.FromContext(ctx).Debug("artifacts copied", "module", mod.Name, "count", len(copied))
	if err != nil {
		log.FromContext(ctx).Warn("artifact copy failed", "module", mod.Name, "error", err)
		return []string{fmt.Sprintf("artifacts: %v", err)}
	}
	return nil
}
