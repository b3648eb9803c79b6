package orchestrator

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/g4-api/git-submodules-manager/internal/config"
	"github.com/g4-api/git-submodules-manager/internal/hooks"
	"github.com/g4-api/git-submodules-manager/internal/lockfile"
	"github.com/g4-api/git-submodules-manager/internal/log"
	"github.com/g4-api/git-submodules-manager/internal/manifest"
)

// Options configures an Orchestrator.
type Options struct {
	Root     string // project root
	Config   *config.Config
	Manifest *manifest.Manifest

	HookName   string            // run only this hook (--hook)
	NoHook     bool              // run no hooks (--no-hook)
	HookEnv    map[string]string // --arg values for hook placeholders
	HookOutput io.Writer         // nil means os.Stdout

	// Progress receives a line as each module starts. nil prints it
	// through the context logger.
	Progress func(msg string)

	Now func() time.Time // lock timestamps; nil means time.Now
}

// Orchestrator runs module operations for one project.
type Orchestrator struct {
	root     string
	cfg      *config.Config
	manifest *manifest.Manifest

	hookName   string
	noHook     bool
	hookEnv    map[string]string
	hookOutput io.Writer

	progress func(msg string)
	now      func() time.Time
}

// New creates an orchestrator. A nil Config means config.Default().
func New(opts Options) (*Orchestrator, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project root: %w", err)
	}
	cfg := opts.Config
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	m := opts.Manifest
	if m == nil {
		m = &manifest.Manifest{}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Orchestrator{
		root:       root,
		cfg:        cfg,
		manifest:   m,
		hookName:   opts.HookName,
		noHook:     opts.NoHook,
		hookEnv:    opts.HookEnv,
		hookOutput: opts.HookOutput,
		progress:   opts.Progress,
		now:        now,
	}, nil
}

// Install pins every module (or the one named by filter) to its desired
// reference. A lock entry whose state did not change is left untouched.
func (o *Orchestrator) Install(ctx context.Context, filter string) (*Report, error) {
	return o.run(ctx, OpInstall, filter)
}

// Update re-resolves desired references and rewrites lock entries,
// refreshing their timestamps even when the commit is unchanged.
func (o *Orchestrator) Update(ctx context.Context, filter string) (*Report, error) {
	return o.run(ctx, OpUpdate, filter)
}

// Restore checks out the locked commit of every lock entry without
// resolving any reference.
func (o *Orchestrator) Restore(ctx context.Context, filter string) (*Report, error) {
	return o.run(ctx, OpRestore, filter)
}

// Remove deletes module working copies and their lock entries, including
// lock entries whose module has left the manifest.
func (o *Orchestrator) Remove(ctx context.Context, filter string) (*Report, error) {
	return o.run(ctx, OpRemove, filter)
}

// target is one module an operation visits.
type target struct {
	name   string
	module *manifest.Module // nil for lock entries missing from the manifest
	entry  *lockfile.Entry  // nil when the module was never locked
	hint   string           // closest known name when neither is set
}

// run locks the lockfile, then processes targets one at a time, persisting
// the lock document after each module that changed it.
func (o *Orchestrator) run(ctx context.Context, op Op, filter string) (*Report, error) {
	l := log.FromContext(ctx)

	matches, err := hooks.SelectHooks(o.cfg.Hooks, o.hookName, o.noHook, hooks.CommandType(op))
	if err != nil {
		return nil, err
	}

	lockPath := o.cfg.LockfilePath(o.root)
	store, doc, err := lockfile.Open(lockPath)
	if err != nil {
		return nil, fmt.Errorf("open lockfile %s: %w", lockPath, err)
	}
	defer store.Close()

	targets, err := o.targets(op, doc, filter)
	if err != nil {
		return nil, err
	}

	report := &Report{Op: op}
	for i, t := range targets {
		if ctx.Err() != nil {
			for _, rest := range targets[i:] {
				report.Results = append(report.Results, Result{
					Module:   rest.name,
					Outcome:  OutcomeSkipped,
					Warnings: []string{"interrupted"},
				})
			}
			l.Warn("run interrupted", "op", op, "remaining", len(targets)-i)
			break
		}

		start := time.Now()
		res, next := o.runModule(ctx, op, t, doc)
		if next != doc {
			if err := store.Save(next); err != nil {
				res.fail(op, KindLock, fmt.Errorf("save lockfile %s: %w", store.Path(), err))
			}
			// kept in memory so a later successful save still records it
			doc = next
		}
		if res.Err == nil && res.Outcome != OutcomeSkipped && len(matches) > 0 {
			res.Warnings = append(res.Warnings, o.runHooks(ctx, op, t, res, matches)...)
		}
		res.Duration = time.Since(start)

		if res.Err != nil {
			l.Error("module failed", "module", t.name, "op", op, "kind", res.Err.Kind, "error", res.Err.Err)
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}

// runModule runs op for one module under the per-module deadline.
func (o *Orchestrator) runModule(ctx context.Context, op Op, t target, doc *lockfile.Document) (Result, *lockfile.Document) {
	mctx := ctx
	if o.cfg.CommandTimeout > 0 {
		var cancel context.CancelFunc
		mctx, cancel = context.WithTimeout(ctx, o.cfg.CommandTimeout)
		defer cancel()
	}

	msg := fmt.Sprintf("%s %s...", progressVerb[op], t.name)
	if o.progress != nil {
		o.progress(msg)
	} else {
		log.FromContext(ctx).Printf("%s\n", msg)
	}

	switch op {
	case OpInstall, OpUpdate:
		return o.pin(mctx, op, t, doc)
	case OpRestore:
		return o.restore(mctx, t, doc)
	default:
		return o.remove(mctx, t, doc)
	}
}

var progressVerb = map[Op]string{
	OpInstall: "Installing",
	OpUpdate:  "Updating",
	OpRestore: "Restoring",
	OpRemove:  "Removing",
}

// targets lists what op visits, scoped by filter.
func (o *Orchestrator) targets(op Op, doc *lockfile.Document, filter string) ([]target, error) {
	var all []target
	seen := make(map[string]bool)

	addEntries := func(orphansOnly bool) {
		for i := range doc.Modules {
			e := &doc.Modules[i]
			if seen[e.Name] {
				continue
			}
			mod, ok := o.manifest.Find(e.Name)
			if orphansOnly && ok {
				continue
			}
			seen[e.Name] = true
			t := target{name: e.Name, entry: e}
			if ok {
				t.module = &mod
			}
			all = append(all, t)
		}
	}
	addModules := func() {
		for i := range o.manifest.Modules {
			mod := &o.manifest.Modules[i]
			if seen[mod.Name] {
				continue
			}
			seen[mod.Name] = true
			t := target{name: mod.Name, module: mod}
			if e, ok := doc.Find(mod.Name); ok {
				t.entry = &e
			}
			all = append(all, t)
		}
	}

	switch op {
	case OpRestore:
		addEntries(false)
		addModules()
	case OpRemove:
		addModules()
		addEntries(true)
	default:
		addModules()
	}

	if filter == "" {
		return all, nil
	}
	for _, t := range all {
		if t.name == filter {
			return []target{t}, nil
		}
	}

	known := o.manifest.Names()
	for _, name := range doc.Names() {
		if _, ok := o.manifest.Find(name); !ok {
			known = append(known, name)
		}
	}
	if op == OpRemove {
		// already gone; re-running remove converges
		return []target{{name: filter, hint: suggest(filter, known)}}, nil
	}
	return nil, unknownModule(filter, known)
}

// fail records a module failure on the result.
func (r *Result) fail(op Op, kind Kind, err error) {
	r.Outcome = OutcomeFailed
	r.Err = &ModuleError{Module: r.Module, Op: op, Kind: kind, Err: err}
}

// runHooks runs matched hooks for a finished module and returns warnings.
func (o *Orchestrator) runHooks(ctx context.Context, op Op, t target, res Result, matches []hooks.HookMatch) []string {
	repo := ""
	switch {
	case t.module != nil:
		repo = t.module.Repo
	case t.entry != nil:
		repo = t.entry.Repo
	}

	hctx := hooks.Context{
		Name:    t.name,
		Path:    filepath.Join(o.root, filepath.FromSlash(res.Dir)),
		Commit:  res.Commit,
		Repo:    repo,
		Trigger: string(op),
		Root:    o.root,
		Env:     o.hookEnv,
		Output:  o.hookOutput,
	}

	var warnings []string
	for _, err := range hooks.RunForEach(ctx, matches, hctx, o.root) {
		warnings = append(warnings, err.Error())
	}
	return warnings
}
