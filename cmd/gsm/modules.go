package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/g4-api/git-submodules-manager/internal/config"
	"github.com/g4-api/git-submodules-manager/internal/hooks"
	"github.com/g4-api/git-submodules-manager/internal/log"
	"github.com/g4-api/git-submodules-manager/internal/manifest"
	"github.com/g4-api/git-submodules-manager/internal/orchestrator"
	"github.com/g4-api/git-submodules-manager/internal/output"
	"github.com/g4-api/git-submodules-manager/internal/ui/progress"
	"github.com/g4-api/git-submodules-manager/internal/ui/static"
)

// runModuleOp runs op over the project and prints the report.
// Any failed module makes the command fail.
func runModuleOp(ctx context.Context, op orchestrator.Op, filter string, hf hookFlags) error {
	cfg := config.FromContext(ctx)
	root := config.WorkDirFromContext(ctx)
	l := log.FromContext(ctx)

	m, err := loadManifest(cfg, root, op)
	if err != nil {
		return err
	}

	env, err := hooks.ParseEnvWithStdin(hf.args, os.Stdin)
	if err != nil {
		return err
	}

	opts := orchestrator.Options{
		Root:     root,
		Config:   cfg,
		Manifest: m,
		HookName: hf.hook,
		NoHook:   hf.noHook,
		HookEnv:  env,
	}
	var sp *progress.Spinner
	if !l.Verbose() && !quiet && progress.Enabled(os.Stderr) {
		sp = progress.NewSpinner(os.Stderr, "")
		opts.Progress = sp.Update
		sp.Start()
		defer sp.Stop()
	}

	o, err := orchestrator.New(opts)
	if err != nil {
		return err
	}

	l.Debug("running operation", "op", op, "filter", filter, "modules", len(m.Modules))

	var report *orchestrator.Report
	switch op {
	case orchestrator.OpInstall:
		report, err = o.Install(ctx, filter)
	case orchestrator.OpUpdate:
		report, err = o.Update(ctx, filter)
	case orchestrator.OpRestore:
		report, err = o.Restore(ctx, filter)
	case orchestrator.OpRemove:
		report, err = o.Remove(ctx, filter)
	default:
		return fmt.Errorf("unknown operation %q", op)
	}
	if sp != nil {
		sp.Stop()
	}
	if err != nil {
		return err
	}

	output.FromContext(ctx).Styled(static.RenderReport(report))
	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d of %d modules failed", n, len(report.Results))
	}
	return nil
}

// loadManifest reads the project manifest. remove works without one so
// lock entries can be cleaned up after the manifest was deleted.
func loadManifest(cfg *config.Config, root string, op orchestrator.Op) (*manifest.Manifest, error) {
	m, err := manifest.Load(cfg.ManifestPath(root))
	if errors.Is(err, manifest.ErrNotFound) && op == orchestrator.OpRemove {
		return &manifest.Manifest{}, nil
	}
	return m, err
}
