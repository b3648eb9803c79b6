//go:build integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/g4-api/git-submodules-manager/internal/config"
	"github.com/g4-api/git-submodules-manager/internal/log"
	"github.com/g4-api/git-submodules-manager/internal/manifest"
	"github.com/g4-api/git-submodules-manager/internal/output"
)

// testContext returns a context carrying default config, root as the
// project directory, a silent logger and a printer writing to out.
func testContext(t *testing.T, root string, out *bytes.Buffer) context.Context {
	t.Helper()
	cfg := config.Default()
	ctx := context.Background()
	ctx = log.WithLogger(ctx, log.New(io.Discard, false, true))
	ctx = output.WithPrinter(ctx, out)
	ctx = config.WithConfig(ctx, &cfg)
	ctx = config.WithWorkDir(ctx, root)
	return ctx
}

// writeManifest writes modules as the project manifest.
func writeManifest(t *testing.T, root string, modules ...manifest.Module) {
	t.Helper()
	data, err := json.MarshalIndent(manifest.Manifest{Modules: modules}, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, config.DefaultManifest), data, 0o644); err != nil {
		t.Fatal(err)
	}
}
