//go:build integration

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/g4-api/git-submodules-manager/internal/manifest"
	"github.com/g4-api/git-submodules-manager/internal/testutil"
)

func execute(t *testing.T, cmd *cobra.Command, root string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd.SetContext(testContext(t, root, &out))
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	err := cmd.Execute()
	return out.String(), err
}

// TestInstallStatusRestore tests the lock round trip through the CLI.
//
// Scenario: User runs `gsm install`, deletes the modules, runs `gsm restore`
// Expected: status reports ok after install, missing after deletion, ok after restore
func TestInstallStatusRestore(t *testing.T) {
	t.Parallel()

	remote := testutil.NewRemote(t, "main")
	commit := remote.Commit("lib.txt", "v1\n", "v1")
	root := testutil.NewProject(t)
	writeManifest(t, root, manifest.Module{Name: "lib", Repo: remote.Path})

	out, err := execute(t, newInstallCmd(), root, "--no-hook")
	if err != nil {
		t.Fatalf("install failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "install: 1 module, 1 installed") {
		t.Errorf("install output missing summary:\n%s", out)
	}

	rows := status(t, root)
	if len(rows) != 1 || rows[0].State != stateOK || rows[0].Locked != commit {
		t.Fatalf("status after install = %+v", rows)
	}

	if err := os.RemoveAll(filepath.Join(root, "modules")); err != nil {
		t.Fatal(err)
	}
	if rows := status(t, root); rows[0].State != stateMissing {
		t.Errorf("status after delete = %+v, want missing", rows)
	}

	out, err = execute(t, newRestoreCmd(), root)
	if err != nil {
		t.Fatalf("restore failed: %v\n%s", err, out)
	}
	if rows := status(t, root); rows[0].State != stateOK || rows[0].Head != commit {
		t.Errorf("status after restore = %+v, want ok at %s", rows, commit)
	}
}

// TestInstall_FailedModuleFailsCommand tests the exit status on failure.
//
// Scenario: One module names a branch that does not exist
// Expected: the command returns an error, the good module is still installed
func TestInstall_FailedModuleFailsCommand(t *testing.T) {
	t.Parallel()

	good := testutil.NewRemote(t, "main")
	bad := testutil.NewRemote(t, "main")
	root := testutil.NewProject(t)
	writeManifest(t, root,
		manifest.Module{Name: "bad", Repo: bad.Path, Ref: "missing"},
		manifest.Module{Name: "good", Repo: good.Path},
	)

	out, err := execute(t, newInstallCmd(), root)
	if err == nil || !strings.Contains(err.Error(), "1 of 2 modules failed") {
		t.Fatalf("install error = %v, want one failure\n%s", err, out)
	}
	if !strings.Contains(out, "unresolved-reference") {
		t.Errorf("output does not name the failure kind:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(root, "modules", "good", ".git")); err != nil {
		t.Errorf("good module not installed: %v", err)
	}
}

// TestRemove_WithoutManifest tests cleanup after the manifest is gone.
//
// Scenario: User installs, deletes modules.json, runs `gsm remove`
// Expected: orphan lock entry and directory are removed
func TestRemove_WithoutManifest(t *testing.T) {
	t.Parallel()

	remote := testutil.NewRemote(t, "main")
	root := testutil.NewProject(t)
	writeManifest(t, root, manifest.Module{Name: "lib", Repo: remote.Path})

	if out, err := execute(t, newInstallCmd(), root); err != nil {
		t.Fatalf("install failed: %v\n%s", err, out)
	}
	if err := os.Remove(filepath.Join(root, "modules.json")); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, newRemoveCmd(), root)
	if err != nil {
		t.Fatalf("remove failed: %v\n%s", err, out)
	}
	if _, err := os.Stat(filepath.Join(root, "modules", "lib")); !os.IsNotExist(err) {
		t.Errorf("module directory still present: %v", err)
	}
}

// TestInstall_UnknownModule tests the typo suggestion.
//
// Scenario: User runs `gsm install lbi-core`
// Expected: error suggests lib-core
func TestInstall_UnknownModule(t *testing.T) {
	t.Parallel()

	remote := testutil.NewRemote(t, "main")
	root := testutil.NewProject(t)
	writeManifest(t, root, manifest.Module{Name: "lib-core", Repo: remote.Path})

	_, err := execute(t, newInstallCmd(), root, "lib-cor")
	if err == nil || !strings.Contains(err.Error(), `did you mean "lib-core"`) {
		t.Errorf("install error = %v, want suggestion", err)
	}
}

func status(t *testing.T, root string) []statusRow {
	t.Helper()
	out, err := execute(t, newStatusCmd(), root, "--json")
	if err != nil {
		t.Fatalf("status failed: %v\n%s", err, out)
	}
	var rows []statusRow
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		t.Fatalf("status output is not JSON: %v\n%s", err, out)
	}
	return rows
}
