package doctor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/g4-api/git-submodules-manager/internal/config"
	"github.com/g4-api/git-submodules-manager/internal/lockfile"
	"github.com/g4-api/git-submodules-manager/internal/manifest"
	"github.com/g4-api/git-submodules-manager/internal/output"
	"github.com/g4-api/git-submodules-manager/internal/testutil"
)

const fullA = "1111111111111111111111111111111111111111"

func saveLock(t *testing.T, root string, entries ...lockfile.Entry) {
	t.Helper()
	doc := &lockfile.Document{Modules: []lockfile.Entry{}}
	for _, e := range entries {
		doc = lockfile.Upsert(doc, e, time.Now())
	}
	if err := lockfile.Save(filepath.Join(root, config.DefaultLockfile), doc); err != nil {
		t.Fatal(err)
	}
}

func testContext(out *bytes.Buffer) context.Context {
	return output.WithPrinter(context.Background(), out)
}

func TestCheckLockEntries(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "modules", "kept"), 0o755); err != nil {
		t.Fatal(err)
	}
	m := &manifest.Manifest{Modules: []manifest.Module{{Name: "lib", Repo: "r"}, {Name: "bare", Repo: "r"}}}
	doc := &lockfile.Document{Modules: []lockfile.Entry{
		{Name: "lib", Repo: "r", TargetDir: "modules/lib", ResolvedCommit: "main"},
		{Name: "bare", ResolvedCommit: fullA},
		{Name: "gone", TargetDir: "modules/gone", ResolvedCommit: fullA},
		{Name: "kept", TargetDir: "modules/kept", ResolvedCommit: fullA},
		{Name: "lib", Repo: "r", TargetDir: "modules/lib", ResolvedCommit: fullA},
	}}

	type got struct {
		Key string
		Fix FixAction
	}
	var issues []got
	for _, i := range checkLockEntries(root, m, doc) {
		if i.Category != CategoryLockfile {
			t.Errorf("issue %s has category %s", i.Key, i.Category)
		}
		issues = append(issues, got{i.Key, i.FixAction})
	}
	want := []got{
		{"lib", FixNone},       // not a full hash
		{"bare", FixNone},      // missing fields
		{"gone", FixDropEntry}, // orphan, no directory
		{"kept", FixNone},      // orphan, directory present
		{"lib", FixNone},       // duplicate
	}
	if diff := cmp.Diff(want, issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_FixDropsOrphansAndLeftovers(t *testing.T) {
	t.Parallel()

	root := testutil.TempDir(t)
	saveLock(t, root, lockfile.Entry{Name: "gone", Repo: "r", TargetDir: "modules/gone", ResolvedCommit: fullA})
	tmp := filepath.Join(root, config.DefaultLockfile+".tmp")
	if err := os.WriteFile(tmp, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.Default()
	var out bytes.Buffer
	r, err := Run(testContext(&out), root, &cfg, &manifest.Manifest{}, Options{Fix: true})
	if err != nil {
		t.Fatalf("Run() error = %v\n%s", err, out.String())
	}
	if r.Fixed != 2 || r.Stats.Fixable != 2 {
		t.Errorf("Fixed = %d, Fixable = %d, want 2 and 2", r.Fixed, r.Stats.Fixable)
	}

	doc, err := lockfile.Load(filepath.Join(root, config.DefaultLockfile))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Modules) != 0 {
		t.Errorf("lock entries = %+v, want none", doc.Modules)
	}
	if _, err := os.Stat(tmp); !os.IsNotExist(err) {
		t.Errorf("leftover still present: %v", err)
	}
}

func TestRun_FixDeclined(t *testing.T) {
	t.Parallel()

	root := testutil.TempDir(t)
	saveLock(t, root, lockfile.Entry{Name: "gone", Repo: "r", TargetDir: "modules/gone", ResolvedCommit: fullA})

	var asked string
	decline := func(prompt string) (bool, error) {
		asked = prompt
		return false, nil
	}

	cfg := config.Default()
	var out bytes.Buffer
	r, err := Run(testContext(&out), root, &cfg, &manifest.Manifest{}, Options{Fix: true, Confirm: decline})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if asked != "Apply 1 fixes?" {
		t.Errorf("prompt = %q", asked)
	}
	if r.Fixed != 0 {
		t.Errorf("Fixed = %d, want 0", r.Fixed)
	}
	doc, err := lockfile.Load(filepath.Join(root, config.DefaultLockfile))
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Modules) != 1 {
		t.Errorf("lock entries = %+v, want the orphan kept", doc.Modules)
	}
}

func TestRun_ModuleIssues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	remote := testutil.NewRemote(t, "main")
	first := remote.Head()
	second := remote.Commit("b.txt", "b\n", "Second")
	root := testutil.NewProject(t)

	clone := filepath.Join(root, "modules", "lib")
	testutil.Git(t, root, "clone", "--quiet", remote.Path, clone)
	testutil.Git(t, clone, "checkout", "--quiet", "--detach", first)

	m := &manifest.Manifest{Modules: []manifest.Module{
		{Name: "lib", Repo: remote.Path},
		{Name: "absent", Repo: remote.Path},
	}}
	saveLock(t, root,
		lockfile.Entry{Name: "lib", Repo: remote.Path, TargetDir: "modules/lib", ResolvedCommit: second},
		lockfile.Entry{Name: "absent", Repo: remote.Path, TargetDir: "modules/absent", ResolvedCommit: second},
	)

	cfg := config.Default()
	var out bytes.Buffer
	r, err := Run(output.WithPrinter(ctx, &out), root, &cfg, m, Options{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	descs := make(map[string]string)
	for _, i := range r.Issues {
		if i.Category == CategoryModule {
			descs[i.Key] = i.Description
		}
	}
	if !strings.HasPrefix(descs["lib"], "at "+first[:7]) {
		t.Errorf("lib issue = %q, want drift from %s", descs["lib"], first[:7])
	}
	if descs["absent"] != "locked but not materialized" {
		t.Errorf("absent issue = %q", descs["absent"])
	}
	if r.Stats.Modules != 2 || r.Stats.Healthy != 0 {
		t.Errorf("stats = %+v", r.Stats)
	}
	if !strings.Contains(out.String(), "run: gsm restore lib") {
		t.Errorf("output has no restore hint:\n%s", out.String())
	}
}

func TestRun_Healthy(t *testing.T) {
	t.Parallel()

	root := testutil.TempDir(t)
	cfg := config.Default()
	var out bytes.Buffer
	r, err := Run(testContext(&out), root, &cfg, &manifest.Manifest{}, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Issues) != 0 || !strings.Contains(out.String(), "No issues found") {
		t.Errorf("issues = %+v\n%s", r.Issues, out.String())
	}
}
