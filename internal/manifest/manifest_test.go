package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "modules.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := writeManifest(t, `{
  "modules": [
    {
      "name": "lib",
      "repo": "https://example.com/lib.git",
      "localPath": "src",
      "tag": "v2.0"
    },
    {
      "name": "tools",
      "repo": "https://example.com/tools.git",
      "ref": "main",
      "submodule": true,
      "targetDir": "third_party/tools",
      "recursive": true,
      "artifacts": [{"from": "bin/*", "to": "bin"}]
    }
  ]
}`)

	m, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := &Manifest{Modules: []Module{
		{Name: "lib", Repo: "https://example.com/lib.git", LocalPath: "src", Tag: "v2.0"},
		{
			Name:      "tools",
			Repo:      "https://example.com/tools.git",
			Ref:       "main",
			Submodule: true,
			TargetDir: "third_party/tools",
			Recursive: true,
			Artifacts: []Artifact{{From: "bin/*", To: "bin"}},
		},
	}}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "modules.json"))
	if !errors.Is(err, ErrNotFound) || !strings.Contains(err.Error(), "modules.json") {
		t.Errorf("Load() of missing file error = %v", err)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	t.Parallel()

	if _, err := Load(writeManifest(t, `{"modules": [`)); err == nil {
		t.Error("Load() of invalid JSON should error")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modules []Module
		wantErr string
	}{
		{
			name:    "valid",
			modules: []Module{{Name: "a", Repo: "r"}, {Name: "b", Repo: "r", LocalPath: "."}},
		},
		{
			name:    "empty name",
			modules: []Module{{Name: " ", Repo: "r"}},
			wantErr: "name is required",
		},
		{
			name:    "duplicate name",
			modules: []Module{{Name: "a", Repo: "r"}, {Name: "a", Repo: "s"}},
			wantErr: `duplicate module name "a"`,
		},
		{
			name:    "empty repo",
			modules: []Module{{Name: "a"}},
			wantErr: "repo is required",
		},
		{
			name:    "escaping target",
			modules: []Module{{Name: "a", Repo: "r", TargetDir: "../a"}},
			wantErr: "targetDir",
		},
		{
			name:    "target is the project root",
			modules: []Module{{Name: "dot", Repo: "r", TargetDir: "."}},
			wantErr: "targetDir",
		},
		{
			name:    "target cleans to the project root",
			modules: []Module{{Name: "a", Repo: "r", TargetDir: "vendor/.."}},
			wantErr: "targetDir",
		},
		{
			name:    "dot-dot name",
			modules: []Module{{Name: "..", Repo: "r"}},
			wantErr: "single directory name",
		},
		{
			name:    "name with separators",
			modules: []Module{{Name: "../../outside", Repo: "r"}},
			wantErr: "single directory name",
		},
		{
			name:    "name with backslash",
			modules: []Module{{Name: `a\b`, Repo: "r"}},
			wantErr: "single directory name",
		},
		{
			name:    "artifact source outside the module",
			modules: []Module{{Name: "a", Repo: "r", Artifacts: []Artifact{{From: "../../*", To: "lib"}}}},
			wantErr: "must stay inside the module directory",
		},
		{
			name:    "absolute localPath",
			modules: []Module{{Name: "a", Repo: "r", LocalPath: "/src"}},
			wantErr: "localPath",
		},
		{
			name:    "artifact without destination",
			modules: []Module{{Name: "a", Repo: "r", Artifacts: []Artifact{{From: "*.so"}}}},
			wantErr: "from and to are required",
		},
		{
			name:    "artifact with bad pattern",
			modules: []Module{{Name: "a", Repo: "r", Artifacts: []Artifact{{From: "[", To: "lib"}}}},
			wantErr: "invalid pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := (&Manifest{Modules: tt.modules}).Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestModuleDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		module Module
		want   string
	}{
		{"default under modules dir", Module{Name: "lib"}, "modules/lib"},
		{"explicit target", Module{Name: "lib", TargetDir: "vendor/lib/"}, "vendor/lib"},
		{"backslashes normalized", Module{Name: "lib", TargetDir: `vendor\lib`}, "vendor/lib"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.module.Dir("modules"); got != tt.want {
				t.Errorf("Dir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCheckDir(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dir     string
		wantErr bool
	}{
		{"modules/lib", false},
		{`vendor\lib`, false},
		{".", true},
		{"", true},
		{"a/..", true},
		{"../victim", true},
		{"/tmp/x", true},
	}

	for _, tt := range tests {
		t.Run(tt.dir, func(t *testing.T) {
			t.Parallel()
			if err := CheckDir(tt.dir); (err != nil) != tt.wantErr {
				t.Errorf("CheckDir(%q) error = %v, wantErr %v", tt.dir, err, tt.wantErr)
			}
		})
	}
}

func TestFindAndNames(t *testing.T) {
	t.Parallel()

	m := &Manifest{Modules: []Module{{Name: "a", Repo: "r1"}, {Name: "b", Repo: "r2"}}}

	if mod, ok := m.Find("b"); !ok || mod.Repo != "r2" {
		t.Errorf("Find(b) = %+v, %v", mod, ok)
	}
	if _, ok := m.Find("c"); ok {
		t.Error("Find(c) should not be found")
	}
	if diff := cmp.Diff([]string{"a", "b"}, m.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}
