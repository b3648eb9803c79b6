package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if cfg.Manifest != "modules.json" || cfg.Lockfile != "modules.lock.json" {
		t.Errorf("paths = %q, %q", cfg.Manifest, cfg.Lockfile)
	}
	if cfg.ModulesDir != "modules" || cfg.Remote != "origin" || cfg.DefaultBranch != "main" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.CommandTimeout != 10*time.Minute {
		t.Errorf("CommandTimeout = %v, want 10m", cfg.CommandTimeout)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("LoadFile() of missing file mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_AllKeys(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `
manifest = "deps.json"
lockfile = "deps.lock.json"
modules_dir = "vendor/mods/"
remote = "upstream"
default_branch = "trunk"
command_timeout = "90s"
theme = "nord"

[hooks.build]
command = "make -C {path}"
description = "Build"
on = ["install", "update"]
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	want := Config{
		Manifest:       "deps.json",
		Lockfile:       "deps.lock.json",
		ModulesDir:     "vendor/mods",
		Remote:         "upstream",
		DefaultBranch:  "trunk",
		CommandTimeout: 90 * time.Second,
		Theme:          "nord",
		Hooks: HooksConfig{Hooks: map[string]Hook{
			"build": {Command: "make -C {path}", Description: "Build", On: []string{"install", "update"}},
		}},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadFile() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile_ZeroTimeoutDisables(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	writeFile(t, path, `command_timeout = "0"`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.CommandTimeout != 0 {
		t.Errorf("CommandTimeout = %v, want 0", cfg.CommandTimeout)
	}
}

func TestLoadFile_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", "manifest = [[["},
		{"bad timeout", `command_timeout = "soon"`},
		{"negative timeout", `command_timeout = "-1m"`},
		{"absolute modules_dir", `modules_dir = "/opt/modules"`},
		{"escaping modules_dir", `modules_dir = "../outside"`},
		{"remote with slash", `remote = "origin/main"`},
		{"unknown theme", `theme = "neon"`},
		{"hook without command", "[hooks.empty]\ndescription = \"nothing\""},
		{"hook with unknown trigger", "[hooks.x]\ncommand = \"true\"\non = [\"push\"]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "config.toml")
			writeFile(t, path, tt.content)
			if _, err := LoadFile(path); err == nil {
				t.Errorf("LoadFile(%q) expected error", tt.content)
			}
		})
	}
}

func TestParseHooksConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      map[string]any
		expected HooksConfig
	}{
		{
			name: "full hooks config",
			raw: map[string]any{
				"npm": map[string]any{
					"command":     "cd {path} && npm ci",
					"description": "Install deps",
					"on":          []any{"install", "restore"},
				},
				"notify": map[string]any{
					"command": "echo {name}",
				},
			},
			expected: HooksConfig{
				Hooks: map[string]Hook{
					"npm":    {Command: "cd {path} && npm ci", Description: "Install deps", On: []string{"install", "restore"}},
					"notify": {Command: "echo {name}"},
				},
			},
		},
		{
			name:     "nil raw",
			raw:      nil,
			expected: HooksConfig{Hooks: map[string]Hook{}},
		},
		{
			name: "non-table values are ignored",
			raw: map[string]any{
				"stray": "value",
			},
			expected: HooksConfig{Hooks: map[string]Hook{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parseHooksConfig(tt.raw)
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("parseHooksConfig() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseHooksConfig_WithEnabled(t *testing.T) {
	t.Parallel()

	result := parseHooksConfig(map[string]any{
		"on":      map[string]any{"command": "echo on", "enabled": true},
		"off":     map[string]any{"command": "echo off", "enabled": false},
		"default": map[string]any{"command": "echo default"},
	})

	if !result.Hooks["on"].IsEnabled() {
		t.Error("on.IsEnabled() = false, want true")
	}
	if result.Hooks["off"].IsEnabled() {
		t.Error("off.IsEnabled() = true, want false")
	}
	if result.Hooks["default"].Enabled != nil || !result.Hooks["default"].IsEnabled() {
		t.Error("default hook should be enabled with nil Enabled")
	}
}

func TestConfigPaths(t *testing.T) {
	t.Parallel()

	cfg := Default()
	if got, want := cfg.ManifestPath("/proj"), filepath.Join("/proj", "modules.json"); got != want {
		t.Errorf("ManifestPath = %q, want %q", got, want)
	}

	cfg.Lockfile = "/abs/lock.json"
	if got := cfg.LockfilePath("/proj"); got != "/abs/lock.json" {
		t.Errorf("LockfilePath = %q, want absolute path unchanged", got)
	}
}

func TestWithConfig_FromContext(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		cfg := &Config{Remote: "upstream"}
		got := FromContext(WithConfig(context.Background(), cfg))
		if got != cfg {
			t.Error("FromContext did not return the stored config")
		}
	})

	t.Run("nil when not set", func(t *testing.T) {
		t.Parallel()
		if got := FromContext(context.Background()); got != nil {
			t.Errorf("FromContext on empty context = %v, want nil", got)
		}
	})
}

func TestWithWorkDir_FromContext(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		ctx := WithWorkDir(context.Background(), "/custom/path")
		if got := WorkDirFromContext(ctx); got != "/custom/path" {
			t.Errorf("WorkDirFromContext = %q, want %q", got, "/custom/path")
		}
	})

	t.Run("fallback to getwd when empty", func(t *testing.T) {
		t.Parallel()
		got := WorkDirFromContext(WithWorkDir(context.Background(), ""))
		wd, _ := os.Getwd()
		if got != wd {
			t.Errorf("WorkDirFromContext = %q, want %q (os.Getwd)", got, wd)
		}
	})
}

func TestApplyEnvOverrides(t *testing.T) {
	// Cannot use t.Parallel(): t.Setenv mutates process env
	t.Run("env values win", func(t *testing.T) {
		t.Setenv("GSM_REMOTE", "fork")
		t.Setenv("GSM_DEFAULT_BRANCH", "develop")
		t.Setenv("GSM_COMMAND_TIMEOUT", "2m")
		cfg := Default()
		if err := applyEnvOverrides(&cfg); err != nil {
			t.Fatalf("applyEnvOverrides error: %v", err)
		}
		if cfg.Remote != "fork" || cfg.DefaultBranch != "develop" || cfg.CommandTimeout != 2*time.Minute {
			t.Errorf("overrides not applied: %+v", cfg)
		}
	})

	t.Run("invalid timeout", func(t *testing.T) {
		t.Setenv("GSM_COMMAND_TIMEOUT", "later")
		cfg := Default()
		if err := applyEnvOverrides(&cfg); err == nil {
			t.Error("expected error for invalid GSM_COMMAND_TIMEOUT")
		}
	})

	t.Run("empty env vars leave config unchanged", func(t *testing.T) {
		t.Setenv("GSM_REMOTE", "")
		t.Setenv("GSM_DEFAULT_BRANCH", "")
		t.Setenv("GSM_COMMAND_TIMEOUT", "")
		cfg := Config{Remote: "upstream", DefaultBranch: "trunk", CommandTimeout: time.Second}
		if err := applyEnvOverrides(&cfg); err != nil {
			t.Fatalf("applyEnvOverrides error: %v", err)
		}
		if cfg.Remote != "upstream" || cfg.DefaultBranch != "trunk" || cfg.CommandTimeout != time.Second {
			t.Errorf("config changed: %+v", cfg)
		}
	})
}

func TestResolve(t *testing.T) {
	// Cannot use t.Parallel(): t.Setenv mutates process env
	home := t.TempDir()
	global := filepath.Join(home, "config.toml")
	writeFile(t, global, `
remote = "upstream"
command_timeout = "1m"

[hooks.shared]
command = "echo shared"
on = ["all"]

[hooks.noisy]
command = "echo noisy"
on = ["install"]
`)
	t.Setenv("GSM_CONFIG", global)
	t.Setenv("GSM_REMOTE", "")
	t.Setenv("GSM_DEFAULT_BRANCH", "")
	t.Setenv("GSM_COMMAND_TIMEOUT", "")

	root := t.TempDir()
	writeFile(t, filepath.Join(root, LocalConfigFileName), `
modules_dir = "third_party"
command_timeout = "0"

[hooks.noisy]
enabled = false
`)

	cfg, err := Resolve(root)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if cfg.Remote != "upstream" {
		t.Errorf("Remote = %q, want upstream from global", cfg.Remote)
	}
	if cfg.ModulesDir != "third_party" {
		t.Errorf("ModulesDir = %q, want third_party from local", cfg.ModulesDir)
	}
	if cfg.CommandTimeout != 0 {
		t.Errorf("CommandTimeout = %v, want local 0 to override global", cfg.CommandTimeout)
	}
	if _, ok := cfg.Hooks.Hooks["noisy"]; ok {
		t.Error("noisy hook should be disabled by local config")
	}
	if _, ok := cfg.Hooks.Hooks["shared"]; !ok {
		t.Error("shared hook should be inherited")
	}
}

func TestInit(t *testing.T) {
	// Cannot use t.Parallel(): t.Setenv mutates process env
	path := filepath.Join(t.TempDir(), "gsm", "config.toml")
	t.Setenv("GSM_CONFIG", path)

	got, err := Init(false)
	if err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if got != path {
		t.Errorf("Init() path = %q, want %q", got, path)
	}
	if _, err := Init(false); err == nil {
		t.Error("second Init() without force should fail")
	}
	if _, err := Init(true); err != nil {
		t.Errorf("Init(force) error = %v", err)
	}
}

func TestTemplatesAreValidTOML(t *testing.T) {
	t.Parallel()

	for name, content := range map[string]string{
		"global": defaultConfig,
		"local":  DefaultLocalConfig(),
	} {
		var raw rawConfig
		if _, err := toml.Decode(content, &raw); err != nil {
			t.Errorf("%s template produces invalid TOML: %v", name, err)
		}
	}
}

func TestValidateEnum(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		field   string
		allowed []string
		wantErr bool
	}{
		{"empty value is ok", "", "test", []string{"a", "b"}, false},
		{"valid value", "a", "test", []string{"a", "b"}, false},
		{"invalid value", "c", "test", []string{"a", "b"}, true},
		{"case sensitive", "A", "test", []string{"a", "b"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := validateEnum(tt.value, tt.field, tt.allowed)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateEnum(%q, %q, %v) error = %v, wantErr %v", tt.value, tt.field, tt.allowed, err, tt.wantErr)
			}
		})
	}
}

func TestFormatOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts []string
		want string
	}{
		{"single option", []string{"a"}, `"a"`},
		{"two options", []string{"a", "b"}, `"a" or "b"`},
		{"three options", []string{"a", "b", "c"}, `"a", "b", or "c"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := formatOptions(tt.opts); got != tt.want {
				t.Errorf("formatOptions(%v) = %q, want %q", tt.opts, got, tt.want)
			}
		})
	}
}
