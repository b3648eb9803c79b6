package config

import (
	"testing"
	"time"
)

func TestMergeLocal_Nil(t *testing.T) {
	t.Parallel()

	global := &Config{Remote: "origin"}
	if result := MergeLocal(global, nil); result != global {
		t.Error("expected same pointer when local is nil")
	}
}

func TestMergeLocal_NoMutation(t *testing.T) {
	t.Parallel()

	global := &Config{
		ModulesDir: "modules",
		Hooks: HooksConfig{
			Hooks: map[string]Hook{"test": {Command: "echo test"}},
		},
	}
	local := &LocalConfig{
		ModulesDir: "ext",
		Hooks: HooksConfig{
			Hooks: map[string]Hook{"extra": {Command: "echo extra"}},
		},
	}

	MergeLocal(global, local)

	if global.ModulesDir != "modules" {
		t.Error("global config was mutated")
	}
	if len(global.Hooks.Hooks) != 1 {
		t.Error("global hooks were mutated")
	}
}

func TestMergeLocal_FieldReplace(t *testing.T) {
	t.Parallel()

	global := Default()
	timeout := time.Duration(0)
	local := &LocalConfig{
		Manifest:       "m.json",
		Lockfile:       "m.lock.json",
		ModulesDir:     "ext",
		Remote:         "upstream",
		DefaultBranch:  "trunk",
		CommandTimeout: &timeout,
	}

	result := MergeLocal(&global, local)

	if result.Manifest != "m.json" || result.Lockfile != "m.lock.json" {
		t.Errorf("paths = %q, %q", result.Manifest, result.Lockfile)
	}
	if result.ModulesDir != "ext" || result.Remote != "upstream" || result.DefaultBranch != "trunk" {
		t.Errorf("fields not replaced: %+v", result)
	}
	if result.CommandTimeout != 0 {
		t.Errorf("CommandTimeout = %v, want explicit 0 to win", result.CommandTimeout)
	}
}

func TestMergeLocal_UnsetInherits(t *testing.T) {
	t.Parallel()

	global := Default()
	result := MergeLocal(&global, &LocalConfig{})

	if result.Remote != DefaultRemote || result.CommandTimeout != DefaultCommandTimeout {
		t.Errorf("unset local fields should inherit global, got %+v", result)
	}
}

func TestMergeHooks(t *testing.T) {
	t.Parallel()

	disabled := false
	global := HooksConfig{Hooks: map[string]Hook{
		"keep":     {Command: "echo keep"},
		"override": {Command: "echo global"},
		"drop":     {Command: "echo drop"},
	}}
	local := HooksConfig{Hooks: map[string]Hook{
		"override": {Command: "echo local"},
		"drop":     {Enabled: &disabled},
		"new":      {Command: "echo new"},
	}}

	merged := mergeHooks(global, local)

	if len(merged.Hooks) != 3 {
		t.Fatalf("len(Hooks) = %d, want 3", len(merged.Hooks))
	}
	if merged.Hooks["override"].Command != "echo local" {
		t.Errorf("override.Command = %q, want local", merged.Hooks["override"].Command)
	}
	if _, ok := merged.Hooks["drop"]; ok {
		t.Error("drop hook should be removed")
	}
	if _, ok := merged.Hooks["new"]; !ok {
		t.Error("new hook should be added")
	}
}
