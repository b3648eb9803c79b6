package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// LocalConfig holds per-project overrides from .gsm.toml.
// Pointer fields and zero-value strings indicate "not set" (inherit from global).
type LocalConfig struct {
	Manifest       string
	Lockfile       string
	ModulesDir     string
	Remote         string
	DefaultBranch  string
	CommandTimeout *time.Duration
	Theme          string
	Hooks          HooksConfig // merge by name into global
}

// LoadLocal reads a per-project .gsm.toml from the given project root.
// Returns nil (no error) if the file doesn't exist.
// Returns an error only on parse or validation failure.
func LoadLocal(root string) (*LocalConfig, error) {
	configFile := filepath.Join(root, LocalConfigFileName)

	data, err := os.ReadFile(configFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", configFile, err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", configFile, err)
	}
	if err := validateRaw(&raw, configFile); err != nil {
		return nil, err
	}

	local := &LocalConfig{
		Manifest:      raw.Manifest,
		Lockfile:      raw.Lockfile,
		ModulesDir:    raw.ModulesDir,
		Remote:        raw.Remote,
		DefaultBranch: raw.DefaultBranch,
		Theme:         raw.Theme,
		Hooks:         parseHooksConfig(raw.Hooks),
	}
	if local.ModulesDir != "" {
		local.ModulesDir = filepath.ToSlash(filepath.Clean(local.ModulesDir))
	}
	if raw.CommandTimeout != "" {
		d, _ := time.ParseDuration(raw.CommandTimeout)
		local.CommandTimeout = &d
	}
	return local, nil
}

// Resolve loads the global config, merges root's .gsm.toml over it and
// applies environment overrides last.
func Resolve(root string) (*Config, error) {
	path, err := configPath()
	global := Default()
	if err == nil {
		if global, err = LoadFile(path); err != nil {
			return nil, err
		}
	}

	local, err := LoadLocal(root)
	if err != nil {
		return nil, err
	}
	merged := MergeLocal(&global, local)
	if err := applyEnvOverrides(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// defaultLocalConfig is the template for gsm config init --local
const defaultLocalConfig = `# gsm local config (per-project overrides)
# Place this file at the project root next to the manifest.
# Settings here override the global ~/.config/gsm/config.toml for this project only.

# manifest = "modules.json"
# lockfile = "modules.lock.json"
# modules_dir = "vendor/modules"
# remote = "origin"
# default_branch = "main"
# command_timeout = "30m"

# Hooks - add project hooks or override global hooks
# Set enabled = false to disable a global hook for this project
#
# [hooks.build]
# command = "make -C {path}"
# description = "Build the module"
# on = ["install", "update"]
#
# [hooks.global-hook-name]
# enabled = false  # Disable this global hook for this project
`

// DefaultLocalConfig returns the default local configuration template content.
func DefaultLocalConfig() string {
	return defaultLocalConfig
}

// InitLocal writes the local config template into root.
func InitLocal(root string, force bool) (string, error) {
	return writeTemplate(filepath.Join(root, LocalConfigFileName), defaultLocalConfig, force)
}
