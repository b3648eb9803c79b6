package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Hook defines a command run after a module is materialized or removed
type Hook struct {
	Command     string   `toml:"command"`
	Description string   `toml:"description"`
	On          []string `toml:"on"`      // operations this hook runs on
	Enabled     *bool    `toml:"enabled"` // nil = enabled; false in .gsm.toml disables a global hook
}

// IsEnabled reports whether the hook is active. Unset means enabled.
func (h Hook) IsEnabled() bool {
	return h.Enabled == nil || *h.Enabled
}

// HooksConfig holds hook-related configuration
type HooksConfig struct {
	Hooks map[string]Hook `toml:"-"` // parsed from [hooks.NAME] sections
}

// Config holds the gsm configuration
type Config struct {
	Manifest       string        `toml:"manifest"`
	Lockfile       string        `toml:"lockfile"`
	ModulesDir     string        `toml:"modules_dir"`
	Remote         string        `toml:"remote"`
	DefaultBranch  string        `toml:"default_branch"`
	CommandTimeout time.Duration `toml:"-"`     // 0 disables the per-module deadline
	Theme          string        `toml:"theme"` // report colors, "" is the default palette
	Hooks          HooksConfig   `toml:"-"`     // custom parsing needed
}

// Defaults for unset keys.
const (
	DefaultManifest       = "modules.json"
	DefaultLockfile       = "modules.lock.json"
	DefaultModulesDir     = "modules"
	DefaultRemote         = "origin"
	DefaultBranch         = "main"
	DefaultCommandTimeout = 10 * time.Minute
)

// LocalConfigFileName is the per-project override file at the project root.
const LocalConfigFileName = ".gsm.toml"

// Default returns the default configuration
func Default() Config {
	return Config{
		Manifest:       DefaultManifest,
		Lockfile:       DefaultLockfile,
		ModulesDir:     DefaultModulesDir,
		Remote:         DefaultRemote,
		DefaultBranch:  DefaultBranch,
		CommandTimeout: DefaultCommandTimeout,
		Hooks:          HooksConfig{Hooks: map[string]Hook{}},
	}
}

// ManifestPath returns the manifest path for a project root.
func (c *Config) ManifestPath(root string) string {
	return resolveIn(root, c.Manifest)
}

// LockfilePath returns the lockfile path for a project root.
func (c *Config) LockfilePath(root string) string {
	return resolveIn(root, c.Lockfile)
}

func resolveIn(root, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// configPath returns the path to the global config file.
// GSM_CONFIG overrides ~/.config/gsm/config.toml.
func configPath() (string, error) {
	if p := os.Getenv("GSM_CONFIG"); p != "" {
		return expandPath(p)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "gsm", "config.toml"), nil
}

// rawConfig is used for initial TOML parsing before processing hooks
// and durations. Both the global and local files share it.
type rawConfig struct {
	Manifest       string         `toml:"manifest"`
	Lockfile       string         `toml:"lockfile"`
	ModulesDir     string         `toml:"modules_dir"`
	Remote         string         `toml:"remote"`
	DefaultBranch  string         `toml:"default_branch"`
	CommandTimeout string         `toml:"command_timeout"`
	Theme          string         `toml:"theme"`
	Hooks          map[string]any `toml:"hooks"`
}

// Load reads the global config file.
// Returns Default() if file doesn't exist (no error)
// Returns error only if file exists but is invalid
func Load() (Config, error) {
	path, err := configPath()
	if err != nil {
		return Default(), nil
	}
	cfg, err := LoadFile(path)
	if err != nil {
		return Default(), err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// LoadFile reads a global config from path, filling unset keys with defaults.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Default(), fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := validateRaw(&raw, path); err != nil {
		return Default(), err
	}

	cfg := Default()
	if raw.Manifest != "" {
		cfg.Manifest = raw.Manifest
	}
	if raw.Lockfile != "" {
		cfg.Lockfile = raw.Lockfile
	}
	if raw.ModulesDir != "" {
		cfg.ModulesDir = filepath.ToSlash(filepath.Clean(raw.ModulesDir))
	}
	if raw.Remote != "" {
		cfg.Remote = raw.Remote
	}
	if raw.DefaultBranch != "" {
		cfg.DefaultBranch = raw.DefaultBranch
	}
	if raw.CommandTimeout != "" {
		// validated above
		cfg.CommandTimeout, _ = time.ParseDuration(raw.CommandTimeout)
	}
	cfg.Theme = raw.Theme
	cfg.Hooks = parseHooksConfig(raw.Hooks)
	return cfg, nil
}

// applyEnvOverrides applies GSM_* environment variables on top of file values.
func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("GSM_REMOTE"); v != "" {
		cfg.Remote = v
	}
	if v := os.Getenv("GSM_DEFAULT_BRANCH"); v != "" {
		cfg.DefaultBranch = v
	}
	if v := os.Getenv("GSM_COMMAND_TIMEOUT"); v != "" {
		d, err := parseTimeout(v, "GSM_COMMAND_TIMEOUT")
		if err != nil {
			return err
		}
		cfg.CommandTimeout = d
	}
	return nil
}

// parseHooksConfig extracts HooksConfig from raw TOML map
// Handles [hooks.NAME] sections
func parseHooksConfig(raw map[string]any) HooksConfig {
	hc := HooksConfig{
		Hooks: make(map[string]Hook),
	}

	if raw == nil {
		return hc
	}

	for key, value := range raw {
		// Hook definitions are tables
		if hookMap, ok := value.(map[string]any); ok {
			hook := Hook{}
			if cmd, ok := hookMap["command"].(string); ok {
				hook.Command = cmd
			}
			if desc, ok := hookMap["description"].(string); ok {
				hook.Description = desc
			}
			if on, ok := hookMap["on"].([]any); ok {
				for _, v := range on {
					if s, ok := v.(string); ok {
						hook.On = append(hook.On, s)
					}
				}
			}
			if enabled, ok := hookMap["enabled"].(bool); ok {
				hook.Enabled = &enabled
			}
			hc.Hooks[key] = hook
		}
	}

	return hc
}

// configKey is the context key for Config
type configKey struct{}

// workDirKey is the context key for the project root
type workDirKey struct{}

// WithConfig returns a new context with the Config stored in it.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext returns the Config from context.
// Returns nil if no config is stored.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey{}).(*Config); ok {
		return cfg
	}
	return nil
}

// WithWorkDir returns a new context carrying the project root.
func WithWorkDir(ctx context.Context, dir string) context.Context {
	return context.WithValue(ctx, workDirKey{}, dir)
}

// WorkDirFromContext returns the project root from context.
// Falls back to the process working directory.
func WorkDirFromContext(ctx context.Context) string {
	if dir, ok := ctx.Value(workDirKey{}).(string); ok && dir != "" {
		return dir
	}
	wd, _ := os.Getwd()
	return wd
}

const defaultConfig = `# gsm configuration
# Values here apply to every project; .gsm.toml at a project root overrides them.

# Manifest and lockfile paths, relative to the project root
# manifest = "modules.json"
# lockfile = "modules.lock.json"

# Directory modules are placed in when a module sets no targetDir
# Must be relative to the project root
# modules_dir = "modules"

# Remote name used in module clones
# remote = "origin"

# Branch used when a module sets neither ref nor tag and the remote
# does not advertise its default branch
# default_branch = "main"

# Deadline for all git work on a single module ("0" disables)
# command_timeout = "10m"

# Report colors: "default", "nord", "dracula" or "none"
# theme = "default"

# Hooks - run shell commands after a module succeeds
#
# [hooks.npm]
# command = "cd {path} && npm ci"
# description = "Install module dependencies"
# on = ["install", "update", "restore"]
#
# Available "on" values: "install", "update", "restore", "remove", "all"
#
# Hooks run with working directory set to the project root.
#
# Available placeholders:
#   {name}    - module name
#   {path}    - absolute module directory
#   {commit}  - pinned commit (empty for remove)
#   {repo}    - module repository URL
#   {trigger} - operation that triggered the hook
#   {root}    - absolute project root
`

// DefaultConfig returns the global configuration template content.
func DefaultConfig() string {
	return defaultConfig
}

// Init creates a default config file at the global config path.
// If force is true, overwrites existing file
// Returns the path to the created file
func Init(force bool) (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}
	return writeTemplate(path, defaultConfig, force)
}

func writeTemplate(path, content string, force bool) (string, error) {
	// Check if file already exists (skip if force)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
