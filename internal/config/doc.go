// Package config handles loading and validation of gsm configuration.
//
// # Configuration Sources (highest priority first)
//
//   - Command-line flags (applied by the CLI)
//   - GSM_REMOTE, GSM_DEFAULT_BRANCH, GSM_COMMAND_TIMEOUT env vars
//   - .gsm.toml at the project root
//   - ~/.config/gsm/config.toml (or the file named by GSM_CONFIG)
//   - Default values
//
// # Key Settings
//
//   - manifest: manifest path relative to the project root (default: "modules.json")
//   - lockfile: lockfile path relative to the project root (default: "modules.lock.json")
//   - modules_dir: parent of module directories without a targetDir (default: "modules")
//   - remote: remote name inside module clones (default: "origin")
//   - default_branch: branch used when the remote HEAD is unknown (default: "main")
//   - command_timeout: per-module deadline as a Go duration (default: "10m", "0" disables)
//
// # Hooks Configuration
//
// Hooks are defined in [hooks.NAME] sections:
//
//	[hooks.npm]
//	command = "cd {path} && npm ci"
//	description = "Install module dependencies"
//	on = ["install", "update"]
//
// A hook runs after each module that succeeds in a matching operation.
// A .gsm.toml hook with the same name replaces the global one; setting
// enabled = false removes it for that project.
package config
