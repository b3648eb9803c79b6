// Package hooks runs configured shell commands after a module operation.
//
// Hooks are defined in config and run once per module that succeeded in a
// matching operation, e.g. to install a module's dependencies after it is
// pinned, or to notify something after removal.
//
// # Hook Selection
//
// Hooks can run automatically or manually:
//
//   - Automatic: Hooks with "on" config matching the operation run automatically
//   - Manual: Use --hook=name to run a specific hook, --no-hook to skip all
//
// Example config:
//
//	[hooks.npm]
//	command = "cd {path} && npm ci"
//	on = ["install", "update", "restore"]
//
// # Placeholder Substitution
//
// Static placeholders available in all hooks:
//
//   - {name}: Module name
//   - {path}: Absolute module directory
//   - {commit}: Pinned commit (empty for remove)
//   - {repo}: Module repository URL
//   - {trigger}: Operation that triggered the hook
//   - {root}: Absolute project root
//
// Custom variables via --arg key=value:
//
//   - {key}: Value from --arg key=value
//   - {key:-default}: Value with fallback if not provided
//
// All values are shell-quoted unless {key:raw} is used.
//
// # Execution Context
//
// Hooks run with the working directory set to the project root. A failing
// hook is reported as a warning; the module's pinned state is unaffected.
package hooks
