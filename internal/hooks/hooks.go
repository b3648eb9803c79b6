package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/g4-api/git-submodules-manager/internal/config"
	"github.com/g4-api/git-submodules-manager/internal/log"
)

// shellQuote escapes a string for safe use in shell commands.
// It wraps the value in single quotes and escapes any embedded single quotes.
func shellQuote(s string) string {
	// e.g., "it's" becomes 'it'\''s'
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// CommandType identifies which operation is triggering the hook
type CommandType string

const (
	CommandInstall CommandType = "install"
	CommandUpdate  CommandType = "update"
	CommandRestore CommandType = "restore"
	CommandRemove  CommandType = "remove"
)

// Context holds the values for placeholder substitution
type Context struct {
	Name    string            // module name
	Path    string            // absolute module directory
	Commit  string            // pinned commit, empty on remove
	Repo    string            // module repository URL
	Trigger string            // operation that triggered the hook
	Root    string            // absolute project root
	Env     map[string]string // custom variables from --arg key=value flags
	DryRun  bool              // if true, print command instead of executing
	Output  io.Writer         // hook stdout and stderr; nil means os.Stdout
}

// HookMatch represents a hook that matched the current command
type HookMatch struct {
	Hook *config.Hook
	Name string
}

// SelectHooks determines which hooks to run based on config and CLI flags.
// If hookName is specified, only that hook runs. Otherwise, all hooks with
// matching "on" conditions run, ordered by name.
// Returns nil slice if no hooks should run, error if specified hook doesn't exist.
func SelectHooks(cfg config.HooksConfig, hookName string, noHook bool, cmdType CommandType) ([]HookMatch, error) {
	if noHook {
		return nil, nil
	}

	// If explicit hook specified, use it directly (ignores "on" condition)
	if hookName != "" {
		hook, exists := cfg.Hooks[hookName]
		if !exists {
			return nil, fmt.Errorf("unknown hook %q", hookName)
		}
		return []HookMatch{{Hook: &hook, Name: hookName}}, nil
	}

	return findMatchingHooks(cfg, cmdType), nil
}

// findMatchingHooks returns all hooks that have the command type in their "on" list.
// Hooks without "on" are skipped (they only run via explicit --hook=name).
func findMatchingHooks(cfg config.HooksConfig, cmdType CommandType) []HookMatch {
	var matches []HookMatch

	for name, hook := range cfg.Hooks {
		if len(hook.On) > 0 && hookMatchesCommand(hook, cmdType) {
			hookCopy := hook
			matches = append(matches, HookMatch{Hook: &hookCopy, Name: name})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Name < matches[j].Name })
	return matches
}

// hookMatchesCommand returns true if cmdType is in the hook's "on" list.
// Special value "all" matches all command types.
func hookMatchesCommand(hook config.Hook, cmdType CommandType) bool {
	for _, cmd := range hook.On {
		if cmd == "all" || cmd == string(cmdType) {
			return true
		}
	}
	return false
}

// RunForEach runs all matched hooks for a single module.
// Failures are logged as warnings and returned; they never stop the run.
func RunForEach(ctx context.Context, matches []HookMatch, hctx Context, workDir string) []error {
	l := log.FromContext(ctx)

	var failed []error
	for _, match := range matches {
		if err := runHook(ctx, match.Name, match.Hook, hctx, workDir); err != nil {
			err = fmt.Errorf("hook %q failed for %s: %w", match.Name, hctx.Name, err)
			l.Warn("hook failed", "hook", match.Name, "module", hctx.Name, "error", err)
			failed = append(failed, err)
		}
	}
	return failed
}

// runHook executes a single hook with variable substitution.
func runHook(ctx context.Context, name string, hook *config.Hook, hctx Context, workDir string) error {
	command := SubstitutePlaceholders(hook.Command, hctx)

	out := hctx.Output
	if out == nil {
		out = os.Stdout
	}

	if hctx.DryRun {
		fmt.Fprintf(out, "[dry-run] %s: %s\n", name, command)
		return nil
	}

	log.FromContext(ctx).Printf("Running hook '%s' for %s...\n", name, hctx.Name)

	shellCmd := exec.CommandContext(ctx, "sh", "-c", command)
	shellCmd.Dir = workDir
	shellCmd.Stdout = out
	shellCmd.Stderr = out

	if err := shellCmd.Run(); err != nil {
		return err
	}

	if hook.Description != "" {
		log.FromContext(ctx).Printf("  ✓ %s\n", hook.Description)
	}
	return nil
}

// ParseEnv parses a slice of "key=value" strings into a map.
// Returns an error if any entry doesn't contain "=".
func ParseEnv(envSlice []string) (map[string]string, error) {
	result := make(map[string]string)
	for _, e := range envSlice {
		key, value, err := splitEnv(e)
		if err != nil {
			return nil, err
		}
		result[key] = value
	}
	return result, nil
}

func splitEnv(e string) (string, string, error) {
	key, value, found := strings.Cut(e, "=")
	if !found {
		return "", "", fmt.Errorf("invalid env format %q: expected KEY=VALUE", e)
	}
	if key == "" {
		return "", "", fmt.Errorf("invalid env format %q: key cannot be empty", e)
	}
	return key, value, nil
}

// readStdinIfPiped reads all content from stdin if it's piped (not a TTY).
// Returns empty string and nil if stdin is a TTY (interactive).
func readStdinIfPiped(stdin *os.File) (string, error) {
	if isatty.IsTerminal(stdin.Fd()) || isatty.IsCygwinTerminal(stdin.Fd()) {
		return "", nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// ParseEnvWithStdin parses a slice of "key=value" strings into a map.
// If any value is "-", reads stdin content and assigns it to all such keys.
// Returns an error if stdin is requested but not piped or empty.
func ParseEnvWithStdin(envSlice []string, stdin *os.File) (map[string]string, error) {
	result := make(map[string]string)
	var stdinKeys []string

	for _, e := range envSlice {
		key, value, err := splitEnv(e)
		if err != nil {
			return nil, err
		}
		if value == "-" {
			stdinKeys = append(stdinKeys, key)
		} else {
			result[key] = value
		}
	}

	// If any keys need stdin, read it once
	if len(stdinKeys) > 0 {
		content, err := readStdinIfPiped(stdin)
		if err != nil {
			return nil, err
		}
		if content == "" {
			return nil, fmt.Errorf("stdin not piped: KEY=- requires piped input")
		}
		for _, key := range stdinKeys {
			result[key] = content
		}
	}

	return result, nil
}

// envPlaceholderRegex matches {key}, {key:raw}, or {key:-default} patterns for env variables.
// Supported formats:
//   - {key}           - value is shell-quoted
//   - {key:raw}       - value is used as-is (no quoting)
//   - {key:-default}  - value is shell-quoted, uses default if key not set
var envPlaceholderRegex = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(?:(:raw)|:-([^}]*))?\}`)

// SubstitutePlaceholders replaces {placeholder} with shell-quoted values from Context.
//
// Static placeholders: {name}, {path}, {commit}, {repo}, {trigger}, {root}
// Env placeholders (from Context.Env):
//   - {key}         - shell-quoted value
//   - {key:raw}     - unquoted value (for embedding in existing quotes)
//   - {key:-default} - shell-quoted value with default if key missing
func SubstitutePlaceholders(command string, hctx Context) string {
	replacements := map[string]string{
		"{name}":    shellQuote(hctx.Name),
		"{path}":    shellQuote(hctx.Path),
		"{commit}":  shellQuote(hctx.Commit),
		"{repo}":    shellQuote(hctx.Repo),
		"{trigger}": shellQuote(hctx.Trigger),
		"{root}":    shellQuote(hctx.Root),
	}

	result := command
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	result = envPlaceholderRegex.ReplaceAllStringFunc(result, func(match string) string {
		submatch := envPlaceholderRegex.FindStringSubmatch(match)
		if submatch == nil {
			return match
		}
		key := submatch[1]
		isRaw := submatch[2] == ":raw"
		defaultVal := submatch[3]

		if hctx.Env != nil {
			if val, ok := hctx.Env[key]; ok {
				if isRaw {
					return val
				}
				return shellQuote(val)
			}
		}

		if isRaw {
			return defaultVal
		}
		return shellQuote(defaultVal)
	})

	return result
}
