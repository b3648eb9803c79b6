package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// ValidTriggers are the operations a hook can run on.
var ValidTriggers = []string{"install", "update", "restore", "remove", "all"}

// ValidThemes are the accepted values of the theme key.
var ValidThemes = []string{"default", "nord", "dracula", "none"}

// validateRaw checks every key of a parsed config file.
// source names the file in error messages.
func validateRaw(raw *rawConfig, source string) error {
	if err := validateRelative(raw.ModulesDir, "modules_dir", source); err != nil {
		return err
	}
	if strings.ContainsAny(raw.Remote, " \t/") {
		return fmt.Errorf("invalid remote %q in %s: must be a plain remote name", raw.Remote, source)
	}
	if err := validateEnum(raw.Theme, "theme", ValidThemes); err != nil {
		return fmt.Errorf("%w (in %s)", err, source)
	}
	if raw.CommandTimeout != "" {
		if _, err := parseTimeout(raw.CommandTimeout, "command_timeout in "+source); err != nil {
			return err
		}
	}
	for name, value := range raw.Hooks {
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("invalid hooks.%s in %s: must be a table", name, source)
		}
	}
	return validateHooks(parseHooksConfig(raw.Hooks), source)
}

// validateHooks checks that enabled hooks have a command and known triggers.
func validateHooks(hc HooksConfig, source string) error {
	for name, hook := range hc.Hooks {
		if hook.IsEnabled() && strings.TrimSpace(hook.Command) == "" {
			return fmt.Errorf("hooks.%s in %s: command is required", name, source)
		}
		for _, on := range hook.On {
			if err := validateEnum(on, "hooks."+name+".on", ValidTriggers); err != nil {
				return fmt.Errorf("%w (in %s)", err, source)
			}
		}
	}
	return nil
}

// validateRelative checks that path, if set, stays inside the project root.
func validateRelative(path, field, source string) error {
	if path == "" {
		return nil
	}
	if !filepath.IsLocal(path) {
		return fmt.Errorf("invalid %s %q in %s: must be a relative path inside the project", field, path, source)
	}
	return nil
}

func parseTimeout(value, field string) (time.Duration, error) {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, value, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("invalid %s %q: must not be negative", field, value)
	}
	return d, nil
}

// validateEnum checks that value (if non-empty) is one of the allowed values.
// Returns a formatted error mentioning the field name and allowed options.
func validateEnum(value, field string, allowed []string) error {
	if value == "" {
		return nil
	}
	if !slices.Contains(allowed, value) {
		return fmt.Errorf("invalid %s %q: must be %s", field, value, formatOptions(allowed))
	}
	return nil
}

// formatOptions formats a list of allowed values for error messages.
// E.g., ["a", "b", "c"] -> `"a", "b", or "c"`
func formatOptions(opts []string) string {
	quoted := make([]string, len(opts))
	for i, o := range opts {
		quoted[i] = fmt.Sprintf("%q", o)
	}
	if len(quoted) <= 2 {
		return strings.Join(quoted, " or ")
	}
	return strings.Join(quoted[:len(quoted)-1], ", ") + ", or " + quoted[len(quoted)-1]
}
