// Package styles provides the lipgloss palette used by report output.
//
// A theme is selected once at startup with [Init]; renderers read it
// through [Current] and the outcome helpers.
package styles

import (
	"image/color"
	"sync"

	"charm.land/lipgloss/v2"
)

// Theme defines the colors of report output.
type Theme struct {
	Success color.Color // installed, updated, restored, removed
	Error   color.Color // failed modules
	Warning color.Color // skipped modules and warnings
	Muted   color.Color // unchanged modules, secondary columns
}

// Preset themes
var (
	DefaultTheme = Theme{
		Success: lipgloss.Color("82"),  // green
		Error:   lipgloss.Color("196"), // red
		Warning: lipgloss.Color("214"), // orange
		Muted:   lipgloss.Color("240"), // dark gray
	}

	NordTheme = Theme{
		Success: lipgloss.Color("#a3be8c"), // nord14
		Error:   lipgloss.Color("#bf616a"), // nord11
		Warning: lipgloss.Color("#ebcb8b"), // nord13
		Muted:   lipgloss.Color("#4c566a"), // nord3
	}

	DraculaTheme = Theme{
		Success: lipgloss.Color("#50fa7b"),
		Error:   lipgloss.Color("#ff5555"),
		Warning: lipgloss.Color("#ffb86c"),
		Muted:   lipgloss.Color("#6272a4"),
	}

	// NoneTheme keeps bold formatting but sets no colors.
	NoneTheme = Theme{
		Success: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Muted:   lipgloss.NoColor{},
	}
)

var presets = map[string]Theme{
	"":        DefaultTheme,
	"default": DefaultTheme,
	"nord":    NordTheme,
	"dracula": DraculaTheme,
	"none":    NoneTheme,
}

var (
	mu      sync.RWMutex
	current = DefaultTheme
)

// Init selects the theme by name. Unknown names fall back to the default.
func Init(name string) {
	t, ok := presets[name]
	if !ok {
		t = DefaultTheme
	}
	mu.Lock()
	current = t
	mu.Unlock()
}

// Current returns the active theme.
func Current() Theme {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// Outcome renders an outcome word in its color.
func Outcome(outcome string) string {
	t := Current()
	var c color.Color
	switch outcome {
	case "failed":
		c = t.Error
	case "skipped":
		c = t.Warning
	case "unchanged":
		c = t.Muted
	default:
		c = t.Success
	}
	return lipgloss.NewStyle().Foreground(c).Render(outcome)
}

// Warning renders a warning line.
func Warning(s string) string {
	return lipgloss.NewStyle().Foreground(Current().Warning).Render(s)
}

// Error renders s in the error color.
func Error(s string) string {
	return lipgloss.NewStyle().Foreground(Current().Error).Render(s)
}

// Muted renders secondary text.
func Muted(s string) string {
	return lipgloss.NewStyle().Foreground(Current().Muted).Render(s)
}

// Bold renders s in bold.
func Bold(s string) string {
	return lipgloss.NewStyle().Bold(true).Render(s)
}
