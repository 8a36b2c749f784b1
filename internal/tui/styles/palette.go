// Package styles defines the color palettes and lipgloss styles for the
// fluxmap TUI. Built-in themes cover the common terminal schemes; custom
// themes load from YAML files in the configured theme directory.
package styles

import (
	"slices"

	"github.com/charmbracelet/lipgloss"
)

// ThemeName represents a named color theme.
type ThemeName string

// Available built-in theme names.
const (
	ThemeDefault ThemeName = "default" // Purple/green dark theme
	ThemeMonokai ThemeName = "monokai" // Classic Monokai editor colors
	ThemeDracula ThemeName = "dracula" // Dracula theme colors
	ThemeNord    ThemeName = "nord"    // Nord theme, cool blue-gray
)

// BuiltinThemes returns all built-in theme names.
func BuiltinThemes() []string {
	return []string{
		string(ThemeDefault),
		string(ThemeMonokai),
		string(ThemeDracula),
		string(ThemeNord),
	}
}

// ValidThemes returns all valid theme names (built-in + custom).
func ValidThemes() []string {
	themes := BuiltinThemes()
	themes = append(themes, CustomThemeNames()...)
	return themes
}

// IsValidTheme checks if a theme name is valid (built-in or custom).
func IsValidTheme(name string) bool {
	if slices.Contains(BuiltinThemes(), name) {
		return true
	}
	return IsCustomTheme(name)
}

// ColorPalette defines the color scheme for a theme.
// All colors should meet WCAG AA contrast requirements (4.5:1 ratio).
type ColorPalette struct {
	// Primary accent color (used for emphasis, the focused node)
	Primary lipgloss.Color
	// Secondary accent color (used for success states)
	Secondary lipgloss.Color
	// Warning color (pending handovers, degraded states)
	Warning lipgloss.Color
	// Error color (failures, offline services)
	Error lipgloss.Color
	// Muted color (de-emphasized text, idle nodes, edges)
	Muted lipgloss.Color
	// Surface color (panel backgrounds)
	Surface lipgloss.Color
	// Text color (primary text)
	Text lipgloss.Color
	// Border color (panel borders)
	Border lipgloss.Color

	// Node state colors
	NodeIdle    lipgloss.Color
	NodeActive  lipgloss.Color
	NodePending lipgloss.Color
	NodePaused  lipgloss.Color
	NodeError   lipgloss.Color
	NodeOffline lipgloss.Color

	// Traveling token colors by payload kind
	TokenRawFile  lipgloss.Color
	TokenMetadata lipgloss.Color
	TokenFragment lipgloss.Color
	TokenInsight  lipgloss.Color
	TokenDNA      lipgloss.Color
	TokenSecure   lipgloss.Color

	// Control badge colors
	ControlRunning  lipgloss.Color
	ControlPaused   lipgloss.Color
	ControlStepping lipgloss.Color
	ControlIdle     lipgloss.Color

	// Pulse highlight color
	Pulse lipgloss.Color
}

// DefaultPalette returns the default purple/green dark theme palette.
func DefaultPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#A78BFA"), // Purple (violet-400)
		Secondary: lipgloss.Color("#10B981"), // Green
		Warning:   lipgloss.Color("#F59E0B"), // Amber
		Error:     lipgloss.Color("#F87171"), // Red (red-400)
		Muted:     lipgloss.Color("#9CA3AF"), // Gray
		Surface:   lipgloss.Color("#1F2937"), // Dark surface
		Text:      lipgloss.Color("#F9FAFB"), // Light text
		Border:    lipgloss.Color("#6B7280"), // Gray-500

		NodeIdle:    lipgloss.Color("#9CA3AF"), // Gray
		NodeActive:  lipgloss.Color("#10B981"), // Green
		NodePending: lipgloss.Color("#FBBF24"), // Yellow
		NodePaused:  lipgloss.Color("#60A5FA"), // Blue
		NodeError:   lipgloss.Color("#F87171"), // Red
		NodeOffline: lipgloss.Color("#6B7280"), // Dim gray

		TokenRawFile:  lipgloss.Color("#60A5FA"), // Blue
		TokenMetadata: lipgloss.Color("#FBBF24"), // Yellow
		TokenFragment: lipgloss.Color("#F472B6"), // Pink
		TokenInsight:  lipgloss.Color("#A78BFA"), // Purple
		TokenDNA:      lipgloss.Color("#10B981"), // Green
		TokenSecure:   lipgloss.Color("#FB923C"), // Orange

		ControlRunning:  lipgloss.Color("#10B981"), // Green
		ControlPaused:   lipgloss.Color("#F59E0B"), // Amber
		ControlStepping: lipgloss.Color("#60A5FA"), // Blue
		ControlIdle:     lipgloss.Color("#9CA3AF"), // Gray

		Pulse: lipgloss.Color("#F472B6"), // Pink
	}
}

// MonokaiPalette returns the classic Monokai editor theme palette.
func MonokaiPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#F92672"), // Monokai pink/magenta
		Secondary: lipgloss.Color("#A6E22E"), // Monokai green
		Warning:   lipgloss.Color("#E6DB74"), // Monokai yellow
		Error:     lipgloss.Color("#F92672"), // Monokai pink
		Muted:     lipgloss.Color("#75715E"), // Monokai comment gray
		Surface:   lipgloss.Color("#272822"), // Monokai background
		Text:      lipgloss.Color("#F8F8F2"), // Monokai foreground
		Border:    lipgloss.Color("#49483E"), // Monokai selection

		NodeIdle:    lipgloss.Color("#75715E"),
		NodeActive:  lipgloss.Color("#A6E22E"),
		NodePending: lipgloss.Color("#E6DB74"),
		NodePaused:  lipgloss.Color("#66D9EF"),
		NodeError:   lipgloss.Color("#F92672"),
		NodeOffline: lipgloss.Color("#49483E"),

		TokenRawFile:  lipgloss.Color("#66D9EF"), // Cyan
		TokenMetadata: lipgloss.Color("#E6DB74"), // Yellow
		TokenFragment: lipgloss.Color("#F92672"), // Pink
		TokenInsight:  lipgloss.Color("#AE81FF"), // Purple
		TokenDNA:      lipgloss.Color("#A6E22E"), // Green
		TokenSecure:   lipgloss.Color("#FD971F"), // Orange

		ControlRunning:  lipgloss.Color("#A6E22E"),
		ControlPaused:   lipgloss.Color("#E6DB74"),
		ControlStepping: lipgloss.Color("#66D9EF"),
		ControlIdle:     lipgloss.Color("#75715E"),

		Pulse: lipgloss.Color("#FD971F"),
	}
}

// DraculaPalette returns the Dracula theme palette.
func DraculaPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#BD93F9"), // Dracula purple
		Secondary: lipgloss.Color("#50FA7B"), // Dracula green
		Warning:   lipgloss.Color("#F1FA8C"), // Dracula yellow
		Error:     lipgloss.Color("#FF5555"), // Dracula red
		Muted:     lipgloss.Color("#6272A4"), // Dracula comment
		Surface:   lipgloss.Color("#282A36"), // Dracula background
		Text:      lipgloss.Color("#F8F8F2"), // Dracula foreground
		Border:    lipgloss.Color("#44475A"), // Dracula selection

		NodeIdle:    lipgloss.Color("#6272A4"),
		NodeActive:  lipgloss.Color("#50FA7B"),
		NodePending: lipgloss.Color("#F1FA8C"),
		NodePaused:  lipgloss.Color("#8BE9FD"),
		NodeError:   lipgloss.Color("#FF5555"),
		NodeOffline: lipgloss.Color("#44475A"),

		TokenRawFile:  lipgloss.Color("#8BE9FD"), // Cyan
		TokenMetadata: lipgloss.Color("#F1FA8C"), // Yellow
		TokenFragment: lipgloss.Color("#FF79C6"), // Pink
		TokenInsight:  lipgloss.Color("#BD93F9"), // Purple
		TokenDNA:      lipgloss.Color("#50FA7B"), // Green
		TokenSecure:   lipgloss.Color("#FFB86C"), // Orange

		ControlRunning:  lipgloss.Color("#50FA7B"),
		ControlPaused:   lipgloss.Color("#F1FA8C"),
		ControlStepping: lipgloss.Color("#8BE9FD"),
		ControlIdle:     lipgloss.Color("#6272A4"),

		Pulse: lipgloss.Color("#FF79C6"),
	}
}

// NordPalette returns the Nord theme palette.
func NordPalette() *ColorPalette {
	return &ColorPalette{
		Primary:   lipgloss.Color("#88C0D0"), // Nord frost (cyan)
		Secondary: lipgloss.Color("#A3BE8C"), // Nord aurora green
		Warning:   lipgloss.Color("#EBCB8B"), // Nord aurora yellow
		Error:     lipgloss.Color("#BF616A"), // Nord aurora red
		Muted:     lipgloss.Color("#4C566A"), // Nord polar night 3
		Surface:   lipgloss.Color("#2E3440"), // Nord polar night 0
		Text:      lipgloss.Color("#ECEFF4"), // Nord snow storm 2
		Border:    lipgloss.Color("#3B4252"), // Nord polar night 1

		NodeIdle:    lipgloss.Color("#4C566A"),
		NodeActive:  lipgloss.Color("#A3BE8C"),
		NodePending: lipgloss.Color("#EBCB8B"),
		NodePaused:  lipgloss.Color("#81A1C1"),
		NodeError:   lipgloss.Color("#BF616A"),
		NodeOffline: lipgloss.Color("#3B4252"),

		TokenRawFile:  lipgloss.Color("#81A1C1"), // Frost blue
		TokenMetadata: lipgloss.Color("#EBCB8B"), // Yellow
		TokenFragment: lipgloss.Color("#B48EAD"), // Aurora purple
		TokenInsight:  lipgloss.Color("#88C0D0"), // Frost cyan
		TokenDNA:      lipgloss.Color("#A3BE8C"), // Green
		TokenSecure:   lipgloss.Color("#D08770"), // Aurora orange

		ControlRunning:  lipgloss.Color("#A3BE8C"),
		ControlPaused:   lipgloss.Color("#EBCB8B"),
		ControlStepping: lipgloss.Color("#81A1C1"),
		ControlIdle:     lipgloss.Color("#4C566A"),

		Pulse: lipgloss.Color("#B48EAD"),
	}
}

// GetPalette returns the color palette for the given theme name.
// Checks custom themes first, then falls back to built-in themes.
// Returns the default palette for unknown theme names.
func GetPalette(name ThemeName) *ColorPalette {
	if custom := GetCustomTheme(name); custom != nil {
		return custom.ToPalette()
	}

	switch name {
	case ThemeMonokai:
		return MonokaiPalette()
	case ThemeDracula:
		return DraculaPalette()
	case ThemeNord:
		return NordPalette()
	default:
		return DefaultPalette()
	}
}
