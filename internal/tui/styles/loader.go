package styles

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ThemeFile represents a custom theme definition loaded from YAML.
type ThemeFile struct {
	// Name is the theme's display name (e.g., "Solarized Dark")
	Name string `yaml:"name"`
	// Author is the theme creator's name (optional)
	Author string `yaml:"author,omitempty"`
	// Description provides details about the theme (optional)
	Description string `yaml:"description,omitempty"`
	// Version is the theme file format version (currently "1")
	Version string `yaml:"version"`
	// Colors defines the color palette
	Colors ThemeColors `yaml:"colors"`
}

// ThemeColors contains all color definitions for a theme.
// All colors should be hex format (#RRGGBB or #RGB).
type ThemeColors struct {
	// Base colors
	Primary   string `yaml:"primary"`
	Secondary string `yaml:"secondary"`
	Warning   string `yaml:"warning"`
	Error     string `yaml:"error"`
	Muted     string `yaml:"muted"`
	Surface   string `yaml:"surface"`
	Text      string `yaml:"text"`
	Border    string `yaml:"border"`

	// Node state colors (optional - defaults to base colors if not specified)
	Nodes ThemeNodeColors `yaml:"nodes,omitempty"`

	// Token colors by payload kind (optional)
	Tokens ThemeTokenColors `yaml:"tokens,omitempty"`

	// Control badge colors (optional)
	Control ThemeControlColors `yaml:"control,omitempty"`

	// Pulse highlight color (optional)
	Pulse string `yaml:"pulse,omitempty"`
}

// ThemeNodeColors defines colors for node states.
type ThemeNodeColors struct {
	Idle    string `yaml:"idle,omitempty"`
	Active  string `yaml:"active,omitempty"`
	Pending string `yaml:"pending,omitempty"`
	Paused  string `yaml:"paused,omitempty"`
	Error   string `yaml:"error,omitempty"`
	Offline string `yaml:"offline,omitempty"`
}

// ThemeTokenColors defines colors for traveling-token payload kinds.
type ThemeTokenColors struct {
	RawFile  string `yaml:"raw_file,omitempty"`
	Metadata string `yaml:"metadata,omitempty"`
	Fragment string `yaml:"fragment,omitempty"`
	Insight  string `yaml:"insight,omitempty"`
	DNA      string `yaml:"dna,omitempty"`
	Secure   string `yaml:"secure,omitempty"`
}

// ThemeControlColors defines colors for the admission controller badge.
type ThemeControlColors struct {
	Running  string `yaml:"running,omitempty"`
	Paused   string `yaml:"paused,omitempty"`
	Stepping string `yaml:"stepping,omitempty"`
	Idle     string `yaml:"idle,omitempty"`
}

// hexColorRegex validates hex color format.
var hexColorRegex = regexp.MustCompile(`^#([0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

// LoadThemeFile loads a theme from a YAML file.
func LoadThemeFile(path string) (*ThemeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading theme file: %w", err)
	}

	var theme ThemeFile
	if err := yaml.Unmarshal(data, &theme); err != nil {
		return nil, fmt.Errorf("parsing theme file: %w", err)
	}

	if err := theme.Validate(); err != nil {
		return nil, fmt.Errorf("invalid theme: %w", err)
	}

	return &theme, nil
}

// Validate checks that the theme file is well-formed.
func (t *ThemeFile) Validate() error {
	if t.Name == "" {
		return errors.New("theme name is required")
	}

	if t.Version == "" {
		return errors.New("theme version is required")
	}

	if t.Version != "1" {
		return fmt.Errorf("unsupported theme version: %s (supported: 1)", t.Version)
	}

	requiredColors := map[string]string{
		"primary":   t.Colors.Primary,
		"secondary": t.Colors.Secondary,
		"warning":   t.Colors.Warning,
		"error":     t.Colors.Error,
		"muted":     t.Colors.Muted,
		"surface":   t.Colors.Surface,
		"text":      t.Colors.Text,
		"border":    t.Colors.Border,
	}

	for name, color := range requiredColors {
		if color == "" {
			return fmt.Errorf("color '%s' is required", name)
		}
		if !isValidHexColor(color) {
			return fmt.Errorf("color '%s' has invalid format: %s (expected #RGB or #RRGGBB)", name, color)
		}
	}

	optionalColors := map[string]string{
		"nodes.idle":       t.Colors.Nodes.Idle,
		"nodes.active":     t.Colors.Nodes.Active,
		"nodes.pending":    t.Colors.Nodes.Pending,
		"nodes.paused":     t.Colors.Nodes.Paused,
		"nodes.error":      t.Colors.Nodes.Error,
		"nodes.offline":    t.Colors.Nodes.Offline,
		"tokens.raw_file":  t.Colors.Tokens.RawFile,
		"tokens.metadata":  t.Colors.Tokens.Metadata,
		"tokens.fragment":  t.Colors.Tokens.Fragment,
		"tokens.insight":   t.Colors.Tokens.Insight,
		"tokens.dna":       t.Colors.Tokens.DNA,
		"tokens.secure":    t.Colors.Tokens.Secure,
		"control.running":  t.Colors.Control.Running,
		"control.paused":   t.Colors.Control.Paused,
		"control.stepping": t.Colors.Control.Stepping,
		"control.idle":     t.Colors.Control.Idle,
		"pulse":            t.Colors.Pulse,
	}

	for name, color := range optionalColors {
		if color != "" && !isValidHexColor(color) {
			return fmt.Errorf("color '%s' has invalid format: %s (expected #RGB or #RRGGBB)", name, color)
		}
	}

	return nil
}

// isValidHexColor checks if a string is a valid hex color.
func isValidHexColor(color string) bool {
	return hexColorRegex.MatchString(color)
}

// ToPalette converts the theme file to a ColorPalette.
func (t *ThemeFile) ToPalette() *ColorPalette {
	p := &ColorPalette{
		Primary:   lipgloss.Color(t.Colors.Primary),
		Secondary: lipgloss.Color(t.Colors.Secondary),
		Warning:   lipgloss.Color(t.Colors.Warning),
		Error:     lipgloss.Color(t.Colors.Error),
		Muted:     lipgloss.Color(t.Colors.Muted),
		Surface:   lipgloss.Color(t.Colors.Surface),
		Text:      lipgloss.Color(t.Colors.Text),
		Border:    lipgloss.Color(t.Colors.Border),
	}

	p.NodeIdle = colorOrDefault(t.Colors.Nodes.Idle, t.Colors.Muted)
	p.NodeActive = colorOrDefault(t.Colors.Nodes.Active, t.Colors.Secondary)
	p.NodePending = colorOrDefault(t.Colors.Nodes.Pending, t.Colors.Warning)
	p.NodePaused = colorOrDefault(t.Colors.Nodes.Paused, t.Colors.Primary)
	p.NodeError = colorOrDefault(t.Colors.Nodes.Error, t.Colors.Error)
	p.NodeOffline = colorOrDefault(t.Colors.Nodes.Offline, t.Colors.Border)

	p.TokenRawFile = colorOrDefault(t.Colors.Tokens.RawFile, t.Colors.Primary)
	p.TokenMetadata = colorOrDefault(t.Colors.Tokens.Metadata, t.Colors.Warning)
	p.TokenFragment = colorOrDefault(t.Colors.Tokens.Fragment, t.Colors.Primary)
	p.TokenInsight = colorOrDefault(t.Colors.Tokens.Insight, t.Colors.Primary)
	p.TokenDNA = colorOrDefault(t.Colors.Tokens.DNA, t.Colors.Secondary)
	p.TokenSecure = colorOrDefault(t.Colors.Tokens.Secure, t.Colors.Warning)

	p.ControlRunning = colorOrDefault(t.Colors.Control.Running, t.Colors.Secondary)
	p.ControlPaused = colorOrDefault(t.Colors.Control.Paused, t.Colors.Warning)
	p.ControlStepping = colorOrDefault(t.Colors.Control.Stepping, t.Colors.Primary)
	p.ControlIdle = colorOrDefault(t.Colors.Control.Idle, t.Colors.Muted)

	p.Pulse = colorOrDefault(t.Colors.Pulse, t.Colors.Primary)

	return p
}

// colorOrDefault returns the color if non-empty, otherwise returns the default.
func colorOrDefault(color, defaultColor string) lipgloss.Color {
	if color != "" {
		return lipgloss.Color(color)
	}
	return lipgloss.Color(defaultColor)
}

// customThemes stores loaded custom themes.
var customThemes = make(map[ThemeName]*ThemeFile)

// RegisterCustomTheme registers a custom theme by name.
func RegisterCustomTheme(name ThemeName, theme *ThemeFile) {
	customThemes[name] = theme
}

// GetCustomTheme returns a custom theme by name, or nil if not found.
func GetCustomTheme(name ThemeName) *ThemeFile {
	return customThemes[name]
}

// CustomThemeNames returns the names of all registered custom themes.
func CustomThemeNames() []string {
	names := make([]string, 0, len(customThemes))
	for name := range customThemes {
		names = append(names, string(name))
	}
	return names
}

// ClearCustomThemes removes all registered custom themes.
// Primarily used for testing.
func ClearCustomThemes() {
	customThemes = make(map[ThemeName]*ThemeFile)
}

// DiscoverCustomThemes scans dir and registers every valid theme file it
// finds. Theme names derive from filenames; invalid files are collected as
// errors and skipped. A missing directory is not an error.
func DiscoverCustomThemes(dir string) ([]string, []error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, []error{fmt.Errorf("reading themes directory: %w", err)}
	}

	var loaded []string
	var errs []error

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}

		path := filepath.Join(dir, name)
		theme, err := LoadThemeFile(path)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		themeName := strings.TrimSuffix(strings.TrimSuffix(name, ".yaml"), ".yml")

		// Custom themes may not shadow built-in names.
		if IsBuiltinTheme(themeName) {
			errs = append(errs, fmt.Errorf("%s: cannot override built-in theme '%s'", name, themeName))
			continue
		}

		RegisterCustomTheme(ThemeName(themeName), theme)
		loaded = append(loaded, themeName)
	}

	return loaded, errs
}

// IsBuiltinTheme checks if a theme name is a built-in theme.
func IsBuiltinTheme(name string) bool {
	for _, t := range BuiltinThemes() {
		if t == name {
			return true
		}
	}
	return false
}

// IsCustomTheme checks if a theme name is a registered custom theme.
func IsCustomTheme(name string) bool {
	_, ok := customThemes[ThemeName(name)]
	return ok
}
