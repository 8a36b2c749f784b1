package styles

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestIsValidHexColor(t *testing.T) {
	tests := []struct {
		name     string
		color    string
		expected bool
	}{
		{"valid 6-digit hex", "#A78BFA", true},
		{"valid 6-digit hex lowercase", "#a78bfa", true},
		{"valid 3-digit hex", "#ABC", true},
		{"invalid - no hash", "A78BFA", false},
		{"invalid - too short", "#AB", false},
		{"invalid - too long", "#A78BFAAB", false},
		{"invalid - 4 digits", "#ABCD", false},
		{"invalid - bad characters", "#GHIJKL", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := isValidHexColor(tt.color)
			if got != tt.expected {
				t.Errorf("isValidHexColor(%q) = %v, want %v", tt.color, got, tt.expected)
			}
		})
	}
}

func validThemeColors() ThemeColors {
	return ThemeColors{
		Primary:   "#A78BFA",
		Secondary: "#10B981",
		Warning:   "#F59E0B",
		Error:     "#F87171",
		Muted:     "#9CA3AF",
		Surface:   "#1F2937",
		Text:      "#F9FAFB",
		Border:    "#6B7280",
	}
}

func TestThemeFileValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*ThemeFile)
		expectErr bool
		errMsg    string
	}{
		{
			name:      "valid minimal theme",
			mutate:    func(*ThemeFile) {},
			expectErr: false,
		},
		{
			name: "valid theme with optional sections",
			mutate: func(tf *ThemeFile) {
				tf.Colors.Nodes.Active = "#50FA7B"
				tf.Colors.Tokens.Insight = "#BD93F9"
				tf.Colors.Control.Stepping = "#8BE9FD"
				tf.Colors.Pulse = "#FF79C6"
			},
			expectErr: false,
		},
		{
			name:      "missing name",
			mutate:    func(tf *ThemeFile) { tf.Name = "" },
			expectErr: true,
			errMsg:    "name is required",
		},
		{
			name:      "missing version",
			mutate:    func(tf *ThemeFile) { tf.Version = "" },
			expectErr: true,
			errMsg:    "version is required",
		},
		{
			name:      "unsupported version",
			mutate:    func(tf *ThemeFile) { tf.Version = "2" },
			expectErr: true,
			errMsg:    "unsupported theme version",
		},
		{
			name:      "missing required color",
			mutate:    func(tf *ThemeFile) { tf.Colors.Surface = "" },
			expectErr: true,
			errMsg:    "'surface' is required",
		},
		{
			name:      "invalid required color",
			mutate:    func(tf *ThemeFile) { tf.Colors.Primary = "purple" },
			expectErr: true,
			errMsg:    "invalid format",
		},
		{
			name:      "invalid optional color",
			mutate:    func(tf *ThemeFile) { tf.Colors.Nodes.Error = "red" },
			expectErr: true,
			errMsg:    "nodes.error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme := ThemeFile{
				Name:    "Test Theme",
				Version: "1",
				Colors:  validThemeColors(),
			}
			tt.mutate(&theme)

			err := theme.Validate()
			if tt.expectErr {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %q, want it to contain %q", err, tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestThemeFileToPalette(t *testing.T) {
	theme := ThemeFile{
		Name:    "Test",
		Version: "1",
		Colors:  validThemeColors(),
	}
	theme.Colors.Nodes.Active = "#50FA7B"
	theme.Colors.Tokens.DNA = "#A6E22E"

	p := theme.ToPalette()

	if p.Primary != lipgloss.Color("#A78BFA") {
		t.Errorf("Primary = %v, want #A78BFA", p.Primary)
	}
	if p.NodeActive != lipgloss.Color("#50FA7B") {
		t.Errorf("NodeActive = %v, want explicit #50FA7B", p.NodeActive)
	}
	if p.TokenDNA != lipgloss.Color("#A6E22E") {
		t.Errorf("TokenDNA = %v, want explicit #A6E22E", p.TokenDNA)
	}
	// Unspecified optionals fall back to base colors.
	if p.NodeIdle != p.Muted {
		t.Errorf("NodeIdle = %v, want muted fallback %v", p.NodeIdle, p.Muted)
	}
	if p.NodeError != p.Error {
		t.Errorf("NodeError = %v, want error fallback %v", p.NodeError, p.Error)
	}
	if p.ControlRunning != p.Secondary {
		t.Errorf("ControlRunning = %v, want secondary fallback %v", p.ControlRunning, p.Secondary)
	}
}

func TestLoadThemeFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("valid file", func(t *testing.T) {
		path := filepath.Join(dir, "ok.yaml")
		writeThemeFixture(t, path, "Good Theme")

		theme, err := LoadThemeFile(path)
		if err != nil {
			t.Fatalf("LoadThemeFile() error = %v", err)
		}
		if theme.Name != "Good Theme" {
			t.Errorf("Name = %q, want %q", theme.Name, "Good Theme")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadThemeFile(filepath.Join(dir, "absent.yaml")); err == nil {
			t.Error("LoadThemeFile() = nil error for a missing file")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("name: [unclosed"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadThemeFile(path); err == nil {
			t.Error("LoadThemeFile() = nil error for malformed yaml")
		}
	})

	t.Run("invalid theme", func(t *testing.T) {
		path := filepath.Join(dir, "incomplete.yaml")
		if err := os.WriteFile(path, []byte("name: X\nversion: \"1\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadThemeFile(path); err == nil {
			t.Error("LoadThemeFile() = nil error for a theme missing colors")
		}
	})
}

func TestDiscoverCustomThemes(t *testing.T) {
	ClearCustomThemes()
	t.Cleanup(ClearCustomThemes)

	dir := t.TempDir()
	writeThemeFixture(t, filepath.Join(dir, "midnight.yaml"), "Midnight")
	writeThemeFixture(t, filepath.Join(dir, "default.yaml"), "Shadow Default")
	if err := os.WriteFile(filepath.Join(dir, "broken.yaml"), []byte("nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o644); err != nil {
		t.Fatal(err)
	}

	loaded, errs := DiscoverCustomThemes(dir)

	if !slices.Contains(loaded, "midnight") {
		t.Errorf("loaded = %v, want it to contain midnight", loaded)
	}
	if slices.Contains(loaded, "default") {
		t.Error("custom theme shadowed the built-in default")
	}
	// One error for the broken file, one for the built-in shadow.
	if len(errs) != 2 {
		t.Errorf("errs = %v, want 2 entries", errs)
	}

	if !IsCustomTheme("midnight") {
		t.Error("midnight not registered as a custom theme")
	}
	if !IsValidTheme("midnight") {
		t.Error("IsValidTheme(midnight) = false after discovery")
	}

	p := GetPalette("midnight")
	if p.Primary != lipgloss.Color("#BD93F9") {
		t.Errorf("custom palette primary = %v, want #BD93F9", p.Primary)
	}
}

func TestDiscoverCustomThemes_MissingDir(t *testing.T) {
	loaded, errs := DiscoverCustomThemes(filepath.Join(t.TempDir(), "nope"))
	if loaded != nil || errs != nil {
		t.Errorf("missing dir: loaded=%v errs=%v, want nil nil", loaded, errs)
	}
}

func writeThemeFixture(t *testing.T, path, name string) {
	t.Helper()
	data := `name: ` + name + `
version: "1"
colors:
  primary: "#BD93F9"
  secondary: "#50FA7B"
  warning: "#F1FA8C"
  error: "#FF5555"
  muted: "#6272A4"
  surface: "#282A36"
  text: "#F8F8F2"
  border: "#44475A"
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
}
