package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete fluxmap configuration
type Config struct {
	Sim     SimConfig     `mapstructure:"sim"`
	Ingest  IngestConfig  `mapstructure:"ingest"`
	TUI     TUIConfig     `mapstructure:"tui"`
	Replay  ReplayConfig  `mapstructure:"replay"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// SimConfig controls the simulation core
type SimConfig struct {
	// HistoryDepth is the number of entries kept per node history ring (default: 24)
	HistoryDepth int `mapstructure:"history_depth"`
	// TransientMs is how long dispatch/receive flashes stay lit, in milliseconds (default: 450)
	TransientMs int `mapstructure:"transient_ms"`
	// SelfClearMs is how long a one-shot activation stays lit before clearing itself,
	// in milliseconds (default: 900)
	SelfClearMs int `mapstructure:"self_clear_ms"`
	// TokenSpeed is the fraction of an edge a token travels per second (default: 0.9)
	TokenSpeed float64 `mapstructure:"token_speed"`
	// PulseTTLMs is the lifetime of a node pulse in milliseconds (default: 700)
	PulseTTLMs int `mapstructure:"pulse_ttl_ms"`
}

// IngestConfig controls how telemetry is read
type IngestConfig struct {
	// Source is the path to the NDJSON telemetry file. Empty means stdin.
	// Supports ~ for home directory expansion.
	Source string `mapstructure:"source"`
	// Follow keeps reading the source file as it grows, like tail -f (default: false)
	Follow bool `mapstructure:"follow"`
	// PollIntervalMs is the fallback poll interval when filesystem notifications
	// are unavailable, in milliseconds (default: 250)
	PollIntervalMs int `mapstructure:"poll_interval_ms"`
	// IgnoreEvents is a list of glob patterns for event types to drop on ingest.
	// Examples: ["worker_*:dispatching", "cache:*"]
	IgnoreEvents []string `mapstructure:"ignore_events"`
	// Strict stops ingestion on the first malformed line instead of skipping it (default: false)
	Strict bool `mapstructure:"strict"`
}

// TUIConfig controls the terminal UI behavior
type TUIConfig struct {
	// FPS is the render tick rate in frames per second (default: 30, min: 1, max: 60)
	FPS int `mapstructure:"fps"`
	// SidebarWidth is the width of the sidebar panel in columns (default: 36, min: 20, max: 60)
	SidebarWidth int `mapstructure:"sidebar_width"`
	// Theme is the color theme for the TUI (default: "default")
	// Options: "default", "monokai", "dracula", "nord", or the name of a
	// custom theme file in ThemeDir
	Theme string `mapstructure:"theme"`
	// ThemeDir is a directory of custom YAML theme files.
	// Supports ~ for home directory expansion.
	ThemeDir string `mapstructure:"theme_dir"`
	// ShowHistory shows the per-node history panel in the sidebar (default: true)
	ShowHistory bool `mapstructure:"show_history"`
}

// ReplayConfig controls headless replay behavior
type ReplayConfig struct {
	// Speed is the replay time multiplier; 0 replays as fast as possible (default: 0)
	Speed float64 `mapstructure:"speed"`
	// Width is the summary table width in columns; 0 probes the terminal (default: 0)
	Width int `mapstructure:"width"`
}

// LoggingConfig controls debug logging behavior
type LoggingConfig struct {
	// Dir is the directory where the log file is written.
	// Empty disables file logging. Supports ~ for home directory expansion.
	Dir string `mapstructure:"dir"`
	// Level is the log level: "debug", "info", "warn", "error" (default: "info")
	Level string `mapstructure:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation (default: 10)
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups is the number of backup log files to keep (default: 3)
	MaxBackups int `mapstructure:"max_backups"`
	// Compress gzip compresses rotated log files (default: false)
	Compress bool `mapstructure:"compress"`
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Sim: SimConfig{
			HistoryDepth: 24,
			TransientMs:  450,
			SelfClearMs:  900,
			TokenSpeed:   0.9,
			PulseTTLMs:   700,
		},
		Ingest: IngestConfig{
			Source:         "",
			Follow:         false,
			PollIntervalMs: 250,
			IgnoreEvents:   []string{},
			Strict:         false,
		},
		TUI: TUIConfig{
			FPS:          30,
			SidebarWidth: 36,
			Theme:        "default",
			ThemeDir:     "",
			ShowHistory:  true,
		},
		Replay: ReplayConfig{
			Speed: 0,
			Width: 0,
		},
		Logging: LoggingConfig{
			Dir:        "",
			Level:      "info",
			MaxSizeMB:  10,
			MaxBackups: 3,
			Compress:   false,
		},
	}
}

// Transient returns the transient flash duration as a time.Duration
func (c *SimConfig) Transient() time.Duration {
	return time.Duration(c.TransientMs) * time.Millisecond
}

// SelfClear returns the self-clear duration as a time.Duration
func (c *SimConfig) SelfClear() time.Duration {
	return time.Duration(c.SelfClearMs) * time.Millisecond
}

// PulseTTL returns the pulse lifetime as a time.Duration
func (c *SimConfig) PulseTTL() time.Duration {
	return time.Duration(c.PulseTTLMs) * time.Millisecond
}

// PollInterval returns the poll interval as a time.Duration
func (c *IngestConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// FrameInterval returns the render tick interval derived from FPS
func (c *TUIConfig) FrameInterval() time.Duration {
	fps := c.FPS
	if fps <= 0 {
		fps = 30
	}
	return time.Second / time.Duration(fps)
}

// ResolveSource returns the resolved telemetry source path.
// If Source starts with ~, it expands to the user's home directory.
// An empty Source is returned unchanged (it means stdin).
func (c *IngestConfig) ResolveSource() string {
	return expandHome(c.Source)
}

// ResolveThemeDir returns the resolved theme directory path with ~ expanded.
func (c *TUIConfig) ResolveThemeDir() string {
	return expandHome(c.ThemeDir)
}

// ResolveDir returns the resolved log directory path with ~ expanded.
func (c *LoggingConfig) ResolveDir() string {
	return expandHome(c.Dir)
}

// expandHome expands a leading ~ to the user's home directory.
func expandHome(path string) string {
	if path == "" {
		return ""
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			return home
		}
	}
	return path
}

// SetDefaults registers default values with viper
func SetDefaults() {
	defaults := Default()

	// Sim defaults
	viper.SetDefault("sim.history_depth", defaults.Sim.HistoryDepth)
	viper.SetDefault("sim.transient_ms", defaults.Sim.TransientMs)
	viper.SetDefault("sim.self_clear_ms", defaults.Sim.SelfClearMs)
	viper.SetDefault("sim.token_speed", defaults.Sim.TokenSpeed)
	viper.SetDefault("sim.pulse_ttl_ms", defaults.Sim.PulseTTLMs)

	// Ingest defaults
	viper.SetDefault("ingest.source", defaults.Ingest.Source)
	viper.SetDefault("ingest.follow", defaults.Ingest.Follow)
	viper.SetDefault("ingest.poll_interval_ms", defaults.Ingest.PollIntervalMs)
	viper.SetDefault("ingest.ignore_events", defaults.Ingest.IgnoreEvents)
	viper.SetDefault("ingest.strict", defaults.Ingest.Strict)

	// TUI defaults
	viper.SetDefault("tui.fps", defaults.TUI.FPS)
	viper.SetDefault("tui.sidebar_width", defaults.TUI.SidebarWidth)
	viper.SetDefault("tui.theme", defaults.TUI.Theme)
	viper.SetDefault("tui.theme_dir", defaults.TUI.ThemeDir)
	viper.SetDefault("tui.show_history", defaults.TUI.ShowHistory)

	// Replay defaults
	viper.SetDefault("replay.speed", defaults.Replay.Speed)
	viper.SetDefault("replay.width", defaults.Replay.Width)

	// Logging defaults
	viper.SetDefault("logging.dir", defaults.Logging.Dir)
	viper.SetDefault("logging.level", defaults.Logging.Level)
	viper.SetDefault("logging.max_size_mb", defaults.Logging.MaxSizeMB)
	viper.SetDefault("logging.max_backups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.compress", defaults.Logging.Compress)
}

// Load reads the configuration from viper into a Config struct and validates it
func Load() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Validate the configuration
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}

	return &cfg, nil
}

// Get returns the current configuration (convenience function)
func Get() *Config {
	cfg, err := Load()
	if err != nil {
		// Fall back to defaults if unmarshaling fails
		return Default()
	}
	return cfg
}

// ConfigDir returns the path to the user's config directory
func ConfigDir() string {
	// Check XDG_CONFIG_HOME first
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "fluxmap")
	}
	// Fall back to ~/.config/fluxmap
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fluxmap"
	}
	return filepath.Join(home, ".config", "fluxmap")
}

// ConfigFile returns the path to the config file
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}
