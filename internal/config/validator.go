package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "sim.history_depth")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validateSim()...)
	errors = append(errors, c.validateIngest()...)
	errors = append(errors, c.validateTUI()...)
	errors = append(errors, c.validateReplay()...)
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateSim validates the SimConfig
func (c *Config) validateSim() []ValidationError {
	var errors []ValidationError

	if c.Sim.HistoryDepth <= 0 {
		errors = append(errors, ValidationError{
			Field:   "sim.history_depth",
			Value:   c.Sim.HistoryDepth,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound to keep sidebar rendering fast
	const maxHistoryDepth = 500
	if c.Sim.HistoryDepth > maxHistoryDepth {
		errors = append(errors, ValidationError{
			Field:   "sim.history_depth",
			Value:   c.Sim.HistoryDepth,
			Message: fmt.Sprintf("exceeds maximum of %d", maxHistoryDepth),
		})
	}

	if c.Sim.TransientMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "sim.transient_ms",
			Value:   c.Sim.TransientMs,
			Message: "must be positive",
		})
	}

	if c.Sim.SelfClearMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "sim.self_clear_ms",
			Value:   c.Sim.SelfClearMs,
			Message: "must be positive",
		})
	}

	if c.Sim.TokenSpeed <= 0 {
		errors = append(errors, ValidationError{
			Field:   "sim.token_speed",
			Value:   c.Sim.TokenSpeed,
			Message: "must be positive",
		})
	}

	// Tokens faster than this cross an edge in under a frame and are invisible
	const maxTokenSpeed = 30.0
	if c.Sim.TokenSpeed > maxTokenSpeed {
		errors = append(errors, ValidationError{
			Field:   "sim.token_speed",
			Value:   c.Sim.TokenSpeed,
			Message: fmt.Sprintf("exceeds maximum of %v", maxTokenSpeed),
		})
	}

	if c.Sim.PulseTTLMs <= 0 {
		errors = append(errors, ValidationError{
			Field:   "sim.pulse_ttl_ms",
			Value:   c.Sim.PulseTTLMs,
			Message: "must be positive",
		})
	}

	return errors
}

// validateIngest validates the IngestConfig
func (c *Config) validateIngest() []ValidationError {
	var errors []ValidationError

	// Poll interval validation
	const minPollInterval = 10    // 10ms minimum
	const maxPollInterval = 10000 // 10 seconds maximum

	if c.Ingest.PollIntervalMs < minPollInterval {
		errors = append(errors, ValidationError{
			Field:   "ingest.poll_interval_ms",
			Value:   c.Ingest.PollIntervalMs,
			Message: fmt.Sprintf("must be at least %dms", minPollInterval),
		})
	}
	if c.Ingest.PollIntervalMs > maxPollInterval {
		errors = append(errors, ValidationError{
			Field:   "ingest.poll_interval_ms",
			Value:   c.Ingest.PollIntervalMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxPollInterval),
		})
	}

	// Source path validation
	if c.Ingest.Source != "" {
		if strings.ContainsRune(c.Ingest.Source, '\x00') {
			errors = append(errors, ValidationError{
				Field:   "ingest.source",
				Value:   c.Ingest.Source,
				Message: "path contains invalid null character",
			})
		}
	}

	// Following stdin makes no sense
	if c.Ingest.Follow && c.Ingest.Source == "" {
		errors = append(errors, ValidationError{
			Field:   "ingest.follow",
			Value:   c.Ingest.Follow,
			Message: "requires ingest.source to be a file path (stdin cannot be followed)",
		})
	}

	// Each ignore pattern must compile as a glob
	for i, pattern := range c.Ingest.IgnoreEvents {
		fieldName := fmt.Sprintf("ingest.ignore_events[%d]", i)

		if strings.TrimSpace(pattern) == "" {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   pattern,
				Message: "pattern cannot be empty",
			})
			continue
		}

		if _, err := glob.Compile(pattern); err != nil {
			errors = append(errors, ValidationError{
				Field:   fieldName,
				Value:   pattern,
				Message: fmt.Sprintf("invalid glob pattern: %v", err),
			})
		}
	}

	return errors
}

// validateTUI validates the TUIConfig
func (c *Config) validateTUI() []ValidationError {
	var errors []ValidationError

	// FPS validation (0 means use default, which is valid)
	const minFPS = 1
	const maxFPS = 60
	if c.TUI.FPS != 0 {
		if c.TUI.FPS < minFPS {
			errors = append(errors, ValidationError{
				Field:   "tui.fps",
				Value:   c.TUI.FPS,
				Message: fmt.Sprintf("must be at least %d", minFPS),
			})
		}
		if c.TUI.FPS > maxFPS {
			errors = append(errors, ValidationError{
				Field:   "tui.fps",
				Value:   c.TUI.FPS,
				Message: fmt.Sprintf("exceeds maximum of %d", maxFPS),
			})
		}
	}

	// Sidebar width validation (0 means use default, which is valid).
	// These values must match tui.SidebarMinWidth and tui.SidebarMaxWidth
	// (defined separately to avoid circular import).
	const minSidebarWidth = 20
	const maxSidebarWidth = 60
	if c.TUI.SidebarWidth != 0 {
		if c.TUI.SidebarWidth < minSidebarWidth {
			errors = append(errors, ValidationError{
				Field:   "tui.sidebar_width",
				Value:   c.TUI.SidebarWidth,
				Message: fmt.Sprintf("must be at least %d columns", minSidebarWidth),
			})
		}
		if c.TUI.SidebarWidth > maxSidebarWidth {
			errors = append(errors, ValidationError{
				Field:   "tui.sidebar_width",
				Value:   c.TUI.SidebarWidth,
				Message: fmt.Sprintf("exceeds maximum of %d columns", maxSidebarWidth),
			})
		}
	}

	if c.TUI.Theme == "" {
		errors = append(errors, ValidationError{
			Field:   "tui.theme",
			Value:   c.TUI.Theme,
			Message: "cannot be empty",
		})
	}

	if c.TUI.ThemeDir != "" && strings.ContainsRune(c.TUI.ThemeDir, '\x00') {
		errors = append(errors, ValidationError{
			Field:   "tui.theme_dir",
			Value:   c.TUI.ThemeDir,
			Message: "path contains invalid null character",
		})
	}

	return errors
}

// validateReplay validates the ReplayConfig
func (c *Config) validateReplay() []ValidationError {
	var errors []ValidationError

	if c.Replay.Speed < 0 {
		errors = append(errors, ValidationError{
			Field:   "replay.speed",
			Value:   c.Replay.Speed,
			Message: "must be non-negative (0 replays as fast as possible)",
		})
	}

	if c.Replay.Width < 0 {
		errors = append(errors, ValidationError{
			Field:   "replay.width",
			Value:   c.Replay.Width,
			Message: "must be non-negative (0 probes the terminal)",
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	// Max size must be positive
	if c.Logging.MaxSizeMB <= 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: "must be positive",
		})
	}

	// Reasonable upper bound for log file size
	const maxLogSizeMB = 1000 // 1GB
	if c.Logging.MaxSizeMB > maxLogSizeMB {
		errors = append(errors, ValidationError{
			Field:   "logging.max_size_mb",
			Value:   c.Logging.MaxSizeMB,
			Message: fmt.Sprintf("exceeds maximum of %dMB", maxLogSizeMB),
		})
	}

	// Max backups must be non-negative
	if c.Logging.MaxBackups < 0 {
		errors = append(errors, ValidationError{
			Field:   "logging.max_backups",
			Value:   c.Logging.MaxBackups,
			Message: "must be non-negative",
		})
	}

	return errors
}
