package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fluxmap/fluxmap/internal/config"
	"github.com/fluxmap/fluxmap/internal/errors"
	"github.com/fluxmap/fluxmap/internal/event"
	"github.com/fluxmap/fluxmap/internal/logging"
	"github.com/fluxmap/fluxmap/internal/sim"
	"github.com/fluxmap/fluxmap/internal/tui/styles"
)

// Run starts the TUI over a live simulation and blocks until the user
// quits or ctx is canceled. When bus is non-nil its notifications drive
// the sidebar activity feed.
func Run(ctx context.Context, s *sim.Simulation, cfg *config.Config, bus *event.Bus, logger *logging.Logger) error {
	palette, err := resolvePalette(cfg.TUI, logger)
	if err != nil {
		return err
	}

	var feed *Feed
	if bus != nil {
		feed = NewFeed(feedDepth)
		defer feed.Attach(bus)()
	}

	model := NewModel(s, cfg.TUI, styles.NewThemedStyles(palette), feed)
	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err = p.Run()
	return err
}

// resolvePalette loads custom themes from the configured directory and
// resolves the configured theme name. An unknown name is an error, not a
// silent fallback to the default palette.
func resolvePalette(cfg config.TUIConfig, logger *logging.Logger) (*styles.ColorPalette, error) {
	if dir := cfg.ResolveThemeDir(); dir != "" {
		loaded, errs := styles.DiscoverCustomThemes(dir)
		for _, err := range errs {
			if logger != nil {
				logger.Warn("skipping custom theme", "error", err)
			}
		}
		if logger != nil && len(loaded) > 0 {
			logger.Info("loaded custom themes", "count", len(loaded))
		}
	}

	if cfg.Theme != "" && !styles.IsValidTheme(cfg.Theme) {
		return nil, errors.NewNotFoundError("theme", cfg.Theme)
	}
	return styles.GetPalette(styles.ThemeName(cfg.Theme)), nil
}
