package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fluxmap/fluxmap/internal/config"
	"github.com/fluxmap/fluxmap/internal/event"
	"github.com/fluxmap/fluxmap/internal/ingest"
	"github.com/fluxmap/fluxmap/internal/logging"
	"github.com/fluxmap/fluxmap/internal/sim"
	"github.com/fluxmap/fluxmap/internal/tui"
)

var runCmd = &cobra.Command{
	Use:   "run [events.ndjson]",
	Short: "Render the live pipeline map",
	Long: `Run starts the TUI over a telemetry stream.

With a file argument the stream is read from that file; without one it
is read from the source configured in ingest.source, falling back to
stdin. Use --follow to keep reading the file as it grows.

Examples:
  # Replay a captured stream into the map
  fluxmap run events.ndjson

  # Watch a live pipeline writing to a log
  fluxmap run --follow /var/log/pipeline/events.ndjson

  # Pipe telemetry straight in
  analysis-pipeline --emit-telemetry | fluxmap run`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("follow", "f", false, "keep reading the source as it grows")
	_ = viper.BindPFlag("ingest.follow", runCmd.Flags().Lookup("follow"))

	runCmd.Flags().Bool("strict", false, "stop on the first malformed line")
	_ = viper.BindPFlag("ingest.strict", runCmd.Flags().Lookup("strict"))

	runCmd.Flags().StringSlice("ignore", nil, "glob patterns of event types to drop")
	_ = viper.BindPFlag("ingest.ignore_events", runCmd.Flags().Lookup("ignore"))

	runCmd.Flags().String("theme", "", "color theme")
	_ = viper.BindPFlag("tui.theme", runCmd.Flags().Lookup("theme"))

	runCmd.Flags().Int("fps", 0, "render tick rate")
	_ = viper.BindPFlag("tui.fps", runCmd.Flags().Lookup("fps"))
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	source := cfg.Ingest.ResolveSource()
	if len(args) == 1 {
		source = args[0]
	}
	if cfg.Ingest.Follow && source == "" {
		return errors.New("--follow needs a file source, not stdin")
	}

	logger, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer logger.Close()

	bus := event.NewBus()
	s := sim.New(simOptions(cfg.Sim), bus, logger)
	s.Controller().Play()

	bus.Subscribe("ingest.error", func(e event.Event) {
		if ie, ok := e.(event.IngestErrorEvent); ok {
			logger.Warn("telemetry line rejected", "error", ie.Err)
		}
	})
	bus.Subscribe("repo.assigned", func(e event.Event) {
		if ra, ok := e.(event.RepoAssignedEvent); ok {
			logger.Info("repo assigned", "repo", ra.Repo, "slot", ra.SlotID)
		}
	})

	onError := func(line []byte, err error) {
		bus.Publish(event.NewIngestErrorEvent(string(line), err.Error()))
	}
	reader, err := newReader(cfg, s.Controller(), onError, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	go func() {
		if err := feed(ctx, reader, s, source, cfg, logger); err != nil && ctx.Err() == nil {
			logger.Error("ingest stopped", "error", err)
		}
	}()

	return tui.Run(ctx, s, cfg, bus, logger)
}

// newLogger builds the configured logger. When the TUI owns the terminal
// and no log directory is configured, logging is disabled rather than
// letting stderr write over the screen.
func newLogger(cfg *config.Config, tuiOwnsTerminal bool) (*logging.Logger, error) {
	dir := cfg.Logging.ResolveDir()
	if dir == "" && tuiOwnsTerminal {
		return logging.NopLogger(), nil
	}
	return logging.NewLogger(dir, cfg.Logging.Level, logging.RotationConfig{
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		Compress:   cfg.Logging.Compress,
	})
}

func simOptions(c config.SimConfig) sim.Options {
	return sim.Options{
		HistoryDepth: c.HistoryDepth,
		TransientDur: c.Transient(),
		SelfClearDur: c.SelfClear(),
		TokenSpeed:   c.TokenSpeed,
		PulseTTL:     c.PulseTTL(),
	}
}

func newReader(cfg *config.Config, gate ingest.Gate, onError func([]byte, error), logger *logging.Logger) (*ingest.Reader, error) {
	filter, err := ingest.NewFilter(cfg.Ingest.IgnoreEvents)
	if err != nil {
		return nil, fmt.Errorf("bad ignore pattern: %w", err)
	}
	return ingest.NewReader(ingest.ReaderOptions{
		Filter:  filter,
		Gate:    gate,
		Strict:  cfg.Ingest.Strict,
		OnError: onError,
		Logger:  logger,
	}), nil
}

// deliver routes one decoded message into the simulation.
func deliver(s *sim.Simulation) ingest.Handler {
	return func(msg ingest.Message) {
		switch {
		case msg.Event != nil:
			s.HandleEvent(*msg.Event)
		case msg.Health != nil:
			s.ApplyHealth(msg.Health)
		}
	}
}

// feed pumps the telemetry source into the simulation until EOF, tail
// shutdown, or context cancellation.
func feed(ctx context.Context, reader *ingest.Reader, s *sim.Simulation, source string, cfg *config.Config, logger *logging.Logger) error {
	fn := deliver(s)

	if cfg.Ingest.Follow {
		tailer := ingest.NewTailer(source, cfg.Ingest.PollInterval(), logger)
		return tailer.Run(ctx, func(line []byte) {
			if err := reader.HandleLine(ctx, line, fn); err != nil {
				logger.Error("ingest line failed", "error", err)
			}
		})
	}

	src, closeSrc, err := openSource(source)
	if err != nil {
		return err
	}
	defer closeSrc()
	return reader.Drain(ctx, src, fn)
}

func openSource(source string) (io.Reader, func() error, error) {
	if source == "" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(source)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
