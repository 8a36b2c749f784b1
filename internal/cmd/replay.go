package cmd

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/fluxmap/fluxmap/internal/config"
	"github.com/fluxmap/fluxmap/internal/ingest"
	"github.com/fluxmap/fluxmap/internal/sim"
)

// replayEventGap is the inter-event pacing unit; --speed divides it.
const replayEventGap = 25 * time.Millisecond

var replayCmd = &cobra.Command{
	Use:   "replay [events.ndjson]",
	Short: "Drain a telemetry stream headlessly and print a summary",
	Long: `Replay pushes a telemetry stream through the simulation without the
TUI and prints the final per-node state. Useful for smoke-testing a
captured stream and for scripting.

Examples:
  # Summarize a captured stream
  fluxmap replay events.ndjson

  # Pace it at half telemetry speed
  fluxmap replay --speed 0.5 events.ndjson`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().Float64("speed", 0, "pacing multiplier, 0 drains as fast as possible")
	_ = viper.BindPFlag("replay.speed", replayCmd.Flags().Lookup("speed"))

	replayCmd.Flags().Int("width", 0, "summary width in columns, 0 probes the terminal")
	_ = viper.BindPFlag("replay.width", replayCmd.Flags().Lookup("width"))

	replayCmd.Flags().Bool("strict", false, "stop on the first malformed line")
	_ = viper.BindPFlag("ingest.strict", replayCmd.Flags().Lookup("strict"))
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	source := cfg.Ingest.ResolveSource()
	if len(args) == 1 {
		source = args[0]
	}

	logger, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer logger.Close()

	s := sim.New(simOptions(cfg.Sim), nil, logger)
	s.Controller().Play()

	// no gate: replay is never paused
	reader, err := newReader(cfg, nil, nil, logger)
	if err != nil {
		return err
	}

	src, closeSrc, err := openSource(source)
	if err != nil {
		return err
	}
	defer closeSrc()

	fn := deliver(s)
	paced := func(msg ingest.Message) {
		fn(msg)
		s.Tick(time.Now())
		if cfg.Replay.Speed > 0 {
			time.Sleep(time.Duration(float64(replayEventGap) / cfg.Replay.Speed))
		}
	}

	if err := reader.Drain(cmd.Context(), src, paced); err != nil {
		return err
	}
	s.Tick(time.Now())

	printSummary(cmd.OutOrStdout(), s.Snapshot(), reader, summaryWidth(cfg.Replay.Width))
	return nil
}

// summaryWidth resolves the output width: explicit config, then the
// terminal, then a fixed fallback.
func summaryWidth(configured int) int {
	if configured > 0 {
		return configured
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

func printSummary(w io.Writer, snap sim.Snapshot, reader *ingest.Reader, width int) {
	fmt.Fprintf(w, "%-18s %-8s %5s  %s\n", "node", "state", "count", "last event")

	nodes := append([]sim.NodeView(nil), snap.Nodes...)
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].Kind != nodes[j].Kind {
			return nodes[i].Kind < nodes[j].Kind
		}
		return nodes[i].ID < nodes[j].ID
	})

	for _, n := range nodes {
		if !n.Visible {
			continue
		}
		last := n.Stats.LastEvent
		line := fmt.Sprintf("%-18s %-8s %5d  %s", n.ID, n.State, n.Stats.Count, last)
		fmt.Fprintln(w, clip(line, width))
	}

	fmt.Fprintf(w, "\nlines %d  skipped %d  filtered %d\n",
		reader.Lines(), reader.Skipped(), reader.Dropped())
}

func clip(s string, width int) string {
	if width <= 0 || len(s) <= width {
		return s
	}
	return strings.TrimRight(s[:width], " ")
}
