package tui

import (
	"fmt"
	"sync"

	"github.com/fluxmap/fluxmap/internal/event"
)

// feedDepth is how many activity lines the sidebar keeps.
const feedDepth = 8

// Feed collects bus notifications into a bounded activity log for the
// sidebar. Bus handlers run on producer goroutines, so the feed carries
// its own lock.
type Feed struct {
	mu      sync.Mutex
	max     int
	entries []string
}

// NewFeed creates a feed keeping the last max lines.
func NewFeed(max int) *Feed {
	if max <= 0 {
		max = feedDepth
	}
	return &Feed{max: max}
}

// Attach subscribes the feed to every notification on the bus. The
// returned function removes the subscription.
func (f *Feed) Attach(bus *event.Bus) func() {
	return bus.SubscribeAll(func(e event.Event) {
		if line := formatNotification(e); line != "" {
			f.push(line)
		}
	})
}

func (f *Feed) push(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, line)
	if len(f.entries) > f.max {
		f.entries = f.entries[len(f.entries)-f.max:]
	}
}

// Lines returns the collected lines, oldest first.
func (f *Feed) Lines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.entries))
	copy(out, f.entries)
	return out
}

// formatNotification renders one notification as an activity line.
// Redundant transitions are noise and are dropped.
func formatNotification(e event.Event) string {
	switch ev := e.(type) {
	case event.NodeTransitionEvent:
		if ev.Redundant {
			return ""
		}
		if ev.Status == "" {
			return ev.NodeID
		}
		return fmt.Sprintf("%s %s", ev.NodeID, ev.Status)
	case event.RepoAssignedEvent:
		return fmt.Sprintf("%s assigned to %s", ev.Repo, ev.SlotID)
	case event.ControlChangedEvent:
		return "control " + ev.State
	case event.IngestErrorEvent:
		return "bad line: " + ev.Err
	default:
		return e.EventType()
	}
}
