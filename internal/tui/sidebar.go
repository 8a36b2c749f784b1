package tui

import (
	"fmt"
	"strings"

	"github.com/fluxmap/fluxmap/internal/sim"
)

// renderSidebar renders the detail panel: control state, active repos, and
// the focused node's stats and history.
func (m *Model) renderSidebar(snap sim.Snapshot, width, height int) string {
	th := m.styles
	inner := width - 4 // border and padding
	if inner < 8 {
		inner = 8
	}

	var b strings.Builder
	b.WriteString(th.SidebarTitle.Render("fluxmap"))
	b.WriteString("  ")
	b.WriteString(controlBadge(snap.Control, th))
	b.WriteString("\n\n")

	b.WriteString(th.SidebarSectionTitle.Render("repos"))
	b.WriteByte('\n')
	repos := 0
	for _, n := range snap.Nodes {
		if n.Kind != sim.KindSlot || !n.Visible {
			continue
		}
		repos++
		st := th.SidebarEntry
		if n.Completed {
			st = th.SidebarEntryDone
		}
		b.WriteString(st.Render(truncate(n.Label, inner)))
		b.WriteByte('\n')
	}
	if repos == 0 {
		b.WriteString(th.Muted.Render("none yet"))
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	if m.focus != "" {
		m.renderFocusDetail(&b, snap, inner)
	} else {
		b.WriteString(th.Muted.Render("tab: inspect a node"))
		b.WriteByte('\n')
	}

	if m.feed != nil {
		if lines := m.feed.Lines(); len(lines) > 0 {
			b.WriteByte('\n')
			b.WriteString(th.SidebarSectionTitle.Render("activity"))
			b.WriteByte('\n')
			for _, line := range lines {
				b.WriteString(th.Muted.Render(truncate(line, inner)))
				b.WriteByte('\n')
			}
		}
	}

	return th.Sidebar.Width(width - 2).Height(height - 2).Render(b.String())
}

func (m *Model) renderFocusDetail(b *strings.Builder, snap sim.Snapshot, inner int) {
	th := m.styles
	var view *sim.NodeView
	for i := range snap.Nodes {
		if snap.Nodes[i].ID == m.focus {
			view = &snap.Nodes[i]
			break
		}
	}
	if view == nil {
		return
	}

	b.WriteString(th.SidebarSectionTitle.Render(string(view.ID)))
	b.WriteByte('\n')
	b.WriteString(th.SidebarEntry.Render(fmt.Sprintf("state  %s", view.State)))
	b.WriteByte('\n')
	b.WriteString(th.SidebarEntry.Render(fmt.Sprintf("count  %d", view.Stats.Count)))
	b.WriteByte('\n')
	if view.Stats.Repo != "" {
		b.WriteString(th.SidebarEntry.Render(truncate("repo   "+view.Stats.Repo, inner)))
		b.WriteByte('\n')
	}
	if view.Stats.File != "" {
		b.WriteString(th.SidebarEntry.Render(truncate("file   "+view.Stats.File, inner)))
		b.WriteByte('\n')
	}
	if view.Stats.LastEvent != "" {
		b.WriteString(th.Muted.Render(truncate("last   "+view.Stats.LastEvent, inner)))
		b.WriteByte('\n')
	}
	if flags := statFlags(view.Stats); flags != "" {
		b.WriteString(th.Warning.Render(flags))
		b.WriteByte('\n')
	}

	if !m.showHistory {
		return
	}
	entries := snap.History[view.ID]
	if len(entries) == 0 {
		return
	}
	b.WriteByte('\n')
	b.WriteString(th.SidebarSectionTitle.Render("history"))
	b.WriteByte('\n')
	// newest first
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		line := e.File
		if line == "" {
			line = e.Repo
		}
		st := th.SidebarEntry
		if e.Done {
			st = th.SidebarEntryDone
		}
		b.WriteString(st.Render(truncate(line, inner)))
		b.WriteByte('\n')
	}
}

func statFlags(s sim.NodeStats) string {
	var flags []string
	if s.Waiting {
		flags = append(flags, "waiting")
	}
	if s.Dispatching {
		flags = append(flags, "dispatching")
	}
	if s.Receiving {
		flags = append(flags, "receiving")
	}
	if s.PendingHandover {
		flags = append(flags, "pending handover")
	}
	if s.GateLocked {
		flags = append(flags, "gate locked")
	}
	return strings.Join(flags, " · ")
}

func truncate(s string, max int) string {
	r := []rune(s)
	if max <= 1 || len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
