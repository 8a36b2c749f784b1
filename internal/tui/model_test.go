package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/fluxmap/fluxmap/internal/config"
	"github.com/fluxmap/fluxmap/internal/sim"
)

func newTestModel(t *testing.T) *Model {
	t.Helper()
	s := sim.New(sim.Options{}, nil, nil)
	return NewModel(s, config.Default().TUI, nil, nil)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "shift+tab":
		return tea.KeyMsg{Type: tea.KeyShiftTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	if m.width != 120 || m.height != 40 {
		t.Errorf("size = %dx%d, want 120x40", m.width, m.height)
	}
}

func TestModel_ViewBeforeSize(t *testing.T) {
	m := newTestModel(t)
	if v := m.View(); v == "" {
		t.Error("View() empty before first WindowSizeMsg")
	}
}

func TestModel_ViewRendersFrame(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	v := m.View()
	if !strings.Contains(v, "fluxmap") {
		t.Error("View() missing header title")
	}
	if !strings.Contains(v, "IDLE") {
		t.Error("View() missing control badge")
	}
	if !strings.Contains(v, "fetcher") {
		t.Error("View() missing node labels")
	}
}

func TestModel_TickSchedulesNextFrame(t *testing.T) {
	m := newTestModel(t)
	before := m.snap.At

	_, cmd := m.Update(tickMsg(time.Now()))
	if cmd == nil {
		t.Fatal("tick returned no follow-up command")
	}
	if !m.snap.At.After(before) {
		t.Error("tick did not refresh the snapshot")
	}
}

func TestModel_PlayPauseToggles(t *testing.T) {
	m := newTestModel(t)
	ctrl := m.sim.Controller()

	m.Update(keyMsg("p"))
	if ctrl.State() != sim.ControlRunning {
		t.Fatalf("state after play = %s, want running", ctrl.State())
	}
	m.Update(keyMsg("p"))
	if ctrl.State() != sim.ControlPaused {
		t.Errorf("state after pause = %s, want paused", ctrl.State())
	}
}

func TestModel_StepAndStop(t *testing.T) {
	m := newTestModel(t)
	ctrl := m.sim.Controller()

	m.Update(keyMsg("p"))
	m.Update(keyMsg("p")) // paused
	_, cmd := m.Update(keyMsg("s"))
	if ctrl.State() != sim.ControlStepping {
		t.Fatalf("state after step = %s, want stepping", ctrl.State())
	}
	if cmd == nil {
		t.Fatal("step did not return a command waiting on the result")
	}
	m.Update(keyMsg("x"))
	if ctrl.State() != sim.ControlIdle {
		t.Errorf("state after stop = %s, want idle", ctrl.State())
	}
	if msg, ok := cmd().(stepDoneMsg); !ok || msg.done {
		t.Errorf("step result after stop = %+v, want unfinished stepDoneMsg", msg)
	}
}

func TestModel_StepSettlesWhenWorkCompletes(t *testing.T) {
	m := newTestModel(t)
	ctrl := m.sim.Controller()

	m.Update(keyMsg("p"))
	m.Update(keyMsg("p")) // paused
	_, cmd := m.Update(keyMsg("s"))

	// The ingest side admits one event and reports back.
	if !ctrl.CanProceed() {
		t.Fatal("stepping controller refused the single grant")
	}
	m.sim.HandleEvent(sim.Event{Type: "fetcher:start", Status: sim.StatusStart})
	ctrl.StepComplete()

	if ctrl.State() != sim.ControlPaused {
		t.Fatalf("state after completion = %s, want paused", ctrl.State())
	}
	msg, ok := cmd().(stepDoneMsg)
	if !ok || !msg.done {
		t.Fatalf("step command resolved %+v, want done", msg)
	}
	m.Update(msg)
	if m.snap.Control != sim.ControlPaused {
		t.Errorf("snapshot control = %s, want paused", m.snap.Control)
	}
}

func TestModel_FocusCycling(t *testing.T) {
	m := newTestModel(t)

	m.Update(keyMsg("tab"))
	if m.focus == "" {
		t.Fatal("tab did not focus a node")
	}
	first := m.focus

	m.Update(keyMsg("shift+tab"))
	m.Update(keyMsg("tab"))
	if m.focus != first {
		t.Errorf("next after prev = %s, want %s", m.focus, first)
	}

	m.Update(keyMsg("esc"))
	if m.focus != "" {
		t.Errorf("focus after esc = %s, want empty", m.focus)
	}
}

func TestModel_FocusSkipsHiddenSlots(t *testing.T) {
	m := newTestModel(t)

	seen := make(map[sim.NodeID]bool)
	for range m.snap.Nodes {
		m.Update(keyMsg("tab"))
		seen[m.focus] = true
	}
	for id := range seen {
		if strings.HasPrefix(string(id), "repo_slot_") {
			t.Errorf("unassigned slot %s reachable via focus", id)
		}
	}
}

func TestModel_ToggleSidebar(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	if !m.showSidebar {
		t.Fatal("sidebar hidden by default")
	}
	m.Update(keyMsg("b"))
	if m.showSidebar {
		t.Error("b did not hide the sidebar")
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t)
	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("quit key returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Errorf("quit command produced %T, want tea.QuitMsg", cmd())
	}
}

func TestControlBadge(t *testing.T) {
	m := newTestModel(t)
	tests := []struct {
		state sim.ControlState
		want  string
	}{
		{sim.ControlIdle, "IDLE"},
		{sim.ControlRunning, "RUNNING"},
		{sim.ControlPaused, "PAUSED"},
		{sim.ControlStepping, "STEPPING"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := controlBadge(tt.state, m.styles); !strings.Contains(got, tt.want) {
				t.Errorf("controlBadge(%s) = %q, want to contain %q", tt.state, got, tt.want)
			}
		})
	}
}

func TestStatFlags(t *testing.T) {
	tests := []struct {
		name  string
		stats sim.NodeStats
		want  string
	}{
		{"none", sim.NodeStats{}, ""},
		{"waiting", sim.NodeStats{Waiting: true}, "waiting"},
		{"gate", sim.NodeStats{GateLocked: true}, "gate locked"},
		{"combined", sim.NodeStats{Dispatching: true, PendingHandover: true}, "dispatching · pending handover"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := statFlags(tt.stats); got != tt.want {
				t.Errorf("statFlags() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short enough", "abc", 5, "abc"},
		{"exact", "abcde", 5, "abcde"},
		{"truncated", "abcdef", 5, "abcd…"},
		{"multibyte safe", "αβγδε", 3, "αβ…"},
		{"max too small", "abc", 1, "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truncate(tt.in, tt.max); got != tt.want {
				t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestModel_SidebarShowsFocusedNode(t *testing.T) {
	m := newTestModel(t)
	m.Update(tea.WindowSizeMsg{Width: 140, Height: 50})

	m.sim.HandleEvent(sim.Event{Type: "repo:start", Repo: "octo/demo"})
	m.snap = m.sim.Snapshot()
	m.focus = sim.NodeAuditor

	side := m.renderSidebar(m.snap, 36, 40)
	if !strings.Contains(side, "auditor") {
		t.Error("sidebar missing focused node id")
	}
	if !strings.Contains(side, "octo/demo") {
		t.Error("sidebar missing active repo")
	}
}
