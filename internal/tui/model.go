package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fluxmap/fluxmap/internal/config"
	"github.com/fluxmap/fluxmap/internal/sim"
	"github.com/fluxmap/fluxmap/internal/tui/styles"
)

// Model is the bubbletea model for the pipeline map. It owns no simulation
// state: every frame it ticks the simulation and renders the snapshot it
// gets back.
type Model struct {
	sim    *sim.Simulation
	cfg    config.TUIConfig
	styles *styles.ThemedStyles
	keys   KeyMap
	help   help.Model
	feed   *Feed

	snap  sim.Snapshot
	focus sim.NodeID

	width  int
	height int

	designW float64
	designH float64

	showSidebar bool
	showHistory bool
}

// NewModel builds the TUI model over a live simulation. feed may be nil
// when no notification bus is attached.
func NewModel(s *sim.Simulation, cfg config.TUIConfig, th *styles.ThemedStyles, feed *Feed) *Model {
	if th == nil {
		th = styles.NewThemedStyles(nil)
	}
	topo := s.Topology()
	return &Model{
		sim:         s,
		cfg:         cfg,
		styles:      th,
		feed:        feed,
		keys:        DefaultKeyMap(),
		help:        help.New(),
		snap:        s.Snapshot(),
		designW:     topo.Width,
		designH:     topo.Height,
		showSidebar: true,
		showHistory: cfg.ShowHistory,
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tickCmd(m.cfg.FrameInterval())
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.sim.Tick(time.Time(msg))
		m.snap = m.sim.Snapshot()
		return m, tickCmd(m.cfg.FrameInterval())

	case stepDoneMsg:
		if msg.done {
			m.snap = m.sim.Snapshot()
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ctrl := m.sim.Controller()
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.PlayPause):
		if ctrl.State() == sim.ControlRunning {
			ctrl.Pause()
		} else {
			ctrl.Play()
		}

	case key.Matches(msg, m.keys.Step):
		return m, stepCmd(ctrl.Step())

	case key.Matches(msg, m.keys.Stop):
		ctrl.Stop()

	case key.Matches(msg, m.keys.FocusNext):
		m.cycleFocus(1)

	case key.Matches(msg, m.keys.FocusPrev):
		m.cycleFocus(-1)

	case key.Matches(msg, m.keys.ClearFocus):
		m.focus = ""
		m.sim.SetFocus("")

	case key.Matches(msg, m.keys.ToggleSidebar):
		m.showSidebar = !m.showSidebar

	case key.Matches(msg, m.keys.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// cycleFocus moves the focused node forward or backward through the
// visible nodes in snapshot order.
func (m *Model) cycleFocus(dir int) {
	var ids []sim.NodeID
	for _, n := range m.snap.Nodes {
		if n.Visible {
			ids = append(ids, n.ID)
		}
	}
	if len(ids) == 0 {
		return
	}
	cur := -1
	for i, id := range ids {
		if id == m.focus {
			cur = i
			break
		}
	}
	next := (cur + dir + len(ids)) % len(ids)
	m.focus = ids[next]
	m.sim.SetFocus(m.focus)
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "starting..."
	}
	th := m.styles

	header := m.renderHeader()
	helpBar := th.HelpBar.Render(m.help.View(m.keys))
	bodyH := m.height - lipgloss.Height(header) - lipgloss.Height(helpBar)
	if bodyH < 1 {
		bodyH = 1
	}

	var body string
	if m.showSidebar && m.width > m.cfg.SidebarWidth+20 {
		mapW := m.width - m.cfg.SidebarWidth
		body = lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderMap(m.snap, mapW, bodyH),
			m.renderSidebar(m.snap, m.cfg.SidebarWidth, bodyH),
		)
	} else {
		body = m.renderMap(m.snap, m.width, bodyH)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, helpBar)
}

func (m *Model) renderHeader() string {
	th := m.styles
	title := th.HeaderTitle.Render("fluxmap")
	badge := controlBadge(m.snap.Control, th)
	stats := th.Muted.Render(fmt.Sprintf("%d tokens in flight", len(m.snap.Tokens)))
	line := lipgloss.JoinHorizontal(lipgloss.Center, title, "  ", badge, "  ", stats)
	return th.Header.Width(m.width).Render(line)
}
