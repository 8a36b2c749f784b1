package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fluxmap/fluxmap/internal/sim"
	"github.com/fluxmap/fluxmap/internal/tui/styles"
)

// canvas is a cell grid the map view is composited onto. Cells carry a
// style pointer so consecutive runs with the same style render as one
// styled span.
type canvas struct {
	w, h  int
	cells []canvasCell
}

type canvasCell struct {
	r  rune
	st *lipgloss.Style
}

func newCanvas(w, h int) *canvas {
	c := &canvas{w: w, h: h, cells: make([]canvasCell, w*h)}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

func (c *canvas) set(x, y int, r rune, st *lipgloss.Style) {
	if x < 0 || x >= c.w || y < 0 || y >= c.h {
		return
	}
	c.cells[y*c.w+x] = canvasCell{r: r, st: st}
}

func (c *canvas) text(x, y int, s string, st *lipgloss.Style) {
	for i, r := range s {
		c.set(x+i, y, r, st)
	}
}

// String renders the grid, batching same-style runs per row.
func (c *canvas) String() string {
	var b strings.Builder
	var run strings.Builder
	for y := 0; y < c.h; y++ {
		if y > 0 {
			b.WriteByte('\n')
		}
		var cur *lipgloss.Style
		run.Reset()
		flush := func() {
			if run.Len() == 0 {
				return
			}
			if cur != nil {
				b.WriteString(cur.Render(run.String()))
			} else {
				b.WriteString(run.String())
			}
			run.Reset()
		}
		for x := 0; x < c.w; x++ {
			cell := c.cells[y*c.w+x]
			if cell.st != cur {
				flush()
				cur = cell.st
			}
			run.WriteRune(cell.r)
		}
		flush()
	}
	return b.String()
}

// projector maps design coordinates onto the cell grid.
type projector struct {
	w, h             int
	designW, designH float64
}

func (p projector) cell(v sim.Vec2) (int, int) {
	x := int(v.X / p.designW * float64(p.w-1))
	y := int(v.Y / p.designH * float64(p.h-1))
	if x < 0 {
		x = 0
	} else if x >= p.w {
		x = p.w - 1
	}
	if y < 0 {
		y = 0
	} else if y >= p.h {
		y = p.h - 1
	}
	return x, y
}

// line draws a segment between two cells. Axis-aligned segments use box
// characters; anything else steps with dots.
func (c *canvas) line(x0, y0, x1, y1 int, st *lipgloss.Style) {
	switch {
	case y0 == y1:
		if x1 < x0 {
			x0, x1 = x1, x0
		}
		for x := x0; x <= x1; x++ {
			c.set(x, y0, '─', st)
		}
	case x0 == x1:
		if y1 < y0 {
			y0, y1 = y1, y0
		}
		for y := y0; y <= y1; y++ {
			c.set(x0, y, '│', st)
		}
	default:
		dx, dy := x1-x0, y1-y0
		steps := abs(dx)
		if abs(dy) > steps {
			steps = abs(dy)
		}
		for i := 0; i <= steps; i++ {
			x := x0 + dx*i/steps
			y := y0 + dy*i/steps
			c.set(x, y, '·', st)
		}
	}
}

func (c *canvas) polyline(pts []sim.Vec2, p projector, st *lipgloss.Style) {
	for i := 0; i+1 < len(pts); i++ {
		x0, y0 := p.cell(pts[i])
		x1, y1 := p.cell(pts[i+1])
		c.line(x0, y0, x1, y1, st)
	}
}

// pointOnPath interpolates a position along a polyline by fraction of its
// total length.
func pointOnPath(pts []sim.Vec2, t float64) sim.Vec2 {
	if len(pts) == 0 {
		return sim.Vec2{}
	}
	if len(pts) == 1 || t <= 0 {
		return pts[0]
	}
	if t >= 1 {
		return pts[len(pts)-1]
	}
	total := 0.0
	for i := 0; i+1 < len(pts); i++ {
		total += pts[i+1].Sub(pts[i]).Len()
	}
	if total == 0 {
		return pts[0]
	}
	want := t * total
	for i := 0; i+1 < len(pts); i++ {
		seg := pts[i+1].Sub(pts[i])
		l := seg.Len()
		if want <= l && l > 0 {
			return pts[i].Add(seg.Scale(want / l))
		}
		want -= l
	}
	return pts[len(pts)-1]
}

func nodeGlyph(n sim.NodeView) rune {
	switch {
	case !n.Online:
		return '⊘'
	case n.State == sim.StateError:
		return '✖'
	case n.State == sim.StateActive:
		return '●'
	case n.State == sim.StatePending:
		return '◍'
	case n.State == sim.StatePaused:
		return '◌'
	case n.Buffer:
		return '▣'
	default:
		return '○'
	}
}

func tokenGlyph(k sim.PayloadKind) rune {
	switch k {
	case sim.PayloadMetadata:
		return '◆'
	case sim.PayloadFragment:
		return '▪'
	case sim.PayloadInsight:
		return '✦'
	case sim.PayloadDNASignal:
		return '¤'
	case sim.PayloadSecureStore:
		return '◈'
	default:
		return '»'
	}
}

func (m *Model) nodeStyle(n sim.NodeView) *lipgloss.Style {
	th := m.styles
	switch {
	case !n.Online:
		return &th.NodeOffline
	case n.State == sim.StateError:
		return &th.NodeError
	case n.State == sim.StateActive:
		return &th.NodeActive
	case n.State == sim.StatePending:
		return &th.NodePending
	case n.State == sim.StatePaused:
		return &th.NodePaused
	default:
		return &th.NodeIdle
	}
}

func (m *Model) tokenStyle(k sim.PayloadKind) *lipgloss.Style {
	th := m.styles
	switch k {
	case sim.PayloadMetadata:
		return &th.TokenMetadata
	case sim.PayloadFragment:
		return &th.TokenFragment
	case sim.PayloadInsight:
		return &th.TokenInsight
	case sim.PayloadDNASignal:
		return &th.TokenDNA
	case sim.PayloadSecureStore:
		return &th.TokenSecure
	default:
		return &th.TokenRawFile
	}
}

// renderMap composites the snapshot onto a canvas of the given cell size.
func (m *Model) renderMap(snap sim.Snapshot, w, h int) string {
	if w < 2 || h < 2 {
		return ""
	}
	c := newCanvas(w, h)
	p := projector{w: w, h: h, designW: m.designW, designH: m.designH}
	th := m.styles

	for _, e := range snap.Edges {
		c.polyline(e.Path, p, &th.Edge)
	}

	pos := make(map[sim.NodeID]sim.Vec2, len(snap.Nodes))
	for _, n := range snap.Nodes {
		if n.Visible {
			pos[n.ID] = n.Pos
		}
	}

	for _, pl := range snap.Pulses {
		at, ok := pos[pl.Node]
		if !ok {
			continue
		}
		x, y := p.cell(at)
		r := '○'
		if pl.Life > 0.5 {
			r = '◎'
		}
		c.set(x-1, y, r, &th.Pulse)
		c.set(x+1, y, r, &th.Pulse)
	}

	for _, n := range snap.Nodes {
		if !n.Visible {
			continue
		}
		x, y := p.cell(n.Pos)
		st := m.nodeStyle(n)
		focused := n.ID == m.focus
		if focused {
			st = &th.NodeFocused
		}
		c.set(x, y, nodeGlyph(n), st)

		label := n.Label
		if label == "" {
			label = string(n.ID)
		}
		lst := &th.Label
		if focused {
			lst = &th.LabelFocused
		}
		c.text(x-len(label)/2, y+1, label, lst)
	}

	for _, t := range snap.Tokens {
		if len(t.Path) == 0 {
			continue
		}
		x, y := p.cell(pointOnPath(t.Path, t.Progress))
		c.set(x, y, tokenGlyph(t.Kind), m.tokenStyle(t.Kind))
	}

	return c.String()
}

// controlBadge renders the styled control-state badge.
func controlBadge(state sim.ControlState, th *styles.ThemedStyles) string {
	label := strings.ToUpper(state.String())
	switch state {
	case sim.ControlRunning:
		return th.BadgeRunning.Render(label)
	case sim.ControlPaused:
		return th.BadgePaused.Render(label)
	case sim.ControlStepping:
		return th.BadgeStepping.Render(label)
	default:
		return th.BadgeIdle.Render(label)
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
