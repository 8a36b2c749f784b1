package sim

import "math"

// Layout tuning constants. Repulsion is linear rather than inverse-square:
// at the small separations this canvas works in, inverse-square forces blow
// up and the integrator oscillates, while a linear overlap push stays
// stable. The spring constant is small on purpose so motion reads as
// liquid, not snappy.
const (
	layoutMinSeparation = 46.0
	layoutRepulsion     = 0.55
	layoutSpring        = 0.045
	layoutDamping       = 0.82
	layoutDeadband      = 0.05

	boundsSnap = 0.18 // single-node pull toward box center
	boundsEase = 0.08 // multi-node edge-proportional correction
)

// Rect is an axis-aligned bounding box.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Center returns the box center.
func (r Rect) Center() Vec2 {
	return Vec2{(r.MinX + r.MaxX) / 2, (r.MinY + r.MaxY) / 2}
}

// LayoutEngine computes live node positions with a small force integrator:
// rest-position recompute, pairwise linear repulsion, Hooke spring toward
// rest, then damped integration with a velocity deadband. With no incoming
// events the layout settles; the deadband keeps it from jittering forever.
type LayoutEngine struct {
	store *Store
	topo  *Topology
}

// NewLayoutEngine builds a layout engine over store and topo.
func NewLayoutEngine(store *Store, topo *Topology) *LayoutEngine {
	return &LayoutEngine{store: store, topo: topo}
}

// Step advances the simulation one tick. Returns true when any node moved,
// which callers use to invalidate cached routes.
func (l *LayoutEngine) Step() bool {
	l.restPositions()
	l.repel()
	l.spring()
	return l.integrate()
}

// restPositions recomputes every node's rest position. Static nodes keep
// their design coordinate; satellites orbit their live parent.
func (l *LayoutEngine) restPositions() {
	l.store.Each(func(r *Record) {
		n := &r.Node
		if n.Kind != KindSatellite {
			return
		}
		parent := l.store.Get(n.OrbitParent)
		if parent == nil {
			return
		}
		n.OrbitAngle += n.OrbitSpeed
		if n.OrbitAngle > 2*math.Pi {
			n.OrbitAngle -= 2 * math.Pi
		}
		n.Rest = Vec2{
			X: parent.Node.Pos.X + n.OrbitRadius*math.Cos(n.OrbitAngle),
			Y: parent.Node.Pos.Y + n.OrbitRadius*math.Sin(n.OrbitAngle),
		}
	})
}

// repel applies a linear overlap push, split symmetrically, to any visible
// pair closer than the minimum separation.
func (l *LayoutEngine) repel() {
	count := l.store.Len()
	for i := 0; i < count; i++ {
		a := l.store.At(i)
		if !a.Node.Visible {
			continue
		}
		for j := i + 1; j < count; j++ {
			b := l.store.At(j)
			if !b.Node.Visible {
				continue
			}
			delta := b.Node.Pos.Sub(a.Node.Pos)
			dist := delta.Len()
			if dist >= layoutMinSeparation {
				continue
			}
			var dir Vec2
			if dist < 1e-6 {
				// Coincident nodes: nudge apart along x.
				dir = Vec2{1, 0}
				dist = 1e-6
			} else {
				dir = delta.Scale(1 / dist)
			}
			push := (layoutMinSeparation - dist) * layoutRepulsion / 2
			a.Node.Vel = a.Node.Vel.Sub(dir.Scale(push))
			b.Node.Vel = b.Node.Vel.Add(dir.Scale(push))
		}
	}
}

func (l *LayoutEngine) spring() {
	l.store.Each(func(r *Record) {
		if !r.Node.Visible {
			return
		}
		pull := r.Node.Rest.Sub(r.Node.Pos).Scale(layoutSpring)
		r.Node.Vel = r.Node.Vel.Add(pull)
	})
}

func (l *LayoutEngine) integrate() bool {
	moved := false
	l.store.Each(func(r *Record) {
		n := &r.Node
		n.Vel = n.Vel.Scale(layoutDamping)
		if n.Vel.Len() < layoutDeadband {
			n.Vel = Vec2{}
			return
		}
		n.Pos = n.Pos.Add(n.Vel)
		moved = true
	})
	return moved
}

// FocalPoint resolves the camera-follow priority: an explicit target node,
// else the centroid of all active nodes, else the topological center.
func (l *LayoutEngine) FocalPoint(target NodeID) Vec2 {
	if target != "" {
		if r := l.store.Get(target); r != nil {
			return r.Node.Pos
		}
	}
	var sum Vec2
	active := 0
	l.store.Each(func(r *Record) {
		if r.Node.Visible && r.State == StateActive {
			sum = sum.Add(r.Node.Pos)
			active++
		}
	})
	if active > 0 {
		return sum.Scale(1 / float64(active))
	}
	return l.topo.Center()
}

// EnforceBounds softly nudges a node set toward a box. A single node snaps
// toward the box center; a set is corrected edge-proportionally, so nodes
// deep outside the box move harder than ones barely over the line.
func (l *LayoutEngine) EnforceBounds(ids []NodeID, box Rect) {
	if len(ids) == 1 {
		r := l.store.Get(ids[0])
		if r == nil {
			return
		}
		r.Node.Pos = r.Node.Pos.Add(box.Center().Sub(r.Node.Pos).Scale(boundsSnap))
		return
	}
	for _, id := range ids {
		r := l.store.Get(id)
		if r == nil {
			continue
		}
		var corr Vec2
		p := r.Node.Pos
		if p.X < box.MinX {
			corr.X = (box.MinX - p.X) * boundsEase
		} else if p.X > box.MaxX {
			corr.X = (box.MaxX - p.X) * boundsEase
		}
		if p.Y < box.MinY {
			corr.Y = (box.MinY - p.Y) * boundsEase
		} else if p.Y > box.MaxY {
			corr.Y = (box.MaxY - p.Y) * boundsEase
		}
		r.Node.Pos = p.Add(corr)
	}
}
