package sim

import "time"

// NodeView is the read-only per-node slice of a snapshot.
type NodeView struct {
	ID        NodeID
	Kind      NodeKind
	State     NodeState
	Stats     NodeStats
	Pos       Vec2
	Radius    float64
	Label     string
	Online    bool
	Visible   bool
	Buffer    bool
	Completed bool
}

// TokenView is a traveling token with its resolved path.
type TokenView struct {
	Token
	Path []Vec2
}

// EdgeView is a static graph edge with its resolved path.
type EdgeView struct {
	From NodeID
	To   NodeID
	Kind PayloadKind
	Path []Vec2
}

// PulseView is a node-anchored pulse with its remaining life fraction.
type PulseView struct {
	Node NodeID
	Life float64 // 1 at birth, 0 at expiry
}

// Snapshot is the read-only rendering surface. Everything in it is copied;
// a renderer may hold it across frames without observing later mutations.
type Snapshot struct {
	At      time.Time
	Control ControlState
	Nodes   []NodeView
	Edges   []EdgeView
	Tokens  []TokenView
	Pulses  []PulseView
	History map[NodeID][]HistoryEntry
	Focal   Vec2
}

// snapshot assembles the rendering surface. Caller holds the simulation
// lock.
func (s *Simulation) snapshot(now time.Time) Snapshot {
	snap := Snapshot{
		At:      now,
		Control: s.ctrl.State(),
		History: make(map[NodeID][]HistoryEntry, s.store.Len()),
		Focal:   s.layout.FocalPoint(s.focus),
	}

	s.store.Each(func(r *Record) {
		snap.Nodes = append(snap.Nodes, NodeView{
			ID:        r.Node.ID,
			Kind:      r.Node.Kind,
			State:     r.State,
			Stats:     r.Stats,
			Pos:       r.Node.Pos,
			Radius:    r.Node.HitRadius,
			Label:     r.Stats.Label,
			Online:    r.Online,
			Visible:   r.Node.Visible,
			Buffer:    r.Node.IsBuffer,
			Completed: r.Completed,
		})
		if h := r.History(); len(h) > 0 {
			snap.History[r.Node.ID] = h
		}
	})

	for _, e := range s.topo.Edges() {
		snap.Edges = append(snap.Edges, EdgeView{
			From: e.From,
			To:   e.To,
			Kind: e.Kind,
			Path: s.routes.Resolve(e.From, e.To),
		})
	}

	for _, t := range s.clock.Tokens() {
		snap.Tokens = append(snap.Tokens, TokenView{
			Token: t,
			Path:  s.routes.Resolve(t.From, t.To),
		})
	}
	for _, p := range s.clock.Pulses() {
		life := 1 - float64(now.Sub(p.Born))/float64(p.TTL)
		if life < 0 {
			life = 0
		}
		snap.Pulses = append(snap.Pulses, PulseView{Node: p.Node, Life: life})
	}
	return snap
}
