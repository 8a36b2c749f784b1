// Package sim contains the pipeline simulation core: the node state store,
// the dynamic slot allocator, handover resolution, event routing, the
// admission controller, the force-directed layout engine, collision-aware
// route resolution, and the animation clock.
//
// Everything in this package runs under a single-writer discipline: the
// owning [Simulation] serializes all reducer calls behind one mutex.
// Individual components therefore carry no internal locking.
package sim

import (
	"math"
	"time"
)

// NodeID identifies a node in the pipeline graph.
type NodeID string

// NodeKind distinguishes the three ways a node acquires its position.
type NodeKind int

const (
	// KindStage is a fixed pipeline stage with a design-time rest coordinate.
	KindStage NodeKind = iota
	// KindSlot is a dynamically allocated node bound to a runtime key.
	KindSlot
	// KindSatellite orbits a live parent node instead of a fixed coordinate.
	KindSatellite
)

// NodeState is the visible state of a node.
type NodeState int

const (
	StateIdle NodeState = iota
	StateActive
	StatePending
	StatePaused
	StateError
)

// String returns a human-readable name for a node state.
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StatePending:
		return "pending"
	case StatePaused:
		return "paused"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// Vec2 is a point or displacement in the layout plane.
type Vec2 struct {
	X, Y float64
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v scaled by f.
func (v Vec2) Scale(f float64) Vec2 { return Vec2{v.X * f, v.Y * f} }

// Len returns the euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Node is a stage, slot, or satellite in the pipeline graph.
// Positions are live simulation values; Rest is the design coordinate the
// layout spring pulls toward (recomputed every tick for satellites).
type Node struct {
	ID           NodeID
	Kind         NodeKind
	DefaultLabel string

	Pos  Vec2
	Vel  Vec2
	Rest Vec2

	HitRadius float64
	IsBuffer  bool
	// Terminal marks the explicit start/end slots of the pipeline; one-shot
	// events on terminal nodes do not self-clear.
	Terminal bool
	// Composite marks container-style nodes that routes must clear with a
	// wider padding radius.
	Composite bool

	// Port is the node's health port affinity; zero means no affinity.
	Port int

	// Satellite fields; zero values for non-satellites.
	OrbitParent NodeID
	OrbitAngle  float64
	OrbitRadius float64
	OrbitSpeed  float64

	// Visible is false for slot nodes that have not been assigned yet.
	Visible bool
}

// NodeStats is the per-node live counter and flag block. Counts are clamped
// at zero on decrement regardless of event ordering.
type NodeStats struct {
	Count     int
	LastEvent string
	Label     string
	Repo      string
	File      string

	Waiting         bool
	Dispatching     bool
	Receiving       bool
	PendingHandover bool
	GateLocked      bool

	// Transient deadlines, swept each tick. Zero means not armed.
	dispatchUntil  time.Time
	receiveUntil   time.Time
	selfClearUntil time.Time
}

// HistoryEntry records one unit of work observed on a node.
type HistoryEntry struct {
	At          time.Time
	Repo        string
	File        string
	Done        bool
	CompletedAt time.Time
	// Slot is the downstream node the work was fanned out to, when known.
	Slot NodeID
}

// PayloadKind is the kind of content a traveling token carries.
type PayloadKind int

const (
	PayloadRawFile PayloadKind = iota
	PayloadMetadata
	PayloadFragment
	PayloadInsight
	PayloadDNASignal
	PayloadSecureStore
)

// String returns a short name for a payload kind.
func (k PayloadKind) String() string {
	switch k {
	case PayloadRawFile:
		return "raw-file"
	case PayloadMetadata:
		return "metadata"
	case PayloadFragment:
		return "fragment"
	case PayloadInsight:
		return "insight"
	case PayloadDNASignal:
		return "dna-signal"
	case PayloadSecureStore:
		return "secure-store"
	default:
		return "unknown"
	}
}
