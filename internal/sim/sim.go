package sim

import (
	"sync"
	"time"

	"github.com/fluxmap/fluxmap/internal/event"
	"github.com/fluxmap/fluxmap/internal/logging"
)

// Options tune the simulation. Zero values fall back to defaults.
type Options struct {
	// HistoryDepth bounds each node's history ring.
	HistoryDepth int
	// TransientDur is how long dispatching/receiving flags stay lit.
	TransientDur time.Duration
	// SelfClearDur is how long a one-shot activation lingers.
	SelfClearDur time.Duration
	// TokenSpeed is traveling-token progress per second.
	TokenSpeed float64
	// PulseTTL is the lifetime of node pulses.
	PulseTTL time.Duration
}

func (o *Options) fill() {
	if o.HistoryDepth <= 0 {
		o.HistoryDepth = 24
	}
	if o.TransientDur <= 0 {
		o.TransientDur = 450 * time.Millisecond
	}
	if o.SelfClearDur <= 0 {
		o.SelfClearDur = 900 * time.Millisecond
	}
	if o.TokenSpeed <= 0 {
		o.TokenSpeed = 0.9
	}
	if o.PulseTTL <= 0 {
		o.PulseTTL = 700 * time.Millisecond
	}
}

// Simulation is the owned aggregate tying the store, slot allocator,
// handover resolver, event router, controller, layout engine, route
// resolver, and animation clock together. One mutex serializes every
// reducer; independent producers interleave through HandleEvent and the
// renderer reads through Snapshot.
type Simulation struct {
	mu sync.Mutex

	topo   *Topology
	store  *Store
	slots  *SlotAllocator
	ctrl   *Controller
	layout *LayoutEngine
	routes *RouteResolver
	clock  *AnimationClock
	router *EventRouter

	bus   *event.Bus
	focus NodeID

	lastTick time.Time
	logger   *logging.Logger
}

// New builds a simulation over the default topology. bus may be nil when no
// observer cares about notifications.
func New(opts Options, bus *event.Bus, logger *logging.Logger) *Simulation {
	if logger == nil {
		logger = logging.NopLogger()
	}
	opts.fill()

	topo := DefaultTopology()
	store := NewStore(topo, opts.HistoryDepth, logger)
	slots := NewSlotAllocator(store, logger)
	clock := NewAnimationClock(opts.TokenSpeed, opts.PulseTTL)
	resolver := NewHandoverResolver(store, topo, logger)
	router := NewEventRouter(store, slots, resolver, clock, topo, opts.TransientDur, opts.SelfClearDur, logger)

	s := &Simulation{
		topo:   topo,
		store:  store,
		slots:  slots,
		ctrl:   NewController(logger),
		layout: NewLayoutEngine(store, topo),
		routes: NewRouteResolver(store, topo),
		clock:  clock,
		router: router,
		bus:    bus,
		logger: logger,
	}

	if bus != nil {
		s.ctrl.Subscribe(func(state ControlState) {
			bus.Publish(event.NewControlChangedEvent(state.String()))
		})
	}
	return s
}

// Controller returns the admission gate shared with upstream producers.
func (s *Simulation) Controller() *Controller { return s.ctrl }

// HandleEvent reduces one telemetry event under the simulation lock and
// returns the routing result (nil for dropped events).
func (s *Simulation) HandleEvent(ev Event) *RouteResult {
	now := time.Now()
	s.mu.Lock()
	known := func(repo string) bool { _, ok := s.slots.Lookup(repo); return ok }
	newRepo := ev.Type == "repo:start" && ev.Repo != "" && !known(ev.Repo)
	res := s.router.HandleEvent(now, ev)
	var slotID NodeID
	if newRepo && res != nil {
		slotID = res.Node
	}
	s.mu.Unlock()

	if s.bus != nil && res != nil {
		s.bus.Publish(event.NewNodeTransitionEvent(
			string(res.Node), ev.Type, string(res.Status), res.Redundant))
		if slotID != "" {
			s.bus.Publish(event.NewRepoAssignedEvent(ev.Repo, string(slotID)))
		}
	}
	return res
}

// ApplyHealth merges a port-keyed health patch.
func (s *Simulation) ApplyHealth(patch map[int]bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.ApplyHealth(patch)
}

// SetFocus pins the camera focal point to a node; empty clears it.
func (s *Simulation) SetFocus(id NodeID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus = id
}

// Tick advances the live parts of the model: transient expiry, animation
// progress, and one layout step. Moved nodes invalidate their cached
// routes.
func (s *Simulation) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dt := now.Sub(s.lastTick)
	if s.lastTick.IsZero() || dt <= 0 || dt > time.Second {
		dt = 16 * time.Millisecond
	}
	s.lastTick = now

	s.store.ExpireTransients(now)
	s.clock.Advance(now, dt)
	if s.layout.Step() {
		s.store.Each(func(r *Record) {
			if r.Node.Vel.Len() > 0 {
				s.routes.InvalidateNode(r.Node.ID)
			}
		})
	}
}

// EnforceBounds nudges a node set toward a box; see LayoutEngine.
func (s *Simulation) EnforceBounds(ids []NodeID, box Rect) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout.EnforceBounds(ids, box)
}

// Snapshot copies the full rendering surface.
func (s *Simulation) Snapshot() Snapshot {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(now)
}

// Store exposes the state store for in-process inspection (replay summary).
// Callers must not retain the returned pointer across goroutines.
func (s *Simulation) Store() *Store { return s.store }

// Slots exposes the slot allocator.
func (s *Simulation) Slots() *SlotAllocator { return s.slots }

// Routes exposes the route resolver.
func (s *Simulation) Routes() *RouteResolver { return s.routes }

// Topology exposes the static pipeline graph.
func (s *Simulation) Topology() *Topology { return s.topo }
