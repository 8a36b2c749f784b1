package sim

import (
	"strings"
	"time"

	"github.com/fluxmap/fluxmap/internal/logging"
)

// routeKind closes the two-tier routing decision: an exact-match bespoke
// strategy, a prefix-matched default route through the per-status machine,
// or no match at all.
type routeKind int

const (
	routeNone routeKind = iota
	routeStrategy
	routeDefault
)

type strategyFunc func(r *EventRouter, now time.Time, ev Event) *RouteResult

type resolution struct {
	kind     routeKind
	strategy strategyFunc
	node     NodeID
}

type prefixRoute struct {
	prefix string
	node   NodeID
}

// EventRouter reduces inbound telemetry events into store mutations.
// Resolution is two-tier: a table of exact event types with bespoke
// handlers, then a prefix table dispatching through the default per-status
// state machine. Events matching neither tier are silently dropped.
type EventRouter struct {
	store    *Store
	slots    *SlotAllocator
	resolver *HandoverResolver
	clock    *AnimationClock
	topo     *Topology

	strategies map[string]strategyFunc
	prefixes   []prefixRoute

	transientDur time.Duration
	selfClearDur time.Duration

	logger *logging.Logger
}

// NewEventRouter wires a router over the shared simulation components.
func NewEventRouter(store *Store, slots *SlotAllocator, resolver *HandoverResolver, clock *AnimationClock, topo *Topology, transientDur, selfClearDur time.Duration, logger *logging.Logger) *EventRouter {
	if logger == nil {
		logger = logging.NopLogger()
	}
	r := &EventRouter{
		store:        store,
		slots:        slots,
		resolver:     resolver,
		clock:        clock,
		topo:         topo,
		transientDur: transientDur,
		selfClearDur: selfClearDur,
		logger:       logger,
	}
	r.strategies = map[string]strategyFunc{
		"repo:start":         (*EventRouter).repoStart,
		"repo:complete":      (*EventRouter).repoComplete,
		"hub:circuit:open":   (*EventRouter).circuitOpen,
		"hub:circuit:closed": (*EventRouter).circuitClosed,
		"gate:locked":        (*EventRouter).gateLocked,
		"gate:unlocked":      (*EventRouter).gateUnlocked,
		"mapper:dispatch":    (*EventRouter).mapperDispatch,
		"embedding:start":    (*EventRouter).embeddingStart,
		"embedding:end":      (*EventRouter).embeddingEnd,
		"audit:discard":      (*EventRouter).auditDiscard,
		"cache:skeletonize":  (*EventRouter).skeletonize,
		"context:inject":     (*EventRouter).contextInject,
	}
	// Longest prefixes first so specific ids win over shared ones.
	r.prefixes = []prefixRoute{
		{"mixing_buffer", NodeMixBuffer},
		{"mapper_structure", NodeMapperStruc},
		{"mapper_semantics", NodeMapperSem},
		{"workers_hub", NodeWorkersHub},
		{"mapper_dna", NodeMapperDNA},
		{"synthesis", NodeSynthesizer},
		{"insight_store", NodeInsights},
		{"embedder", NodeEmbedder},
		{"fetcher", NodeFetcher},
		{"auditor", NodeAuditor},
		{"archive", NodeArchive},
		{"github", NodeGitHub},
		{"cache", NodeCache},
	}
	for i := 1; i <= WorkerCount; i++ {
		r.prefixes = append(r.prefixes, prefixRoute{string(WorkerID(i)), WorkerID(i)})
	}
	return r
}

// HandleEvent reduces one event. It returns nil for events that match
// neither routing tier or land on an unknown node; malformed telemetry
// degrades to a no-op rather than an error.
func (r *EventRouter) HandleEvent(now time.Time, ev Event) *RouteResult {
	res := r.resolve(ev.Type)
	switch res.kind {
	case routeStrategy:
		return res.strategy(r, now, ev)
	case routeDefault:
		return r.dispatch(now, res.node, ev.Status, ev)
	case routeNone:
		r.logger.Debug("dropped unroutable event", "type", ev.Type)
		return nil
	}
	return nil
}

func (r *EventRouter) resolve(typ string) resolution {
	if fn, ok := r.strategies[typ]; ok {
		return resolution{kind: routeStrategy, strategy: fn}
	}
	for _, p := range r.prefixes {
		if strings.HasPrefix(typ, p.prefix) {
			return resolution{kind: routeDefault, node: p.node}
		}
	}
	return resolution{kind: routeNone}
}

// dispatch runs the default per-status state machine against a node.
func (r *EventRouter) dispatch(now time.Time, node NodeID, status Status, ev Event) *RouteResult {
	rec := r.store.Get(node)
	if rec == nil {
		return nil
	}

	switch status {
	case StatusStart:
		// Idempotency: a retried start for the same work unit is a no-op.
		if rec.State == StateActive && rec.Stats.Repo == ev.Repo && rec.Stats.File == ev.File {
			return &RouteResult{Node: node, Status: status, Redundant: true}
		}
		r.handover(now, node, ev.File)
		rec.State = StateActive
		rec.Stats.Count++
		rec.Stats.Waiting = false
		rec.Stats.PendingHandover = false
		rec.Stats.Repo = ev.Repo
		rec.Stats.File = ev.File
		rec.Stats.Label = pickLabel(ev, rec.Node.DefaultLabel)
		rec.Stats.LastEvent = ev.Type
		r.store.OpenHistory(node, now, ev.Repo, ev.File)

	case StatusWaiting:
		rec.State = StateIdle
		rec.Stats.Waiting = true
		rec.Stats.LastEvent = ev.Type

	case StatusDispatching:
		r.store.MarkDispatching(node, now.Add(r.transientDur))
		rec.Stats.LastEvent = ev.Type

	case StatusReceiving:
		r.store.MarkReceiving(node, now.Add(r.transientDur))
		rec.Stats.LastEvent = ev.Type

	case StatusEnd:
		if rec.Stats.Count > 0 {
			rec.Stats.Count--
		}
		// The node keeps holding its result until a successor pulls it;
		// it never drops to idle on its own.
		rec.State = StatePending
		rec.Stats.PendingHandover = true
		rec.Stats.Waiting = false
		rec.Stats.LastEvent = ev.Type
		r.store.CloseHistory(node, now, ev.Repo, ev.File)

	case StatusNone:
		r.handover(now, node, ev.File)
		rec.State = StateActive
		rec.Stats.Count++
		rec.Stats.LastEvent = ev.Type
		if ev.Label != "" {
			rec.Stats.Label = ev.Label
		}
		if !rec.Node.IsBuffer && !rec.Node.Terminal {
			r.store.ArmSelfClear(node, now.Add(r.selfClearDur))
		}

	default:
		return nil
	}

	if ev.Failed() {
		rec.State = StateError
		if ev.Label != "" {
			rec.Stats.Label = ev.Label
		}
	}
	return &RouteResult{Node: node, Status: status}
}

// handover resolves a predecessor release and spawns the traveling token.
// The token departs the preferred predecessor even when no predecessor held
// capacity; motion is a best-effort visual, not a conservation ledger.
func (r *EventRouter) handover(now time.Time, target NodeID, file string) {
	from, _ := r.resolver.Resolve(target)
	if from == "" {
		return
	}
	r.clock.SpawnToken(from, target, r.topo.EdgeKind(from, target), file)
}

func pickLabel(ev Event, fallback string) string {
	switch {
	case ev.Label != "":
		return ev.Label
	case ev.File != "":
		return ev.File
	case ev.Repo != "":
		return ev.Repo
	default:
		return fallback
	}
}

// -----------------------------------------------------------------------------
// Bespoke strategies
// -----------------------------------------------------------------------------

func (r *EventRouter) repoStart(now time.Time, ev Event) *RouteResult {
	if ev.Repo == "" {
		return nil
	}
	slot := r.slots.Assign(ev.Repo, now)
	gh := r.store.Get(NodeGitHub)
	gh.State = StateActive
	gh.Stats.Label = ev.Repo
	gh.Stats.LastEvent = ev.Type
	r.clock.SpawnPulse(slot, now)
	return &RouteResult{Node: slot, Status: StatusStart}
}

func (r *EventRouter) repoComplete(now time.Time, ev Event) *RouteResult {
	slot, ok := r.slots.Lookup(ev.Repo)
	if !ok {
		return nil
	}
	r.slots.Release(ev.Repo, now)
	r.clock.SpawnPulse(slot, now)
	gh := r.store.Get(NodeGitHub)
	if gh.Stats.Label == ev.Repo {
		r.store.ClearLabels(NodeGitHub)
		gh.State = StateIdle
	}
	return &RouteResult{Node: slot, Status: StatusEnd}
}

func (r *EventRouter) circuitOpen(now time.Time, ev Event) *RouteResult {
	hub := r.store.Get(NodeWorkersHub)
	hub.State = StatePaused
	hub.Stats.Label = "breaker open"
	hub.Stats.LastEvent = ev.Type
	r.clock.SpawnPulse(NodeWorkersHub, now)
	return &RouteResult{Node: NodeWorkersHub, Status: StatusNone}
}

func (r *EventRouter) circuitClosed(now time.Time, ev Event) *RouteResult {
	hub := r.store.Get(NodeWorkersHub)
	hub.State = StateActive
	hub.Stats.Label = hub.Node.DefaultLabel
	hub.Stats.LastEvent = ev.Type
	return &RouteResult{Node: NodeWorkersHub, Status: StatusNone}
}

func (r *EventRouter) gateLocked(now time.Time, ev Event) *RouteResult {
	c := r.store.Get(NodeCache)
	c.Stats.GateLocked = true
	c.Stats.Label = "gate locked"
	c.Stats.LastEvent = ev.Type
	return &RouteResult{Node: NodeCache, Status: StatusNone}
}

func (r *EventRouter) gateUnlocked(now time.Time, ev Event) *RouteResult {
	c := r.store.Get(NodeCache)
	c.Stats.GateLocked = false
	c.Stats.Label = c.Node.DefaultLabel
	c.Stats.LastEvent = ev.Type
	return &RouteResult{Node: NodeCache, Status: StatusNone}
}

// mapperDispatch fans work out to a mapper keyed by the payload's mapper
// field, and records the chosen slot on the buffer's matching history entry
// so fan-out stays traceable.
func (r *EventRouter) mapperDispatch(now time.Time, ev Event) *RouteResult {
	node := mapperNode(ev.Mapper)
	if node == "" {
		return nil
	}
	res := r.dispatch(now, node, ev.Status, ev)
	if res != nil && (ev.Repo != "" || ev.File != "") {
		r.store.AssignHistorySlot(NodeMixBuffer, ev.Repo, ev.File, node)
	}
	return res
}

func mapperNode(name string) NodeID {
	switch name {
	case "structure", string(NodeMapperStruc):
		return NodeMapperStruc
	case "semantics", string(NodeMapperSem):
		return NodeMapperSem
	case "dna", string(NodeMapperDNA):
		return NodeMapperDNA
	default:
		return ""
	}
}

func (r *EventRouter) embeddingStart(now time.Time, ev Event) *RouteResult {
	return r.dispatch(now, NodeEmbedder, StatusStart, ev)
}

func (r *EventRouter) embeddingEnd(now time.Time, ev Event) *RouteResult {
	return r.dispatch(now, NodeEmbedder, StatusEnd, ev)
}

func (r *EventRouter) auditDiscard(now time.Time, ev Event) *RouteResult {
	a := r.store.Get(NodeAuditor)
	if a.Stats.Count > 0 {
		a.Stats.Count--
	}
	a.Stats.Label = "discarded"
	a.Stats.LastEvent = ev.Type
	r.clock.SpawnPulse(NodeAuditor, now)
	return &RouteResult{Node: NodeAuditor, Status: StatusNone}
}

func (r *EventRouter) skeletonize(now time.Time, ev Event) *RouteResult {
	ev.Label = "skeletonize"
	return r.dispatch(now, NodeCache, StatusNone, ev)
}

// contextInject is the feedback loop: a stored insight flows back into the
// auditor to steer subsequent analysis.
func (r *EventRouter) contextInject(now time.Time, ev Event) *RouteResult {
	r.clock.SpawnToken(NodeInsights, NodeAuditor, PayloadInsight, ev.File)
	r.store.MarkReceiving(NodeAuditor, now.Add(r.transientDur))
	a := r.store.Get(NodeAuditor)
	a.Stats.Label = "context"
	a.Stats.LastEvent = ev.Type
	return &RouteResult{Node: NodeAuditor, Status: StatusReceiving}
}
