package sim

import (
	"strings"

	"github.com/fluxmap/fluxmap/internal/logging"
)

// HandoverResolver decides which predecessor releases capacity when a
// successor claims work. Predecessors come from the topology's authored
// fan-in order; the tie-break is:
//
//  1. a predecessor explicitly holding a result (isPendingHandover),
//  2. a role preference for the target (concrete workers beat the shared
//     hub when the mixing buffer pulls),
//  3. any predecessor with in-flight count > 0.
//
// Exactly one predecessor is chosen. Its count drops by one, and reaching
// zero while pending demotes it to idle with labels cleared — that demotion
// is the logical "pickup" of the held result.
type HandoverResolver struct {
	store  *Store
	topo   *Topology
	logger *logging.Logger
}

// NewHandoverResolver builds a resolver over store and topo.
func NewHandoverResolver(store *Store, topo *Topology, logger *logging.Logger) *HandoverResolver {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &HandoverResolver{store: store, topo: topo, logger: logger}
}

// Resolve picks and releases a predecessor for target. It returns the node
// a traveling token should depart from and whether a real handover
// happened. When no predecessor qualifies, the first authored predecessor
// is still returned as the visual origin (best-effort token spawn) with
// ok=false; targets with no predecessors return ("", false).
func (h *HandoverResolver) Resolve(target NodeID) (from NodeID, ok bool) {
	preds := h.topo.Preds(target)
	if len(preds) == 0 {
		return "", false
	}

	chosen := h.choose(target, preds)
	if chosen == "" {
		return preds[0], false
	}

	r := h.store.Get(chosen)
	if r.Stats.Count > 0 {
		r.Stats.Count--
	}
	r.Stats.PendingHandover = false
	if r.Stats.Count == 0 && r.State == StatePending {
		r.State = StateIdle
		h.store.ClearLabels(chosen)
	}

	h.logger.Debug("handover resolved",
		"from", string(chosen),
		"to", string(target),
		"remaining", r.Stats.Count)
	return chosen, true
}

func (h *HandoverResolver) choose(target NodeID, preds []NodeID) NodeID {
	// Pass 1: a predecessor holding an unconsumed result.
	for _, id := range preds {
		if r := h.store.Get(id); r != nil && r.Stats.PendingHandover {
			return id
		}
	}
	// Pass 2: role preference for this fan-in target.
	for _, id := range preds {
		if r := h.store.Get(id); r != nil && r.Stats.Count > 0 && h.preferred(target, id) {
			return id
		}
	}
	// Pass 3: anything with work in flight.
	for _, id := range preds {
		if r := h.store.Get(id); r != nil && r.Stats.Count > 0 {
			return id
		}
	}
	return ""
}

// preferred encodes the hand-authored fan-in preferences. The mixing buffer
// pulls from concrete worker instances before falling back to the shared
// hub; other targets have no preference beyond authored order.
func (h *HandoverResolver) preferred(target, pred NodeID) bool {
	if target == NodeMixBuffer {
		return strings.HasPrefix(string(pred), "worker_") && pred != NodeWorkersHub
	}
	return false
}
