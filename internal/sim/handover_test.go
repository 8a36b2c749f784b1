package sim

import "testing"

func newTestResolver(t *testing.T) (*Store, *HandoverResolver) {
	t.Helper()
	topo := DefaultTopology()
	store := NewStore(topo, 4, nil)
	return store, NewHandoverResolver(store, topo, nil)
}

func TestHandoverResolver_NoPredecessors(t *testing.T) {
	_, h := newTestResolver(t)

	from, ok := h.Resolve(NodeGitHub)
	if from != "" || ok {
		t.Errorf("Resolve(source node) = (%q, %v), want (\"\", false)", from, ok)
	}
	from, ok = h.Resolve("unknown_node")
	if from != "" || ok {
		t.Errorf("Resolve(unknown) = (%q, %v), want (\"\", false)", from, ok)
	}
}

func TestHandoverResolver_BestEffortOrigin(t *testing.T) {
	_, h := newTestResolver(t)

	// No predecessor holds anything: the first authored predecessor is still
	// returned as a visual origin, without a release.
	from, ok := h.Resolve(NodeCache)
	if from != NodeFetcher || ok {
		t.Errorf("Resolve = (%s, %v), want (%s, false)", from, ok, NodeFetcher)
	}
}

func TestHandoverResolver_DecrementsChosen(t *testing.T) {
	s, h := newTestResolver(t)

	r := s.Get(NodeFetcher)
	r.State = StateActive
	r.Stats.Count = 2

	from, ok := h.Resolve(NodeCache)
	if from != NodeFetcher || !ok {
		t.Fatalf("Resolve = (%s, %v), want (%s, true)", from, ok, NodeFetcher)
	}
	if r.Stats.Count != 1 {
		t.Errorf("predecessor count = %d, want 1", r.Stats.Count)
	}
	if r.State != StateActive {
		t.Errorf("active predecessor with remaining work demoted to %s", r.State)
	}
}

func TestHandoverResolver_PickupDemotesPending(t *testing.T) {
	s, h := newTestResolver(t)

	r := s.Get(NodeFetcher)
	r.State = StatePending
	r.Stats.Count = 1
	r.Stats.PendingHandover = true
	r.Stats.Repo = "acme/widgets"
	r.Stats.Label = "a.go"

	from, ok := h.Resolve(NodeCache)
	if from != NodeFetcher || !ok {
		t.Fatalf("Resolve = (%s, %v), want (%s, true)", from, ok, NodeFetcher)
	}
	if r.Stats.Count != 0 {
		t.Errorf("count = %d, want 0", r.Stats.Count)
	}
	if r.State != StateIdle {
		t.Errorf("state after pickup = %s, want idle", r.State)
	}
	if r.Stats.PendingHandover {
		t.Error("pending flag survived pickup")
	}
	if r.Stats.Label != r.Node.DefaultLabel || r.Stats.Repo != "" {
		t.Errorf("labels not cleared on pickup: label=%q repo=%q", r.Stats.Label, r.Stats.Repo)
	}
}

func TestHandoverResolver_PendingBeatsCount(t *testing.T) {
	s, h := newTestResolver(t)

	// Synthesizer fans in from three mappers. Structure is busy, semantics
	// explicitly holds a result; pending wins regardless of authored order.
	s.Get(NodeMapperStruc).Stats.Count = 3
	sem := s.Get(NodeMapperSem)
	sem.State = StatePending
	sem.Stats.Count = 1
	sem.Stats.PendingHandover = true

	from, ok := h.Resolve(NodeSynthesizer)
	if from != NodeMapperSem || !ok {
		t.Errorf("Resolve = (%s, %v), want (%s, true)", from, ok, NodeMapperSem)
	}
	if got := s.Get(NodeMapperStruc).Stats.Count; got != 3 {
		t.Errorf("unchosen predecessor count = %d, want untouched 3", got)
	}
}

func TestHandoverResolver_MixBufferPrefersWorkers(t *testing.T) {
	s, h := newTestResolver(t)

	// Both the hub and a concrete worker carry in-flight work; the mixing
	// buffer pulls from the worker even though the hub is not last in the
	// authored predecessor list by count alone.
	s.Get(NodeWorkersHub).Stats.Count = 5
	s.Get(WorkerID(3)).Stats.Count = 1

	from, ok := h.Resolve(NodeMixBuffer)
	if from != WorkerID(3) || !ok {
		t.Errorf("Resolve = (%s, %v), want (%s, true)", from, ok, WorkerID(3))
	}
	if got := s.Get(NodeWorkersHub).Stats.Count; got != 5 {
		t.Errorf("hub count = %d, want untouched 5", got)
	}
}

func TestHandoverResolver_MixBufferFallsBackToHub(t *testing.T) {
	s, h := newTestResolver(t)

	s.Get(NodeWorkersHub).Stats.Count = 1

	from, ok := h.Resolve(NodeMixBuffer)
	if from != NodeWorkersHub || !ok {
		t.Errorf("Resolve = (%s, %v), want (%s, true)", from, ok, NodeWorkersHub)
	}
}

func TestHandoverResolver_AuthoredOrderBreaksTies(t *testing.T) {
	s, h := newTestResolver(t)

	// Two mappers busy, none pending: the first in authored order wins.
	s.Get(NodeMapperSem).Stats.Count = 1
	s.Get(NodeMapperDNA).Stats.Count = 1

	from, ok := h.Resolve(NodeSynthesizer)
	if from != NodeMapperSem || !ok {
		t.Errorf("Resolve = (%s, %v), want (%s, true)", from, ok, NodeMapperSem)
	}
}
