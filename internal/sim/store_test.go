package sim

import (
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(DefaultTopology(), 4, nil)
}

func TestNewStore_SeedsStaticNodes(t *testing.T) {
	s := newTestStore(t)

	wantNodes := []NodeID{
		NodeGitHub, NodeFetcher, NodeCache, NodeAuditor, NodeWorkersHub,
		NodeMixBuffer, NodeMapperStruc, NodeMapperSem, NodeMapperDNA,
		NodeSynthesizer, NodeEmbedder, NodeArchive, NodeInsights,
		WorkerID(1), WorkerID(2), WorkerID(3), WorkerID(4),
	}
	for _, id := range wantNodes {
		r := s.Get(id)
		if r == nil {
			t.Fatalf("Get(%s) = nil, want record", id)
		}
		if r.State != StateIdle {
			t.Errorf("node %s initial state = %s, want idle", id, r.State)
		}
		if !r.Online {
			t.Errorf("node %s starts offline, want online", id)
		}
		if r.Stats.Label != r.Node.DefaultLabel {
			t.Errorf("node %s label = %q, want default %q", id, r.Stats.Label, r.Node.DefaultLabel)
		}
	}
	if s.Len() != len(wantNodes) {
		t.Errorf("Len() = %d, want %d", s.Len(), len(wantNodes))
	}
}

func TestStore_GetUnknown(t *testing.T) {
	s := newTestStore(t)
	if r := s.Get("no_such_node"); r != nil {
		t.Errorf("Get(unknown) = %v, want nil", r)
	}
	if r := s.At(-1); r != nil {
		t.Errorf("At(-1) = %v, want nil", r)
	}
	if r := s.At(s.Len()); r != nil {
		t.Errorf("At(len) = %v, want nil", r)
	}
}

func TestStore_AddIdempotent(t *testing.T) {
	s := newTestStore(t)
	before := s.Len()

	idx1 := s.Add(Node{ID: "extra", DefaultLabel: "extra"})
	idx2 := s.Add(Node{ID: "extra", DefaultLabel: "other"})

	if idx1 != idx2 {
		t.Errorf("re-adding id returned index %d, want %d", idx2, idx1)
	}
	if s.Len() != before+1 {
		t.Errorf("Len() = %d, want %d", s.Len(), before+1)
	}
	if got := s.Get("extra").Node.DefaultLabel; got != "extra" {
		t.Errorf("re-add overwrote record, label = %q", got)
	}
}

func TestStore_Counters(t *testing.T) {
	s := newTestStore(t)

	s.IncrementCount(NodeCache)
	s.IncrementCount(NodeCache)
	if got := s.Get(NodeCache).Stats.Count; got != 2 {
		t.Fatalf("count after two increments = %d, want 2", got)
	}

	s.DecrementCount(NodeCache)
	s.DecrementCount(NodeCache)
	s.DecrementCount(NodeCache)
	if got := s.Get(NodeCache).Stats.Count; got != 0 {
		t.Errorf("count never clamps below zero, got %d", got)
	}

	// Unknown ids are no-ops, not panics.
	s.IncrementCount("ghost")
	s.DecrementCount("ghost")
}

func TestStore_SetStateAndClearLabels(t *testing.T) {
	s := newTestStore(t)

	s.SetState(NodeFetcher, StateActive)
	if got := s.Get(NodeFetcher).State; got != StateActive {
		t.Errorf("state = %s, want active", got)
	}

	r := s.Get(NodeFetcher)
	r.Stats.Label = "main.go"
	r.Stats.Repo = "acme/widgets"
	r.Stats.File = "main.go"

	s.ClearLabels(NodeFetcher)
	if r.Stats.Label != r.Node.DefaultLabel {
		t.Errorf("label = %q, want default %q", r.Stats.Label, r.Node.DefaultLabel)
	}
	if r.Stats.Repo != "" || r.Stats.File != "" {
		t.Errorf("repo/file not cleared: %q %q", r.Stats.Repo, r.Stats.File)
	}
}

func TestHistoryRing_BoundedOldestFirst(t *testing.T) {
	s := NewStore(DefaultTopology(), 3, nil)
	base := time.Now()

	for i := 0; i < 5; i++ {
		s.OpenHistory(NodeCache, base.Add(time.Duration(i)*time.Second), "acme/widgets", file(i))
	}

	h := s.Get(NodeCache).History()
	if len(h) != 3 {
		t.Fatalf("history length = %d, want depth 3", len(h))
	}
	// Entries 0 and 1 scrolled out; 2, 3, 4 remain oldest first.
	for i, want := range []string{file(2), file(3), file(4)} {
		if h[i].File != want {
			t.Errorf("history[%d].File = %q, want %q", i, h[i].File, want)
		}
	}
}

func file(i int) string {
	return "file_" + string(rune('a'+i)) + ".go"
}

func TestHistoryRing_CloseMatchesNewestOpen(t *testing.T) {
	s := newTestStore(t)
	base := time.Now()

	s.OpenHistory(NodeAuditor, base, "acme/widgets", "a.go")
	s.OpenHistory(NodeAuditor, base.Add(time.Second), "acme/widgets", "a.go")
	s.CloseHistory(NodeAuditor, base.Add(2*time.Second), "acme/widgets", "a.go")

	h := s.Get(NodeAuditor).History()
	if len(h) != 2 {
		t.Fatalf("history length = %d, want 2", len(h))
	}
	if h[0].Done {
		t.Error("oldest entry closed, want the newest matching entry closed")
	}
	if !h[1].Done {
		t.Error("newest matching entry not closed")
	}
	if h[1].CompletedAt.IsZero() {
		t.Error("closed entry has zero CompletedAt")
	}

	// Closing with no matching open entry is a no-op.
	s.CloseHistory(NodeAuditor, base, "other/repo", "z.go")
}

func TestHistoryRing_AssignSlot(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	s.OpenHistory(NodeMixBuffer, now, "acme/widgets", "a.go")
	s.AssignHistorySlot(NodeMixBuffer, "acme/widgets", "a.go", NodeMapperDNA)

	h := s.Get(NodeMixBuffer).History()
	if len(h) != 1 || h[0].Slot != NodeMapperDNA {
		t.Errorf("history slot = %v, want %s", h, NodeMapperDNA)
	}
}

func TestStore_ExpireTransients(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	s.MarkDispatching(NodeWorkersHub, now.Add(100*time.Millisecond))
	s.MarkReceiving(NodeAuditor, now.Add(100*time.Millisecond))

	s.ExpireTransients(now.Add(50 * time.Millisecond))
	if !s.Get(NodeWorkersHub).Stats.Dispatching {
		t.Error("dispatching flag expired before its deadline")
	}
	if !s.Get(NodeAuditor).Stats.Receiving {
		t.Error("receiving flag expired before its deadline")
	}

	s.ExpireTransients(now.Add(200 * time.Millisecond))
	if s.Get(NodeWorkersHub).Stats.Dispatching {
		t.Error("dispatching flag survived its deadline")
	}
	if s.Get(NodeAuditor).Stats.Receiving {
		t.Error("receiving flag survived its deadline")
	}
}

func TestStore_ExpireSelfClear(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	r := s.Get(NodeCache)
	r.State = StateActive
	r.Stats.Count = 1
	s.ArmSelfClear(NodeCache, now.Add(100*time.Millisecond))

	s.ExpireTransients(now.Add(50 * time.Millisecond))
	if r.State != StateActive || r.Stats.Count != 1 {
		t.Fatal("self-clear fired before its deadline")
	}

	s.ExpireTransients(now.Add(200 * time.Millisecond))
	if r.Stats.Count != 0 {
		t.Errorf("count after self-clear = %d, want 0", r.Stats.Count)
	}
	if r.State != StateIdle {
		t.Errorf("state after self-clear = %s, want idle", r.State)
	}
}

func TestStore_SelfClearKeepsBusyNodeActive(t *testing.T) {
	s := newTestStore(t)
	now := time.Now()

	r := s.Get(NodeCache)
	r.State = StateActive
	r.Stats.Count = 2
	s.ArmSelfClear(NodeCache, now.Add(50*time.Millisecond))

	s.ExpireTransients(now.Add(100 * time.Millisecond))
	if r.Stats.Count != 1 {
		t.Errorf("count = %d, want 1", r.Stats.Count)
	}
	if r.State != StateActive {
		t.Errorf("state = %s, want active while count > 0", r.State)
	}
}

func TestStore_ApplyHealth(t *testing.T) {
	s := newTestStore(t)

	s.ApplyHealth(map[int]bool{PortFetcher: false, PortEmbedder: true})

	if s.Get(NodeFetcher).Online {
		t.Error("fetcher still online after offline patch")
	}
	if s.Get(NodeFetcher).State != StateError {
		t.Errorf("fetcher state = %s, want error while offline", s.Get(NodeFetcher).State)
	}
	if !s.Get(NodeEmbedder).Online {
		t.Error("embedder went offline on an online patch")
	}
	// Archive's port was absent from the patch; untouched.
	if !s.Get(NodeArchive).Online {
		t.Error("archive changed without a patch entry for its port")
	}
	// Nodes with no port affinity never react.
	if !s.Get(NodeCache).Online || s.Get(NodeCache).State != StateIdle {
		t.Error("cache has no port affinity but reacted to a health patch")
	}
}

func TestStore_ApplyHealthRecovers(t *testing.T) {
	s := newTestStore(t)

	s.ApplyHealth(map[int]bool{PortArchive: false})
	if s.Get(NodeArchive).State != StateError {
		t.Fatal("archive not in error state while offline")
	}

	s.ApplyHealth(map[int]bool{PortArchive: true})
	r := s.Get(NodeArchive)
	if !r.Online {
		t.Error("archive still offline after recovery patch")
	}
	if r.State != StateIdle {
		t.Errorf("recovered state = %s, want idle", r.State)
	}
}

func TestStore_ApplyHealthPreservesActiveState(t *testing.T) {
	s := newTestStore(t)
	s.SetState(NodeEmbedder, StateActive)

	s.ApplyHealth(map[int]bool{PortEmbedder: true})
	if s.Get(NodeEmbedder).State != StateActive {
		t.Error("online patch reset an active node to idle")
	}
}
