package sim

import (
	"time"

	"github.com/fluxmap/fluxmap/internal/logging"
)

// Record is one arena entry: a node plus everything the simulation knows
// about it. Records are created once and never removed; released dynamic
// slots stay addressable for history lookups.
type Record struct {
	Node  Node
	State NodeState
	Stats NodeStats

	// Online is the merged health flag for nodes with a port affinity.
	Online bool
	// Completed marks a released dynamic slot.
	Completed bool

	history historyRing
}

// History returns the node's bounded history, oldest first.
func (r *Record) History() []HistoryEntry { return r.history.entries() }

// Store is the single source of truth for node state, stats, health, and
// history. Records live in an insertion-ordered arena; ids resolve through
// an index map so dynamic nodes are ordinary arena entries with a Visible
// flag rather than conditionally present map keys.
type Store struct {
	arena []*Record
	index map[NodeID]int

	historyDepth int
	logger       *logging.Logger
}

// NewStore builds a store seeded with the topology's static nodes. Every
// node receives exactly one state, stats, and history record at init.
func NewStore(topo *Topology, historyDepth int, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.NopLogger()
	}
	if historyDepth <= 0 {
		historyDepth = 24
	}
	s := &Store{
		index:        make(map[NodeID]int),
		historyDepth: historyDepth,
		logger:       logger,
	}
	for _, n := range topo.Nodes() {
		s.Add(n)
	}
	// External services start online until a health patch says otherwise.
	for _, r := range s.arena {
		r.Online = true
	}
	return s
}

// Add appends a record for a node and returns its arena index. Nodes start
// idle with their default label. Adding an id twice returns the existing
// index unchanged.
func (s *Store) Add(n Node) int {
	if idx, ok := s.index[n.ID]; ok {
		return idx
	}
	r := &Record{
		Node:   n,
		State:  StateIdle,
		Online: true,
		history: historyRing{
			depth: s.historyDepth,
		},
	}
	r.Stats.Label = n.DefaultLabel
	s.arena = append(s.arena, r)
	s.index[n.ID] = len(s.arena) - 1
	return len(s.arena) - 1
}

// Get returns the record for an id, or nil for unknown ids. Callers treat
// nil as a no-op; unknown ids never panic.
func (s *Store) Get(id NodeID) *Record {
	idx, ok := s.index[id]
	if !ok {
		return nil
	}
	return s.arena[idx]
}

// At returns the record at an arena index, or nil when out of range.
func (s *Store) At(idx int) *Record {
	if idx < 0 || idx >= len(s.arena) {
		return nil
	}
	return s.arena[idx]
}

// Len returns the number of records in the arena.
func (s *Store) Len() int { return len(s.arena) }

// Each calls fn for every record in arena order.
func (s *Store) Each(fn func(*Record)) {
	for _, r := range s.arena {
		fn(r)
	}
}

// SetState transitions a node's state. Unknown ids are ignored.
func (s *Store) SetState(id NodeID, state NodeState) {
	r := s.Get(id)
	if r == nil || r.State == state {
		return
	}
	old := r.State
	r.State = state
	s.logger.Debug("node state changed",
		"node", string(id),
		"old_state", old.String(),
		"new_state", state.String())
}

// IncrementCount raises a node's in-flight count by one.
func (s *Store) IncrementCount(id NodeID) {
	if r := s.Get(id); r != nil {
		r.Stats.Count++
	}
}

// DecrementCount lowers a node's in-flight count, clamped at zero.
func (s *Store) DecrementCount(id NodeID) {
	r := s.Get(id)
	if r == nil {
		return
	}
	if r.Stats.Count > 0 {
		r.Stats.Count--
	}
}

// ClearLabels resets a node's work labels to its default presentation.
func (s *Store) ClearLabels(id NodeID) {
	r := s.Get(id)
	if r == nil {
		return
	}
	r.Stats.Label = r.Node.DefaultLabel
	r.Stats.Repo = ""
	r.Stats.File = ""
}

// OpenHistory appends an open history entry for a unit of work.
func (s *Store) OpenHistory(id NodeID, now time.Time, repo, file string) {
	if r := s.Get(id); r != nil {
		r.history.push(HistoryEntry{At: now, Repo: repo, File: file})
	}
}

// CloseHistory marks the most recent open entry matching repo+file as done.
// Entries that scrolled out of the ring are silently unmatched.
func (s *Store) CloseHistory(id NodeID, now time.Time, repo, file string) {
	if r := s.Get(id); r != nil {
		r.history.close(now, repo, file)
	}
}

// AssignHistorySlot records the downstream slot a completed unit was fanned
// out to, for fan-out tracing.
func (s *Store) AssignHistorySlot(id NodeID, repo, file string, slot NodeID) {
	if r := s.Get(id); r != nil {
		r.history.assignSlot(repo, file, slot)
	}
}

// MarkDispatching arms the transient dispatching flag until deadline.
func (s *Store) MarkDispatching(id NodeID, until time.Time) {
	if r := s.Get(id); r != nil {
		r.Stats.Dispatching = true
		r.Stats.dispatchUntil = until
	}
}

// MarkReceiving arms the transient receiving flag until deadline.
func (s *Store) MarkReceiving(id NodeID, until time.Time) {
	if r := s.Get(id); r != nil {
		r.Stats.Receiving = true
		r.Stats.receiveUntil = until
	}
}

// ArmSelfClear schedules a one-shot activation to clear itself at deadline.
func (s *Store) ArmSelfClear(id NodeID, until time.Time) {
	if r := s.Get(id); r != nil {
		r.Stats.selfClearUntil = until
	}
}

// ExpireTransients sweeps timestamped transient flags and self-clearing
// one-shot activations. Called once per simulation tick; replaces the timer
// queue the flags would otherwise need.
func (s *Store) ExpireTransients(now time.Time) {
	for _, r := range s.arena {
		st := &r.Stats
		if st.Dispatching && !st.dispatchUntil.IsZero() && now.After(st.dispatchUntil) {
			st.Dispatching = false
			st.dispatchUntil = time.Time{}
		}
		if st.Receiving && !st.receiveUntil.IsZero() && now.After(st.receiveUntil) {
			st.Receiving = false
			st.receiveUntil = time.Time{}
		}
		if !st.selfClearUntil.IsZero() && now.After(st.selfClearUntil) {
			st.selfClearUntil = time.Time{}
			if st.Count > 0 {
				st.Count--
			}
			if st.Count == 0 && r.State == StateActive {
				r.State = StateIdle
			}
		}
	}
}

// ApplyHealth merges a port-keyed health patch into every node with a
// matching port affinity. Ports with no affinity are ignored.
func (s *Store) ApplyHealth(patch map[int]bool) {
	for _, r := range s.arena {
		if r.Node.Port == 0 {
			continue
		}
		online, ok := patch[r.Node.Port]
		if !ok {
			continue
		}
		if r.Online != online {
			s.logger.Info("node health changed",
				"node", string(r.Node.ID),
				"port", r.Node.Port,
				"online", online)
		}
		r.Online = online
		if !online && r.State != StateError {
			r.State = StateError
		} else if online && r.State == StateError {
			r.State = StateIdle
		}
	}
}

// historyRing is a bounded ring buffer of history entries per node.
type historyRing struct {
	buf   []HistoryEntry
	head  int // next write position
	count int
	depth int
}

func (h *historyRing) push(e HistoryEntry) {
	if h.depth <= 0 {
		return
	}
	if len(h.buf) < h.depth {
		h.buf = append(h.buf, e)
		h.head = len(h.buf) % h.depth
		if h.count < h.depth {
			h.count++
		}
		return
	}
	h.buf[h.head] = e
	h.head = (h.head + 1) % h.depth
}

// close marks the newest open entry matching repo+file as done.
func (h *historyRing) close(now time.Time, repo, file string) {
	for i := 0; i < h.count; i++ {
		e := h.at(h.count - 1 - i)
		if !e.Done && e.Repo == repo && e.File == file {
			e.Done = true
			e.CompletedAt = now
			return
		}
	}
}

func (h *historyRing) assignSlot(repo, file string, slot NodeID) {
	for i := 0; i < h.count; i++ {
		e := h.at(h.count - 1 - i)
		if e.Repo == repo && e.File == file {
			e.Slot = slot
			return
		}
	}
}

// at returns a pointer to the i-th oldest entry.
func (h *historyRing) at(i int) *HistoryEntry {
	if len(h.buf) < h.depth {
		return &h.buf[i]
	}
	return &h.buf[(h.head+i)%h.depth]
}

func (h *historyRing) entries() []HistoryEntry {
	out := make([]HistoryEntry, h.count)
	for i := 0; i < h.count; i++ {
		out[i] = *h.at(i)
	}
	return out
}
