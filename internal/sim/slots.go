package sim

import (
	"strconv"
	"time"

	"github.com/fluxmap/fluxmap/internal/logging"
)

// SlotAllocator bridges the unbounded set of repositories arriving at
// runtime onto the fixed static graph. Each repo key is assigned exactly
// one slot node, created on first sighting and kept for the session: a
// released slot is marked complete, never deallocated, so history lookups
// keep working after the repo is gone.
type SlotAllocator struct {
	store  *Store
	byRepo map[string]NodeID
	next   int

	// Slot rest positions stack down the left edge of the canvas.
	baseX, baseY, stepY float64

	logger *logging.Logger
}

// SlotPatch is a partial update merged into a slot's stats. Nil fields are
// left untouched.
type SlotPatch struct {
	Label *string
	File  *string
	State *NodeState
}

// NewSlotAllocator creates an allocator writing into store.
func NewSlotAllocator(store *Store, logger *logging.Logger) *SlotAllocator {
	if logger == nil {
		logger = logging.NopLogger()
	}
	return &SlotAllocator{
		store:  store,
		byRepo: make(map[string]NodeID),
		baseX:  70,
		baseY:  70,
		stepY:  48,
		logger: logger,
	}
}

// Assign returns the slot node id for a repo key, allocating a fresh slot
// with initialized state, stats, and history on first sighting. The same
// key always maps to the same id; ids are never reused.
func (a *SlotAllocator) Assign(repo string, now time.Time) NodeID {
	if id, ok := a.byRepo[repo]; ok {
		return id
	}

	a.next++
	id := NodeID("repo_slot_" + strconv.Itoa(a.next))
	rest := Vec2{a.baseX, a.baseY + float64(a.next-1)*a.stepY}
	a.store.Add(Node{
		ID:           id,
		Kind:         KindSlot,
		DefaultLabel: repo,
		Pos:          rest,
		Rest:         rest,
		HitRadius:    16,
		Visible:      true,
	})
	a.byRepo[repo] = id

	r := a.store.Get(id)
	r.State = StateActive
	r.Stats.Repo = repo
	r.Stats.Label = repo
	a.store.OpenHistory(id, now, repo, "")

	a.logger.Info("repo assigned to slot", "repo", repo, "slot", string(id))
	return id
}

// Lookup returns the slot id for a repo without allocating.
func (a *SlotAllocator) Lookup(repo string) (NodeID, bool) {
	id, ok := a.byRepo[repo]
	return id, ok
}

// Update merges a patch into a known repo's slot. Unknown keys are a no-op.
func (a *SlotAllocator) Update(repo string, patch SlotPatch) bool {
	id, ok := a.byRepo[repo]
	if !ok {
		return false
	}
	r := a.store.Get(id)
	if patch.Label != nil {
		r.Stats.Label = *patch.Label
	}
	if patch.File != nil {
		r.Stats.File = *patch.File
	}
	if patch.State != nil {
		r.State = *patch.State
	}
	return true
}

// Release marks a repo's slot complete. The slot remains in the arena and
// addressable; unknown keys are a no-op.
func (a *SlotAllocator) Release(repo string, now time.Time) bool {
	id, ok := a.byRepo[repo]
	if !ok {
		return false
	}
	r := a.store.Get(id)
	r.Completed = true
	r.State = StateIdle
	r.Stats.Label = repo + " ✓"
	a.store.CloseHistory(id, now, repo, "")

	a.logger.Info("repo slot released", "repo", repo, "slot", string(id))
	return true
}

// Count returns how many slots have been allocated.
func (a *SlotAllocator) Count() int { return a.next }
