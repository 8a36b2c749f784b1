package event

import "time"

// Event is the interface all notification events implement.
type Event interface {
	// EventType returns a string identifier for this event type.
	// Convention: "category.action" (e.g., "node.transition").
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{eventType: eventType, timestamp: time.Now()}
}

// NodeTransitionEvent is emitted when an inbound telemetry event lands on a
// node and changes its state or stats.
type NodeTransitionEvent struct {
	baseEvent
	NodeID    string // Node the event resolved to
	EventName string // Raw telemetry event type
	Status    string // Dispatched status ("start", "end", ...)
	Redundant bool   // True when dropped as a duplicate start
}

// NewNodeTransitionEvent creates a NodeTransitionEvent.
func NewNodeTransitionEvent(nodeID, eventName, status string, redundant bool) NodeTransitionEvent {
	return NodeTransitionEvent{
		baseEvent: newBaseEvent("node.transition"),
		NodeID:    nodeID,
		EventName: eventName,
		Status:    status,
		Redundant: redundant,
	}
}

// RepoAssignedEvent is emitted when a repository is bound to a slot node.
type RepoAssignedEvent struct {
	baseEvent
	Repo   string
	SlotID string
}

// NewRepoAssignedEvent creates a RepoAssignedEvent.
func NewRepoAssignedEvent(repo, slotID string) RepoAssignedEvent {
	return RepoAssignedEvent{
		baseEvent: newBaseEvent("repo.assigned"),
		Repo:      repo,
		SlotID:    slotID,
	}
}

// ControlChangedEvent is emitted when the admission controller changes state.
type ControlChangedEvent struct {
	baseEvent
	State string
}

// NewControlChangedEvent creates a ControlChangedEvent.
func NewControlChangedEvent(state string) ControlChangedEvent {
	return ControlChangedEvent{
		baseEvent: newBaseEvent("control.changed"),
		State:     state,
	}
}

// IngestErrorEvent is emitted when a telemetry line cannot be decoded.
// Malformed telemetry never stops the stream; observers may surface it.
type IngestErrorEvent struct {
	baseEvent
	Line string
	Err  string
}

// NewIngestErrorEvent creates an IngestErrorEvent.
func NewIngestErrorEvent(line, errMsg string) IngestErrorEvent {
	return IngestErrorEvent{
		baseEvent: newBaseEvent("ingest.error"),
		Line:      line,
		Err:       errMsg,
	}
}
