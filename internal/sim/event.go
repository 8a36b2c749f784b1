package sim

// Status is the lifecycle phase carried in a telemetry event payload.
// Events without a status dispatch as one-shot activity pings.
type Status string

const (
	StatusNone        Status = ""
	StatusStart       Status = "start"
	StatusWaiting     Status = "waiting"
	StatusDispatching Status = "dispatching"
	StatusReceiving   Status = "receiving"
	StatusEnd         Status = "end"
)

// Event is one inbound telemetry event from the observed pipeline.
// Unrecognized types are silently dropped; missing payload fields are
// zero values.
type Event struct {
	Type    string
	Status  Status
	Repo    string
	File    string
	Mapper  string
	Label   string
	Success *bool
}

// Failed reports whether the event explicitly carries success=false.
func (e Event) Failed() bool { return e.Success != nil && !*e.Success }

// RouteResult describes how an event landed: the node it resolved to, the
// status it dispatched under, and whether it was discarded as a duplicate
// of an identical in-progress start.
type RouteResult struct {
	Node      NodeID
	Status    Status
	Redundant bool
}
