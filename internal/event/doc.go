// Package event carries fluxmap's internal notifications: the typed
// events the simulation and ingest layers publish, and the synchronous
// bus that fans them out to observers such as the TUI activity feed and
// the logging subscriber.
//
// Topics are EventType strings in "category.action" form:
//
//   - node.transition: a telemetry event landed on a node
//   - repo.assigned: a repository was bound to a slot
//   - control.changed: the admission controller changed state
//   - ingest.error: a telemetry line failed to decode
//
// Subscribing:
//
//	bus := event.NewBus()
//	cancel := bus.Subscribe("repo.assigned", func(e event.Event) {
//	    ra := e.(event.RepoAssignedEvent)
//	    log.Printf("%s bound to %s", ra.Repo, ra.SlotID)
//	})
//	defer cancel()
//
// SubscribeAll hears every topic; the TUI feed uses it. Handlers run
// synchronously on the publishing goroutine and are individually
// protected against panics.
package event
