// Package event distributes run lifecycle notifications.
//
// The engine publishes an Event at every lifecycle transition: run started,
// node started/completed/failed, run completed/failed/suspended/resumed/
// cancelled. Subscribers receive events on buffered channels with their own
// delivery goroutine, so a slow subscriber never stalls the step loop in
// non-blocking mode.
//
// Typical use is progress display and audit trails:
//
//	bus := event.NewBus(event.BusConfig{})
//	defer bus.Close()
//
//	bus.Subscribe([]string{event.TypeRunSuspended}, func(evt event.Event) {
//	    notifyApprover(evt.RunID, evt.Node)
//	})
//
//	engine := stategraph.NewEngine(graph, store, stategraph.WithEvents(bus))
package event
