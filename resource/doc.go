// Package resource provides handle tables over intrusively owned objects.
//
// A Table maps small integer handles to strong references, so that code
// that can only pass integers around (request ids, foreign callers, wire
// protocols) can still hold objects alive and look them up later.
//
// # Handle Table
//
//	table := resource.NewTable[*Session]()
//
//	// Hand a reference to the table
//	s := intrusive.New(&Session{})
//	handle, err := table.Insert(&s) // s is null now
//
//	// Share a strong reference for the duration of a call
//	if p, ok := table.Get(handle); ok {
//	    defer p.Release()
//	    p.Get().Serve()
//	}
//
//	// Observe without keeping the object alive
//	w, ok := table.Borrow(handle)
//
//	// Drop the table's reference
//	table.Remove(handle)
//
// Removed handles are reused, most recently freed first. Handle 0 is never
// issued.
//
// # Observers
//
// Register observers to track table events:
//
//	table.Subscribe(observer) // OnResourceEvent(resource.Event)
//
// Inserted, removed and borrowed events carry the handle, the table name
// and the object. Package metrics provides a Prometheus observer.
//
// # Closing
//
// Close releases every reference the table holds and makes later inserts
// fail with ErrClosed. Objects still referenced elsewhere stay alive.
package resource
