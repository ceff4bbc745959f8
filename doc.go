// Package refkit provides intrusive reference counting for Go: shared
// ownership with the count stored inside the managed object, and weak
// observation through a lazily allocated side record.
//
// Go's garbage collector reclaims memory, but not sockets, file descriptors,
// pooled buffers or any other resource that must be released at a precise
// moment. refkit gives such objects a deterministic end of life: the last
// owner to let go runs the object's deleter exactly once, and weak observers
// can check whether that has happened without keeping the object alive.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	refkit/              Root package with the Dropper interface
//	├── intrusive/       Ptr, Weak and Unique handles, casting, weak views
//	├── refcount/        Atomic counter whose zero value holds one reference
//	├── resource/        Integer handle tables over managed objects
//	├── metrics/         Prometheus collectors for ownership and table events
//	├── once/            One-time initialization under a process-wide mutex
//	├── errors/          Structured error types
//	├── internal/stress/ Concurrent lifetime scenarios
//	└── cmd/refstress/   Command line driver for the scenarios
//
// # Quick Start
//
// Make a type managed by embedding intrusive.Base:
//
//	type Conn struct {
//		intrusive.Base
//		fd int
//	}
//
//	func (c *Conn) Drop() { syscall.Close(c.fd) }
//
//	conn := intrusive.New(&Conn{fd: fd})
//	defer conn.Release()
//
//	reader := conn.Share()      // second owner
//	watch := conn.Weaken()      // observer
//	if p, ok := watch.Lock(); ok {
//		defer p.Release()
//		// use p.Get()
//	}
//
// # Logging
//
// Packages that log use zap and default to a no-op logger:
//
//	intrusive.SetLogger(logger)
//
// Broken ownership invariants, such as destroying an object that is still
// shared, are logged at Fatal level.
package refkit
