// Package intrusive provides shared ownership with the reference count
// embedded in the managed object, plus weak observation through a lazily
// allocated side record.
//
// # Managed Objects
//
// A type opts in by embedding Base:
//
//	type Session struct {
//		intrusive.Base
//		conn net.Conn
//	}
//
//	func (s *Session) Drop() { s.conn.Close() }
//
// A zero Base counts one owner, the creator. New gives that reference to the
// first handle:
//
//	s := intrusive.New(&Session{conn: c})
//	defer s.Release()
//
// When the last strong handle is released the object's deleter runs exactly
// once: the function given with WithDeleter, or the object's Drop method.
// Memory itself is left to the garbage collector.
//
// # Handles
//
//	Ptr[T]    - strong owner; Share, Move, Release
//	Weak[T]   - observer; Clone, Lock, IsAlive, Release
//	Unique[T] - single owner; FromUnique converts it into a Ptr
//
// Handles are plain values. Duplicating ownership is always explicit
// (Share, Clone); assignment copies the handle without a reference.
//
// # Weak Views
//
// Nothing is allocated for weak observation until the first Weaken on an
// object. That call allocates a view and publishes it with a compare-and-swap;
// concurrent first callers that lose the race discard their copy. The view
// holds a mutex-guarded back reference to the object, cleared when the object
// is destroyed, and survives until the last weak handle is released.
//
// Lock takes the view mutex and adds a strong reference only if the count is
// still nonzero, so it returns either a handle that keeps the object alive or
// nothing:
//
//	if p, ok := w.Lock(); ok {
//		defer p.Release()
//		p.Get().Touch()
//	}
//
// # Casting
//
// Handles convert between related types, such as a concrete pointer and an
// interface that embeds Object:
//
//	type Shape interface {
//		intrusive.Object
//		Area() float64
//	}
//
//	shape := intrusive.StaticCast[Shape](&circle)            // circle becomes null
//	c, ok := intrusive.DynamicCast[*Circle](&shape)          // shape kept on failure
//	sq, ok := intrusive.ShareAs[*Square](shape.Get())        // new reference
//	p, ok := intrusive.LockAs[*Circle](weakShape)            // promote and cast
//
// # Invariant Violations
//
// Destroying an object that is still shared (Discard, Unique.Release) and
// freeing a weak view twice are programmer errors. They are logged through
// Logger at Fatal level and terminate the process. Counter misuse such as
// sharing a released handle panics.
//
// # Observability
//
// SetObserver installs a process-wide Observer receiving lifecycle events;
// package metrics provides a Prometheus implementation. Ptr and Weak
// implement zapcore.ObjectMarshaler.
package intrusive
