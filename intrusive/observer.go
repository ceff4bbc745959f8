package intrusive

import "sync/atomic"

// EventType identifies an ownership lifecycle event.
type EventType uint8

const (
	// EventAdopted fires when a handle claims a freshly built object.
	EventAdopted EventType = iota
	// EventDestroyed fires after the deleter of an object ran.
	EventDestroyed
	// EventViewPublished fires when a weak view becomes visible on its object.
	EventViewPublished
	// EventViewDiscarded fires when a speculatively allocated view lost the
	// publication race and was thrown away.
	EventViewDiscarded
	// EventViewFreed fires when the last reference to a view is gone.
	EventViewFreed
	// EventLocked fires when a weak handle was promoted.
	EventLocked
	// EventLockFailed fires when a promotion found the object gone or of
	// another type.
	EventLockFailed
)

func (t EventType) String() string {
	switch t {
	case EventAdopted:
		return "adopted"
	case EventDestroyed:
		return "destroyed"
	case EventViewPublished:
		return "view_published"
	case EventViewDiscarded:
		return "view_discarded"
	case EventViewFreed:
		return "view_freed"
	case EventLocked:
		return "locked"
	case EventLockFailed:
		return "lock_failed"
	default:
		return "unknown"
	}
}

// Event describes an ownership lifecycle event.
// Object is the managed object, or nil for view events that outlived it.
type Event struct {
	Object Object
	Type   EventType
}

// Observer receives ownership lifecycle events.
// Implementations are called synchronously on the goroutine performing the
// operation and must not block or use the handles involved.
type Observer interface {
	OnOwnershipEvent(Event)
}

type observerBox struct {
	o Observer
}

var observer atomic.Pointer[observerBox]

// SetObserver installs the process-wide observer. Passing nil removes it.
func SetObserver(o Observer) {
	if o == nil {
		observer.Store(nil)
		return
	}
	observer.Store(&observerBox{o: o})
}

func notify(t EventType, obj Object) {
	if b := observer.Load(); b != nil {
		b.o.OnOwnershipEvent(Event{Type: t, Object: obj})
	}
}
