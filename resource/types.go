package resource

import (
	"github.com/wippyai/refkit/errors"
	"github.com/wippyai/refkit/intrusive"
)

// Handle is an opaque reference to an object in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// ErrClosed is returned by operations on a closed table.
var ErrClosed = errors.Closed(errors.PhaseTable, "resource table")

// Event types for table lifecycle notifications.
type EventType uint8

const (
	EventInserted EventType = iota
	EventRemoved
	EventBorrowed
)

func (t EventType) String() string {
	switch t {
	case EventInserted:
		return "inserted"
	case EventRemoved:
		return "removed"
	case EventBorrowed:
		return "borrowed"
	default:
		return "unknown"
	}
}

// Event represents a table lifecycle event.
type Event struct {
	Object intrusive.Object
	Table  string
	Handle Handle
	Type   EventType
}

// Observer receives notifications about table lifecycle events.
type Observer interface {
	OnResourceEvent(Event)
}

// Options configures a Table.
type Options struct {
	// Name labels the table in events and metrics.
	Name string
	// Capacity preallocates slots.
	Capacity int
}

// DefaultOptions returns the options used by NewTable when none are given.
func DefaultOptions() Options {
	return Options{
		Name:     "default",
		Capacity: 64,
	}
}
