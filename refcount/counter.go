package refcount

import (
	"strconv"
	"sync/atomic"

	"github.com/wippyai/refkit/errors"
)

// Counter is an atomic reference count.
//
// The zero Counter holds exactly one reference: a freshly constructed owner
// already accounts for its creator. Once the count reaches zero it never
// rises again; TryAddRef is the only way to add a reference when the caller
// does not already hold one.
type Counter struct {
	// extra is the count minus one, so that the zero value means one.
	extra atomic.Int64
}

// Load returns the current count. The value is racy by nature and only
// meaningful for observability or when the caller holds a reference.
func (c *Counter) Load() int64 {
	return c.extra.Load() + 1
}

// IsUnique reports whether exactly one reference is held.
func (c *Counter) IsUnique() bool {
	return c.extra.Load() == 0
}

// AddRef adds a reference. The caller must already hold one.
func (c *Counter) AddRef() {
	if n := c.extra.Add(1); n <= 0 {
		panic(errors.Invariant(errors.PhaseShare, "reference added to released count (now %d)", n+1))
	}
}

// TryAddRef adds a reference unless the count is already zero.
func (c *Counter) TryAddRef() bool {
	for {
		old := c.extra.Load()
		if old < 0 {
			return false
		}
		if c.extra.CompareAndSwap(old, old+1) {
			return true
		}
	}
}

// DropRef removes a reference and reports whether it was the last one.
// Exactly one caller observes true for a given Counter.
func (c *Counter) DropRef() bool {
	n := c.extra.Add(-1)
	if n < -1 {
		panic(errors.Invariant(errors.PhaseRelease, "reference count underflow (now %d)", n+1))
	}
	return n == -1
}

func (c *Counter) String() string {
	return strconv.FormatInt(c.Load(), 10)
}
