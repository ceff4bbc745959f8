// Package once provides one-time initialization gated by a process-wide
// mutex.
//
// The global mutex is held only while an initializer runs, so the common path
// (flag already set) is a single atomic load. Initializers must not call Call
// themselves; the mutex is not reentrant.
package once

import (
	"sync"
	"sync/atomic"
)

var global sync.Mutex

// Lock acquires the process-wide mutex.
func Lock() { global.Lock() }

// Unlock releases the process-wide mutex.
func Unlock() { global.Unlock() }

// TryLock acquires the process-wide mutex if it is free.
func TryLock() bool { return global.TryLock() }

// Flag records whether an initializer has completed.
// The zero Flag is unset.
type Flag struct {
	done atomic.Bool
}

// Done reports whether an initializer guarded by f has completed.
func (f *Flag) Done() bool {
	return f.done.Load()
}

// Call runs fn unless f is already set, and reports whether this call ran it.
// If fn panics, f stays unset and a later Call runs its initializer again.
func Call(f *Flag, fn func()) bool {
	if f.done.Load() {
		return false
	}

	global.Lock()
	defer global.Unlock()

	if f.done.Load() {
		return false
	}
	fn()
	f.done.Store(true)
	return true
}
