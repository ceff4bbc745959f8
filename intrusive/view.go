package intrusive

import (
	"sync"
	"sync/atomic"

	"github.com/wippyai/refkit/errors"
	"github.com/wippyai/refkit/refcount"
)

// view is the side record weak handles point at. It lives independently of
// its owner: the owner holds one implicit reference until it is destroyed,
// and every weak handle holds one more.
//
// owner is a back reference, never ownership. It is read and cleared only
// under mu, which is the single point where promotion and destruction
// serialize.
type view struct {
	refs  refcount.Counter
	freed atomic.Bool
	mu    sync.Mutex
	owner Object
}

func newView(owner Object) *view {
	return &view{owner: owner}
}

func (v *view) isOwnerAlive() bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.owner == nil {
		return false
	}
	return v.owner.ownershipBlock().refs.Load() != 0
}

// clearOwner drops the back reference and the owner's implicit hold in one
// critical section, so weakCount never sees one without the other. Only the
// call that finds the owner attached releases the hold; later calls do
// nothing.
func (v *view) clearOwner() {
	v.mu.Lock()
	attached := v.owner != nil
	v.owner = nil
	last := attached && v.refs.DropRef()
	v.mu.Unlock()

	if last {
		v.free()
	}
}

// addRef adds a weak reference. The view must still be held by its owner or
// by another weak handle; reviving a freed view is an invariant violation.
func (v *view) addRef() {
	if !v.refs.TryAddRef() {
		bail(errors.Invariant(errors.PhaseWeaken, "weak reference added to a freed view"))
	}
}

func (v *view) release() {
	if v.refs.DropRef() {
		v.free()
	}
}

// weakCount returns the number of weak handles, excluding the owner's
// implicit hold while it is still attached.
func (v *view) weakCount() int64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	n := v.refs.Load()
	if v.owner != nil {
		n--
	}
	return n
}

func (v *view) free() {
	if v.freed.Swap(true) {
		bail(errors.Invariant(errors.PhaseRelease, "weak view freed twice"))
	}
	notify(EventViewFreed, nil)
}

// lockOwner promotes the view to a strong handle of type U. It fails if the
// owner is gone, is being destroyed, or is not a U.
func lockOwner[U Object](v *view) (Ptr[U], bool) {
	p, owner := tryLockOwner[U](v)
	if p.IsNull() {
		notify(EventLockFailed, owner)
		return p, false
	}
	notify(EventLocked, owner)
	return p, true
}

func tryLockOwner[U Object](v *view) (Ptr[U], Object) {
	v.mu.Lock()
	defer v.mu.Unlock()

	owner := v.owner
	if owner == nil {
		return Ptr[U]{}, nil
	}
	u, ok := convert[U](owner)
	if !ok {
		return Ptr[U]{}, owner
	}
	blk := owner.ownershipBlock()
	if blk.peekView() != v {
		bail(errors.New(errors.PhaseLock, errors.KindInvariant).
			Type(typeOf(owner)).
			Detail("weak view is not attached to its owner").
			Build())
	}
	if !blk.refs.TryAddRef() {
		return Ptr[U]{}, owner
	}
	return Ptr[U]{obj: u, blk: blk}, owner
}
