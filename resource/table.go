package resource

import (
	"sync"

	"github.com/wippyai/refkit/errors"
	"github.com/wippyai/refkit/intrusive"
)

// Table maps integer handles to strong references on managed objects.
// Each occupied slot keeps its object alive until it is removed.
type Table[T intrusive.Object] struct {
	slots     slots[T]
	name      string
	observers []Observer
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

// NewTable creates an empty table.
func NewTable[T intrusive.Object](opts ...Options) *Table[T] {
	o := DefaultOptions()
	if len(opts) > 0 {
		o = opts[0]
	}
	return &Table[T]{
		slots: newSlots[T](o.Capacity),
		name:  o.Name,
	}
}

// Name returns the table's label.
func (t *Table[T]) Name() string {
	return t.name
}

// Insert takes over p's reference and returns the handle it is stored under.
// On error p is left untouched and still owned by the caller.
func (t *Table[T]) Insert(p *intrusive.Ptr[T]) (Handle, error) {
	if p.IsNull() {
		return 0, errors.NilHandle(errors.PhaseTable, p.String())
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return 0, ErrClosed
	}
	obj := p.Get()
	handle := t.slots.put(p.Move())
	t.mu.Unlock()

	t.notify(EventInserted, handle, obj)
	return handle, nil
}

// Get returns a new strong handle to the object stored under handle.
// The caller must release it.
func (t *Table[T]) Get(handle Handle) (intrusive.Ptr[T], bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e, ok := t.slots.lookup(handle)
	if !ok {
		return intrusive.Ptr[T]{}, false
	}
	return e.ptr.Share(), true
}

// Borrow returns a weak handle to the object stored under handle. It stays
// valid after the slot is removed but no longer locks once the object is
// destroyed.
func (t *Table[T]) Borrow(handle Handle) (intrusive.Weak[T], bool) {
	t.mu.RLock()
	e, ok := t.slots.lookup(handle)
	if !ok {
		t.mu.RUnlock()
		return intrusive.Weak[T]{}, false
	}
	w := e.ptr.Weaken()
	obj := e.ptr.Get()
	t.mu.RUnlock()

	t.notify(EventBorrowed, handle, obj)
	return w, true
}

// Remove vacates handle and releases the table's reference. The object is
// destroyed if no other strong handle exists.
func (t *Table[T]) Remove(handle Handle) bool {
	t.mu.Lock()
	p, ok := t.slots.take(handle)
	t.mu.Unlock()
	if !ok {
		return false
	}

	obj := p.Get()
	p.Release()
	t.notify(EventRemoved, handle, obj)
	return true
}

// Len returns the number of occupied handles.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.slots.live
}

// Each calls fn for every occupied handle until fn returns false. fn sees a
// snapshot and may modify the table.
func (t *Table[T]) Each(fn func(Handle, T) bool) {
	t.mu.RLock()
	handles := make([]Handle, 0, t.slots.live)
	ptrs := make([]intrusive.Ptr[T], 0, t.slots.live)
	for i := range t.slots.entries {
		e := &t.slots.entries[i]
		if e.valid {
			handles = append(handles, Handle(i+1))
			ptrs = append(ptrs, e.ptr.Share())
		}
	}
	t.mu.RUnlock()

	defer func() {
		for i := range ptrs {
			ptrs[i].Release()
		}
	}()
	for i, h := range handles {
		if !fn(h, ptrs[i].Get()) {
			return
		}
	}
}

// Clear removes every handle. As with Remove, the vacated handles are
// reused by later inserts, most recently vacated first, so handles kept from
// before Clear must not be used again.
func (t *Table[T]) Clear() {
	t.mu.Lock()
	handles, ptrs := t.slots.drain()
	t.mu.Unlock()

	t.releaseAll(handles, ptrs)
}

// Close removes every handle and rejects further inserts. Closing twice is
// a no-op.
func (t *Table[T]) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	handles, ptrs := t.slots.drain()
	t.mu.Unlock()

	t.releaseAll(handles, ptrs)
	return nil
}

func (t *Table[T]) releaseAll(handles []Handle, ptrs []intrusive.Ptr[T]) {
	for i := range ptrs {
		obj := ptrs[i].Get()
		ptrs[i].Release()
		t.notify(EventRemoved, handles[i], obj)
	}
}

// Subscribe adds an observer for lifecycle events.
func (t *Table[T]) Subscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	t.observers = append(t.observers, o)
}

// Unsubscribe removes an observer.
func (t *Table[T]) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

func (t *Table[T]) notify(typ EventType, handle Handle, obj T) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	if len(t.observers) == 0 {
		return
	}
	e := Event{Object: obj, Table: t.name, Handle: handle, Type: typ}
	for _, o := range t.observers {
		o.OnResourceEvent(e)
	}
}
