package resource

import (
	"github.com/wippyai/refkit/intrusive"
)

// slots is the handle storage behind a Table: a dense slice of strong
// handles with a free list of vacated indexes. It does no locking.
type slots[T intrusive.Object] struct {
	entries  []slot[T]
	freeList []Handle
	live     int
}

type slot[T intrusive.Object] struct {
	ptr   intrusive.Ptr[T]
	valid bool
}

func newSlots[T intrusive.Object](capacity int) slots[T] {
	if capacity < 0 {
		capacity = 0
	}
	return slots[T]{
		entries:  make([]slot[T], 0, capacity),
		freeList: make([]Handle, 0, capacity/4),
	}
}

// put stores p, reusing the most recently vacated handle if there is one.
func (s *slots[T]) put(p intrusive.Ptr[T]) Handle {
	s.live++
	e := slot[T]{ptr: p, valid: true}

	if len(s.freeList) > 0 {
		handle := s.freeList[len(s.freeList)-1]
		s.freeList = s.freeList[:len(s.freeList)-1]
		s.entries[handle-1] = e
		return handle
	}

	s.entries = append(s.entries, e)
	return Handle(len(s.entries))
}

func (s *slots[T]) lookup(handle Handle) (*slot[T], bool) {
	if handle == 0 {
		return nil, false
	}
	idx := int(handle - 1)
	if idx >= len(s.entries) {
		return nil, false
	}
	e := &s.entries[idx]
	if !e.valid {
		return nil, false
	}
	return e, true
}

// take vacates handle and hands its reference to the caller.
func (s *slots[T]) take(handle Handle) (intrusive.Ptr[T], bool) {
	e, ok := s.lookup(handle)
	if !ok {
		return intrusive.Ptr[T]{}, false
	}
	p := e.ptr.Move()
	e.valid = false
	s.freeList = append(s.freeList, handle)
	s.live--
	return p, true
}

// drain vacates every slot and returns the references with their handles.
// The vacated handles join the free list, so numbering continues rather
// than restarting at 1.
func (s *slots[T]) drain() ([]Handle, []intrusive.Ptr[T]) {
	handles := make([]Handle, 0, s.live)
	ptrs := make([]intrusive.Ptr[T], 0, s.live)
	for i := range s.entries {
		e := &s.entries[i]
		if !e.valid {
			continue
		}
		handles = append(handles, Handle(i+1))
		ptrs = append(ptrs, e.ptr.Move())
		e.valid = false
		s.freeList = append(s.freeList, Handle(i+1))
	}
	s.live = 0
	return handles, ptrs
}
