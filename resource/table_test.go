package resource

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/wippyai/refkit"
	rkerrors "github.com/wippyai/refkit/errors"
	"github.com/wippyai/refkit/intrusive"
)

type session struct {
	intrusive.Base
	id    int
	drops atomic.Int32
}

func (s *session) Drop() { s.drops.Add(1) }

type closer struct {
	intrusive.Base
	refkit.DropperFunc
}

type testObserver struct {
	mu     sync.Mutex
	events []Event
}

func (o *testObserver) OnResourceEvent(e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func TestTable_Basic(t *testing.T) {
	table := NewTable[*session]()
	s := &session{id: 1}
	p := intrusive.New(s)

	h, err := table.Insert(&p)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if h == 0 {
		t.Fatal("Expected non-zero handle")
	}
	if !p.IsNull() {
		t.Fatal("Insert should take over the caller's handle")
	}

	got, ok := table.Get(h)
	if !ok {
		t.Fatal("Get failed")
	}
	if got.Get() != s {
		t.Fatalf("Expected session 1, got %v", got.Get())
	}
	if got.RefCount() != 2 {
		t.Fatalf("Get should share, RefCount = %d", got.RefCount())
	}
	got.Release()

	if !table.Remove(h) {
		t.Fatal("Remove failed")
	}
	if s.drops.Load() != 1 {
		t.Fatalf("Expected Drop() once, got %d", s.drops.Load())
	}
	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
	if table.Remove(h) {
		t.Fatal("second Remove should fail")
	}
	if _, ok := table.Get(h); ok {
		t.Fatal("Get after Remove should fail")
	}
}

func TestTable_InvalidHandles(t *testing.T) {
	table := NewTable[*session]()
	for _, h := range []Handle{0, 1, 1000} {
		if _, ok := table.Get(h); ok {
			t.Errorf("Get(%d) should fail on empty table", h)
		}
		if _, ok := table.Borrow(h); ok {
			t.Errorf("Borrow(%d) should fail on empty table", h)
		}
		if table.Remove(h) {
			t.Errorf("Remove(%d) should fail on empty table", h)
		}
	}

	var null intrusive.Ptr[*session]
	_, err := table.Insert(&null)
	if !errors.Is(err, &rkerrors.Error{Phase: rkerrors.PhaseTable, Kind: rkerrors.KindNilHandle}) {
		t.Fatalf("Insert(null) error = %v", err)
	}
}

func TestTable_HandleReuse(t *testing.T) {
	table := NewTable[*session](Options{Name: "reuse", Capacity: 2})

	handles := make([]Handle, 3)
	for i := range handles {
		p := intrusive.New(&session{id: i})
		h, err := table.Insert(&p)
		if err != nil {
			t.Fatal(err)
		}
		handles[i] = h
	}

	table.Remove(handles[0])
	table.Remove(handles[2])

	p := intrusive.New(&session{id: 10})
	h, _ := table.Insert(&p)
	if h != handles[2] {
		t.Fatalf("expected most recently freed handle %d, got %d", handles[2], h)
	}
	p = intrusive.New(&session{id: 11})
	h, _ = table.Insert(&p)
	if h != handles[0] {
		t.Fatalf("expected handle %d, got %d", handles[0], h)
	}
	if table.Len() != 3 {
		t.Fatalf("Len = %d, want 3", table.Len())
	}
}

func TestTable_Borrow(t *testing.T) {
	table := NewTable[*session]()
	s := &session{id: 1}
	p := intrusive.New(s)
	h, _ := table.Insert(&p)

	w, ok := table.Borrow(h)
	if !ok {
		t.Fatal("Borrow failed")
	}
	defer w.Release()

	locked, ok := w.Lock()
	if !ok || locked.Get() != s {
		t.Fatal("borrowed handle should lock while the slot is occupied")
	}
	locked.Release()

	table.Remove(h)
	if w.IsAlive() {
		t.Fatal("borrowed handle should see the object destroyed")
	}
	if _, ok := w.Lock(); ok {
		t.Fatal("Lock after Remove should fail")
	}
}

func TestTable_RemoveKeepsSharedObjectAlive(t *testing.T) {
	table := NewTable[*session]()
	s := &session{id: 1}
	p := intrusive.New(s)
	keep := p.Share()
	h, _ := table.Insert(&p)

	table.Remove(h)
	if s.drops.Load() != 0 {
		t.Fatal("object destroyed while still referenced")
	}
	keep.Release()
	if s.drops.Load() != 1 {
		t.Fatal("object should be destroyed with the last reference")
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable[*session](Options{Name: "sessions"})
	obs := &testObserver{}
	table.Subscribe(obs)

	s := &session{id: 1}
	p := intrusive.New(s)
	h, _ := table.Insert(&p)
	w, _ := table.Borrow(h)
	w.Release()
	table.Remove(h)

	want := []EventType{EventInserted, EventBorrowed, EventRemoved}
	if len(obs.events) != len(want) {
		t.Fatalf("Expected %d events, got %d", len(want), len(obs.events))
	}
	for i, e := range obs.events {
		if e.Type != want[i] {
			t.Errorf("event %d = %s, want %s", i, e.Type, want[i])
		}
		if e.Handle != h || e.Table != "sessions" || e.Object != s {
			t.Errorf("event %d = %+v", i, e)
		}
	}

	table.Unsubscribe(obs)
	p = intrusive.New(&session{id: 2})
	table.Insert(&p)
	if len(obs.events) != len(want) {
		t.Fatal("Should not receive events after Unsubscribe")
	}
}

func TestTable_Each(t *testing.T) {
	table := NewTable[*session]()
	for i := 0; i < 4; i++ {
		p := intrusive.New(&session{id: i})
		table.Insert(&p)
	}

	seen := 0
	table.Each(func(h Handle, s *session) bool {
		seen++
		return true
	})
	if seen != 4 {
		t.Fatalf("Each visited %d, want 4", seen)
	}

	seen = 0
	table.Each(func(h Handle, s *session) bool {
		seen++
		return seen < 2
	})
	if seen != 2 {
		t.Fatalf("Each should stop early, visited %d", seen)
	}

	var dropped []*session
	table.Each(func(h Handle, s *session) bool {
		table.Remove(h)
		if s.drops.Load() != 0 {
			t.Error("object destroyed while Each holds it")
		}
		dropped = append(dropped, s)
		return true
	})
	if table.Len() != 0 {
		t.Fatalf("Len after removing in Each = %d", table.Len())
	}
	for _, s := range dropped {
		if s.drops.Load() != 1 {
			t.Fatalf("session %d dropped %d times", s.id, s.drops.Load())
		}
	}
}

func TestTable_Clear(t *testing.T) {
	table := NewTable[*session]()
	obs := &testObserver{}
	table.Subscribe(obs)

	sessions := []*session{{id: 1}, {id: 2}, {id: 3}}
	var handles []Handle
	for _, s := range sessions {
		p := intrusive.New(s)
		h, _ := table.Insert(&p)
		handles = append(handles, h)
	}

	table.Clear()

	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Clear")
	}
	for _, s := range sessions {
		if s.drops.Load() != 1 {
			t.Fatalf("session %d dropped %d times", s.id, s.drops.Load())
		}
	}
	if len(obs.events) != 6 {
		t.Fatalf("Expected 6 events, got %d", len(obs.events))
	}

	for _, h := range handles {
		if _, ok := table.Get(h); ok {
			t.Fatalf("handle %d still resolves after Clear", h)
		}
	}

	p := intrusive.New(&session{id: 4})
	h, err := table.Insert(&p)
	if err != nil || h != handles[2] {
		t.Fatalf("Insert after Clear = %d, %v; want most recently vacated handle %d", h, err, handles[2])
	}
	for _, old := range handles[:2] {
		if _, ok := table.Get(old); ok {
			t.Fatalf("handle %d resolves before being reused", old)
		}
	}

	q := intrusive.New(&session{id: 5})
	if h, _ := table.Insert(&q); h != handles[1] {
		t.Fatalf("second Insert after Clear = %d, want %d", h, handles[1])
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	table.Clear()
}

func TestTable_Close(t *testing.T) {
	table := NewTable[*closer]()

	closed := 0
	for i := 0; i < 2; i++ {
		p := intrusive.New(&closer{DropperFunc: func() { closed++ }})
		table.Insert(&p)
	}

	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if closed != 2 {
		t.Fatalf("Close released %d objects, want 2", closed)
	}
	if err := table.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}

	p := intrusive.New(&closer{DropperFunc: func() { closed++ }})
	h, err := table.Insert(&p)
	if h != 0 || !errors.Is(err, ErrClosed) {
		t.Fatalf("Insert after Close = %d, %v", h, err)
	}
	if p.IsNull() {
		t.Fatal("failed Insert must leave the handle with the caller")
	}
	p.Release()
	if closed != 3 {
		t.Fatal("caller should still own the rejected object")
	}
}

func TestTable_ConcurrentAccess(t *testing.T) {
	table := NewTable[*session]()

	const workers = 8
	const perWorker = 200
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				s := &session{id: w*perWorker + i}
				p := intrusive.New(s)
				h, err := table.Insert(&p)
				if err != nil {
					t.Error(err)
					return
				}
				got, ok := table.Get(h)
				if !ok || got.Get() != s {
					t.Errorf("handle %d lost its object", h)
				}
				got.Release()
				if !table.Remove(h) {
					t.Errorf("Remove(%d) failed", h)
				}
				if s.drops.Load() != 1 {
					t.Errorf("session %d dropped %d times", s.id, s.drops.Load())
				}
			}
		}(w)
	}
	wg.Wait()

	if table.Len() != 0 {
		t.Fatalf("Len = %d after concurrent use", table.Len())
	}
}
