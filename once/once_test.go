package once

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestCall_RunsOnce(t *testing.T) {
	var f Flag
	runs := 0

	if !Call(&f, func() { runs++ }) {
		t.Fatal("first Call should report it ran")
	}
	if Call(&f, func() { runs++ }) {
		t.Fatal("second Call should not run")
	}
	if runs != 1 {
		t.Fatalf("runs = %d, want 1", runs)
	}
	if !f.Done() {
		t.Fatal("flag should be set")
	}
}

func TestCall_Concurrent(t *testing.T) {
	var f Flag
	var runs, ran atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if Call(&f, func() { runs.Add(1) }) {
				ran.Add(1)
			}
		}()
	}
	wg.Wait()

	if runs.Load() != 1 || ran.Load() != 1 {
		t.Fatalf("runs = %d, reported = %d, want 1 and 1", runs.Load(), ran.Load())
	}
}

func TestCall_PanicLeavesFlagUnset(t *testing.T) {
	var f Flag

	func() {
		defer func() { _ = recover() }()
		Call(&f, func() { panic("init failed") })
	}()

	if f.Done() {
		t.Fatal("flag set after panicking initializer")
	}
	if !TryLock() {
		t.Fatal("global mutex still held after panic")
	}
	Unlock()

	if !Call(&f, func() {}) {
		t.Fatal("retry after panic should run")
	}
}

func TestGlobalMutex(t *testing.T) {
	Lock()
	if TryLock() {
		t.Fatal("TryLock succeeded while held")
	}
	Unlock()

	if !TryLock() {
		t.Fatal("TryLock failed on free mutex")
	}
	Unlock()
}
