package intrusive

import (
	"sync"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	zapobserver "go.uber.org/zap/zaptest/observer"
)

type Shape interface {
	Object
	Area() float64
}

type Scalable interface {
	Shape
	Scale(f float64)
}

type circle struct {
	Base
	r       float64
	drops   atomic.Int32
	touched atomic.Int32
}

func (c *circle) Area() float64   { return 3 * c.r * c.r }
func (c *circle) Scale(f float64) { c.r *= f }
func (c *circle) Drop()           { c.drops.Add(1) }

// touch records a use of the object, failing if it was already destroyed.
func (c *circle) touch(t *testing.T) {
	if c.drops.Load() != 0 {
		t.Errorf("circle used after destroy")
	}
	c.touched.Add(1)
}

type square struct {
	Base
	side float64
}

func (s *square) Area() float64 { return s.side * s.side }

type blob struct {
	Base
}

type recorder struct {
	mu     sync.Mutex
	counts map[EventType]int
}

func (r *recorder) OnOwnershipEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.counts[e.Type]++
}

func (r *recorder) count(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.counts[t]
}

func installRecorder(t *testing.T) *recorder {
	t.Helper()
	r := &recorder{counts: make(map[EventType]int)}
	SetObserver(r)
	t.Cleanup(func() { SetObserver(nil) })
	return r
}

// captureFatal routes the package logger into memory and turns fatal
// entries into panics carrying the log message.
func captureFatal(t *testing.T) *zapobserver.ObservedLogs {
	t.Helper()
	core, logs := zapobserver.New(zapcore.DebugLevel)
	SetLogger(zap.New(core, zap.WithFatalHook(zapcore.WriteThenPanic)))
	t.Cleanup(func() { SetLogger(nil) })
	return logs
}
