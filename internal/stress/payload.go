package stress

import (
	"sync/atomic"

	"github.com/wippyai/refkit"
	"github.com/wippyai/refkit/intrusive"
)

// payload is the object the scenarios fight over. Its Drop marks it dead so
// a use after destruction can be detected.
type payload struct {
	intrusive.Base
	refkit.DropperFunc

	dead  atomic.Bool
	drops atomic.Int32
	uses  atomic.Int64
}

func newPayload(onDrop func()) *payload {
	p := &payload{}
	p.DropperFunc = func() {
		p.dead.Store(true)
		p.drops.Add(1)
		if onDrop != nil {
			onDrop()
		}
	}
	return p
}

// use records an access and reports whether the payload was still alive.
func (p *payload) use() bool {
	p.uses.Add(1)
	return !p.dead.Load()
}
