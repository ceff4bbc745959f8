package intrusive

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnique_Release(t *testing.T) {
	rec := installRecorder(t)

	c := &circle{r: 1}
	u := NewUnique(c)
	require.False(t, u.IsNull())
	assert.Same(t, c, u.Get())

	moved := u.Move()
	assert.True(t, u.IsNull())
	u.Release()
	assert.Zero(t, c.drops.Load(), "releasing a moved-from handle does nothing")

	moved.Release()
	assert.EqualValues(t, 1, c.drops.Load())
	assert.True(t, moved.IsNull())
	assert.Equal(t, 1, rec.count(EventAdopted))
	assert.Equal(t, 1, rec.count(EventDestroyed))
}

func TestUnique_WithDeleter(t *testing.T) {
	var got *circle
	c := &circle{r: 1}
	u := NewUnique(c, WithDeleter(func(c *circle) { got = c }))
	u.Release()
	assert.Same(t, c, got)
	assert.Zero(t, c.drops.Load())
}

func TestFromUnique(t *testing.T) {
	c := &circle{r: 1}
	u := NewUnique(c)

	p := FromUnique(&u)
	assert.True(t, u.IsNull())
	assert.EqualValues(t, 1, p.RefCount())

	q := p.Share()
	p.Release()
	assert.Zero(t, c.drops.Load())
	q.Release()
	assert.EqualValues(t, 1, c.drops.Load())

	var null Unique[*circle]
	assert.True(t, FromUnique(&null).IsNull())
}

func TestDiscard_NeverAdopted(t *testing.T) {
	c := &circle{r: 1}
	Discard(c)
	assert.EqualValues(t, 1, c.drops.Load())

	var nilCircle *circle
	Discard(nilCircle)
}

func TestDiscard_SharedBails(t *testing.T) {
	logs := captureFatal(t)

	c := &circle{r: 1}
	p := New(c)
	q := p.Share()
	defer q.Release()
	defer p.Release()

	assert.PanicsWithValue(t, "destroying an object that is still shared", func() {
		Discard(c)
	})
	assert.Zero(t, c.drops.Load())

	entries := logs.FilterMessage("destroying an object that is still shared").All()
	require.Len(t, entries, 1)
	assert.EqualValues(t, 2, entries[0].ContextMap()["refs"])
	assert.Equal(t, "destroy", entries[0].ContextMap()["phase"])
}

func TestUnique_WeakObservers(t *testing.T) {
	c := &circle{r: 1}
	u := NewUnique(c)
	w := Weaken(c)
	defer w.Release()

	assert.True(t, w.IsAlive())
	u.Release()
	assert.False(t, w.IsAlive())
	_, ok := w.Lock()
	assert.False(t, ok)
}
