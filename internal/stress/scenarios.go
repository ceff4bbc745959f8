package stress

import (
	"context"
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/wippyai/refkit/intrusive"
	"github.com/wippyai/refkit/resource"
)

// scenario runs the runner's configured number of rounds and accumulates
// its outcome into res.
type scenario func(ctx context.Context, r *Runner, res *Result) error

const (
	ScenarioLockVersusDrop = "lock-vs-drop"
	ScenarioWeakCount      = "weak-count"
	ScenarioTableChurn     = "table-churn"
)

var scenarios = map[string]scenario{
	ScenarioLockVersusDrop: lockVersusDrop,
	ScenarioWeakCount:      weakCount,
	ScenarioTableChurn:     tableChurn,
}

// Scenarios returns the names of all known scenarios in a stable order.
func Scenarios() []string {
	names := make([]string, 0, len(scenarios))
	for name := range scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// tally collects counts from concurrent workers within one round.
type tally struct {
	locked     atomic.Int64
	lockFailed atomic.Int64
	destroyed  atomic.Int64
	violations atomic.Int64
}

func (t *tally) addTo(res *Result) {
	res.Runs++
	res.Locked += t.locked.Load()
	res.LockFailed += t.lockFailed.Load()
	res.Destroyed += t.destroyed.Load()
	res.Violations += t.violations.Load()
}

// lockVersusDrop races weak promotions against the release of the only
// strong owner. Every successful promotion must see a live object, and the
// object must be destroyed exactly once.
func lockVersusDrop(ctx context.Context, r *Runner, res *Result) error {
	cfg := r.cfg
	for run := 0; run < cfg.Runs; run++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var t tally
		obj := newPayload(func() { t.destroyed.Add(1) })
		owner := intrusive.New(obj)

		weaks := make([]intrusive.Weak[*payload], cfg.Workers)
		for i := range weaks {
			weaks[i] = owner.Weaken()
		}

		start := make(chan struct{})
		g, gctx := errgroup.WithContext(ctx)
		for i := range weaks {
			w := weaks[i]
			g.Go(func() error {
				<-start
				for j := 0; j < cfg.Attempts; j++ {
					if err := gctx.Err(); err != nil {
						return err
					}
					p, ok := w.Lock()
					if !ok {
						t.lockFailed.Add(1)
						return nil
					}
					t.locked.Add(1)
					if !p.Get().use() {
						t.violations.Add(1)
					}
					runtime.Gosched()
					if !p.Get().use() {
						t.violations.Add(1)
					}
					p.Release()
				}
				return nil
			})
		}

		close(start)
		runtime.Gosched()
		owner.Release()
		err := g.Wait()

		if obj.drops.Load() != 1 {
			t.violations.Add(1)
		}
		for i := range weaks {
			if weaks[i].IsAlive() {
				t.violations.Add(1)
			}
			weaks[i].Release()
		}
		t.addTo(res)
		if err != nil {
			return err
		}
	}
	return nil
}

// weakCount interleaves weak handle creation, cloning and release from many
// goroutines, then checks that the reported weak count matches the handles
// still held, before and after the owner is gone.
func weakCount(ctx context.Context, r *Runner, res *Result) error {
	cfg := r.cfg
	for run := 0; run < cfg.Runs; run++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var t tally
		obj := newPayload(func() { t.destroyed.Add(1) })
		owner := intrusive.New(obj)

		kept := make([][]intrusive.Weak[*payload], cfg.Workers)
		g, gctx := errgroup.WithContext(ctx)
		for i := range kept {
			g.Go(func() error {
				for j := 0; j < cfg.Attempts; j++ {
					if err := gctx.Err(); err != nil {
						return err
					}
					w := intrusive.Weaken(obj)
					if j%4 == 0 {
						kept[i] = append(kept[i], w)
						continue
					}
					c := w.Clone()
					w.Release()
					c.Release()
				}
				return nil
			})
		}
		err := g.Wait()

		var want int64
		for _, ks := range kept {
			want += int64(len(ks))
		}
		if owner.WeakCount() != want {
			t.violations.Add(1)
		}
		owner.Release()
		for _, ks := range kept {
			if len(ks) > 0 && ks[0].WeakCount() != want {
				t.violations.Add(1)
				break
			}
		}
		if obj.drops.Load() != 1 {
			t.violations.Add(1)
		}
		for _, ks := range kept {
			for i := range ks {
				ks[i].Release()
			}
		}
		t.addTo(res)
		if err != nil {
			return err
		}
	}
	return nil
}

// tableChurn drives a shared handle table from many goroutines: insert,
// share, borrow and remove, checking that a removed object is destroyed once
// and its borrowed handles stop locking.
func tableChurn(ctx context.Context, r *Runner, res *Result) error {
	cfg := r.cfg
	table := resource.NewTable[*payload](resource.Options{Name: ScenarioTableChurn, Capacity: cfg.Workers})
	defer table.Close()
	for _, o := range r.tableObservers {
		table.Subscribe(o)
	}

	for run := 0; run < cfg.Runs; run++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var t tally
		g, gctx := errgroup.WithContext(ctx)
		for i := 0; i < cfg.Workers; i++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				obj := newPayload(func() { t.destroyed.Add(1) })
				p := intrusive.New(obj)
				h, err := table.Insert(&p)
				if err != nil {
					p.Release()
					return err
				}

				shared, ok := table.Get(h)
				if !ok || !shared.Get().use() {
					t.violations.Add(1)
				}
				shared.Release()

				w, ok := table.Borrow(h)
				if !ok {
					t.violations.Add(1)
				}
				if locked, ok := w.Lock(); ok {
					t.locked.Add(1)
					if !locked.Get().use() {
						t.violations.Add(1)
					}
					locked.Release()
				}

				if !table.Remove(h) {
					t.violations.Add(1)
				}
				if late, ok := w.Lock(); ok {
					t.violations.Add(1)
					late.Release()
				} else {
					t.lockFailed.Add(1)
				}
				w.Release()

				if obj.drops.Load() != 1 {
					t.violations.Add(1)
				}
				return nil
			})
		}
		err := g.Wait()
		t.addTo(res)
		if err != nil {
			return err
		}
	}

	if table.Len() != 0 {
		res.Violations++
	}
	return nil
}
