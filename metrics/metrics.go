package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/wippyai/refkit/intrusive"
	"github.com/wippyai/refkit/once"
	"github.com/wippyai/refkit/resource"
)

const (
	refkitNamespaceName = "refkit"
	objectSubsystemName = "object"
	viewSubsystemName   = "weak_view"
	tableSubsystemName  = "table"
)

var (
	// ObjectsAdopted counts objects handed to their first handle
	ObjectsAdopted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: refkitNamespaceName,
			Subsystem: objectSubsystemName,
			Name:      "adopted_total",
			Help:      "Total number of objects handed to their first owning handle.",
		},
	)

	// ObjectsDestroyed counts objects whose deleter ran
	ObjectsDestroyed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: refkitNamespaceName,
			Subsystem: objectSubsystemName,
			Name:      "destroyed_total",
			Help:      "Total number of objects destroyed after their last strong owner let go.",
		},
	)

	// ObjectsLive discloses the number of adopted objects not yet destroyed
	ObjectsLive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: refkitNamespaceName,
			Subsystem: objectSubsystemName,
			Name:      "live",
			Help:      "Number of adopted objects that have not been destroyed.",
		},
	)

	// ViewEvents counts weak view publications, discarded race losers and frees
	ViewEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: refkitNamespaceName,
			Subsystem: viewSubsystemName,
			Name:      "events_total",
			Help:      "Total number of weak view lifecycle events by kind.",
		},
		[]string{"event"},
	)

	// ViewsLive discloses the number of published views not yet freed
	ViewsLive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: refkitNamespaceName,
			Subsystem: viewSubsystemName,
			Name:      "live",
			Help:      "Number of published weak views that have not been freed.",
		},
	)

	// LockAttempts counts weak to strong promotions by outcome
	LockAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: refkitNamespaceName,
			Subsystem: viewSubsystemName,
			Name:      "lock_attempts_total",
			Help:      "Total number of weak handle promotions by outcome.",
		},
		[]string{"outcome"},
	)

	// TableEvents counts handle table operations
	TableEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: refkitNamespaceName,
			Subsystem: tableSubsystemName,
			Name:      "events_total",
			Help:      "Total number of handle table events by table and kind.",
		},
		[]string{"table", "event"},
	)

	// TableHandles discloses the number of occupied handles per table
	TableHandles = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: refkitNamespaceName,
			Subsystem: tableSubsystemName,
			Name:      "handles",
			Help:      "Number of occupied handles per table.",
		},
		[]string{"table"},
	)
)

const (
	outcomeLocked = "locked"
	outcomeFailed = "failed"
)

// RegisterMetrics allows to register refkit metrics with a given prometheus registerer
func RegisterMetrics(reg prometheus.Registerer) {
	reg.MustRegister(ObjectsAdopted)
	reg.MustRegister(ObjectsDestroyed)
	reg.MustRegister(ObjectsLive)
	reg.MustRegister(ViewEvents)
	reg.MustRegister(ViewsLive)
	reg.MustRegister(LockAttempts)
	reg.MustRegister(TableEvents)
	reg.MustRegister(TableHandles)
}

var enabled once.Flag

// Enable registers the metrics with reg and installs a Recorder as the
// process-wide ownership observer. Only the first call has an effect; it
// reports whether this call did the work.
func Enable(reg prometheus.Registerer) bool {
	return once.Call(&enabled, func() {
		RegisterMetrics(reg)
		intrusive.SetObserver(Recorder{})
	})
}

// Recorder feeds ownership and table events into the package metrics.
// It implements intrusive.Observer and resource.Observer.
type Recorder struct{}

var (
	_ intrusive.Observer = Recorder{}
	_ resource.Observer  = Recorder{}
)

// OnOwnershipEvent implements intrusive.Observer.
func (Recorder) OnOwnershipEvent(e intrusive.Event) {
	switch e.Type {
	case intrusive.EventAdopted:
		ObjectsAdopted.Inc()
		ObjectsLive.Inc()
	case intrusive.EventDestroyed:
		ObjectsDestroyed.Inc()
		ObjectsLive.Dec()
	case intrusive.EventViewPublished:
		ViewEvents.WithLabelValues(e.Type.String()).Inc()
		ViewsLive.Inc()
	case intrusive.EventViewDiscarded:
		ViewEvents.WithLabelValues(e.Type.String()).Inc()
	case intrusive.EventViewFreed:
		ViewEvents.WithLabelValues(e.Type.String()).Inc()
		ViewsLive.Dec()
	case intrusive.EventLocked:
		LockAttempts.WithLabelValues(outcomeLocked).Inc()
	case intrusive.EventLockFailed:
		LockAttempts.WithLabelValues(outcomeFailed).Inc()
	}
}

// OnResourceEvent implements resource.Observer.
func (Recorder) OnResourceEvent(e resource.Event) {
	TableEvents.WithLabelValues(e.Table, e.Type.String()).Inc()
	switch e.Type {
	case resource.EventInserted:
		TableHandles.WithLabelValues(e.Table).Inc()
	case resource.EventRemoved:
		TableHandles.WithLabelValues(e.Table).Dec()
	}
}
