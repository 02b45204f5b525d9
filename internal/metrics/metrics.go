// Package metrics holds the prometheus collectors shared by the runtime.
//
// Collectors are package-level and registered explicitly with Register, so
// tests and library users that never call Register pay only for the counters.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "tcademo"

// Actions counts reduced actions by origin (external, effect, follow-up).
var Actions = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "store",
	Name:      "actions",
}, []string{"origin"})

// DroppedActions counts actions discarded by the store, by reason.
var DroppedActions = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "store",
	Name:      "dropped_actions",
}, []string{"reason"})

// ReduceDuration observes the time spent inside one reducer call.
var ReduceDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "store",
	Name:      "reduce_duration_seconds",
	Buckets:   []float64{.000001, .00001, .0001, .001, .01, .1},
}, []string{"origin"})

// Subscribers reports the number of live store subscriptions.
var Subscribers = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "store",
	Name:      "subscribers",
})

// Tasks counts effect task lifecycle events: started, superseded, cancelled, finished, failed.
var Tasks = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "effect",
	Name:      "tasks",
}, []string{"event"})

// ActiveTasks reports running effect tasks.
var ActiveTasks = prometheus.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "effect",
	Name:      "active_tasks",
})

// JournalWrites counts journal inserts by result.
var JournalWrites = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "journal",
	Name:      "writes",
}, []string{"result"})

// All returns every collector in this package.
func All() []prometheus.Collector {
	return []prometheus.Collector{
		Actions,
		DroppedActions,
		ReduceDuration,
		Subscribers,
		Tasks,
		ActiveTasks,
		JournalWrites,
	}
}

// Register registers every collector with r. Collectors already registered
// with r are ignored, so Register may be called more than once.
func Register(r prometheus.Registerer) error {
	for _, c := range All() {
		if err := r.Register(c); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				continue
			}
			return err
		}
	}
	return nil
}
