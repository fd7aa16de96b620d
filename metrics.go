package ttlcache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics fed by cache events.
type Metrics struct {
	Puts    prometheus.Counter
	Hits    prometheus.Counter
	Misses  prometheus.Counter
	Deletes prometheus.Counter
	Drops   prometheus.Counter

	// Entries follows puts minus deletes and drops.
	Entries prometheus.Gauge
}

// NewMetrics creates metrics with the given namespace and registers them
// with reg. A nil reg leaves them unregistered.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Puts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "puts_total",
			Help:      "Total number of entries put into the cache",
		}),
		Hits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of reads that found a live entry",
		}),
		Misses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of reads that found no live entry",
		}),
		Deletes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "deletes_total",
			Help:      "Total number of entries removed by expiry, delete or clear",
		}),
		Drops: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "drops_total",
			Help:      "Total number of entries evicted to honor the capacity",
		}),
		Entries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "entries",
			Help:      "Current number of entries in the cache",
		}),
	}
}

// Observe subscribes the metrics to o. The returned func detaches them again.
func (m *Metrics) Observe(o Observable) (detach func()) {
	subs := []Subscription{
		o.Subscribe(EventPut, func(Event) {
			m.Puts.Inc()
			m.Entries.Inc()
		}),
		o.Subscribe(EventHit, func(Event) { m.Hits.Inc() }),
		o.Subscribe(EventMiss, func(Event) { m.Misses.Inc() }),
		o.Subscribe(EventDel, func(Event) {
			m.Deletes.Inc()
			m.Entries.Dec()
		}),
		o.Subscribe(EventDrop, func(Event) {
			m.Drops.Inc()
			m.Entries.Dec()
		}),
	}

	return func() {
		for _, s := range subs {
			o.Unsubscribe(s)
		}
	}
}
