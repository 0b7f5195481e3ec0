package store

import (
	"github.com/prometheus/client_golang/prometheus"
)

type memoryViewMetrics struct {
	puts     prometheus.Counter
	deletes  prometheus.Counter
	dangling prometheus.Counter
	entities prometheus.Gauge
	inverted prometheus.Gauge
}

// newMemoryViewMetrics creates the counters of one view and registers them
// when a registerer is given. Unregistered metrics still count.
func newMemoryViewMetrics(reg prometheus.Registerer) (*memoryViewMetrics, error) {
	m := &memoryViewMetrics{
		puts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ftm",
			Subsystem: "memoryview",
			Name:      "puts_total",
			Help:      "Number of entities stored, including overwrites.",
		}),
		deletes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ftm",
			Subsystem: "memoryview",
			Name:      "deletes_total",
			Help:      "Number of entities removed.",
		}),
		dangling: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "ftm",
			Subsystem: "memoryview",
			Name:      "dangling_inverted_total",
			Help: `Inverted index entries dropped while answering Inverted because the
referencing entity was missing or no longer pointed at the queried id.`,
		}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ftm",
			Subsystem: "memoryview",
			Name:      "entities",
			Help:      "Number of entities currently stored.",
		}),
		inverted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ftm",
			Subsystem: "memoryview",
			Name:      "inverted_keys",
			Help:      "Number of referenced ids in the inverted index.",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.puts, m.deletes, m.dangling, m.entities, m.inverted} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
