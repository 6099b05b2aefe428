package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes counters for the sync engine. A nil *Metrics is valid and
// records nothing, so library consumers without a Prometheus registry pay no
// cost.
type Metrics struct {
	syncCycles   *prometheus.CounterVec
	merges       prometheus.Counter
	historyTrims prometheus.Counter
}

// New registers the sync engine collectors on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		syncCycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "familyledger",
			Subsystem: "sync",
			Name:      "cycles_total",
			Help:      "Completed sync cycles by outcome.",
		}, []string{"result"}),
		merges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "familyledger",
			Subsystem: "sync",
			Name:      "merges_total",
			Help:      "Automatic merges performed for concurrent edits.",
		}),
		historyTrims: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "familyledger",
			Subsystem: "sync",
			Name:      "history_trims_total",
			Help:      "History trims applied by the size governor.",
		}),
	}
	reg.MustRegister(m.syncCycles, m.merges, m.historyTrims)
	return m
}

// CycleCompleted records a finished sync cycle with its outcome label.
func (m *Metrics) CycleCompleted(result string) {
	if m == nil {
		return
	}
	m.syncCycles.WithLabelValues(result).Inc()
}

// MergeResolved records an automatic merge.
func (m *Metrics) MergeResolved() {
	if m == nil {
		return
	}
	m.merges.Inc()
}

// TrimApplied records a size-governor trim.
func (m *Metrics) TrimApplied() {
	if m == nil {
		return
	}
	m.historyTrims.Inc()
}
