package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics records the outcomes of stock adjustments.
type LedgerMetrics struct {
	adjustments *prometheus.CounterVec
	conflicts   prometheus.Counter
	syncsQueued prometheus.Counter
	duration    prometheus.Histogram
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	adjustments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_adjustments_total",
		Help: "Stock adjustments by action and outcome.",
	}, []string{"action", "outcome"})
	conflicts := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_quantity_conflicts_total",
		Help: "Compare-and-set retries caused by concurrent quantity writes.",
	})
	syncsQueued := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_assignment_syncs_queued_total",
		Help: "Assignment quantity updates deferred to the reconciler.",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_adjustment_duration_seconds",
		Help:    "Duration of ledger adjustments in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(adjustments, conflicts, syncsQueued, duration)
	return &LedgerMetrics{
		adjustments: adjustments,
		conflicts:   conflicts,
		syncsQueued: syncsQueued,
		duration:    duration,
	}
}

// ObserveAdjustment records one finished adjustment.
func (m *LedgerMetrics) ObserveAdjustment(action, outcome string, elapsed time.Duration) {
	if m == nil || m.adjustments == nil {
		return
	}
	m.adjustments.WithLabelValues(normalizeLabel(action), normalizeLabel(outcome)).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// IncConflict counts one CAS retry.
func (m *LedgerMetrics) IncConflict() {
	if m == nil || m.conflicts == nil {
		return
	}
	m.conflicts.Inc()
}

// IncSyncQueued counts one deferred assignment sync.
func (m *LedgerMetrics) IncSyncQueued() {
	if m == nil || m.syncsQueued == nil {
		return
	}
	m.syncsQueued.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
