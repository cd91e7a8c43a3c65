package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	RunResultCompleted       = "completed"
	RunResultPartiallyFailed = "partially_failed"
	RunResultAborted         = "aborted"
	RunResultSkipped         = "skipped"
)

// CollectorMetrics captures collection run health signals.
type CollectorMetrics struct {
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
	processed   *prometheus.CounterVec
	fallouts    *prometheus.CounterVec
	lockSkips   prometheus.Counter
}

var (
	collectorOnce    sync.Once
	collectorMetrics *CollectorMetrics
)

// Collector returns the process-wide collector metrics, registering them on
// first use.
func Collector() *CollectorMetrics {
	collectorOnce.Do(func() {
		collectorMetrics = newCollectorMetrics(prometheus.DefaultRegisterer)
	})
	return collectorMetrics
}

func newCollectorMetrics(reg prometheus.Registerer) *CollectorMetrics {
	m := &CollectorMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collector_runs_total",
			Help: "Scheduled collection runs by result.",
		}, []string{"result"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "collector_run_duration_seconds",
			Help:    "Duration of scheduled collection runs.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}),
		processed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collector_events_processed_total",
			Help: "Events forwarded to the invoicing sink by source family.",
		}, []string{"family_id"}),
		fallouts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "collector_fallouts_total",
			Help: "Events that failed processing by source family.",
		}, []string{"family_id"}),
		lockSkips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "collector_lock_skips_total",
			Help: "Cadence ticks skipped because another instance held the lock.",
		}),
	}

	reg.MustRegister(
		m.runs,
		m.runDuration,
		m.processed,
		m.fallouts,
		m.lockSkips,
	)
	return m
}

func (m *CollectorMetrics) IncRun(result string) {
	m.runs.WithLabelValues(result).Inc()
}

func (m *CollectorMetrics) ObserveRunDuration(d time.Duration) {
	m.runDuration.Observe(d.Seconds())
}

func (m *CollectorMetrics) IncProcessed(familyID string) {
	m.processed.WithLabelValues(familyID).Inc()
}

func (m *CollectorMetrics) IncFallout(familyID string) {
	m.fallouts.WithLabelValues(familyID).Inc()
}

func (m *CollectorMetrics) IncLockSkip() {
	m.lockSkips.Inc()
}
