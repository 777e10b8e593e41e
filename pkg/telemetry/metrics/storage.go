package metrics

import (
	"github.com/Hypothesize-Tech/costkatana-core-sub000/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// StorageMetrics tracks storage failures, retention and backend sync.
type StorageMetrics struct {
	errorsTotal       *prometheus.CounterVec
	prunedTotal       prometheus.Counter
	syncFailuresTotal prometheus.Counter
}

// NewStorageMetrics creates and registers storage metrics.
func NewStorageMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *StorageMetrics {
	sm := &StorageMetrics{
		errorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "storage_errors_total",
				Help:      "Total failed storage operations by backend and operation",
			},
			[]string{"backend", "operation"},
		),

		prunedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "retention_pruned_total",
				Help:      "Total usage records removed by retention",
			},
		),

		syncFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "backend_sync_failures_total",
				Help:      "Total failed syncs to the hosted backend",
			},
		),
	}

	registry.MustRegister(sm.errorsTotal, sm.prunedTotal, sm.syncFailuresTotal)

	return sm
}

// RecordError counts a failed operation.
func (sm *StorageMetrics) RecordError(backend, operation string) {
	sm.errorsTotal.WithLabelValues(backend, operation).Inc()
}

// RecordPruned adds count removed records.
func (sm *StorageMetrics) RecordPruned(count int) {
	sm.prunedTotal.Add(float64(count))
}

// RecordSyncFailure counts a failed backend sync.
func (sm *StorageMetrics) RecordSyncFailure() {
	sm.syncFailuresTotal.Inc()
}
