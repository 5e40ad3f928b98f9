package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the transaction engine.
type Metrics struct {
	// --- Core processing ---
	RecordsApplied *prometheus.CounterVec
	RecordsIgnored *prometheus.CounterVec
	ApplyDuration  *prometheus.HistogramVec
	AccountsOpen   prometheus.Gauge
	AccountsLocked prometheus.Gauge
	HistoryEntries prometheus.Gauge

	// --- Streaming shell ---
	StreamRecords *prometheus.CounterVec
	PublishDrops  prometheus.Counter
	DedupSize     prometheus.Gauge
}

// NewMetrics creates and registers all metrics on the default
// registry. Call it once per process; the engine accepts nil metrics
// for unit tests.
func NewMetrics() *Metrics {
	latencyBuckets := []float64{
		0.000001, 0.000005, 0.00001, 0.000025, 0.00005,
		0.0001, 0.00025, 0.0005, 0.001, 0.002, 0.005, 0.01,
	}

	return &Metrics{
		RecordsApplied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "txn_records_applied_total",
			Help: "Records that mutated account state",
		}, []string{"kind"}),

		RecordsIgnored: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "txn_records_ignored_total",
			Help: "Records dropped by a precondition (locked account, insufficient funds, stale reference)",
		}, []string{"kind", "reason"}),

		ApplyDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "txn_record_apply_duration_seconds",
			Help:    "Time to apply a single record",
			Buckets: latencyBuckets,
		}, []string{"kind"}),

		AccountsOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "txn_accounts_open",
			Help: "Accounts created so far",
		}),

		AccountsLocked: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "txn_accounts_locked",
			Help: "Accounts frozen by a chargeback",
		}),

		HistoryEntries: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "txn_history_entries",
			Help: "Deposits cached for dispute resolution",
		}),

		StreamRecords: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "txn_stream_records_total",
			Help: "Records received on the stream ingest path",
		}, []string{"status"}),

		PublishDrops: promauto.NewCounter(prometheus.CounterOpts{
			Name: "txn_publish_drops_total",
			Help: "Account updates dropped due to a full publish channel",
		}),

		DedupSize: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "txn_dedup_lru_size",
			Help: "Current idempotency LRU occupancy",
		}),
	}
}
