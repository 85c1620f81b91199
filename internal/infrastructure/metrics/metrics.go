package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Record metrics
	RecordsProcessed *prometheus.CounterVec
	RecordsRejected  *prometheus.CounterVec
	ParseErrors      prometheus.Counter

	// Account metrics
	AccountsCreated prometheus.Counter
	AccountsLocked  prometheus.Gauge

	// Run metrics
	RunDuration   prometheus.Histogram
	ExportErrors  *prometheus.CounterVec
	ExportedTotal *prometheus.CounterVec
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		// Record metrics
		RecordsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txledger_records_processed_total",
				Help: "Total transaction records applied to accounts, by type and outcome",
			},
			[]string{"type", "outcome"},
		),
		RecordsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txledger_records_rejected_total",
				Help: "Total transaction records rejected, by reason",
			},
			[]string{"reason"},
		),
		ParseErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "txledger_parse_errors_total",
			Help: "Total input lines dropped because they could not be parsed",
		}),

		// Account metrics
		AccountsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "txledger_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		AccountsLocked: factory.NewGauge(prometheus.GaugeOpts{
			Name: "txledger_accounts_locked",
			Help: "Number of accounts locked by a chargeback",
		}),

		// Run metrics
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "txledger_run_duration_seconds",
			Help:    "Duration of a full ingestion run",
			Buckets: prometheus.DefBuckets,
		}),
		ExportErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txledger_export_errors_total",
				Help: "Total snapshot export failures by sink",
			},
			[]string{"sink"},
		),
		ExportedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "txledger_exported_snapshots_total",
				Help: "Total account snapshots written by sink",
			},
			[]string{"sink"},
		),
	}
}

// WriteTextfile dumps every metric gathered by g to path in the text
// exposition format, for pickup by node_exporter's textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}
