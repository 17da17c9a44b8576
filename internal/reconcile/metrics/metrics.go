package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RecordsFetched tracks total log records fetched from the source
	RecordsFetched = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconciler_records_fetched_total",
			Help: "Total number of log records fetched from the source",
		},
	)

	// RecordsApplied tracks records applied cleanly, by classification
	RecordsApplied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciler_records_applied_total",
			Help: "Total number of log records applied to the store",
		},
		[]string{"classification"},
	)

	// RecordErrors tracks per-record write errors by failing operation
	RecordErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciler_record_errors_total",
			Help: "Total number of per-record write errors",
		},
		[]string{"operation"},
	)

	// RecordsSkipped tracks records that could not be keyed to an order
	RecordsSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconciler_records_skipped_total",
			Help: "Total number of records skipped for missing identity",
		},
	)

	// RunsTotal tracks reconciliation runs by result
	RunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reconciler_runs_total",
			Help: "Total number of reconciliation runs",
		},
		[]string{"result"},
	)

	// RunDuration tracks end-to-end run duration
	RunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reconciler_run_duration_seconds",
			Help:    "Reconciliation run duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// DBConnectionPoolUsage tracks database pool saturation
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reconciler_db_connection_pool_usage",
			Help: "Database connection pool usage percentage",
		},
	)
)
