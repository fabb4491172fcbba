// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Ingestion metrics
	RowsIngested  prometheus.Counter
	RowsRejected  *prometheus.CounterVec
	BatchesStored prometheus.Counter

	// Aggregation metrics
	RowsFiltered        prometheus.Counter
	AggregationsTotal   *prometheus.CounterVec
	ReportsGenerated    prometheus.Counter
	AggregationDuration *prometheus.HistogramVec

	// Feed metrics
	FeedQuotesReceived prometheus.Counter
	FeedReconnects     prometheus.Counter
	FeedDecodeErrors   prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// Health metrics
	LastSuccessfulIngestion prometheus.Gauge
	LastSuccessfulReport    prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "dsex_insights"
	}

	return &Metrics{
		RowsIngested: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_ingested_total",
			Help:      "Total number of price rows written to storage",
		}),
		RowsRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "rows_rejected_total",
			Help:      "Total number of price rows rejected by reason",
		}, []string{"reason"}),
		BatchesStored: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "ingestion",
			Name:      "batches_stored_total",
			Help:      "Total number of bulk insert batches committed",
		}),

		RowsFiltered: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "rows_filtered_total",
			Help:      "Total number of rows dropped by the return filter",
		}),
		AggregationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "runs_total",
			Help:      "Total number of aggregation runs by kind",
		}, []string{"kind"}),
		ReportsGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),
		AggregationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "aggregation",
			Name:      "duration_seconds",
			Help:      "Aggregation run duration by kind",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),

		FeedQuotesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "quotes_received_total",
			Help:      "Total number of quote frames received from the feed",
		}),
		FeedReconnects: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "reconnects_total",
			Help:      "Total number of feed reconnect attempts",
		}),
		FeedDecodeErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "feed",
			Name:      "decode_errors_total",
			Help:      "Total number of quote frames that failed to decode",
		}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration by database and operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		LastSuccessfulIngestion: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_ingestion_timestamp",
			Help:      "Unix timestamp of last successful ingestion batch",
		}),
		LastSuccessfulReport: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_report_timestamp",
			Help:      "Unix timestamp of last successful report run",
		}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordRowsIngested adds to the ingested rows counter.
func RecordRowsIngested(n int) {
	DefaultMetrics.RowsIngested.Add(float64(n))
	DefaultMetrics.BatchesStored.Inc()
}

// RecordRowRejected records a rejected row with its reason.
func RecordRowRejected(reason string) {
	DefaultMetrics.RowsRejected.WithLabelValues(reason).Inc()
}

// RecordRowsFiltered adds to the filter drop counter.
func RecordRowsFiltered(n int) {
	DefaultMetrics.RowsFiltered.Add(float64(n))
}

// RecordAggregation records an aggregation run.
func RecordAggregation(kind string, seconds float64) {
	DefaultMetrics.AggregationsTotal.WithLabelValues(kind).Inc()
	DefaultMetrics.AggregationDuration.WithLabelValues(kind).Observe(seconds)
}

// RecordReportGenerated increments the reports counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}

// RecordFeedQuote increments the received quote counter.
func RecordFeedQuote() {
	DefaultMetrics.FeedQuotesReceived.Inc()
}

// RecordFeedReconnect increments the reconnect counter.
func RecordFeedReconnect() {
	DefaultMetrics.FeedReconnects.Inc()
}

// RecordFeedDecodeError increments the decode error counter.
func RecordFeedDecodeError() {
	DefaultMetrics.FeedDecodeErrors.Inc()
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
