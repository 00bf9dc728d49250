package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// ingestion pipeline and the live store.
type Metrics struct {
	// CSV plotting pass.
	RowsTokenized    prometheus.Counter
	RecordsMapped    prometheus.Counter
	RowsDropped      prometheus.Counter
	PlotPassDuration prometheus.Histogram

	// Geocoding.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={forward,reverse}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: method={forward,reverse}, result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={forward,reverse}

	// Live store.
	SnapshotsApplied   prometheus.Counter
	RecordsInStore     prometheus.Gauge
	ProjectionDuration prometheus.Histogram

	// Dashboard API.
	Submissions      *prometheus.CounterVec // labels: outcome={accepted,rejected,failed}
	ReportsGenerated prometheus.Counter
	BulkClears       prometheus.Counter
}

// NewMetrics creates and registers all service metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RowsTokenized,
		m.RecordsMapped,
		m.RowsDropped,
		m.PlotPassDuration,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.SnapshotsApplied,
		m.RecordsInStore,
		m.ProjectionDuration,
		m.Submissions,
		m.ReportsGenerated,
		m.BulkClears,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsTokenized: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_board",
			Name:      "csv_rows_tokenized_total",
			Help:      "Total CSV rows produced by the tokenizer, header included.",
		}),
		RecordsMapped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_board",
			Name:      "csv_records_mapped_total",
			Help:      "Total incident records produced by the row mapper.",
		}),
		RowsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_board",
			Name:      "csv_rows_dropped_total",
			Help:      "Rows dropped for lacking a resolvable address.",
		}),
		PlotPassDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_board",
			Name:      "plot_pass_duration_seconds",
			Help:      "Duration of a complete fetch-map-geocode-load pass.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120},
		}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_board",
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_board",
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "incident_board",
			Name:      "geocode_api_duration_seconds",
			Help:      "Geocoding API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		SnapshotsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_board",
			Name:      "snapshots_applied_total",
			Help:      "Full record-set replacements applied to the store.",
		}),
		RecordsInStore: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "incident_board",
			Name:      "records_in_store",
			Help:      "Records currently held by the store, unfiltered.",
		}),
		ProjectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "incident_board",
			Name:      "projection_duration_seconds",
			Help:      "Duration of one filter-sort-project cycle.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "incident_board",
			Name:      "submissions_total",
			Help:      "Occurrence form submissions by outcome.",
		}, []string{"outcome"}),
		ReportsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_board",
			Name:      "reports_generated_total",
			Help:      "PDF reports rendered.",
		}),
		BulkClears: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "incident_board",
			Name:      "bulk_clears_total",
			Help:      "Confirmed full-collection clears.",
		}),
	}
}
