package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the heat map backend.
type Metrics struct {
	ColumnsBuilt  *prometheus.CounterVec
	ColumnsFilled *prometheus.CounterVec
	BuildFailures *prometheus.CounterVec
	RowsSaved     *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	RateLimited   prometheus.Counter
	HTTPRequests  *prometheus.CounterVec
}

// NewMetrics creates and registers all metrics with the provided registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	columnsBuilt := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "heatmap_columns_built_total",
		Help: "Columns densified from stored rows",
	}, []string{"metric"})

	columnsFilled := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "heatmap_columns_filled_total",
		Help: "Default columns inserted for rows missing from storage",
	}, []string{"metric"})

	buildFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "heatmap_build_failures_total",
		Help: "Heat map builds aborted by bad row data",
	}, []string{"metric", "reason"})

	rowsSaved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "heatmap_rows_saved_total",
		Help: "Rows written to storage",
	}, []string{"metric"})

	queryDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "heatmap_query_duration_seconds",
		Help:    "Time spent reading and building one heat map",
		Buckets: prometheus.DefBuckets,
	}, []string{"metric"})

	rateLimited := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "heatmap_http_rate_limited_total",
		Help: "Requests rejected by the rate limiter",
	})

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "heatmap_http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"method", "route", "code"})

	reg.MustRegister(columnsBuilt, columnsFilled, buildFailures, rowsSaved, queryDuration, rateLimited, httpRequests)

	return &Metrics{
		ColumnsBuilt:  columnsBuilt,
		ColumnsFilled: columnsFilled,
		BuildFailures: buildFailures,
		RowsSaved:     rowsSaved,
		QueryDuration: queryDuration,
		RateLimited:   rateLimited,
		HTTPRequests:  httpRequests,
	}
}
