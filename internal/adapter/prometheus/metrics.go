package prometheus

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusAdapter implements ports.MetricsPort. Collectors self-register on
// the default registry served at /metrics.
type PrometheusAdapter struct {
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	importRuns      prometheus.Counter
	importedRecords *prometheus.CounterVec
}

func NewPrometheusAdapter() *PrometheusAdapter {
	return &PrometheusAdapter{
		httpRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "strats_http_requests_total",
			Help: "HTTP requests by method, path and status code.",
		}, []string{"method", "path", "status"}),
		httpDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "strats_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		importRuns: promauto.NewCounter(prometheus.CounterOpts{
			Name: "strats_import_runs_total",
			Help: "Completed import runs.",
		}),
		importedRecords: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "strats_import_records_total",
			Help: "Import outcomes by kind.",
		}, []string{"kind"}),
	}
}

func (p *PrometheusAdapter) RecordHTTPRequest(method, path string, status int, start time.Time) {
	p.httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
}

func (p *PrometheusAdapter) RecordImportRun(created, updated, skipped, gearCreated int) {
	p.importRuns.Inc()
	p.importedRecords.WithLabelValues("created").Add(float64(created))
	p.importedRecords.WithLabelValues("updated").Add(float64(updated))
	p.importedRecords.WithLabelValues("skipped").Add(float64(skipped))
	p.importedRecords.WithLabelValues("gear_created").Add(float64(gearCreated))
}
