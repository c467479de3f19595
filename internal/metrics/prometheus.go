package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusOnce     sync.Once
	prometheusInstance *PrometheusCollector
)

// PrometheusCollector provides Prometheus metrics for conversions.
type PrometheusCollector struct {
	// Rendering metrics
	rendersTotal  prometheus.Counter
	renderSeconds prometheus.Histogram

	// Run metrics
	runsTotal  *prometheus.CounterVec
	pagesTotal prometheus.Counter

	// HTTP metrics
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewPrometheusCollector creates the process-wide collector (singleton).
func NewPrometheusCollector() *PrometheusCollector {
	prometheusOnce.Do(func() {
		prometheusInstance = &PrometheusCollector{
			rendersTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "epd2doc_renders_total",
					Help: "Total number of board diagrams rendered",
				},
			),
			renderSeconds: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "epd2doc_render_duration_seconds",
					Help:    "Duration of a single board render in seconds",
					Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
				},
			),

			runsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "epd2doc_runs_total",
					Help: "Total number of conversion runs by final status",
				},
				[]string{"status"},
			),
			pagesTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "epd2doc_pages_total",
					Help: "Total number of position pages emitted",
				},
			),

			httpRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "epd2doc_http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			httpRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "epd2doc_http_request_duration_seconds",
					Help:    "Duration of HTTP requests in seconds",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "path"},
			),
		}
	})
	return prometheusInstance
}

// RecordRender records one successful board render.
func (p *PrometheusCollector) RecordRender(seconds float64) {
	p.rendersTotal.Inc()
	p.renderSeconds.Observe(seconds)
}

// RecordRun records a finished run and the pages it produced.
func (p *PrometheusCollector) RecordRun(status string, pages int) {
	p.runsTotal.WithLabelValues(status).Inc()
	if pages > 0 {
		p.pagesTotal.Add(float64(pages))
	}
}

// RecordHTTPRequest records an HTTP request.
func (p *PrometheusCollector) RecordHTTPRequest(method, path, status string, duration float64) {
	p.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	p.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}
