package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// counterValue sums every series of the named counter in the default registry.
func counterValue(t *testing.T, name string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestNewPrometheusCollector_Singleton(t *testing.T) {
	if NewPrometheusCollector() != NewPrometheusCollector() {
		t.Error("expected the same collector on every call")
	}
}

func TestPrometheusCollector_Records(t *testing.T) {
	c := NewPrometheusCollector()

	renders := counterValue(t, "epd2doc_renders_total")
	runs := counterValue(t, "epd2doc_runs_total")
	pages := counterValue(t, "epd2doc_pages_total")
	requests := counterValue(t, "epd2doc_http_requests_total")

	c.RecordRender(0.02)
	c.RecordRender(0.03)
	c.RecordRun("done", 4)
	c.RecordRun("failed", 0)
	c.RecordHTTPRequest("POST", "/api/convert", "200", 0.4)

	if got := counterValue(t, "epd2doc_renders_total") - renders; got != 2 {
		t.Errorf("expected 2 renders, got %g", got)
	}
	if got := counterValue(t, "epd2doc_runs_total") - runs; got != 2 {
		t.Errorf("expected 2 runs, got %g", got)
	}
	if got := counterValue(t, "epd2doc_pages_total") - pages; got != 4 {
		t.Errorf("expected 4 pages, got %g", got)
	}
	if got := counterValue(t, "epd2doc_http_requests_total") - requests; got != 1 {
		t.Errorf("expected 1 request, got %g", got)
	}
}
