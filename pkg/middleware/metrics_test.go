package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetricsCountsRequests(t *testing.T) {
	registry := prometheus.NewRegistry()
	handler := Metrics(MetricsConfig{
		Registerer: registry,
		Namespace:  "trellis",
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 3; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/items", nil))
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}

	var found bool
	for _, mf := range families {
		if mf.GetName() != "trellis_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			labels := map[string]string{}
			for _, lp := range m.GetLabel() {
				labels[lp.GetName()] = lp.GetValue()
			}
			if labels["method"] == "POST" && labels["path"] == "/items" && labels["status"] == "201" {
				found = true
				if got := m.GetCounter().GetValue(); got != 3 {
					t.Errorf("Expected counter value 3, got %v", got)
				}
			}
		}
	}
	if !found {
		t.Error("Expected a trellis_requests_total series for POST /items 201")
	}

	var histogramSeen bool
	for _, mf := range families {
		if mf.GetName() == "trellis_request_duration_seconds" {
			histogramSeen = true
		}
	}
	if !histogramSeen {
		t.Error("Expected the latency histogram to be registered")
	}
}
