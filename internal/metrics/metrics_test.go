package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.Computations.Inc()
	m.CacheHits.Inc()
	m.CacheHits.Inc()
	m.ObserveRequest("GET", "/api/v1/groups/{groupID}/balances", 200, 15*time.Millisecond)

	if got := testutil.ToFloat64(m.CacheHits); got != 2 {
		t.Errorf("CacheHits = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/api/v1/groups/{groupID}/balances", "200")); got != 1 {
		t.Errorf("HTTPRequests = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "splitledger_computations_total 1") {
		t.Errorf("Metrics output missing computations counter:\n%s", body)
	}
}

func TestNew_IndependentRegistries(t *testing.T) {
	a, b := New(), New()
	a.Computations.Inc()
	if got := testutil.ToFloat64(b.Computations); got != 0 {
		t.Errorf("Second instance shares state: %v", got)
	}
}
