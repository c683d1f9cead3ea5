package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"

	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.RunsTotal == nil || r.RunsActive == nil || r.RoundsTotal == nil || r.Compartment == nil {
		t.Error("run metrics not initialized")
	}
	if r.HTTPRequestsTotal == nil || r.HTTPRequestDuration == nil {
		t.Error("HTTP metrics not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRunLifecycleMetrics(t *testing.T) {
	r := NewRegistry()

	r.RunStarted()
	r.RunStarted()
	r.RunFinished(models.RunStatusCompleted, 20*time.Millisecond)

	var metric dto.Metric
	if err := r.RunsActive.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if got := metric.GetGauge().GetValue(); got != 1 {
		t.Errorf("expected 1 active run, got %f", got)
	}

	counter, err := r.RunsTotal.GetMetricWithLabelValues("completed")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	metric = dto.Metric{}
	if err := counter.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 1 {
		t.Errorf("expected 1 completed run, got %f", got)
	}
}

func TestObserveRound(t *testing.T) {
	r := NewRegistry()
	r.ObserveRound(models.RoundCounts{Round: 1, Susceptible: 70, Infected: 20, Recovered: 10})
	r.ObserveRound(models.RoundCounts{Round: 2, Susceptible: 60, Infected: 25, Recovered: 15})

	var metric dto.Metric
	if err := r.RoundsTotal.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 2 {
		t.Errorf("expected 2 rounds, got %f", got)
	}

	gauge, err := r.Compartment.GetMetricWithLabelValues("infected")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	metric = dto.Metric{}
	if err := gauge.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if got := metric.GetGauge().GetValue(); got != 25 {
		t.Errorf("expected 25 infected, got %f", got)
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordHTTPRequest(http.MethodGet, "/v1/runs", http.StatusOK, 5*time.Millisecond)

	rr := httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `contagion_http_requests_total{code="200",method="GET",route="/v1/runs"} 1`) {
		t.Errorf("expected request counter in exposition, got:\n%s", body)
	}
}

func TestCentralityComputed(t *testing.T) {
	r := NewRegistry()
	r.CentralityComputed()

	var metric dto.Metric
	if err := r.CentralityTotal.Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if got := metric.GetCounter().GetValue(); got != 1 {
		t.Errorf("expected 1 computation, got %f", got)
	}
}
