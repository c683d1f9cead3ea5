package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GoSim-25-26J-441/contagion-core/pkg/models"
)

// Registry holds the daemon's Prometheus metrics
type Registry struct {
	// Run lifecycle
	RunsTotal       *prometheus.CounterVec
	RunsActive      prometheus.Gauge
	RunDuration     prometheus.Histogram
	RoundsTotal     prometheus.Counter
	CentralityTotal prometheus.Counter

	// Population of the most recent round, by compartment
	Compartment *prometheus.GaugeVec

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	registry *prometheus.Registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the process-wide registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}
	r.initRunMetrics()
	r.initHTTPMetrics()
	return r
}

func (r *Registry) initRunMetrics() {
	r.RunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "contagion_runs_total",
			Help: "Simulation runs by terminal status",
		},
		[]string{"status"},
	)

	r.RunsActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "contagion_runs_active",
			Help: "Simulation runs currently executing",
		},
	)

	r.RunDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "contagion_run_duration_seconds",
			Help:    "Wall-clock duration of finished runs",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)

	r.RoundsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "contagion_rounds_total",
			Help: "SIR rounds executed across all runs",
		},
	)

	r.CentralityTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "contagion_centrality_computations_total",
			Help: "Centrality analyses completed",
		},
	)

	r.Compartment = promauto.With(r.registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "contagion_compartment_population",
			Help: "People per SIR compartment after the most recent round",
		},
		[]string{"state"},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "contagion_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		},
		[]string{"method", "route", "code"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "contagion_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// RunStarted marks a run as executing
func (r *Registry) RunStarted() {
	r.RunsActive.Inc()
}

// RunFinished records a run reaching a terminal status
func (r *Registry) RunFinished(status models.RunStatus, d time.Duration) {
	r.RunsActive.Dec()
	r.RunsTotal.WithLabelValues(string(status)).Inc()
	r.RunDuration.Observe(d.Seconds())
}

// ObserveRound records one SIR round
func (r *Registry) ObserveRound(counts models.RoundCounts) {
	r.RoundsTotal.Inc()
	r.Compartment.WithLabelValues(models.Susceptible.String()).Set(float64(counts.Susceptible))
	r.Compartment.WithLabelValues(models.Infected.String()).Set(float64(counts.Infected))
	r.Compartment.WithLabelValues(models.Recovered.String()).Set(float64(counts.Recovered))
}

// CentralityComputed counts a finished centrality analysis
func (r *Registry) CentralityComputed() {
	r.CentralityTotal.Inc()
}

// RecordHTTPRequest records a served HTTP request
func (r *Registry) RecordHTTPRequest(method, route string, code int, d time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
