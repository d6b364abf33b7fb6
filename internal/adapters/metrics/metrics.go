package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/atvirokodosprendimai/mutanox/internal/core/domain"
)

// Metrics holds the gateway collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	RequestLatency  *prometheus.HistogramVec
	Requests        *prometheus.CounterVec
	AuthFailures    *prometheus.CounterVec
	ProviderLatency *prometheus.HistogramVec
	Queries         *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		RequestLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mutanox_http_request_duration_seconds",
			Help:    "Latency of HTTP requests in seconds, labeled by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
		Requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mutanox_http_requests_total",
			Help: "Total number of HTTP requests, labeled by route and status",
		}, []string{"route", "method", "status"}),
		AuthFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mutanox_auth_failures_total",
			Help: "Total number of rejected API keys, labeled by reason",
		}, []string{"reason"}),
		// Provider latency includes time spent waiting on the rate limiter.
		ProviderLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mutanox_provider_request_duration_seconds",
			Help:    "Latency of upstream lookups in seconds, labeled by kind and outcome",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
		}, []string{"kind", "outcome"}),
		Queries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "mutanox_queries_total",
			Help: "Total number of dispatched queries, labeled by kind and result",
		}, []string{"kind", "result"}),
	}
}

func (m *Metrics) ObserveRequest(route, method string, status int, elapsed time.Duration) {
	m.RequestLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
	m.Requests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

func (m *Metrics) IncAuthFailure(reason string) {
	m.AuthFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveProvider(kind domain.QueryKind, outcome string, elapsed time.Duration) {
	m.ProviderLatency.WithLabelValues(string(kind), outcome).Observe(elapsed.Seconds())
}

func (m *Metrics) IncQuery(kind domain.QueryKind, success bool) {
	result := "error"
	if success {
		result = "success"
	}
	m.Queries.WithLabelValues(string(kind), result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
