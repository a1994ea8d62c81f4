package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns the Prometheus collectors of one process. Each instance has its
// own registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry
	upstream *prometheus.HistogramVec
	inbound  *prometheus.HistogramVec
	limited  prometheus.Counter
	dispatch *prometheus.CounterVec
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		upstream: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intakeq_upstream_request_duration_seconds",
			Help:    "Duration of requests sent to the IntakeQ API.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"method", "code"}),
		inbound: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "intakeq_http_request_duration_seconds",
			Help:    "Duration of requests served by the HTTP facade.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "code"}),
		limited: factory.NewCounter(prometheus.CounterOpts{
			Name: "intakeq_http_rate_limited_total",
			Help: "Requests rejected by the inbound rate limiter.",
		}),
		dispatch: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "intakeq_dispatch_total",
			Help: "Operations dispatched, by operation and outcome.",
		}, []string{"operation", "outcome"}),
	}
}

// ObserveUpstream records one upstream call. code is 0 when no response was
// received.
func (m *Metrics) ObserveUpstream(method string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.upstream.WithLabelValues(method, codeLabel(code)).Observe(d.Seconds())
}

// ObserveInbound records one request served by the HTTP facade.
func (m *Metrics) ObserveInbound(route string, code int, d time.Duration) {
	if m == nil {
		return
	}
	m.inbound.WithLabelValues(route, codeLabel(code)).Observe(d.Seconds())
}

// ObserveDispatch counts one dispatched operation. outcome is "ok" or the
// error kind.
func (m *Metrics) ObserveDispatch(operation, outcome string) {
	if m == nil {
		return
	}
	m.dispatch.WithLabelValues(operation, outcome).Inc()
}

// RateLimited counts a request rejected with 429.
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.limited.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func codeLabel(code int) string {
	if code == 0 {
		return "error"
	}
	return strconv.Itoa(code)
}
