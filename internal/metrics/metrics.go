package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private prometheus registry with the forecast collectors.
type Metrics struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	upstream    *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "forecast_resolutions_total",
			Help: "Forecast resolutions by provider and outcome.",
		}, []string{"provider", "outcome"}),
		upstream: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "forecast_upstream_duration_seconds",
			Help:    "Duration of outbound forecast provider requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"provider"}),
	}
}

func (m *Metrics) CountResolution(provider, outcome string) {
	m.resolutions.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) ObserveUpstream(provider string, seconds float64) {
	m.upstream.WithLabelValues(provider).Observe(seconds)
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry is exposed for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
