package services

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics uses its own registry so several servers can run in one test binary.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests  *prometheus.CounterVec
	Registrations prometheus.Counter
	AIRequests    *prometheus.CounterVec
	Payments      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "iskra_http_requests_total",
			Help: "HTTP requests by method, route and status code",
		}, []string{"method", "route", "status"}),
		Registrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "iskra_registrations_total",
			Help: "Completed registrations",
		}),
		AIRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "iskra_ai_requests_total",
			Help: "AI requests by provider and outcome",
		}, []string{"provider", "outcome"}),
		Payments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "iskra_payments_total",
			Help: "Payments by state transition",
		}, []string{"state"}),
	}

	m.registry.MustRegister(
		m.HTTPRequests,
		m.Registrations,
		m.AIRequests,
		m.Payments,
		prometheus.NewGoCollector(),
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
