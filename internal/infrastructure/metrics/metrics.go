// Package metrics exposes Prometheus instrumentation for the homework bot.
// All collectors live on a private registry so tests can create as many
// instances as they like. Every method is safe to call on a nil *Metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "homework_bot"

// Cycle outcomes.
const (
	OutcomeDelivered = "delivered"
	OutcomeUnchanged = "unchanged"
	OutcomeFailed    = "failed"
	OutcomeSkipped   = "skipped"
)

// Metrics groups the collectors used by the poller and the API client.
type Metrics struct {
	registry *prometheus.Registry

	Cycles             *prometheus.CounterVec
	Notifications      *prometheus.CounterVec
	Errors             *prometheus.CounterVec
	SuppressedErrors   prometheus.Counter
	APIRequestDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycles_total",
				Help:      "Poll cycles by outcome",
			},
			[]string{"outcome"},
		),
		Notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Messages delivered to the chat by kind",
			},
			[]string{"kind"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Cycle failures by error kind",
			},
			[]string{"kind"},
		),
		SuppressedErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "suppressed_errors_total",
				Help:      "Failures that did not produce a chat notification because a streak was already reported",
			},
		),
		APIRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "api_request_duration_seconds",
				Help:      "Homework API request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.Cycles,
		m.Notifications,
		m.Errors,
		m.SuppressedErrors,
		m.APIRequestDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry backing these collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler returns the /metrics handler for this registry.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CycleFinished counts a finished cycle.
func (m *Metrics) CycleFinished(outcome string) {
	if m == nil {
		return
	}
	m.Cycles.WithLabelValues(outcome).Inc()
}

// NotificationSent counts a delivered message.
func (m *Metrics) NotificationSent(kind string) {
	if m == nil {
		return
	}
	m.Notifications.WithLabelValues(kind).Inc()
}

// ErrorObserved counts a cycle failure and, when suppressed, the suppression.
func (m *Metrics) ErrorObserved(kind string, suppressed bool) {
	if m == nil {
		return
	}
	m.Errors.WithLabelValues(kind).Inc()
	if suppressed {
		m.SuppressedErrors.Inc()
	}
}

// ObserveAPIRequest records the latency of one homework API request.
func (m *Metrics) ObserveAPIRequest(d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.APIRequestDuration.WithLabelValues(result).Observe(d.Seconds())
}
