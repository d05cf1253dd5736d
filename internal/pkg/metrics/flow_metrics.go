// Package metrics exposes Prometheus counters for the questionnaire flow.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lola"

// FlowMetrics is safe to use through a nil pointer, which disables recording.
type FlowMetrics struct {
	registry *prometheus.Registry

	sessionsStarted    prometheus.Counter
	startsRejected     prometheus.Counter
	answersAccepted    *prometheus.CounterVec // by input_type
	validationFailures *prometheus.CounterVec // by question_id
	sessionsCompleted  prometheus.Counter
	sessionsDeleted    prometheus.Counter
	sessionsCleaned    prometheus.Counter
	submitDuration     prometheus.Histogram
}

func NewFlowMetrics() *FlowMetrics {
	m := &FlowMetrics{
		registry: prometheus.NewRegistry(),

		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "started_total",
			Help:      "Total number of sessions started",
		}),
		startsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "start_rejected_total",
			Help:      "Session starts rejected by the per-client limit",
		}),
		answersAccepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "answer",
			Name:      "accepted_total",
			Help:      "Answers accepted and stored",
		}, []string{"input_type"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "answer",
			Name:      "validation_failures_total",
			Help:      "Answers rejected by validation",
		}, []string{"question_id"}),
		sessionsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "completed_total",
			Help:      "Sessions that reached an end node",
		}),
		sessionsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "deleted_total",
			Help:      "Sessions deleted on request",
		}),
		sessionsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "session",
			Name:      "cleaned_total",
			Help:      "Stale sessions removed by cleanup",
		}),
		submitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "answer",
			Name:      "submit_duration_seconds",
			Help:      "Time spent handling an answer submission",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.sessionsStarted,
		m.startsRejected,
		m.answersAccepted,
		m.validationFailures,
		m.sessionsCompleted,
		m.sessionsDeleted,
		m.sessionsCleaned,
		m.submitDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *FlowMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *FlowMetrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *FlowMetrics) SessionStarted() {
	if m == nil {
		return
	}
	m.sessionsStarted.Inc()
}

func (m *FlowMetrics) StartRejected() {
	if m == nil {
		return
	}
	m.startsRejected.Inc()
}

func (m *FlowMetrics) AnswerAccepted(inputType string, seconds float64) {
	if m == nil {
		return
	}
	m.answersAccepted.WithLabelValues(inputType).Inc()
	m.submitDuration.Observe(seconds)
}

func (m *FlowMetrics) ValidationFailed(questionID string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(questionID).Inc()
}

func (m *FlowMetrics) SessionCompleted() {
	if m == nil {
		return
	}
	m.sessionsCompleted.Inc()
}

func (m *FlowMetrics) SessionDeleted() {
	if m == nil {
		return
	}
	m.sessionsDeleted.Inc()
}

func (m *FlowMetrics) SessionsCleaned(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsCleaned.Add(float64(n))
}
