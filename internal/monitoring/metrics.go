package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ConversionsTotal   *prometheus.CounterVec
	ErrorsTotal        *prometheus.CounterVec
	TranscriptAttempts *prometheus.CounterVec
	TranscriptRequests *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConversionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "markdownd_conversions_total",
			Help: "The total number of completed conversions",
		}, []string{"format"}),
		ErrorsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "markdownd_errors_total",
			Help: "The total number of failed conversions",
		}, []string{"type"}), // e.g. 'UnsupportedFormat', 'RateLimited'
		TranscriptAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "markdownd_transcript_attempts_total",
			Help: "Transcript strategy attempts by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		TranscriptRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "markdownd_transcript_requests_total",
			Help: "Transcript extraction requests by final status",
		}, []string{"status"}), // 'succeeded' or 'exhausted'
	}
}

func (m *Metrics) IncConversions(format string) {
	m.ConversionsTotal.WithLabelValues(format).Inc()
}

func (m *Metrics) IncErrors(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) IncTranscriptAttempt(strategy, outcome string) {
	m.TranscriptAttempts.WithLabelValues(strategy, outcome).Inc()
}

func (m *Metrics) IncTranscriptRequest(status string) {
	m.TranscriptRequests.WithLabelValues(status).Inc()
}
