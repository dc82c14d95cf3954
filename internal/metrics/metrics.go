// Package metrics provides Prometheus collectors for the interview service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "interviewd"

// Metrics holds all collectors. A nil *Metrics is accepted everywhere and
// disables instrumentation, which keeps tests free of registry collisions.
type Metrics struct {
	ConnectionsTotal  prometheus.Counter
	SessionsActive    prometheus.Gauge
	InterviewsStarted *prometheus.CounterVec
	TurnsAppended     *prometheus.CounterVec
	ReportsEmitted    prometheus.Counter

	EngineRequests *prometheus.HistogramVec
	EngineErrors   *prometheus.CounterVec

	AudioBlobsReceived prometheus.Counter
	AudioBytesReceived prometheus.Counter
	AudioMarkerErrors  prometheus.Counter
}

// New creates and registers all collectors on the default registry. Call it
// once per process.
func New() *Metrics {
	return &Metrics{
		ConnectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connections_total",
			Help:      "Total number of realtime client connections accepted",
		}),
		SessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of live interview sessions",
		}),
		InterviewsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interviews_started_total",
			Help:      "Interviews started, by mode (engine or fallback)",
		}, []string{"mode"}),
		TurnsAppended: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_appended_total",
			Help:      "Transcript turns appended, by role",
		}, []string{"role"}),
		ReportsEmitted: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_emitted_total",
			Help:      "Interview reports sent to clients",
		}),
		EngineRequests: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_request_duration_seconds",
			Help:      "Latency of calls to the interview engine, by endpoint",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"endpoint"}),
		EngineErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "engine_errors_total",
			Help:      "Failed calls to the interview engine, by endpoint",
		}, []string{"endpoint"}),
		AudioBlobsReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_blobs_received_total",
			Help:      "Candidate audio payloads received",
		}),
		AudioBytesReceived: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_bytes_received_total",
			Help:      "Total decoded candidate audio bytes",
		}),
		AudioMarkerErrors: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_marker_errors_total",
			Help:      "Audio intake markers that failed to publish",
		}),
	}
}

// ObserveEngineRequest records one engine call's latency and outcome.
func (m *Metrics) ObserveEngineRequest(endpoint string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.EngineRequests.WithLabelValues(endpoint).Observe(elapsed.Seconds())
	if err != nil {
		m.EngineErrors.WithLabelValues(endpoint).Inc()
	}
}

// RecordTurn counts one appended transcript turn.
func (m *Metrics) RecordTurn(role string) {
	if m == nil {
		return
	}
	m.TurnsAppended.WithLabelValues(role).Inc()
}

// RecordInterviewStarted counts one started interview by mode.
func (m *Metrics) RecordInterviewStarted(mode string) {
	if m == nil {
		return
	}
	m.InterviewsStarted.WithLabelValues(mode).Inc()
}

// RecordConnection tracks a client connect or disconnect.
func (m *Metrics) RecordConnection(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.ConnectionsTotal.Inc()
		m.SessionsActive.Inc()
	} else {
		m.SessionsActive.Dec()
	}
}

// RecordReport counts one emitted report.
func (m *Metrics) RecordReport() {
	if m == nil {
		return
	}
	m.ReportsEmitted.Inc()
}

// RecordAudioBlob counts one received audio payload and its decoded size.
func (m *Metrics) RecordAudioBlob(sizeBytes int) {
	if m == nil {
		return
	}
	m.AudioBlobsReceived.Inc()
	m.AudioBytesReceived.Add(float64(sizeBytes))
}

// RecordAudioMarkerError counts one failed intake-marker publish.
func (m *Metrics) RecordAudioMarkerError() {
	if m == nil {
		return
	}
	m.AudioMarkerErrors.Inc()
}
