package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the KYC module.
type Metrics struct {
	// Individual check durations by check kind
	CheckLatency *prometheus.HistogramVec

	// Terminal check outcomes by check kind and status
	CheckOutcome *prometheus.CounterVec

	// Session outcomes: verified, rejected, manual_review
	SessionOutcome *prometheus.CounterVec

	// Full pipeline duration
	PipelineLatency prometheus.Histogram
}

// New creates a Metrics instance with all KYC module metrics registered.
func New() *Metrics {
	return &Metrics{
		CheckLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "origen_kyc_check_duration_seconds",
			Help:    "Duration of individual verification checks by kind",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}, []string{"check"}),

		CheckOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "origen_kyc_check_outcomes_total",
			Help: "Terminal verification check outcomes by kind and status",
		}, []string{"check", "status"}),

		SessionOutcome: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "origen_kyc_session_outcomes_total",
			Help: "Validation session outcomes",
		}, []string{"outcome"}),

		PipelineLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "origen_kyc_pipeline_duration_seconds",
			Help:    "Duration of a full validation pipeline run",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
	}
}

// ObserveCheck records one check's duration and terminal status.
func (m *Metrics) ObserveCheck(check, status string, d time.Duration) {
	if m != nil {
		m.CheckLatency.WithLabelValues(check).Observe(d.Seconds())
		m.CheckOutcome.WithLabelValues(check, status).Inc()
	}
}

// IncrementSessionOutcome records a session-level outcome.
func (m *Metrics) IncrementSessionOutcome(outcome string) {
	if m != nil {
		m.SessionOutcome.WithLabelValues(outcome).Inc()
	}
}

// ObservePipeline records the total pipeline duration.
func (m *Metrics) ObservePipeline(d time.Duration) {
	if m != nil {
		m.PipelineLatency.Observe(d.Seconds())
	}
}
