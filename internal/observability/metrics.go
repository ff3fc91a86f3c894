package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	moderationRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "moderation_requests_total",
			Help: "Total number of processed moderation requests",
		},
		[]string{"policy", "risk_level"},
	)

	inferenceFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inference_failures_total",
			Help: "Total number of classifier calls that failed or were unavailable",
		},
		[]string{"modality"},
	)

	escalationsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "escalations_total",
			Help: "Total number of events that triggered a moderator alert",
		},
	)

	processingDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "moderation_processing_duration_seconds",
			Help:    "Time spent processing a submission end to end",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)
)

// Register registers all service metrics with the default registry.
// Call once at startup.
func Register() {
	prometheus.MustRegister(moderationRequestsTotal)
	prometheus.MustRegister(inferenceFailuresTotal)
	prometheus.MustRegister(escalationsTotal)
	prometheus.MustRegister(processingDuration)
}

// RecordModeration records one scored submission.
func RecordModeration(policy, riskLevel string) {
	moderationRequestsTotal.WithLabelValues(policy, riskLevel).Inc()
}

// RecordInferenceFailure records a classifier failure for a modality.
func RecordInferenceFailure(modality string) {
	inferenceFailuresTotal.WithLabelValues(modality).Inc()
}

// RecordEscalation records a moderator alert.
func RecordEscalation() {
	escalationsTotal.Inc()
}

// TimeProcessing returns a function that records the elapsed processing
// time for an endpoint when called.
func TimeProcessing(endpoint string) func() {
	timer := prometheus.NewTimer(processingDuration.WithLabelValues(endpoint))
	return func() {
		timer.ObserveDuration()
	}
}
