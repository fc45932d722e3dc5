package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GenerationTransitions counts comment status transitions by target status and trigger.
	GenerationTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reve_generation_transitions_total",
		Help: "Total number of comment generation status transitions",
	}, []string{"status", "trigger"})

	// ProviderSubmitLatency records provider submit latency including retries.
	ProviderSubmitLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reve_provider_submit_latency_seconds",
		Help:    "Generation provider submit latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})

	// ProviderSubmitAttempts counts individual submit attempts made to the provider.
	ProviderSubmitAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reve_provider_submit_attempts_total",
		Help: "Total number of submit attempts sent to the generation provider",
	})

	// CallbackOutcomes counts provider webhook deliveries by outcome.
	CallbackOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reve_callback_outcomes_total",
		Help: "Total number of provider callbacks by outcome",
	}, []string{"outcome"})

	// LikeToggles counts like toggles by subject and resulting state.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reve_like_toggles_total",
		Help: "Total number of like toggles",
	}, []string{"subject", "liked"})

	// SweptGenerations counts comments force-failed by the stale sweeper.
	SweptGenerations = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reve_swept_generations_total",
		Help: "Total number of stuck generations failed by the sweeper",
	})
)

// Callback outcome labels.
const (
	CallbackApplied    = "applied"
	CallbackDuplicate  = "duplicate"
	CallbackUnknown    = "unknown"
	CallbackRejected   = "rejected"
	CallbackStoreError = "error"
)

// RecordTransition increments the transition counter.
func RecordTransition(status, trigger string) {
	GenerationTransitions.WithLabelValues(status, trigger).Inc()
}

// TrackProviderSubmit returns a function that records submit latency when called (e.g. defer).
func TrackProviderSubmit() func(outcome string) {
	start := time.Now()
	return func(outcome string) {
		ProviderSubmitLatency.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	}
}

// RecordLikeToggle increments the like toggle counter.
func RecordLikeToggle(subject string, liked bool) {
	state := "false"
	if liked {
		state = "true"
	}
	LikeToggles.WithLabelValues(subject, state).Inc()
}
