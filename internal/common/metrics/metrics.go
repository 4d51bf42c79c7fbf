// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_provider_calls_total",
			Help: "Total number of AI provider calls by outcome",
		},
		[]string{"provider", "outcome"},
	)

	ProviderCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ai_provider_call_duration_seconds",
			Help: "Duration of AI provider calls in seconds",
		},
		[]string{"provider"},
	)

	ProvidersExhausted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ai_providers_exhausted_total",
			Help: "Number of requests where every configured provider failed",
		},
	)

	ConversationTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "conversation_turns_total",
			Help: "Total conversation turns processed by kind",
		},
		[]string{"kind"},
	)

	PlansGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "travel_plans_generated_total",
			Help: "Total travel plans generated by status",
		},
		[]string{"status"},
	)

	WeatherLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "weather_lookups_total",
			Help: "Weather lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)
