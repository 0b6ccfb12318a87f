package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Turn metrics
	TurnsTotal          *prometheus.CounterVec
	TurnDurationSeconds *prometheus.HistogramVec

	// Interceptor metrics
	InterceptsTotal *prometheus.CounterVec

	// Generation metrics
	GenerationsTotal          *prometheus.CounterVec
	GenerationDurationSeconds *prometheus.HistogramVec
	GenerationFallbacksTotal  *prometheus.CounterVec

	// Course lookup metrics
	CourseLookupsTotal *prometheus.CounterVec

	// Prompt cache metrics
	PromptReloadsTotal *prometheus.CounterVec
	PromptCacheSize    prometheus.Gauge

	// HTTP metrics
	HTTPErrorsTotal *prometheus.CounterVec
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		// Turn metrics
		TurnsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_turns_total",
				Help: "Total number of chat turns by outcome",
			},
			[]string{"outcome"}, // outcome: intercepted, generated, offline, error
		),

		TurnDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_turn_duration_seconds",
				Help:    "Chat turn processing duration in seconds by outcome",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"outcome"},
		),

		// Interceptor metrics
		InterceptsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_intercepts_total",
				Help: "Total number of deterministic interceptor hits by kind",
			},
			[]string{"kind"}, // kind: duration, thesis, syllabus, selection
		),

		// Generation metrics
		GenerationsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_generations_total",
				Help: "Total number of generator calls by provider and status",
			},
			[]string{"provider", "status"}, // status: success, error
		),

		GenerationDurationSeconds: promauto.With(registry).NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "advisor_generation_duration_seconds",
				Help:    "Generator call duration in seconds by provider",
				Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
			},
			[]string{"provider"},
		),

		GenerationFallbacksTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_generation_fallbacks_total",
				Help: "Total number of generator provider fallbacks",
			},
			[]string{"from", "to"},
		),

		// Course lookup metrics
		CourseLookupsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_course_lookups_total",
				Help: "Total number of course store lookups by kind and status",
			},
			[]string{"kind", "status"}, // kind: by_name, search; status: hit, miss, error
		),

		// Prompt cache metrics
		PromptReloadsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_prompt_reloads_total",
				Help: "Total number of prompt cache reloads by status",
			},
			[]string{"status"}, // status: success, error
		),

		PromptCacheSize: promauto.With(registry).NewGauge(
			prometheus.GaugeOpts{
				Name: "advisor_prompt_cache_size",
				Help: "Number of prompt modules currently cached",
			},
		),

		// HTTP metrics
		HTTPErrorsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "advisor_http_errors_total",
				Help: "Total HTTP errors by type and route",
			},
			[]string{"error_type", "route"}, // error_type: bad_request, validation, internal
		),
	}

	return m
}
