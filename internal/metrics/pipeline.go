package metrics

import "github.com/prometheus/client_golang/prometheus"

// Group resolution outcomes.
const (
	OutcomeDirect     = "direct"
	OutcomeFallback   = "fallback"
	OutcomeUnresolved = "unresolved"
)

// Recommendation pipeline Prometheus metrics.
var (
	GroupResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "group_resolutions_total",
			Help:      "Group embedding resolutions by outcome",
		},
		[]string{"outcome"},
	)

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Duration of each recommendation pipeline stage in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"stage"},
	)

	PipelineCandidates = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_candidates",
			Help:      "Number of profiles leaving each pipeline stage",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 9),
		},
		[]string{"stage"},
	)

	PipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Recommendation runs by result",
		},
		[]string{"result"}, // "ok" / "no_valid_profiles" / "error"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers the recommendation pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(GroupResolutionsTotal)
	prometheus.MustRegister(PipelineStageDuration)
	prometheus.MustRegister(PipelineCandidates)
	prometheus.MustRegister(PipelineRunsTotal)
	pipelineMetricsRegistered = true
}
