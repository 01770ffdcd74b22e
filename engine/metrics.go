package engine

import "github.com/prometheus/client_golang/prometheus"

// Metric label values.
const (
	stageTransform = "transform"
	stageEstimate  = "estimate"
	stagePredict   = "predict"

	statusCompleted = "completed"
	statusFailed    = "failed"
	statusDropped   = "dropped"
)

var (
	tasksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "strata_layer_tasks_total",
			Help: "Total number of layer tasks processed, by stage and outcome.",
		},
		[]string{"stage", "status"},
	)

	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "strata_stage_duration_seconds",
			Help:    "Duration of one task within a stage, in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	cacheWaitDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "strata_cache_wait_seconds",
			Help:    "Time estimator tasks spent waiting on transformer cache entries, in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	estimatorsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "strata_estimators_dropped_total",
			Help: "Estimators dropped from the ensemble under the warn-and-drop policy.",
		},
	)
)

func init() {
	prometheus.MustRegister(tasksTotal)
	prometheus.MustRegister(stageDuration)
	prometheus.MustRegister(cacheWaitDuration)
	prometheus.MustRegister(estimatorsDropped)

	// Pre-initialize counter label combinations so they appear in /metrics
	// with value 0 from startup, rather than only after first observation.
	for _, stage := range []string{stageTransform, stageEstimate, stagePredict} {
		tasksTotal.WithLabelValues(stage, statusCompleted)
		tasksTotal.WithLabelValues(stage, statusFailed)
	}
	tasksTotal.WithLabelValues(stageEstimate, statusDropped)
}
