// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)

	RecommendationCandidates = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduling_recommendation_candidates",
			Help:    "Contractors considered per ranking call",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		},
	)

	RecommendationsReturned = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduling_recommendations_returned",
			Help:    "Recommendations returned per ranking call after filtering and limits",
			Buckets: prometheus.LinearBuckets(0, 5, 10),
		},
	)

	RecommendationTopScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scheduling_recommendation_top_score",
			Help:    "Composite score of the best recommendation per ranking call",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	DegradedDistanceTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scheduling_degraded_distance_total",
			Help: "Contractors scored without a usable distance",
		},
	)

	AvailabilityCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduling_availability_cache_lookups_total",
			Help: "Availability cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	OffersSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduling_offers_sent_total",
			Help: "Schedule offers delivered by channel and outcome",
		},
		[]string{"channel", "status"},
	)
)

// TrackJob marks a job active and returns a func that records its outcome.
// Pass an empty errorCode on success.
func TrackJob(taskType string) func(errorCode string) {
	start := time.Now()
	WorkerJobsActive.WithLabelValues(taskType).Inc()

	return func(errorCode string) {
		WorkerJobsActive.WithLabelValues(taskType).Dec()
		WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
		if errorCode == "" {
			WorkerJobsCompleted.WithLabelValues(taskType).Inc()
			return
		}
		WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
	}
}
