package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	httpRequestsTotal     *prometheus.CounterVec
	httpRequestDuration   *prometheus.HistogramVec
	exerciseSubmissions   *prometheus.CounterVec
	exerciseScorePercent  prometheus.Histogram
	mediaUploadsTotal     *prometheus.CounterVec
	analyticsCacheLookups *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors exported by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0, 5.0},
		}, []string{"method", "route"})

		exerciseSubmissions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exercise_submissions_total",
			Help: "Exercise submissions by outcome.",
		}, []string{"result"})

		exerciseScorePercent = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "exercise_submission_score_percent",
			Help:    "Distribution of auto-graded submission percentages.",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		})

		mediaUploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Uploads forwarded to the media host by kind and outcome.",
		}, []string{"kind", "result"})

		analyticsCacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_cache_lookups_total",
			Help: "Analytics cache lookups by outcome.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpRequestDuration,
			exerciseSubmissions,
			exerciseScorePercent,
			mediaUploadsTotal,
			analyticsCacheLookups,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpRequestDuration
}

// ExerciseSubmissions counts submissions labelled accepted, duplicate or error.
func ExerciseSubmissions() *prometheus.CounterVec {
	RegisterMetrics()
	return exerciseSubmissions
}

// ExerciseScores records graded percentages.
func ExerciseScores() prometheus.Histogram {
	RegisterMetrics()
	return exerciseScorePercent
}

// MediaUploads counts uploads to the media host.
func MediaUploads() *prometheus.CounterVec {
	RegisterMetrics()
	return mediaUploadsTotal
}

// AnalyticsCacheLookups counts analytics cache hits and misses.
func AnalyticsCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return analyticsCacheLookups
}
