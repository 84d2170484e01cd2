package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facultyhire_http_requests_total",
			Help: "Total HTTP requests by route and status code",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "facultyhire_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	ModelCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facultyhire_model_calls_total",
			Help: "Calls to the hosted language model by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	ModelDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "facultyhire_model_call_duration_seconds",
			Help:    "Latency of language model calls in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
		},
		[]string{"operation"},
	)

	Screenings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "facultyhire_screenings_total",
			Help: "Resume screenings by final status",
		},
		[]string{"status"},
	)

	MatchScores = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "facultyhire_match_score",
			Help:    "Distribution of resume to job description match scores",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	WorkersActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "facultyhire_screening_jobs_active",
			Help: "Screening jobs currently being processed",
		},
	)
)

// ObserveModelCall records one model call that started at start.
func ObserveModelCall(operation string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ModelCalls.WithLabelValues(operation, outcome).Inc()
	ModelDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
