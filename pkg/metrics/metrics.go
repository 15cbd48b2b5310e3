package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	MilestoneReviews = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "milestone_reviews_total",
			Help: "Total number of milestone review decisions",
		},
		[]string{"outcome"}, // outcome: approved, flagged
	)

	BudgetRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "milestone_budget_rejections_total",
			Help: "Approvals rejected because they would exceed the project budget",
		},
	)

	ProjectsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "projects_created_total",
			Help: "Total number of projects created",
		},
	)
)

// RecordHTTPRequestDuration records the latency of a handled HTTP request.
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordReview increments the review counter for an approve or flag decision.
func RecordReview(outcome string) {
	MilestoneReviews.WithLabelValues(outcome).Inc()
}
