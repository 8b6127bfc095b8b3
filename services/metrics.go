package services

import (
	"github.com/prometheus/client_golang/prometheus"
)

// FeedbackMetrics counts feedback traffic and times store operations.
type FeedbackMetrics struct {
	created           prometheus.Counter
	deleted           prometheus.Counter
	validationFailure *prometheus.CounterVec
	storeDuration     *prometheus.HistogramVec
	storeErrors       *prometheus.CounterVec
}

// NewFeedbackMetrics registers the feedback collectors with reg.
func NewFeedbackMetrics(reg prometheus.Registerer) *FeedbackMetrics {
	m := &FeedbackMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedback_created_total",
			Help: "Total number of feedback entries stored",
		}),
		deleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "feedback_deleted_total",
			Help: "Total number of feedback entries deleted",
		}),
		validationFailure: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_validation_failures_total",
			Help: "Rejected submissions by reason",
		}, []string{"reason"}),
		storeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedback_store_operation_duration_seconds",
			Help:    "Time taken by feedback store operations",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
		}, []string{"operation"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedback_store_errors_total",
			Help: "Failed feedback store operations",
		}, []string{"operation"}),
	}

	reg.MustRegister(m.created, m.deleted, m.validationFailure, m.storeDuration, m.storeErrors)
	return m
}
