package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subvet_validations_total",
			Help: "Validations processed, labelled by verdict.",
		},
		[]string{"decision"},
	)

	validationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "subvet_validation_duration_seconds",
			Help:    "Wall time of one full validation run.",
			Buckets: prometheus.DefBuckets,
		},
	)

	validationErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "subvet_validation_errors_total",
			Help: "Requests that failed before producing a verdict.",
		},
	)
)
