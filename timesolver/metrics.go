package timesolver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	stepDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gopolar",
		Subsystem: "timesolver",
		Name:      "step_duration_seconds",
		Help:      "Wall time of one predictor-corrector step.",
		Buckets:   prometheus.ExponentialBuckets(1.e-3, 2, 16),
	}, []string{"solver"})
	fixedPointIterations = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gopolar",
		Subsystem: "timesolver",
		Name:      "fixed_point_iterations",
		Help:      "Iterations of the implicit foot fixed-point loop.",
		Buckets:   prometheus.LinearBuckets(1, 5, 11),
	}, []string{"stage"})
	unconverged = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gopolar",
		Subsystem: "timesolver",
		Name:      "unconverged_total",
		Help:      "Implicit foot loops that hit the iteration cap.",
	}, []string{"stage"})
)
