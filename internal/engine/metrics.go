package engine

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	passDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "qopt_pass_duration_seconds",
		Help:    "Duration of a single optimization pass",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12), // 0.1ms to ~400ms
	}, []string{"pass"})

	passRewrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qopt_pass_rewrites_total",
		Help: "Rewrites applied by optimization passes",
	}, []string{"pass"})

	passErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qopt_pass_errors_total",
		Help: "Fatal errors raised while running passes",
	}, []string{"pass", "code"})

	pipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "qopt_pipeline_runs_total",
		Help: "Pipeline runs by outcome",
	}, []string{"outcome"})

	pipelineIterations = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "qopt_pipeline_iterations",
		Help:    "Iterations needed to reach a fixed point",
		Buckets: prometheus.LinearBuckets(1, 1, 10),
	})
)
