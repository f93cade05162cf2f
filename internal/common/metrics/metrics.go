// internal/common/metrics/metrics.go
package metrics

import (
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

	AnalysisRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_runs_total",
			Help: "Analysis runs by terminal status",
		},
		[]string{"status"},
	)

	AnalysisRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "analysis_run_duration_seconds",
			Help:    "End-to-end duration of an analysis run",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"status"},
	)

	DimensionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "analysis_dimension_duration_seconds",
			Help: "Duration of a single analysis dimension",
		},
		[]string{"dimension"},
	)

	DimensionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_dimension_failures_total",
			Help: "Dimension failures recorded as partial results",
		},
		[]string{"dimension"},
	)

	InteractionsFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analysis_interactions_fetched_total",
			Help: "Interactions loaded per source",
		},
		[]string{"source"},
	)

	GraphSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "analysis_graph_size",
			Help: "Node and edge counts of the last interaction graph built",
		},
		[]string{"kind"},
	)
)
