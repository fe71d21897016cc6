package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TasksSubmitted tracks total task submissions per task type
	TasksSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatcher_tasks_submitted_total",
			Help: "Total number of tasks submitted",
		},
		[]string{"type"},
	)

	// TaskOutcomes tracks classified outcomes per task type
	TaskOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatcher_task_outcomes_total",
			Help: "Total number of task outcomes by classification",
		},
		[]string{"type", "outcome"},
	)

	// DispatchAttempts tracks raw dispatch attempts including retries
	DispatchAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dispatcher_dispatch_attempts_total",
			Help: "Total number of dispatch HTTP attempts, retries included",
		},
		[]string{"type"},
	)

	// DispatchLatency tracks dispatch call latency
	DispatchLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dispatcher_dispatch_latency_seconds",
			Help:    "Dispatch call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"type"},
	)

	// ConsecutiveFailures tracks the breaker's current failure run
	ConsecutiveFailures = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatcher_consecutive_failures",
			Help: "Current consecutive-failure count of the circuit breaker",
		},
	)

	// SessionRunning reports whether a session is in the Running state
	SessionRunning = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dispatcher_session_running",
			Help: "1 while the session is running, 0 once terminal",
		},
	)
)
