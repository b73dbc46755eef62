package service

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsService encapsulates Prometheus instrumentation for optimization
// runs and provides lightweight snapshots for CLI consumption.
type MetricsService struct {
	registry    *prometheus.Registry
	runTotal    *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	bestScore   prometheus.Gauge

	runCount          uint64
	runDurationMicros uint64
}

// NewMetricsService registers the planner collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	runTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_runs_total",
		Help: "Total number of optimization runs",
	}, []string{"algorithm", "status"})

	runDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "planner_run_duration_seconds",
		Help:    "Duration of optimization runs in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"algorithm"})

	bestScore := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_best_score",
		Help: "Overall score of the most recent completed run",
	})

	registry.MustRegister(runTotal, runDuration, bestScore)

	return &MetricsService{
		registry:    registry,
		runTotal:    runTotal,
		runDuration: runDuration,
		bestScore:   bestScore,
	}
}

// Registry exposes the collectors for scraping or testing.
func (m *MetricsService) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun records one finished optimization attempt.
func (m *MetricsService) ObserveRun(algorithm, status string, seconds, score float64) {
	m.runTotal.WithLabelValues(algorithm, status).Inc()
	m.runDuration.WithLabelValues(algorithm).Observe(seconds)
	if status == "completed" {
		m.bestScore.Set(score)
	}

	atomic.AddUint64(&m.runCount, 1)
	atomic.AddUint64(&m.runDurationMicros, uint64(seconds*1e6))
}

// MetricsSnapshot is a cheap aggregate view for human-readable output.
type MetricsSnapshot struct {
	Runs               uint64  `json:"runs"`
	AvgRunDurationSecs float64 `json:"avgRunDurationSeconds"`
}

// Snapshot returns the aggregate counters.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	runs := atomic.LoadUint64(&m.runCount)
	micros := atomic.LoadUint64(&m.runDurationMicros)

	snapshot := MetricsSnapshot{Runs: runs}
	if runs > 0 {
		snapshot.AvgRunDurationSecs = float64(micros) / 1e6 / float64(runs)
	}
	return snapshot
}
