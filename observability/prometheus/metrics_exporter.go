// Package prometheus exports batch runner execution telemetry as Prometheus
// collectors. The exporter satisfies the runner.Metrics contract and can be
// shared across runners; collectors are registered once and reused.
package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/avinashk/batchrun/runner"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts runner.Metrics to Prometheus collectors.
type MetricsExporter struct {
	taskDurationSeconds *prom.HistogramVec
	tasksTotal          *prom.CounterVec
	tasksRunning        *prom.GaugeVec
}

var _ runner.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for
// runner.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "batchrun"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"runner", "status"})
	totalVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "tasks_total",
		Help:      "Total number of tasks by terminal status.",
	}, []string{"runner", "status"})
	runningVec := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "tasks_running",
		Help:      "Number of tasks currently executing.",
	}, []string{"runner"})

	var err error
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}
	if totalVec, err = registerCollector(reg, totalVec); err != nil {
		return nil, err
	}
	if runningVec, err = registerCollector(reg, runningVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		taskDurationSeconds: durationVec,
		tasksTotal:          totalVec,
		tasksRunning:        runningVec,
	}, nil
}

// TaskStarted records that a worker began executing a task.
func (m *MetricsExporter) TaskStarted(runnerName string) {
	if m == nil {
		return
	}
	m.tasksRunning.WithLabelValues(normalizeLabel(runnerName, "unknown")).Inc()
}

// TaskFinished records a task reaching a terminal state.
func (m *MetricsExporter) TaskFinished(runnerName string, status runner.Status, duration time.Duration) {
	if m == nil {
		return
	}
	name := normalizeLabel(runnerName, "unknown")
	m.tasksRunning.WithLabelValues(name).Dec()
	m.tasksTotal.WithLabelValues(name, string(status)).Inc()
	m.taskDurationSeconds.WithLabelValues(name, string(status)).Observe(duration.Seconds())
}

// TaskAborted records a task terminated before it ever started. The running
// gauge is untouched; no duration sample exists for work that never ran.
func (m *MetricsExporter) TaskAborted(runnerName string) {
	if m == nil {
		return
	}
	name := normalizeLabel(runnerName, "unknown")
	m.tasksTotal.WithLabelValues(name, string(runner.StatusTerminated)).Inc()
}

func normalizeLabel(v string, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func registerCollector[T prom.Collector](reg prom.Registerer, collector T) (T, error) {
	err := reg.Register(collector)
	if err == nil {
		return collector, nil
	}

	var alreadyRegisteredErr prom.AlreadyRegisteredError
	if errors.As(err, &alreadyRegisteredErr) {
		existing, ok := alreadyRegisteredErr.ExistingCollector.(T)
		if !ok {
			return collector, fmt.Errorf("collector type mismatch for %T", collector)
		}
		return existing, nil
	}

	return collector, err
}
