package prometheus

import (
	"errors"
	"fmt"
	"time"

	"github.com/Swind/go-task-pipeline/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// ExporterOptions controls collector configuration.
type ExporterOptions struct {
	DurationBuckets []float64
}

// MetricsExporter adapts core.Metrics to Prometheus collectors.
type MetricsExporter struct {
	taskSubmittedTotal  *prom.CounterVec
	taskCompletedTotal  *prom.CounterVec
	taskPanicTotal      *prom.CounterVec
	taskRejectedTotal   *prom.CounterVec
	taskDurationSeconds *prom.HistogramVec
}

var _ core.Metrics = (*MetricsExporter)(nil)

// NewMetricsExporter creates and registers Prometheus collectors for core.Metrics.
func NewMetricsExporter(namespace string, reg prom.Registerer, opts ExporterOptions) (*MetricsExporter, error) {
	if namespace == "" {
		namespace = "pipeline"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	buckets := opts.DurationBuckets
	if len(buckets) == 0 {
		buckets = prom.DefBuckets
	}

	submittedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_submitted_total",
		Help:      "Total number of tasks handed to the pool.",
	}, []string{"pipeline"})
	completedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_completed_total",
		Help:      "Total number of tasks that finished, including panicked ones.",
	}, []string{"pipeline"})
	panicVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_panic_total",
		Help:      "Total number of task panics.",
	}, []string{"pipeline"})
	rejectedVec := prom.NewCounterVec(prom.CounterOpts{
		Namespace: namespace,
		Name:      "task_rejected_total",
		Help:      "Total number of rejected submissions.",
	}, []string{"pipeline", "reason"})
	durationVec := prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: namespace,
		Name:      "task_duration_seconds",
		Help:      "Task execution duration in seconds.",
		Buckets:   buckets,
	}, []string{"pipeline"})

	var err error
	if submittedVec, err = registerCollector(reg, submittedVec); err != nil {
		return nil, err
	}
	if completedVec, err = registerCollector(reg, completedVec); err != nil {
		return nil, err
	}
	if panicVec, err = registerCollector(reg, panicVec); err != nil {
		return nil, err
	}
	if rejectedVec, err = registerCollector(reg, rejectedVec); err != nil {
		return nil, err
	}
	if durationVec, err = registerCollector(reg, durationVec); err != nil {
		return nil, err
	}

	return &MetricsExporter{
		taskSubmittedTotal:  submittedVec,
		taskCompletedTotal:  completedVec,
		taskPanicTotal:      panicVec,
		taskRejectedTotal:   rejectedVec,
		taskDurationSeconds: durationVec,
	}, nil
}

// RecordTaskSubmitted records task submissions.
func (m *MetricsExporter) RecordTaskSubmitted(pipelineName string) {
	if m == nil {
		return
	}
	m.taskSubmittedTotal.WithLabelValues(normalizeLabel(pipelineName, "unknown")).Inc()
}

// RecordTaskCompleted records a completion and its duration.
func (m *MetricsExporter) RecordTaskCompleted(pipelineName string, duration time.Duration) {
	if m == nil {
		return
	}
	name := normalizeLabel(pipelineName, "unknown")
	m.taskCompletedTotal.WithLabelValues(name).Inc()
	m.taskDurationSeconds.WithLabelValues(name).Observe(duration.Seconds())
}

// RecordTaskPanic records task panic events.
func (m *MetricsExporter) RecordTaskPanic(pipelineName string, panicInfo any) {
	if m == nil {
		return
	}
	m.taskPanicTotal.WithLabelValues(normalizeLabel(pipelineName, "unknown")).Inc()
}

// RecordTaskRejected records task rejection events.
func (m *MetricsExporter) RecordTaskRejected(pipelineName string, reason string) {
	if m == nil {
		return
	}
	m.taskRejectedTotal.WithLabelValues(normalizeLabel(pipelineName, "unknown"), normalizeLabel(reason, "unknown")).Inc()
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
