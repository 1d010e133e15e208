package core

import (
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a task panics during execution.
// The panic has already been recovered and the task has already been counted
// as completed when the handler runs.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// Parameters:
	// - pipelineName: The name of the pipeline that ran the task
	// - taskName: The resolved function name of the task
	// - panicInfo: The panic value recovered from the task
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(pipelineName string, taskName string, panicInfo any, stackTrace []byte)
}

// LoggingPanicHandler reports panics through a Logger at error level.
type LoggingPanicHandler struct {
	Logger Logger
}

// HandlePanic logs the panic with its stack trace.
func (h *LoggingPanicHandler) HandlePanic(pipelineName string, taskName string, panicInfo any, stackTrace []byte) {
	if h == nil || h.Logger == nil {
		return
	}
	h.Logger.Error("task panicked",
		F("pipeline", pipelineName),
		F("task", taskName),
		F("panic", fmt.Sprint(panicInfo)),
		F("stack", string(stackTrace)),
	)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting task execution metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast; they run on the task's goroutine.
type Metrics interface {
	// RecordTaskSubmitted records that a task was handed to the pool.
	RecordTaskSubmitted(pipelineName string)

	// RecordTaskCompleted records that a task finished and was counted.
	RecordTaskCompleted(pipelineName string, duration time.Duration)

	// RecordTaskPanic records that a task panicked during execution.
	RecordTaskPanic(pipelineName string, panicInfo any)

	// RecordTaskRejected records that a submission was refused (e.g., nil task).
	RecordTaskRejected(pipelineName string, reason string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordTaskSubmitted is a no-op.
func (m *NilMetrics) RecordTaskSubmitted(pipelineName string) {}

// RecordTaskCompleted is a no-op.
func (m *NilMetrics) RecordTaskCompleted(pipelineName string, duration time.Duration) {}

// RecordTaskPanic is a no-op.
func (m *NilMetrics) RecordTaskPanic(pipelineName string, panicInfo any) {}

// RecordTaskRejected is a no-op.
func (m *NilMetrics) RecordTaskRejected(pipelineName string, reason string) {}

// =============================================================================
// Config: Configuration for Pipeline
// =============================================================================

// DefaultPipelineName is used when Config.Name is empty.
const DefaultPipelineName = "pipeline"

// Config holds configuration options for a Pipeline.
// All fields are optional; defaults are filled in by New.
type Config struct {
	// Name labels logs and metrics. Defaults to DefaultPipelineName.
	Name string

	// Logger is the status and fault sink. Defaults to NoOpLogger.
	Logger Logger

	// PanicHandler is called when a task panics. Defaults to a
	// LoggingPanicHandler writing to Logger.
	PanicHandler PanicHandler

	// Metrics is called to record task execution metrics. Defaults to NilMetrics.
	Metrics Metrics
}

// withDefaults fills every unset field.
func (c Config) withDefaults() Config {
	if c.Name == "" {
		c.Name = DefaultPipelineName
	}
	if c.Logger == nil {
		c.Logger = NewNoOpLogger()
	}
	if c.PanicHandler == nil {
		c.PanicHandler = &LoggingPanicHandler{Logger: c.Logger}
	}
	if c.Metrics == nil {
		c.Metrics = &NilMetrics{}
	}
	return c
}
