package pipeline

import "github.com/Swind/go-task-pipeline/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the pipeline package for most use cases.

// Task is the unit of work (Closure)
type Task = core.Task

// Pipeline runs tasks concurrently and counts completions
type Pipeline = core.Pipeline

// Config configures a Pipeline
type Config = core.Config

// Stats is a point-in-time view of a Pipeline
type Stats = core.Stats

// Logger is the status and fault sink
type Logger = core.Logger

// New creates an isolated Pipeline that is not shared with the rest of the process.
// Tests and embedders use it to avoid touching the shared instance.
func New(cfg Config) *Pipeline {
	return core.New(cfg)
}
