package core

import (
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"
)

// Pipeline runs submitted tasks concurrently in the background and counts
// how many have finished.
//
// Every task gets its own goroutine: there is no admission control, queue
// depth limit or backpressure. A task that panics is recovered, reported to
// the PanicHandler and still counted as completed.
type Pipeline struct {
	name         string
	logger       Logger
	panicHandler PanicHandler
	metrics      Metrics

	completed Counter
	submitted Counter
	panicked  Counter
	active    atomic.Int64
}

// New creates an isolated Pipeline. Use the package-level shared accessor
// for the process-wide instance.
func New(cfg Config) *Pipeline {
	cfg = cfg.withDefaults()
	return &Pipeline{
		name:         cfg.Name,
		logger:       cfg.Logger,
		panicHandler: cfg.PanicHandler,
		metrics:      cfg.Metrics,
	}
}

// Name returns the name of the pipeline
func (p *Pipeline) Name() string {
	return p.name
}

// Submit hands task to the pool and returns without waiting for it to start.
// A nil task is rejected and never counted.
func (p *Pipeline) Submit(task Task) {
	if task == nil {
		p.logger.Warn("task rejected", F("pipeline", p.name), F("reason", "nil task"))
		p.metrics.RecordTaskRejected(p.name, "nil task")
		return
	}

	p.submitted.Increment()
	p.metrics.RecordTaskSubmitted(p.name)

	go p.run(task)
}

// run executes one task and applies its completion exactly once.
func (p *Pipeline) run(task Task) {
	p.active.Add(1)
	startedAt := time.Now()

	defer func() {
		rec := recover()

		p.active.Add(-1)
		p.completed.Increment()
		p.metrics.RecordTaskCompleted(p.name, time.Since(startedAt))

		if rec != nil {
			p.panicked.Increment()
			p.metrics.RecordTaskPanic(p.name, rec)
			p.panicHandler.HandlePanic(p.name, resolveTaskName(task), rec, debug.Stack())
		}
	}()

	task()
}

// CompletedCount returns how many tasks have finished so far.
// It may race with tasks that are still running.
func (p *Pipeline) CompletedCount() int64 {
	return p.completed.Value()
}

// ReportStatus writes "Completed <N>" to the pipeline's logger.
func (p *Pipeline) ReportStatus() {
	n := p.CompletedCount()
	p.logger.Info(fmt.Sprintf("Completed %d", n), F("pipeline", p.name), F("completed", n))
}

// Stats returns current observability data for this pipeline.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Name:      p.name,
		Submitted: p.submitted.Value(),
		Active:    p.active.Load(),
		Completed: p.completed.Value(),
		Panicked:  p.panicked.Value(),
	}
}
