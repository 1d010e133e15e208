// Package pipeline provides a minimal concurrent task pipeline.
//
// Callers submit independent units of work. The pipeline runs each one on its
// own goroutine in the background and keeps a shared count of how many have
// finished.
//
// # Quick Start
//
// Use the process-wide pipeline through the package-level helpers:
//
//	pipeline.Submit(func() {
//		// Your code here - runs concurrently, no result, no error
//	})
//	pipeline.ReportStatus() // logs "Completed <N>"
//
// # Shared Instance
//
// Shared returns one Pipeline per process. It is created on first use, from
// the environment (PIPELINE_NAME, LOG_LEVEL, LOG_DEV), and lives until the
// process exits. Call InitShared before any other use to supply your own
// core.Config instead, e.g. to attach Prometheus metrics:
//
//	exporter, _ := prometheus.NewMetricsExporter("pipeline", reg, prometheus.ExporterOptions{})
//	pipeline.InitShared(pipeline.Config{Name: "ingest", Metrics: exporter})
//
// New builds isolated instances that share nothing with Shared.
//
// # Guarantees
//
// Submit never blocks. Every submitted task runs exactly once and is counted
// exactly once after its body returns. A task that panics is recovered,
// reported to the configured PanicHandler and still counted. There is no
// ordering between tasks, no cancellation and no way to wait for a task.
package pipeline
