package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	pipeline "github.com/Swind/go-task-pipeline"
	"github.com/Swind/go-task-pipeline/config"
	"github.com/Swind/go-task-pipeline/core"
	"github.com/Swind/go-task-pipeline/logging"
	obs "github.com/Swind/go-task-pipeline/observability/prometheus"
)

type runOptions struct {
	tasks          int
	delay          time.Duration
	panicEvery     int
	metricsAddr    string
	statusInterval time.Duration
	timeout        time.Duration
}

func newRunCmd() *cobra.Command {
	opts := runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Submit demo tasks and report progress until they finish",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runPipeline(ctx, opts)
		},
	}

	cmd.Flags().IntVar(&opts.tasks, "tasks", 10, "number of tasks to submit")
	cmd.Flags().DurationVar(&opts.delay, "delay", 50*time.Millisecond, "how long each task sleeps")
	cmd.Flags().IntVar(&opts.panicEvery, "panic-every", 0, "make every Nth task panic (0 = never)")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve /metrics on this address (overrides METRICS_ADDR)")
	cmd.Flags().DurationVar(&opts.statusInterval, "status-interval", 0, "status report interval (overrides STATUS_INTERVAL)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "give up waiting after this long")

	return cmd
}

func (o runOptions) validate() error {
	if o.tasks < 0 {
		return fmt.Errorf("--tasks must not be negative, got %d", o.tasks)
	}
	if o.panicEvery < 0 {
		return fmt.Errorf("--panic-every must not be negative, got %d", o.panicEvery)
	}
	if o.timeout <= 0 {
		return errors.New("--timeout must be positive")
	}
	return nil
}

func runPipeline(ctx context.Context, opts runOptions) error {
	if err := opts.validate(); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Addr = opts.metricsAddr
	}
	if opts.statusInterval > 0 {
		cfg.Pipeline.StatusInterval = opts.statusInterval
	}
	if cfg.Pipeline.StatusInterval <= 0 {
		cfg.Pipeline.StatusInterval = time.Second
	}

	logger, err := logging.New(cfg.LoggingConfig())
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	reg := prom.NewRegistry()
	exporter, err := obs.NewMetricsExporter(cfg.Metrics.Namespace, reg, obs.ExporterOptions{})
	if err != nil {
		return fmt.Errorf("failed to create metrics exporter: %w", err)
	}
	poller, err := obs.NewSnapshotPoller(cfg.Metrics.Namespace, reg, cfg.Metrics.PollInterval)
	if err != nil {
		return fmt.Errorf("failed to create snapshot poller: %w", err)
	}

	p := pipeline.InitShared(core.Config{
		Name:    cfg.Pipeline.Name,
		Logger:  logger,
		Metrics: exporter,
	})
	poller.AddPipeline(p.Name(), p)
	poller.Start(ctx)
	defer poller.Stop()

	if cfg.Metrics.Addr != "" {
		shutdown := serveMetrics(cfg.Metrics.Addr, reg, logger)
		defer shutdown()
	}

	base := pipeline.CompletedCount()
	for i := range opts.tasks {
		pipeline.Submit(demoTask(i+1, opts))
	}
	logger.Info("tasks submitted", core.F("tasks", opts.tasks), core.F("pipeline", p.Name()))

	return waitForCompletion(ctx, base+int64(opts.tasks), cfg.Pipeline.StatusInterval, opts.timeout)
}

// demoTask sleeps for opts.delay and panics when n is a multiple of opts.panicEvery.
func demoTask(n int, opts runOptions) pipeline.Task {
	return func() {
		time.Sleep(opts.delay)
		if opts.panicEvery > 0 && n%opts.panicEvery == 0 {
			panic(fmt.Sprintf("demo task %d failed", n))
		}
	}
}

// waitForCompletion reports status on every tick until the shared count reaches target.
func waitForCompletion(ctx context.Context, target int64, interval, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for pipeline.CompletedCount() < target {
		select {
		case <-ctx.Done():
			pipeline.ReportStatus()
			return fmt.Errorf("stopped waiting with %d of %d tasks completed: %w",
				pipeline.CompletedCount(), target, ctx.Err())
		case <-ticker.C:
			pipeline.ReportStatus()
		}
	}

	pipeline.ReportStatus()
	return nil
}

func serveMetrics(addr string, reg *prom.Registry, logger core.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", core.F("addr", addr), core.F("error", err.Error()))
		}
	}()
	logger.Info("serving metrics", core.F("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
