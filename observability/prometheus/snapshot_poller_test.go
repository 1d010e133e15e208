package prometheus

import (
	"context"
	"testing"
	"time"

	"github.com/Swind/go-task-pipeline/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type statsStub struct {
	stats core.Stats
}

func (s statsStub) Stats() core.Stats { return s.stats }

func TestSnapshotPoller_CollectsPipelineStats(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller("pipeline", reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	poller.AddPipeline("pipe-a", statsStub{stats: core.Stats{
		Name:      "pipe-a",
		Submitted: 9,
		Active:    2,
		Completed: 7,
		Panicked:  1,
	}})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	poller.Start(ctx)
	defer poller.Stop()

	assertEventually(t, 2*time.Second, func() bool {
		completed := testutil.ToFloat64(poller.completed.WithLabelValues("pipe-a"))
		active := testutil.ToFloat64(poller.active.WithLabelValues("pipe-a"))
		return completed == 7 && active == 2
	})

	if got := testutil.ToFloat64(poller.submitted.WithLabelValues("pipe-a")); got != 9 {
		t.Fatalf("submitted gauge = %v, want 9", got)
	}
	if got := testutil.ToFloat64(poller.panicked.WithLabelValues("pipe-a")); got != 1 {
		t.Fatalf("panicked gauge = %v, want 1", got)
	}
}

func TestSnapshotPoller_PollsLivePipeline(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller("", reg, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	p := core.New(core.Config{Name: "live"})
	poller.AddPipeline("", p)
	poller.Start(context.Background())
	defer poller.Stop()

	for range 5 {
		p.Submit(func() {})
	}

	assertEventually(t, 2*time.Second, func() bool {
		return testutil.ToFloat64(poller.completed.WithLabelValues("live")) == 5
	})
}

func TestSnapshotPoller_StartStop_Idempotent(t *testing.T) {
	reg := prom.NewRegistry()
	poller, err := NewSnapshotPoller("pipeline", reg, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("NewSnapshotPoller failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller.Start(ctx)
	poller.Start(ctx)
	poller.Stop()
	poller.Stop()

	// Restart after stop must work.
	poller.Start(ctx)
	poller.Stop()
}

func assertEventually(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}
