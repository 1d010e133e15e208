package prometheus

import (
	"testing"
	"time"

	"github.com/Swind/go-task-pipeline/core"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMetricsExporter_RecordMethods(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("pipeline", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}

	exporter.RecordTaskSubmitted("pipe-a")
	exporter.RecordTaskCompleted("pipe-a", 250*time.Millisecond)
	exporter.RecordTaskPanic("pipe-a", "panic")
	exporter.RecordTaskRejected("pipe-a", "nil task")

	if got := testutil.ToFloat64(exporter.taskSubmittedTotal.WithLabelValues("pipe-a")); got != 1 {
		t.Fatalf("submitted total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.taskCompletedTotal.WithLabelValues("pipe-a")); got != 1 {
		t.Fatalf("completed total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.taskPanicTotal.WithLabelValues("pipe-a")); got != 1 {
		t.Fatalf("panic total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(exporter.taskRejectedTotal.WithLabelValues("pipe-a", "nil task")); got != 1 {
		t.Fatalf("rejected total = %v, want 1", got)
	}

	histCount, err := histogramSampleCount(exporter.taskDurationSeconds.WithLabelValues("pipe-a"))
	if err != nil {
		t.Fatalf("histogramSampleCount failed: %v", err)
	}
	if histCount != 1 {
		t.Fatalf("duration sample count = %d, want 1", histCount)
	}
}

func TestMetricsExporter_AlreadyRegisteredReuse(t *testing.T) {
	reg := prom.NewRegistry()
	first, err := NewMetricsExporter("pipeline", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("first NewMetricsExporter failed: %v", err)
	}
	second, err := NewMetricsExporter("pipeline", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("second NewMetricsExporter failed: %v", err)
	}

	first.RecordTaskPanic("pipe-a", nil)
	second.RecordTaskPanic("pipe-a", nil)

	got := testutil.ToFloat64(first.taskPanicTotal.WithLabelValues("pipe-a"))
	if got != 2 {
		t.Fatalf("shared panic counter = %v, want 2", got)
	}
}

func TestMetricsExporter_NilReceiverAndEmptyLabels(t *testing.T) {
	var nilExporter *MetricsExporter
	nilExporter.RecordTaskSubmitted("x")
	nilExporter.RecordTaskCompleted("x", time.Second)
	nilExporter.RecordTaskPanic("x", nil)
	nilExporter.RecordTaskRejected("x", "y")

	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("", reg, ExporterOptions{DurationBuckets: []float64{0.1, 1}})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}
	exporter.RecordTaskRejected("", "")

	if got := testutil.ToFloat64(exporter.taskRejectedTotal.WithLabelValues("unknown", "unknown")); got != 1 {
		t.Fatalf("rejected total for empty labels = %v, want 1", got)
	}
}

// TestMetricsExporter_WiredIntoPipeline verifies counters follow real task completions
// Given: a pipeline using the exporter as its core.Metrics
// When: 20 tasks run, one of which panics
// Then: submitted and completed reach 20 and panic reaches 1
func TestMetricsExporter_WiredIntoPipeline(t *testing.T) {
	// Arrange
	reg := prom.NewRegistry()
	exporter, err := NewMetricsExporter("pipeline", reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewMetricsExporter failed: %v", err)
	}
	p := core.New(core.Config{Name: "wired", Metrics: exporter})

	// Act
	p.Submit(func() { panic("bad task") })
	for range 19 {
		p.Submit(func() {})
	}

	// Assert
	assertEventually(t, 2*time.Second, func() bool {
		return testutil.ToFloat64(exporter.taskCompletedTotal.WithLabelValues("wired")) == 20 &&
			testutil.ToFloat64(exporter.taskPanicTotal.WithLabelValues("wired")) == 1
	})
	if got := testutil.ToFloat64(exporter.taskSubmittedTotal.WithLabelValues("wired")); got != 20 {
		t.Fatalf("submitted total = %v, want 20", got)
	}
	if got := p.CompletedCount(); got != 20 {
		t.Fatalf("CompletedCount() = %d, want 20", got)
	}
}

func histogramSampleCount(observer prom.Observer) (uint64, error) {
	collector, ok := observer.(prom.Collector)
	if !ok {
		return 0, nil
	}

	metricCh := make(chan prom.Metric, 1)
	collector.Collect(metricCh)
	close(metricCh)
	for metric := range metricCh {
		msg := &dto.Metric{}
		if err := metric.Write(msg); err != nil {
			return 0, err
		}
		if msg.Histogram != nil {
			return msg.Histogram.GetSampleCount(), nil
		}
	}
	return 0, nil
}
