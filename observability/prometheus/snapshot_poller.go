package prometheus

import (
	"context"
	"sync"
	"time"

	"github.com/Swind/go-task-pipeline/core"
	prom "github.com/prometheus/client_golang/prometheus"
)

// StatsProvider provides current pipeline stats snapshots.
type StatsProvider interface {
	Stats() core.Stats
}

// SnapshotPoller periodically exports pipeline Stats() snapshots into Prometheus gauges.
type SnapshotPoller struct {
	interval time.Duration

	pipelinesMu sync.RWMutex
	pipelines   map[string]StatsProvider

	submitted *prom.GaugeVec
	active    *prom.GaugeVec
	completed *prom.GaugeVec
	panicked  *prom.GaugeVec

	stateMu sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSnapshotPoller creates a snapshot poller and registers its collectors.
func NewSnapshotPoller(namespace string, reg prom.Registerer, interval time.Duration) (*SnapshotPoller, error) {
	if namespace == "" {
		namespace = "pipeline"
	}
	if reg == nil {
		reg = prom.DefaultRegisterer
	}
	if interval <= 0 {
		interval = time.Second
	}

	submitted := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "submitted",
		Help:      "Tasks submitted per pipeline (snapshot).",
	}, []string{"pipeline"})
	active := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "active",
		Help:      "Tasks currently running per pipeline.",
	}, []string{"pipeline"})
	completed := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "completed",
		Help:      "Completed-task count per pipeline (snapshot).",
	}, []string{"pipeline"})
	panicked := prom.NewGaugeVec(prom.GaugeOpts{
		Namespace: namespace,
		Name:      "panicked",
		Help:      "Panicked-task count per pipeline (snapshot).",
	}, []string{"pipeline"})

	var err error
	if submitted, err = registerCollector(reg, submitted); err != nil {
		return nil, err
	}
	if active, err = registerCollector(reg, active); err != nil {
		return nil, err
	}
	if completed, err = registerCollector(reg, completed); err != nil {
		return nil, err
	}
	if panicked, err = registerCollector(reg, panicked); err != nil {
		return nil, err
	}

	return &SnapshotPoller{
		interval:  interval,
		pipelines: make(map[string]StatsProvider),
		submitted: submitted,
		active:    active,
		completed: completed,
		panicked:  panicked,
	}, nil
}

// AddPipeline adds or replaces a stats provider by name.
// An empty name falls back to the provider's own Stats().Name.
func (p *SnapshotPoller) AddPipeline(name string, provider StatsProvider) {
	if p == nil || provider == nil {
		return
	}
	if name == "" {
		name = provider.Stats().Name
	}
	name = normalizeLabel(name, "pipeline")
	p.pipelinesMu.Lock()
	p.pipelines[name] = provider
	p.pipelinesMu.Unlock()
}

// Start begins periodic polling; repeated calls are no-ops.
func (p *SnapshotPoller) Start(ctx context.Context) {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if p.running {
		p.stateMu.Unlock()
		return
	}
	pollCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	p.running = true
	p.stateMu.Unlock()

	go p.loop(pollCtx, p.done)
}

// Stop stops periodic polling; repeated calls are safe.
func (p *SnapshotPoller) Stop() {
	if p == nil {
		return
	}

	p.stateMu.Lock()
	if !p.running {
		p.stateMu.Unlock()
		return
	}
	cancel := p.cancel
	done := p.done
	p.stateMu.Unlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}

	p.stateMu.Lock()
	p.running = false
	p.cancel = nil
	p.done = nil
	p.stateMu.Unlock()
}

func (p *SnapshotPoller) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.collectOnce()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.collectOnce()
		}
	}
}

func (p *SnapshotPoller) collectOnce() {
	p.pipelinesMu.RLock()
	defer p.pipelinesMu.RUnlock()

	for name, provider := range p.pipelines {
		stats := provider.Stats()
		p.submitted.WithLabelValues(name).Set(float64(stats.Submitted))
		p.active.WithLabelValues(name).Set(float64(stats.Active))
		p.completed.WithLabelValues(name).Set(float64(stats.Completed))
		p.panicked.WithLabelValues(name).Set(float64(stats.Panicked))
	}
}
