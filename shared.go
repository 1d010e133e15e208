package pipeline

import (
	"sync"

	"github.com/Swind/go-task-pipeline/config"
	"github.com/Swind/go-task-pipeline/core"
	"github.com/Swind/go-task-pipeline/logging"
)

// =============================================================================
// Shared Pipeline (Singleton)
// =============================================================================

var (
	sharedPipeline *core.Pipeline
	sharedOnce     sync.Once
)

// InitShared creates the process-wide pipeline from cfg.
// The first call to InitShared or Shared wins; later calls return the
// existing instance and ignore cfg.
func InitShared(cfg core.Config) *core.Pipeline {
	sharedOnce.Do(func() {
		sharedPipeline = core.New(cfg)
	})
	return sharedPipeline
}

// Shared returns the process-wide pipeline, creating it on first use from
// the environment (see config.Load). It is never torn down.
func Shared() *core.Pipeline {
	sharedOnce.Do(func() {
		sharedPipeline = core.New(sharedConfigFromEnv())
	})
	return sharedPipeline
}

func sharedConfigFromEnv() core.Config {
	env := config.LoadOrDefault()

	logger, err := logging.New(env.LoggingConfig())
	if err != nil {
		logger = logging.NewDefault()
	}

	return core.Config{
		Name:   env.Pipeline.Name,
		Logger: logger,
	}
}

// Submit runs task on the shared pipeline without waiting for it.
func Submit(task Task) {
	Shared().Submit(task)
}

// CompletedCount returns the shared pipeline's completed-task count.
func CompletedCount() int64 {
	return Shared().CompletedCount()
}

// ReportStatus writes "Completed <N>" for the shared pipeline.
func ReportStatus() {
	Shared().ReportStatus()
}
