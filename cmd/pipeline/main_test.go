package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pipeline "github.com/Swind/go-task-pipeline"
)

func TestVersionCommand(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "pipeline version "+version+"\n", out.String())
}

func TestRunOptions_Validate(t *testing.T) {
	valid := runOptions{tasks: 1, timeout: time.Second}
	assert.NoError(t, valid.validate())

	for name, opts := range map[string]runOptions{
		"negative tasks":       {tasks: -1, timeout: time.Second},
		"negative panic-every": {tasks: 1, panicEvery: -2, timeout: time.Second},
		"zero timeout":         {tasks: 1},
	} {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, opts.validate())
		})
	}
}

func TestRunCommand_RejectsBadFlags(t *testing.T) {
	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"run", "--tasks", "-3"})

	err := root.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--tasks")
}

func TestDemoTask_PanicsOnSchedule(t *testing.T) {
	opts := runOptions{panicEvery: 3}

	assert.NotPanics(t, func() { demoTask(1, opts)() })
	assert.Panics(t, func() { demoTask(3, opts)() })
	assert.NotPanics(t, func() { demoTask(3, runOptions{})() })
}

// TestRunCommand_CompletesAllTasks runs the command end to end on the shared pipeline
// Given: 12 short tasks, every 4th panicking
// When: the run command executes
// Then: it returns nil and the shared count includes all 12 tasks
func TestRunCommand_CompletesAllTasks(t *testing.T) {
	// Arrange
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PIPELINE_NAME", "cli-test")
	before := pipeline.CompletedCount()

	root := newRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{
		"run",
		"--tasks", "12",
		"--delay", "5ms",
		"--panic-every", "4",
		"--status-interval", "10ms",
		"--timeout", "5s",
	})

	// Act
	err := root.ExecuteContext(context.Background())

	// Assert
	require.NoError(t, err)
	assert.GreaterOrEqual(t, pipeline.CompletedCount(), before+12)
	assert.Eventually(t, func() bool {
		return pipeline.Shared().Stats().Panicked == 3
	}, time.Second, 5*time.Millisecond)
}

func TestWaitForCompletion_Timeout(t *testing.T) {
	target := pipeline.CompletedCount() + 1

	err := waitForCompletion(context.Background(), target, 5*time.Millisecond, 30*time.Millisecond)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
