package task

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            1,
		QueueSize:              10,
		StuckTaskAge:           time.Minute,
		StuckTaskCheckInterval: time.Hour, // keep the monitor quiet during tests
	}
}

// waitFor polls until the condition holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestTaskRunner_SubmitPersistsBeforeEnqueue(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	runner := NewTaskRunner(taskStore, testRunnerConfig(), slog.Default())

	task := newMockExecutableTask("test_task", nil)
	require.NoError(t, runner.Submit(context.Background(), task))

	assert.Contains(t, taskStore.saved, task.ID())
}

func TestTaskRunner_SubmitFailsWhenStoreFails(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	taskStore.saveErr = errors.New("db down")
	runner := NewTaskRunner(taskStore, testRunnerConfig(), slog.Default())

	err := runner.Submit(context.Background(), newMockExecutableTask("test_task", nil))
	assert.Error(t, err)
}

func TestTaskRunner_SubmitFailsWhenQueueFull(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	cfg := testRunnerConfig()
	cfg.QueueSize = 1
	runner := NewTaskRunner(taskStore, cfg, slog.Default())

	// No workers running, so the first submit fills the queue.
	require.NoError(t, runner.Submit(context.Background(), newMockExecutableTask("test_task", nil)))

	err := runner.Submit(context.Background(), newMockExecutableTask("test_task", nil))
	assert.Error(t, err)
}

func TestTaskRunner_ProcessesSubmittedTask(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	runner := NewTaskRunner(taskStore, testRunnerConfig(), slog.Default())

	var executions atomic.Int32
	task := newMockExecutableTask("test_task", func(context.Context) error {
		executions.Add(1)
		return nil
	})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), task))

	waitFor(t, func() bool { return taskStore.statusOf(task.ID()) == TaskStatusCompleted })
	assert.Equal(t, int32(1), executions.Load())
}

func TestTaskRunner_MarksFailedTask(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()
	runner := NewTaskRunner(taskStore, testRunnerConfig(), slog.Default())

	task := newMockExecutableTask("test_task", func(context.Context) error {
		return errors.New("execution broke")
	})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	require.NoError(t, runner.Submit(context.Background(), task))

	waitFor(t, func() bool { return taskStore.statusOf(task.ID()) == TaskStatusFailed })
}

// staticRehydrator returns the same executable task for anything it is
// asked to rehydrate.
type staticRehydrator struct {
	task Task
	err  error
}

func (r *staticRehydrator) RehydrateTask(Task) (Task, error) {
	return r.task, r.err
}

func TestTaskRunner_RecoversPendingTasks(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()

	// Seed the store with a pending task from a "previous run".
	seed := newMockExecutableTask("test_task", nil)
	require.NoError(t, taskStore.SaveTask(context.Background(), seed))

	var executions atomic.Int32
	rehydrated := newMockExecutableTask("test_task", func(context.Context) error {
		executions.Add(1)
		return nil
	})
	rehydrated.id = seed.ID()

	runner := NewTaskRunner(taskStore, testRunnerConfig(), slog.Default())
	runner.RegisterRehydrator("test_task", &staticRehydrator{task: rehydrated})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	waitFor(t, func() bool { return taskStore.statusOf(seed.ID()) == TaskStatusCompleted })
	assert.Equal(t, int32(1), executions.Load())
}

func TestTaskRunner_ResetsInterruptedProcessingTasks(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()

	seed := newMockExecutableTask("test_task", nil)
	require.NoError(t, taskStore.SaveTask(context.Background(), seed))
	require.NoError(t, taskStore.UpdateTaskStatus(context.Background(), seed.ID(), TaskStatusProcessing, ""))

	rehydrated := newMockExecutableTask("test_task", nil)
	rehydrated.id = seed.ID()

	runner := NewTaskRunner(taskStore, testRunnerConfig(), slog.Default())
	runner.RegisterRehydrator("test_task", &staticRehydrator{task: rehydrated})

	require.NoError(t, runner.Start())
	defer runner.Stop()

	waitFor(t, func() bool { return taskStore.statusOf(seed.ID()) == TaskStatusCompleted })
}

func TestTaskRunner_UnknownTaskTypeMarkedFailedOnRecovery(t *testing.T) {
	t.Parallel()

	taskStore := newMockTaskStore()

	seed := newMockExecutableTask("unknown_type", nil)
	require.NoError(t, taskStore.SaveTask(context.Background(), seed))

	runner := NewTaskRunner(taskStore, testRunnerConfig(), slog.Default())

	require.NoError(t, runner.Start())
	defer runner.Stop()

	waitFor(t, func() bool { return taskStore.statusOf(seed.ID()) == TaskStatusFailed })
}
