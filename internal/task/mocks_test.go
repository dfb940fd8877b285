package task

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dkotenko/adboard/internal/platform/mail"
)

// mockMailer records sent messages.
type mockMailer struct {
	mu       sync.Mutex
	messages []mail.Message
	err      error
}

func (m *mockMailer) Send(_ context.Context, msg mail.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockMailer) sent() []mail.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mail.Message(nil), m.messages...)
}

// mockTaskStore is an in-memory TaskStore.
type mockTaskStore struct {
	mu       sync.Mutex
	saved    map[uuid.UUID]Task
	statuses map[uuid.UUID]TaskStatus
	saveErr  error
}

func newMockTaskStore() *mockTaskStore {
	return &mockTaskStore{
		saved:    make(map[uuid.UUID]Task),
		statuses: make(map[uuid.UUID]TaskStatus),
	}
}

func (m *mockTaskStore) SaveTask(_ context.Context, t Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[t.ID()] = t
	m.statuses[t.ID()] = t.Status()
	return nil
}

func (m *mockTaskStore) UpdateTaskStatus(_ context.Context, taskID uuid.UUID, status TaskStatus, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses[taskID] = status
	return nil
}

func (m *mockTaskStore) GetPendingTasks(_ context.Context) ([]Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tasks []Task
	for id, t := range m.saved {
		if m.statuses[id] == TaskStatusPending {
			tasks = append(tasks, NewRecoveredTask(t.ID(), t.Type(), t.Payload(), TaskStatusPending))
		}
	}
	return tasks, nil
}

func (m *mockTaskStore) GetProcessingTasks(_ context.Context, _ time.Duration) ([]Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var tasks []Task
	for id, t := range m.saved {
		if m.statuses[id] == TaskStatusProcessing {
			tasks = append(tasks, NewRecoveredTask(t.ID(), t.Type(), t.Payload(), TaskStatusProcessing))
		}
	}
	return tasks, nil
}

func (m *mockTaskStore) WithTx(_ *sql.Tx) TaskStore {
	return m
}

func (m *mockTaskStore) statusOf(taskID uuid.UUID) TaskStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statuses[taskID]
}

// mockExecutableTask is a simple Task with an injectable Execute function.
type mockExecutableTask struct {
	id        uuid.UUID
	taskType  string
	executeFn func(ctx context.Context) error
}

func newMockExecutableTask(taskType string, executeFn func(ctx context.Context) error) *mockExecutableTask {
	return &mockExecutableTask{
		id:        uuid.New(),
		taskType:  taskType,
		executeFn: executeFn,
	}
}

func (t *mockExecutableTask) ID() uuid.UUID      { return t.id }
func (t *mockExecutableTask) Type() string       { return t.taskType }
func (t *mockExecutableTask) Payload() []byte    { return []byte(`{}`) }
func (t *mockExecutableTask) Status() TaskStatus { return TaskStatusPending }

func (t *mockExecutableTask) Execute(ctx context.Context) error {
	if t.executeFn != nil {
		return t.executeFn(ctx)
	}
	return nil
}

// mockSubmitter records submitted tasks.
type mockSubmitter struct {
	mu        sync.Mutex
	submitted []Task
	err       error
}

func (m *mockSubmitter) Submit(_ context.Context, t Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.submitted = append(m.submitted, t)
	return nil
}
