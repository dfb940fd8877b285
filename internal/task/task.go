package task

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypeReviewNotification emails a listing owner about a new review.
	TaskTypeReviewNotification = "review_notification"

	// TaskTypeWelcomeEmail emails a newly registered user.
	TaskTypeWelcomeEmail = "welcome_email"

	// TaskTypePasswordReset emails a password reset link.
	TaskTypePasswordReset = "password_reset"
)

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskStore defines the interface for persisting tasks
type TaskStore interface {
	// SaveTask persists a task to the database
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus updates the status of a task
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks retrieves all tasks with "pending" status
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks retrieves tasks with "processing" status.
	// If olderThan is non-zero, only returns tasks that have been in this
	// state longer than the specified duration.
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)

	// WithTx returns a new TaskStore instance that uses the provided transaction.
	// The transaction should be created and managed by the caller.
	WithTx(tx *sql.Tx) TaskStore
}

// recoveredTask is a task loaded back from the database after a restart.
// It carries its persisted payload but no execution logic; the runner must
// rehydrate it through a TaskRehydrator before executing it.
type recoveredTask struct {
	id       uuid.UUID
	taskType string
	payload  []byte
	status   TaskStatus
}

// NewRecoveredTask wraps a persisted task row as a Task. Executing it
// directly fails; it exists to be rehydrated by type.
func NewRecoveredTask(id uuid.UUID, taskType string, payload []byte, status TaskStatus) Task {
	return &recoveredTask{
		id:       id,
		taskType: taskType,
		payload:  payload,
		status:   status,
	}
}

func (t *recoveredTask) ID() uuid.UUID      { return t.id }
func (t *recoveredTask) Type() string       { return t.taskType }
func (t *recoveredTask) Payload() []byte    { return t.payload }
func (t *recoveredTask) Status() TaskStatus { return t.status }

func (t *recoveredTask) Execute(ctx context.Context) error {
	return errors.New("recovered task has no execution logic; rehydrate it first")
}

// TaskRehydrator rebuilds an executable task from its persisted form.
// Factories implement this for the task types they own.
type TaskRehydrator interface {
	// RehydrateTask returns an executable task carrying the same ID and
	// payload as the persisted one, or an error if the payload is invalid.
	RehydrateTask(persisted Task) (Task, error)
}
