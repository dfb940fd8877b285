package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dkotenko/adboard/internal/metrics"
	"github.com/dkotenko/adboard/internal/platform/mail"
)

// Common errors
var (
	ErrNilMailer       = errors.New("mailer cannot be nil")
	ErrNilLogger       = errors.New("logger cannot be nil")
	ErrEmptyRecipient  = errors.New("recipient cannot be empty")
	ErrUnknownTaskType = errors.New("unknown email task type")
)

// emailTaskTypes is the set of task types SendEmailTask may carry. Each
// kind keeps its own type string so metrics and the tasks table stay
// readable.
var emailTaskTypes = map[string]bool{
	TaskTypeReviewNotification: true,
	TaskTypeWelcomeEmail:       true,
	TaskTypePasswordReset:      true,
}

// emailPayload is the fully-rendered message persisted with the task.
// Rendering happens at dispatch time, in the request path; the worker only
// delivers what was composed when the triggering write committed.
type emailPayload struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// SendEmailTask implements the Task interface for delivering one composed
// email through the Mailer.
type SendEmailTask struct {
	id       uuid.UUID
	taskType string
	message  mail.Message
	mailer   mail.Mailer
	logger   *slog.Logger
	status   TaskStatus
}

// NewSendEmailTask creates a task that delivers the given message. The
// taskType must be one of the email task type constants.
func NewSendEmailTask(taskType string, message mail.Message, mailer mail.Mailer, logger *slog.Logger) (*SendEmailTask, error) {
	if !emailTaskTypes[taskType] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTaskType, taskType)
	}
	if mailer == nil {
		return nil, ErrNilMailer
	}
	if logger == nil {
		return nil, ErrNilLogger
	}
	if message.To == "" {
		return nil, ErrEmptyRecipient
	}

	return &SendEmailTask{
		id:       uuid.New(),
		taskType: taskType,
		message:  message,
		mailer:   mailer,
		logger:   logger,
		status:   TaskStatusPending,
	}, nil
}

// ID returns the task's unique identifier
func (t *SendEmailTask) ID() uuid.UUID {
	return t.id
}

// Type returns the task type identifier
func (t *SendEmailTask) Type() string {
	return t.taskType
}

// Payload returns the task data as a byte slice
func (t *SendEmailTask) Payload() []byte {
	payload, err := json.Marshal(emailPayload{
		To:      t.message.To,
		Subject: t.message.Subject,
		Body:    t.message.Body,
	})
	if err != nil {
		// Marshalling a struct of strings cannot fail.
		panic(fmt.Sprintf("failed to marshal email payload: %v", err))
	}
	return payload
}

// Status returns the current task status
func (t *SendEmailTask) Status() TaskStatus {
	return t.status
}

// Execute hands the message to the mailer.
func (t *SendEmailTask) Execute(ctx context.Context) error {
	log := t.logger.With(
		"task_type", t.taskType,
		"task_id", t.id,
	)

	if err := t.mailer.Send(ctx, t.message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	metrics.IncEmailSent(t.taskType)
	log.Info("email sent")
	return nil
}

// EmailTaskFactory creates and rehydrates SendEmailTask instances for all
// email task types.
type EmailTaskFactory struct {
	mailer mail.Mailer
	logger *slog.Logger
}

// NewEmailTaskFactory creates a new factory for email tasks.
func NewEmailTaskFactory(mailer mail.Mailer, logger *slog.Logger) *EmailTaskFactory {
	return &EmailTaskFactory{
		mailer: mailer,
		logger: logger.With("component", "email_task_factory"),
	}
}

// CreateTask creates a new SendEmailTask of the given type.
func (f *EmailTaskFactory) CreateTask(taskType string, message mail.Message) (Task, error) {
	return NewSendEmailTask(taskType, message, f.mailer, f.logger)
}

// RehydrateTask implements TaskRehydrator for recovered tasks.
func (f *EmailTaskFactory) RehydrateTask(persisted Task) (Task, error) {
	var payload emailPayload
	if err := json.Unmarshal(persisted.Payload(), &payload); err != nil {
		return nil, fmt.Errorf("invalid email payload: %w", err)
	}

	t, err := NewSendEmailTask(persisted.Type(), mail.Message{
		To:      payload.To,
		Subject: payload.Subject,
		Body:    payload.Body,
	}, f.mailer, f.logger)
	if err != nil {
		return nil, err
	}
	t.id = persisted.ID()
	t.status = persisted.Status()
	return t, nil
}

// Ensure the factory implements TaskRehydrator
var _ TaskRehydrator = (*EmailTaskFactory)(nil)
