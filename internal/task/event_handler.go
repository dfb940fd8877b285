package task

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dkotenko/adboard/internal/events"
	"github.com/dkotenko/adboard/internal/platform/mail"
)

// TaskSubmitter is the slice of the runner the event handler needs.
type TaskSubmitter interface {
	Submit(ctx context.Context, task Task) error
}

// EmailRequested is the payload services attach to email task request
// events. It is the fully-rendered message; the worker side adds nothing.
type EmailRequested struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DispatchEventHandler implements events.EventHandler. It turns email task
// request events emitted by the service layer into durable tasks and
// submits them to the runner.
type DispatchEventHandler struct {
	factory   *EmailTaskFactory
	submitter TaskSubmitter
	logger    *slog.Logger
}

// NewDispatchEventHandler creates an event handler wiring the email task
// factory to the given submitter.
func NewDispatchEventHandler(factory *EmailTaskFactory, submitter TaskSubmitter, logger *slog.Logger) *DispatchEventHandler {
	return &DispatchEventHandler{
		factory:   factory,
		submitter: submitter,
		logger:    logger.With("component", "task_dispatch_event_handler"),
	}
}

// Ensure DispatchEventHandler implements events.EventHandler
var _ events.EventHandler = (*DispatchEventHandler)(nil)

// HandleEvent creates the task matching the event type and submits it.
// Event types this handler does not own are ignored so that additional
// handlers can claim them.
func (h *DispatchEventHandler) HandleEvent(ctx context.Context, event *events.TaskRequestEvent) error {
	log := h.logger.With("event_id", event.ID, "event_type", event.Type)

	if !emailTaskTypes[event.Type] {
		log.Debug("ignoring event with unsupported type")
		return nil
	}

	var payload EmailRequested
	if err := event.UnmarshalPayload(&payload); err != nil {
		log.Error("failed to unmarshal payload", "error", err)
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}

	t, err := h.factory.CreateTask(event.Type, mail.Message{
		To:      payload.To,
		Subject: payload.Subject,
		Body:    payload.Body,
	})
	if err != nil {
		log.Error("failed to create task", "error", err)
		return fmt.Errorf("failed to create task: %w", err)
	}

	if err := h.submitter.Submit(ctx, t); err != nil {
		log.Error("failed to submit task", "error", err, "task_id", t.ID())
		return fmt.Errorf("failed to submit task: %w", err)
	}

	log.Debug("task created and submitted", "task_id", t.ID())
	return nil
}
