package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dkotenko/adboard/internal/domain"
	"github.com/dkotenko/adboard/internal/events"
	"github.com/dkotenko/adboard/internal/task"
)

// NotificationDispatcher composes notification emails and hands them to the
// asynchronous task machinery as fully-rendered messages. It runs in the
// request path but never blocks on delivery: emitting the event persists a
// task and returns.
type NotificationDispatcher struct {
	emitter       events.EventEmitter
	publicBaseURL string
	logger        *slog.Logger
}

// NewNotificationDispatcher creates a dispatcher publishing to the given
// event emitter.
func NewNotificationDispatcher(emitter events.EventEmitter, publicBaseURL string, logger *slog.Logger) (*NotificationDispatcher, error) {
	if emitter == nil {
		return nil, &ServiceError{Operation: "create_dispatcher", Message: "emitter cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NotificationDispatcher{
		emitter:       emitter,
		publicBaseURL: publicBaseURL,
		logger:        logger.With("component", "notification_dispatcher"),
	}, nil
}

// ReviewCreated composes and enqueues the "new review" email for the
// listing owner. Callers invoke it only after the review's insert
// transaction has committed.
func (d *NotificationDispatcher) ReviewCreated(ctx context.Context, owner, author *domain.User, listing *domain.Listing, review *domain.Review) error {
	msg := task.EmailRequested{
		To:      owner.Email,
		Subject: fmt.Sprintf("New review on your listing: %s", listing.Title),
		Body: fmt.Sprintf(
			"Hello %s,\n\n%s left a review on your listing \"%s\":\n\n%s\n\nView your listing: %s/api/listings/%s\n",
			displayName(owner),
			displayName(author),
			listing.Title,
			review.Text,
			d.publicBaseURL,
			listing.ID,
		),
	}
	return d.emit(ctx, task.TaskTypeReviewNotification, msg)
}

// UserRegistered composes and enqueues the welcome email.
func (d *NotificationDispatcher) UserRegistered(ctx context.Context, user *domain.User) error {
	msg := task.EmailRequested{
		To:      user.Email,
		Subject: "Welcome to Adboard",
		Body: fmt.Sprintf(
			"Hello %s,\n\nYour account has been created. You can now post listings and leave reviews.\n",
			displayName(user),
		),
	}
	return d.emit(ctx, task.TaskTypeWelcomeEmail, msg)
}

// PasswordResetRequested composes and enqueues the password reset email
// carrying a short-lived signed token.
func (d *NotificationDispatcher) PasswordResetRequested(ctx context.Context, user *domain.User, token string) error {
	msg := task.EmailRequested{
		To:      user.Email,
		Subject: "Reset your Adboard password",
		Body: fmt.Sprintf(
			"Hello %s,\n\nA password reset was requested for your account. Follow the link below to choose a new password. The link expires shortly.\n\n%s/reset-password?token=%s\n\nIf you did not request this, you can ignore this email.\n",
			displayName(user),
			d.publicBaseURL,
			token,
		),
	}
	return d.emit(ctx, task.TaskTypePasswordReset, msg)
}

func (d *NotificationDispatcher) emit(ctx context.Context, eventType string, msg task.EmailRequested) error {
	event, err := events.NewTaskRequestEvent(eventType, msg)
	if err != nil {
		return NewServiceError("dispatch_notification", "failed to create event", err)
	}

	if err := d.emitter.EmitEvent(ctx, event); err != nil {
		return NewServiceError("dispatch_notification", "failed to emit event", err)
	}

	d.logger.Debug("notification enqueued",
		"event_id", event.ID,
		"event_type", eventType,
		"recipient", msg.To)
	return nil
}

// displayName falls back to the email address when a user never filled in
// their name.
func displayName(u *domain.User) string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Email
	}
}
