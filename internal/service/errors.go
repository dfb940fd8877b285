package service

import (
	"errors"
	"fmt"

	"github.com/dkotenko/adboard/internal/domain"
	"github.com/dkotenko/adboard/internal/store"
)

// Common sentinel errors for the service layer
var (
	// ErrUserNotFound indicates that the user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrListingNotFound indicates that the listing does not exist
	ErrListingNotFound = errors.New("listing not found")

	// ErrReviewNotFound indicates that the review does not exist
	ErrReviewNotFound = errors.New("review not found")

	// ErrEmailExists indicates the email is already registered
	ErrEmailExists = errors.New("email already registered")

	// ErrInvalidCredentials indicates a failed login attempt. Deliberately
	// indistinguishable between unknown email and wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountInactive indicates the account was deactivated
	ErrAccountInactive = errors.New("account is inactive")
)

// ServiceError wraps errors from the service layer with operation context.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "create_listing")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError creates a new ServiceError. Sentinel errors the API layer
// translates directly (not-found, permission, validation, duplicates) pass
// through unwrapped.
func NewServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	passthrough := []error{
		ErrUserNotFound,
		ErrListingNotFound,
		ErrReviewNotFound,
		ErrEmailExists,
		ErrInvalidCredentials,
		ErrAccountInactive,
		domain.ErrUnauthenticated,
		domain.ErrForbidden,
		domain.ErrValidation,
	}
	for _, sentinel := range passthrough {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		return err
	}

	// Map store-level sentinels to service-level ones.
	switch {
	case errors.Is(err, store.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, store.ErrListingNotFound):
		return ErrListingNotFound
	case errors.Is(err, store.ErrReviewNotFound):
		return ErrReviewNotFound
	case errors.Is(err, store.ErrEmailExists):
		return ErrEmailExists
	}

	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
