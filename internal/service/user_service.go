package service

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dkotenko/adboard/internal/domain"
	"github.com/dkotenko/adboard/internal/service/auth"
	"github.com/dkotenko/adboard/internal/store"
)

// RegisterInput carries the fields of a registration request.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// UpdateProfileInput carries the self-service mutable profile fields.
// Nil pointers leave the field untouched.
type UpdateProfileInput struct {
	FirstName *string
	LastName  *string
	Phone     *string
	AvatarURL *string
	Password  *string
}

// UserService provides account operations: registration, login
// verification, profile management and the password reset flow.
type UserService interface {
	// Register creates a new account and enqueues the welcome email.
	// Welcome email failure never fails the registration.
	Register(ctx context.Context, input RegisterInput) (*domain.User, error)

	// Authenticate verifies email+password and returns the account.
	// Returns ErrInvalidCredentials on any mismatch and ErrAccountInactive
	// for deactivated accounts.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// Get returns an account by ID.
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// UpdateProfile applies self-service profile changes.
	UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*domain.User, error)

	// Deactivate soft-deletes the account. The row and its listings stay.
	Deactivate(ctx context.Context, id uuid.UUID) error

	// RequestPasswordReset issues a reset token and enqueues the reset
	// email. Unknown emails are silently ignored so the endpoint cannot be
	// used to probe for accounts.
	RequestPasswordReset(ctx context.Context, email string) error

	// ConfirmPasswordReset validates the reset token and sets the new
	// password.
	ConfirmPasswordReset(ctx context.Context, token, newPassword string) error

	// GrantAdmin promotes the account with the given email to the
	// administrator role. Used by the operator CLI, not exposed over HTTP.
	GrantAdmin(ctx context.Context, email string) (*domain.User, error)
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	userStore  store.UserStore
	verifier   auth.PasswordVerifier
	jwtService auth.JWTService
	dispatcher *NotificationDispatcher
	logger     *slog.Logger
	runTx      func(ctx context.Context, fn store.TxFn) error // injectable for testing
}

// NewUserService creates a new UserService.
func NewUserService(
	db *sql.DB,
	userStore store.UserStore,
	verifier auth.PasswordVerifier,
	jwtService auth.JWTService,
	dispatcher *NotificationDispatcher,
	logger *slog.Logger,
) (UserService, error) {
	if db == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "db cannot be nil"}
	}
	if userStore == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "userStore cannot be nil"}
	}
	if verifier == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "verifier cannot be nil"}
	}
	if jwtService == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "jwtService cannot be nil"}
	}
	if dispatcher == nil {
		return nil, &ServiceError{Operation: "create_service", Message: "dispatcher cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &userServiceImpl{
		userStore:  userStore,
		verifier:   verifier,
		jwtService: jwtService,
		dispatcher: dispatcher,
		logger:     logger.With("component", "user_service"),
		runTx: func(ctx context.Context, fn store.TxFn) error {
			return store.RunInTransaction(ctx, db, fn)
		},
	}, nil
}

// Register implements UserService.Register
func (s *userServiceImpl) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	user, err := domain.NewUser(input.Email, input.Password)
	if err != nil {
		return nil, NewServiceError("register_user", "invalid user", err)
	}
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Phone = input.Phone

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		return nil, NewServiceError("register_user", "failed to create user", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)

	if err := s.dispatcher.UserRegistered(ctx, user); err != nil {
		s.logger.Error("failed to enqueue welcome email",
			"error", err,
			"user_id", user.ID)
	}

	return user, nil
}

// Authenticate implements UserService.Authenticate
func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, NewServiceError("authenticate", "failed to look up user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	return user, nil
}

// Get implements UserService.Get
func (s *userServiceImpl) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, id)
	if err != nil {
		return nil, NewServiceError("get_user", "failed to get user", err)
	}
	return user, nil
}

// UpdateProfile implements UserService.UpdateProfile
func (s *userServiceImpl) UpdateProfile(ctx context.Context, id uuid.UUID, input UpdateProfileInput) (*domain.User, error) {
	var updated *domain.User
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, id)
		if err != nil {
			return err
		}

		if input.FirstName != nil {
			user.FirstName = *input.FirstName
		}
		if input.LastName != nil {
			user.LastName = *input.LastName
		}
		if input.Phone != nil {
			user.Phone = *input.Phone
		}
		if input.AvatarURL != nil {
			user.AvatarURL = *input.AvatarURL
		}
		if input.Password != nil {
			// The store rehashes a non-empty plaintext password on write.
			user.Password = *input.Password
		}

		if err := txStore.Update(ctx, user); err != nil {
			return err
		}
		updated = user
		return nil
	})
	if err != nil {
		return nil, NewServiceError("update_profile", "failed to update profile", err)
	}

	s.logger.Info("profile updated", "user_id", id)
	return updated, nil
}

// Deactivate implements UserService.Deactivate
func (s *userServiceImpl) Deactivate(ctx context.Context, id uuid.UUID) error {
	if err := s.userStore.Deactivate(ctx, id); err != nil {
		return NewServiceError("deactivate_user", "failed to deactivate user", err)
	}
	s.logger.Info("user deactivated", "user_id", id)
	return nil
}

// RequestPasswordReset implements UserService.RequestPasswordReset
func (s *userServiceImpl) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			// Pretend success; the endpoint must not reveal which emails
			// have accounts.
			s.logger.Debug("password reset requested for unknown email")
			return nil
		}
		return NewServiceError("request_password_reset", "failed to look up user", err)
	}

	token, err := s.jwtService.GenerateResetToken(ctx, user.ID)
	if err != nil {
		return NewServiceError("request_password_reset", "failed to generate reset token", err)
	}

	if err := s.dispatcher.PasswordResetRequested(ctx, user, token); err != nil {
		return NewServiceError("request_password_reset", "failed to enqueue reset email", err)
	}

	s.logger.Info("password reset requested", "user_id", user.ID)
	return nil
}

// ConfirmPasswordReset implements UserService.ConfirmPasswordReset
func (s *userServiceImpl) ConfirmPasswordReset(ctx context.Context, token, newPassword string) error {
	claims, err := s.jwtService.ValidateResetToken(ctx, token)
	if err != nil {
		return NewServiceError("confirm_password_reset", "invalid reset token", err)
	}

	err = s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByID(ctx, claims.UserID)
		if err != nil {
			return err
		}

		user.Password = newPassword
		return txStore.Update(ctx, user)
	})
	if err != nil {
		return NewServiceError("confirm_password_reset", "failed to set new password", err)
	}

	s.logger.Info("password reset completed", "user_id", claims.UserID)
	return nil
}

// GrantAdmin implements UserService.GrantAdmin
func (s *userServiceImpl) GrantAdmin(ctx context.Context, email string) (*domain.User, error) {
	var promoted *domain.User
	err := s.runTx(ctx, func(ctx context.Context, tx *sql.Tx) error {
		txStore := s.userStore.WithTx(tx)

		user, err := txStore.GetByEmail(ctx, email)
		if err != nil {
			return err
		}

		if user.Role == domain.RoleAdmin {
			promoted = user
			return nil
		}

		user.Role = domain.RoleAdmin
		user.IsStaff = true
		if err := txStore.Update(ctx, user); err != nil {
			return err
		}
		promoted = user
		return nil
	})
	if err != nil {
		return nil, NewServiceError("grant_admin", "failed to promote user", err)
	}

	s.logger.Info("user promoted to administrator", "user_id", promoted.ID)
	return promoted, nil
}
