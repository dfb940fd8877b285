package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dkotenko/adboard/internal/config"
	"github.com/dkotenko/adboard/internal/events"
	"github.com/dkotenko/adboard/internal/platform/mail"
	"github.com/dkotenko/adboard/internal/platform/postgres"
	"github.com/dkotenko/adboard/internal/platform/redisstore"
	"github.com/dkotenko/adboard/internal/service"
	"github.com/dkotenko/adboard/internal/service/auth"
	"github.com/dkotenko/adboard/internal/store"
	"github.com/dkotenko/adboard/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config

	logger *slog.Logger
	db     *sql.DB
	redis  *redis.Client

	// Stores
	userStore    store.UserStore
	listingStore store.ListingStore
	reviewStore  store.ReviewStore
	taskStore    task.TaskStore

	// Services
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	userService      service.UserService
	listingService   service.ListingService
	reviewService    service.ReviewService

	// Auth state
	tokenDenylist *redisstore.TokenDenylist

	// Event system and background tasks
	eventEmitter *events.InMemoryEventEmitter
	taskRunner   *task.TaskRunner
}

// newApplication creates a new application instance with all dependencies
// initialized. Core dependencies (configuration, logger, database) must be
// established by the caller.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.passwordVerifier = auth.NewBcryptVerifier()

	// Redis backs the refresh token denylist.
	app.redis = redisstore.NewClient(cfg.Redis)
	app.tokenDenylist = redisstore.NewTokenDenylist(app.redis)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := app.tokenDenylist.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost)
	app.listingStore = postgres.NewPostgresListingStore(db)
	app.reviewStore = postgres.NewPostgresReviewStore(db)
	app.taskStore = postgres.NewPostgresTaskStore(db)

	// Outbound mail and the durable email task pipeline.
	mailer, err := mail.NewSMTPMailer(cfg.Mail)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mailer: %w", err)
	}
	emailFactory := task.NewEmailTaskFactory(mailer, logger)

	app.taskRunner, err = setupTaskRunner(app, emailFactory)
	if err != nil {
		return nil, fmt.Errorf("failed to setup task runner: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(logger)
	app.eventEmitter.RegisterHandler(
		task.NewDispatchEventHandler(emailFactory, app.taskRunner, logger))

	dispatcher, err := service.NewNotificationDispatcher(
		app.eventEmitter, cfg.Server.PublicBaseURL, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification dispatcher: %w", err)
	}

	// Services
	app.listingService, err = service.NewListingService(db, app.listingStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create listing service: %w", err)
	}

	app.reviewService, err = service.NewReviewService(
		db, app.reviewStore, app.listingStore, app.userStore, dispatcher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create review service: %w", err)
	}

	app.userService, err = service.NewUserService(
		db, app.userStore, app.passwordVerifier, app.jwtService, dispatcher, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// setupTaskRunner initializes and starts the background task processor.
// Recovery requeues persisted email tasks from before the last shutdown, so
// the factory is registered as a rehydrator for every email task type.
func setupTaskRunner(app *application, factory *task.EmailTaskFactory) (*task.TaskRunner, error) {
	taskRunner := task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		QueueSize:    app.config.Task.QueueSize,
		WorkerCount:  app.config.Task.WorkerCount,
		StuckTaskAge: time.Duration(app.config.Task.StuckTaskAgeMinutes) * time.Minute,
	}, app.logger)

	for _, taskType := range []string{
		task.TaskTypeReviewNotification,
		task.TaskTypeWelcomeEmail,
		task.TaskTypePasswordReset,
	} {
		taskRunner.RegisterRehydrator(taskType, factory)
	}

	if err := taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	return taskRunner, nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.redis != nil {
		if err := app.redis.Close(); err != nil {
			app.logger.Error("Error closing redis connection", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
