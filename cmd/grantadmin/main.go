// Command grantadmin promotes an existing account to the administrator
// group. It is the operational replacement for editing roles in the
// database by hand.
//
// Usage:
//
//	grantadmin -email user@example.com
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dkotenko/adboard/internal/config"
	"github.com/dkotenko/adboard/internal/domain"
	"github.com/dkotenko/adboard/internal/events"
	"github.com/dkotenko/adboard/internal/platform/logger"
	"github.com/dkotenko/adboard/internal/platform/postgres"
	"github.com/dkotenko/adboard/internal/service"
	"github.com/dkotenko/adboard/internal/service/auth"
)

func main() {
	email := flag.String("email", "", "email of the account to promote")
	flag.Parse()

	if *email == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	user, err := run(ctx, *email)
	if err != nil {
		log.Fatalf("Failed to grant administrator role: %v", err)
	}

	fmt.Printf("%s added to group %q\n", user.Email, domain.AdminGroupName)
}

func run(ctx context.Context, email string) (*domain.User, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Error closing database connection", "error", err)
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	// Promotion sends no email, so the dispatcher runs against an emitter
	// with no handlers registered.
	dispatcher, err := service.NewNotificationDispatcher(
		events.NewInMemoryEventEmitter(appLogger), cfg.Server.PublicBaseURL, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification dispatcher: %w", err)
	}

	userStore := postgres.NewPostgresUserStore(db, cfg.Auth.BcryptCost)
	userService, err := service.NewUserService(
		db, userStore, auth.NewBcryptVerifier(), jwtService, dispatcher, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	return userService.GrantAdmin(ctx, email)
}
