package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkotenko/adboard/internal/domain"
	"github.com/dkotenko/adboard/internal/service"
	"github.com/dkotenko/adboard/internal/service/auth"
)

func authRouter(h *AuthHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/auth/register", h.Register)
	r.Post("/api/auth/login", h.Login)
	r.Post("/api/auth/refresh", h.RefreshToken)
	r.Post("/api/auth/logout", h.Logout)
	r.Post("/api/auth/password-reset", h.RequestPasswordReset)
	r.Post("/api/auth/password-reset/confirm", h.ConfirmPasswordReset)
	return r
}

func refreshClaims(userID uuid.UUID, jti string) *auth.Claims {
	return &auth.Claims{
		UserID:    userID,
		TokenType: "refresh",
		Subject:   userID.String(),
		IssuedAt:  time.Now().UTC(),
		ExpiresAt: time.Now().UTC().Add(72 * time.Hour),
		ID:        jti,
	}
}

func TestAuthHandlerRegister(t *testing.T) {
	userID := uuid.New()

	t.Run("issues a token pair on success", func(t *testing.T) {
		users := &mockUserService{
			RegisterFn: func(_ context.Context, input service.RegisterInput) (*domain.User, error) {
				require.Equal(t, "new.person@example.com", input.Email)
				return &domain.User{ID: userID, Email: input.Email}, nil
			},
		}
		handler := NewAuthHandler(users, &mockJWTService{}, newMockDenylist(), testLogger())

		body := jsonBody(t, RegisterRequest{
			Email:    "new.person@example.com",
			Password: "correct horse battery",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", body)
		w := httptest.NewRecorder()
		authRouter(handler).ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, userID, resp.UserID)
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, "refresh-token", resp.RefreshToken)
	})

	t.Run("duplicate email is 409", func(t *testing.T) {
		users := &mockUserService{
			RegisterFn: func(_ context.Context, _ service.RegisterInput) (*domain.User, error) {
				return nil, service.ErrEmailExists
			},
		}
		handler := NewAuthHandler(users, &mockJWTService{}, newMockDenylist(), testLogger())

		body := jsonBody(t, RegisterRequest{Email: "taken@example.com", Password: "correct horse battery"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", body)
		w := httptest.NewRecorder()
		authRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("short password is rejected before the service runs", func(t *testing.T) {
		called := false
		users := &mockUserService{
			RegisterFn: func(_ context.Context, _ service.RegisterInput) (*domain.User, error) {
				called = true
				return nil, nil
			},
		}
		handler := NewAuthHandler(users, &mockJWTService{}, newMockDenylist(), testLogger())

		body := jsonBody(t, RegisterRequest{Email: "new@example.com", Password: "short"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register", body)
		w := httptest.NewRecorder()
		authRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.False(t, called)
	})
}

func TestAuthHandlerLogin(t *testing.T) {
	userID := uuid.New()

	t.Run("success", func(t *testing.T) {
		users := &mockUserService{
			AuthenticateFn: func(_ context.Context, email, password string) (*domain.User, error) {
				require.Equal(t, "ivan@example.com", email)
				require.Equal(t, "correct horse battery", password)
				return &domain.User{ID: userID, Email: email}, nil
			},
		}
		handler := NewAuthHandler(users, &mockJWTService{}, newMockDenylist(), testLogger())

		body := jsonBody(t, LoginRequest{Email: "ivan@example.com", Password: "correct horse battery"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
		w := httptest.NewRecorder()
		authRouter(handler).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, userID, resp.UserID)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
	})

	t.Run("bad credentials are 401", func(t *testing.T) {
		users := &mockUserService{
			AuthenticateFn: func(_ context.Context, _, _ string) (*domain.User, error) {
				return nil, service.ErrInvalidCredentials
			},
		}
		handler := NewAuthHandler(users, &mockJWTService{}, newMockDenylist(), testLogger())

		body := jsonBody(t, LoginRequest{Email: "ivan@example.com", Password: "wrong"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", body)
		w := httptest.NewRecorder()
		authRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandlerRefreshToken(t *testing.T) {
	userID := uuid.New()

	t.Run("rotates the pair and revokes the old token", func(t *testing.T) {
		denylist := newMockDenylist()
		jwtSvc := &mockJWTService{
			ValidateRefreshTokenFn: func(_ context.Context, tokenString string) (*auth.Claims, error) {
				require.Equal(t, "old-refresh-token", tokenString)
				return refreshClaims(userID, "old-jti"), nil
			},
		}
		handler := NewAuthHandler(&mockUserService{}, jwtSvc, denylist, testLogger())

		body := jsonBody(t, RefreshTokenRequest{RefreshToken: "old-refresh-token"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", body)
		w := httptest.NewRecorder()
		authRouter(handler).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp RefreshTokenResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, "refresh-token", resp.RefreshToken)

		_, ok := denylist.revoked["old-jti"]
		assert.True(t, ok, "presented token must be revoked after rotation")
	})

	t.Run("revoked token is 401 and stays revoked", func(t *testing.T) {
		denylist := newMockDenylist()
		denylist.revoked["old-jti"] = time.Now().Add(time.Hour)
		jwtSvc := &mockJWTService{
			ValidateRefreshTokenFn: func(_ context.Context, _ string) (*auth.Claims, error) {
				return refreshClaims(userID, "old-jti"), nil
			},
		}
		handler := NewAuthHandler(&mockUserService{}, jwtSvc, denylist, testLogger())

		body := jsonBody(t, RefreshTokenRequest{RefreshToken: "old-refresh-token"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", body)
		w := httptest.NewRecorder()
		authRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("expired token is 401", func(t *testing.T) {
		jwtSvc := &mockJWTService{
			ValidateRefreshTokenFn: func(_ context.Context, _ string) (*auth.Claims, error) {
				return nil, auth.ErrExpiredRefreshToken
			},
		}
		handler := NewAuthHandler(&mockUserService{}, jwtSvc, newMockDenylist(), testLogger())

		body := jsonBody(t, RefreshTokenRequest{RefreshToken: "stale"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/refresh", body)
		w := httptest.NewRecorder()
		authRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandlerLogout(t *testing.T) {
	userID := uuid.New()

	t.Run("revokes the refresh token", func(t *testing.T) {
		denylist := newMockDenylist()
		jwtSvc := &mockJWTService{
			ValidateRefreshTokenFn: func(_ context.Context, _ string) (*auth.Claims, error) {
				return refreshClaims(userID, "session-jti"), nil
			},
		}
		handler := NewAuthHandler(&mockUserService{}, jwtSvc, denylist, testLogger())

		body := jsonBody(t, LogoutRequest{RefreshToken: "refresh-token"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", body)
		w := httptest.NewRecorder()
		authRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		_, ok := denylist.revoked["session-jti"]
		assert.True(t, ok)
	})

	t.Run("invalid token is 401", func(t *testing.T) {
		handler := NewAuthHandler(&mockUserService{}, &mockJWTService{}, newMockDenylist(), testLogger())

		body := jsonBody(t, LogoutRequest{RefreshToken: "garbage"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", body)
		w := httptest.NewRecorder()
		authRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandlerPasswordReset(t *testing.T) {
	t.Run("request always answers 202", func(t *testing.T) {
		users := &mockUserService{
			RequestPasswordResetFn: func(_ context.Context, email string) error {
				require.Equal(t, "whoever@example.com", email)
				return nil
			},
		}
		handler := NewAuthHandler(users, &mockJWTService{}, newMockDenylist(), testLogger())

		body := jsonBody(t, PasswordResetRequest{Email: "whoever@example.com"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/password-reset", body)
		w := httptest.NewRecorder()
		authRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusAccepted, w.Code)
	})

	t.Run("confirm with a valid token is 204", func(t *testing.T) {
		users := &mockUserService{
			ConfirmPasswordResetFn: func(_ context.Context, token, newPassword string) error {
				require.Equal(t, "signed-reset-token", token)
				require.Equal(t, "a brand new password", newPassword)
				return nil
			},
		}
		handler := NewAuthHandler(users, &mockJWTService{}, newMockDenylist(), testLogger())

		body := jsonBody(t, PasswordResetConfirmRequest{
			Token:    "signed-reset-token",
			Password: "a brand new password",
		})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/password-reset/confirm", body)
		w := httptest.NewRecorder()
		authRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("confirm with a bad token is 401", func(t *testing.T) {
		users := &mockUserService{
			ConfirmPasswordResetFn: func(_ context.Context, _, _ string) error {
				return auth.ErrInvalidToken
			},
		}
		handler := NewAuthHandler(users, &mockJWTService{}, newMockDenylist(), testLogger())

		body := jsonBody(t, PasswordResetConfirmRequest{Token: "garbage", Password: "a brand new password"})
		req := httptest.NewRequest(http.MethodPost, "/api/auth/password-reset/confirm", body)
		w := httptest.NewRecorder()
		authRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
