package middleware_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lunch-order/internal/domain"
	"lunch-order/internal/middleware"
	"lunch-order/internal/service/auth"
)

type fakeValidator struct {
	users map[string]*domain.User
}

func (f *fakeValidator) ValidateAccessToken(token string) (*auth.Claims, error) {
	user, ok := f.users[token]
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Claims{UserID: user.ID}, nil
}

func (f *fakeValidator) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}

func newApp(v middleware.TokenValidator) *fiber.App {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	app := fiber.New(fiber.Config{ErrorHandler: middleware.NewErrorHandler(logger)})

	app.Get("/me", middleware.AuthRequired(v), func(c *fiber.Ctx) error {
		return c.SendString(middleware.GetCurrentUserID(c).String())
	})
	app.Get("/admin", middleware.AuthRequired(v), middleware.RequireRole("admin"), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestAuthRequired(t *testing.T) {
	user := &domain.User{ID: uuid.New(), Role: "user", IsActive: true}
	inactive := &domain.User{ID: uuid.New(), Role: "user", IsActive: false}
	app := newApp(&fakeValidator{users: map[string]*domain.User{"good": user, "old": inactive}})

	tests := []struct {
		name   string
		target string
		header string
		want   int
	}{
		{"bearer header", "/me", "Bearer good", http.StatusOK},
		{"query token", "/me?access_token=good", "", http.StatusOK},
		{"missing header", "/me", "", http.StatusUnauthorized},
		{"malformed header", "/me", "Token good", http.StatusUnauthorized},
		{"invalid token", "/me", "Bearer bad", http.StatusUnauthorized},
		{"inactive user", "/me", "Bearer old", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req, -1)

			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestRequireRole(t *testing.T) {
	admin := &domain.User{ID: uuid.New(), Role: "admin", IsActive: true}
	super := &domain.User{ID: uuid.New(), Role: "superuser", IsActive: true}
	user := &domain.User{ID: uuid.New(), Role: "user", IsActive: true}
	app := newApp(&fakeValidator{users: map[string]*domain.User{"admin": admin, "super": super, "user": user}})

	for token, want := range map[string]int{"admin": http.StatusNoContent, "super": http.StatusNoContent, "user": http.StatusForbidden} {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := app.Test(req, -1)

		require.NoError(t, err)
		assert.Equal(t, want, resp.StatusCode, token)
	}
}

func TestErrorHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	tests := []struct {
		err      error
		wantCode int
		wantName string
	}{
		{fmt.Errorf("%w: bad input", domain.ErrValidation), http.StatusUnprocessableEntity, "VALIDATION_ERROR"},
		{fmt.Errorf("%w: taken", domain.ErrConflict), http.StatusConflict, "CONFLICT"},
		{fmt.Errorf("load: %w", fmt.Errorf("%w: missing", domain.ErrNotFound)), http.StatusNotFound, "NOT_FOUND"},
		{middleware.NewError(fiber.StatusBadRequest, "nope"), http.StatusBadRequest, "BAD_REQUEST"},
		{middleware.NewError(fiber.StatusServiceUnavailable, "draining"), http.StatusServiceUnavailable, "UNAVAILABLE"},
		{errors.New("pq: connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		app := fiber.New(fiber.Config{ErrorHandler: middleware.NewErrorHandler(logger)})
		app.Get("/", func(c *fiber.Ctx) error { return tt.err })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, tt.wantCode, resp.StatusCode)

		var body middleware.ErrorResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		assert.Equal(t, tt.wantName, body.Code)
		if tt.wantCode == http.StatusInternalServerError {
			assert.Equal(t, "Internal server error", body.Message)
		}
	}
}
