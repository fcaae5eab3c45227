package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sseth345/srilanka-learning-platform/internal/auth"
	"github.com/sseth345/srilanka-learning-platform/internal/models"
)

type stubUsers map[uint]models.User

func (s stubUsers) GetByID(_ context.Context, id uint) (models.User, error) {
	user, ok := s[id]
	if !ok {
		return models.User{}, gorm.ErrRecordNotFound
	}
	return user, nil
}

func newAuthApp(tokens *auth.TokenManager, users UserLookup) *fiber.App {
	app := fiber.New()
	app.Get("/me", Authenticate(tokens, users), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"id": c.Locals("user_id"), "role": c.Locals("user_role")})
	})
	return app
}

func TestAuthenticateUsesStoredRole(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	// The token still claims "student" but the account has since been promoted.
	token, _, err := tokens.Issue(models.User{ID: 5, Role: models.RoleStudent})
	require.NoError(t, err)

	app := newAuthApp(tokens, stubUsers{5: {ID: 5, Role: models.RoleTeacher}})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "teacher", body["role"])
	require.Equal(t, float64(5), body["id"])
}

func TestAuthenticateRejections(t *testing.T) {
	tokens := auth.NewTokenManager("secret", time.Hour)
	valid, _, err := tokens.Issue(models.User{ID: 9, Role: models.RoleStudent})
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "wrong scheme", header: "Basic abc"},
		{name: "empty token", header: "Bearer "},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "deleted account", header: "Bearer " + valid},
	}

	app := newAuthApp(tokens, stubUsers{})
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			require.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		})
	}
}

func TestErrorHandlerHidesInternalDetails(t *testing.T) {
	for _, expose := range []bool{false, true} {
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zerolog.Nop(), expose)})
		app.Get("/boom", func(*fiber.Ctx) error { return errors.New("db exploded") })
		app.Get("/missing", func(*fiber.Ctx) error { return fiber.NewError(fiber.StatusNotFound, "nope") })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

		var body struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		require.False(t, body.Success)
		if expose {
			require.Equal(t, "db exploded", body.Message)
		} else {
			require.Equal(t, "internal server error", body.Message)
		}

		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
		require.NoError(t, err)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	}
}

func TestCorrelationIDPropagates(t *testing.T) {
	app := fiber.New()
	app.Use(CorrelationID())
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(CorrelationIDFromContext(c.UserContext()))
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, "req-123", resp.Header.Get("X-Correlation-ID"))
}
