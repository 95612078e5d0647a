package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tugas-go/internal/token"
	"tugas-go/pkg/logger"
)

func protectedApp(tokens *token.Service) *fiber.App {
	app := fiber.New()
	app.Get("/me", RequireToken(tokens, zap.NewNop()), func(c *fiber.Ctx) error {
		id, ok := IdentityFrom(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		return c.JSON(id)
	})
	return app
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

func TestRequireToken(t *testing.T) {
	tokens := token.New("test-secret", time.Hour)
	app := protectedApp(tokens)

	alice := token.Identity{ID: "7c9e6679-7425-40de-944b-e07fc1f90ae7", Username: "alice1", Email: "a@x.com"}
	good, err := tokens.Issue(alice)
	require.NoError(t, err)

	forged, err := token.New("other-secret", time.Hour).Issue(alice)
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	expired, err := token.New("test-secret", time.Hour, token.WithClock(func() time.Time { return past })).Issue(alice)
	require.NoError(t, err)

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"valid token", "Bearer " + good, fiber.StatusOK, ""},
		{"lowercase scheme", "bearer " + good, fiber.StatusOK, ""},
		{"no header", "", fiber.StatusUnauthorized, "No token provided"},
		{"scheme only", "Bearer", fiber.StatusUnauthorized, "No token provided"},
		{"wrong scheme", "Basic " + good, fiber.StatusUnauthorized, "No token provided"},
		{"garbage", "Bearer not.a.token", fiber.StatusUnauthorized, "Invalid token"},
		{"forged signature", "Bearer " + forged, fiber.StatusUnauthorized, "Invalid token"},
		{"expired", "Bearer " + expired, fiber.StatusUnauthorized, "Token expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode(t, resp)
			if tt.message == "" {
				assert.Equal(t, alice.ID, body["id"])
				assert.Equal(t, alice.Email, body["email"])
				return
			}
			assert.Equal(t, tt.message, body["message"])
			assert.Equal(t, false, body["success"])
		})
	}
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	app := fiber.New()
	app.Use(requestid.New())
	app.Use(ErrorHandler(logger.NewNop()))
	app.Get("/boom", func(c *fiber.Ctx) error {
		panic("database password is hunter2")
	})
	app.Get("/ok", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
	body := decode(t, resp)
	assert.Equal(t, "Internal server error", body["message"])
	assert.NotContains(t, body["message"], "hunter2")

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/ok", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
