package server

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"connecto/internal/config"
	"connecto/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "http://localhost:5173"

// newLimitedApp installs the global middleware chain in front of a single
// /api/follows/1 route.
func newLimitedApp(t *testing.T) *fiber.App {
	t.Helper()
	srv := &Server{config: &config.Config{AllowedOrigins: testOrigin}}
	app := fiber.New()
	srv.SetupMiddleware(app)
	app.Post("/api/follows/1", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func sendFrom(t *testing.T, app *fiber.App, method, origin string, headers map[string]string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(method, "/api/follows/1", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func exhaustLimiter(t *testing.T, app *fiber.App) {
	t.Helper()
	for i := 0; i < 100; i++ {
		resp := sendFrom(t, app, http.MethodPost, testOrigin, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode, "request %d", i)
	}
}

func TestGlobalLimiter_RejectionKeepsCORSHeaders(t *testing.T) {
	app := newLimitedApp(t)
	exhaustLimiter(t, app)

	resp := sendFrom(t, app, http.MethodPost, testOrigin, nil)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, testOrigin, resp.Header.Get("Access-Control-Allow-Origin"))

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body models.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "Too many requests, please try again later.", body.Error)
}

func TestGlobalLimiter_PreflightStillAnswered(t *testing.T) {
	app := newLimitedApp(t)
	exhaustLimiter(t, app)

	resp := sendFrom(t, app, http.MethodOptions, testOrigin, map[string]string{
		"Access-Control-Request-Method":  http.MethodPost,
		"Access-Control-Request-Headers": "authorization,content-type",
	})
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
	assert.Equal(t, testOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestCORS_UnknownOriginGetsNoAllowHeader(t *testing.T) {
	app := newLimitedApp(t)

	resp := sendFrom(t, app, http.MethodPost, "https://evil.example", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}
