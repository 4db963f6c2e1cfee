package middleware

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"triage_server/pkg/apperr"
	"triage_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init(logger.Config{Level: logger.LevelError, Output: io.Discard})
}

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Use(Recover(), RequestID(), RequestLogger())
	return app
}

func decodeError(t *testing.T, body io.Reader) ErrorResponse {
	t.Helper()
	var res ErrorResponse
	require.NoError(t, json.NewDecoder(body).Decode(&res))
	return res
}

func TestErrorHandler(t *testing.T) {
	app := newApp()
	app.Get("/app", func(c *fiber.Ctx) error { return apperr.NotFound("record") })
	app.Get("/wrapped", func(c *fiber.Ctx) error {
		return errors.Join(errors.New("ctx"), apperr.ErrNothingToUndo)
	})
	app.Get("/fiber", func(c *fiber.Ctx) error { return fiber.NewError(fiber.StatusRequestEntityTooLarge, "too big") })
	app.Get("/plain", func(c *fiber.Ctx) error { return errors.New("boom") })

	tests := []struct {
		path   string
		status int
		code   string
	}{
		{"/app", 404, apperr.CodeNotFound},
		{"/wrapped", 409, apperr.CodeNothingToUndo},
		{"/fiber", 413, "PAYLOAD_TOO_LARGE"},
		{"/plain", 500, apperr.CodeInternalError},
		{"/missing", 404, apperr.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.path, nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			res := decodeError(t, resp.Body)
			assert.False(t, res.Success)
			assert.Equal(t, tt.code, res.Error.Code)
			assert.NotEmpty(t, res.RequestID)
			assert.NotEmpty(t, res.Timestamp)
		})
	}
}

func TestErrorHandler_PlainErrorIsHidden(t *testing.T) {
	app := newApp()
	app.Get("/plain", func(c *fiber.Ctx) error { return errors.New("redis: connection refused") })

	resp, err := app.Test(httptest.NewRequest("GET", "/plain", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.NotContains(t, string(body), "redis")
}

func TestRequestID(t *testing.T) {
	app := newApp()
	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString(logger.RequestIDFrom(c.UserContext()))
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(HeaderRequestID, "req-123")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get(HeaderRequestID))
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "req-123", string(body))

	resp, err = app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(HeaderRequestID), 36)
}

func TestRecover(t *testing.T) {
	app := newApp()
	app.Get("/panic", func(c *fiber.Ctx) error { panic("kaboom") })

	resp, err := app.Test(httptest.NewRequest("GET", "/panic", nil))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
	assert.Equal(t, apperr.CodeInternalError, decodeError(t, resp.Body).Error.Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	defer rl.Close()

	app := newApp()
	app.Use(rl.Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 429, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Equal(t, apperr.CodeRateLimited, decodeError(t, resp.Body).Error.Code)
}

func TestRateLimiter_PerKey(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	defer rl.Close()

	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"))
}

func TestRateLimiter_ProxyHeaderKeys(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	defer rl.Close()

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(), ProxyHeader: fiber.HeaderXForwardedFor})
	app.Use(rl.Handler())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	tests := []struct {
		ip   string
		want int
	}{
		{"10.0.0.1", 200},
		{"10.0.0.2", 200},
		{"10.0.0.1", 429},
		{"10.0.0.3", 200},
		{"10.0.0.1", 429},
	}
	for _, tt := range tests {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(fiber.HeaderXForwardedFor, tt.ip)
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, tt.want, resp.StatusCode, tt.ip)
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()
	keys := make([]string, 0, len(rl.limiters))
	for k := range rl.limiters {
		keys = append(keys, k)
	}
	assert.ElementsMatch(t, []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}, keys)
}

func TestValidateContentType(t *testing.T) {
	app := newApp()
	app.Use(ValidateContentType())
	app.Post("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"a":1}`))
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)

	req = httptest.NewRequest("POST", "/", strings.NewReader("a=1"))
	req.Header.Set("Content-Type", "text/plain")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 415, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("POST", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)
}

func TestSecurityHeaders(t *testing.T) {
	app := newApp()
	app.Use(SecurityHeaders(), NoCache())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Contains(t, resp.Header.Get("Cache-Control"), "no-store")
}
