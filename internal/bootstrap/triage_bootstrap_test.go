package bootstrap

import (
	"bytes"
	"context"
	"io"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"triage_server/config"
	"triage_server/core/domain"
	"triage_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(env string) *config.Config {
	return &config.Config{
		Port:              "0",
		Environment:       env,
		LogLevel:          "error",
		StoreBackend:      config.StoreMemory,
		StoreTable:        "triage_kv",
		ClassifyCacheTTL:  time.Minute,
		ClassifyCacheSize: 100,
		BulkMax:           50,
		BulkWorkers:       4,
	}
}

func newTestApp(t *testing.T, cfg *config.Config) (*fiber.App, *Dependencies) {
	t.Helper()
	log := logger.New(logger.Config{Level: logger.LevelError, Output: io.Discard, Service: "triage-test"})
	deps, cleanup, err := NewDependencies(context.Background(), cfg, log)
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return newApp(cfg, deps), deps
}

func TestNewDependencies_MemoryBackend(t *testing.T) {
	_, deps := newTestApp(t, testConfig("test"))

	assert.Nil(t, deps.DB)
	assert.Nil(t, deps.Redis)
	assert.Nil(t, deps.LLMClient)
	assert.False(t, deps.ClassifierService.RemoteEnabled())
	assert.Empty(t, deps.Pingers)
}

func TestApp_HealthAndTriage(t *testing.T) {
	app, _ := newTestApp(t, testConfig("test"))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	req := httptest.NewRequest(fiber.MethodPost, "/api/triage", strings.NewReader(`{"message":"I was charged twice on my invoice"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var cls domain.Classification
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cls))
	assert.NotEmpty(t, cls.Categories)
}

func TestApp_RejectsNonJSONBody(t *testing.T) {
	app, _ := newTestApp(t, testConfig("test"))

	req := httptest.NewRequest(fiber.MethodPost, "/api/analyze", strings.NewReader("message=hi"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnsupportedMediaType, resp.StatusCode)
}

func TestApp_DevRoutesOnlyInDevelopment(t *testing.T) {
	devApp, _ := newTestApp(t, testConfig("development"))
	resp, err := devApp.Test(httptest.NewRequest(fiber.MethodGet, "/api/dev/config", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "memory", body["store_backend"])
	assert.NotContains(t, body, "llm_api_key")

	prodApp, _ := newTestApp(t, testConfig("production"))
	resp, err = prodApp.Test(httptest.NewRequest(fiber.MethodGet, "/api/dev/config", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestDevRoutes_CacheClear(t *testing.T) {
	app, deps := newTestApp(t, testConfig("development"))
	deps.L1Cache.Set("k", []byte("v"))

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/api/dev/cache/clear", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, deps.L1Cache.Len())
}

func TestApp_RateLimited(t *testing.T) {
	cfg := testConfig("test")
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	app, _ := newTestApp(t, cfg)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/api/settings", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/settings", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	// health sits in front of the limiter
	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/api/health", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCLI_FileStorePersistsAcrossRuns(t *testing.T) {
	cfg := testConfig("test")
	cfg.StoreBackend = config.StoreFile
	cfg.StoreFilePath = filepath.Join(t.TempDir(), "store.json")
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, RunAnalyze(ctx, cfg, "The site is down and nobody can log in, this is urgent", &out))

	var record domain.AnalysisRecord
	require.NoError(t, json.Unmarshal(out.Bytes(), &record))
	assert.NotEmpty(t, record.ID)
	assert.NotEmpty(t, record.Category)

	out.Reset()
	require.NoError(t, RunDashboard(ctx, cfg, &out))

	var dashboard domain.Dashboard
	require.NoError(t, json.Unmarshal(out.Bytes(), &dashboard))
	assert.Equal(t, 1, dashboard.Stats.Total)
}

func TestCLI_AnalyzeEmptyMessageFails(t *testing.T) {
	err := RunAnalyze(context.Background(), testConfig("test"), "", io.Discard)
	assert.Error(t, err)
}
