package bootstrap

import (
	"context"
	"os"
	"strings"

	"triage_server/adapter/in/http"
	"triage_server/config"
	"triage_server/infra/database"
	"triage_server/infra/middleware"
	"triage_server/pkg/logger"
	"triage_server/pkg/metrics"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

const bodyLimit = 1 * 1024 * 1024

// initLogger sets the default logger for a process. LOG_LEVEL wins over the environment default.
func initLogger(cfg *config.Config, service string, out *os.File) *logger.Logger {
	level := logger.LevelInfo
	if cfg.IsDevelopment() {
		level = logger.LevelDebug
	}
	if cfg.LogLevel != "" {
		level = logger.ParseLevel(cfg.LogLevel)
	}
	logger.Init(logger.Config{Level: level, Output: out, Service: service})
	return logger.Default()
}

func NewAPI(ctx context.Context, cfg *config.Config) (*fiber.App, func(), error) {
	log := initLogger(cfg, "triage-api", os.Stdout)

	deps, cleanup, err := NewDependencies(ctx, cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to initialize dependencies")
		return nil, nil, err
	}

	app := newApp(cfg, deps)

	log.Info("API server initialized (store=%s, remote classifier=%t)", cfg.StoreBackend, deps.ClassifierService.RemoteEnabled())
	return app, cleanup, nil
}

// newApp builds the fiber app over already-wired dependencies.
func newApp(cfg *config.Config, deps *Dependencies) *fiber.App {
	fcfg := fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		StrictRouting:         false,
		CaseSensitive:         false,

		// go-json for every c.JSON / BodyParser
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit:          bodyLimit,
		ServerHeader:       "",
		DisableDefaultDate: true,
	}
	if cfg.TrustProxy {
		fcfg.ProxyHeader = fiber.HeaderXForwardedFor
	}
	app := fiber.New(fcfg)

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())
	app.Use(middleware.RequestID())
	app.Use(middleware.SecurityHeaders())
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))

	allowOrigins := strings.Join(cfg.AllowedOrigins, ",")
	if allowOrigins == "" {
		allowOrigins = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:  allowOrigins,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:  "Origin,Content-Type,Accept,X-Request-ID",
		ExposeHeaders: "X-Request-ID,X-RateLimit-Limit,X-RateLimit-Remaining,Retry-After,Content-Disposition",
		MaxAge:        86400,
	}))

	api := app.Group("/api")

	// Health stays outside the rate limit
	http.NewHealthHandler(deps.Pingers).Register(api)

	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
		app.Hooks().OnShutdown(func() error {
			limiter.Close()
			return nil
		})
		api.Use(limiter.Handler())
	}
	api.Use(middleware.NoCache())
	api.Use(middleware.ValidateContentType())

	http.NewClassifyHandler(deps.ClassifierService, cfg.BulkMax).Register(api)
	http.NewAnalysisHandler(deps.AnalysisService, deps.SettingsService, cfg.BulkMax).Register(api)
	http.NewHistoryHandler(deps.HistoryService).Register(api)
	http.NewSettingsHandler(deps.SettingsService).Register(api)

	metricsHandler := http.NewMetricsHandler(deps.ClassifierService, deps.ClassificationCache)
	if deps.DB != nil {
		metricsHandler.AddSource("postgres_pool", func() any { return database.GetPoolStats(deps.DB) })
	}
	if deps.SQLDB != nil {
		metricsHandler.AddSource("store_pool", func() any {
			stats := metrics.GetDBPoolStats(deps.SQLDB.DB)
			return fiber.Map{"stats": stats, "health": metrics.AssessDBPoolHealth(stats)}
		})
	}
	if deps.Redis != nil {
		metricsHandler.AddSource("redis_pool", func() any { return database.GetRedisStats(deps.Redis) })
	}
	metricsHandler.Register(api)

	if cfg.IsDevelopment() {
		RegisterDevRoutes(api, deps)
		logger.Info("development routes enabled under /api/dev")
	}

	return app
}
