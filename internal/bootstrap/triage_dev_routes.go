package bootstrap

import (
	"triage_server/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// RegisterDevRoutes registers development-only inspection routes.
// WARNING: Only enable in development environment!
func RegisterDevRoutes(router fiber.Router, deps *Dependencies) {
	dev := router.Group("/dev")
	cfg := deps.Config

	// Effective configuration without secrets
	dev.Get("/config", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"environment":       cfg.Environment,
			"store_backend":     cfg.StoreBackend,
			"llm_enabled":       cfg.LLMEnabled(),
			"llm_base_url":      cfg.LLMBaseURL,
			"llm_model":         cfg.LLMModel,
			"cache_ttl":         cfg.ClassifyCacheTTL.String(),
			"cache_size":        cfg.ClassifyCacheSize,
			"bulk_max":          cfg.BulkMax,
			"bulk_workers":      cfg.BulkWorkers,
			"escalation_stream": cfg.EscalationStream,
			"redis":             deps.Redis != nil,
			"postgres":          deps.DB != nil,
			"mongodb":           deps.MongoDB != nil,
		})
	})

	// Drop the in-process classification cache
	dev.Post("/cache/clear", func(c *fiber.Ctx) error {
		n := deps.L1Cache.Len()
		deps.L1Cache.Clear()
		logger.Info("[Dev] cleared %d cached classifications", n)
		return c.JSON(fiber.Map{"cleared": n})
	})
}
