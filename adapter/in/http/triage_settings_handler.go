package http

import (
	"triage_server/core/domain"
	"triage_server/core/port/in"

	"github.com/gofiber/fiber/v2"
)

// SettingsHandler serves the template and routing overrides.
type SettingsHandler struct {
	settings in.SettingsService
}

func NewSettingsHandler(settings in.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

func (h *SettingsHandler) Register(router fiber.Router) {
	settings := router.Group("/settings")
	settings.Get("/", h.Get)
	settings.Put("/", h.Save)
	settings.Post("/reset", h.Reset)
}

func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	s, err := h.settings.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(s)
}

// Save merges the body over the defaults; missing tables keep their built-in values.
func (h *SettingsHandler) Save(c *fiber.Ctx) error {
	var req domain.Settings
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	saved, err := h.settings.Save(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(saved)
}

func (h *SettingsHandler) Reset(c *fiber.Ctx) error {
	s, err := h.settings.Reset(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(s)
}
