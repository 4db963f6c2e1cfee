package http

import (
	"triage_server/core/port/in"
	"triage_server/core/service/classification"

	"github.com/gofiber/fiber/v2"
)

// ClassifyHandler serves the classification endpoints. Errors use the bare {error} body.
type ClassifyHandler struct {
	classifier in.ClassifierService
	bulkMax    int
}

func NewClassifyHandler(classifier in.ClassifierService, bulkMax int) *ClassifyHandler {
	if bulkMax <= 0 {
		bulkMax = 50
	}
	return &ClassifyHandler{classifier: classifier, bulkMax: bulkMax}
}

func (h *ClassifyHandler) Register(router fiber.Router) {
	router.Post("/triage", h.Classify)
	router.Post("/triage/bulk", h.ClassifyBulk)
}

func (h *ClassifyHandler) Classify(c *fiber.Ctx) error {
	msg, err := requireMessage(c)
	if err != nil || msg == "" {
		return bareError(c, fiber.StatusBadRequest, classification.MessageRequired)
	}

	result, err := h.classifier.Classify(c.UserContext(), msg)
	if err != nil {
		return bareAppError(c, err)
	}
	return c.JSON(result)
}

func (h *ClassifyHandler) ClassifyBulk(c *fiber.Ctx) error {
	msgs, err := requireMessages(c, h.bulkMax)
	if err != nil {
		return bareAppError(c, err)
	}

	results, err := h.classifier.ClassifyBulk(c.UserContext(), msgs)
	if err != nil {
		return bareAppError(c, err)
	}
	return c.JSON(fiber.Map{"results": results})
}
