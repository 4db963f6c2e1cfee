package http

import (
	"bytes"
	"fmt"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/in"
	"triage_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

const maxHistoryLimit = 1000

// HistoryHandler serves the history, export and dashboard.
type HistoryHandler struct {
	history in.HistoryService
	now     func() time.Time
}

func NewHistoryHandler(history in.HistoryService) *HistoryHandler {
	return &HistoryHandler{history: history, now: time.Now}
}

func (h *HistoryHandler) Register(router fiber.Router) {
	history := router.Group("/history")

	// static paths before /:id
	history.Get("/export", h.Export)
	history.Post("/undo", h.Undo)

	history.Get("/", h.List)
	history.Delete("/", h.Clear)
	history.Get("/:id", h.Get)
	history.Delete("/:id", h.Delete)

	router.Get("/dashboard", h.Dashboard)
}

func (h *HistoryHandler) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		return apperr.InvalidInput("limit", "must not be negative")
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	opts := in.ListOptions{Limit: limit}
	if cat := c.Query("category"); cat != "" {
		opts.Category = domain.NormalizeCategory(cat)
	}

	records, err := h.history.List(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"records": records, "count": len(records)})
}

func (h *HistoryHandler) Get(c *fiber.Ctx) error {
	rec, err := h.history.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (h *HistoryHandler) Delete(c *fiber.Ctx) error {
	rec, err := h.history.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"deleted": rec, "undoAvailable": true})
}

func (h *HistoryHandler) Undo(c *fiber.Ctx) error {
	rec, err := h.history.Undo(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"restored": rec})
}

func (h *HistoryHandler) Clear(c *fiber.Ctx) error {
	if err := h.history.Clear(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Export streams the history as a download. The body is buffered so a store error still maps to a status.
func (h *HistoryHandler) Export(c *fiber.Ctx) error {
	format, ok := in.ParseExportFormat(c.Query("format"))
	if !ok {
		return apperr.InvalidInput("format", "must be csv or json")
	}
	redact := QueryBool(c, "redact", false)

	var buf bytes.Buffer
	if err := h.history.Export(c.UserContext(), &buf, format, redact); err != nil {
		return err
	}

	contentType := "text/csv; charset=utf-8"
	if format == in.ExportJSON {
		contentType = fiber.MIMEApplicationJSONCharsetUTF8
	}
	filename := fmt.Sprintf("triage-history-%s.%s", h.now().Format("2006-01-02"), format)
	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(buf.Bytes())
}

func (h *HistoryHandler) Dashboard(c *fiber.Ctx) error {
	d, err := h.history.Dashboard(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(d)
}
