package http

import (
	"net/url"

	"triage_server/core/domain"
	"triage_server/core/port/in"
	"triage_server/core/service/analysis"
	"triage_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

// AnalysisHandler serves the full pipeline and the individual detectors.
type AnalysisHandler struct {
	analysis in.AnalysisService
	settings in.SettingsService
	bulkMax  int
}

func NewAnalysisHandler(analysisSvc in.AnalysisService, settings in.SettingsService, bulkMax int) *AnalysisHandler {
	if bulkMax <= 0 {
		bulkMax = 50
	}
	return &AnalysisHandler{analysis: analysisSvc, settings: settings, bulkMax: bulkMax}
}

func (h *AnalysisHandler) Register(router fiber.Router) {
	router.Post("/validate", h.Validate)
	router.Post("/analyze", h.Analyze)
	router.Post("/analyze/bulk", h.AnalyzeBulk)

	router.Post("/urgency", h.Urgency)
	router.Post("/language", h.Language)
	router.Post("/sentiment", h.Sentiment)

	router.Post("/recommendation", h.Recommendation)
	router.Get("/templates/:category", h.Templates)
	router.Post("/templates/fill", h.FillTemplate)
}

func (h *AnalysisHandler) Validate(c *fiber.Ctx) error {
	msg, err := requireMessage(c)
	if err != nil {
		return err
	}
	return c.JSON(h.analysis.Validate(msg))
}

func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	msg, err := requireMessage(c)
	if err != nil {
		return err
	}
	rec, err := h.analysis.Analyze(c.UserContext(), msg)
	if err != nil {
		return err
	}
	return c.JSON(rec)
}

func (h *AnalysisHandler) AnalyzeBulk(c *fiber.Ctx) error {
	msgs, err := requireMessages(c, h.bulkMax)
	if err != nil {
		return err
	}
	results, err := h.analysis.AnalyzeBulk(c.UserContext(), msgs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"results": results})
}

func (h *AnalysisHandler) Urgency(c *fiber.Ctx) error {
	msg, err := requireMessage(c)
	if err != nil {
		return err
	}
	return c.JSON(analysis.ScoreUrgency(msg))
}

// LanguageResponse adds the display name to the detector output.
type LanguageResponse struct {
	analysis.LanguageResult
	LanguageName string `json:"languageName"`
}

func (h *AnalysisHandler) Language(c *fiber.Ctx) error {
	msg, err := requireMessage(c)
	if err != nil {
		return err
	}
	res := analysis.DetectLanguage(msg)
	return c.JSON(LanguageResponse{
		LanguageResult: res,
		LanguageName:   analysis.LanguageDisplayName(res.PrimaryLanguage),
	})
}

func (h *AnalysisHandler) Sentiment(c *fiber.Ctx) error {
	msg, err := requireMessage(c)
	if err != nil {
		return err
	}
	return c.JSON(analysis.ExtractSentiment(msg))
}

type recommendationRequest struct {
	Categories []string `json:"categories"`
	Urgency    string   `json:"urgency"`
	Message    string   `json:"message"`
}

type RecommendationResponse struct {
	RecommendedAction  string `json:"recommendedAction"`
	RoutingDestination string `json:"routingDestination"`
	Escalate           bool   `json:"escalate"`
}

// Recommendation resolves action and routing against the stored settings.
func (h *AnalysisHandler) Recommendation(c *fiber.Ctx) error {
	var req recommendationRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	if len(req.Categories) == 0 {
		return apperr.MissingField("categories")
	}

	resolver := analysis.NewDefaultResolver()
	if settings, err := h.settings.Get(c.UserContext()); err == nil {
		resolver = analysis.NewResolver(settings)
	}

	cats := domain.NormalizeCategories(req.Categories)
	urgency := domain.ParseUrgency(req.Urgency)
	return c.JSON(RecommendationResponse{
		RecommendedAction:  resolver.RecommendedAction(cats, urgency),
		RoutingDestination: resolver.RoutingDestination(cats),
		Escalate:           analysis.ShouldEscalate(domain.PrimaryCategory(cats), urgency, req.Message),
	})
}

// Templates lists canned replies. The category is path-escaped, e.g. Feedback%2FPraise.
func (h *AnalysisHandler) Templates(c *fiber.Ctx) error {
	raw, err := url.PathUnescape(c.Params("category"))
	if err != nil {
		return apperr.InvalidInput("category", "bad escape")
	}
	category := domain.NormalizeCategory(raw)
	return c.JSON(fiber.Map{
		"category":  category,
		"templates": analysis.ResponseTemplatesFor(category),
	})
}

type fillRequest struct {
	Body   string            `json:"body"`
	Values map[string]string `json:"values"`
}

func (h *AnalysisHandler) FillTemplate(c *fiber.Ctx) error {
	var req fillRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"filled":       analysis.FillTemplate(req.Body, req.Values),
		"placeholders": analysis.Placeholders(req.Body),
	})
}
