package handlers

import (
	"strings"

	"biocode/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AnalysisHandler handles track analysis and the diagnostician chat
type AnalysisHandler struct {
	analysis *services.AnalysisService
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(analysis *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis}
}

// Analyze runs the full categorize + tracks + prediction pipeline
// POST /api/v1/analysis
func (h *AnalysisHandler) Analyze(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	analysis, err := h.analysis.Analyze(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(analysis)
}

// Get returns the stored analysis
// GET /api/v1/analysis
func (h *AnalysisHandler) Get(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	analysis, err := h.analysis.Get(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(analysis)
}

// Conversation returns the diagnostician chat history
// GET /api/v1/analysis/conversation
func (h *AnalysisHandler) Conversation(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	history, err := h.analysis.Conversation(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"messages": history})
}

// Ask runs one diagnostician turn
// POST /api/v1/analysis/ask
func (h *AnalysisHandler) Ask(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A query is required"})
	}

	answer, err := h.analysis.Ask(c.Context(), user, req.Query)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"answer": answer})
}
