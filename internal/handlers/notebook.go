package handlers

import (
	"biocode/internal/models"
	"biocode/internal/services"

	"github.com/gofiber/fiber/v2"
)

// NotebookHandler handles symptom tracking and the dashboard
type NotebookHandler struct {
	notebook *services.NotebookService
}

// NewNotebookHandler creates a new notebook handler
func NewNotebookHandler(notebook *services.NotebookService) *NotebookHandler {
	return &NotebookHandler{notebook: notebook}
}

// List returns all symptom entries
// GET /api/v1/notebook
func (h *NotebookHandler) List(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	entries, err := h.notebook.Entries(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// Add creates a symptom entry
// POST /api/v1/notebook
func (h *NotebookHandler) Add(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var entry models.SymptomEntry
	if err := c.BodyParser(&entry); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	entries, err := h.notebook.Add(c.Context(), user, entry)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"entries": entries})
}

// Update edits a symptom entry
// PUT /api/v1/notebook/:id
func (h *NotebookHandler) Update(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var entry models.SymptomEntry
	if err := c.BodyParser(&entry); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	entries, err := h.notebook.Update(c.Context(), user, c.Params("id"), entry)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// Delete removes a symptom entry
// DELETE /api/v1/notebook/:id
func (h *NotebookHandler) Delete(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	entries, err := h.notebook.Delete(c.Context(), user, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// ResetScript generates a guided reset script for one entry
// POST /api/v1/notebook/:id/reset-script
func (h *NotebookHandler) ResetScript(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	script, err := h.notebook.ResetScript(c.Context(), user, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"script": script})
}

// ThoughtReframing generates a reframing exercise for one entry
// POST /api/v1/notebook/:id/reframing
func (h *NotebookHandler) ThoughtReframing(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	text, err := h.notebook.ThoughtReframing(c.Context(), user, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"reframing": text})
}

// Dashboard returns the sanitized rating-over-time chart series
// GET /api/v1/notebook/dashboard
func (h *NotebookHandler) Dashboard(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	series, err := h.notebook.Dashboard(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(series)
}

// Insight asks the AI for a symptom progress summary
// POST /api/v1/notebook/insight
func (h *NotebookHandler) Insight(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	insight, err := h.notebook.Insight(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"insight": insight})
}
