package handlers

import (
	"biocode/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AwarenessHandler handles the self-awareness protocol
type AwarenessHandler struct {
	awareness *services.AwarenessService
}

// NewAwarenessHandler creates a new awareness handler
func NewAwarenessHandler(awareness *services.AwarenessService) *AwarenessHandler {
	return &AwarenessHandler{awareness: awareness}
}

// Get returns the stored protocol
// GET /api/v1/awareness
func (h *AwarenessHandler) Get(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	protocol, err := h.awareness.Get(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(protocol)
}

// Generate builds and stores the protocol
// POST /api/v1/awareness
func (h *AwarenessHandler) Generate(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	protocol, err := h.awareness.Generate(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(protocol)
}
