package handlers

import (
	"context"
	"log"
	"time"

	"biocode/internal/models"
	"biocode/internal/services"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

// TrialHandler exposes the trial gate over REST and a per-second
// websocket countdown
type TrialHandler struct {
	trial *services.TrialService
}

// NewTrialHandler creates a new trial handler
func NewTrialHandler(trial *services.TrialService) *TrialHandler {
	return &TrialHandler{trial: trial}
}

// Status returns the current trial state
// GET /api/v1/trial
func (h *TrialHandler) Status(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	status, err := h.trial.Status(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(status)
}

// Countdown streams the trial countdown once per second until the client
// disconnects or the trial expires.
// GET /api/v1/trial/countdown (websocket)
func (h *TrialHandler) Countdown(conn *websocket.Conn) {
	user, ok := conn.Locals("user_id").(string)
	if !ok || user == "" {
		_ = conn.WriteJSON(fiber.Map{"error": "Authentication required"})
		_ = conn.Close()
		return
	}

	defer conn.Close()

	// Reads only surface client disconnects.
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		status, err := h.trial.Status(context.Background(), user)
		if err != nil {
			log.Printf("⚠️  Trial countdown lookup failed for %s: %v", user, err)
			return
		}
		if err := conn.WriteJSON(status); err != nil {
			return
		}
		if status.State == models.TrialExpired {
			return
		}
		<-ticker.C
	}
}
