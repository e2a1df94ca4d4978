package handlers

import (
	"encoding/base64"
	"strings"

	"biocode/internal/config"
	"biocode/internal/models"
	"biocode/internal/services"

	"github.com/gofiber/fiber/v2"
)

// MentorHandler handles the mentor chat and its configuration
type MentorHandler struct {
	mentor        *services.MentorService
	personalities *config.Personalities
}

// NewMentorHandler creates a new mentor handler
func NewMentorHandler(mentor *services.MentorService, personalities *config.Personalities) *MentorHandler {
	return &MentorHandler{mentor: mentor, personalities: personalities}
}

// Personalities lists the available mentor personalities
// GET /api/v1/mentor/personalities
func (h *MentorHandler) Personalities(c *fiber.Ctx) error {
	type preset struct {
		Key         string `json:"key"`
		DisplayName string `json:"displayName"`
	}
	all := h.personalities.All()
	out := make([]preset, 0, len(all))
	for _, p := range all {
		out = append(out, preset{Key: p.Key, DisplayName: p.DisplayName})
	}
	return c.JSON(fiber.Map{"personalities": out})
}

// GetConfig returns the user's mentor configuration
// GET /api/v1/mentor/config
func (h *MentorHandler) GetConfig(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	cfg, err := h.mentor.Config(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(cfg)
}

// SetConfig stores the mentor name and personality
// PUT /api/v1/mentor/config
func (h *MentorHandler) SetConfig(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var cfg models.MentorConfig
	if err := c.BodyParser(&cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.mentor.SetConfig(c.Context(), user, cfg); err != nil {
		return fail(c, err)
	}
	return c.JSON(cfg)
}

// Send runs one mentor exchange
// POST /api/v1/mentor/chat
func (h *MentorHandler) Send(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A message is required"})
	}

	turn, err := h.mentor.Send(c.Context(), user, req.Message)
	if err != nil {
		return fail(c, err)
	}

	resp := fiber.Map{
		"reply":           turn.Reply,
		"activeProtocol":  turn.ActiveProtocol,
		"activeTreatment": turn.ActiveTreatment,
		"history":         turn.History,
	}
	if len(turn.Audio) > 0 {
		resp["audio"] = base64.StdEncoding.EncodeToString(turn.Audio)
	}
	return c.JSON(resp)
}

// History returns the stored conversation
// GET /api/v1/mentor/history
func (h *MentorHandler) History(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	history, err := h.mentor.History(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	protocol, treatment, err := h.mentor.ActiveState(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"messages":        history,
		"activeProtocol":  protocol,
		"activeTreatment": treatment,
	})
}

// ClearHistory drops the conversation and active protocol/treatment
// DELETE /api/v1/mentor/history
func (h *MentorHandler) ClearHistory(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	if err := h.mentor.ClearHistory(c.Context(), user); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "cleared"})
}

// UploadHistory replaces the conversation with an uploaded transcript
// POST /api/v1/mentor/history/upload
func (h *MentorHandler) UploadHistory(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := c.BodyParser(&req); err != nil || req.Text == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Transcript text is required"})
	}

	history, err := h.mentor.UploadHistory(c.Context(), user, req.Text)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"messages": history})
}

// DownloadHistory renders the conversation as plain text
// GET /api/v1/mentor/history/download
func (h *MentorHandler) DownloadHistory(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	text, err := h.mentor.DownloadHistory(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="mentor-conversation.txt"`)
	return c.SendString(text)
}

// GetAudio returns the spoken-replies flag
// GET /api/v1/mentor/audio
func (h *MentorHandler) GetAudio(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	enabled, err := h.mentor.AudioEnabled(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"enabled": enabled})
}

// SetAudio stores the spoken-replies flag
// PUT /api/v1/mentor/audio
func (h *MentorHandler) SetAudio(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.mentor.SetAudioEnabled(c.Context(), user, req.Enabled); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"enabled": req.Enabled})
}
