package handlers

import (
	"biocode/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles registration, login and the profile lifecycle
type AuthHandler struct {
	users *services.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Reminder string `json:"reminder"`
}

// Register creates a new account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, token, err := h.users.Register(c.Context(), req.Username, req.Password, req.Reminder)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Login verifies credentials and issues a token
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, token, err := h.users.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

// Reminder returns the password reminder for a username
// GET /api/v1/auth/reminder/:username
func (h *AuthHandler) Reminder(c *fiber.Ctx) error {
	reminder, err := h.users.Reminder(c.Context(), c.Params("username"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"reminder": reminder})
}

// DeleteProfile removes the authenticated user's data and marks the
// account deleted
// DELETE /api/v1/auth/profile
func (h *AuthHandler) DeleteProfile(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	if err := h.users.Delete(c.Context(), user); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "deleted"})
}

// Reactivate revives a deleted account with new credentials
// POST /api/v1/auth/reactivate
func (h *AuthHandler) Reactivate(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	user, token, err := h.users.Reactivate(c.Context(), req.Username, req.Password, req.Reminder)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"user":  user,
		"token": token,
	})
}

// GetDisclaimer reports whether the user accepted the disclaimer
// GET /api/v1/auth/disclaimer
func (h *AuthHandler) GetDisclaimer(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	accepted, err := h.users.DisclaimerAccepted(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"accepted": accepted})
}

// AcceptDisclaimer records the disclaimer acknowledgement
// POST /api/v1/auth/disclaimer
func (h *AuthHandler) AcceptDisclaimer(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	if err := h.users.AcceptDisclaimer(c.Context(), user); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"accepted": true})
}
