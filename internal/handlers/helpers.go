package handlers

import (
	"errors"
	"log"

	"biocode/internal/apperrors"

	"github.com/gofiber/fiber/v2"
)

// username pulls the authenticated username the auth middleware stored.
func username(c *fiber.Ctx) (string, bool) {
	name, ok := c.Locals("user_id").(string)
	return name, ok && name != ""
}

// requireUser is the guard every per-user handler starts with.
func requireUser(c *fiber.Ctx) (string, error) {
	name, ok := username(c)
	if !ok {
		return "", c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}
	return name, nil
}

// fail maps a service error onto the right HTTP status and JSON envelope.
func fail(c *fiber.Ctx, err error) error {
	var partial *apperrors.PartialGatewayFailure
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperrors.ErrGateway):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "The AI service is unavailable right now. Please try again."})
	case errors.As(err, &partial):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, apperrors.ErrStorage):
		log.Printf("❌ Storage error: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Storage is unavailable"})
	default:
		log.Printf("❌ Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal server error"})
	}
}
