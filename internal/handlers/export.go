package handlers

import (
	"io"

	"biocode/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ExportHandler handles the backup bundle download and restore
type ExportHandler struct {
	export *services.ExportService
}

// NewExportHandler creates a new export handler
func NewExportHandler(export *services.ExportService) *ExportHandler {
	return &ExportHandler{export: export}
}

// Export downloads the full backup bundle
// GET /api/v1/export
func (h *ExportHandler) Export(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	bundle, err := h.export.Export(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="biocode-backup.json"`)
	return c.JSON(bundle)
}

// Import restores a backup bundle. Accepts either a multipart file upload
// under "backup" or a raw JSON body
// POST /api/v1/import
func (h *ExportHandler) Import(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	raw := c.Body()
	if fileHeader, err := c.FormFile("backup"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			return fail(c, err)
		}
		defer file.Close()
		raw, err = io.ReadAll(file)
		if err != nil {
			return fail(c, err)
		}
	}

	if err := h.export.Import(c.Context(), user, raw); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"status": "imported"})
}
