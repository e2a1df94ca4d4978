package handlers

import (
	"biocode/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ReportHandler handles report generation, draft editing and exports
type ReportHandler struct {
	report *services.ReportService
	export *services.ExportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(report *services.ReportService, export *services.ExportService) *ReportHandler {
	return &ReportHandler{report: report, export: export}
}

// Generate builds the report from the current timeline + analysis
// POST /api/v1/report
func (h *ReportHandler) Generate(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	report, err := h.report.Generate(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(report)
}

// Get returns the committed report
// GET /api/v1/report
func (h *ReportHandler) Get(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	report, err := h.report.Get(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(report)
}

// BeginEdit starts a draft editing session
// POST /api/v1/report/edit
func (h *ReportHandler) BeginEdit(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	draft, err := h.report.BeginEdit(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(draft)
}

// Save commits the draft
// POST /api/v1/report/edit/save
func (h *ReportHandler) Save(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	report, err := h.report.Save(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(report)
}

// Cancel discards the draft
// POST /api/v1/report/edit/cancel
func (h *ReportHandler) Cancel(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	h.report.Cancel(user)
	return c.JSON(fiber.Map{"status": "cancelled"})
}

// editRequest addresses one mutation of the draft. Exactly one group of
// fields applies depending on the endpoint.
type editRequest struct {
	Field   string `json:"field"`
	Section string `json:"section"`
	Index   int    `json:"index"`
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Value   string `json:"value"`
}

// EditField sets a scalar field on the draft
// PUT /api/v1/report/edit/field
func (h *ReportHandler) EditField(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req editRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.report.EditField(user, req.Field, req.Value); err != nil {
		return fail(c, err)
	}
	return h.draft(c, user)
}

// AddListItem appends to a list section of the draft
// POST /api/v1/report/edit/list
func (h *ReportHandler) AddListItem(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req editRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.report.AddListItem(user, req.Section, req.Value); err != nil {
		return fail(c, err)
	}
	return h.draft(c, user)
}

// EditListItem replaces one list item of the draft
// PUT /api/v1/report/edit/list
func (h *ReportHandler) EditListItem(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req editRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.report.EditListItem(user, req.Section, req.Index, req.Value); err != nil {
		return fail(c, err)
	}
	return h.draft(c, user)
}

// DeleteListItem removes one list item of the draft
// DELETE /api/v1/report/edit/list
func (h *ReportHandler) DeleteListItem(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req editRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.report.DeleteListItem(user, req.Section, req.Index); err != nil {
		return fail(c, err)
	}
	return h.draft(c, user)
}

// AddTableRow appends an empty row to one of the draft's tables
// POST /api/v1/report/edit/table/:table
func (h *ReportHandler) AddTableRow(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	switch c.Params("table") {
	case "timeline":
		err = h.report.AddTimelineRow(user)
	case "triggers":
		err = h.report.AddTriggerRow(user)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown table"})
	}
	if err != nil {
		return fail(c, err)
	}
	return h.draft(c, user)
}

// EditTableCell sets one cell of a draft table
// PUT /api/v1/report/edit/table/:table
func (h *ReportHandler) EditTableCell(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req editRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	switch c.Params("table") {
	case "timeline":
		err = h.report.EditTimelineCell(user, req.Row, req.Column, req.Value)
	case "triggers":
		err = h.report.EditTriggerCell(user, req.Row, req.Column, req.Value)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown table"})
	}
	if err != nil {
		return fail(c, err)
	}
	return h.draft(c, user)
}

// DeleteTableRow removes one row of a draft table
// DELETE /api/v1/report/edit/table/:table
func (h *ReportHandler) DeleteTableRow(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	var req editRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	switch c.Params("table") {
	case "timeline":
		err = h.report.DeleteTimelineRow(user, req.Row)
	case "triggers":
		err = h.report.DeleteTriggerRow(user, req.Row)
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Unknown table"})
	}
	if err != nil {
		return fail(c, err)
	}
	return h.draft(c, user)
}

func (h *ReportHandler) draft(c *fiber.Ctx, user string) error {
	draft, err := h.report.Draft(user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(draft)
}

// ExportXLSX downloads the committed report as a spreadsheet
// GET /api/v1/report/export/xlsx
func (h *ReportHandler) ExportXLSX(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	data, err := h.export.ReportXLSX(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="biocode-report.xlsx"`)
	return c.Send(data)
}

// ExportHTML downloads the committed report as a standalone HTML page
// GET /api/v1/report/export/html
func (h *ReportHandler) ExportHTML(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	data, err := h.export.ReportHTML(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="biocode-report.html"`)
	return c.Send(data)
}
