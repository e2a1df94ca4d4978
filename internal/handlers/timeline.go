package handlers

import (
	"io"

	"biocode/internal/document"
	"biocode/internal/models"
	"biocode/internal/services"

	"github.com/gofiber/fiber/v2"
)

// TimelineHandler handles the timeline CRUD, document scanning and batch
// categorization endpoints
type TimelineHandler struct {
	timeline *services.TimelineService
}

// NewTimelineHandler creates a new timeline handler
func NewTimelineHandler(timeline *services.TimelineService) *TimelineHandler {
	return &TimelineHandler{timeline: timeline}
}

// Get returns the stored timeline
// GET /api/v1/timeline
func (h *TimelineHandler) Get(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	data, err := h.timeline.Get(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(data)
}

// Display returns the timeline rendered for display: sorted items with
// cycle dividers and per-event tracks
// GET /api/v1/timeline/display
func (h *TimelineHandler) Display(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	items, tracks, err := h.timeline.Display(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}

	type displayItem struct {
		Kind     string                `json:"kind"`
		Age      int                   `json:"age,omitempty"`
		CycleAge int                   `json:"cycleAge,omitempty"`
		Cycle    int                   `json:"cycle,omitempty"`
		StartAge int                   `json:"startAge,omitempty"`
		EndAge   int                   `json:"endAge,omitempty"`
		Anchor   *models.Anchor        `json:"anchor,omitempty"`
		Event    *models.ConflictEvent `json:"event,omitempty"`
		Tracks   []models.Track        `json:"tracks,omitempty"`
	}

	out := make([]displayItem, 0, len(items))
	for i := range items {
		item := displayItem{
			Kind:     items[i].Kind,
			Age:      items[i].Age,
			CycleAge: items[i].CycleAge,
			Cycle:    items[i].Cycle,
			StartAge: items[i].StartAge,
			EndAge:   items[i].EndAge,
			Anchor:   items[i].Anchor,
			Event:    items[i].Event,
		}
		if items[i].Event != nil {
			item.Tracks = tracks.TracksFor(items[i].Event.ID)
		}
		out = append(out, item)
	}
	return c.JSON(fiber.Map{"items": out})
}

// SetAnchor replaces the timeline anchor
// PUT /api/v1/timeline/anchor
func (h *TimelineHandler) SetAnchor(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var anchor models.Anchor
	if err := c.BodyParser(&anchor); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	data, err := h.timeline.SetAnchor(c.Context(), user, anchor)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(data)
}

// AddEvent appends a conflict event
// POST /api/v1/timeline/events
func (h *TimelineHandler) AddEvent(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var input models.EventInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	data, err := h.timeline.AddEvent(c.Context(), user, input)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(data)
}

// UpdateEvent replaces an event's editable fields
// PUT /api/v1/timeline/events/:id
func (h *TimelineHandler) UpdateEvent(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	var input models.EventInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	data, err := h.timeline.UpdateEvent(c.Context(), user, c.Params("id"), input)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(data)
}

// DeleteEvent removes an event by id
// DELETE /api/v1/timeline/events/:id
func (h *TimelineHandler) DeleteEvent(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	data, err := h.timeline.DeleteEvent(c.Context(), user, c.Params("id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(data)
}

// Scan extracts a timeline from an uploaded document (PDF or image) and
// merges it with the stored one
// POST /api/v1/timeline/scan
func (h *TimelineHandler) Scan(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "A document upload is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return fail(c, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return fail(c, err)
	}

	parts, err := document.ToParts(fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		return fail(c, err)
	}

	merged, err := h.timeline.ScanDocument(c.Context(), user, parts)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(merged)
}

// Categorize runs the AI categorization over all uncategorized events
// POST /api/v1/timeline/categorize
func (h *TimelineHandler) Categorize(c *fiber.Ctx) error {
	user, err := requireUser(c)
	if err != nil {
		return err
	}
	data, err := h.timeline.CategorizeUncategorized(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(data)
}
