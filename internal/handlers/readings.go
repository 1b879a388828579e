package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/greenhouse/internal/models"
	"github.com/soltixdb/greenhouse/internal/services"
)

// CreateReading stores one reading
// POST /api/data
func (h *Handler) CreateReading(c *fiber.Ctx) error {
	var req models.ReadingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_JSON",
				Message: "Failed to parse JSON body",
				Details: map[string]interface{}{"error": err.Error()},
			},
		})
	}

	id, err := h.readings.Create(c.UserContext(), &req, services.IngestSourceHTTP)
	if err != nil {
		return h.respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.CreateReadingResponse{
		Message: "Data inserted successfully",
		ID:      id,
	})
}

// LatestReadings returns the newest readings, newest first
// GET /api/data?limit=1
func (h *Handler) LatestReadings(c *fiber.Ctx) error {
	records, err := h.readings.Latest(c.UserContext(), h.queryLimit(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(records)
}

// History returns the newest readings in chronological order
// GET /api/history?limit=20
func (h *Handler) History(c *fiber.Ctx) error {
	records, err := h.readings.History(c.UserContext(), h.queryLimit(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(records)
}
