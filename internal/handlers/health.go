package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/greenhouse/internal/logging"
	"github.com/soltixdb/greenhouse/internal/models"
	"github.com/soltixdb/greenhouse/internal/utils"
)

// Health handles health check requests
func (h *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), utils.StoreQueryTimeout)
	defer cancel()

	status := fiber.StatusOK
	resp := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Version:   Version,
		Checks:    map[string]string{"store": "ok"},
	}

	if err := h.readings.Ping(ctx); err != nil {
		logging.WarnCtx(c.UserContext(), "Health check failed", "check", "store", "error", err)
		status = fiber.StatusServiceUnavailable
		resp.Status = "unhealthy"
		resp.Checks["store"] = err.Error()
	}

	if h.monitor != nil {
		if snap, ok := h.monitor.Latest(); ok {
			resp.Checks["monitor"] = "cycle " + time.Since(snap.CompletedAt).Round(time.Second).String() + " ago"
		} else {
			resp.Checks["monitor"] = "pending"
		}
	}

	return c.Status(status).JSON(resp)
}

// NotFound handles 404 errors
func (h *Handler) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "NOT_FOUND",
			Message: "Route not found",
			Path:    c.Path(),
		},
	})
}
