package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/greenhouse/internal/models"
	"github.com/soltixdb/greenhouse/internal/services"
)

// Forecast handles GET /api/analytics/forecast?limit=100
func (h *Handler) Forecast(c *fiber.Ctx) error {
	resp, err := h.analytics.Forecast(c.UserContext(), h.queryLimit(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(resp)
}

// Stress handles GET /api/analytics/stress?limit=100
func (h *Handler) Stress(c *fiber.Ctx) error {
	resp, err := h.analytics.Stress(c.UserContext(), h.queryLimit(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(resp)
}

// Water handles GET /api/analytics/water?limit=100
func (h *Handler) Water(c *fiber.Ctx) error {
	resp, err := h.analytics.Water(c.UserContext(), h.queryLimit(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(resp)
}

// SensorDetail handles GET /api/analytics/sensors/:sensor?limit=20
func (h *Handler) SensorDetail(c *fiber.Ctx) error {
	limit := h.queryLimit(c)
	if limit == 0 {
		limit = defaultDetailLimit
	}
	resp, err := h.analytics.SensorDetail(c.UserContext(), c.Params("sensor"), limit)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(resp)
}

// SensorChart handles GET /api/analytics/sensors/:sensor/chart?limit=1000&points=200&mode=auto
func (h *Handler) SensorChart(c *fiber.Ctx) error {
	resp, err := h.analytics.SensorChart(c.UserContext(), c.Params("sensor"),
		h.queryLimit(c), c.Query("mode"), c.QueryInt("points", 0))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(resp)
}

// defaultDetailLimit matches the dashboard chart window
const defaultDetailLimit = 20

// Snapshot returns the newest monitor cycle
// GET /api/analytics/snapshot
func (h *Handler) Snapshot(c *fiber.Ctx) error {
	snap, ok := h.latestSnapshot()
	if !ok {
		return h.respondError(c, services.NewServiceError(services.CodeNoSnapshot,
			"No analysis cycle has completed yet"))
	}
	return c.JSON(snap)
}

func (h *Handler) latestSnapshot() (*models.SnapshotResponse, bool) {
	if h.monitor == nil {
		return nil, false
	}
	return h.monitor.Latest()
}
