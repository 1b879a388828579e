package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/greenhouse/internal/config"
	"github.com/soltixdb/greenhouse/internal/logging"
	"github.com/soltixdb/greenhouse/internal/models"
	"github.com/soltixdb/greenhouse/internal/services"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Handler contains all HTTP handlers
type Handler struct {
	logger    *logging.Logger
	readings  *services.ReadingService
	analytics *services.AnalyticsService
	monitor   *services.Monitor
	report    config.ReportConfig
}

// New creates a new handler instance. monitor may be nil when the periodic
// analysis loop is disabled.
func New(logger *logging.Logger, readings *services.ReadingService,
	analytics *services.AnalyticsService, monitor *services.Monitor,
	reportCfg config.ReportConfig,
) *Handler {
	return &Handler{
		logger:    logger,
		readings:  readings,
		analytics: analytics,
		monitor:   monitor,
		report:    reportCfg,
	}
}

// statusFor maps service error codes to HTTP statuses
func statusFor(code string) int {
	switch code {
	case services.CodeMissingFields, services.CodeInvalidReading, services.CodeInvalidParameter:
		return fiber.StatusBadRequest
	case services.CodeUnknownSensor, services.CodeNoSnapshot:
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

// respondError renders err as a models.ErrorResponse
func (h *Handler) respondError(c *fiber.Ctx, err error) error {
	var svcErr *services.ServiceError
	if errors.As(err, &svcErr) {
		return c.Status(statusFor(svcErr.Code)).JSON(models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    svcErr.Code,
				Message: svcErr.Message,
				Details: svcErr.Details,
			},
		})
	}

	h.logger.WithContext(c.UserContext()).Error("Unhandled service error", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "INTERNAL_ERROR",
			Message: err.Error(),
		},
	})
}

// queryLimit reads ?limit, treating garbage and non-positive values as 0 so the
// service default applies
func (h *Handler) queryLimit(c *fiber.Ctx) int {
	raw := c.Query("limit")
	if raw == "" {
		return 0
	}
	limit := c.QueryInt("limit", 0)
	if limit <= 0 {
		h.logger.Debug("Ignoring invalid limit parameter", "limit", raw)
		return 0
	}
	return limit
}
