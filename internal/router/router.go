package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/soltixdb/greenhouse/internal/config"
	"github.com/soltixdb/greenhouse/internal/handlers"
	"github.com/soltixdb/greenhouse/internal/logging"
	"github.com/soltixdb/greenhouse/internal/metrics"
	"github.com/soltixdb/greenhouse/internal/middleware"
)

// Setup configures all routes and middlewares
func Setup(app *fiber.App, logger *logging.Logger, h *handlers.Handler, cfg config.Config) {
	// Global middlewares
	app.Use(recover.New(recover.Config{EnableStackTrace: cfg.IsDevelopment()}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization,X-API-Key,X-Request-ID",
	}))
	app.Use(logging.FiberMiddleware(logger, logging.DefaultMiddlewareConfig()))

	// Health check and metrics (no auth required)
	app.Get("/health", h.Health)
	app.Get("/metrics", metrics.Handler())

	api := app.Group("/api", middleware.APIKeyAuth(logger, cfg.Auth.APIKeys, cfg.Auth.Enabled))

	// Readings
	api.Post("/data", h.CreateReading)
	api.Get("/data", h.LatestReadings)
	api.Get("/history", h.History)

	// Analytics
	analytics := api.Group("/analytics")
	analytics.Get("/forecast", h.Forecast)
	analytics.Get("/stress", h.Stress)
	analytics.Get("/water", h.Water)
	analytics.Get("/sensors/:sensor", h.SensorDetail)
	analytics.Get("/sensors/:sensor/chart", h.SensorChart)
	analytics.Get("/snapshot", h.Snapshot)

	// Exported reports
	api.Get("/reports/analysis.pdf", h.ReportPDF)
	api.Get("/reports/analysis.xlsx", h.ReportXLSX)

	// 404 handler
	app.Use(h.NotFound)
}

// New creates a new Fiber app with configuration
func New(logger *logging.Logger, h *handlers.Handler, cfg config.Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Greenhouse",
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout,
		WriteTimeout:          cfg.Server.WriteTimeout,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	Setup(app, logger, h, cfg)

	return app
}
