package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/soltixdb/greenhouse/internal/logging"
	"github.com/soltixdb/greenhouse/internal/models"
	"github.com/soltixdb/greenhouse/internal/report"
)

// ReportPDF handles GET /api/reports/analysis.pdf
func (h *Handler) ReportPDF(c *fiber.Ctx) error {
	return h.sendReport(c, "analysis.pdf", report.ContentTypePDF, report.BuildPDF)
}

// ReportXLSX handles GET /api/reports/analysis.xlsx
func (h *Handler) ReportXLSX(c *fiber.Ctx) error {
	return h.sendReport(c, "analysis.xlsx", report.ContentTypeXLSX, report.BuildXLSX)
}

type reportBuilder func(*models.SnapshotResponse, report.Options) ([]byte, error)

// sendReport renders the newest snapshot, running a fresh analysis when the
// monitor has none yet
func (h *Handler) sendReport(c *fiber.Ctx, filename, contentType string, build reportBuilder) error {
	snap, ok := h.latestSnapshot()
	if !ok {
		var err error
		snap, err = h.analytics.Snapshot(c.UserContext(), h.queryLimit(c))
		if err != nil {
			return h.respondError(c, err)
		}
	}

	data, err := build(snap, report.Options{
		Title:    h.report.Title,
		Location: h.report.Location(),
	})
	if err != nil {
		logging.ErrorCtx(c.UserContext(), "Failed to render report", "file", filename, "error", err)
		return h.respondError(c, err)
	}
	logging.InfoCtx(c.UserContext(), "Report generated", "file", filename, "sequence", snap.Sequence, "bytes", len(data))

	c.Set(fiber.HeaderContentType, contentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(data)
}
