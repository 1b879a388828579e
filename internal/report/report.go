// Package report renders a monitor snapshot as a PDF or XLSX document.
package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/soltixdb/greenhouse/internal/analytics/insight"
	"github.com/soltixdb/greenhouse/internal/models"
)

// Content types of the rendered documents
const (
	ContentTypePDF  = "application/pdf"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Options controls report rendering
type Options struct {
	Title    string
	Location *time.Location
}

func (o Options) normalize() Options {
	if o.Title == "" {
		o.Title = "Greenhouse Analysis Report"
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	return o
}

const timeLayout = "2006-01-02 15:04:05 MST"

func cycleTime(snap *models.SnapshotResponse, opts Options) string {
	if snap.CompletedAt.IsZero() {
		return "-"
	}
	return snap.CompletedAt.In(opts.Location).Format(timeLayout)
}

func batchRange(info models.BatchInfo, opts Options) string {
	if info.From == nil || info.To == nil {
		return "no readings"
	}
	return fmt.Sprintf("%s to %s", info.From.In(opts.Location).Format(timeLayout), info.To.In(opts.Location).Format(timeLayout))
}

func cycleHours(v *float64) string {
	if v == nil {
		return "insufficient data"
	}
	return fmt.Sprintf("%.1f", *v)
}

// BuildPDF renders snap as an A4 PDF
func BuildPDF(snap *models.SnapshotResponse, opts Options) ([]byte, error) {
	opts = opts.normalize()

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(opts.Title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(opts.Title))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Cycle: %d", snap.Sequence))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", cycleTime(snap, opts)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Readings: %d (%s), %s",
		snap.Forecast.Batch.Count, snap.Forecast.Batch.Source, batchRange(snap.Forecast.Batch, opts)))
	pdf.Ln(10)

	section := func(title string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, title)
		pdf.Ln(9)
		pdf.SetFont("Arial", "", 10)
	}
	line := func(format string, args ...interface{}) {
		pdf.Cell(0, 6, tr(fmt.Sprintf(format, args...)))
		pdf.Ln(5)
	}
	insights := func(items []insight.Insight) {
		for _, in := range items {
			pdf.MultiCell(0, 5, tr(fmt.Sprintf("[%s] %s", in.Level, in.Message)), "", "L", false)
		}
		pdf.Ln(4)
	}

	// Forecast table
	section("Forecast")
	pdf.SetFont("Arial", "B", 9)
	for _, h := range []struct {
		w    float64
		text string
	}{{40, "Sensor"}, {25, "Current"}, {25, "Next"}, {25, "Trend"}, {30, "Direction"}, {30, "Confidence"}} {
		pdf.CellFormat(h.w, 6, h.text, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
	for _, s := range snap.Forecast.Sensors {
		pdf.CellFormat(40, 6, s.Label, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.1f", s.Current), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%.1f", s.Result.NextValue), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%+.2f", s.Result.Trend), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, string(s.Direction), "1", 0, "C", false, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%.0f%% (%s)", s.Result.Confidence, s.ConfidenceBand), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
	if len(snap.Forecast.Alerts) == 0 {
		line("No forecast alerts.")
	}
	for _, a := range snap.Forecast.Alerts {
		line("[%s] %s", a.Type, a.Message)
	}
	pdf.Ln(4)

	stress := snap.Stress.Summary
	section("Plant Stress")
	line("Comfort score: %.1f%%", stress.ComfortScorePct)
	line("Stress hours: %.2f of %.2f", stress.StressHours, stress.TimeSpanHours)
	line("Primary stressor: %s", stress.PrimaryStressor)
	line("Longest stress interval: %d min", stress.LongestStressMinutes)
	line("Stability index: %.0f", stress.StabilityIndex)
	insights(stress.Insights)

	water := snap.Water.Summary
	section("Water Use")
	line("Daily water use: %.2f L", water.DailyWaterUseLiters)
	line("Irrigation events: %d (%.2f L total)", water.IrrigationEventCount, water.TotalWaterLiters)
	line("Average drying rate: %.2f %%/h", water.AvgDryingRatePctPerHour)
	line("Average cycle time: %s h", cycleHours(water.AvgCycleTimeHours))
	line("Efficiency score: %.0f", water.EfficiencyScore)
	insights(water.Insights)

	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// BuildXLSX renders snap as a workbook with one sheet per analyzer
func BuildXLSX(snap *models.SnapshotResponse, opts Options) ([]byte, error) {
	opts = opts.normalize()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	const (
		summarySheet  = "summary"
		forecastSheet = "forecast"
		eventsSheet   = "irrigation"
	)
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	for _, name := range []string{forecastSheet, eventsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	set := func(sheet string, col string, row int, v interface{}) {
		_ = f.SetCellValue(sheet, fmt.Sprintf("%s%d", col, row), v)
	}

	stress := snap.Stress.Summary
	water := snap.Water.Summary
	rows := [][2]interface{}{
		{opts.Title, ""},
		{"Cycle", snap.Sequence},
		{"Generated", cycleTime(snap, opts)},
		{"Source", snap.Forecast.Batch.Source},
		{"Readings", snap.Forecast.Batch.Count},
		{"Comfort score (%)", stress.ComfortScorePct},
		{"Stress hours", stress.StressHours},
		{"Primary stressor", stress.PrimaryStressor},
		{"Longest stress interval (min)", stress.LongestStressMinutes},
		{"Stability index", stress.StabilityIndex},
		{"Daily water use (L)", water.DailyWaterUseLiters},
		{"Irrigation events", water.IrrigationEventCount},
		{"Average drying rate (%/h)", water.AvgDryingRatePctPerHour},
		{"Average cycle time (h)", cycleHours(water.AvgCycleTimeHours)},
		{"Efficiency score", water.EfficiencyScore},
	}
	for i, r := range rows {
		set(summarySheet, "A", i+1, r[0])
		set(summarySheet, "B", i+1, r[1])
	}
	row := len(rows) + 2
	for _, in := range append(append([]insight.Insight{}, stress.Insights...), water.Insights...) {
		set(summarySheet, "A", row, string(in.Category))
		set(summarySheet, "B", row, in.Message)
		row++
	}

	headers := []string{"Sensor", "Min", "Max", "Current", "Next", "Trend", "Direction", "Confidence"}
	for i, h := range headers {
		set(forecastSheet, string(rune('A'+i)), 1, h)
	}
	for i, s := range snap.Forecast.Sensors {
		r := i + 2
		set(forecastSheet, "A", r, s.Label)
		set(forecastSheet, "B", r, s.Threshold.Min)
		set(forecastSheet, "C", r, s.Threshold.Max)
		set(forecastSheet, "D", r, s.Current)
		set(forecastSheet, "E", r, s.Result.NextValue)
		set(forecastSheet, "F", r, s.Result.Trend)
		set(forecastSheet, "G", r, string(s.Direction))
		set(forecastSheet, "H", r, s.Result.Confidence)
	}
	alertRow := len(snap.Forecast.Sensors) + 3
	for i, a := range snap.Forecast.Alerts {
		set(forecastSheet, "A", alertRow+i, string(a.Type))
		set(forecastSheet, "B", alertRow+i, a.Message)
	}

	for i, h := range []string{"Time", "Rise (%)", "Liters", "Pump minutes"} {
		set(eventsSheet, string(rune('A'+i)), 1, h)
	}
	for i, ev := range water.Events {
		r := i + 2
		set(eventsSheet, "A", r, ev.Time.In(opts.Location).Format(timeLayout))
		set(eventsSheet, "B", r, ev.Rise)
		set(eventsSheet, "C", r, ev.Liters)
		set(eventsSheet, "D", r, ev.PumpMinutes)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
