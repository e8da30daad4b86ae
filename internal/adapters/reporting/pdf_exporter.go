// Package reporting renders operator-facing activity reports.
package reporting

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/nfvsec/nmtd/internal/core/domain"
)

// ActivityReport is the material rendered into the PDF: the recent event
// trail plus aggregate counters derived from it.
type ActivityReport struct {
	GeneratedAt time.Time
	Events      []domain.Event

	Mutations  int
	RiskPushes int
	Policies   int
	Failures   int
}

// NewActivityReport builds a report over a slice of events, newest first.
func NewActivityReport(events []domain.Event) *ActivityReport {
	r := &ActivityReport{GeneratedAt: time.Now().UTC(), Events: events}
	for _, e := range events {
		switch e.Action {
		case domain.ActionMutationFired:
			r.Mutations++
		case domain.ActionRiskUpdated:
			r.RiskPushes++
		case domain.ActionPolicyTranslated:
			r.Policies++
		}
		if e.Outcome == domain.OutcomeFailed {
			r.Failures++
		}
	}
	return r
}

// PDFExporter exports activity reports to PDF format
type PDFExporter struct{}

// NewPDFExporter creates a new PDF exporter instance
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// ExportActivityReport generates a PDF from an activity report
func (e *PDFExporter) ExportActivityReport(report *ActivityReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	e.addHeader(pdf, report)
	e.addSummary(pdf, report)
	e.addEventTable(pdf, report)
	e.addFooter(pdf, report)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *PDFExporter) addHeader(pdf *gofpdf.Fpdf, report *ActivityReport) {
	pdf.SetFont("Arial", "B", 22)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 14, "Moving Target Defense Activity", "", 1, "L", false, 0, "")
	pdf.Ln(1)

	pdf.SetFont("Arial", "", 10)
	pdf.SetTextColor(120, 120, 120)
	dateStr := fmt.Sprintf("Generated: %s", report.GeneratedAt.Format("2006-01-02 15:04"))
	pdf.CellFormat(0, 6, dateStr, "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

func (e *PDFExporter) addSummary(pdf *gofpdf.Fpdf, report *ActivityReport) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Activity Overview", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	stats := []struct {
		label string
		value string
		color []int
	}{
		{"Events Recorded", fmt.Sprintf("%d", len(report.Events)), []int{0, 102, 204}},
		{"Mutations Fired", fmt.Sprintf("%d", report.Mutations), []int{0, 102, 204}},
		{"Risk Updates", fmt.Sprintf("%d", report.RiskPushes), []int{255, 149, 0}},
		{"Policies Translated", fmt.Sprintf("%d", report.Policies), []int{52, 199, 89}},
		{"Failures", fmt.Sprintf("%d", report.Failures), []int{220, 53, 69}},
	}

	colWidth := 85.0
	for i, stat := range stats {
		x := 20.0
		if i%2 == 1 {
			x = 105.0
		}
		pdf.SetXY(x, pdf.GetY())

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(50, 7, stat.label+":", "", 0, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 11)
		pdf.SetTextColor(stat.color[0], stat.color[1], stat.color[2])
		pdf.CellFormat(colWidth-50, 7, stat.value, "", 0, "R", false, 0, "")

		if i%2 == 1 {
			pdf.Ln(7)
		}
	}
	pdf.Ln(12)
}

func (e *PDFExporter) addEventTable(pdf *gofpdf.Fpdf, report *ActivityReport) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetTextColor(0, 51, 102)
	pdf.CellFormat(0, 10, "Recent Events", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if len(report.Events) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 7, "No activity recorded", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 9)
	pdf.SetTextColor(60, 60, 60)

	pdf.CellFormat(30, 8, "Time", "1", 0, "C", true, 0, "")
	pdf.CellFormat(38, 8, "Action", "1", 0, "L", true, 0, "")
	pdf.CellFormat(32, 8, "Service", "1", 0, "L", true, 0, "")
	pdf.CellFormat(42, 8, "Characteristic", "1", 0, "L", true, 0, "")
	pdf.CellFormat(18, 8, "Value", "1", 0, "R", true, 0, "")
	pdf.CellFormat(18, 8, "Outcome", "1", 1, "C", true, 0, "")

	pdf.SetFont("Arial", "", 8)
	for _, event := range report.Events {
		if pdf.GetY() > 265 {
			pdf.AddPage()
		}

		pdf.SetTextColor(60, 60, 60)
		pdf.CellFormat(30, 6, event.Timestamp.Format("01-02 15:04:05"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(38, 6, string(event.Action), "1", 0, "L", false, 0, "")
		pdf.CellFormat(32, 6, truncate(event.ServiceID, 18), "1", 0, "L", false, 0, "")
		pdf.CellFormat(42, 6, truncate(event.Characteristic, 26), "1", 0, "L", false, 0, "")
		pdf.CellFormat(18, 6, truncate(event.Value, 10), "1", 0, "R", false, 0, "")

		if event.Outcome == domain.OutcomeFailed {
			pdf.SetTextColor(220, 53, 69)
		} else {
			pdf.SetTextColor(52, 199, 89)
		}
		pdf.CellFormat(18, 6, event.Outcome, "1", 1, "C", false, 0, "")
	}
	pdf.Ln(8)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

func (e *PDFExporter) addFooter(pdf *gofpdf.Fpdf, report *ActivityReport) {
	pdf.SetY(-20)

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(20, pdf.GetY(), 190, pdf.GetY())
	pdf.Ln(3)

	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	footerText := fmt.Sprintf("nmtd activity report | %d events", len(report.Events))
	pdf.CellFormat(0, 5, footerText, "", 1, "C", false, 0, "")
}
