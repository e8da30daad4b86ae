package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/nfvsec/nmtd/internal/adapters/reporting"
	"github.com/nfvsec/nmtd/internal/core/ports"
)

const reportEventLimit = 200

// ReportHandler renders the activity trail as a downloadable PDF
type ReportHandler struct {
	Repo     ports.EventRepository
	Exporter *reporting.PDFExporter
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(repo ports.EventRepository, exporter *reporting.PDFExporter) *ReportHandler {
	return &ReportHandler{Repo: repo, Exporter: exporter}
}

// HandleActivityReport generates the PDF activity report.
func (h *ReportHandler) HandleActivityReport(w http.ResponseWriter, r *http.Request) {
	events, err := h.Repo.ListEvents(reportEventLimit)
	if err != nil {
		log.Printf("Failed to fetch events for report: %v", err)
		http.Error(w, "Failed to generate report", http.StatusInternalServerError)
		return
	}

	data, err := h.Exporter.ExportActivityReport(reporting.NewActivityReport(events))
	if err != nil {
		log.Printf("Failed to render report: %v", err)
		http.Error(w, "Failed to generate report", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("nmtd-activity-%s.pdf", time.Now().UTC().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename="+filename)
	w.Write(data)
}
