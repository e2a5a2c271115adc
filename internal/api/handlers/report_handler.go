package handlers

import (
	serviceInterfaces "obetrack/internal/interfaces/service"

	"github.com/gin-gonic/gin"
)

// ReportHandler handles attainment report HTTP requests
type ReportHandler struct {
	reportService serviceInterfaces.ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService serviceInterfaces.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// ListBatches handles GET /reports/batches
func (h *ReportHandler) ListBatches(c *gin.Context) {
	batches, err := h.reportService.BatchesWithPloData(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, batches)
}

// BatchReport handles GET /reports/batches/:id
func (h *ReportHandler) BatchReport(c *gin.Context) {
	batchID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	report, err := h.reportService.BatchReport(c.Request.Context(), batchID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, report)
}

// BatchStatistics handles GET /reports/batches/:id/statistics
func (h *ReportHandler) BatchStatistics(c *gin.Context) {
	batchID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.reportService.BatchStatistics(c.Request.Context(), batchID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, stats)
}

// StudentReport handles GET /reports/students/:rollNo
func (h *ReportHandler) StudentReport(c *gin.Context) {
	rollNo := c.Param("rollNo")
	if rollNo == "" {
		respondBadRequest(c, "Invalid rollNo parameter", nil)
		return
	}

	report, err := h.reportService.StudentReport(c.Request.Context(), rollNo)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, report)
}
