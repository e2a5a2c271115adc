package handlers

import (
	"obetrack/internal/api/middleware"
	"obetrack/internal/domain/outcome"
	interfaces "obetrack/internal/interfaces/infrastructure"
	serviceInterfaces "obetrack/internal/interfaces/service"

	"github.com/gin-gonic/gin"
)

// ResultHandler handles PLO result ingestion and recalculation requests
type ResultHandler struct {
	resultService serviceInterfaces.ResultService
	queueService  interfaces.QueueService
}

// NewResultHandler creates a new result handler
func NewResultHandler(resultService serviceInterfaces.ResultService, queueService interfaces.QueueService) *ResultHandler {
	return &ResultHandler{
		resultService: resultService,
		queueService:  queueService,
	}
}

// Upload handles POST /results/upload. The attainment cache for every
// affected student is recomputed before the response is written.
func (h *ResultHandler) Upload(c *gin.Context) {
	var req outcome.UploadCoursePloResultsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	result, err := h.resultService.Upload(c.Request.Context(), middleware.PrincipalFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, result)
}

// RecalculateBatch handles POST /results/recalculate/:id. The rebuild runs on
// the background workers; the response only acknowledges the enqueue.
func (h *ResultHandler) RecalculateBatch(c *gin.Context) {
	batchID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.queueService.EnqueueBatchRecalc(c.Request.Context(), batchID); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"queued": true, "batch_id": batchID})
}
