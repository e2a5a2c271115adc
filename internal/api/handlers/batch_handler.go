package handlers

import (
	"strconv"

	"obetrack/internal/api/middleware"
	"obetrack/internal/domain/academic"
	serviceInterfaces "obetrack/internal/interfaces/service"

	"github.com/gin-gonic/gin"
)

// BatchHandler handles batch lifecycle HTTP requests
type BatchHandler struct {
	batchService   serviceInterfaces.BatchService
	studentService serviceInterfaces.StudentService
}

// NewBatchHandler creates a new batch handler
func NewBatchHandler(batchService serviceInterfaces.BatchService, studentService serviceInterfaces.StudentService) *BatchHandler {
	return &BatchHandler{
		batchService:   batchService,
		studentService: studentService,
	}
}

// Create handles POST /batches
func (h *BatchHandler) Create(c *gin.Context) {
	var req academic.CreateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	batch, err := h.batchService.Create(c.Request.Context(), middleware.PrincipalFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, batch)
}

// Get handles GET /batches/:id
func (h *BatchHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	batch, err := h.batchService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, batch)
}

// List handles GET /batches
func (h *BatchHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	batches, total, err := h.batchService.List(c.Request.Context(), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, batches, ListMeta{Page: page, Limit: limit, Total: total})
}

// Update handles PUT /batches/:id
func (h *BatchHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req academic.UpdateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	batch, err := h.batchService.Update(c.Request.Context(), middleware.PrincipalFrom(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, batch)
}

// Delete handles DELETE /batches/:id
func (h *BatchHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.batchService.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// MoveToNextSemester handles POST /batches/:id/next-semester
func (h *BatchHandler) MoveToNextSemester(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	batch, err := h.batchService.MoveToNextSemester(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, batch)
}

// Graduate handles POST /batches/:id/graduate
func (h *BatchHandler) Graduate(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	batch, err := h.batchService.Graduate(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, batch)
}

// PreRegisterStudents handles POST /batches/:id/students
func (h *BatchHandler) PreRegisterStudents(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req academic.PreRegisterStudentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format", err.Error())
		return
	}
	req.BatchID = id

	created, err := h.studentService.PreRegister(c.Request.Context(), middleware.PrincipalFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, gin.H{"created": created})
}

// ListStudents handles GET /batches/:id/students
func (h *BatchHandler) ListStudents(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	students, err := h.studentService.ListByBatch(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, students)
}

// uintParam parses a positive integer path parameter, responding 400 itself
// when the value is malformed.
func uintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	value, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || value == 0 {
		respondBadRequest(c, "Invalid "+name+" parameter", nil)
		return 0, false
	}
	return uint(value), true
}
