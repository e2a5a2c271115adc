package handlers

import (
	"obetrack/internal/api/middleware"
	"obetrack/internal/domain/outcome"
	serviceInterfaces "obetrack/internal/interfaces/service"

	"github.com/gin-gonic/gin"
)

// OutcomeHandler handles CLO, PLO and CLO-PLO mapping HTTP requests
type OutcomeHandler struct {
	cloService     serviceInterfaces.CloService
	ploService     serviceInterfaces.PloService
	mappingService serviceInterfaces.MappingService
}

// NewOutcomeHandler creates a new learning outcome handler
func NewOutcomeHandler(
	cloService serviceInterfaces.CloService,
	ploService serviceInterfaces.PloService,
	mappingService serviceInterfaces.MappingService,
) *OutcomeHandler {
	return &OutcomeHandler{
		cloService:     cloService,
		ploService:     ploService,
		mappingService: mappingService,
	}
}

// CreateClo handles POST /clos
func (h *OutcomeHandler) CreateClo(c *gin.Context) {
	var req outcome.CreateCloRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	clo, err := h.cloService.Create(c.Request.Context(), middleware.PrincipalFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, clo)
}

// GetClo handles GET /clos/:id
func (h *OutcomeHandler) GetClo(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	clo, err := h.cloService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, clo)
}

// ListClosByCourse handles GET /courses/:id/clos
func (h *OutcomeHandler) ListClosByCourse(c *gin.Context) {
	courseID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	clos, err := h.cloService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, clos)
}

// UpdateClo handles PUT /clos/:id
func (h *OutcomeHandler) UpdateClo(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req outcome.UpdateCloRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	clo, err := h.cloService.Update(c.Request.Context(), middleware.PrincipalFrom(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, clo)
}

// DeleteClo handles DELETE /clos/:id
func (h *OutcomeHandler) DeleteClo(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.cloService.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// CreatePlo handles POST /plos
func (h *OutcomeHandler) CreatePlo(c *gin.Context) {
	var req outcome.CreatePloRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	plo, err := h.ploService.Create(c.Request.Context(), middleware.PrincipalFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, plo)
}

// GetPlo handles GET /plos/:id
func (h *OutcomeHandler) GetPlo(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	plo, err := h.ploService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, plo)
}

// ListPlosByProgram handles GET /programs/:id/plos
func (h *OutcomeHandler) ListPlosByProgram(c *gin.Context) {
	programID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	plos, err := h.ploService.ListByProgram(c.Request.Context(), programID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, plos)
}

// ReplaceMappings handles POST /mappings/bulk
func (h *OutcomeHandler) ReplaceMappings(c *gin.Context) {
	var req outcome.BulkCloPloMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	written, err := h.mappingService.BulkReplace(c.Request.Context(), middleware.PrincipalFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, gin.H{"mappings_written": written})
}

// ListMappingsByCourse handles GET /courses/:id/mappings
func (h *OutcomeHandler) ListMappingsByCourse(c *gin.Context) {
	courseID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	mappings, err := h.mappingService.ListByCourse(c.Request.Context(), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, mappings)
}

// DeleteMapping handles DELETE /mappings/:id
func (h *OutcomeHandler) DeleteMapping(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.mappingService.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// DeleteCourseMappings handles DELETE /courses/:id/mappings
func (h *OutcomeHandler) DeleteCourseMappings(c *gin.Context) {
	courseID, ok := uintParam(c, "id")
	if !ok {
		return
	}

	deleted, err := h.mappingService.DeleteAllForCourse(c.Request.Context(), middleware.PrincipalFrom(c), courseID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": deleted})
}
