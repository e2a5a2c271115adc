package handlers

import (
	"obetrack/internal/api/middleware"
	"obetrack/internal/domain/academic"
	serviceInterfaces "obetrack/internal/interfaces/service"

	"github.com/gin-gonic/gin"
)

// OfferingHandler handles course offering HTTP requests
type OfferingHandler struct {
	offeringService serviceInterfaces.OfferingService
}

// NewOfferingHandler creates a new course offering handler
func NewOfferingHandler(offeringService serviceInterfaces.OfferingService) *OfferingHandler {
	return &OfferingHandler{
		offeringService: offeringService,
	}
}

// Create handles POST /offerings
func (h *OfferingHandler) Create(c *gin.Context) {
	var req academic.CreateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	offering, err := h.offeringService.Create(c.Request.Context(), middleware.PrincipalFrom(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondCreated(c, offering)
}

// Get handles GET /offerings/:id
func (h *OfferingHandler) Get(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	offering, err := h.offeringService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, offering)
}

// List handles GET /offerings
func (h *OfferingHandler) List(c *gin.Context) {
	var query academic.OfferingQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondBadRequest(c, "Invalid query parameters", err.Error())
		return
	}

	offerings, total, err := h.offeringService.List(c.Request.Context(), &query)
	if err != nil {
		respondError(c, err)
		return
	}
	respondList(c, offerings, ListMeta{Page: query.Page, Limit: query.Limit, Total: total})
}

// Update handles PUT /offerings/:id
func (h *OfferingHandler) Update(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	var req academic.UpdateOfferingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request format", err.Error())
		return
	}

	offering, err := h.offeringService.Update(c.Request.Context(), middleware.PrincipalFrom(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, offering)
}

// Delete handles DELETE /offerings/:id
func (h *OfferingHandler) Delete(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	if err := h.offeringService.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"deleted": true})
}

// ListByInstructor handles GET /offerings/instructor/:id
func (h *OfferingHandler) ListByInstructor(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	offerings, err := h.offeringService.ListByInstructor(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, offerings)
}

// ListBySemester handles GET /offerings/semester/:id
func (h *OfferingHandler) ListBySemester(c *gin.Context) {
	id, ok := uintParam(c, "id")
	if !ok {
		return
	}

	offerings, err := h.offeringService.ListBySemester(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, offerings)
}
