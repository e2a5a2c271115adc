package handlers

import (
	"net/http"

	"obetrack/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ListMeta carries pagination totals on list responses.
type ListMeta struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

func respondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

func respondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

func respondList(c *gin.Context, data interface{}, meta ListMeta) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data, Meta: meta})
}

func respondBadRequest(c *gin.Context, message string, errs interface{}) {
	c.JSON(http.StatusBadRequest, APIResponse{Success: false, Message: message, Errors: errs})
}

// respondError maps a service error onto its HTTP status. Internal errors are
// masked; the structured log keeps the detail.
func respondError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	resp := APIResponse{Success: false, Message: err.Error()}
	if appErr, ok := apperror.AsError(err); ok && len(appErr.Errors) > 0 {
		resp.Errors = appErr.Errors
	}
	if status == http.StatusInternalServerError {
		resp.Message = "Internal server error"
		_ = c.Error(err)
	}
	c.JSON(status, resp)
}
