package handlers

import (
	"errors"
	"net/http"

	"bookmybus/internal/domain"
	"bookmybus/internal/http/middleware"
	"bookmybus/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the body of every non-2xx API response.
type ErrorResponse struct {
	Message   string              `json:"message"`
	Errors    []domain.FieldError `json:"errors,omitempty"`
	RequestID string              `json:"request_id,omitempty"`
}

func respondError(c *gin.Context, status int, message string, fields []domain.FieldError) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Message:   message,
		Errors:    fields,
		RequestID: middleware.GetRequestID(c),
	})
}

// RespondDomainError maps domain errors to HTTP responses. Internal failures
// are logged and answered with an opaque message.
func RespondDomainError(c *gin.Context, err error) {
	switch {
	case domain.IsInternal(err):
		// Checked first so a wrapped cause never decides the status.
		utils.LogError(middleware.GetRequestID(c), "internal", c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, "Server error", nil)
	case domain.IsValidation(err):
		var ve domain.ValidationError
		errors.As(err, &ve)
		msg := ve.Msg
		if msg == "" {
			msg = "Validation failed"
		}
		respondError(c, http.StatusBadRequest, msg, domain.FieldErrors(err))
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, err.Error(), nil)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, err.Error(), nil)
	default:
		utils.LogError(middleware.GetRequestID(c), "http", c.FullPath(), err)
		respondError(c, http.StatusInternalServerError, "Server error", nil)
	}
}
