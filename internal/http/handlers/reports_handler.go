package handlers

import (
	"net/http"

	"bookmybus/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GET /api/reports/dashboard
func (h Handler) Dashboard(c *gin.Context) {
	stats, err := h.reportsService().Dashboard(c.Request.Context(), middleware.Requester(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
