package handlers

import (
	"net/http"

	"bookmybus/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GET /api/bookings/:id/ticket returns the booking e-ticket (inline).
func (h Handler) BookingTicketPDF(c *gin.Context) {
	id, ok := paramID(c, "Booking")
	if !ok {
		return
	}
	pdfBytes, filename, err := h.docsService(c).ETicket(c.Request.Context(), middleware.Requester(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writePDF(c, filename, pdfBytes)
}

// GET /api/bookings/:id/invoice returns the booking invoice (inline).
func (h Handler) BookingInvoicePDF(c *gin.Context) {
	id, ok := paramID(c, "Booking")
	if !ok {
		return
	}
	pdfBytes, filename, err := h.docsService(c).Invoice(c.Request.Context(), middleware.Requester(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	writePDF(c, filename, pdfBytes)
}

func writePDF(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
