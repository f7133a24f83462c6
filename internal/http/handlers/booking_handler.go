package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"bookmybus/internal/domain/models"
	"bookmybus/internal/http/middleware"
	"bookmybus/internal/services"

	"github.com/gin-gonic/gin"
)

// Stringish accepts a JSON string, number or null. Clients send ids and
// numeric form fields either way.
type Stringish string

func (s *Stringish) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case string(b) == "null" || len(b) == 0:
		*s = ""
		return nil
	case len(b) >= 2 && b[0] == '"' && b[len(b)-1] == '"':
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*s = Stringish(str)
		return nil
	default:
		*s = Stringish(strings.Trim(string(b), `"`))
		return nil
	}
}

func (s Stringish) String() string { return string(s) }

// Int returns the value as an int64, or 0 when it is not a whole number.
func (s Stringish) Int() int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(string(s)), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

type passengerRequest struct {
	Name       string    `json:"name"`
	Age        Stringish `json:"age"`
	Gender     string    `json:"gender"`
	SeatNumber Stringish `json:"seatNumber"`
}

type createBookingRequest struct {
	BusID         Stringish          `json:"busId"`
	Passengers    []passengerRequest `json:"passengers"`
	PaymentMethod string             `json:"paymentMethod"`
	PaymentStatus string             `json:"paymentStatus"`
	ContactNumber string             `json:"contactNumber"`
	Email         string             `json:"email"`
}

func (r createBookingRequest) input() services.CreateBookingInput {
	in := services.CreateBookingInput{
		BusID:         r.BusID.Int(),
		Passengers:    make([]models.Passenger, 0, len(r.Passengers)),
		PaymentMethod: models.PaymentMethod(strings.TrimSpace(r.PaymentMethod)),
		PaymentStatus: models.PaymentStatus(strings.TrimSpace(r.PaymentStatus)),
		ContactNumber: r.ContactNumber,
		Email:         r.Email,
	}
	for _, p := range r.Passengers {
		in.Passengers = append(in.Passengers, models.Passenger{
			Name:       p.Name,
			Age:        int(p.Age.Int()),
			Gender:     models.Gender(strings.TrimSpace(p.Gender)),
			SeatNumber: int(p.SeatNumber.Int()),
		})
	}
	return in
}

type statusRequest struct {
	BookingStatus string `json:"bookingStatus"`
	PaymentStatus string `json:"paymentStatus"`
}

// override treats empty values as absent.
func (r statusRequest) override() models.StatusOverride {
	var o models.StatusOverride
	if v := models.BookingStatus(strings.TrimSpace(r.BookingStatus)); v != "" {
		o.BookingStatus = &v
	}
	if v := models.PaymentStatus(strings.TrimSpace(r.PaymentStatus)); v != "" {
		o.PaymentStatus = &v
	}
	return o
}

// POST /api/bookings
func (h Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.bookingService(c).Create(c.Request.Context(), middleware.Requester(c), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GET /api/bookings
func (h Handler) ListMyBookings(c *gin.Context) {
	list, err := h.bookingService(c).ListMine(c.Request.Context(), middleware.Requester(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/bookings/admin/all
func (h Handler) ListAllBookings(c *gin.Context) {
	list, err := h.bookingService(c).ListAll(c.Request.Context(), middleware.Requester(c))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// GET /api/bookings/:id
func (h Handler) GetBooking(c *gin.Context) {
	id, ok := paramID(c, "Booking")
	if !ok {
		return
	}
	b, err := h.bookingService(c).Get(c.Request.Context(), middleware.Requester(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PUT /api/bookings/:id/cancel
func (h Handler) CancelBooking(c *gin.Context) {
	id, ok := paramID(c, "Booking")
	if !ok {
		return
	}
	b, err := h.bookingService(c).Cancel(c.Request.Context(), middleware.Requester(c), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PUT /api/bookings/:id/status
func (h Handler) UpdateBookingStatus(c *gin.Context) {
	id, ok := paramID(c, "Booking")
	if !ok {
		return
	}
	var req statusRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.bookingService(c).OverrideStatus(c.Request.Context(), middleware.Requester(c), id, req.override())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
