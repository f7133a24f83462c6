package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"bookmybus/internal/domain"
	"bookmybus/internal/domain/models"
	"bookmybus/internal/http/middleware"
	"bookmybus/internal/services"
	"bookmybus/internal/utils"

	"github.com/gin-gonic/gin"
)

type busRequest struct {
	BusNumber     string   `json:"busNumber"`
	BusName       string   `json:"busName"`
	Operator      string   `json:"operator"`
	From          string   `json:"from"`
	To            string   `json:"to"`
	DepartureTime string   `json:"departureTime"`
	ArrivalTime   string   `json:"arrivalTime"`
	Date          string   `json:"date"`
	TotalSeats    int      `json:"totalSeats"`
	Fare          float64  `json:"fare"`
	BusType       string   `json:"busType"`
	Amenities     []string `json:"amenities"`
}

func (r busRequest) input() services.BusInput {
	return services.BusInput{
		BusNumber:     r.BusNumber,
		BusName:       r.BusName,
		Operator:      r.Operator,
		From:          r.From,
		To:            r.To,
		DepartureTime: r.DepartureTime,
		ArrivalTime:   r.ArrivalTime,
		Date:          r.Date,
		TotalSeats:    r.TotalSeats,
		Fare:          r.Fare,
		BusType:       models.BusType(strings.TrimSpace(r.BusType)),
		Amenities:     r.Amenities,
	}
}

// busPatch carries only the keys present in the body.
type busPatch struct {
	BusNumber      *string   `json:"busNumber"`
	BusName        *string   `json:"busName"`
	Operator       *string   `json:"operator"`
	From           *string   `json:"from"`
	To             *string   `json:"to"`
	DepartureTime  *string   `json:"departureTime"`
	ArrivalTime    *string   `json:"arrivalTime"`
	Date           *string   `json:"date"`
	TotalSeats     *int      `json:"totalSeats"`
	AvailableSeats *int      `json:"availableSeats"`
	Fare           *float64  `json:"fare"`
	BusType        *string   `json:"busType"`
	Amenities      *[]string `json:"amenities"`
	IsActive       *bool     `json:"isActive"`
}

func (p busPatch) update() (models.BusUpdate, error) {
	u := models.BusUpdate{
		BusNumber:      p.BusNumber,
		BusName:        p.BusName,
		Operator:       p.Operator,
		From:           p.From,
		To:             p.To,
		DepartureTime:  p.DepartureTime,
		ArrivalTime:    p.ArrivalTime,
		TotalSeats:     p.TotalSeats,
		AvailableSeats: p.AvailableSeats,
		Fare:           p.Fare,
		Amenities:      p.Amenities,
		IsActive:       p.IsActive,
	}
	if p.Date != nil {
		d, err := utils.ParseDate(*p.Date)
		if err != nil {
			return u, domain.ValidationError{Field: "date", Msg: "Invalid date", Err: err}
		}
		u.Date = &d
	}
	if p.BusType != nil {
		t := models.BusType(strings.TrimSpace(*p.BusType))
		u.BusType = &t
	}
	return u, nil
}

// GET /api/buses/search?from=&to=&date=
func (h Handler) SearchBuses(c *gin.Context) {
	buses, err := h.busService(c).Search(c.Request.Context(), c.Query("from"), c.Query("to"), c.Query("date"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, buses)
}

// GET /api/buses
// Admins may pass includeInactive=true.
func (h Handler) ListBuses(c *gin.Context) {
	include, _ := strconv.ParseBool(c.Query("includeInactive"))
	include = include && middleware.Requester(c).IsAdmin()
	buses, err := h.busService(c).List(c.Request.Context(), include)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, buses)
}

// GET /api/buses/:id
func (h Handler) GetBus(c *gin.Context) {
	id, ok := paramID(c, "Bus")
	if !ok {
		return
	}
	b, err := h.busService(c).Get(c.Request.Context(), id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /api/buses
func (h Handler) CreateBus(c *gin.Context) {
	var req busRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	b, err := h.busService(c).Create(c.Request.Context(), middleware.Requester(c), req.input())
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PUT /api/buses/:id
func (h Handler) UpdateBus(c *gin.Context) {
	id, ok := paramID(c, "Bus")
	if !ok {
		return
	}
	var req busPatch
	if !BindJSONOrError(c, &req) {
		return
	}
	u, err := req.update()
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	b, err := h.busService(c).Update(c.Request.Context(), middleware.Requester(c), id, u)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// DELETE /api/buses/:id
func (h Handler) DeleteBus(c *gin.Context) {
	id, ok := paramID(c, "Bus")
	if !ok {
		return
	}
	if err := h.busService(c).Delete(c.Request.Context(), middleware.Requester(c), id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bus removed"})
}
