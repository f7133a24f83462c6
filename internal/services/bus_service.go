package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"bookmybus/internal/domain"
	"bookmybus/internal/domain/models"
	"bookmybus/internal/utils"
)

type BusService struct {
	Buses     BusStore
	Now       func() time.Time
	RequestID string
}

func (s BusService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Search finds buses on a route for one calendar day. All three inputs are
// required; date is YYYY-MM-DD.
func (s BusService) Search(ctx context.Context, from, to, date string) ([]models.Bus, error) {
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)
	date = strings.TrimSpace(date)
	if from == "" || to == "" || date == "" {
		return nil, domain.ValidationError{Msg: "Please provide from, to, and date parameters"}
	}
	day, err := utils.ParseDate(date)
	if err != nil {
		return nil, domain.ValidationError{Field: "date", Msg: "Invalid date", Err: err}
	}
	return busStore(s.Buses).Search(ctx, models.SearchQuery{From: from, To: to, Day: day})
}

// List returns active buses; admins may include inactive ones.
func (s BusService) List(ctx context.Context, includeInactive bool) ([]models.Bus, error) {
	return busStore(s.Buses).List(ctx, !includeInactive)
}

func (s BusService) Get(ctx context.Context, id int64) (models.Bus, error) {
	if id <= 0 {
		return models.Bus{}, domain.NotFoundError{Resource: "Bus"}
	}
	return busStore(s.Buses).GetByID(ctx, id)
}

type BusInput struct {
	BusNumber     string
	BusName       string
	Operator      string
	From          string
	To            string
	DepartureTime string
	ArrivalTime   string
	Date          string
	TotalSeats    int
	Fare          float64
	BusType       models.BusType
	Amenities     []string
}

func (s BusService) Create(ctx context.Context, r domain.Requester, in BusInput) (models.Bus, error) {
	if err := domain.RequireAdmin(r); err != nil {
		return models.Bus{}, err
	}

	var fields []domain.FieldError
	add := func(field, msg string) {
		fields = append(fields, domain.FieldError{Field: field, Msg: msg})
	}
	required := []struct{ field, value, msg string }{
		{"busNumber", in.BusNumber, "Bus number is required"},
		{"busName", in.BusName, "Bus name is required"},
		{"operator", in.Operator, "Operator is required"},
		{"from", in.From, "From location is required"},
		{"to", in.To, "To location is required"},
		{"departureTime", in.DepartureTime, "Departure time is required"},
		{"arrivalTime", in.ArrivalTime, "Arrival time is required"},
		{"date", in.Date, "Date is required"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			add(f.field, f.msg)
		}
	}
	var day time.Time
	if strings.TrimSpace(in.Date) != "" {
		d, err := utils.ParseDate(in.Date)
		if err != nil {
			add("date", "Date must be YYYY-MM-DD")
		}
		day = d
	}
	if in.Fare <= 0 {
		add("fare", "Fare must be a positive number")
	}
	if in.TotalSeats < 0 {
		add("totalSeats", "Total seats must be positive")
	}
	if in.BusType == "" {
		in.BusType = models.BusTypeNonAC
	} else if !in.BusType.Valid() {
		add("busType", "Bus type must be AC, Non-AC, Sleeper or Luxury")
	}
	for _, a := range in.Amenities {
		if !models.ValidAmenity(a) {
			add("amenities", fmt.Sprintf("Unknown amenity %q", a))
		}
	}
	if len(fields) > 0 {
		return models.Bus{}, domain.ValidationError{Msg: "Validation failed", Fields: fields}
	}

	seats := in.TotalSeats
	if seats == 0 {
		seats = models.DefaultTotalSeats
	}
	amenities := in.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	b, err := busStore(s.Buses).Create(ctx, models.Bus{
		BusNumber:      strings.TrimSpace(in.BusNumber),
		BusName:        strings.TrimSpace(in.BusName),
		Operator:       strings.TrimSpace(in.Operator),
		From:           utils.NormalizeSpace(in.From),
		To:             utils.NormalizeSpace(in.To),
		DepartureTime:  strings.TrimSpace(in.DepartureTime),
		ArrivalTime:    strings.TrimSpace(in.ArrivalTime),
		Date:           day,
		TotalSeats:     seats,
		AvailableSeats: seats,
		Fare:           utils.RoundMoney(in.Fare),
		BusType:        in.BusType,
		Amenities:      amenities,
		IsActive:       true,
		CreatedAt:      s.now(),
	})
	if err != nil {
		return models.Bus{}, err
	}
	utils.LogEvent(s.RequestID, "buses", "create", fmt.Sprintf("bus_id=%d bus_number=%s", b.ID, b.BusNumber))
	return b, nil
}

// Update applies a partial change. The merged record must keep
// 0 <= availableSeats <= totalSeats.
func (s BusService) Update(ctx context.Context, r domain.Requester, id int64, u models.BusUpdate) (models.Bus, error) {
	if err := domain.RequireAdmin(r); err != nil {
		return models.Bus{}, err
	}
	current, err := busStore(s.Buses).GetByID(ctx, id)
	if err != nil {
		return models.Bus{}, err
	}

	next := u.Apply(current)
	var fields []domain.FieldError
	add := func(field, msg string) {
		fields = append(fields, domain.FieldError{Field: field, Msg: msg})
	}
	if u.Fare != nil && next.Fare <= 0 {
		add("fare", "Fare must be a positive number")
	}
	held := current.TotalSeats - current.AvailableSeats
	switch {
	case u.TotalSeats != nil && next.TotalSeats <= 0:
		add("totalSeats", "Total seats must be positive")
	case u.TotalSeats != nil && u.AvailableSeats == nil && next.TotalSeats < held:
		add("totalSeats", domain.TotalBelowHeld(held).Msg)
	}
	if u.AvailableSeats != nil && (next.AvailableSeats < 0 || next.AvailableSeats > next.TotalSeats) {
		add("availableSeats", "Available seats must be between 0 and total seats")
	}
	if u.BusType != nil && !next.BusType.Valid() {
		add("busType", "Bus type must be AC, Non-AC, Sleeper or Luxury")
	}
	if u.Amenities != nil {
		for _, a := range next.Amenities {
			if !models.ValidAmenity(a) {
				add("amenities", fmt.Sprintf("Unknown amenity %q", a))
			}
		}
	}
	if len(fields) > 0 {
		return models.Bus{}, domain.ValidationError{Msg: "Validation failed", Fields: fields}
	}

	b, err := busStore(s.Buses).Update(ctx, id, u)
	if err != nil {
		return models.Bus{}, err
	}
	utils.LogEvent(s.RequestID, "buses", "update", fmt.Sprintf("bus_id=%d", id))
	return b, nil
}

// Delete removes a bus. Existing bookings keep their rows; cancelling them
// later skips the seat release.
func (s BusService) Delete(ctx context.Context, r domain.Requester, id int64) error {
	if err := domain.RequireAdmin(r); err != nil {
		return err
	}
	if err := busStore(s.Buses).Delete(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "buses", "delete", fmt.Sprintf("bus_id=%d", id))
	return nil
}
