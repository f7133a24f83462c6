package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookmybus/internal/domain"
	"bookmybus/internal/domain/models"
	"bookmybus/internal/utils"
)

type BookingService struct {
	Buses     BusStore
	Bookings  BookingStore
	IDs       BookingIDGenerator
	Now       func() time.Time
	RequestID string
}

type CreateBookingInput struct {
	BusID         int64
	Passengers    []models.Passenger
	PaymentMethod models.PaymentMethod
	PaymentStatus models.PaymentStatus
	ContactNumber string
	Email         string
}

func (s BookingService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (in CreateBookingInput) validate() error {
	var fields []domain.FieldError
	add := func(field, msg string) {
		fields = append(fields, domain.FieldError{Field: field, Msg: msg})
	}
	if in.BusID <= 0 {
		add("busId", "Bus ID is required")
	}
	if len(in.Passengers) == 0 {
		add("passengers", "Passengers are required")
	}
	for i, p := range in.Passengers {
		prefix := fmt.Sprintf("passengers[%d].", i)
		if strings.TrimSpace(p.Name) == "" {
			add(prefix+"name", "Passenger name is required")
		}
		if p.Age <= 0 || p.Age > 120 {
			add(prefix+"age", "Passenger age must be between 1 and 120")
		}
		if !p.Gender.Valid() {
			add(prefix+"gender", "Gender must be Male, Female or Other")
		}
		if p.SeatNumber <= 0 {
			add(prefix+"seatNumber", "Seat number is required")
		}
	}
	if strings.TrimSpace(string(in.PaymentMethod)) == "" {
		add("paymentMethod", "Payment method is required")
	} else if !in.PaymentMethod.Valid() {
		add("paymentMethod", "Payment method is not supported")
	}
	if in.PaymentStatus != "" && !in.PaymentStatus.Valid() {
		add("paymentStatus", "Payment status is not supported")
	}
	if strings.TrimSpace(in.ContactNumber) == "" {
		add("contactNumber", "Contact number is required")
	}
	if !validEmail(in.Email) {
		add("email", "Email is required")
	}
	if len(fields) > 0 {
		return domain.ValidationError{Msg: "Validation failed", Fields: fields}
	}
	return nil
}

// Create books seats on a bus for the requester. The seat check here only
// gives an early answer; the store repeats it atomically while reserving.
func (s BookingService) Create(ctx context.Context, r domain.Requester, in CreateBookingInput) (models.Booking, error) {
	if r.UserID <= 0 {
		return models.Booking{}, domain.UnauthorizedError{Msg: "No token, authorization denied"}
	}
	if err := in.validate(); err != nil {
		return models.Booking{}, err
	}

	bus, err := busStore(s.Buses).GetByID(ctx, in.BusID)
	if err != nil {
		return models.Booking{}, err
	}
	if bus.AvailableSeats < len(in.Passengers) {
		return models.Booking{}, domain.ErrNotEnoughSeats
	}

	passengers := make([]models.Passenger, len(in.Passengers))
	for i, p := range in.Passengers {
		p.Name = utils.NormalizeSpace(p.Name)
		passengers[i] = p
	}

	k := models.Booking{
		UserID:        r.UserID,
		BusID:         bus.ID,
		Passengers:    passengers,
		TotalAmount:   utils.RoundMoney(bus.Fare * float64(len(passengers))),
		PaymentMethod: in.PaymentMethod,
		PaymentStatus: models.DerivePaymentStatus(in.PaymentMethod, in.PaymentStatus),
		BookingStatus: models.BookingConfirmed,
		ContactNumber: strings.TrimSpace(in.ContactNumber),
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		BookingDate:   s.now(),
		TravelDate:    bus.Date,
	}

	var created models.Booking
	for attempt := 1; ; attempt++ {
		k.BookingID = s.IDs.Next()
		created, err = bookingStore(s.Bookings).CreateReserving(ctx, k)
		if err == nil {
			break
		}
		var conflict domain.ConflictError
		if errors.As(err, &conflict) && conflict.Resource == "booking" && attempt < maxBookingIDTrials {
			utils.LogEvent(s.RequestID, "bookings", "create_retry", fmt.Sprintf("booking_id=%s attempt=%d", k.BookingID, attempt))
			continue
		}
		return models.Booking{}, err
	}

	summary := bus.Summary()
	created.Bus = &summary
	utils.LogEvent(s.RequestID, "bookings", "create", fmt.Sprintf("booking_id=%s bus_id=%d seats=%d", created.BookingID, bus.ID, created.SeatCount()))
	return created, nil
}

// Get returns a booking the requester owns, or any booking for an admin.
func (s BookingService) Get(ctx context.Context, r domain.Requester, id int64) (models.Booking, error) {
	k, err := bookingStore(s.Bookings).GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	if err := domain.Authorize(r, k.UserID); err != nil {
		return models.Booking{}, err
	}
	return k, nil
}

func (s BookingService) ListMine(ctx context.Context, r domain.Requester) ([]models.Booking, error) {
	if r.UserID <= 0 {
		return nil, domain.UnauthorizedError{Msg: "No token, authorization denied"}
	}
	return bookingStore(s.Bookings).ListByUser(ctx, r.UserID)
}

func (s BookingService) ListAll(ctx context.Context, r domain.Requester) ([]models.Booking, error) {
	if err := domain.RequireAdmin(r); err != nil {
		return nil, err
	}
	return bookingStore(s.Bookings).ListAll(ctx)
}

// Cancel cancels a booking and gives its seats back to the bus. Cancelling
// twice is rejected without touching the bus.
func (s BookingService) Cancel(ctx context.Context, r domain.Requester, id int64) (models.Booking, error) {
	k, err := s.Get(ctx, r, id)
	if err != nil {
		return models.Booking{}, err
	}
	if k.BookingStatus == models.BookingCancelled {
		return models.Booking{}, domain.ValidationError{Msg: "Booking is already cancelled"}
	}
	if !k.BookingStatus.CanTransition(models.BookingCancelled) {
		return models.Booking{}, domain.ValidationError{Msg: fmt.Sprintf("Booking cannot be cancelled from status %s", k.BookingStatus)}
	}

	out, err := bookingStore(s.Bookings).CancelReleasing(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	utils.LogEvent(s.RequestID, "bookings", "cancel", fmt.Sprintf("booking_id=%s seats=%d", out.BookingID, out.SeatCount()))
	return out, nil
}

// OverrideStatus lets an admin set either status to any valid value. It does
// not consult the transition table and never adjusts seat counts, so an
// override can leave a bus counter out of step with its bookings.
func (s BookingService) OverrideStatus(ctx context.Context, r domain.Requester, id int64, o models.StatusOverride) (models.Booking, error) {
	if err := domain.RequireAdmin(r); err != nil {
		return models.Booking{}, err
	}
	if o.BookingStatus != nil && !o.BookingStatus.Valid() {
		return models.Booking{}, domain.ValidationError{Field: "bookingStatus", Msg: "Invalid booking status"}
	}
	if o.PaymentStatus != nil && !o.PaymentStatus.Valid() {
		return models.Booking{}, domain.ValidationError{Field: "paymentStatus", Msg: "Invalid payment status"}
	}

	before, err := bookingStore(s.Bookings).GetByID(ctx, id)
	if err != nil {
		return models.Booking{}, err
	}
	out, err := bookingStore(s.Bookings).UpdateStatus(ctx, id, o)
	if err != nil {
		return models.Booking{}, err
	}
	if before.BookingStatus != out.BookingStatus && !before.BookingStatus.CanTransition(out.BookingStatus) {
		utils.LogEvent(s.RequestID, "bookings", "status_override",
			fmt.Sprintf("booking_id=%s from=%s to=%s seats_unchanged=true", out.BookingID, before.BookingStatus, out.BookingStatus))
	} else {
		utils.LogEvent(s.RequestID, "bookings", "status_update",
			fmt.Sprintf("booking_id=%s booking_status=%s payment_status=%s", out.BookingID, out.BookingStatus, out.PaymentStatus))
	}
	return out, nil
}
