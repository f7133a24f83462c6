package services

import (
	"context"

	"bookmybus/internal/domain"
	"bookmybus/internal/domain/models"
	"bookmybus/internal/repositories"
)

// BusStore is the bus inventory. ReserveSeats semantics live in the
// booking store because a reservation always travels with a booking row.
type BusStore interface {
	Create(ctx context.Context, b models.Bus) (models.Bus, error)
	GetByID(ctx context.Context, id int64) (models.Bus, error)
	List(ctx context.Context, activeOnly bool) ([]models.Bus, error)
	Search(ctx context.Context, q models.SearchQuery) ([]models.Bus, error)
	Update(ctx context.Context, id int64, u models.BusUpdate) (models.Bus, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

// BookingStore persists bookings. CreateReserving and CancelReleasing must
// change the bus seat counter and the booking atomically.
type BookingStore interface {
	CreateReserving(ctx context.Context, k models.Booking) (models.Booking, error)
	GetByID(ctx context.Context, id int64) (models.Booking, error)
	ListByUser(ctx context.Context, userID int64) ([]models.Booking, error)
	ListAll(ctx context.Context) ([]models.Booking, error)
	Recent(ctx context.Context, limit int) ([]models.Booking, error)
	CancelReleasing(ctx context.Context, id int64) (models.Booking, error)
	UpdateStatus(ctx context.Context, id int64, o models.StatusOverride) (models.Booking, error)
	Stats(ctx context.Context) (models.BookingStats, error)
}

type UserStore interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	List(ctx context.Context) ([]models.User, error)
	UpdateProfile(ctx context.Context, id int64, name, phone *string) (models.User, error)
	UpdateRole(ctx context.Context, id int64, role domain.Role) (models.User, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
}

var (
	_ BusStore     = repositories.BusRepository{}
	_ BookingStore = repositories.BookingRepository{}
	_ UserStore    = repositories.UserRepository{}
)

func busStore(s BusStore) BusStore {
	if s != nil {
		return s
	}
	return repositories.BusRepository{}
}

func bookingStore(s BookingStore) BookingStore {
	if s != nil {
		return s
	}
	return repositories.BookingRepository{}
}

func userStore(s UserStore) UserStore {
	if s != nil {
		return s
	}
	return repositories.UserRepository{}
}
