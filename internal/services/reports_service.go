package services

import (
	"context"

	"bookmybus/internal/domain"
	"bookmybus/internal/domain/models"
	"bookmybus/internal/utils"
)

const recentBookingsLimit = 5

type ReportsService struct {
	Users    UserStore
	Buses    BusStore
	Bookings BookingStore
}

// Dashboard computes admin totals at read time. Nothing here is stored.
func (s ReportsService) Dashboard(ctx context.Context, r domain.Requester) (models.DashboardStats, error) {
	if err := domain.RequireAdmin(r); err != nil {
		return models.DashboardStats{}, err
	}
	users, err := userStore(s.Users).Count(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	buses, err := busStore(s.Buses).Count(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	st, err := bookingStore(s.Bookings).Stats(ctx)
	if err != nil {
		return models.DashboardStats{}, err
	}
	recent, err := bookingStore(s.Bookings).Recent(ctx, recentBookingsLimit)
	if err != nil {
		return models.DashboardStats{}, err
	}
	return models.DashboardStats{
		TotalUsers:        users,
		TotalBuses:        buses,
		TotalBookings:     st.Total,
		TotalRevenue:      utils.RoundMoney(st.Revenue),
		ConfirmedBookings: st.Confirmed,
		CancelledBookings: st.Cancelled,
		RecentBookings:    recent,
	}, nil
}
