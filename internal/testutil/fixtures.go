package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"bookmybus/internal/domain"
	"bookmybus/internal/domain/models"
)

// Day returns local midnight of the given date.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.Local)
}

// NewBus builds an active bus with every seat free.
func NewBus(number, from, to string, date time.Time, departure string, seats int, fare float64) models.Bus {
	return models.Bus{
		BusNumber:      number,
		BusName:        "Express " + number,
		Operator:       "Test Travels",
		From:           from,
		To:             to,
		DepartureTime:  departure,
		ArrivalTime:    "23:00",
		Date:           date,
		TotalSeats:     seats,
		AvailableSeats: seats,
		Fare:           fare,
		BusType:        models.BusTypeAC,
		Amenities:      []string{"WiFi"},
		IsActive:       true,
		CreatedAt:      date,
	}
}

func (s *Store) SeedBus(t testing.TB, b models.Bus) models.Bus {
	t.Helper()
	out, err := s.Buses().Create(context.Background(), b)
	if err != nil {
		t.Fatalf("seed bus %s: %v", b.BusNumber, err)
	}
	return out
}

func (s *Store) SeedUser(t testing.TB, name string, role domain.Role) models.User {
	t.Helper()
	out, err := s.Users().Create(context.Background(), models.User{
		Name:  name,
		Email: fmt.Sprintf("%s@example.com", name),
		Phone: "9999999999",
		Role:  role,
	})
	if err != nil {
		t.Fatalf("seed user %s: %v", name, err)
	}
	return out
}

// Passengers returns n valid passengers with seats 1..n.
func Passengers(n int) []models.Passenger {
	out := make([]models.Passenger, n)
	for i := range out {
		out[i] = models.Passenger{
			Name:       fmt.Sprintf("Passenger %d", i+1),
			Age:        30,
			Gender:     models.Female,
			SeatNumber: i + 1,
		}
	}
	return out
}
