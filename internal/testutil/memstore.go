// Package testutil holds an in-memory implementation of the record stores.
// Seat changes and booking rows are applied under one lock, matching the
// transactional guarantees of the MySQL repositories.
package testutil

import (
	"context"
	"sort"
	"strings"
	"sync"

	"bookmybus/internal/domain"
	"bookmybus/internal/domain/models"
	"bookmybus/internal/utils"
)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	buses    map[int64]models.Bus
	bookings map[int64]models.Booking
	users    map[int64]models.User
	codes    map[string]int64
}

func NewStore() *Store {
	return &Store{
		buses:    map[int64]models.Bus{},
		bookings: map[int64]models.Booking{},
		users:    map[int64]models.User{},
		codes:    map[string]int64{},
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) Buses() Buses       { return Buses{s} }
func (s *Store) Bookings() Bookings { return Bookings{s} }
func (s *Store) Users() Users       { return Users{s} }

// Available reports the current seat counter of a bus, or -1 if it is gone.
func (s *Store) Available(busID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.buses[busID]
	if !ok {
		return -1
	}
	return b.AvailableSeats
}

// HeldSeats sums passengers over non-cancelled bookings of a bus.
func (s *Store) HeldSeats(busID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, k := range s.bookings {
		if k.BusID == busID && k.BookingStatus != models.BookingCancelled {
			n += k.SeatCount()
		}
	}
	return n
}

type Buses struct{ s *Store }

func (r Buses) Create(_ context.Context, b models.Bus) (models.Bus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, x := range r.s.buses {
		if x.BusNumber == b.BusNumber {
			return models.Bus{}, domain.ConflictError{Resource: "bus", Msg: "bus number already exists"}
		}
	}
	b.ID = r.s.id()
	b.Amenities = append([]string{}, b.Amenities...)
	r.s.buses[b.ID] = b
	return b, nil
}

func (r Buses) GetByID(_ context.Context, id int64) (models.Bus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.buses[id]
	if !ok {
		return models.Bus{}, domain.NotFoundError{Resource: "Bus"}
	}
	return b, nil
}

func (r Buses) List(_ context.Context, activeOnly bool) ([]models.Bus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.Bus{}
	for _, b := range r.s.buses {
		if activeOnly && !b.IsActive {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r Buses) Search(_ context.Context, q models.SearchQuery) ([]models.Bus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	start, end := utils.DayBounds(q.Day)
	from := strings.ToLower(strings.TrimSpace(q.From))
	to := strings.ToLower(strings.TrimSpace(q.To))
	out := []models.Bus{}
	for _, b := range r.s.buses {
		if !b.IsActive || b.AvailableSeats <= 0 {
			continue
		}
		if !strings.Contains(strings.ToLower(b.From), from) || !strings.Contains(strings.ToLower(b.To), to) {
			continue
		}
		if b.Date.Before(start) || !b.Date.Before(end) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DepartureTime != out[j].DepartureTime {
			return out[i].DepartureTime < out[j].DepartureTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r Buses) Update(_ context.Context, id int64, u models.BusUpdate) (models.Bus, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.buses[id]
	if !ok {
		return models.Bus{}, domain.NotFoundError{Resource: "Bus"}
	}
	held := b.TotalSeats - b.AvailableSeats
	b = u.Apply(b)
	if u.TotalSeats != nil && u.AvailableSeats == nil {
		if b.TotalSeats < held {
			return models.Bus{}, domain.TotalBelowHeld(held)
		}
		b.AvailableSeats = b.TotalSeats - held
	}
	r.s.buses[id] = b
	return b, nil
}

func (r Buses) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.buses[id]; !ok {
		return domain.NotFoundError{Resource: "Bus"}
	}
	delete(r.s.buses, id)
	return nil
}

func (r Buses) Count(context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.buses), nil
}

type Bookings struct{ s *Store }

// CreateReserving takes the seats and stores the booking in one step.
func (r Bookings) CreateReserving(_ context.Context, k models.Booking) (models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.buses[k.BusID]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "Bus"}
	}
	if b.AvailableSeats < k.SeatCount() {
		return models.Booking{}, domain.ErrNotEnoughSeats
	}
	if _, dup := r.s.codes[k.BookingID]; dup {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking id already exists"}
	}
	b.AvailableSeats -= k.SeatCount()
	r.s.buses[b.ID] = b

	k.ID = r.s.id()
	k.Passengers = append([]models.Passenger{}, k.Passengers...)
	k.Bus, k.User = nil, nil
	r.s.bookings[k.ID] = k
	r.s.codes[k.BookingID] = k.ID
	return k, nil
}

func (r Bookings) view(k models.Booking) models.Booking {
	k.Passengers = append([]models.Passenger{}, k.Passengers...)
	if b, ok := r.s.buses[k.BusID]; ok {
		sum := b.Summary()
		k.Bus = &sum
	}
	if u, ok := r.s.users[k.UserID]; ok {
		sum := u.Summary()
		k.User = &sum
	}
	return k
}

func (r Bookings) GetByID(_ context.Context, id int64) (models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k, ok := r.s.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "Booking"}
	}
	return r.view(k), nil
}

func (r Bookings) filter(keep func(models.Booking) bool) []models.Booking {
	out := []models.Booking{}
	for _, k := range r.s.bookings {
		if keep(k) {
			out = append(out, r.view(k))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].BookingDate.Equal(out[j].BookingDate) {
			return out[i].BookingDate.After(out[j].BookingDate)
		}
		return out[i].ID > out[j].ID
	})
	return out
}

func (r Bookings) ListByUser(_ context.Context, userID int64) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(k models.Booking) bool { return k.UserID == userID }), nil
}

func (r Bookings) ListAll(context.Context) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.filter(func(models.Booking) bool { return true }), nil
}

func (r Bookings) Recent(_ context.Context, limit int) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := r.filter(func(models.Booking) bool { return true })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r Bookings) CancelReleasing(_ context.Context, id int64) (models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k, ok := r.s.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "Booking"}
	}
	if k.BookingStatus == models.BookingCancelled {
		return models.Booking{}, domain.ValidationError{Msg: "Booking is already cancelled"}
	}
	k.BookingStatus = models.BookingCancelled
	k.PaymentStatus = models.PaymentCancelled
	r.s.bookings[id] = k
	if b, ok := r.s.buses[k.BusID]; ok {
		b.AvailableSeats += k.SeatCount()
		if b.AvailableSeats > b.TotalSeats {
			b.AvailableSeats = b.TotalSeats
		}
		r.s.buses[b.ID] = b
	}
	return r.view(k), nil
}

func (r Bookings) UpdateStatus(_ context.Context, id int64, o models.StatusOverride) (models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k, ok := r.s.bookings[id]
	if !ok {
		return models.Booking{}, domain.NotFoundError{Resource: "Booking"}
	}
	if o.BookingStatus != nil {
		k.BookingStatus = *o.BookingStatus
	}
	if o.PaymentStatus != nil {
		k.PaymentStatus = *o.PaymentStatus
	}
	r.s.bookings[id] = k
	return r.view(k), nil
}

func (r Bookings) Stats(context.Context) (models.BookingStats, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var st models.BookingStats
	for _, k := range r.s.bookings {
		st.Total++
		switch k.BookingStatus {
		case models.BookingConfirmed:
			st.Confirmed++
		case models.BookingCancelled:
			st.Cancelled++
		}
		if k.PaymentStatus == models.PaymentCompleted {
			st.Revenue += k.TotalAmount
		}
	}
	return st, nil
}

type Users struct{ s *Store }

func (r Users) Create(_ context.Context, u models.User) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = strings.ToLower(u.Email)
	for _, x := range r.s.users {
		if x.Email == u.Email {
			return models.User{}, domain.ConflictError{Resource: "user", Msg: "User already exists"}
		}
	}
	u.ID = r.s.id()
	r.s.users[u.ID] = u
	return u, nil
}

func (r Users) GetByID(_ context.Context, id int64) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "User"}
	}
	return u, nil
}

func (r Users) GetByEmail(_ context.Context, email string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, domain.NotFoundError{Resource: "User"}
}

func (r Users) List(context.Context) ([]models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []models.User{}
	for _, u := range r.s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r Users) UpdateProfile(_ context.Context, id int64, name, phone *string) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "User"}
	}
	if name != nil {
		u.Name = *name
	}
	if phone != nil {
		u.Phone = *phone
	}
	r.s.users[id] = u
	return u, nil
}

func (r Users) UpdateRole(_ context.Context, id int64, role domain.Role) (models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return models.User{}, domain.NotFoundError{Resource: "User"}
	}
	u.Role = role
	r.s.users[id] = u
	return u, nil
}

func (r Users) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return domain.NotFoundError{Resource: "User"}
	}
	delete(r.s.users, id)
	return nil
}

func (r Users) Count(context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return len(r.s.users), nil
}
