package models

import "time"

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCancelled BookingStatus = "Cancelled"
	BookingCompleted BookingStatus = "Completed"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "Pending"
	PaymentCompleted PaymentStatus = "Completed"
	PaymentFailed    PaymentStatus = "Failed"
	PaymentCancelled PaymentStatus = "Cancelled"
)

type PaymentMethod string

const (
	PayNow       PaymentMethod = "pay_now"
	PayOnArrival PaymentMethod = "pay_on_arrival"
	CreditCard   PaymentMethod = "Credit Card"
	DebitCard    PaymentMethod = "Debit Card"
	UPI          PaymentMethod = "UPI"
	NetBanking   PaymentMethod = "Net Banking"
	Wallet       PaymentMethod = "Wallet"
)

type Gender string

const (
	Male   Gender = "Male"
	Female Gender = "Female"
	Other  Gender = "Other"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingConfirmed, BookingCancelled, BookingCompleted:
		return true
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentCompleted, PaymentFailed, PaymentCancelled:
		return true
	}
	return false
}

func (m PaymentMethod) Valid() bool {
	switch m {
	case PayNow, PayOnArrival, CreditCard, DebitCard, UPI, NetBanking, Wallet:
		return true
	}
	return false
}

func (g Gender) Valid() bool {
	return g == Male || g == Female || g == Other
}

// bookingTransitions lists the lifecycle moves regular operations may make.
// The admin status override does not consult this table.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingConfirmed: {BookingCancelled, BookingCompleted},
	BookingCompleted: {BookingCancelled},
}

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:   {PaymentCompleted, PaymentFailed, PaymentCancelled},
	PaymentFailed:    {PaymentPending, PaymentCancelled},
	PaymentCompleted: {PaymentCancelled},
}

func (s BookingStatus) CanTransition(to BookingStatus) bool {
	for _, x := range bookingTransitions[s] {
		if x == to {
			return true
		}
	}
	return false
}

func (s PaymentStatus) CanTransition(to PaymentStatus) bool {
	for _, x := range paymentTransitions[s] {
		if x == to {
			return true
		}
	}
	return false
}

// DerivePaymentStatus picks the initial payment status of a new booking.
func DerivePaymentStatus(method PaymentMethod, requested PaymentStatus) PaymentStatus {
	switch method {
	case PayNow:
		return PaymentCompleted
	case PayOnArrival:
		return PaymentPending
	}
	if requested.Valid() {
		return requested
	}
	return PaymentPending
}

type Passenger struct {
	Name       string `json:"name"`
	Age        int    `json:"age"`
	Gender     Gender `json:"gender"`
	SeatNumber int    `json:"seatNumber"`
}

// UserSummary is the subset of a user embedded in detail views.
type UserSummary struct {
	ID    int64  `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Booking struct {
	ID            int64         `json:"_id"`
	BookingID     string        `json:"bookingId"`
	UserID        int64         `json:"-"`
	BusID         int64         `json:"-"`
	Passengers    []Passenger   `json:"passengers"`
	TotalAmount   float64       `json:"totalAmount"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	PaymentMethod PaymentMethod `json:"paymentMethod"`
	BookingStatus BookingStatus `json:"bookingStatus"`
	ContactNumber string        `json:"contactNumber"`
	Email         string        `json:"email"`
	BookingDate   time.Time     `json:"bookingDate"`
	TravelDate    time.Time     `json:"travelDate"`

	Bus  *BusSummary  `json:"bus,omitempty"`
	User *UserSummary `json:"user,omitempty"`
}

func (b Booking) SeatCount() int { return len(b.Passengers) }

// StatusOverride is the admin-only partial status update.
type StatusOverride struct {
	BookingStatus *BookingStatus
	PaymentStatus *PaymentStatus
}

// BookingStats aggregates booking counts and revenue. Revenue only counts
// bookings whose payment has completed.
type BookingStats struct {
	Total     int
	Confirmed int
	Cancelled int
	Revenue   float64
}

// DashboardStats is computed at read time from the stores.
type DashboardStats struct {
	TotalUsers        int       `json:"totalUsers"`
	TotalBuses        int       `json:"totalBuses"`
	TotalBookings     int       `json:"totalBookings"`
	TotalRevenue      float64   `json:"totalRevenue"`
	ConfirmedBookings int       `json:"confirmedBookings"`
	CancelledBookings int       `json:"cancelledBookings"`
	RecentBookings    []Booking `json:"recentBookings"`
}
