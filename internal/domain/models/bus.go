package models

import "time"

const DefaultTotalSeats = 40

type BusType string

const (
	BusTypeAC      BusType = "AC"
	BusTypeNonAC   BusType = "Non-AC"
	BusTypeSleeper BusType = "Sleeper"
	BusTypeLuxury  BusType = "Luxury"
)

func (t BusType) Valid() bool {
	switch t {
	case BusTypeAC, BusTypeNonAC, BusTypeSleeper, BusTypeLuxury:
		return true
	}
	return false
}

// Amenities is the fixed list a bus may advertise.
var Amenities = []string{"WiFi", "USB Charging", "Water Bottle", "Snacks", "Blanket", "Pillow"}

func ValidAmenity(a string) bool {
	for _, x := range Amenities {
		if x == a {
			return true
		}
	}
	return false
}

// Bus is a single-route, single-date inventory record.
type Bus struct {
	ID             int64     `json:"_id"`
	BusNumber      string    `json:"busNumber"`
	BusName        string    `json:"busName"`
	Operator       string    `json:"operator"`
	From           string    `json:"from"`
	To             string    `json:"to"`
	DepartureTime  string    `json:"departureTime"`
	ArrivalTime    string    `json:"arrivalTime"`
	Date           time.Time `json:"date"`
	TotalSeats     int       `json:"totalSeats"`
	AvailableSeats int       `json:"availableSeats"`
	Fare           float64   `json:"fare"`
	BusType        BusType   `json:"busType"`
	Amenities      []string  `json:"amenities"`
	IsActive       bool      `json:"isActive"`
	CreatedAt      time.Time `json:"createdAt"`
}

// BusSummary is the subset embedded in booking responses.
type BusSummary struct {
	ID            int64     `json:"_id"`
	BusNumber     string    `json:"busNumber"`
	BusName       string    `json:"busName"`
	Operator      string    `json:"operator"`
	From          string    `json:"from"`
	To            string    `json:"to"`
	DepartureTime string    `json:"departureTime"`
	ArrivalTime   string    `json:"arrivalTime"`
	Date          time.Time `json:"date"`
}

func (b Bus) Summary() BusSummary {
	return BusSummary{
		ID:            b.ID,
		BusNumber:     b.BusNumber,
		BusName:       b.BusName,
		Operator:      b.Operator,
		From:          b.From,
		To:            b.To,
		DepartureTime: b.DepartureTime,
		ArrivalTime:   b.ArrivalTime,
		Date:          b.Date,
	}
}

// BusUpdate supports PATCH-style updates via key presence.
type BusUpdate struct {
	BusNumber      *string
	BusName        *string
	Operator       *string
	From           *string
	To             *string
	DepartureTime  *string
	ArrivalTime    *string
	Date           *time.Time
	TotalSeats     *int
	AvailableSeats *int
	Fare           *float64
	BusType        *BusType
	Amenities      *[]string
	IsActive       *bool
}

// Apply merges the present fields into b.
func (u BusUpdate) Apply(b Bus) Bus {
	if u.BusNumber != nil {
		b.BusNumber = *u.BusNumber
	}
	if u.BusName != nil {
		b.BusName = *u.BusName
	}
	if u.Operator != nil {
		b.Operator = *u.Operator
	}
	if u.From != nil {
		b.From = *u.From
	}
	if u.To != nil {
		b.To = *u.To
	}
	if u.DepartureTime != nil {
		b.DepartureTime = *u.DepartureTime
	}
	if u.ArrivalTime != nil {
		b.ArrivalTime = *u.ArrivalTime
	}
	if u.Date != nil {
		b.Date = *u.Date
	}
	if u.TotalSeats != nil {
		b.TotalSeats = *u.TotalSeats
	}
	if u.AvailableSeats != nil {
		b.AvailableSeats = *u.AvailableSeats
	}
	if u.Fare != nil {
		b.Fare = *u.Fare
	}
	if u.BusType != nil {
		b.BusType = *u.BusType
	}
	if u.Amenities != nil {
		b.Amenities = append([]string(nil), (*u.Amenities)...)
	}
	if u.IsActive != nil {
		b.IsActive = *u.IsActive
	}
	return b
}

// SearchQuery selects buses for one route on one calendar day.
type SearchQuery struct {
	From string
	To   string
	Day  time.Time
}
