package handlers

import (
	"encoding/json"
	"testing"

	"bookmybus/internal/domain/models"
)

func TestStringishAcceptsStringsAndNumbers(t *testing.T) {
	var req createBookingRequest
	body := `{"busId":"12","passengers":[{"name":" Asha ","age":29,"gender":"Female","seatNumber":"4"},{"name":"Ravi","age":null,"gender":"Male","seatNumber":"x"}],"paymentMethod":"UPI"}`
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	in := req.input()
	if in.BusID != 12 {
		t.Fatalf("BusID = %d", in.BusID)
	}
	if in.Passengers[0].Age != 29 || in.Passengers[0].SeatNumber != 4 {
		t.Fatalf("first passenger = %+v", in.Passengers[0])
	}
	if in.Passengers[1].Age != 0 || in.Passengers[1].SeatNumber != 0 {
		t.Fatalf("unparsable numbers should be zero, got %+v", in.Passengers[1])
	}
	if in.PaymentMethod != models.UPI {
		t.Fatalf("PaymentMethod = %q", in.PaymentMethod)
	}
}

func TestStatusRequestTreatsEmptyAsAbsent(t *testing.T) {
	o := statusRequest{BookingStatus: " Completed ", PaymentStatus: ""}.override()
	if o.BookingStatus == nil || *o.BookingStatus != models.BookingCompleted {
		t.Fatalf("BookingStatus = %v", o.BookingStatus)
	}
	if o.PaymentStatus != nil {
		t.Fatalf("PaymentStatus should be absent, got %v", *o.PaymentStatus)
	}
}

func TestBusPatchParsesDate(t *testing.T) {
	bad := "31/12/2024"
	if _, err := (busPatch{Date: &bad}).update(); err == nil {
		t.Fatal("expected invalid date error")
	}
	good := "2024-12-31"
	u, err := busPatch{Date: &good}.update()
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if u.Date == nil || u.Date.Day() != 31 {
		t.Fatalf("Date = %v", u.Date)
	}
}
