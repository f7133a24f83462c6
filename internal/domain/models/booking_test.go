package models

import "testing"

func TestBookingTransitions(t *testing.T) {
	allowed := map[[2]BookingStatus]bool{
		{BookingConfirmed, BookingCancelled}: true,
		{BookingConfirmed, BookingCompleted}: true,
		{BookingCompleted, BookingCancelled}: true,
	}
	all := []BookingStatus{BookingConfirmed, BookingCancelled, BookingCompleted}
	for _, from := range all {
		for _, to := range all {
			want := allowed[[2]BookingStatus{from, to}]
			if got := from.CanTransition(to); got != want {
				t.Errorf("%s -> %s = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestPaymentTransitions(t *testing.T) {
	if !PaymentPending.CanTransition(PaymentCompleted) || !PaymentFailed.CanTransition(PaymentPending) {
		t.Fatal("expected retry path Pending -> Completed and Failed -> Pending")
	}
	if PaymentCancelled.CanTransition(PaymentPending) || PaymentCompleted.CanTransition(PaymentFailed) {
		t.Fatal("terminal payment states must not reopen")
	}
}

func TestDerivePaymentStatus(t *testing.T) {
	cases := []struct {
		method    PaymentMethod
		requested PaymentStatus
		want      PaymentStatus
	}{
		{PayNow, "", PaymentCompleted},
		{PayNow, PaymentPending, PaymentCompleted},
		{PayOnArrival, PaymentCompleted, PaymentPending},
		{CreditCard, PaymentFailed, PaymentFailed},
		{UPI, "", PaymentPending},
		{Wallet, "Bogus", PaymentPending},
	}
	for _, tc := range cases {
		if got := DerivePaymentStatus(tc.method, tc.requested); got != tc.want {
			t.Errorf("DerivePaymentStatus(%s, %q) = %s, want %s", tc.method, tc.requested, got, tc.want)
		}
	}
}

func TestBusUpdateApply(t *testing.T) {
	b := Bus{BusNumber: "X1", TotalSeats: 40, AvailableSeats: 10, Amenities: []string{"WiFi"}}
	total := 50
	amen := []string{"Snacks"}
	out := BusUpdate{TotalSeats: &total, Amenities: &amen}.Apply(b)
	if out.TotalSeats != 50 || out.AvailableSeats != 10 || out.BusNumber != "X1" {
		t.Fatalf("unexpected %+v", out)
	}
	amen[0] = "Pillow"
	if out.Amenities[0] != "Snacks" {
		t.Fatal("Apply must copy the amenity slice")
	}
}
