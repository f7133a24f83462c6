package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"bookmybus/internal/domain"
	"bookmybus/internal/domain/models"
	"bookmybus/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingFixture struct {
	store *testutil.Store
	svc   BookingService
	bus   models.Bus
	alice domain.Requester
	bob   domain.Requester
	admin domain.Requester
}

func newBookingFixture(t *testing.T, seats int) bookingFixture {
	t.Helper()
	store := testutil.NewStore()
	bus := store.SeedBus(t, testutil.NewBus("KA01", "Delhi", "Mumbai", testutil.Day(2024, 6, 1), "08:00", seats, 500))
	alice := store.SeedUser(t, "alice", domain.RoleUser)
	bob := store.SeedUser(t, "bob", domain.RoleUser)
	admin := store.SeedUser(t, "root", domain.RoleAdmin)
	now := time.Date(2024, 5, 20, 10, 0, 0, 0, time.Local)
	return bookingFixture{
		store: store,
		svc: BookingService{
			Buses:    store.Buses(),
			Bookings: store.Bookings(),
			Now:      func() time.Time { return now },
		},
		bus:   bus,
		alice: domain.Requester{UserID: alice.ID, Role: alice.Role},
		bob:   domain.Requester{UserID: bob.ID, Role: bob.Role},
		admin: domain.Requester{UserID: admin.ID, Role: admin.Role},
	}
}

func (f bookingFixture) input(n int, method models.PaymentMethod) CreateBookingInput {
	return CreateBookingInput{
		BusID:         f.bus.ID,
		Passengers:    testutil.Passengers(n),
		PaymentMethod: method,
		ContactNumber: "9876543210",
		Email:         "alice@example.com",
	}
}

func (f bookingFixture) assertSeatInvariant(t *testing.T) {
	t.Helper()
	assert.Equal(t, f.bus.TotalSeats-f.store.HeldSeats(f.bus.ID), f.store.Available(f.bus.ID))
}

func TestCreateBooking(t *testing.T) {
	f := newBookingFixture(t, 10)
	ctx := context.Background()

	k, err := f.svc.Create(ctx, f.alice, f.input(3, models.PayNow))
	require.NoError(t, err)

	assert.Equal(t, models.BookingConfirmed, k.BookingStatus)
	assert.Equal(t, models.PaymentCompleted, k.PaymentStatus)
	assert.Equal(t, 1500.0, k.TotalAmount)
	assert.Equal(t, f.bus.Date, k.TravelDate)
	assert.Regexp(t, `^BK\d{13}[0-9A-Z]{5}$`, k.BookingID)
	require.NotNil(t, k.Bus)
	assert.Equal(t, "KA01", k.Bus.BusNumber)
	assert.Equal(t, 7, f.store.Available(f.bus.ID))
	f.assertSeatInvariant(t)
}

func TestCreateBookingPaymentStatus(t *testing.T) {
	cases := []struct {
		method    models.PaymentMethod
		requested models.PaymentStatus
		want      models.PaymentStatus
	}{
		{models.PayNow, models.PaymentFailed, models.PaymentCompleted},
		{models.PayOnArrival, models.PaymentCompleted, models.PaymentPending},
		{models.UPI, models.PaymentCompleted, models.PaymentCompleted},
		{models.Wallet, "", models.PaymentPending},
	}
	for _, tc := range cases {
		t.Run(string(tc.method), func(t *testing.T) {
			f := newBookingFixture(t, 5)
			in := f.input(1, tc.method)
			in.PaymentStatus = tc.requested
			k, err := f.svc.Create(context.Background(), f.alice, in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, k.PaymentStatus)
		})
	}
}

func TestCreateBookingValidation(t *testing.T) {
	f := newBookingFixture(t, 5)
	in := CreateBookingInput{
		BusID:         f.bus.ID,
		Passengers:    []models.Passenger{{Name: " ", Age: 0, Gender: "X", SeatNumber: 0}},
		PaymentMethod: "Cash",
		Email:         "not-an-email",
	}
	_, err := f.svc.Create(context.Background(), f.alice, in)
	require.Error(t, err)
	require.True(t, domain.IsValidation(err))

	fields := map[string]bool{}
	for _, fe := range domain.FieldErrors(err) {
		fields[fe.Field] = true
	}
	for _, name := range []string{"passengers[0].name", "passengers[0].age", "passengers[0].gender", "passengers[0].seatNumber", "paymentMethod", "contactNumber", "email"} {
		assert.True(t, fields[name], "missing field error for %s", name)
	}
	assert.Equal(t, 5, f.store.Available(f.bus.ID))
}

func TestCreateBookingUnknownBus(t *testing.T) {
	f := newBookingFixture(t, 5)
	in := f.input(1, models.PayNow)
	in.BusID = 999
	_, err := f.svc.Create(context.Background(), f.alice, in)
	assert.True(t, domain.IsNotFound(err))
}

func TestCreateBookingRequiresIdentity(t *testing.T) {
	f := newBookingFixture(t, 5)
	_, err := f.svc.Create(context.Background(), domain.Requester{}, f.input(1, models.PayNow))
	assert.True(t, domain.IsUnauthorized(err))
}

func TestCreateBookingNotEnoughSeatsLeavesBusUntouched(t *testing.T) {
	f := newBookingFixture(t, 2)
	_, err := f.svc.Create(context.Background(), f.alice, f.input(3, models.PayNow))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "Not enough seats available", err.Error())
	assert.Equal(t, 2, f.store.Available(f.bus.ID))

	all, err := f.store.Bookings().ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCancelRestoresSeats(t *testing.T) {
	f := newBookingFixture(t, 10)
	ctx := context.Background()

	k, err := f.svc.Create(ctx, f.alice, f.input(4, models.PayNow))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.bob, f.input(2, models.PayOnArrival))
	require.NoError(t, err)
	f.assertSeatInvariant(t)

	out, err := f.svc.Cancel(ctx, f.alice, k.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, out.BookingStatus)
	assert.Equal(t, models.PaymentCancelled, out.PaymentStatus)
	assert.Equal(t, 8, f.store.Available(f.bus.ID))
	f.assertSeatInvariant(t)
}

func TestCancelTwiceIsRejected(t *testing.T) {
	f := newBookingFixture(t, 10)
	ctx := context.Background()

	k, err := f.svc.Create(ctx, f.alice, f.input(3, models.PayNow))
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, f.alice, k.ID)
	require.NoError(t, err)
	require.Equal(t, 10, f.store.Available(f.bus.ID))

	_, err = f.svc.Cancel(ctx, f.alice, k.ID)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Equal(t, "Booking is already cancelled", err.Error())
	assert.Equal(t, 10, f.store.Available(f.bus.ID))
}

func TestCancelRestoresOriginalCountAfterBusChanges(t *testing.T) {
	f := newBookingFixture(t, 10)
	ctx := context.Background()

	k, err := f.svc.Create(ctx, f.alice, f.input(3, models.PayNow))
	require.NoError(t, err)

	fare := 900.0
	total := 20
	_, err = f.store.Buses().Update(ctx, f.bus.ID, models.BusUpdate{Fare: &fare, TotalSeats: &total})
	require.NoError(t, err)
	require.Equal(t, 7, f.store.Available(f.bus.ID))

	out, err := f.svc.Cancel(ctx, f.admin, k.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, f.store.Available(f.bus.ID))
	assert.Equal(t, 1500.0, out.TotalAmount)
}

func TestCancelAfterBusDeleted(t *testing.T) {
	f := newBookingFixture(t, 10)
	ctx := context.Background()

	k, err := f.svc.Create(ctx, f.alice, f.input(2, models.PayNow))
	require.NoError(t, err)
	require.NoError(t, f.store.Buses().Delete(ctx, f.bus.ID))

	out, err := f.svc.Cancel(ctx, f.alice, k.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, out.BookingStatus)
	assert.Equal(t, -1, f.store.Available(f.bus.ID))
}

func TestNonOwnerCannotReadOrCancel(t *testing.T) {
	f := newBookingFixture(t, 10)
	ctx := context.Background()

	k, err := f.svc.Create(ctx, f.alice, f.input(2, models.PayNow))
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, f.bob, k.ID)
	assert.True(t, domain.IsUnauthorized(err))

	_, err = f.svc.Cancel(ctx, f.bob, k.ID)
	assert.True(t, domain.IsUnauthorized(err))
	assert.Equal(t, 8, f.store.Available(f.bus.ID))

	got, err := f.svc.Get(ctx, f.admin, k.ID)
	require.NoError(t, err)
	assert.Equal(t, k.BookingID, got.BookingID)
	require.NotNil(t, got.User)
	assert.Equal(t, "alice", got.User.Name)
}

func TestListMineAndAll(t *testing.T) {
	f := newBookingFixture(t, 10)
	ctx := context.Background()
	clock := time.Date(2024, 5, 20, 10, 0, 0, 0, time.Local)
	f.svc.Now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}

	first, err := f.svc.Create(ctx, f.alice, f.input(1, models.PayNow))
	require.NoError(t, err)
	second, err := f.svc.Create(ctx, f.alice, f.input(1, models.PayNow))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.bob, f.input(1, models.PayNow))
	require.NoError(t, err)

	mine, err := f.svc.ListMine(ctx, f.alice)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	_, err = f.svc.ListAll(ctx, f.alice)
	assert.True(t, domain.IsUnauthorized(err))

	all, err := f.svc.ListAll(ctx, f.admin)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestOverrideStatusLeavesSeatsAlone(t *testing.T) {
	f := newBookingFixture(t, 10)
	ctx := context.Background()

	k, err := f.svc.Create(ctx, f.alice, f.input(3, models.PayOnArrival))
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, f.alice, k.ID)
	require.NoError(t, err)
	require.Equal(t, 10, f.store.Available(f.bus.ID))

	confirmed := models.BookingConfirmed
	paid := models.PaymentCompleted
	out, err := f.svc.OverrideStatus(ctx, f.admin, k.ID, models.StatusOverride{BookingStatus: &confirmed, PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, out.BookingStatus)
	assert.Equal(t, models.PaymentCompleted, out.PaymentStatus)
	assert.Equal(t, 10, f.store.Available(f.bus.ID))

	completed := models.BookingCompleted
	_, err = f.svc.OverrideStatus(ctx, f.admin, k.ID, models.StatusOverride{BookingStatus: &completed})
	require.NoError(t, err)
	assert.Equal(t, 10, f.store.Available(f.bus.ID))
}

func TestOverrideStatusRequiresAdminAndValidValues(t *testing.T) {
	f := newBookingFixture(t, 10)
	ctx := context.Background()
	k, err := f.svc.Create(ctx, f.alice, f.input(1, models.PayNow))
	require.NoError(t, err)

	done := models.BookingCompleted
	_, err = f.svc.OverrideStatus(ctx, f.alice, k.ID, models.StatusOverride{BookingStatus: &done})
	assert.True(t, domain.IsUnauthorized(err))

	bogus := models.BookingStatus("Lost")
	_, err = f.svc.OverrideStatus(ctx, f.admin, k.ID, models.StatusOverride{BookingStatus: &bogus})
	assert.True(t, domain.IsValidation(err))

	_, err = f.svc.OverrideStatus(ctx, f.admin, 999, models.StatusOverride{BookingStatus: &done})
	assert.True(t, domain.IsNotFound(err))
}

// conflictOnce reports a duplicate booking id for the first `trials` creates.
type conflictOnce struct {
	BookingStore
	trials int
	seen   []string
}

func (c *conflictOnce) CreateReserving(ctx context.Context, k models.Booking) (models.Booking, error) {
	c.seen = append(c.seen, k.BookingID)
	if len(c.seen) <= c.trials {
		return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking id already exists"}
	}
	return c.BookingStore.CreateReserving(ctx, k)
}

func TestCreateBookingRetriesDuplicateID(t *testing.T) {
	f := newBookingFixture(t, 10)
	store := &conflictOnce{BookingStore: f.store.Bookings(), trials: 2}
	f.svc.Bookings = store

	k, err := f.svc.Create(context.Background(), f.alice, f.input(1, models.PayNow))
	require.NoError(t, err)
	require.Len(t, store.seen, 3)
	assert.Equal(t, store.seen[2], k.BookingID)

	store = &conflictOnce{BookingStore: f.store.Bookings(), trials: 3}
	f.svc.Bookings = store
	_, err = f.svc.Create(context.Background(), f.alice, f.input(1, models.PayNow))
	assert.True(t, domain.IsConflict(err))
	assert.Len(t, store.seen, maxBookingIDTrials)
}

// naiveSeats reproduces an unguarded read, check, write sequence on the
// seat counter.
type naiveSeats struct {
	mu        sync.Mutex
	available int
}

func (n *naiveSeats) read() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.available
}

func (n *naiveSeats) write(v int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.available = v
}

func TestUnguardedSeatUpdateOversells(t *testing.T) {
	seats := &naiveSeats{available: 2}
	const buyers = 2
	var read sync.WaitGroup
	read.Add(buyers)
	var done sync.WaitGroup
	sold := make(chan int, buyers)

	for i := 0; i < buyers; i++ {
		done.Add(1)
		go func() {
			defer done.Done()
			seen := seats.read()
			read.Done()
			read.Wait()
			if seen >= 2 {
				seats.write(seen - 2)
				sold <- 2
			}
		}()
	}
	done.Wait()
	close(sold)

	total := 0
	for n := range sold {
		total += n
	}
	assert.Equal(t, 4, total, "both buyers pass the check against the same snapshot")
	assert.Equal(t, 0, seats.read(), "the counter hides the oversold seats")
}

func TestConcurrentCreatesNeverOversell(t *testing.T) {
	f := newBookingFixture(t, 10)
	ctx := context.Background()
	const buyers = 25

	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := f.svc.Create(ctx, f.alice, f.input(2, models.PayNow))
			results <- err
		}()
	}
	close(start)
	wg.Wait()
	close(results)

	ok, rejected := 0, 0
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		require.True(t, domain.IsValidation(err), "unexpected error %v", err)
		rejected++
	}
	assert.Equal(t, 5, ok)
	assert.Equal(t, buyers-5, rejected)
	assert.Equal(t, 0, f.store.Available(f.bus.ID))
	f.assertSeatInvariant(t)
}

func TestConcurrentCancelsReleaseOnce(t *testing.T) {
	f := newBookingFixture(t, 10)
	ctx := context.Background()
	k, err := f.svc.Create(ctx, f.alice, f.input(4, models.PayNow))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.Cancel(ctx, f.alice, k.ID)
		}()
	}
	wg.Wait()
	assert.Equal(t, 10, f.store.Available(f.bus.ID))
	f.assertSeatInvariant(t)
}

func TestResizeBusKeepsBookedSeats(t *testing.T) {
	f := newBookingFixture(t, 10)
	ctx := context.Background()
	buses := BusService{Buses: f.store.Buses()}
	_, err := f.svc.Create(ctx, f.alice, f.input(3, models.PayNow))
	require.NoError(t, err)

	total := 8
	b, err := buses.Update(ctx, f.admin, f.bus.ID, models.BusUpdate{TotalSeats: &total})
	require.NoError(t, err)
	assert.Equal(t, 8, b.TotalSeats)
	assert.Equal(t, 5, b.AvailableSeats)
	assert.Equal(t, b.TotalSeats-f.store.HeldSeats(f.bus.ID), f.store.Available(f.bus.ID))

	_, err = f.svc.Create(ctx, f.bob, f.input(7, models.PayNow))
	require.Error(t, err)
	assert.Equal(t, "Not enough seats available", err.Error())
	_, err = f.svc.Create(ctx, f.bob, f.input(5, models.PayNow))
	require.NoError(t, err)
	assert.Equal(t, 0, f.store.Available(f.bus.ID))
	assert.Equal(t, 8, f.store.HeldSeats(f.bus.ID))

	tooSmall := 7
	_, err = buses.Update(ctx, f.admin, f.bus.ID, models.BusUpdate{TotalSeats: &tooSmall})
	require.True(t, domain.IsValidation(err), "unexpected error %v", err)
	fields := domain.FieldErrors(err)
	require.Len(t, fields, 1)
	assert.Equal(t, "totalSeats", fields[0].Field)
	assert.Equal(t, "Total seats cannot be less than the 8 seats already booked", fields[0].Msg)

	larger := 12
	b, err = buses.Update(ctx, f.admin, f.bus.ID, models.BusUpdate{TotalSeats: &larger})
	require.NoError(t, err)
	assert.Equal(t, 4, b.AvailableSeats)
	assert.Equal(t, b.TotalSeats-f.store.HeldSeats(f.bus.ID), f.store.Available(f.bus.ID))
}
