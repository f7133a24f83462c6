package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	intconfig "bookmybus/internal/config"
	intdb "bookmybus/internal/db"
	"bookmybus/internal/domain"
	"bookmybus/internal/domain/models"
)

const bookingSelect = `
	SELECT
		k.id, k.booking_code, k.user_id, k.bus_id, k.total_amount,
		k.payment_status, k.payment_method, k.booking_status,
		k.contact_number, k.email, k.booking_date, k.travel_date,
		b.id, b.bus_number, b.bus_name, b.operator, b.route_from, b.route_to,
		b.departure_time, b.arrival_time, b.travel_date,
		u.id, u.name, u.email, u.phone
	FROM bookings k
	LEFT JOIN buses b ON b.id = k.bus_id
	LEFT JOIN users u ON u.id = k.user_id
`

type BookingRepository struct {
	DB *sql.DB
}

func (r BookingRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

func scanBooking(row rowScanner) (models.Booking, error) {
	var k models.Booking
	var payStatus, payMethod, bookStatus string
	var busID, userID sql.NullInt64
	var busNumber, busName, operator, from, to sql.NullString
	var departure, arrival sql.NullString
	var userName, userEmail, userPhone sql.NullString
	var busDate sql.NullTime
	if err := row.Scan(
		&k.ID, &k.BookingID, &k.UserID, &k.BusID, &k.TotalAmount,
		&payStatus, &payMethod, &bookStatus,
		&k.ContactNumber, &k.Email, &k.BookingDate, &k.TravelDate,
		&busID, &busNumber, &busName, &operator, &from, &to,
		&departure, &arrival, &busDate,
		&userID, &userName, &userEmail, &userPhone,
	); err != nil {
		return models.Booking{}, err
	}
	k.PaymentStatus = models.PaymentStatus(payStatus)
	k.PaymentMethod = models.PaymentMethod(payMethod)
	k.BookingStatus = models.BookingStatus(bookStatus)
	if busID.Valid {
		k.Bus = &models.BusSummary{
			ID:            busID.Int64,
			BusNumber:     busNumber.String,
			BusName:       busName.String,
			Operator:      operator.String,
			From:          from.String,
			To:            to.String,
			DepartureTime: departure.String,
			ArrivalTime:   arrival.String,
			Date:          busDate.Time,
		}
	}
	if userID.Valid {
		k.User = &models.UserSummary{
			ID:    userID.Int64,
			Name:  userName.String,
			Email: userEmail.String,
			Phone: userPhone.String,
		}
	}
	return k, nil
}

// CreateReserving persists a booking and takes its seats from the bus in one
// transaction. Either both the booking and the seat decrement happen or
// neither does.
func (r BookingRepository) CreateReserving(ctx context.Context, k models.Booking) (models.Booking, error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return models.Booking{}, fmt.Errorf("begin booking tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := reserveSeats(ctx, tx, k.BusID, k.SeatCount()); err != nil {
		return models.Booking{}, err
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (booking_code, user_id, bus_id, total_amount,
			payment_status, payment_method, booking_status,
			contact_number, email, booking_date, travel_date)
		VALUES (?,?,?,?,?,?,?,?,?,?,?)
	`,
		k.BookingID, k.UserID, k.BusID, k.TotalAmount,
		string(k.PaymentStatus), string(k.PaymentMethod), string(k.BookingStatus),
		k.ContactNumber, k.Email, k.BookingDate, k.TravelDate,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return models.Booking{}, domain.ConflictError{Resource: "booking", Msg: "booking id already exists", Err: err}
		}
		return models.Booking{}, fmt.Errorf("insert booking: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Booking{}, fmt.Errorf("insert booking id: %w", err)
	}
	k.ID = id

	if err := insertPassengers(ctx, tx, id, k.Passengers); err != nil {
		return models.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Booking{}, fmt.Errorf("commit booking: %w", err)
	}
	return k, nil
}

func insertPassengers(ctx context.Context, q intdb.DBTX, bookingID int64, passengers []models.Passenger) error {
	if len(passengers) == 0 {
		return nil
	}
	rows := make([]string, 0, len(passengers))
	args := make([]any, 0, len(passengers)*6)
	for i, p := range passengers {
		rows = append(rows, "("+intdb.Placeholders(6)+")")
		args = append(args, bookingID, i, p.Name, p.Age, string(p.Gender), p.SeatNumber)
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO booking_passengers (booking_id, position, name, age, gender, seat_number)
		VALUES `+strings.Join(rows, ","), args...)
	if err != nil {
		return fmt.Errorf("insert passengers: %w", err)
	}
	return nil
}

func (r BookingRepository) GetByID(ctx context.Context, id int64) (models.Booking, error) {
	k, err := scanBooking(r.db().QueryRowContext(ctx, bookingSelect+` WHERE k.id=? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Booking{}, domain.NotFoundError{Resource: "Booking", Err: err}
		}
		return models.Booking{}, fmt.Errorf("get booking %d: %w", id, err)
	}
	list := []models.Booking{k}
	if err := attachPassengers(ctx, r.db(), list); err != nil {
		return models.Booking{}, err
	}
	return list[0], nil
}

// ListByUser returns the user's bookings, newest first.
func (r BookingRepository) ListByUser(ctx context.Context, userID int64) ([]models.Booking, error) {
	return r.list(ctx, bookingSelect+` WHERE k.user_id=? ORDER BY k.booking_date DESC, k.id DESC`, userID)
}

// ListAll returns every booking, newest first.
func (r BookingRepository) ListAll(ctx context.Context) ([]models.Booking, error) {
	return r.list(ctx, bookingSelect+` ORDER BY k.booking_date DESC, k.id DESC`)
}

func (r BookingRepository) list(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	out := []models.Booking{}
	for rows.Next() {
		k, err := scanBooking(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if err := attachPassengers(ctx, r.db(), out); err != nil {
		return nil, err
	}
	return out, nil
}

func attachPassengers(ctx context.Context, q intdb.DBTX, list []models.Booking) error {
	if len(list) == 0 {
		return nil
	}
	ids := make([]any, 0, len(list))
	index := make(map[int64]int, len(list))
	for i, k := range list {
		ids = append(ids, k.ID)
		index[k.ID] = i
		list[i].Passengers = []models.Passenger{}
	}
	rows, err := q.QueryContext(ctx, `
		SELECT booking_id, name, age, gender, seat_number
		FROM booking_passengers
		WHERE booking_id IN (`+intdb.Placeholders(len(ids))+`)
		ORDER BY booking_id, position
	`, ids...)
	if err != nil {
		return fmt.Errorf("query passengers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			bookingID int64
			p         models.Passenger
			gender    string
		)
		if err := rows.Scan(&bookingID, &p.Name, &p.Age, &gender, &p.SeatNumber); err != nil {
			return fmt.Errorf("scan passenger: %w", err)
		}
		p.Gender = models.Gender(gender)
		if i, ok := index[bookingID]; ok {
			list[i].Passengers = append(list[i].Passengers, p)
		}
	}
	return rows.Err()
}

// CancelReleasing marks a booking cancelled and returns its seats to the bus
// in one transaction. The booking row is locked first so two cancels of the
// same booking cannot both release seats. A bus that no longer exists is
// skipped.
func (r BookingRepository) CancelReleasing(ctx context.Context, id int64) (models.Booking, error) {
	tx, err := r.db().BeginTx(ctx, nil)
	if err != nil {
		return models.Booking{}, fmt.Errorf("begin cancel tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var (
		busID  int64
		status string
		seats  int
	)
	err = tx.QueryRowContext(ctx, `
		SELECT k.bus_id, k.booking_status,
			(SELECT COUNT(*) FROM booking_passengers p WHERE p.booking_id = k.id)
		FROM bookings k
		WHERE k.id=?
		FOR UPDATE
	`, id).Scan(&busID, &status, &seats)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Booking{}, domain.NotFoundError{Resource: "Booking", Err: err}
	}
	if err != nil {
		return models.Booking{}, fmt.Errorf("lock booking %d: %w", id, err)
	}
	if models.BookingStatus(status) == models.BookingCancelled {
		return models.Booking{}, domain.ValidationError{Msg: "Booking is already cancelled"}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE bookings SET booking_status=?, payment_status=? WHERE id=?
	`, string(models.BookingCancelled), string(models.PaymentCancelled), id); err != nil {
		return models.Booking{}, fmt.Errorf("cancel booking %d: %w", id, err)
	}
	if _, err := releaseSeats(ctx, tx, busID, seats); err != nil {
		return models.Booking{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Booking{}, fmt.Errorf("commit cancel: %w", err)
	}
	return r.GetByID(ctx, id)
}

// Recent returns the newest bookings, at most limit of them.
func (r BookingRepository) Recent(ctx context.Context, limit int) ([]models.Booking, error) {
	if limit <= 0 {
		limit = 5
	}
	return r.list(ctx, bookingSelect+` ORDER BY k.booking_date DESC, k.id DESC LIMIT ?`, limit)
}

func (r BookingRepository) Stats(ctx context.Context) (models.BookingStats, error) {
	var st models.BookingStats
	var revenue sql.NullFloat64
	err := r.db().QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(booking_status = ?), 0),
			COALESCE(SUM(booking_status = ?), 0),
			SUM(CASE WHEN payment_status = ? THEN total_amount END)
		FROM bookings
	`, string(models.BookingConfirmed), string(models.BookingCancelled), string(models.PaymentCompleted)).
		Scan(&st.Total, &st.Confirmed, &st.Cancelled, &revenue)
	if err != nil {
		return models.BookingStats{}, fmt.Errorf("booking stats: %w", err)
	}
	st.Revenue = revenue.Float64
	return st, nil
}

// UpdateStatus is the admin override. It never touches bus seat counts.
func (r BookingRepository) UpdateStatus(ctx context.Context, id int64, o models.StatusOverride) (models.Booking, error) {
	sets := []string{}
	args := []any{}
	if o.BookingStatus != nil {
		sets = append(sets, "booking_status=?")
		args = append(args, string(*o.BookingStatus))
	}
	if o.PaymentStatus != nil {
		sets = append(sets, "payment_status=?")
		args = append(args, string(*o.PaymentStatus))
	}
	if len(sets) > 0 {
		args = append(args, id)
		res, err := r.db().ExecContext(ctx, `UPDATE bookings SET `+strings.Join(sets, ", ")+` WHERE id=?`, args...)
		if err != nil {
			return models.Booking{}, fmt.Errorf("update booking %d status: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return models.Booking{}, domain.NotFoundError{Resource: "Booking"}
		}
	}
	return r.GetByID(ctx, id)
}
