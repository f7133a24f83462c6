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
	"bookmybus/internal/utils"
)

const busColumns = `id, bus_number, bus_name, operator, route_from, route_to,
	departure_time, arrival_time, travel_date, total_seats, available_seats,
	fare, bus_type, COALESCE(amenities,''), is_active, created_at`

type BusRepository struct {
	DB *sql.DB
}

func (r BusRepository) db() *sql.DB {
	if r.DB != nil {
		return r.DB
	}
	return intconfig.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBus(row rowScanner) (models.Bus, error) {
	var (
		b         models.Bus
		busType   string
		amenities string
	)
	if err := row.Scan(
		&b.ID,
		&b.BusNumber,
		&b.BusName,
		&b.Operator,
		&b.From,
		&b.To,
		&b.DepartureTime,
		&b.ArrivalTime,
		&b.Date,
		&b.TotalSeats,
		&b.AvailableSeats,
		&b.Fare,
		&busType,
		&amenities,
		&b.IsActive,
		&b.CreatedAt,
	); err != nil {
		return models.Bus{}, err
	}
	b.BusType = models.BusType(busType)
	b.Amenities = utils.SplitList(amenities)
	return b, nil
}

func (r BusRepository) Create(ctx context.Context, b models.Bus) (models.Bus, error) {
	res, err := r.db().ExecContext(ctx, `
		INSERT INTO buses (bus_number, bus_name, operator, route_from, route_to,
			departure_time, arrival_time, travel_date, total_seats, available_seats,
			fare, bus_type, amenities, is_active, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		b.BusNumber, b.BusName, b.Operator, b.From, b.To,
		b.DepartureTime, b.ArrivalTime, b.Date, b.TotalSeats, b.AvailableSeats,
		b.Fare, string(b.BusType), utils.JoinList(b.Amenities), b.IsActive, b.CreatedAt,
	)
	if err != nil {
		if intdb.IsDuplicateKey(err) {
			return models.Bus{}, domain.ConflictError{Resource: "bus", Msg: "bus number already exists", Err: err}
		}
		return models.Bus{}, fmt.Errorf("insert bus: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Bus{}, fmt.Errorf("insert bus id: %w", err)
	}
	b.ID = id
	return b, nil
}

func (r BusRepository) GetByID(ctx context.Context, id int64) (models.Bus, error) {
	return r.getByID(ctx, r.db(), id)
}

func (r BusRepository) getByID(ctx context.Context, q intdb.DBTX, id int64) (models.Bus, error) {
	b, err := scanBus(q.QueryRowContext(ctx, `SELECT `+busColumns+` FROM buses WHERE id=? LIMIT 1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Bus{}, domain.NotFoundError{Resource: "Bus", Err: err}
		}
		return models.Bus{}, fmt.Errorf("get bus %d: %w", id, err)
	}
	return b, nil
}

// List returns buses ordered by travel date; activeOnly hides retired ones.
func (r BusRepository) List(ctx context.Context, activeOnly bool) ([]models.Bus, error) {
	query := `SELECT ` + busColumns + ` FROM buses`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY travel_date ASC, id ASC`
	return r.query(ctx, query)
}

// Search matches from/to as case-insensitive substrings on one calendar day.
// Only active buses with seats left are returned, earliest departure first.
func (r BusRepository) Search(ctx context.Context, q models.SearchQuery) ([]models.Bus, error) {
	start, end := utils.DayBounds(q.Day)
	from := "%" + intdb.LikeEscape(strings.ToLower(strings.TrimSpace(q.From))) + "%"
	to := "%" + intdb.LikeEscape(strings.ToLower(strings.TrimSpace(q.To))) + "%"
	return r.query(ctx, `
		SELECT `+busColumns+`
		FROM buses
		WHERE LOWER(route_from) LIKE ?
		  AND LOWER(route_to) LIKE ?
		  AND travel_date >= ? AND travel_date < ?
		  AND is_active = 1
		  AND available_seats > 0
		ORDER BY departure_time ASC, id ASC
	`, from, to, start, end)
}

func (r BusRepository) query(ctx context.Context, query string, args ...any) ([]models.Bus, error) {
	rows, err := r.db().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query buses: %w", err)
	}
	defer rows.Close()

	out := []models.Bus{}
	for rows.Next() {
		b, err := scanBus(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bus: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Update writes only the present fields. Shrinking total_seats clamps
// available_seats in the same statement so 0 <= available <= total holds.
func (r BusRepository) Update(ctx context.Context, id int64, u models.BusUpdate) (models.Bus, error) {
	sets := []string{}
	args := []any{}
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if u.BusNumber != nil {
		add("bus_number", *u.BusNumber)
	}
	if u.BusName != nil {
		add("bus_name", *u.BusName)
	}
	if u.Operator != nil {
		add("operator", *u.Operator)
	}
	if u.From != nil {
		add("route_from", *u.From)
	}
	if u.To != nil {
		add("route_to", *u.To)
	}
	if u.DepartureTime != nil {
		add("departure_time", *u.DepartureTime)
	}
	if u.ArrivalTime != nil {
		add("arrival_time", *u.ArrivalTime)
	}
	if u.Date != nil {
		add("travel_date", *u.Date)
	}
	// available_seats must be assigned before total_seats so it still sees
	// the old total; held seats stay held when the capacity changes.
	resized := u.TotalSeats != nil && u.AvailableSeats == nil
	if u.AvailableSeats != nil {
		add("available_seats", *u.AvailableSeats)
	} else if resized {
		sets = append(sets, "available_seats=available_seats+?-total_seats")
		args = append(args, *u.TotalSeats)
	}
	if u.TotalSeats != nil {
		add("total_seats", *u.TotalSeats)
	}
	if u.Fare != nil {
		add("fare", *u.Fare)
	}
	if u.BusType != nil {
		add("bus_type", string(*u.BusType))
	}
	if u.Amenities != nil {
		add("amenities", utils.JoinList(*u.Amenities))
	}
	if u.IsActive != nil {
		add("is_active", *u.IsActive)
	}

	if len(sets) > 0 {
		where := ` WHERE id=?`
		args = append(args, id)
		if resized {
			where += ` AND total_seats-available_seats <= ?`
			args = append(args, *u.TotalSeats)
		}
		res, err := r.db().ExecContext(ctx, `UPDATE buses SET `+strings.Join(sets, ", ")+where, args...)
		if err != nil {
			if intdb.IsDuplicateKey(err) {
				return models.Bus{}, domain.ConflictError{Resource: "bus", Msg: "bus number already exists", Err: err}
			}
			return models.Bus{}, fmt.Errorf("update bus %d: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			if !resized {
				return models.Bus{}, domain.NotFoundError{Resource: "Bus"}
			}
			return models.Bus{}, r.resizeRejected(ctx, id)
		}
	}
	return r.GetByID(ctx, id)
}

// resizeRejected explains a capacity change that matched no row: the bus is
// gone or more seats are held than the new total allows.
func (r BusRepository) resizeRejected(ctx context.Context, id int64) error {
	var held int
	err := r.db().QueryRowContext(ctx, `SELECT total_seats-available_seats FROM buses WHERE id=?`, id).Scan(&held)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: "Bus"}
	}
	if err != nil {
		return fmt.Errorf("update bus %d: %w", id, err)
	}
	return domain.TotalBelowHeld(held)
}

func (r BusRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db().ExecContext(ctx, `DELETE FROM buses WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("delete bus %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.NotFoundError{Resource: "Bus"}
	}
	return nil
}

func (r BusRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db().QueryRowContext(ctx, `SELECT COUNT(*) FROM buses`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count buses: %w", err)
	}
	return n, nil
}

// reserveSeats decrements available_seats only when enough remain. The
// check and the write are one statement, so concurrent bookings cannot
// oversell a bus.
func reserveSeats(ctx context.Context, q intdb.DBTX, busID int64, n int) error {
	res, err := q.ExecContext(ctx, `
		UPDATE buses
		SET available_seats = available_seats - ?
		WHERE id = ? AND available_seats >= ?
	`, n, busID, n)
	if err != nil {
		return fmt.Errorf("reserve seats on bus %d: %w", busID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reserve seats on bus %d: %w", busID, err)
	}
	if affected == 1 {
		return nil
	}

	var available int
	err = q.QueryRowContext(ctx, `SELECT available_seats FROM buses WHERE id=?`, busID).Scan(&available)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFoundError{Resource: "Bus", Err: err}
	}
	if err != nil {
		return fmt.Errorf("reserve seats on bus %d: %w", busID, err)
	}
	return domain.ErrNotEnoughSeats
}

// releaseSeats gives n seats back. Capacity changes keep held seats intact,
// so the LEAST clamp never bites; it stays as a safety net for rows edited
// outside the API. A missing bus is reported as released=false without error.
func releaseSeats(ctx context.Context, q intdb.DBTX, busID int64, n int) (bool, error) {
	res, err := q.ExecContext(ctx, `
		UPDATE buses
		SET available_seats = LEAST(total_seats, available_seats + ?)
		WHERE id = ?
	`, n, busID)
	if err != nil {
		return false, fmt.Errorf("release seats on bus %d: %w", busID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("release seats on bus %d: %w", busID, err)
	}
	return affected > 0, nil
}
