package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sysu-ecnc-dev/campus-visit/backend/internal/domain"
)

const bookingColumns = `
	id,
	reference,
	schedule_template_id,
	tour_date,
	to_char(tour_time, 'HH24:MI:SS'),
	parent_name,
	email,
	phone,
	adults,
	children,
	child_name,
	year_level,
	special_requirements,
	status,
	admin_notes,
	created_at,
	cancelled_at
`

func scanBooking(scan func(dst ...any) error) (*domain.Booking, error) {
	b := &domain.Booking{}
	dst := []any{
		&b.ID,
		&b.Reference,
		&b.ScheduleTemplateID,
		&b.TourDate,
		&b.TourTime,
		&b.ParentName,
		&b.Email,
		&b.Phone,
		&b.Adults,
		&b.Children,
		&b.ChildName,
		&b.YearLevel,
		&b.SpecialRequirements,
		&b.Status,
		&b.AdminNotes,
		&b.CreatedAt,
		&b.CancelledAt,
	}
	if err := scan(dst...); err != nil {
		return nil, err
	}
	return b, nil
}

func queryBookings(ctx context.Context, q querier, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows.Scan)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

func countConfirmedBookings(ctx context.Context, q querier, d domain.Date, tod string) (int, error) {
	query := `
		SELECT COUNT(*) FROM bookings
		WHERE tour_date = $1 AND tour_time = $2::time AND status = 'confirmed'
	`

	var count int
	if err := q.QueryRowContext(ctx, query, d, tod).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (r *Repository) CountConfirmedBookings(ctx context.Context, d domain.Date, tod string) (int, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	return countConfirmedBookings(ctx, r.dbpool, d, tod)
}

func (tx *Tx) CountConfirmedBookings(ctx context.Context, d domain.Date, tod string) (int, error) {
	return countConfirmedBookings(ctx, tx.tx, d, tod)
}

func (r *Repository) CountConfirmedBookingsBetween(ctx context.Context, from, to domain.Date) (map[domain.SlotKey]int, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT tour_date, to_char(tour_time, 'HH24:MI:SS'), COUNT(*)
		FROM bookings
		WHERE tour_date BETWEEN $1 AND $2 AND status = 'confirmed'
		GROUP BY tour_date, tour_time
	`

	rows, err := r.dbpool.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.SlotKey]int)
	for rows.Next() {
		var key domain.SlotKey
		var count int
		if err := rows.Scan(&key.Date, &key.Time, &count); err != nil {
			return nil, err
		}
		counts[key] = count
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (tx *Tx) BookingReferenceExists(ctx context.Context, reference string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bookings WHERE reference = $1)`

	var exists bool
	if err := tx.tx.QueryRowContext(ctx, query, reference).Scan(&exists); err != nil {
		return false, err
	}

	return exists, nil
}

// ErrDuplicateReference means the reference was committed by another
// transaction. InsertBooking rolls back to its savepoint first, so the
// surrounding transaction can try another reference.
var ErrDuplicateReference = errors.New("duplicate booking reference")

// InsertBooking fills in b.ID and b.CreatedAt.
func (tx *Tx) InsertBooking(ctx context.Context, b *domain.Booking) error {
	query := `
		INSERT INTO bookings (
			reference,
			schedule_template_id,
			tour_date,
			tour_time,
			parent_name,
			email,
			phone,
			adults,
			children,
			child_name,
			year_level,
			special_requirements,
			status
		) VALUES ($1, $2, $3, $4::time, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at
	`
	params := []any{
		b.Reference,
		b.ScheduleTemplateID,
		b.TourDate,
		b.TourTime,
		b.ParentName,
		b.Email,
		b.Phone,
		b.Adults,
		b.Children,
		b.ChildName,
		b.YearLevel,
		b.SpecialRequirements,
		b.Status,
	}

	if _, err := tx.tx.ExecContext(ctx, `SAVEPOINT insert_booking`); err != nil {
		return err
	}
	if err := tx.tx.QueryRowContext(ctx, query, params...).Scan(&b.ID, &b.CreatedAt); err != nil {
		if !isDuplicateReference(err) {
			return err
		}
		if _, rbErr := tx.tx.ExecContext(ctx, `ROLLBACK TO SAVEPOINT insert_booking`); rbErr != nil {
			return rbErr
		}
		return ErrDuplicateReference
	}
	if _, err := tx.tx.ExecContext(ctx, `RELEASE SAVEPOINT insert_booking`); err != nil {
		return err
	}

	return nil
}

func isDuplicateReference(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.ConstraintName == "bookings_reference_key"
}

// GetBookingForUpdate locks the booking row until the transaction ends.
func (tx *Tx) GetBookingForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`
	return scanBooking(tx.tx.QueryRowContext(ctx, query, id).Scan)
}

func (tx *Tx) CancelBooking(ctx context.Context, id int64, at time.Time) error {
	query := `UPDATE bookings SET status = 'cancelled', cancelled_at = $1 WHERE id = $2`
	if _, err := tx.tx.ExecContext(ctx, query, at, id); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetBookingByID(ctx context.Context, id int64) (*domain.Booking, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`
	return scanBooking(r.dbpool.QueryRowContext(ctx, query, id).Scan)
}

func (r *Repository) GetBookingByReference(ctx context.Context, reference string) (*domain.Booking, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE reference = $1`
	return scanBooking(r.dbpool.QueryRowContext(ctx, query, reference).Scan)
}

// UpdateBookingNotes returns sql.ErrNoRows when no booking has the id.
func (r *Repository) UpdateBookingNotes(ctx context.Context, id int64, notes string) error {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	var updated int64
	query := `UPDATE bookings SET admin_notes = $1 WHERE id = $2 RETURNING id`
	if err := r.dbpool.QueryRowContext(ctx, query, notes, id).Scan(&updated); err != nil {
		return err
	}

	return nil
}

// GetConfirmedBookingsOn lists confirmed bookings of one tour date by time.
func (r *Repository) GetConfirmedBookingsOn(ctx context.Context, d domain.Date) ([]*domain.Booking, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	query := `
		SELECT ` + bookingColumns + ` FROM bookings
		WHERE tour_date = $1 AND status = 'confirmed'
		ORDER BY tour_time, id
	`
	return queryBookings(ctx, r.dbpool, query, d)
}

// sortColumns is the full set of ORDER BY targets a caller can pick from.
var sortColumns = map[string]string{
	"tour_date":   "tour_date",
	"created_at":  "created_at",
	"parent_name": "parent_name",
	"status":      "status",
	"reference":   "reference",
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// bookingWhere builds a parameterized WHERE clause from the filter.
func bookingWhere(f domain.BookingFilter) (string, []any) {
	conds := []string{"TRUE"}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		conds = append(conds, "status = "+arg(f.Status))
	}
	if f.DateFrom != nil {
		conds = append(conds, "tour_date >= "+arg(*f.DateFrom))
	}
	if f.DateTo != nil {
		conds = append(conds, "tour_date <= "+arg(*f.DateTo))
	}
	if f.Search != "" {
		p := arg("%" + likeEscaper.Replace(f.Search) + "%")
		conds = append(conds, fmt.Sprintf(`(parent_name ILIKE %[1]s OR email ILIKE %[1]s OR reference ILIKE %[1]s)`, p))
	}

	return strings.Join(conds, " AND "), args
}

func bookingOrder(f domain.BookingFilter) string {
	column, ok := sortColumns[f.OrderBy]
	if !ok {
		column = "tour_date"
	}
	direction := "ASC"
	if strings.EqualFold(f.Order, "DESC") {
		direction = "DESC"
	}
	// tour_time and id keep pages stable across equal sort keys.
	return fmt.Sprintf("%s %s, tour_time %s, id %s", column, direction, direction, direction)
}

// ListBookings returns one page of bookings. f.Page and f.PerPage must be positive.
func (r *Repository) ListBookings(ctx context.Context, f domain.BookingFilter) ([]*domain.Booking, int64, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	where, args := bookingWhere(f)

	var total int64
	if err := r.dbpool.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookings WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf(
		`SELECT %s FROM bookings WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		bookingColumns, where, bookingOrder(f), len(args)+1, len(args)+2,
	)
	args = append(args, f.PerPage, (f.Page-1)*f.PerPage)

	bookings, err := queryBookings(ctx, r.dbpool, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}

// ListAllBookings returns every booking matching f, ignoring pagination.
func (r *Repository) ListAllBookings(ctx context.Context, f domain.BookingFilter) ([]*domain.Booking, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	where, args := bookingWhere(f)
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE %s ORDER BY %s`, bookingColumns, where, bookingOrder(f))
	return queryBookings(ctx, r.dbpool, query, args...)
}

// GetBookingStatistics returns raw figures; rates and averages are not rounded.
func (r *Repository) GetBookingStatistics(ctx context.Context, from, to *domain.Date) (*domain.BookingStatistics, error) {
	ctx, cancel := r.queryContext(ctx)
	defer cancel()

	where, args := bookingWhere(domain.BookingFilter{DateFrom: from, DateTo: to})

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'confirmed'),
			COUNT(*) FILTER (WHERE status = 'cancelled'),
			COALESCE(AVG(adults + children) FILTER (WHERE status = 'confirmed'), 0)::float8
		FROM bookings
		WHERE ` + where

	stats := &domain.BookingStatistics{}
	dst := []any{&stats.Total, &stats.Confirmed, &stats.Cancelled, &stats.AvgGroupSize}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(dst...); err != nil {
		return nil, err
	}

	query = `
		SELECT to_char(tour_time, 'HH24:MI:SS'), COUNT(*) AS count
		FROM bookings
		WHERE ` + where + ` AND status = 'confirmed'
		GROUP BY tour_time
		ORDER BY count DESC, tour_time
		LIMIT 5
	`
	rows, err := r.dbpool.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats.PopularTimes = make([]domain.PopularTime, 0, 5)
	for rows.Next() {
		var pt domain.PopularTime
		if err := rows.Scan(&pt.TourTime, &pt.Count); err != nil {
			return nil, err
		}
		stats.PopularTimes = append(stats.PopularTimes, pt)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return stats, nil
}
