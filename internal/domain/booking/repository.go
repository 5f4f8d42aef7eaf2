package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Postgres error codes surfaced when the reservation lock cannot be taken
// in time. Both mean no partial write happened and the caller may retry.
const (
	pqLockNotAvailable = "55P03"
	pqQueryCanceled    = "57014"
)

const selectColumns = `
	id, venue_id, hall_id, customer_id,
	to_char(booking_date, 'YYYY-MM-DD') AS booking_date,
	start_time, end_time, status, payment_mode,
	total_amount, paid_amount, cancellation_reason, created_at, updated_at
`

// Repository defines booking data access interface
type Repository interface {
	// CreateReserving inserts a pending booking after proving the slot is
	// free. The overlap check and the insert run as one serialized unit
	// per (venue, date): concurrent conflicting requests cannot both
	// commit. Returns ErrSlotConflict on overlap and ErrConflict when the
	// reservation lock could not be acquired within the timeout.
	CreateReserving(ctx context.Context, b *Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	// UpdateStatusIf conditionally moves the booking between statuses.
	// The current status is part of the WHERE clause, so a concurrent
	// transition makes this fail with ErrInvalidState instead of
	// overwriting it.
	UpdateStatusIf(ctx context.Context, id uuid.UUID, from []Status, to Status, reason string) error
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Booking, error)
	ListByVenue(ctx context.Context, venueID uuid.UUID) ([]Booking, error)
	ListByHall(ctx context.Context, hallID uuid.UUID) ([]Booking, error)
	// CompletePast moves confirmed bookings whose date has passed to
	// completed. Returns the number of bookings transitioned.
	CompletePast(ctx context.Context, today string) (int64, error)
	// ExpireStalePending cancels pending bookings with no payment that
	// were created before the cutoff, releasing their slots.
	ExpireStalePending(ctx context.Context, cutoff time.Time, reason string) (int64, error)
}

type repository struct {
	db          *sqlx.DB
	lockTimeout time.Duration
}

// NewRepository creates new booking repository
func NewRepository(db *sqlx.DB, lockTimeout time.Duration) Repository {
	if lockTimeout <= 0 {
		lockTimeout = 3 * time.Second
	}
	return &repository{db: db, lockTimeout: lockTimeout}
}

func (r *repository) CreateReserving(ctx context.Context, b *Booking) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("booking repository begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", r.lockTimeout.Milliseconds())); err != nil {
		return fmt.Errorf("booking repository set lock timeout: %w", err)
	}

	// Serialize all reservation attempts for the same venue and date.
	// The lock is released automatically at commit/rollback.
	lockKey := b.VenueID.String() + ":" + b.BookingDate
	if _, err := tx.ExecContext(ctx,
		`SELECT pg_advisory_xact_lock(hashtext($1))`, lockKey); err != nil {
		return mapLockError(err)
	}

	var overlapping int
	err = tx.GetContext(ctx, &overlapping, `
		SELECT COUNT(*)
		FROM bookings
		WHERE venue_id = $1
		  AND booking_date = $2
		  AND status IN ('pending', 'confirmed')
		  AND start_time < $4
		  AND $3 < end_time
	`, b.VenueID, b.BookingDate, b.StartTime, b.EndTime)
	if err != nil {
		return mapLockError(err)
	}
	if overlapping > 0 {
		return ErrSlotConflict
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (id, venue_id, hall_id, customer_id, booking_date,
		                      start_time, end_time, status, payment_mode,
		                      total_amount, paid_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, b.ID, b.VenueID, b.HallID, b.CustomerID, b.BookingDate,
		b.StartTime, b.EndTime, b.Status, b.PaymentMode,
		b.TotalAmount, b.PaidAmount); err != nil {
		return fmt.Errorf("booking repository insert: %w", err)
	}

	return tx.Commit()
}

func mapLockError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && (string(pqErr.Code) == pqLockNotAvailable || string(pqErr.Code) == pqQueryCanceled) {
		return ErrConflict
	}
	return fmt.Errorf("booking repository reserve: %w", err)
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	query := `SELECT ` + selectColumns + ` FROM bookings WHERE id = $1`
	var b Booking
	if err := r.db.GetContext(ctx, &b, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &b, nil
}

func (r *repository) UpdateStatusIf(ctx context.Context, id uuid.UUID, from []Status, to Status, reason string) error {
	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}

	query := `
		UPDATE bookings
		SET status = $2, cancellation_reason = COALESCE(NULLIF($3, ''), cancellation_reason),
		    updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)
	`
	result, err := r.db.ExecContext(ctx, query, id, to, reason, pq.Array(fromStrs))
	if err != nil {
		return fmt.Errorf("booking repository update status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrBookingNotFound
		}
		return ErrInvalidState
	}
	return nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]Booking, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM bookings WHERE customer_id = $1
		ORDER BY booking_date DESC, start_time DESC
	`
	return r.list(ctx, query, customerID)
}

func (r *repository) ListByVenue(ctx context.Context, venueID uuid.UUID) ([]Booking, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM bookings WHERE venue_id = $1
		ORDER BY booking_date ASC, start_time ASC
	`
	return r.list(ctx, query, venueID)
}

func (r *repository) ListByHall(ctx context.Context, hallID uuid.UUID) ([]Booking, error) {
	query := `
		SELECT ` + selectColumns + `
		FROM bookings WHERE hall_id = $1
		ORDER BY booking_date ASC, start_time ASC
	`
	return r.list(ctx, query, hallID)
}

func (r *repository) list(ctx context.Context, query string, arg interface{}) ([]Booking, error) {
	bookings := []Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, arg); err != nil {
		return nil, fmt.Errorf("booking repository list: %w", err)
	}
	return bookings, nil
}

func (r *repository) CompletePast(ctx context.Context, today string) (int64, error) {
	query := `
		UPDATE bookings
		SET status = 'completed', updated_at = NOW()
		WHERE status = 'confirmed' AND booking_date < $1
	`
	result, err := r.db.ExecContext(ctx, query, today)
	if err != nil {
		return 0, fmt.Errorf("booking repository complete past: %w", err)
	}
	return result.RowsAffected()
}

func (r *repository) ExpireStalePending(ctx context.Context, cutoff time.Time, reason string) (int64, error) {
	query := `
		UPDATE bookings
		SET status = 'cancelled', cancellation_reason = $2, updated_at = NOW()
		WHERE status = 'pending' AND paid_amount = 0 AND created_at < $1
	`
	result, err := r.db.ExecContext(ctx, query, cutoff, reason)
	if err != nil {
		return 0, fmt.Errorf("booking repository expire pending: %w", err)
	}
	return result.RowsAffected()
}
