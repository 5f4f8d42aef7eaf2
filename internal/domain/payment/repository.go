package payment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/banquet/banquet-api/internal/domain/booking"
	"github.com/banquet/banquet-api/internal/pkg/money"
)

const pqUniqueViolation = "23505"

// ConfirmResult is the booking state after a confirmation attempt.
type ConfirmResult struct {
	Booking   *booking.Booking
	Duplicate bool
	// Confirmed is true when this call flipped the booking from pending
	// to confirmed.
	Confirmed bool
}

// Repository defines payment data access
type Repository interface {
	CreatePending(ctx context.Context, p *Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Payment, error)
	ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]Payment, error)
	// Confirm settles a gateway charge against the booking in one
	// transaction. Replays of the same externalRef are detected and
	// return the current state without crediting twice.
	Confirm(ctx context.Context, bookingID uuid.UUID, externalRef string, amount money.Amount) (*ConfirmResult, error)
	// Refund records a refund row and decrements the booking's paid
	// amount under the same row lock confirmation uses.
	Refund(ctx context.Context, bookingID uuid.UUID, amount money.Amount, gatewayRef string) (*booking.Booking, error)
	// MarkFailed flags a still-pending intent as failed with the gateway
	// reason. Settled rows are never touched.
	MarkFailed(ctx context.Context, bookingID uuid.UUID, externalRef, reason string) error
	LatestSuccessRef(ctx context.Context, bookingID uuid.UUID) (string, error)
	ReceiptRows(ctx context.Context, bookingID uuid.UUID) (lines []Payment, refunded money.Amount, err error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates payment repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) CreatePending(ctx context.Context, p *Payment) error {
	query := `
		INSERT INTO payments (id, booking_id, customer_id, payment_type, status, amount, external_ref)
		VALUES ($1, $2, $3, $4, 'pending', $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.BookingID, p.CustomerID, p.Type, p.Amount, p.ExternalRef)
	if err != nil {
		return fmt.Errorf("payment repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Payment, error) {
	var p Payment
	err := r.db.GetContext(ctx, &p, `SELECT * FROM payments WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

func (r *repository) ListByBooking(ctx context.Context, bookingID uuid.UUID) ([]Payment, error) {
	payments := []Payment{}
	err := r.db.SelectContext(ctx, &payments, `
		SELECT * FROM payments
		WHERE booking_id = $1
		ORDER BY created_at ASC
	`, bookingID)
	if err != nil {
		return nil, fmt.Errorf("payment repository list: %w", err)
	}
	return payments, nil
}

const lockBookingQuery = `
	SELECT id, venue_id, hall_id, customer_id,
	       to_char(booking_date, 'YYYY-MM-DD') AS booking_date,
	       start_time, end_time, status, payment_mode,
	       total_amount, paid_amount, cancellation_reason, created_at, updated_at
	FROM bookings
	WHERE id = $1
	FOR UPDATE
`

func (r *repository) Confirm(ctx context.Context, bookingID uuid.UUID, externalRef string, amount money.Amount) (*ConfirmResult, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("payment repository begin tx: %w", err)
	}
	defer tx.Rollback()

	var b booking.Booking
	if err := tx.GetContext(ctx, &b, lockBookingQuery, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("payment repository lock booking: %w", err)
	}

	// Replayed webhook delivery: the reference already settled, report
	// the current state and change nothing.
	var settled int
	if err := tx.GetContext(ctx, &settled, `
		SELECT COUNT(*) FROM payments
		WHERE booking_id = $1 AND external_ref = $2 AND status = 'success'
	`, bookingID, externalRef); err != nil {
		return nil, fmt.Errorf("payment repository replay check: %w", err)
	}
	if settled > 0 {
		if err := tx.Commit(); err != nil {
			return nil, err
		}
		return &ConfirmResult{Booking: &b, Duplicate: true}, nil
	}

	if b.Status != booking.StatusPending && b.Status != booking.StatusConfirmed {
		return nil, ErrInvalidState
	}
	if b.PaidAmount >= b.TotalAmount {
		return nil, ErrInvalidState
	}

	expected := expectedStepAmount(&b)
	if amount != expected {
		return nil, ErrAmountMismatch
	}
	stepType := stepTypeFor(&b)

	// Settle the pending intent row if the client created one; webhooks
	// for charges initiated elsewhere get a fresh success row.
	result, err := tx.ExecContext(ctx, `
		UPDATE payments
		SET status = 'success', paid_at = NOW(), updated_at = NOW()
		WHERE booking_id = $1 AND external_ref = $2 AND status = 'pending'
	`, bookingID, externalRef)
	if err != nil {
		return nil, fmt.Errorf("payment repository settle intent: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO payments (id, booking_id, customer_id, payment_type, status, amount, external_ref, paid_at)
			VALUES ($1, $2, $3, $4, 'success', $5, $6, NOW())
		`, uuid.New(), bookingID, b.CustomerID, stepType, amount, externalRef)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
				// lost the race with a concurrent replay of the same ref
				return &ConfirmResult{Booking: &b, Duplicate: true}, nil
			}
			return nil, fmt.Errorf("payment repository record success: %w", err)
		}
	}

	newPaid := b.PaidAmount + amount
	newStatus := b.Status
	confirmed := false
	if b.Status == booking.StatusPending && newPaid >= b.ConfirmationThreshold() {
		newStatus = booking.StatusConfirmed
		confirmed = true
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE bookings SET paid_amount = $2, status = $3, updated_at = NOW()
		WHERE id = $1
	`, bookingID, newPaid, newStatus); err != nil {
		return nil, fmt.Errorf("payment repository credit booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	b.PaidAmount = newPaid
	b.Status = newStatus
	return &ConfirmResult{Booking: &b, Confirmed: confirmed}, nil
}

// expectedStepAmount returns the amount the next charge must carry: the
// confirmation threshold first, then the outstanding remainder.
func expectedStepAmount(b *booking.Booking) money.Amount {
	if b.PaidAmount == 0 {
		return b.ConfirmationThreshold()
	}
	return b.TotalAmount - b.PaidAmount
}

func stepTypeFor(b *booking.Booking) Type {
	if b.PaymentMode == booking.PaymentModeInstallment {
		if b.PaidAmount == 0 {
			return TypeInstallment1
		}
		return TypeInstallment2
	}
	return TypeFull
}

func (r *repository) Refund(ctx context.Context, bookingID uuid.UUID, amount money.Amount, gatewayRef string) (*booking.Booking, error) {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, fmt.Errorf("payment repository begin tx: %w", err)
	}
	defer tx.Rollback()

	var b booking.Booking
	if err := tx.GetContext(ctx, &b, lockBookingQuery, bookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("payment repository lock booking: %w", err)
	}

	if amount > b.PaidAmount {
		return nil, ErrRefundExceedsPaid
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO payments (id, booking_id, customer_id, payment_type, status, amount, external_ref, paid_at)
		VALUES ($1, $2, $3, 'refund', 'refunded', $4, $5, NOW())
	`, uuid.New(), bookingID, b.CustomerID, amount, gatewayRef); err != nil {
		return nil, fmt.Errorf("payment repository record refund: %w", err)
	}

	newPaid := b.PaidAmount - amount
	if _, err := tx.ExecContext(ctx, `
		UPDATE bookings SET paid_amount = $2, updated_at = NOW() WHERE id = $1
	`, bookingID, newPaid); err != nil {
		return nil, fmt.Errorf("payment repository debit booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	b.PaidAmount = newPaid
	return &b, nil
}

func (r *repository) MarkFailed(ctx context.Context, bookingID uuid.UUID, externalRef, reason string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE payments
		SET status = 'failed', failure_reason = $3, updated_at = NOW()
		WHERE booking_id = $1 AND external_ref = $2 AND status = 'pending'
	`, bookingID, externalRef, reason)
	if err != nil {
		return fmt.Errorf("payment repository mark failed: %w", err)
	}
	return nil
}

func (r *repository) LatestSuccessRef(ctx context.Context, bookingID uuid.UUID) (string, error) {
	var ref string
	err := r.db.GetContext(ctx, &ref, `
		SELECT external_ref FROM payments
		WHERE booking_id = $1 AND status = 'success'
		ORDER BY paid_at DESC
		LIMIT 1
	`, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNothingToRefund
		}
		return "", fmt.Errorf("payment repository latest ref: %w", err)
	}
	return ref, nil
}

func (r *repository) ReceiptRows(ctx context.Context, bookingID uuid.UUID) ([]Payment, money.Amount, error) {
	lines := []Payment{}
	err := r.db.SelectContext(ctx, &lines, `
		SELECT * FROM payments
		WHERE booking_id = $1 AND status = 'success'
		ORDER BY paid_at ASC
	`, bookingID)
	if err != nil {
		return nil, 0, fmt.Errorf("payment repository receipt rows: %w", err)
	}

	var refunded money.Amount
	err = r.db.GetContext(ctx, &refunded, `
		SELECT COALESCE(SUM(amount), 0) FROM payments
		WHERE booking_id = $1 AND status = 'refunded'
	`, bookingID)
	if err != nil {
		return nil, 0, fmt.Errorf("payment repository refunded total: %w", err)
	}
	return lines, refunded, nil
}
