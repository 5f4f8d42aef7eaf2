package booking

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/banquet/banquet-api/internal/pkg/money"
	"github.com/banquet/banquet-api/internal/pkg/timeslot"
)

// Status represents booking lifecycle state (matches booking_status enum)
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// IsTerminal reports whether no operation may mutate the booking anymore
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// PaymentMode represents how the customer pays (matches payment_mode enum)
type PaymentMode string

const (
	PaymentModeFull        PaymentMode = "full"
	PaymentModeInstallment PaymentMode = "installment"
)

// Booking represents a venue reservation (matches bookings table).
// totalAmount is snapshotted at creation: later venue price changes never
// affect an existing booking.
type Booking struct {
	ID                 uuid.UUID          `db:"id"`
	VenueID            uuid.UUID          `db:"venue_id"`
	HallID             uuid.UUID          `db:"hall_id"`
	CustomerID         uuid.UUID          `db:"customer_id"`
	BookingDate        string             `db:"booking_date"` // YYYY-MM-DD
	StartTime          timeslot.TimeOfDay `db:"start_time"`
	EndTime            timeslot.TimeOfDay `db:"end_time"`
	Status             Status             `db:"status"`
	PaymentMode        PaymentMode        `db:"payment_mode"`
	TotalAmount        money.Amount       `db:"total_amount"`
	PaidAmount         money.Amount       `db:"paid_amount"`
	CancellationReason sql.NullString     `db:"cancellation_reason"`
	CreatedAt          time.Time          `db:"created_at"`
	UpdatedAt          time.Time          `db:"updated_at"`
}

// DurationMinutes returns the booked interval length
func (b *Booking) DurationMinutes() int {
	return timeslot.DurationMinutes(b.StartTime, b.EndTime)
}

// ConfirmationThreshold returns the paid amount at which the booking
// flips to confirmed: the full total in full mode, the first installment
// (ceil of half) in installment mode.
func (b *Booking) ConfirmationThreshold() money.Amount {
	if b.PaymentMode == PaymentModeInstallment {
		return money.CeilHalf(b.TotalAmount)
	}
	return b.TotalAmount
}
