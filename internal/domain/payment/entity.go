package payment

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/banquet/banquet-api/internal/pkg/money"
)

// Type identifies which step of the payment plan a payment covers
// (matches payment_type enum)
type Type string

const (
	TypeFull         Type = "full"
	TypeInstallment1 Type = "installment_1"
	TypeInstallment2 Type = "installment_2"
	TypeRefund       Type = "refund"
)

// IsChargeType reports whether t is a customer-initiated charge step
func IsChargeType(t Type) bool {
	return t == TypeFull || t == TypeInstallment1 || t == TypeInstallment2
}

// Status represents payment lifecycle (matches payment_status enum)
type Status string

const (
	StatusPending  Status = "pending"
	StatusSuccess  Status = "success"
	StatusFailed   Status = "failed"
	StatusRefunded Status = "refunded"
)

// Payment represents a single gateway transaction against a booking
// (matches payments table). Success rows are unique per
// (booking_id, external_ref), which is what makes confirmation idempotent
// under at-least-once webhook delivery.
type Payment struct {
	ID            uuid.UUID      `db:"id"`
	BookingID     uuid.UUID      `db:"booking_id"`
	CustomerID    uuid.UUID      `db:"customer_id"`
	Type          Type           `db:"payment_type"`
	Status        Status         `db:"status"`
	Amount        money.Amount   `db:"amount"`
	ExternalRef   string         `db:"external_ref"`
	FailureReason sql.NullString `db:"failure_reason"`
	PaidAt        sql.NullTime   `db:"paid_at"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}
