package payment

import (
	"time"

	"github.com/google/uuid"
)

// CreateIntentRequest for POST /payments/intent
type CreateIntentRequest struct {
	BookingID   uuid.UUID `json:"booking_id" validate:"required"`
	PaymentType string    `json:"payment_type" validate:"required,payment_type"`
}

// IntentResponse carries what the client needs to complete the charge
type IntentResponse struct {
	PaymentID    uuid.UUID `json:"payment_id"`
	BookingID    uuid.UUID `json:"booking_id"`
	Amount       int64     `json:"amount"`
	Currency     string    `json:"currency"`
	ExternalRef  string    `json:"external_ref"`
	ClientSecret string    `json:"client_secret,omitempty"`
}

// ConfirmRequest for POST /payments/confirm (manual confirmation path;
// the webhook drives the same operation in production)
type ConfirmRequest struct {
	BookingID   uuid.UUID `json:"booking_id" validate:"required"`
	ExternalRef string    `json:"external_ref" validate:"required"`
	Amount      int64     `json:"amount" validate:"required,gt=0"`
}

// RefundRequest for POST /payments/refund. Amount omitted or zero means
// refund everything paid.
type RefundRequest struct {
	BookingID uuid.UUID `json:"booking_id" validate:"required"`
	Amount    int64     `json:"amount" validate:"gte=0"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID          uuid.UUID `json:"id"`
	BookingID   uuid.UUID `json:"booking_id"`
	Type        string    `json:"payment_type"`
	Status      string    `json:"status"`
	Amount      int64     `json:"amount"`
	ExternalRef string    `json:"external_ref"`
	PaidAt      *string   `json:"paid_at,omitempty"`
	CreatedAt   string    `json:"created_at"`
}

// ConfirmResponse is the booking state after a confirmation attempt
type ConfirmResponse struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingStatus string    `json:"booking_status"`
	PaidAmount    int64     `json:"paid_amount"`
	TotalAmount   int64     `json:"total_amount"`
	Duplicate     bool      `json:"duplicate"`
}

// NewPaymentResponse maps a payment entity to its API shape
func NewPaymentResponse(p *Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:          p.ID,
		BookingID:   p.BookingID,
		Type:        string(p.Type),
		Status:      string(p.Status),
		Amount:      int64(p.Amount),
		ExternalRef: p.ExternalRef,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
	}
	if p.PaidAt.Valid {
		paidAt := p.PaidAt.Time.Format(time.RFC3339)
		resp.PaidAt = &paidAt
	}
	return resp
}
