package booking

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequest for POST /bookings
type CreateRequest struct {
	VenueID     uuid.UUID `json:"venue_id" validate:"required"`
	BookingDate string    `json:"booking_date" validate:"required,date"`
	StartTime   string    `json:"start_time" validate:"required,hhmm"`
	EndTime     string    `json:"end_time" validate:"required,hhmm"`
	PaymentMode string    `json:"payment_mode" validate:"required,payment_mode"`
}

// CancelRequest for POST /bookings/{id}/cancel
type CancelRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID                 uuid.UUID `json:"id"`
	VenueID            uuid.UUID `json:"venue_id"`
	HallID             uuid.UUID `json:"hall_id"`
	CustomerID         uuid.UUID `json:"customer_id"`
	BookingDate        string    `json:"booking_date"`
	StartTime          string    `json:"start_time"`
	EndTime            string    `json:"end_time"`
	Status             string    `json:"status"`
	PaymentMode        string    `json:"payment_mode"`
	TotalAmount        int64     `json:"total_amount"`
	PaidAmount         int64     `json:"paid_amount"`
	CancellationReason string    `json:"cancellation_reason,omitempty"`
	CreatedAt          string    `json:"created_at"`
}

// CreateResponse is the create result: the pending booking plus the amount
// the customer must pay now to confirm it.
type CreateResponse struct {
	Booking    BookingResponse `json:"booking"`
	PayableNow int64           `json:"payable_now"`
}

// NewBookingResponse maps a booking entity to its API shape
func NewBookingResponse(b *Booking) BookingResponse {
	return BookingResponse{
		ID:                 b.ID,
		VenueID:            b.VenueID,
		HallID:             b.HallID,
		CustomerID:         b.CustomerID,
		BookingDate:        b.BookingDate,
		StartTime:          b.StartTime.String(),
		EndTime:            b.EndTime.String(),
		Status:             string(b.Status),
		PaymentMode:        string(b.PaymentMode),
		TotalAmount:        int64(b.TotalAmount),
		PaidAmount:         int64(b.PaidAmount),
		CancellationReason: b.CancellationReason.String,
		CreatedAt:          b.CreatedAt.Format(time.RFC3339),
	}
}
