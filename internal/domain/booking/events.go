package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types published on booking lifecycle transitions.
const (
	EventCreated   = "booking.created"
	EventConfirmed = "booking.confirmed"
	EventCancelled = "booking.cancelled"
	EventCompleted = "booking.completed"
)

// Event is the message published to the event bus and the live feed on
// every booking transition.
type Event struct {
	Type        string    `json:"type"`
	BookingID   uuid.UUID `json:"booking_id"`
	VenueID     uuid.UUID `json:"venue_id"`
	HallID      uuid.UUID `json:"hall_id"`
	CustomerID  uuid.UUID `json:"customer_id"`
	BookingDate string    `json:"booking_date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time"`
	Reason      string    `json:"reason,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// EventPublisher delivers booking events to interested parties (message
// queue, websocket feed). Implementations must not block the request path.
type EventPublisher interface {
	PublishBookingEvent(ctx context.Context, event Event)
}

// NewEvent builds an event from a booking
func NewEvent(eventType string, b *Booking) Event {
	return Event{
		Type:        eventType,
		BookingID:   b.ID,
		VenueID:     b.VenueID,
		HallID:      b.HallID,
		CustomerID:  b.CustomerID,
		BookingDate: b.BookingDate,
		StartTime:   b.StartTime.String(),
		EndTime:     b.EndTime.String(),
		OccurredAt:  time.Now(),
	}
}
