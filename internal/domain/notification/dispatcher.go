package notification

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/banquet/banquet-api/internal/domain/booking"
	"github.com/banquet/banquet-api/internal/pkg/mq"
)

// Dispatcher fans booking events out to the live staff feed and the
// message queue (consumed by the notify worker for emails). Publishing
// happens off the request goroutine to keep the booking path fast.
type Dispatcher struct {
	hub       *Hub
	publisher *mq.Publisher
}

// NewDispatcher creates the event dispatcher. Either sink may be nil.
func NewDispatcher(hub *Hub, publisher *mq.Publisher) *Dispatcher {
	return &Dispatcher{hub: hub, publisher: publisher}
}

// PublishBookingEvent implements booking.EventPublisher
func (d *Dispatcher) PublishBookingEvent(ctx context.Context, event booking.Event) {
	go func() {
		if d.hub != nil {
			d.hub.Broadcast(&event)
		}
		if d.publisher != nil {
			pubCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := d.publisher.PublishJSON(pubCtx, event.Type, event); err != nil {
				log.Error().Err(err).
					Str("event_type", event.Type).
					Str("booking_id", event.BookingID.String()).
					Msg("failed to publish booking event")
			}
		}
	}()
}
