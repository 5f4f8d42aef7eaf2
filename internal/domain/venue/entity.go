package venue

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/banquet/banquet-api/internal/pkg/money"
	"github.com/banquet/banquet-api/internal/pkg/timeslot"
)

// Venue represents a bookable space within a hall (matches venues table)
type Venue struct {
	ID               uuid.UUID      `db:"id"`
	HallID           uuid.UUID      `db:"hall_id"`
	Name             string         `db:"name"`
	Description      string         `db:"description"`
	Capacity         int            `db:"capacity"`
	BasePricePerHour money.Amount   `db:"base_price_per_hour"`
	MinDurationHours int            `db:"min_duration_hours"`
	ImageURL         sql.NullString `db:"image_url"`
	ThumbnailURL     sql.NullString `db:"thumbnail_url"`
	Active           bool           `db:"active"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// PricingSlot is a per-date time-slot price override (matches venue_pricing table).
// When a booking interval overlaps a slot, the slot price applies to the
// overlapped minutes instead of the venue base rate.
type PricingSlot struct {
	ID            uuid.UUID          `db:"id"`
	VenueID       uuid.UUID          `db:"venue_id"`
	EffectiveDate string             `db:"effective_date"` // YYYY-MM-DD
	SlotStart     timeslot.TimeOfDay `db:"slot_start"`
	SlotEnd       timeslot.TimeOfDay `db:"slot_end"`
	PricePerHour  money.Amount       `db:"price_per_hour"`
}
