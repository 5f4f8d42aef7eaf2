package venue

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequest for POST /venues
type CreateRequest struct {
	HallID           uuid.UUID `json:"hall_id" validate:"required"`
	Name             string    `json:"name" validate:"required,min=2,max=200"`
	Description      string    `json:"description" validate:"max=2000"`
	Capacity         int       `json:"capacity" validate:"required,gt=0"`
	BasePricePerHour int64     `json:"base_price_per_hour" validate:"required,gt=0"`
	MinDurationHours int       `json:"min_duration_hours" validate:"required,gte=1"`
}

// UpdateRequest for PUT /venues/{id}
type UpdateRequest struct {
	Name             string `json:"name" validate:"required,min=2,max=200"`
	Description      string `json:"description" validate:"max=2000"`
	Capacity         int    `json:"capacity" validate:"required,gt=0"`
	BasePricePerHour int64  `json:"base_price_per_hour" validate:"required,gt=0"`
	MinDurationHours int    `json:"min_duration_hours" validate:"required,gte=1"`
}

// SlotRequest is one pricing slot in SetPricingRequest
type SlotRequest struct {
	SlotStart    string `json:"slot_start" validate:"required,hhmm"`
	SlotEnd      string `json:"slot_end" validate:"required,hhmm"`
	PricePerHour int64  `json:"price_per_hour" validate:"required,gt=0"`
}

// SetPricingRequest replaces the pricing slots for one effective date
type SetPricingRequest struct {
	EffectiveDate string        `json:"effective_date" validate:"required,date"`
	Slots         []SlotRequest `json:"slots" validate:"dive"`
}

// VenueResponse represents a venue in API responses
type VenueResponse struct {
	ID               uuid.UUID `json:"id"`
	HallID           uuid.UUID `json:"hall_id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	Capacity         int       `json:"capacity"`
	BasePricePerHour int64     `json:"base_price_per_hour"`
	MinDurationHours int       `json:"min_duration_hours"`
	ImageURL         string    `json:"image_url,omitempty"`
	ThumbnailURL     string    `json:"thumbnail_url,omitempty"`
	Active           bool      `json:"active"`
	CreatedAt        string    `json:"created_at"`
}

// NewVenueResponse maps a venue entity to its API shape
func NewVenueResponse(v *Venue) VenueResponse {
	return VenueResponse{
		ID:               v.ID,
		HallID:           v.HallID,
		Name:             v.Name,
		Description:      v.Description,
		Capacity:         v.Capacity,
		BasePricePerHour: int64(v.BasePricePerHour),
		MinDurationHours: v.MinDurationHours,
		ImageURL:         v.ImageURL.String,
		ThumbnailURL:     v.ThumbnailURL.String,
		Active:           v.Active,
		CreatedAt:        v.CreatedAt.Format(time.RFC3339),
	}
}

// SlotResponse represents a pricing slot in API responses
type SlotResponse struct {
	SlotStart    string `json:"slot_start"`
	SlotEnd      string `json:"slot_end"`
	PricePerHour int64  `json:"price_per_hour"`
}

// NewSlotResponse maps a pricing slot to its API shape
func NewSlotResponse(s *PricingSlot) SlotResponse {
	return SlotResponse{
		SlotStart:    s.SlotStart.String(),
		SlotEnd:      s.SlotEnd.String(),
		PricePerHour: int64(s.PricePerHour),
	}
}
