package venue

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/banquet/banquet-api/internal/pkg/imaging"
	"github.com/banquet/banquet-api/internal/pkg/money"
	"github.com/banquet/banquet-api/internal/pkg/storage"
	"github.com/banquet/banquet-api/internal/pkg/timeslot"
)

// MaxPhotoSize limits venue photo uploads
const MaxPhotoSize = 15 << 20 // 15 MB

// HallAccess is how the venue service checks hall management rights.
// Satisfied by hall.Service.
type HallAccess interface {
	RequireAccess(ctx context.Context, hallID, requesterID uuid.UUID) error
}

// Service handles venue business logic
type Service struct {
	repo      Repository
	halls     HallAccess
	storage   storage.Storage
	processor *imaging.Processor
}

// NewService creates venue service
func NewService(repo Repository, halls HallAccess, store storage.Storage, processor *imaging.Processor) *Service {
	return &Service{repo: repo, halls: halls, storage: store, processor: processor}
}

// Create adds a venue to a hall. Hall owner or staff.
func (s *Service) Create(ctx context.Context, requesterID uuid.UUID, req *CreateRequest) (*Venue, error) {
	if err := s.halls.RequireAccess(ctx, req.HallID, requesterID); err != nil {
		return nil, err
	}

	now := time.Now()
	v := &Venue{
		ID:               uuid.New(),
		HallID:           req.HallID,
		Name:             req.Name,
		Description:      req.Description,
		Capacity:         req.Capacity,
		BasePricePerHour: money.Amount(req.BasePricePerHour),
		MinDurationHours: req.MinDurationHours,
		Active:           true,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.repo.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// GetByID returns a venue
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*Venue, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, ErrVenueNotFound
	}
	return v, nil
}

// Update modifies venue details. Hall owner or staff. Price changes do not
// touch existing bookings: booking amounts are snapshotted at creation.
func (s *Service) Update(ctx context.Context, venueID, requesterID uuid.UUID, req *UpdateRequest) (*Venue, error) {
	v, err := s.GetByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if err := s.halls.RequireAccess(ctx, v.HallID, requesterID); err != nil {
		return nil, err
	}

	v.Name = req.Name
	v.Description = req.Description
	v.Capacity = req.Capacity
	v.BasePricePerHour = money.Amount(req.BasePricePerHour)
	v.MinDurationHours = req.MinDurationHours

	if err := s.repo.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

// ListByHall returns a hall's venues. Public listings only include active ones.
func (s *Service) ListByHall(ctx context.Context, hallID uuid.UUID, activeOnly bool) ([]Venue, error) {
	return s.repo.ListByHall(ctx, hallID, activeOnly)
}

// SetActive flips the bookable flag. Hall owner or staff.
func (s *Service) SetActive(ctx context.Context, venueID, requesterID uuid.UUID, active bool) error {
	v, err := s.GetByID(ctx, venueID)
	if err != nil {
		return err
	}
	if err := s.halls.RequireAccess(ctx, v.HallID, requesterID); err != nil {
		return err
	}
	return s.repo.SetActive(ctx, venueID, active)
}

// SetPricing replaces the pricing slots for one effective date.
// Slots must be well formed and must not overlap each other.
func (s *Service) SetPricing(ctx context.Context, venueID, requesterID uuid.UUID, req *SetPricingRequest) ([]SlotResponse, error) {
	v, err := s.GetByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if err := s.halls.RequireAccess(ctx, v.HallID, requesterID); err != nil {
		return nil, err
	}

	slots := make([]PricingSlot, len(req.Slots))
	for i, sr := range req.Slots {
		start, err := timeslot.Parse(sr.SlotStart)
		if err != nil {
			return nil, err
		}
		end, err := timeslot.Parse(sr.SlotEnd)
		if err != nil {
			return nil, err
		}
		if end <= start {
			return nil, ErrInvalidSlotRange
		}
		slots[i] = PricingSlot{
			ID:            uuid.New(),
			VenueID:       venueID,
			EffectiveDate: req.EffectiveDate,
			SlotStart:     start,
			SlotEnd:       end,
			PricePerHour:  money.Amount(sr.PricePerHour),
		}
	}

	for i := range slots {
		for j := i + 1; j < len(slots); j++ {
			if timeslot.Overlaps(slots[i].SlotStart, slots[i].SlotEnd, slots[j].SlotStart, slots[j].SlotEnd) {
				return nil, ErrOverlappingSlots
			}
		}
	}

	if err := s.repo.ReplacePricing(ctx, venueID, req.EffectiveDate, slots); err != nil {
		return nil, err
	}

	out := make([]SlotResponse, len(slots))
	for i := range slots {
		out[i] = NewSlotResponse(&slots[i])
	}
	return out, nil
}

// GetPricing returns the pricing slots for a date
func (s *Service) GetPricing(ctx context.Context, venueID uuid.UUID, effectiveDate string) ([]SlotResponse, error) {
	if _, err := s.GetByID(ctx, venueID); err != nil {
		return nil, err
	}
	slots, err := s.repo.GetPricing(ctx, venueID, effectiveDate)
	if err != nil {
		return nil, err
	}
	out := make([]SlotResponse, len(slots))
	for i := range slots {
		out[i] = NewSlotResponse(&slots[i])
	}
	return out, nil
}

// UploadPhoto processes and stores a venue photo plus its thumbnail.
func (s *Service) UploadPhoto(ctx context.Context, venueID, requesterID uuid.UUID, reader io.Reader) (*Venue, error) {
	v, err := s.GetByID(ctx, venueID)
	if err != nil {
		return nil, err
	}
	if err := s.halls.RequireAccess(ctx, v.HallID, requesterID); err != nil {
		return nil, err
	}

	processed, err := s.processor.Process(reader)
	if err != nil {
		return nil, ErrInvalidPhoto
	}

	photoID := uuid.New()
	ext := ".jpg"
	if processed.ContentType == "image/png" {
		ext = ".png"
	}
	imageKey := fmt.Sprintf("venues/%s/photos/%s%s", venueID, photoID, ext)
	thumbKey := fmt.Sprintf("venues/%s/photos/%s_thumb%s", venueID, photoID, ext)

	if err := s.storage.Put(ctx, imageKey, bytes.NewReader(processed.Original), processed.ContentType); err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}
	if err := s.storage.Put(ctx, thumbKey, bytes.NewReader(processed.Thumbnail), processed.ContentType); err != nil {
		_ = s.storage.Delete(ctx, imageKey)
		return nil, fmt.Errorf("store thumbnail: %w", err)
	}

	imageURL := s.storage.GetURL(imageKey)
	thumbURL := s.storage.GetURL(thumbKey)
	if err := s.repo.UpdateImages(ctx, venueID, imageURL, thumbURL); err != nil {
		_ = s.storage.Delete(ctx, imageKey)
		_ = s.storage.Delete(ctx, thumbKey)
		return nil, err
	}

	v.ImageURL.String = imageURL
	v.ImageURL.Valid = true
	v.ThumbnailURL.String = thumbURL
	v.ThumbnailURL.Valid = true
	return v, nil
}
