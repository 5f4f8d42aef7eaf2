package venue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines venue data access interface
type Repository interface {
	Create(ctx context.Context, v *Venue) error
	GetByID(ctx context.Context, id uuid.UUID) (*Venue, error)
	Update(ctx context.Context, v *Venue) error
	ListByHall(ctx context.Context, hallID uuid.UUID, activeOnly bool) ([]Venue, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	UpdateImages(ctx context.Context, id uuid.UUID, imageURL, thumbnailURL string) error
	// ReplacePricing swaps out all pricing slots of a venue for one
	// effective date in a single transaction.
	ReplacePricing(ctx context.Context, venueID uuid.UUID, effectiveDate string, slots []PricingSlot) error
	GetPricing(ctx context.Context, venueID uuid.UUID, effectiveDate string) ([]PricingSlot, error)
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new venue repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, v *Venue) error {
	query := `
		INSERT INTO venues (id, hall_id, name, description, capacity,
		                    base_price_per_hour, min_duration_hours, active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		v.ID, v.HallID, v.Name, v.Description, v.Capacity,
		v.BasePricePerHour, v.MinDurationHours, v.Active,
	)
	if err != nil {
		return fmt.Errorf("venue repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Venue, error) {
	query := `
		SELECT id, hall_id, name, description, capacity, base_price_per_hour,
		       min_duration_hours, image_url, thumbnail_url, active,
		       created_at, updated_at
		FROM venues WHERE id = $1
	`
	var v Venue
	if err := r.db.GetContext(ctx, &v, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

func (r *repository) Update(ctx context.Context, v *Venue) error {
	query := `
		UPDATE venues
		SET name = $2, description = $3, capacity = $4,
		    base_price_per_hour = $5, min_duration_hours = $6, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		v.ID, v.Name, v.Description, v.Capacity, v.BasePricePerHour, v.MinDurationHours,
	)
	if err != nil {
		return fmt.Errorf("venue repository update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrVenueNotFound
	}
	return nil
}

func (r *repository) ListByHall(ctx context.Context, hallID uuid.UUID, activeOnly bool) ([]Venue, error) {
	query := `
		SELECT id, hall_id, name, description, capacity, base_price_per_hour,
		       min_duration_hours, image_url, thumbnail_url, active,
		       created_at, updated_at
		FROM venues
		WHERE hall_id = $1 AND ($2 = false OR active)
		ORDER BY created_at ASC
	`
	venues := []Venue{}
	if err := r.db.SelectContext(ctx, &venues, query, hallID, activeOnly); err != nil {
		return nil, fmt.Errorf("venue repository list by hall: %w", err)
	}
	return venues, nil
}

func (r *repository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE venues SET active = $2, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, active)
	if err != nil {
		return fmt.Errorf("venue repository set active: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrVenueNotFound
	}
	return nil
}

func (r *repository) UpdateImages(ctx context.Context, id uuid.UUID, imageURL, thumbnailURL string) error {
	query := `UPDATE venues SET image_url = $2, thumbnail_url = $3, updated_at = NOW() WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, imageURL, thumbnailURL)
	if err != nil {
		return fmt.Errorf("venue repository update images: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrVenueNotFound
	}
	return nil
}

func (r *repository) ReplacePricing(ctx context.Context, venueID uuid.UUID, effectiveDate string, slots []PricingSlot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("venue repository begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM venue_pricing WHERE venue_id = $1 AND effective_date = $2`,
		venueID, effectiveDate); err != nil {
		return fmt.Errorf("venue repository clear pricing: %w", err)
	}

	for _, s := range slots {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO venue_pricing (id, venue_id, effective_date, slot_start, slot_end, price_per_hour)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, s.ID, venueID, effectiveDate, s.SlotStart, s.SlotEnd, s.PricePerHour); err != nil {
			return fmt.Errorf("venue repository insert pricing slot: %w", err)
		}
	}

	return tx.Commit()
}

func (r *repository) GetPricing(ctx context.Context, venueID uuid.UUID, effectiveDate string) ([]PricingSlot, error) {
	query := `
		SELECT id, venue_id, to_char(effective_date, 'YYYY-MM-DD') AS effective_date,
		       slot_start, slot_end, price_per_hour
		FROM venue_pricing
		WHERE venue_id = $1 AND effective_date = $2
		ORDER BY slot_start ASC
	`
	slots := []PricingSlot{}
	if err := r.db.SelectContext(ctx, &slots, query, venueID, effectiveDate); err != nil {
		return nil, fmt.Errorf("venue repository get pricing: %w", err)
	}
	return slots, nil
}
