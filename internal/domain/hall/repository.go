package hall

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines hall data access interface
type Repository interface {
	Create(ctx context.Context, h *Hall) error
	GetByID(ctx context.Context, id uuid.UUID) (*Hall, error)
	Update(ctx context.Context, h *Hall) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Hall, error)
	// UpdateStatus moves the hall from one status to another. Returns
	// ErrInvalidTransition when the hall is not in the expected status.
	UpdateStatus(ctx context.Context, id uuid.UUID, from []Status, to Status, reason string) error
	Search(ctx context.Context, params SearchParams) ([]Hall, int, error)

	AddStaff(ctx context.Context, hallID, userID uuid.UUID, role StaffRole) error
	RemoveStaff(ctx context.Context, hallID, userID uuid.UUID) error
	ListStaff(ctx context.Context, hallID uuid.UUID) ([]Staff, error)
	IsStaff(ctx context.Context, hallID, userID uuid.UUID) (bool, error)

	AddDocument(ctx context.Context, d *Document) error
	GetDocument(ctx context.Context, id uuid.UUID) (*Document, error)
	ListDocuments(ctx context.Context, hallID uuid.UUID) ([]Document, error)
	DeleteDocument(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *sqlx.DB
}

// NewRepository creates new hall repository
func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, h *Hall) error {
	query := `
		INSERT INTO halls (id, owner_id, name, description, address, city, latitude, longitude, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		h.ID, h.OwnerID, h.Name, h.Description, h.Address, h.City,
		h.Latitude, h.Longitude, h.Status,
	)
	if err != nil {
		return fmt.Errorf("hall repository create: %w", err)
	}
	return nil
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*Hall, error) {
	query := `
		SELECT id, owner_id, name, description, address, city, latitude, longitude,
		       status, rejection_reason, created_at, updated_at
		FROM halls WHERE id = $1
	`
	var h Hall
	if err := r.db.GetContext(ctx, &h, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &h, nil
}

func (r *repository) Update(ctx context.Context, h *Hall) error {
	query := `
		UPDATE halls
		SET name = $2, description = $3, address = $4, city = $5,
		    latitude = $6, longitude = $7, updated_at = NOW()
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		h.ID, h.Name, h.Description, h.Address, h.City, h.Latitude, h.Longitude,
	)
	if err != nil {
		return fmt.Errorf("hall repository update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrHallNotFound
	}
	return nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]Hall, error) {
	query := `
		SELECT id, owner_id, name, description, address, city, latitude, longitude,
		       status, rejection_reason, created_at, updated_at
		FROM halls WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	halls := []Hall{}
	if err := r.db.SelectContext(ctx, &halls, query, ownerID); err != nil {
		return nil, fmt.Errorf("hall repository list by owner: %w", err)
	}
	return halls, nil
}

// UpdateStatus is a conditional update: the WHERE clause carries the allowed
// source statuses so concurrent moderation decisions cannot race.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, from []Status, to Status, reason string) error {
	fromStrs := make([]string, len(from))
	for i, s := range from {
		fromStrs[i] = string(s)
	}

	query := `
		UPDATE halls
		SET status = $2, rejection_reason = NULLIF($3, ''), updated_at = NOW()
		WHERE id = $1 AND status = ANY($4)
	`
	result, err := r.db.ExecContext(ctx, query, id, to, reason, pq.Array(fromStrs))
	if err != nil {
		return fmt.Errorf("hall repository update status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		existing, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrHallNotFound
		}
		return ErrInvalidTransition
	}
	return nil
}

// Search returns approved halls matching the filters. Capacity and price
// filters apply through the hall's active venues. With coordinates present
// the haversine distance is computed in SQL and used for the radius filter
// and ordering.
func (r *repository) Search(ctx context.Context, params SearchParams) ([]Hall, int, error) {
	where := `
		h.status = 'approved'
		AND ($1 = '' OR LOWER(h.city) = LOWER($1))
		AND EXISTS (
			SELECT 1 FROM venues v
			WHERE v.hall_id = h.id AND v.active
			  AND ($2 <= 0 OR v.capacity >= $2)
			  AND ($3 <= 0 OR v.base_price_per_hour <= $3)
		)
	`

	if !params.HasGeo {
		countQuery := `SELECT COUNT(*) FROM halls h WHERE ` + where
		var total int
		if err := r.db.GetContext(ctx, &total, countQuery,
			params.City, params.MinCapacity, params.MaxPrice); err != nil {
			return nil, 0, fmt.Errorf("hall repository search count: %w", err)
		}

		query := `
			SELECT h.id, h.owner_id, h.name, h.description, h.address, h.city,
			       h.latitude, h.longitude, h.status, h.rejection_reason,
			       h.created_at, h.updated_at
			FROM halls h
			WHERE ` + where + `
			ORDER BY h.created_at DESC
			LIMIT $4 OFFSET $5
		`
		halls := []Hall{}
		if err := r.db.SelectContext(ctx, &halls, query,
			params.City, params.MinCapacity, params.MaxPrice,
			params.Limit, params.Offset); err != nil {
			return nil, 0, fmt.Errorf("hall repository search: %w", err)
		}
		return halls, total, nil
	}

	distance := `
		(6371 * acos(least(1.0,
			cos(radians($4)) * cos(radians(h.latitude)) *
			cos(radians(h.longitude) - radians($5)) +
			sin(radians($4)) * sin(radians(h.latitude))
		)))
	`

	countQuery := `
		SELECT COUNT(*) FROM halls h
		WHERE ` + where + ` AND ` + distance + ` <= $6
	`
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery,
		params.City, params.MinCapacity, params.MaxPrice,
		params.Latitude, params.Longitude, params.RadiusKm); err != nil {
		return nil, 0, fmt.Errorf("hall repository geo search count: %w", err)
	}

	query := `
		SELECT h.id, h.owner_id, h.name, h.description, h.address, h.city,
		       h.latitude, h.longitude, h.status, h.rejection_reason,
		       h.created_at, h.updated_at,
		       ` + distance + ` AS distance_km
		FROM halls h
		WHERE ` + where + ` AND ` + distance + ` <= $6
		ORDER BY distance_km ASC
		LIMIT $7 OFFSET $8
	`
	halls := []Hall{}
	if err := r.db.SelectContext(ctx, &halls, query,
		params.City, params.MinCapacity, params.MaxPrice,
		params.Latitude, params.Longitude, params.RadiusKm,
		params.Limit, params.Offset); err != nil {
		return nil, 0, fmt.Errorf("hall repository geo search: %w", err)
	}
	return halls, total, nil
}

func (r *repository) AddStaff(ctx context.Context, hallID, userID uuid.UUID, role StaffRole) error {
	query := `
		INSERT INTO hall_staff (hall_id, user_id, role)
		VALUES ($1, $2, $3)
	`
	_, err := r.db.ExecContext(ctx, query, hallID, userID, role)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrStaffExists
		}
		return fmt.Errorf("hall repository add staff: %w", err)
	}
	return nil
}

func (r *repository) RemoveStaff(ctx context.Context, hallID, userID uuid.UUID) error {
	query := `DELETE FROM hall_staff WHERE hall_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, hallID, userID)
	if err != nil {
		return fmt.Errorf("hall repository remove staff: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrStaffNotFound
	}
	return nil
}

func (r *repository) ListStaff(ctx context.Context, hallID uuid.UUID) ([]Staff, error) {
	query := `
		SELECT s.hall_id, s.user_id, s.role, s.created_at, u.full_name, u.email
		FROM hall_staff s
		JOIN users u ON u.id = s.user_id
		WHERE s.hall_id = $1
		ORDER BY s.created_at ASC
	`
	staff := []Staff{}
	if err := r.db.SelectContext(ctx, &staff, query, hallID); err != nil {
		return nil, fmt.Errorf("hall repository list staff: %w", err)
	}
	return staff, nil
}

func (r *repository) IsStaff(ctx context.Context, hallID, userID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM hall_staff WHERE hall_id = $1 AND user_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, hallID, userID); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *repository) AddDocument(ctx context.Context, d *Document) error {
	query := `
		INSERT INTO hall_documents (id, hall_id, name, object_key, content_type, size)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query, d.ID, d.HallID, d.Name, d.ObjectKey, d.ContentType, d.Size)
	if err != nil {
		return fmt.Errorf("hall repository add document: %w", err)
	}
	return nil
}

func (r *repository) GetDocument(ctx context.Context, id uuid.UUID) (*Document, error) {
	query := `
		SELECT id, hall_id, name, object_key, content_type, size, uploaded_at
		FROM hall_documents WHERE id = $1
	`
	var d Document
	if err := r.db.GetContext(ctx, &d, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *repository) ListDocuments(ctx context.Context, hallID uuid.UUID) ([]Document, error) {
	query := `
		SELECT id, hall_id, name, object_key, content_type, size, uploaded_at
		FROM hall_documents WHERE hall_id = $1
		ORDER BY uploaded_at DESC
	`
	docs := []Document{}
	if err := r.db.SelectContext(ctx, &docs, query, hallID); err != nil {
		return nil, fmt.Errorf("hall repository list documents: %w", err)
	}
	return docs, nil
}

func (r *repository) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM hall_documents WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("hall repository delete document: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrDocumentNotFound
	}
	return nil
}
