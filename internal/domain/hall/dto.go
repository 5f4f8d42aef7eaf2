package hall

import (
	"time"

	"github.com/google/uuid"
)

// CreateRequest for POST /halls
type CreateRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Address     string  `json:"address" validate:"required,max=300"`
	City        string  `json:"city" validate:"required,max=100"`
	Latitude    float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// UpdateRequest for PUT /halls/{id}
type UpdateRequest struct {
	Name        string  `json:"name" validate:"required,min=2,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Address     string  `json:"address" validate:"required,max=300"`
	City        string  `json:"city" validate:"required,max=100"`
	Latitude    float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude   float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// RejectRequest for POST /halls/{id}/reject
type RejectRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// AddStaffRequest for POST /halls/{id}/staff
type AddStaffRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Role   string    `json:"role" validate:"required,oneof=manager assistant"`
}

// SearchParams for GET /halls/search
type SearchParams struct {
	City        string
	MinCapacity int
	MaxPrice    int64
	Latitude    float64
	Longitude   float64
	RadiusKm    float64
	HasGeo      bool
	Limit       int
	Offset      int
}

// HallResponse represents a hall in API responses
type HallResponse struct {
	ID              uuid.UUID `json:"id"`
	OwnerID         uuid.UUID `json:"owner_id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Address         string    `json:"address"`
	City            string    `json:"city"`
	Latitude        float64   `json:"latitude"`
	Longitude       float64   `json:"longitude"`
	Status          string    `json:"status"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	DistanceKm      *float64  `json:"distance_km,omitempty"`
	CreatedAt       string    `json:"created_at"`
}

// NewHallResponse maps a hall entity to its API shape
func NewHallResponse(h *Hall) HallResponse {
	resp := HallResponse{
		ID:              h.ID,
		OwnerID:         h.OwnerID,
		Name:            h.Name,
		Description:     h.Description,
		Address:         h.Address,
		City:            h.City,
		Latitude:        h.Latitude,
		Longitude:       h.Longitude,
		Status:          string(h.Status),
		RejectionReason: h.RejectionReason.String,
		CreatedAt:       h.CreatedAt.Format(time.RFC3339),
	}
	if h.DistanceKm.Valid {
		d := h.DistanceKm.Float64
		resp.DistanceKm = &d
	}
	return resp
}

// StaffResponse represents a staff member in API responses
type StaffResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Role     string    `json:"role"`
	FullName string    `json:"full_name"`
	Email    string    `json:"email"`
	AddedAt  string    `json:"added_at"`
}

// NewStaffResponse maps a staff row to its API shape
func NewStaffResponse(s *Staff) StaffResponse {
	return StaffResponse{
		UserID:   s.UserID,
		Role:     string(s.Role),
		FullName: s.FullName,
		Email:    s.Email,
		AddedAt:  s.CreatedAt.Format(time.RFC3339),
	}
}

// DocumentResponse represents a hall document in API responses
type DocumentResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	UploadedAt  string    `json:"uploaded_at"`
}
