package hall

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Status represents hall moderation status (matches hall_status enum)
type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusRejected        Status = "rejected"
	StatusSuspended       Status = "suspended"
)

// StaffRole represents a hall employee role
type StaffRole string

const (
	StaffRoleManager   StaffRole = "manager"
	StaffRoleAssistant StaffRole = "assistant"
)

// IsValidStaffRole checks a staff role value
func IsValidStaffRole(role string) bool {
	return role == string(StaffRoleManager) || role == string(StaffRoleAssistant)
}

// Hall represents a banquet hall property (matches halls table)
type Hall struct {
	ID              uuid.UUID       `db:"id"`
	OwnerID         uuid.UUID       `db:"owner_id"`
	Name            string          `db:"name"`
	Description     string          `db:"description"`
	Address         string          `db:"address"`
	City            string          `db:"city"`
	Latitude        float64         `db:"latitude"`
	Longitude       float64         `db:"longitude"`
	Status          Status          `db:"status"`
	RejectionReason sql.NullString  `db:"rejection_reason"`
	DistanceKm      sql.NullFloat64 `db:"distance_km"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

// IsApproved reports whether venues of the hall are bookable
func (h *Hall) IsApproved() bool {
	return h.Status == StatusApproved
}

// Staff represents a hall staff assignment (matches hall_staff table)
type Staff struct {
	HallID    uuid.UUID `db:"hall_id"`
	UserID    uuid.UUID `db:"user_id"`
	Role      StaffRole `db:"role"`
	FullName  string    `db:"full_name"`
	Email     string    `db:"email"`
	CreatedAt time.Time `db:"created_at"`
}

// Document represents an uploaded hall document (matches hall_documents table)
type Document struct {
	ID          uuid.UUID `db:"id"`
	HallID      uuid.UUID `db:"hall_id"`
	Name        string    `db:"name"`
	ObjectKey   string    `db:"object_key"`
	ContentType string    `db:"content_type"`
	Size        int64     `db:"size"`
	UploadedAt  time.Time `db:"uploaded_at"`
}
