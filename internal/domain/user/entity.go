package user

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Role represents user role in the system (matches user_role enum)
type Role string

const (
	RoleCustomer  Role = "customer"
	RoleOwner     Role = "owner"
	RoleManager   Role = "manager"
	RoleAssistant Role = "assistant"
	RoleAdmin     Role = "admin"
)

// User represents a user account (matches users table)
type User struct {
	ID           uuid.UUID      `db:"id"`
	Email        string         `db:"email"`
	PasswordHash string         `db:"password_hash"`
	FullName     string         `db:"full_name"`
	Phone        sql.NullString `db:"phone"`
	Role         Role           `db:"role"`
	IsActive     bool           `db:"is_active"`

	// Login tracking
	LastLoginAt sql.NullTime `db:"last_login_at"`

	// Timestamps
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsCustomer returns true if user is a customer
func (u *User) IsCustomer() bool {
	return u.Role == RoleCustomer
}

// IsOwner returns true if user is a hall owner
func (u *User) IsOwner() bool {
	return u.Role == RoleOwner
}

// IsAdmin returns true if user is an admin
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsStaff returns true if user works at a hall in any role
func (u *User) IsStaff() bool {
	return u.Role == RoleOwner || u.Role == RoleManager || u.Role == RoleAssistant
}

// ValidRoles returns list of valid roles for registration
func ValidRoles() []Role {
	return []Role{RoleCustomer, RoleOwner, RoleManager, RoleAssistant}
}

// IsValidRole checks if role is valid for registration
func IsValidRole(role string) bool {
	for _, r := range ValidRoles() {
		if string(r) == role {
			return true
		}
	}
	return false
}
