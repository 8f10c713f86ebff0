package models

import (
	"strings"
	"time"
)

// Roles a user can hold.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// PlaceholderEmailDomain marks emails synthesized before the real address is known.
const PlaceholderEmailDomain = "@clerk.user"

// User represents an identity known to the API, keyed by the identity
// provider's subject id
type User struct {
	ID        string    `gorm:"primaryKey;size:191" json:"id"`       // Clerk user ID (from 'sub' claim)
	Email     string    `gorm:"index;not null" json:"email"`         // not unique, reconciliation matches on it
	Role      string    `gorm:"not null;default:'user'" json:"role"` // "user" or "admin"
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// PlaceholderEmail synthesizes the stand-in address for a user id.
func PlaceholderEmail(userID string) string {
	return userID + PlaceholderEmailDomain
}

// IsPlaceholderEmail reports whether email was synthesized by PlaceholderEmail.
func IsPlaceholderEmail(email string) bool {
	return strings.HasSuffix(strings.ToLower(email), PlaceholderEmailDomain)
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}
