package models

import "time"

// Role is the capability tier of a user account.
type Role string

// Role constants.
const (
	// RoleUser is a regular platform user.
	RoleUser Role = "user"
	// RoleAdmin may sign in to the back office.
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Status is the lifecycle state of a user account.
type Status string

// Status constants.
const (
	// StatusActive accounts can sign in and hold sessions.
	StatusActive Status = "active"
	// StatusInactive accounts are rejected at login and session validation.
	StatusInactive Status = "inactive"
	// StatusBanned accounts are rejected like inactive ones.
	StatusBanned Status = "banned"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBanned:
		return true
	default:
		return false
	}
}

// User represents a platform account stored in the database.
type User struct {
	ID string `gorm:"type:varchar(36);primaryKey"` // UUID primary key.

	Username string  `gorm:"type:varchar(191);not null;uniqueIndex"` // Unique login name.
	Email    *string `gorm:"type:varchar(191);uniqueIndex"`          // Optional unique email.
	Password string  `gorm:"type:varchar(255);not null"`             // Bcrypt hash.

	Role    Role   `gorm:"type:varchar(16);not null;default:user;index"`   // Capability tier.
	Status  Status `gorm:"type:varchar(16);not null;default:active;index"` // Lifecycle state.
	Credits int64  `gorm:"not null;default:0"`                             // Credit balance.
	Plan    string `gorm:"type:varchar(32);not null;default:free"`         // Plan tag.

	AffiliateCode    string  `gorm:"type:varchar(8);not null;uniqueIndex"` // Unique 4-digit referral code.
	TelegramID       *string `gorm:"type:varchar(64);uniqueIndex"`         // Optional unique Telegram ID.
	TelegramUsername *string `gorm:"type:varchar(191);uniqueIndex"`        // Optional unique Telegram handle.
	IP               string  `gorm:"type:varchar(64)"`                     // Registration IP.

	CreatedAt time.Time  `gorm:"not null;autoCreateTime"` // Creation timestamp.
	LastLogin *time.Time // Last successful back office login.
}
