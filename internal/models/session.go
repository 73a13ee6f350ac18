package models

import "time"

// UserSession is the single active back office session of a user.
type UserSession struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	UserID string `gorm:"type:varchar(36);not null;uniqueIndex"` // Owning user, at most one row each.
	User   *User  `gorm:"foreignKey:UserID"`                     // Owning user record.

	SessionToken string    `gorm:"type:varchar(128);not null;uniqueIndex"` // Opaque bearer token.
	ExpiresAt    time.Time `gorm:"not null;index"`                         // Hard expiry.
	CreatedAt    time.Time `gorm:"not null"`                               // Issue time of the current token.
}
