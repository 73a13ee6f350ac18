package models

import "time"

// LoginAttempt is one append-only row of the login ledger.
type LoginAttempt struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	IPAddress   string    `gorm:"type:varchar(64);not null;index:idx_login_attempts_ip_time,priority:1"` // Resolved client IP.
	Username    string    `gorm:"type:varchar(191);not null"`                                            // Username as submitted.
	Success     bool      `gorm:"not null;default:false;index:idx_login_attempts_ip_time,priority:2"`    // Whether the login succeeded.
	AttemptTime time.Time `gorm:"not null;index:idx_login_attempts_ip_time,priority:3"`                  // Attempt timestamp.
}
