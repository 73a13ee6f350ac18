package models

import "time"

// CreditHistory is an append-only journal entry of a balance change.
type CreditHistory struct {
	ID string `gorm:"type:varchar(36);primaryKey"` // UUID primary key.

	UserID string `gorm:"type:varchar(36);not null;index"` // Credited user.
	Amount int64  `gorm:"not null"`                        // Signed credit delta.
	Source string `gorm:"type:varchar(255);not null"`      // Human-readable origin.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Journal timestamp.
}

// TableName keeps the journal table name singular.
func (CreditHistory) TableName() string { return "credit_history" }
