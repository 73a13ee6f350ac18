package models

import "time"

// CouponStatus is the derived, never stored, state of a coupon.
type CouponStatus string

// CouponStatus constants.
const (
	CouponStatusActive  CouponStatus = "active"
	CouponStatusUsed    CouponStatus = "used"
	CouponStatusExpired CouponStatus = "expired"
)

// Coupon is a single-use code worth a fixed amount of credits.
type Coupon struct {
	ID string `gorm:"type:varchar(36);primaryKey"` // UUID primary key.

	Code      string     `gorm:"type:varchar(32);not null;uniqueIndex"` // Unique redemption code.
	Credits   int64      `gorm:"not null"`                              // Credits granted on redemption.
	ExpiresAt *time.Time `gorm:"index"`                                 // Expiration time, if any.

	IsUsed bool       `gorm:"not null;default:false;index"` // Whether the coupon was redeemed.
	UsedBy *string    `gorm:"type:varchar(36);index"`       // Redeeming user ID.
	UsedAt *time.Time // Redemption time.

	CreatedBy string    `gorm:"type:varchar(36);not null"` // Issuing admin ID.
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`   // Creation timestamp.
}

// StatusAt derives the coupon status at now.
func (c Coupon) StatusAt(now time.Time) CouponStatus {
	if c.IsUsed {
		return CouponStatusUsed
	}
	if c.ExpiresAt != nil && c.ExpiresAt.Before(now) {
		return CouponStatusExpired
	}
	return CouponStatusActive
}
