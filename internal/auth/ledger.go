package auth

import (
	"context"
	"time"

	"github.com/dyvilcenter/backoffice/internal/models"
	"github.com/dyvilcenter/backoffice/internal/settings"
	"gorm.io/gorm"
)

// recentFailures counts failed attempts from ip inside the trailing window.
func (a *Authenticator) recentFailures(ctx context.Context, ip string, now time.Time) (int64, error) {
	var count int64
	errCount := a.db.WithContext(ctx).Model(&models.LoginAttempt{}).
		Where("ip_address = ? AND success = ? AND attempt_time > ?", ip, false, now.Add(-settings.LoginFailureWindow)).
		Count(&count).Error
	return count, errCount
}

// recordAttempt appends one ledger row using conn, which may be a transaction.
func (a *Authenticator) recordAttempt(ctx context.Context, conn *gorm.DB, ip, username string, success bool, now time.Time) error {
	attempt := models.LoginAttempt{
		IPAddress:   ip,
		Username:    username,
		Success:     success,
		AttemptTime: now,
	}
	return conn.WithContext(ctx).Create(&attempt).Error
}
