package coupon

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dyvilcenter/backoffice/internal/apperr"
	"github.com/dyvilcenter/backoffice/internal/auth"
	"github.com/dyvilcenter/backoffice/internal/models"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// View is a coupon row with resolved usernames and its live status.
type View struct {
	ID                string              `json:"id"`
	Code              string              `json:"code"`
	Credits           int64               `json:"credits"`
	ExpiresAt         *time.Time          `json:"expires_at"`
	IsUsed            bool                `json:"is_used"`
	UsedBy            *string             `json:"used_by"`
	UsedByUsername    *string             `json:"used_by_username"`
	UsedAt            *time.Time          `json:"used_at"`
	CreatedBy         string              `json:"created_by"`
	CreatedByUsername *string             `json:"created_by_username"`
	CreatedAt         time.Time           `json:"created_at"`
	Status            models.CouponStatus `json:"status"`
}

// Stats summarises a coupon listing.
type Stats struct {
	Total        int   `json:"total"`
	Active       int   `json:"active"`
	Used         int   `json:"used"`
	Expired      int   `json:"expired"`
	TotalCredits int64 `json:"total_credits"`
}

type couponRow struct {
	models.Coupon
	UsedByUsername    *string `gorm:"column:used_by_username"`
	CreatedByUsername *string `gorm:"column:created_by_username"`
}

// List returns every coupon newest first together with aggregate stats.
func (s *Service) List(ctx context.Context, identity auth.Identity) ([]View, Stats, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return nil, Stats{}, err
	}

	var rows []couponRow
	errFind := s.db.WithContext(ctx).
		Table("coupons").
		Select("coupons.*, used_user.username AS used_by_username, created_user.username AS created_by_username").
		Joins("LEFT JOIN users AS used_user ON used_user.id = coupons.used_by").
		Joins("LEFT JOIN users AS created_user ON created_user.id = coupons.created_by").
		Order("coupons.created_at DESC").
		Scan(&rows).Error
	if errFind != nil {
		return nil, Stats{}, apperr.Storage("list coupons", errFind)
	}

	now := s.nowFn()
	out := make([]View, 0, len(rows))
	stats := Stats{Total: len(rows)}
	for _, row := range rows {
		status := row.StatusAt(now)
		switch status {
		case models.CouponStatusActive:
			stats.Active++
		case models.CouponStatusUsed:
			stats.Used++
		case models.CouponStatusExpired:
			stats.Expired++
		}
		stats.TotalCredits += row.Credits
		out = append(out, View{
			ID:                row.ID,
			Code:              row.Code,
			Credits:           row.Credits,
			ExpiresAt:         row.ExpiresAt,
			IsUsed:            row.IsUsed,
			UsedBy:            row.UsedBy,
			UsedByUsername:    row.UsedByUsername,
			UsedAt:            row.UsedAt,
			CreatedBy:         row.CreatedBy,
			CreatedByUsername: row.CreatedByUsername,
			CreatedAt:         row.CreatedAt,
			Status:            status,
		})
	}
	return out, stats, nil
}

// Delete removes an unused coupon. Used coupons stay as redemption evidence.
func (s *Service) Delete(ctx context.Context, identity auth.Identity, id string) error {
	if err := auth.RequireAdmin(identity); err != nil {
		return err
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrIDRequired
	}

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var coupon models.Coupon
		if errFind := tx.Select("id", "is_used").Where("id = ?", id).Take(&coupon).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrCouponNotFound
			}
			return errFind
		}
		if coupon.IsUsed {
			return ErrCouponUsedDelete
		}
		res := tx.Where("id = ? AND is_used = ?", id, false).Delete(&models.Coupon{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCouponUsedDelete
		}
		return nil
	})
	if errTx != nil {
		return classify("delete coupon", errTx)
	}
	log.WithFields(log.Fields{"coupon_id": id, "deleted_by": identity.UserID}).Info("coupon: deleted")
	return nil
}
