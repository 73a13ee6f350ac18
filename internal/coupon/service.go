// Package coupon issues single-use credit coupons and redeems them atomically.
package coupon

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dyvilcenter/backoffice/internal/apperr"
	"github.com/dyvilcenter/backoffice/internal/auth"
	"github.com/dyvilcenter/backoffice/internal/models"
	"github.com/dyvilcenter/backoffice/internal/security"
	"github.com/dyvilcenter/backoffice/internal/settings"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Service owns the coupon ledger and the credit journal entries it produces.
type Service struct {
	db      *gorm.DB
	nowFn   func() time.Time
	newCode func() (string, error)
}

// NewService constructs a Service.
func NewService(db *gorm.DB) *Service {
	return &Service{
		db:    db,
		nowFn: func() time.Time { return time.Now().UTC() },
		newCode: func() (string, error) {
			return security.RandomCode(settings.CouponCodeAlphabet, settings.CouponCodeLength)
		},
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(nowFn func() time.Time) *Service {
	if nowFn != nil {
		s.nowFn = nowFn
	}
	return s
}

// WithCodeGenerator replaces the code generator.
func (s *Service) WithCodeGenerator(fn func() (string, error)) *Service {
	if fn != nil {
		s.newCode = fn
	}
	return s
}

// Redeem credits the caller with the value of an unused, unexpired coupon.
// The coupon row is locked for the whole transaction and the used flag is
// flipped with a guarded update, so concurrent calls for one code credit once.
func (s *Service) Redeem(ctx context.Context, identity auth.Identity, code string) (int64, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return 0, ErrCodeRequired
	}
	if strings.TrimSpace(identity.UserID) == "" {
		return 0, apperr.ErrInvalidSession
	}

	now := s.nowFn()
	var credited int64
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var coupon models.Coupon
		if errFind := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("code = ?", code).
			Take(&coupon).Error; errFind != nil {
			if errors.Is(errFind, gorm.ErrRecordNotFound) {
				return ErrCouponNotFound
			}
			return errFind
		}
		if coupon.IsUsed {
			return ErrCouponAlreadyUsed
		}
		if coupon.ExpiresAt != nil && coupon.ExpiresAt.Before(now) {
			return ErrCouponExpired
		}

		res := tx.Model(&models.Coupon{}).
			Where("id = ? AND is_used = ?", coupon.ID, false).
			Updates(map[string]any{"is_used": true, "used_by": identity.UserID, "used_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCouponAlreadyUsed
		}

		res = tx.Model(&models.User{}).
			Where("id = ?", identity.UserID).
			Update("credits", gorm.Expr("credits + ?", coupon.Credits))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return apperr.ErrInvalidSession
		}

		entry := models.CreditHistory{
			ID:        uuid.NewString(),
			UserID:    identity.UserID,
			Amount:    coupon.Credits,
			Source:    settings.CouponSourcePrefix + coupon.Code,
			CreatedAt: now,
		}
		if errHistory := tx.Create(&entry).Error; errHistory != nil {
			return errHistory
		}
		credited = coupon.Credits
		return nil
	})
	if errTx != nil {
		return 0, classify("redeem coupon", errTx)
	}

	log.WithFields(log.Fields{"user_id": identity.UserID, "code": code, "credits": credited}).Info("coupon: redeemed")
	return credited, nil
}

// CreateRequest describes a batch of coupons to issue.
type CreateRequest struct {
	Credits      int64
	Quantity     int
	ValidityDays *int // Nil selects the default validity.
}

// Create issues a batch of coupons in one transaction and returns their codes.
func (s *Service) Create(ctx context.Context, identity auth.Identity, req CreateRequest) ([]string, error) {
	if err := auth.RequireAdmin(identity); err != nil {
		return nil, err
	}
	if req.Credits <= 0 {
		return nil, ErrInvalidCredits
	}
	if req.Quantity < 1 || req.Quantity > settings.MaxCouponBatch {
		return nil, ErrInvalidQuantity
	}
	validity := settings.DefaultCouponValidityDays
	if req.ValidityDays != nil {
		validity = *req.ValidityDays
	}
	if validity < 1 || validity > settings.MaxCouponValidityDays {
		return nil, ErrInvalidValidity
	}

	now := s.nowFn()
	expiresAt := now.AddDate(0, 0, validity)
	codes := make([]string, 0, req.Quantity)

	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		taken := make(map[string]struct{}, req.Quantity)
		for i := 0; i < req.Quantity; i++ {
			code, errCode := s.uniqueCode(tx, taken)
			if errCode != nil {
				return errCode
			}
			taken[code] = struct{}{}

			coupon := models.Coupon{
				ID:        uuid.NewString(),
				Code:      code,
				Credits:   req.Credits,
				ExpiresAt: &expiresAt,
				CreatedBy: identity.UserID,
				CreatedAt: now,
			}
			if errCreate := tx.Create(&coupon).Error; errCreate != nil {
				return errCreate
			}
			codes = append(codes, code)
		}
		return nil
	})
	if errTx != nil {
		return nil, classify("create coupons", errTx)
	}

	log.WithFields(log.Fields{"created_by": identity.UserID, "quantity": len(codes), "credits": req.Credits}).Info("coupon: batch issued")
	return codes, nil
}

// uniqueCode draws codes until one is free in both the batch and the ledger.
func (s *Service) uniqueCode(tx *gorm.DB, taken map[string]struct{}) (string, error) {
	for attempt := 0; attempt < settings.CouponCodeMaxAttempts; attempt++ {
		code, err := s.newCode()
		if err != nil {
			return "", fmt.Errorf("generate coupon code: %w", err)
		}
		if _, dup := taken[code]; dup {
			continue
		}
		var count int64
		if errCount := tx.Model(&models.Coupon{}).Where("code = ?", code).Count(&count).Error; errCount != nil {
			return "", errCount
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", apperr.ErrExhaustedCodeSpace
}

func classify(op string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Storage(op, err)
}
