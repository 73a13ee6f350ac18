package coupon

import "github.com/dyvilcenter/backoffice/internal/apperr"

// Coupon errors.
var (
	ErrCodeRequired      = apperr.Validation("coupon_code_required", "coupon code is required")
	ErrIDRequired        = apperr.Validation("coupon_id_required", "coupon id not provided")
	ErrInvalidCredits    = apperr.Validation("invalid_credits", "credits must be greater than zero")
	ErrInvalidQuantity   = apperr.Validation("invalid_quantity", "quantity must be between 1 and 100")
	ErrInvalidValidity   = apperr.Validation("invalid_validity", "validity_days must be between 1 and 365")
	ErrCouponNotFound    = apperr.NotFound("coupon_not_found", "coupon not found")
	ErrCouponAlreadyUsed = apperr.Conflict("coupon_already_used", "coupon has already been used")
	ErrCouponExpired     = apperr.Conflict("coupon_expired", "coupon expired")
	ErrCouponUsedDelete  = apperr.Conflict("coupon_used", "cannot delete a coupon that has been used")
)
