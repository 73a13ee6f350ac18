package settings

import "time"

// Authentication limits and defaults.
const (
	// MaxFailedLogins is the failed-attempt count per IP that triggers rate limiting.
	MaxFailedLogins = 5
	// LoginFailureWindow is the trailing window over which failed attempts count.
	LoginFailureWindow = 15 * time.Minute
	// SessionTTL is the lifetime of a regular session.
	SessionTTL = 7 * 24 * time.Hour
	// RememberMeSessionTTL is the lifetime of a "remember me" session.
	RememberMeSessionTTL = 30 * 24 * time.Hour
	// SessionTokenBytes is the entropy of a session token in bytes.
	SessionTokenBytes = 32
	// MinCSRFTokenLength is the shortest accepted origin-binding token.
	MinCSRFTokenLength = 32
)

// Coupon issuance limits and defaults.
const (
	// CouponCodeLength is the length of generated coupon codes.
	CouponCodeLength = 8
	// CouponCodeAlphabet is the uppercase hex alphabet of coupon codes.
	CouponCodeAlphabet = "0123456789ABCDEF"
	// CouponCodeMaxAttempts caps the retry-until-unique loop per code.
	CouponCodeMaxAttempts = 50
	// MaxCouponBatch is the largest quantity accepted by one issuance call.
	MaxCouponBatch = 100
	// DefaultCouponValidityDays applies when the caller sends no validity.
	DefaultCouponValidityDays = 30
	// MaxCouponValidityDays is the longest validity accepted by issuance.
	MaxCouponValidityDays = 365
	// CouponSourcePrefix prefixes the credit history source of a redemption.
	CouponSourcePrefix = "Coupon: "
)

// User account defaults.
const (
	// AffiliateCodeLength is the number of digits in an affiliate code.
	AffiliateCodeLength = 4
	// AffiliateCodeAlphabet holds the digits of affiliate codes.
	AffiliateCodeAlphabet = "0123456789"
	// AffiliateCodeMaxAttempts caps the retry-until-unique loop for affiliate codes.
	AffiliateCodeMaxAttempts = 100
	// DefaultPlan is assigned to new users without an explicit plan.
	DefaultPlan = "free"
	// BootstrapAdminPlan is assigned to the bootstrap administrator.
	BootstrapAdminPlan = "vip"
)

// Request throttle defaults.
const (
	// DefaultThrottleRedisPrefix is the fallback Redis key prefix.
	DefaultThrottleRedisPrefix = "backoffice:rl"
)
