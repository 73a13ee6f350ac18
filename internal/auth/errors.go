package auth

import "github.com/dyvilcenter/backoffice/internal/apperr"

// Login and session errors. The per-reason credential messages are kept
// distinct for the back office UI.
var (
	ErrCredentialsRequired = apperr.Validation("credentials_required", "username and password are required")
	ErrInvalidCSRFToken    = apperr.Validation("invalid_csrf_token", "invalid security token")
	ErrRateLimited         = apperr.New(apperr.KindRateLimited, "rate_limited", "too many attempts, try again in 15 minutes")
	ErrUserNotFound        = apperr.New(apperr.KindAuth, "user_not_found", "user not found")
	ErrUserInactive        = apperr.New(apperr.KindAuth, "user_inactive", "user inactive")
	ErrWrongPassword       = apperr.New(apperr.KindAuth, "wrong_password", "incorrect password")
	ErrAdminOnly           = apperr.New(apperr.KindAuth, "admin_only", "access denied, administrators only")
	ErrTokenRequired       = apperr.Validation("session_token_required", "session token not provided")
	ErrSessionNotFound     = apperr.NotFound("session_not_found", "session not found")
)
