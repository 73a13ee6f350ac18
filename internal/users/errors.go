package users

import "github.com/dyvilcenter/backoffice/internal/apperr"

// User management errors.
var (
	ErrCredentialsRequired   = apperr.Validation("credentials_required", "username and password are required")
	ErrUserIDRequired        = apperr.Validation("user_id_required", "user id not provided")
	ErrInvalidRole           = apperr.Validation("invalid_role", "unknown role")
	ErrInvalidStatus         = apperr.Validation("invalid_status", "unknown status")
	ErrNegativeCredits       = apperr.Validation("negative_credits", "credits cannot be negative")
	ErrUserNotFound          = apperr.NotFound("user_not_found", "user not found")
	ErrUsernameTaken         = apperr.Conflict("username_taken", "username already in use")
	ErrEmailTaken            = apperr.Conflict("email_taken", "email already in use")
	ErrTelegramIDTaken       = apperr.Conflict("telegram_id_taken", "telegram id already in use")
	ErrTelegramUsernameTaken = apperr.Conflict("telegram_username_taken", "telegram username already in use")
	ErrDuplicateUser         = apperr.Conflict("duplicate_user", "a user with these details already exists")
)
