package auth

import (
	"github.com/dyvilcenter/backoffice/internal/apperr"
	"github.com/dyvilcenter/backoffice/internal/models"
)

// Identity is the user a session token resolves to.
type Identity struct {
	UserID   string      `json:"id"`
	Username string      `json:"username"`
	Role     models.Role `json:"role"`
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == models.RoleAdmin
}

// RequireAdmin returns apperr.ErrAccessDenied unless the identity is an admin.
func RequireAdmin(identity Identity) error {
	if !identity.IsAdmin() {
		return apperr.ErrAccessDenied
	}
	return nil
}
