package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/dyvilcenter/backoffice/internal/apperr"
	"github.com/dyvilcenter/backoffice/internal/models"
	"gorm.io/gorm"
)

// sessionRow is the join of a session and its user.
type sessionRow struct {
	UserID   string      `gorm:"column:user_id"`
	Username string      `gorm:"column:username"`
	Role     models.Role `gorm:"column:role"`
}

// Validate resolves an unexpired session of an active user. It never writes.
func (a *Authenticator) Validate(ctx context.Context, token string) (Identity, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Identity{}, apperr.ErrInvalidSession
	}

	var rows []sessionRow
	errFind := a.db.WithContext(ctx).
		Table("user_sessions").
		Select("user_sessions.user_id, users.username, users.role").
		Joins("JOIN users ON users.id = user_sessions.user_id").
		Where("user_sessions.session_token = ? AND user_sessions.expires_at > ? AND users.status = ?",
			token, a.nowFn(), models.StatusActive).
		Limit(1).
		Scan(&rows).Error
	if errFind != nil {
		return Identity{}, apperr.Storage("validate session", errFind)
	}
	if len(rows) == 0 {
		return Identity{}, apperr.ErrInvalidSession
	}
	return Identity{UserID: rows[0].UserID, Username: rows[0].Username, Role: rows[0].Role}, nil
}

// ValidateAdmin validates the token and requires the admin role.
func (a *Authenticator) ValidateAdmin(ctx context.Context, token string) (Identity, error) {
	identity, err := a.Validate(ctx, token)
	if err != nil {
		return Identity{}, err
	}
	if errRole := RequireAdmin(identity); errRole != nil {
		return Identity{}, errRole
	}
	return identity, nil
}

// Logout deletes the session row holding token.
func (a *Authenticator) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrTokenRequired
	}
	res := a.db.WithContext(ctx).Where("session_token = ?", token).Delete(&models.UserSession{})
	if res.Error != nil {
		return apperr.Storage("delete session", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// LogoutAll deletes every session of the user owning token and returns the count.
func (a *Authenticator) LogoutAll(ctx context.Context, token string) (int64, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, ErrTokenRequired
	}

	var session models.UserSession
	if errFind := a.db.WithContext(ctx).Where("session_token = ?", token).Take(&session).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return 0, ErrSessionNotFound
		}
		return 0, apperr.Storage("find session", errFind)
	}

	res := a.db.WithContext(ctx).Where("user_id = ?", session.UserID).Delete(&models.UserSession{})
	if res.Error != nil {
		return 0, apperr.Storage("delete sessions", res.Error)
	}
	return res.RowsAffected, nil
}
