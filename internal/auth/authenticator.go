package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dyvilcenter/backoffice/internal/apperr"
	"github.com/dyvilcenter/backoffice/internal/models"
	"github.com/dyvilcenter/backoffice/internal/security"
	"github.com/dyvilcenter/backoffice/internal/settings"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Authenticator issues, validates and revokes back office sessions.
type Authenticator struct {
	db       *gorm.DB
	nowFn    func() time.Time
	newToken func() (string, error)
}

// NewAuthenticator constructs an Authenticator backed by db.
func NewAuthenticator(db *gorm.DB) *Authenticator {
	return &Authenticator{
		db:    db,
		nowFn: func() time.Time { return time.Now().UTC() },
		newToken: func() (string, error) {
			return security.GenerateRandomString(settings.SessionTokenBytes)
		},
	}
}

// WithClock replaces the time source, mainly for tests.
func (a *Authenticator) WithClock(nowFn func() time.Time) *Authenticator {
	if nowFn != nil {
		a.nowFn = nowFn
	}
	return a
}

// LoginRequest carries the inputs of a login call.
type LoginRequest struct {
	Username   string
	Password   string
	CSRFToken  string
	RememberMe bool
	IP         string
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	SessionToken string
	ExpiresAt    time.Time
	User         Identity
}

// Login checks the IP failure budget, verifies credentials and replaces the
// user's session. Every call past validation writes exactly one ledger row,
// except rate-limited calls which write none.
func (a *Authenticator) Login(ctx context.Context, req LoginRequest) (LoginResult, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return LoginResult{}, ErrCredentialsRequired
	}
	if len(req.CSRFToken) < settings.MinCSRFTokenLength {
		return LoginResult{}, ErrInvalidCSRFToken
	}
	ip := strings.TrimSpace(req.IP)
	if ip == "" {
		ip = "unknown"
	}
	now := a.nowFn()

	failures, errCount := a.recentFailures(ctx, ip, now)
	if errCount != nil {
		return LoginResult{}, apperr.Storage("count login attempts", errCount)
	}
	if failures >= settings.MaxFailedLogins {
		log.WithField("ip", ip).Warn("auth: login rate limited")
		return LoginResult{}, ErrRateLimited
	}

	var user models.User
	errFind := a.db.WithContext(ctx).Where("username = ?", username).Take(&user).Error
	if errFind != nil && !errors.Is(errFind, gorm.ErrRecordNotFound) {
		return LoginResult{}, apperr.Storage("find user", errFind)
	}

	var reason *apperr.Error
	switch {
	case errFind != nil:
		security.DummyCompare(req.Password)
		reason = ErrUserNotFound
	case user.Status != models.StatusActive:
		reason = ErrUserInactive
	case !security.CheckPassword(user.Password, req.Password):
		reason = ErrWrongPassword
	case user.Role != models.RoleAdmin:
		reason = ErrAdminOnly
	}
	if reason != nil {
		if errRecord := a.recordAttempt(ctx, a.db, ip, username, false, now); errRecord != nil {
			return LoginResult{}, apperr.Storage("record login attempt", errRecord)
		}
		log.WithFields(log.Fields{"ip": ip, "username": username, "reason": reason.Code}).Warn("auth: login failed")
		return LoginResult{}, reason
	}

	token, errToken := a.newToken()
	if errToken != nil {
		return LoginResult{}, apperr.Storage("generate session token", errToken)
	}
	ttl := settings.SessionTTL
	if req.RememberMe {
		ttl = settings.RememberMeSessionTTL
	}
	expiresAt := now.Add(ttl)

	errTx := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		session := models.UserSession{
			UserID:       user.ID,
			SessionToken: token,
			ExpiresAt:    expiresAt,
			CreatedAt:    now,
		}
		if errUpsert := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"session_token", "expires_at", "created_at"}),
		}).Create(&session).Error; errUpsert != nil {
			return errUpsert
		}
		if errLogin := tx.Model(&models.User{}).Where("id = ?", user.ID).
			Update("last_login", now).Error; errLogin != nil {
			return errLogin
		}
		return a.recordAttempt(ctx, tx, ip, username, true, now)
	})
	if errTx != nil {
		return LoginResult{}, apperr.Storage("create session", errTx)
	}

	log.WithFields(log.Fields{"ip": ip, "user_id": user.ID, "remember_me": req.RememberMe}).Info("auth: login succeeded")
	return LoginResult{
		SessionToken: token,
		ExpiresAt:    expiresAt,
		User:         Identity{UserID: user.ID, Username: user.Username, Role: user.Role},
	}, nil
}
