package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dyvilcenter/backoffice/internal/apperr"
	"github.com/dyvilcenter/backoffice/internal/models"
)

func TestValidate_SingleActiveSession(t *testing.T) {
	conn := openTestDB(t)
	seedUser(t, conn, "admin", "admin123", models.RoleAdmin, models.StatusActive)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	a := newTestAuthenticator(conn, &now)
	ctx := context.Background()

	first, err := a.Login(ctx, LoginRequest{Username: "admin", Password: "admin123", CSRFToken: testCSRF, IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := a.Login(ctx, LoginRequest{Username: "admin", Password: "admin123", CSRFToken: testCSRF, IP: "10.0.0.2"})
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	if _, errOld := a.Validate(ctx, first.SessionToken); !errors.Is(errOld, apperr.ErrInvalidSession) {
		t.Fatalf("expected first token invalid, got %v", errOld)
	}
	identity, errNew := a.Validate(ctx, second.SessionToken)
	if errNew != nil {
		t.Fatalf("expected second token valid, got %v", errNew)
	}
	if identity.Username != "admin" || !identity.IsAdmin() {
		t.Fatalf("unexpected identity: %+v", identity)
	}

	var count int64
	if errCount := conn.Model(&models.UserSession{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected one session row, got %d", count)
	}
}

func TestValidate_RejectsExpiredAndInactive(t *testing.T) {
	conn := openTestDB(t)
	user := seedUser(t, conn, "admin", "admin123", models.RoleAdmin, models.StatusActive)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	a := newTestAuthenticator(conn, &now)
	ctx := context.Background()

	res, err := a.Login(ctx, LoginRequest{Username: "admin", Password: "admin123", CSRFToken: testCSRF, IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, errEmpty := a.Validate(ctx, ""); !errors.Is(errEmpty, apperr.ErrInvalidSession) {
		t.Fatalf("expected empty token invalid, got %v", errEmpty)
	}

	if errUpdate := conn.Model(&models.User{}).Where("id = ?", user.ID).Update("status", models.StatusInactive).Error; errUpdate != nil {
		t.Fatalf("deactivate: %v", errUpdate)
	}
	if _, errInactive := a.Validate(ctx, res.SessionToken); !errors.Is(errInactive, apperr.ErrInvalidSession) {
		t.Fatalf("expected inactive user rejected, got %v", errInactive)
	}
	if errUpdate := conn.Model(&models.User{}).Where("id = ?", user.ID).Update("status", models.StatusActive).Error; errUpdate != nil {
		t.Fatalf("reactivate: %v", errUpdate)
	}
	if _, errActive := a.Validate(ctx, res.SessionToken); errActive != nil {
		t.Fatalf("expected valid session, got %v", errActive)
	}

	now = now.Add(7*24*time.Hour + time.Second)
	if _, errExpired := a.Validate(ctx, res.SessionToken); !errors.Is(errExpired, apperr.ErrInvalidSession) {
		t.Fatalf("expected expired session rejected, got %v", errExpired)
	}
}

func TestValidateAdmin_DeniesRegularUser(t *testing.T) {
	conn := openTestDB(t)
	user := seedUser(t, conn, "plain", "secret", models.RoleUser, models.StatusActive)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	a := newTestAuthenticator(conn, &now)

	session := models.UserSession{UserID: user.ID, SessionToken: "user-token", ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	if errCreate := conn.Create(&session).Error; errCreate != nil {
		t.Fatalf("create session: %v", errCreate)
	}

	if _, err := a.Validate(context.Background(), "user-token"); err != nil {
		t.Fatalf("expected plain validate ok, got %v", err)
	}
	_, err := a.ValidateAdmin(context.Background(), "user-token")
	if !errors.Is(err, apperr.ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}
	if apperr.KindOf(err) != apperr.KindForbidden {
		t.Fatalf("expected forbidden kind, got %s", apperr.KindOf(err))
	}
}

func TestLogoutAndLogoutAll(t *testing.T) {
	conn := openTestDB(t)
	seedUser(t, conn, "admin", "admin123", models.RoleAdmin, models.StatusActive)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	a := newTestAuthenticator(conn, &now)
	ctx := context.Background()

	res, err := a.Login(ctx, LoginRequest{Username: "admin", Password: "admin123", CSRFToken: testCSRF, IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if errLogout := a.Logout(ctx, res.SessionToken); errLogout != nil {
		t.Fatalf("logout: %v", errLogout)
	}
	if errAgain := a.Logout(ctx, res.SessionToken); !errors.Is(errAgain, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", errAgain)
	}
	if _, errValidate := a.Validate(ctx, res.SessionToken); !errors.Is(errValidate, apperr.ErrInvalidSession) {
		t.Fatalf("expected logged out token invalid, got %v", errValidate)
	}

	res, err = a.Login(ctx, LoginRequest{Username: "admin", Password: "admin123", CSRFToken: testCSRF, IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	count, errAll := a.LogoutAll(ctx, res.SessionToken)
	if errAll != nil {
		t.Fatalf("logout all: %v", errAll)
	}
	if count != 1 {
		t.Fatalf("expected 1 invalidated session, got %d", count)
	}
	if _, errMissing := a.LogoutAll(ctx, res.SessionToken); !errors.Is(errMissing, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", errMissing)
	}
	if errEmpty := a.Logout(ctx, " "); !errors.Is(errEmpty, ErrTokenRequired) {
		t.Fatalf("expected ErrTokenRequired, got %v", errEmpty)
	}
}
