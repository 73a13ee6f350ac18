package auth

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dyvilcenter/backoffice/internal/apperr"
	"github.com/dyvilcenter/backoffice/internal/db"
	"github.com/dyvilcenter/backoffice/internal/models"
	"github.com/dyvilcenter/backoffice/internal/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var testCSRF = strings.Repeat("c", 32)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "backoffice-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func seedUser(t *testing.T, conn *gorm.DB, username, password string, role models.Role, status models.Status) models.User {
	t.Helper()
	hash, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	user := models.User{
		ID:            uuid.NewString(),
		Username:      username,
		Password:      hash,
		Role:          role,
		Status:        status,
		Plan:          "free",
		AffiliateCode: uuid.NewString()[:4],
	}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	return user
}

func newTestAuthenticator(conn *gorm.DB, now *time.Time) *Authenticator {
	return NewAuthenticator(conn).WithClock(func() time.Time { return *now })
}

func TestLogin_SessionExpiryFollowsRememberMe(t *testing.T) {
	conn := openTestDB(t)
	seedUser(t, conn, "admin", "admin123", models.RoleAdmin, models.StatusActive)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	a := newTestAuthenticator(conn, &now)
	ctx := context.Background()

	short, err := a.Login(ctx, LoginRequest{Username: "admin", Password: "admin123", CSRFToken: testCSRF, IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !short.ExpiresAt.Equal(now.Add(7 * 24 * time.Hour)) {
		t.Fatalf("expected 7 day expiry, got %s", short.ExpiresAt)
	}
	if len(short.SessionToken) != 64 {
		t.Fatalf("expected 64 char token, got %d", len(short.SessionToken))
	}
	if short.User.Username != "admin" || short.User.Role != models.RoleAdmin {
		t.Fatalf("unexpected user summary: %+v", short.User)
	}

	long, err := a.Login(ctx, LoginRequest{Username: "admin", Password: "admin123", CSRFToken: testCSRF, RememberMe: true, IP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("login remember me: %v", err)
	}
	if !long.ExpiresAt.Equal(now.Add(30 * 24 * time.Hour)) {
		t.Fatalf("expected 30 day expiry, got %s", long.ExpiresAt)
	}

	var stored models.UserSession
	if errFind := conn.Where("session_token = ?", long.SessionToken).Take(&stored).Error; errFind != nil {
		t.Fatalf("find session: %v", errFind)
	}
	if !stored.ExpiresAt.Equal(long.ExpiresAt) {
		t.Fatalf("expected stored expiry %s, got %s", long.ExpiresAt, stored.ExpiresAt)
	}

	var user models.User
	if errFind := conn.Where("username = ?", "admin").Take(&user).Error; errFind != nil {
		t.Fatalf("find user: %v", errFind)
	}
	if user.LastLogin == nil || !user.LastLogin.Equal(now) {
		t.Fatalf("expected last_login=%s, got %v", now, user.LastLogin)
	}
}

func TestLogin_RateLimitsFailingIP(t *testing.T) {
	conn := openTestDB(t)
	seedUser(t, conn, "admin", "admin123", models.RoleAdmin, models.StatusActive)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	a := newTestAuthenticator(conn, &now)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := a.Login(ctx, LoginRequest{Username: "admin", Password: "wrong", CSRFToken: testCSRF, IP: "10.0.0.1"})
		if !errors.Is(err, ErrWrongPassword) {
			t.Fatalf("attempt %d: expected ErrWrongPassword, got %v", i, err)
		}
		now = now.Add(time.Minute)
	}

	_, err := a.Login(ctx, LoginRequest{Username: "admin", Password: "admin123", CSRFToken: testCSRF, IP: "10.0.0.1"})
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if apperr.KindOf(err) != apperr.KindRateLimited {
		t.Fatalf("expected rate limited kind, got %s", apperr.KindOf(err))
	}

	var count int64
	if errCount := conn.Model(&models.LoginAttempt{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 5 {
		t.Fatalf("expected rate limited call to record nothing, got %d rows", count)
	}

	if _, errOther := a.Login(ctx, LoginRequest{Username: "admin", Password: "admin123", CSRFToken: testCSRF, IP: "10.0.0.2"}); errOther != nil {
		t.Fatalf("expected other IP to log in, got %v", errOther)
	}

	now = now.Add(15 * time.Minute)
	if _, errLater := a.Login(ctx, LoginRequest{Username: "admin", Password: "admin123", CSRFToken: testCSRF, IP: "10.0.0.1"}); errLater != nil {
		t.Fatalf("expected login after window to succeed, got %v", errLater)
	}
}

func TestLogin_FailureReasonsRecordFailedAttempts(t *testing.T) {
	conn := openTestDB(t)
	seedUser(t, conn, "admin", "admin123", models.RoleAdmin, models.StatusActive)
	seedUser(t, conn, "sleepy", "admin123", models.RoleAdmin, models.StatusInactive)
	seedUser(t, conn, "plain", "admin123", models.RoleUser, models.StatusActive)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	a := newTestAuthenticator(conn, &now)
	ctx := context.Background()

	cases := []struct {
		username string
		password string
		want     error
	}{
		{"ghost", "admin123", ErrUserNotFound},
		{"sleepy", "admin123", ErrUserInactive},
		{"admin", "nope", ErrWrongPassword},
		{"plain", "admin123", ErrAdminOnly},
	}
	for _, tc := range cases {
		_, err := a.Login(ctx, LoginRequest{Username: tc.username, Password: tc.password, CSRFToken: testCSRF, IP: "10.0.0.9"})
		if !errors.Is(err, tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.username, tc.want, err)
		}
		if apperr.KindOf(err) != apperr.KindAuth {
			t.Fatalf("%s: expected auth kind, got %s", tc.username, apperr.KindOf(err))
		}
	}

	var failed int64
	if errCount := conn.Model(&models.LoginAttempt{}).Where("success = ?", false).Count(&failed).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if failed != int64(len(cases)) {
		t.Fatalf("expected %d failed rows, got %d", len(cases), failed)
	}

	var sessions int64
	if errCount := conn.Model(&models.UserSession{}).Count(&sessions).Error; errCount != nil {
		t.Fatalf("count sessions: %v", errCount)
	}
	if sessions != 0 {
		t.Fatalf("expected no sessions, got %d", sessions)
	}
}

func TestLogin_ValidatesInput(t *testing.T) {
	conn := openTestDB(t)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	a := newTestAuthenticator(conn, &now)
	ctx := context.Background()

	if _, err := a.Login(ctx, LoginRequest{Username: " ", Password: "x", CSRFToken: testCSRF}); !errors.Is(err, ErrCredentialsRequired) {
		t.Fatalf("expected ErrCredentialsRequired, got %v", err)
	}
	if _, err := a.Login(ctx, LoginRequest{Username: "admin", Password: "x", CSRFToken: "short"}); !errors.Is(err, ErrInvalidCSRFToken) {
		t.Fatalf("expected ErrInvalidCSRFToken, got %v", err)
	}

	var count int64
	if errCount := conn.Model(&models.LoginAttempt{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 0 {
		t.Fatalf("expected no ledger rows for invalid input, got %d", count)
	}
}
