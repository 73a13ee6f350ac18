package app

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/dyvilcenter/backoffice/internal/config"
	"github.com/dyvilcenter/backoffice/internal/db"
	"github.com/dyvilcenter/backoffice/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

func TestNewEngine_ServesHealthzAndAPI(t *testing.T) {
	gin.SetMode(gin.TestMode)
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "engine-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	throttle := ratelimit.NewManager(ratelimit.Settings{}, nil, nil)
	engine := NewEngine(conn, config.AppConfig{}, throttle)

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected healthz 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api?action=getCoupons", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected api 200, got %d", rec.Code)
	}
	if body := rec.Body.String(); body == "" {
		t.Fatalf("expected json body")
	}
}

func TestOpenDatabase_MissingDSN(t *testing.T) {
	if _, err := openDatabase(config.AppConfig{}); err == nil {
		t.Fatalf("expected error without dsn")
	}
}
