package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dyvilcenter/backoffice/internal/config"
	"github.com/dyvilcenter/backoffice/internal/db"
	"github.com/dyvilcenter/backoffice/internal/models"
	"github.com/dyvilcenter/backoffice/internal/security"
)

func TestHasAdminInitialized(t *testing.T) {
	dsn := "file:" + filepath.Join(t.TempDir(), "backoffice-test.db")
	conn, err := db.Open(dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	initialized, err := HasAdminInitialized(context.Background(), conn)
	if err != nil {
		t.Fatalf("HasAdminInitialized: %v", err)
	}
	if initialized {
		t.Fatalf("expected initialized=false before migrate")
	}

	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	user := models.User{ID: "u-1", Username: "plain", Password: "x", Role: models.RoleUser, Status: models.StatusActive, Plan: "free", AffiliateCode: "0001"}
	if errCreate := conn.Create(&user).Error; errCreate != nil {
		t.Fatalf("create user: %v", errCreate)
	}
	initialized, err = HasAdminInitialized(context.Background(), conn)
	if err != nil {
		t.Fatalf("HasAdminInitialized after migrate: %v", err)
	}
	if initialized {
		t.Fatalf("expected initialized=false with only regular users")
	}

	admin := models.User{ID: "a-1", Username: "admin", Password: "x", Role: models.RoleAdmin, Status: models.StatusActive, Plan: "vip", AffiliateCode: "0002"}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		t.Fatalf("create admin: %v", errCreate)
	}
	initialized, err = HasAdminInitialized(context.Background(), conn)
	if err != nil {
		t.Fatalf("HasAdminInitialized after seed: %v", err)
	}
	if !initialized {
		t.Fatalf("expected initialized=true after admin created")
	}
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	conn, err := db.Open("file:" + filepath.Join(t.TempDir(), "backoffice-test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	ctx := context.Background()

	created, err := EnsureBootstrapAdmin(ctx, conn, config.BootstrapAdmin{})
	if err != nil || created {
		t.Fatalf("expected no-op without credentials, got created=%v err=%v", created, err)
	}

	creds := config.BootstrapAdmin{Username: "admin", Password: "admin123"}
	created, err = EnsureBootstrapAdmin(ctx, conn, creds)
	if err != nil || !created {
		t.Fatalf("expected admin created, got created=%v err=%v", created, err)
	}

	var admin models.User
	if errFind := conn.Where("username = ?", "admin").Take(&admin).Error; errFind != nil {
		t.Fatalf("find admin: %v", errFind)
	}
	if admin.Role != models.RoleAdmin || admin.Status != models.StatusActive || admin.Plan != "vip" {
		t.Fatalf("unexpected admin: %+v", admin)
	}
	if !security.CheckPassword(admin.Password, "admin123") {
		t.Fatalf("expected bcrypt hash of bootstrap password")
	}

	created, err = EnsureBootstrapAdmin(ctx, conn, creds)
	if err != nil || created {
		t.Fatalf("expected second call to be a no-op, got created=%v err=%v", created, err)
	}
}
