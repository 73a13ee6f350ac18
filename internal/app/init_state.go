package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/dyvilcenter/backoffice/internal/config"
	"github.com/dyvilcenter/backoffice/internal/models"
	"github.com/dyvilcenter/backoffice/internal/users"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HasAdminInitialized reports whether the system has at least one admin account.
func HasAdminInitialized(ctx context.Context, conn *gorm.DB) (bool, error) {
	if conn == nil {
		return false, fmt.Errorf("nil db")
	}
	if !conn.Migrator().HasTable(&models.User{}) {
		return false, nil
	}
	count, errCount := users.NewService(conn).CountAdmins(ctx)
	if errCount != nil {
		return false, errCount
	}
	return count > 0, nil
}

// EnsureBootstrapAdmin creates the configured administrator when no admin
// exists yet. It reports whether an account was created.
func EnsureBootstrapAdmin(ctx context.Context, conn *gorm.DB, creds config.BootstrapAdmin) (bool, error) {
	initialized, err := HasAdminInitialized(ctx, conn)
	if err != nil {
		return false, err
	}
	if initialized {
		return false, nil
	}
	username := strings.TrimSpace(creds.Username)
	if username == "" || creds.Password == "" {
		log.Warn("bootstrap: no administrator exists and no bootstrap credentials are configured")
		return false, nil
	}

	admin, errCreate := users.NewService(conn).CreateAdmin(ctx, username, creds.Password)
	if errCreate != nil {
		return false, fmt.Errorf("bootstrap admin: %w", errCreate)
	}
	log.WithFields(log.Fields{"user_id": admin.ID, "username": admin.Username}).Info("bootstrap: administrator created")
	return true, nil
}
