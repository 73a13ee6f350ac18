package db

import (
	"fmt"

	"github.com/dyvilcenter/backoffice/internal/models"
	"gorm.io/gorm"
)

// Migrate runs database migrations for the current dialect.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return fmt.Errorf("db: nil connection")
	}
	switch DialectName(conn) {
	case DialectSQLite, DialectMySQL, DialectPostgres, "":
	default:
		return fmt.Errorf("db: unsupported dialect: %s", DialectName(conn))
	}

	if errAutoMigrate := conn.AutoMigrate(
		&models.User{},
		&models.UserSession{},
		&models.LoginAttempt{},
		&models.Coupon{},
		&models.CreditHistory{},
	); errAutoMigrate != nil {
		return fmt.Errorf("db: migrate: %w", errAutoMigrate)
	}

	if DialectName(conn) == DialectPostgres {
		if errCheck := conn.Exec(`
			DO $$
			BEGIN
				IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_users_credits_non_negative') THEN
					ALTER TABLE users ADD CONSTRAINT chk_users_credits_non_negative CHECK (credits >= 0);
				END IF;
			END $$;
		`).Error; errCheck != nil {
			return fmt.Errorf("db: add credits check: %w", errCheck)
		}
	}
	return nil
}
