// Package app wires configuration, storage and the HTTP surface into a
// running back office server.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dyvilcenter/backoffice/internal/auth"
	"github.com/dyvilcenter/backoffice/internal/config"
	"github.com/dyvilcenter/backoffice/internal/coupon"
	"github.com/dyvilcenter/backoffice/internal/db"
	"github.com/dyvilcenter/backoffice/internal/http/api"
	"github.com/dyvilcenter/backoffice/internal/ratelimit"
	"github.com/dyvilcenter/backoffice/internal/users"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const shutdownTimeout = 5 * time.Second

// Migrate opens the configured database and runs migrations.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	return db.Migrate(conn.WithContext(ctx))
}

// NewEngine builds the gin engine serving the back office API.
func NewEngine(conn *gorm.DB, cfg config.AppConfig, throttle *ratelimit.Manager) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), api.RequestLogger(cfg.TrustProxy))

	handler := api.NewHandler(
		auth.NewAuthenticator(conn),
		coupon.NewService(conn),
		users.NewService(conn),
		cfg.TrustProxy,
	)
	api.Register(engine, conn, handler, throttle)
	return engine
}

// RunServer migrates the database, seeds the bootstrap administrator and
// serves the API until ctx is cancelled.
func RunServer(ctx context.Context, cfg config.AppConfig) error {
	conn, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return fmt.Errorf("migrate: %w", errMigrate)
	}
	if _, errBootstrap := EnsureBootstrapAdmin(ctx, conn, cfg.Bootstrap); errBootstrap != nil {
		return errBootstrap
	}

	throttle := ratelimit.NewManager(ratelimit.SettingsFromConfig(cfg.Throttle), nil, nil)
	defer func() {
		if errClose := throttle.Close(); errClose != nil {
			log.WithError(errClose).Warn("throttle: close redis client")
		}
	}()

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           NewEngine(conn, cfg, throttle),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := srv.Shutdown(shutdownCtx); errShutdown != nil {
			log.WithError(errShutdown).Warn("server shutdown failed")
		}
	}()

	log.WithFields(log.Fields{"addr": cfg.ListenAddr, "trust_proxy": cfg.TrustProxy}).Info("back office server listening")
	if errServe := srv.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
		return errServe
	}
	log.Info("back office server stopped")
	return nil
}

func openDatabase(cfg config.AppConfig) (*gorm.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	if target, errDescribe := describeDSN(dsn); errDescribe == nil {
		log.WithFields(target.fields()).Info("database: connecting")
	} else {
		log.WithError(errDescribe).Warn("database: dsn not recognised, passing through to driver")
	}
	return db.Open(dsn)
}
