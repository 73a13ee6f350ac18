// Package api exposes the back office action endpoint over HTTP.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/dyvilcenter/backoffice/internal/ratelimit"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Register mounts /healthz and the /api action endpoint on r.
func Register(r *gin.Engine, db *gorm.DB, h *Handler, throttle *ratelimit.Manager) {
	if r == nil || h == nil {
		return
	}

	r.GET("/healthz", healthz(db))

	group := r.Group("/api")
	group.Use(throttleMiddleware(throttle, h.trustProxy))
	group.GET("", h.Dispatch)
	group.POST("", h.Dispatch)
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		sqlDB, errDB := db.DB()
		if errDB != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if errPing := sqlDB.PingContext(ctx); errPing != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
