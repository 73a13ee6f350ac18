package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dyvilcenter/backoffice/internal/apperr"
	"github.com/dyvilcenter/backoffice/internal/ratelimit"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const actionContextKey = "apiAction"

var errTooManyRequests = apperr.New(apperr.KindRateLimited, "too_many_requests", "too many requests, slow down")

// RequestLogger logs one line per request through logrus, using the same
// client address as the throttle and the login limiter.
func RequestLogger(trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := log.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      clientIP(c, trustProxy),
		}
		if action := c.GetString(actionContextKey); action != "" {
			fields["action"] = action
		}
		entry := log.WithFields(fields)
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("http request")
		case c.Writer.Status() == http.StatusTooManyRequests:
			entry.Warn("http request")
		default:
			entry.Debug("http request")
		}
	}
}

// throttleMiddleware rejects clients above the per-second request budget.
func throttleMiddleware(manager *ratelimit.Manager, trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !manager.Enabled() {
			c.Next()
			return
		}
		res, err := manager.AllowIP(c.Request.Context(), clientIP(c, trustProxy))
		if err != nil {
			log.WithError(err).Warn("throttle: check failed, allowing request")
			c.Next()
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
		if !res.Allowed {
			retry := int(time.Until(res.Reset).Seconds() + 0.999)
			if retry < 1 {
				retry = 1
			}
			c.Header("Retry-After", strconv.Itoa(retry))
			_, body := errorBody(errTooManyRequests)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, body)
			return
		}
		c.Next()
	}
}
