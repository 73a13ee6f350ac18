package api

import (
	"strings"

	"github.com/dyvilcenter/backoffice/internal/auth"
	"github.com/gin-gonic/gin"
)

// RequestContext is built once per request and handed to every action handler.
type RequestContext struct {
	IP          string
	BearerToken string
	Identity    auth.Identity // Set for actions that require a session.
}

func newRequestContext(c *gin.Context, trustProxy bool) RequestContext {
	return RequestContext{
		IP:          clientIP(c, trustProxy),
		BearerToken: bearerToken(c.GetHeader("Authorization")),
	}
}

// clientIP returns the first X-Forwarded-For entry when proxies are trusted,
// otherwise the peer address.
func clientIP(c *gin.Context, trustProxy bool) string {
	if trustProxy {
		if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
			first, _, _ := strings.Cut(forwarded, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
	}
	return c.RemoteIP()
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if len(header) < len("Bearer ") || !strings.EqualFold(header[:len("Bearer ")], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[len("Bearer "):])
}
