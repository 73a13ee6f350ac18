package api

import (
	"fmt"

	"github.com/dyvilcenter/backoffice/internal/auth"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	CSRFToken  string `json:"csrf_token"`
	RememberMe bool   `json:"remember_me"`
}

func (h *Handler) login(c *gin.Context, rc RequestContext, req loginRequest) (gin.H, error) {
	res, err := h.auth.Login(c.Request.Context(), auth.LoginRequest{
		Username:   req.Username,
		Password:   req.Password,
		CSRFToken:  req.CSRFToken,
		RememberMe: req.RememberMe,
		IP:         rc.IP,
	})
	if err != nil {
		return nil, err
	}
	return gin.H{
		"message":       "login successful",
		"session_token": res.SessionToken,
		"expires_at":    res.ExpiresAt,
		"user":          res.User,
	}, nil
}

type sessionTokenRequest struct {
	SessionToken string `json:"session_token"`
}

// token prefers the body token and falls back to the bearer header.
func (r sessionTokenRequest) token(rc RequestContext) string {
	if r.SessionToken != "" {
		return r.SessionToken
	}
	return rc.BearerToken
}

func (h *Handler) validateSession(c *gin.Context, rc RequestContext, req sessionTokenRequest) (gin.H, error) {
	identity, err := h.auth.ValidateAdmin(c.Request.Context(), req.token(rc))
	if err != nil {
		return nil, err
	}
	return gin.H{"user": identity}, nil
}

func (h *Handler) logout(c *gin.Context, rc RequestContext, req sessionTokenRequest) (gin.H, error) {
	if err := h.auth.Logout(c.Request.Context(), req.token(rc)); err != nil {
		return nil, err
	}
	return gin.H{"message": "logout successful"}, nil
}

func (h *Handler) logoutAll(c *gin.Context, rc RequestContext, req sessionTokenRequest) (gin.H, error) {
	count, err := h.auth.LogoutAll(c.Request.Context(), req.token(rc))
	if err != nil {
		return nil, err
	}
	return gin.H{
		"message":              fmt.Sprintf("logged out of %d session(s)", count),
		"sessions_invalidated": count,
	}, nil
}
