package api

import (
	"strings"

	"github.com/dyvilcenter/backoffice/internal/models"
	"github.com/dyvilcenter/backoffice/internal/users"
	"github.com/gin-gonic/gin"
)

func (h *Handler) getUsers(c *gin.Context, rc RequestContext) (gin.H, error) {
	list, err := h.users.List(c.Request.Context(), rc.Identity, strings.TrimSpace(c.Query("search")))
	if err != nil {
		return nil, err
	}
	return gin.H{"users": list}, nil
}

type createUserRequest struct {
	Username         string        `json:"username"`
	Email            string        `json:"email"`
	Password         string        `json:"password"`
	Role             models.Role   `json:"role"`
	Status           models.Status `json:"status"`
	Credits          int64         `json:"credits"`
	Plan             string        `json:"plan"`
	TelegramID       string        `json:"telegram_id"`
	TelegramUsername string        `json:"telegram_username"`
}

func (h *Handler) createUser(c *gin.Context, rc RequestContext, req createUserRequest) (gin.H, error) {
	res, err := h.users.Create(c.Request.Context(), rc.Identity, users.CreateRequest{
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		Role:             req.Role,
		Status:           req.Status,
		Credits:          req.Credits,
		Plan:             req.Plan,
		TelegramID:       req.TelegramID,
		TelegramUsername: req.TelegramUsername,
		IP:               rc.IP,
	})
	if err != nil {
		return nil, err
	}
	return gin.H{
		"message":        "user created",
		"id":             res.ID,
		"affiliate_code": res.AffiliateCode,
	}, nil
}

type updateUserRequest struct {
	ID               string         `json:"id"`
	Username         *string        `json:"username"`
	Email            *string        `json:"email"`
	Role             *models.Role   `json:"role"`
	Status           *models.Status `json:"status"`
	Credits          *int64         `json:"credits"`
	Plan             *string        `json:"plan"`
	TelegramID       *string        `json:"telegram_id"`
	TelegramUsername *string        `json:"telegram_username"`
	Password         *string        `json:"password"`
}

func (h *Handler) updateUser(c *gin.Context, rc RequestContext, req updateUserRequest) (gin.H, error) {
	err := h.users.Update(c.Request.Context(), rc.Identity, users.UpdateRequest{
		ID:               req.ID,
		Username:         req.Username,
		Email:            req.Email,
		Role:             req.Role,
		Status:           req.Status,
		Credits:          req.Credits,
		Plan:             req.Plan,
		TelegramID:       req.TelegramID,
		TelegramUsername: req.TelegramUsername,
		Password:         req.Password,
	})
	if err != nil {
		return nil, err
	}
	return gin.H{"message": "user updated"}, nil
}

func (h *Handler) deleteUser(c *gin.Context, rc RequestContext, req idRequest) (gin.H, error) {
	if err := h.users.Delete(c.Request.Context(), rc.Identity, req.ID); err != nil {
		return nil, err
	}
	return gin.H{"message": "user deleted"}, nil
}
