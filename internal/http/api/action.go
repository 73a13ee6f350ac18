package api

import (
	"errors"
	"io"
	"strings"

	"github.com/dyvilcenter/backoffice/internal/apperr"
	"github.com/gin-gonic/gin"
)

// Action names an operation of the /api endpoint.
type Action string

// Supported actions.
const (
	ActionLogin           Action = "login"
	ActionValidateSession Action = "validateSession"
	ActionLogout          Action = "logout"
	ActionLogoutAll       Action = "logoutAll"
	ActionUseCoupon       Action = "useCoupon"
	ActionCreateCoupons   Action = "createCoupons"
	ActionDeleteCoupon    Action = "deleteCoupon"
	ActionGetCoupons      Action = "getCoupons"
	ActionGetUsers        Action = "getUsers"
	ActionCreateUser      Action = "createUser"
	ActionUpdateUser      Action = "updateUser"
	ActionDeleteUser      Action = "deleteUser"
)

// access is the session requirement of an action.
type access int

const (
	accessPublic  access = iota // token, if any, travels in the body
	accessSession               // any active session via bearer header
	accessAdmin                 // admin session via bearer header
)

type handlerFunc func(c *gin.Context, rc RequestContext) (gin.H, error)

type route struct {
	access access
	handle handlerFunc
}

var (
	errUnsupportedAction = apperr.Validation("unsupported_action", "unsupported action")
	errInvalidJSON       = apperr.Validation("invalid_json", "invalid json body")
)

// typed adapts a handler taking its own request struct to the dispatch table.
func typed[T any](fn func(c *gin.Context, rc RequestContext, req T) (gin.H, error)) handlerFunc {
	return func(c *gin.Context, rc RequestContext) (gin.H, error) {
		req, err := bindBody[T](c)
		if err != nil {
			return nil, err
		}
		return fn(c, rc, req)
	}
}

// bindBody decodes an optional JSON body. An empty body yields the zero value.
func bindBody[T any](c *gin.Context) (T, error) {
	var req T
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return req, nil
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return req, nil
		}
		return req, errInvalidJSON
	}
	return req, nil
}

// Dispatch resolves the action query parameter and runs its handler.
func (h *Handler) Dispatch(c *gin.Context) {
	action := Action(strings.TrimSpace(c.Query("action")))
	c.Set(actionContextKey, string(action))

	rt, ok := h.routes[action]
	if !ok {
		writeError(c, action, errUnsupportedAction)
		return
	}

	rc := newRequestContext(c, h.trustProxy)
	if rt.access != accessPublic {
		if rc.BearerToken == "" {
			writeError(c, action, apperr.ErrMissingAuthorization)
			return
		}
		validate := h.auth.Validate
		if rt.access == accessAdmin {
			validate = h.auth.ValidateAdmin
		}
		identity, errAuth := validate(c.Request.Context(), rc.BearerToken)
		if errAuth != nil {
			writeError(c, action, errAuth)
			return
		}
		rc.Identity = identity
	}

	body, err := rt.handle(c, rc)
	if err != nil {
		writeError(c, action, err)
		return
	}
	writeSuccess(c, body)
}
