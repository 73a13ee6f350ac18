package api

import (
	"github.com/dyvilcenter/backoffice/internal/auth"
	"github.com/dyvilcenter/backoffice/internal/coupon"
	"github.com/dyvilcenter/backoffice/internal/users"
)

// Handler serves the action endpoint.
type Handler struct {
	auth       *auth.Authenticator
	coupons    *coupon.Service
	users      *users.Service
	trustProxy bool
	routes     map[Action]route
}

// NewHandler wires the services into the dispatch table.
func NewHandler(authenticator *auth.Authenticator, coupons *coupon.Service, userService *users.Service, trustProxy bool) *Handler {
	h := &Handler{
		auth:       authenticator,
		coupons:    coupons,
		users:      userService,
		trustProxy: trustProxy,
	}
	h.routes = map[Action]route{
		ActionLogin:           {accessPublic, typed(h.login)},
		ActionValidateSession: {accessPublic, typed(h.validateSession)},
		ActionLogout:          {accessPublic, typed(h.logout)},
		ActionLogoutAll:       {accessPublic, typed(h.logoutAll)},
		ActionUseCoupon:       {accessSession, typed(h.useCoupon)},
		ActionCreateCoupons:   {accessAdmin, typed(h.createCoupons)},
		ActionDeleteCoupon:    {accessAdmin, typed(h.deleteCoupon)},
		ActionGetCoupons:      {accessAdmin, h.getCoupons},
		ActionGetUsers:        {accessAdmin, h.getUsers},
		ActionCreateUser:      {accessAdmin, typed(h.createUser)},
		ActionUpdateUser:      {accessAdmin, typed(h.updateUser)},
		ActionDeleteUser:      {accessAdmin, typed(h.deleteUser)},
	}
	return h
}
