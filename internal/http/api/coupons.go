package api

import (
	"fmt"

	"github.com/dyvilcenter/backoffice/internal/coupon"
	"github.com/gin-gonic/gin"
)

type useCouponRequest struct {
	Code string `json:"code"`
}

func (h *Handler) useCoupon(c *gin.Context, rc RequestContext, req useCouponRequest) (gin.H, error) {
	added, err := h.coupons.Redeem(c.Request.Context(), rc.Identity, req.Code)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"message":       fmt.Sprintf("coupon redeemed, %d credits added", added),
		"credits_added": added,
	}, nil
}

type createCouponsRequest struct {
	Credits      int64 `json:"credits"`
	Quantity     *int  `json:"quantity"`
	ValidityDays *int  `json:"validity_days"`
}

func (h *Handler) createCoupons(c *gin.Context, rc RequestContext, req createCouponsRequest) (gin.H, error) {
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	codes, err := h.coupons.Create(c.Request.Context(), rc.Identity, coupon.CreateRequest{
		Credits:      req.Credits,
		Quantity:     quantity,
		ValidityDays: req.ValidityDays,
	})
	if err != nil {
		return nil, err
	}
	return gin.H{
		"message": fmt.Sprintf("created %d coupons", len(codes)),
		"codes":   codes,
	}, nil
}

type idRequest struct {
	ID string `json:"id"`
}

func (h *Handler) deleteCoupon(c *gin.Context, rc RequestContext, req idRequest) (gin.H, error) {
	if err := h.coupons.Delete(c.Request.Context(), rc.Identity, req.ID); err != nil {
		return nil, err
	}
	return gin.H{"message": "coupon deleted"}, nil
}

func (h *Handler) getCoupons(c *gin.Context, rc RequestContext) (gin.H, error) {
	coupons, stats, err := h.coupons.List(c.Request.Context(), rc.Identity)
	if err != nil {
		return nil, err
	}
	return gin.H{"coupons": coupons, "stats": stats}, nil
}
