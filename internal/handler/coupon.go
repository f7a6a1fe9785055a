package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/coupon"
)

type couponRequest struct {
	Code            string     `json:"code"`
	DiscountPercent float64    `json:"discountPercent"`
	StartsAt        *time.Time `json:"startsAt"`
	ExpiresAt       *time.Time `json:"expiresAt"`
	Active          *bool      `json:"active"`
}

func (r couponRequest) toInput() coupon.Input {
	return coupon.Input{
		Code:            r.Code,
		DiscountPercent: decimal.NewFromFloat(r.DiscountPercent),
		StartsAt:        r.StartsAt,
		ExpiresAt:       r.ExpiresAt,
		Active:          r.Active,
	}
}

// ValidateCoupon handles GET /api/coupons/:code/validate. Unlike checkout,
// every failure is reported as 400 with {"valid":false,"error":...}.
func (h *Handler) ValidateCoupon(c *gin.Context) {
	cp, err := h.validator.Validate(c.Request.Context(), c.Param("code"))
	if err != nil {
		status, body := classify(err)
		if status >= http.StatusInternalServerError {
			respondError(c, err)
			return
		}
		msg := body.Error
		if msg == "" || status == http.StatusNotFound {
			msg = coupon.ErrNotFound.Error()
		}
		c.JSON(http.StatusBadRequest, gin.H{"valid": false, "error": msg})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"valid":  true,
		"coupon": couponDTO(cp, h.coupons.Now()),
	})
}

// ListCoupons handles GET /api/admin/coupons.
func (h *Handler) ListCoupons(c *gin.Context) {
	coupons, err := h.coupons.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	now := h.coupons.Now()
	out := make([]couponResponse, len(coupons))
	for i := range coupons {
		out[i] = couponDTO(&coupons[i], now)
	}
	c.JSON(http.StatusOK, out)
}

// CreateCoupon handles POST /api/admin/coupons.
func (h *Handler) CreateCoupon(c *gin.Context) {
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest("invalid coupon", err))
		return
	}
	cp, err := h.coupons.Create(c.Request.Context(), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, couponDTO(cp, h.coupons.Now()))
}

// UpdateCoupon handles PUT /api/admin/coupons/:id.
func (h *Handler) UpdateCoupon(c *gin.Context) {
	var req couponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest("invalid coupon", err))
		return
	}
	cp, err := h.coupons.Update(c.Request.Context(), c.Param("id"), req.toInput())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, couponDTO(cp, h.coupons.Now()))
}

// DeleteCoupon handles DELETE /api/admin/coupons/:id.
func (h *Handler) DeleteCoupon(c *gin.Context) {
	if err := h.coupons.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cupom removido"})
}
