package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xenking/storefront/internal/domain/order"
)

type saleRequest struct {
	ClientID      string     `json:"clientId"`
	Items         []saleLine `json:"items"`
	PaymentMethod string     `json:"paymentMethod"`
	CouponCode    string     `json:"couponCode"`
	Status        string     `json:"status"`
}

type saleStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListSales handles GET /api/admin/sales.
func (h *Handler) ListSales(c *gin.Context) {
	sales, err := h.sales.Recent(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]saleResponse, len(sales))
	for i := range sales {
		out[i] = saleDTO(&sales[i])
	}
	c.JSON(http.StatusOK, out)
}

// RecordSale handles POST /api/admin/sales. Stock, pricing and coupon rules
// are the same as for checkout.
func (h *Handler) RecordSale(c *gin.Context) {
	var req saleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest("invalid sale", err))
		return
	}
	s, err := h.orders.RecordSale(c.Request.Context(), order.SaleRequest{
		ClientID:      req.ClientID,
		Lines:         toLines(req.Items),
		PaymentMethod: req.PaymentMethod,
		CouponCode:    req.CouponCode,
		Status:        req.Status,
	})
	if err != nil {
		respondOrderError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saleDTO(s))
}

// SetSaleStatus handles PATCH /api/admin/sales/:id/status.
func (h *Handler) SetSaleStatus(c *gin.Context) {
	var req saleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest("invalid status", err))
		return
	}
	s, err := h.sales.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saleDTO(s))
}
