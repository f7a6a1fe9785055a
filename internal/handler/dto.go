package handler

import (
	"strings"
	"time"

	"github.com/xenking/storefront/internal/domain/client"
	"github.com/xenking/storefront/internal/domain/coupon"
	"github.com/xenking/storefront/internal/domain/product"
	"github.com/xenking/storefront/internal/domain/sale"
)

type productResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Slug        string    `json:"slug"`
	Weight      string    `json:"weight"`
	Price       float64   `json:"price"`
	Stock       int       `json:"stock"`
	Category    string    `json:"category"`
	Images      []string  `json:"images"`
	Benefits    []string  `json:"benefits"`
	InStock     bool      `json:"inStock"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (h *Handler) productDTO(p *product.Product) productResponse {
	images := make([]string, len(p.Images))
	for i, img := range p.Images {
		images[i] = h.imageURL(img)
	}
	return productResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Slug:        p.Slug,
		Weight:      p.Weight,
		Price:       p.Price.InexactFloat64(),
		Stock:       p.Stock,
		Category:    p.Category,
		Images:      images,
		Benefits:    p.Benefits,
		InStock:     p.InStock,
		Active:      p.Active,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// imageURL prefixes relative image paths with the configured base URL.
func (h *Handler) imageURL(path string) string {
	if h.imageBaseURL == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(h.imageBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

type clientResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func clientDTO(c *client.Client) clientResponse {
	return clientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		Email:     c.Email,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type couponResponse struct {
	ID              string        `json:"id"`
	Code            string        `json:"code"`
	DiscountPercent float64       `json:"discountPercent"`
	StartsAt        time.Time     `json:"startsAt"`
	ExpiresAt       time.Time     `json:"expiresAt"`
	Active          bool          `json:"active"`
	Status          coupon.Status `json:"status"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

func couponDTO(c *coupon.Coupon, now time.Time) couponResponse {
	return couponResponse{
		ID:              c.ID,
		Code:            c.Code,
		DiscountPercent: c.DiscountPercent.InexactFloat64(),
		StartsAt:        c.StartsAt,
		ExpiresAt:       c.ExpiresAt,
		Active:          c.Active,
		Status:          c.StatusAt(now),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

type saleItemResponse struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unitPrice"`
	Quantity  int     `json:"quantity"`
	Amount    float64 `json:"amount"`
}

type saleResponse struct {
	ID             string             `json:"id"`
	ClientID       *string            `json:"clientId"`
	ClientName     string             `json:"clientName"`
	Items          []saleItemResponse `json:"items"`
	Subtotal       float64            `json:"subtotal"`
	DiscountAmount float64            `json:"discountAmount"`
	CouponCode     string             `json:"couponCode"`
	Total          float64            `json:"total"`
	PaymentMethod  sale.PaymentMethod `json:"paymentMethod"`
	Status         sale.Status        `json:"status"`
	CreatedAt      time.Time          `json:"createdAt"`
}

func saleDTO(s *sale.Sale) saleResponse {
	items := make([]saleItemResponse, len(s.Items))
	for i, li := range s.Items {
		items[i] = saleItemResponse{
			ProductID: li.ProductID,
			Name:      li.Name,
			UnitPrice: li.UnitPrice.InexactFloat64(),
			Quantity:  li.Quantity,
			Amount:    li.Amount().InexactFloat64(),
		}
	}
	return saleResponse{
		ID:             s.ID,
		ClientID:       s.ClientID,
		ClientName:     s.ClientName,
		Items:          items,
		Subtotal:       s.Subtotal.InexactFloat64(),
		DiscountAmount: s.DiscountAmount.InexactFloat64(),
		CouponCode:     s.CouponCode,
		Total:          s.Total.InexactFloat64(),
		PaymentMethod:  s.Payment,
		Status:         s.Status,
		CreatedAt:      s.CreatedAt,
	}
}
