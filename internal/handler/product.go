package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/xenking/storefront/internal/domain/product"
)

type productRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Slug        string   `json:"slug"`
	Weight      string   `json:"weight"`
	Price       float64  `json:"price" binding:"gt=0"`
	Stock       int      `json:"stock" binding:"gte=0"`
	Category    string   `json:"category"`
	Images      []string `json:"images"`
	Benefits    []string `json:"benefits"`
}

func (r productRequest) toDomain() product.Product {
	return product.Product{
		Name:        r.Name,
		Description: r.Description,
		Slug:        r.Slug,
		Weight:      r.Weight,
		Price:       decimal.NewFromFloat(r.Price),
		Stock:       r.Stock,
		Category:    r.Category,
		Images:      r.Images,
		Benefits:    r.Benefits,
	}
}

// ListProducts handles GET /api/products.
func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.catalog.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]productResponse, len(products))
	for i := range products {
		out[i] = h.productDTO(&products[i])
	}
	c.JSON(http.StatusOK, out)
}

// GetProduct handles GET /api/products/:ref, where ref is an id or a slug.
func (h *Handler) GetProduct(c *gin.Context) {
	p, err := h.catalog.Get(c.Request.Context(), c.Param("ref"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.productDTO(p))
}

// CreateProduct handles POST /api/admin/products.
func (h *Handler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest("invalid product", err))
		return
	}
	p, err := h.catalog.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, h.productDTO(p))
}

// UpdateProduct handles PUT /api/admin/products/:id.
func (h *Handler) UpdateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest("invalid product", err))
		return
	}
	p, err := h.catalog.Update(c.Request.Context(), c.Param("id"), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.productDTO(p))
}

// DeleteProduct handles DELETE /api/admin/products/:id. Products are
// deactivated, never removed.
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Produto removido"})
}
