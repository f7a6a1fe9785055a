package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xenking/storefront/internal/domain/auth"
	"github.com/xenking/storefront/pkg/httpmiddleware"
)

// NewRouter builds the gin engine serving /api. Back-office routes under
// /api/admin require an admin API key and, when keys is not nil, are counted
// per validated key.
func NewRouter(h *Handler, a Authenticator, keys CallerLimiter) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(labelRoute)
	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorBody{Error: "route not found"})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
	})

	api := r.Group("/api")
	api.GET("/products", h.ListProducts)
	api.GET("/products/:ref", h.GetProduct)
	api.GET("/coupons/:code/validate", h.ValidateCoupon)
	api.POST("/orders", h.PlaceOrder)

	admin := api.Group("/admin", RequireAPIKey(a, auth.ScopeAdmin))
	if keys != nil {
		admin.Use(LimitAPIKey(keys))
	}
	admin.POST("/products", h.CreateProduct)
	admin.PUT("/products/:id", h.UpdateProduct)
	admin.DELETE("/products/:id", h.DeleteProduct)

	admin.GET("/clients", h.ListClients)
	admin.POST("/clients", h.CreateClient)
	admin.PUT("/clients/:id", h.UpdateClient)
	admin.DELETE("/clients/:id", h.DeleteClient)

	admin.GET("/coupons", h.ListCoupons)
	admin.POST("/coupons", h.CreateCoupon)
	admin.PUT("/coupons/:id", h.UpdateCoupon)
	admin.DELETE("/coupons/:id", h.DeleteCoupon)

	admin.GET("/sales", h.ListSales)
	admin.POST("/sales", h.RecordSale)
	admin.PATCH("/sales/:id/status", h.SetSaleStatus)

	return r
}

// labelRoute publishes the matched route template to the outer logging and
// tracing middlewares and to the otelhttp metric labels.
func labelRoute(c *gin.Context) {
	route := c.FullPath()
	if route == "" {
		c.Next()
		return
	}
	ctx := c.Request.Context()
	httpmiddleware.SetRoute(ctx, route)
	if l, ok := otelhttp.LabelerFromContext(ctx); ok {
		l.Add(attribute.String("http.route", route))
	}
	c.Next()
}
