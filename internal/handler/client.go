package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xenking/storefront/internal/domain/client"
)

type clientRequest struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email" binding:"omitempty,email"`
}

func (r clientRequest) toDomain() client.Client {
	return client.Client{Name: r.Name, Phone: r.Phone, Address: r.Address, Email: r.Email}
}

// ListClients handles GET /api/admin/clients.
func (h *Handler) ListClients(c *gin.Context) {
	clients, err := h.clients.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]clientResponse, len(clients))
	for i := range clients {
		out[i] = clientDTO(&clients[i])
	}
	c.JSON(http.StatusOK, out)
}

// CreateClient handles POST /api/admin/clients.
func (h *Handler) CreateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest("invalid client", err))
		return
	}
	cl, err := h.clients.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, clientDTO(cl))
}

// UpdateClient handles PUT /api/admin/clients/:id. Empty fields keep their
// stored value.
func (h *Handler) UpdateClient(c *gin.Context) {
	var req clientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, badRequest("invalid client", err))
		return
	}
	cl, err := h.clients.Update(c.Request.Context(), c.Param("id"), req.toDomain())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, clientDTO(cl))
}

// DeleteClient handles DELETE /api/admin/clients/:id.
func (h *Handler) DeleteClient(c *gin.Context) {
	if err := h.clients.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cliente removido"})
}
