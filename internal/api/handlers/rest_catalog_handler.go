package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/store"
	"github.com/ivanblascoverdu/facturacion/internal/utils"
)

// RestCatalogHandler handles REST requests for the service catalog and the
// professional roster.
type RestCatalogHandler struct {
	store *store.Store
}

// NewRestCatalogHandler creates a new RestCatalogHandler.
func NewRestCatalogHandler(st *store.Store) *RestCatalogHandler {
	return &RestCatalogHandler{store: st}
}

// ListServices handles GET /v1/service
func (h *RestCatalogHandler) ListServices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.store.Services()})
}

// GetServiceByID handles GET /v1/service/:id
func (h *RestCatalogHandler) GetServiceByID(c *gin.Context) {
	id, err := utils.ParseShortID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid service ID format"})
		return
	}
	svc, err := h.store.FindService(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// CreateService handles POST /v1/service
func (h *RestCatalogHandler) CreateService(c *gin.Context) {
	var req models.Service
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if req.VATRate == 0 {
		req.VATRate = h.store.Clinic().DefaultVATRate
	}
	svc, err := h.store.AddService(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, svc)
}

// ListProfessionals handles GET /v1/professional
func (h *RestCatalogHandler) ListProfessionals(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.store.Professionals()})
}

// CreateProfessional handles POST /v1/professional
func (h *RestCatalogHandler) CreateProfessional(c *gin.Context) {
	var req models.Professional
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	pro, err := h.store.AddProfessional(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pro)
}
