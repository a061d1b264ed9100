package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/store"
)

// RestClinicHandler handles REST requests for the singleton clinic record.
type RestClinicHandler struct {
	store *store.Store
}

// NewRestClinicHandler creates a new RestClinicHandler.
func NewRestClinicHandler(st *store.Store) *RestClinicHandler {
	return &RestClinicHandler{store: st}
}

// GetClinic handles GET /v1/clinic
func (h *RestClinicHandler) GetClinic(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Clinic())
}

// UpdateClinic handles PUT /v1/clinic. The whole record is replaced; the
// invoice prefix takes effect for subsequently issued invoices only.
func (h *RestClinicHandler) UpdateClinic(c *gin.Context) {
	var req models.ClinicConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.store.UpdateClinic(req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.store.Clinic())
}
