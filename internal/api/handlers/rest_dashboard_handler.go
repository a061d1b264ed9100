package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ivanblascoverdu/facturacion/internal/services"
	"github.com/ivanblascoverdu/facturacion/internal/store"
	"github.com/ivanblascoverdu/facturacion/internal/utils"
)

// RestDashboardHandler handles REST requests for the dashboard: derived KPIs
// and the alert list.
type RestDashboardHandler struct {
	store        *store.Store
	kpiService   services.IKPIService
	alertService services.IAlertService
}

// NewRestDashboardHandler creates a new RestDashboardHandler.
func NewRestDashboardHandler(st *store.Store, kpiService services.IKPIService, alertService services.IAlertService) *RestDashboardHandler {
	return &RestDashboardHandler{
		store:        st,
		kpiService:   kpiService,
		alertService: alertService,
	}
}

// GetKPIs handles GET /v1/dashboard/kpis
func (h *RestDashboardHandler) GetKPIs(c *gin.Context) {
	kpis := h.kpiService.Compute(c.Request.Context(), time.Now())
	c.JSON(http.StatusOK, kpis)
}

// ListAlerts handles GET /v1/dashboard/alerts
func (h *RestDashboardHandler) ListAlerts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.store.Alerts()})
}

// GenerateAlerts handles POST /v1/dashboard/alerts/generate.
// Regenerates the whole alert list from current state and returns it.
func (h *RestDashboardHandler) GenerateAlerts(c *gin.Context) {
	alerts := h.alertService.Generate(c.Request.Context(), time.Now())
	c.JSON(http.StatusOK, gin.H{"data": alerts})
}

// DismissAlert handles POST /v1/dashboard/alerts/:id/dismiss
func (h *RestDashboardHandler) DismissAlert(c *gin.Context) {
	id, err := utils.ParseShortID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid alert ID format"})
		return
	}
	if err := h.store.DismissAlert(id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
