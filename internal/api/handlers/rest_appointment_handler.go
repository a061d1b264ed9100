package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/services"
	"github.com/ivanblascoverdu/facturacion/internal/store"
	"github.com/ivanblascoverdu/facturacion/internal/utils"
)

// RestAppointmentHandler handles REST requests for appointments. Plain status
// changes go through the store; completion goes through the billing service
// because it generates the invoice.
type RestAppointmentHandler struct {
	store          *store.Store
	billingService services.IBillingService
}

// NewRestAppointmentHandler creates a new RestAppointmentHandler.
func NewRestAppointmentHandler(st *store.Store, billingService services.IBillingService) *RestAppointmentHandler {
	return &RestAppointmentHandler{store: st, billingService: billingService}
}

// ListAppointments handles GET /v1/appointment
func (h *RestAppointmentHandler) ListAppointments(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.store.Appointments()})
}

// GetAppointmentByID handles GET /v1/appointment/:id
func (h *RestAppointmentHandler) GetAppointmentByID(c *gin.Context) {
	id, err := utils.ParseShortID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID format"})
		return
	}
	appt, err := h.store.FindAppointment(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// CreateAppointment handles POST /v1/appointment
func (h *RestAppointmentHandler) CreateAppointment(c *gin.Context) {
	var req models.Appointment
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	appt, err := h.store.AddAppointment(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

// UpdateAppointmentStatus handles PUT /v1/appointment/:id/status.
// Completion must go through CompleteAppointment instead; accepting it here
// would change the status without generating the invoice.
func (h *RestAppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	id, err := utils.ParseShortID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID format"})
		return
	}
	var req struct {
		Status models.AppointmentStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !req.Status.Valid() || req.Status == models.AppointmentCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment status"})
		return
	}
	appt, err := h.store.UpdateAppointment(id, func(a *models.Appointment) error {
		a.Status = req.Status
		return nil
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

// CompleteAppointment handles POST /v1/appointment/:id/complete.
// Returns the generated invoice.
func (h *RestAppointmentHandler) CompleteAppointment(c *gin.Context) {
	id, err := utils.ParseShortID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid appointment ID format"})
		return
	}
	inv, err := h.billingService.CompleteAppointment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}
