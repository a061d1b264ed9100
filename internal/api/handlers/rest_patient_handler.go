package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/store"
	"github.com/ivanblascoverdu/facturacion/internal/utils"
)

// RestPatientHandler handles REST requests for patients.
type RestPatientHandler struct {
	store *store.Store
}

// NewRestPatientHandler creates a new RestPatientHandler.
func NewRestPatientHandler(st *store.Store) *RestPatientHandler {
	return &RestPatientHandler{store: st}
}

// ListPatients handles GET /v1/patient
func (h *RestPatientHandler) ListPatients(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.store.Patients()})
}

// GetPatientByID handles GET /v1/patient/:id
func (h *RestPatientHandler) GetPatientByID(c *gin.Context) {
	id, err := utils.ParseShortID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID format"})
		return
	}
	patient, err := h.store.FindPatient(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}

// CreatePatient handles POST /v1/patient
func (h *RestPatientHandler) CreatePatient(c *gin.Context) {
	var req models.Patient
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	patient, err := h.store.AddPatient(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, patient)
}

// UpdatePatient handles PUT /v1/patient/:id
func (h *RestPatientHandler) UpdatePatient(c *gin.Context) {
	id, err := utils.ParseShortID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid patient ID format"})
		return
	}
	var upd models.PatientUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	patient, err := h.store.UpdatePatient(id, upd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, patient)
}
