package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivanblascoverdu/facturacion/internal/services"
)

// RestImportHandler handles bulk import requests. The frontend does the file
// parsing and column mapping; these endpoints receive already-mapped rows.
type RestImportHandler struct {
	importService services.IImportService
}

// NewRestImportHandler creates a new RestImportHandler.
func NewRestImportHandler(importService services.IImportService) *RestImportHandler {
	return &RestImportHandler{importService: importService}
}

// ImportPatients handles POST /v1/import/patients
func (h *RestImportHandler) ImportPatients(c *gin.Context) {
	var rows []services.PatientRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: expected JSON array of patient rows"})
		return
	}
	result := h.importService.ImportPatients(c.Request.Context(), rows)
	c.JSON(http.StatusOK, result)
}

// ImportExpenses handles POST /v1/import/expenses
func (h *RestImportHandler) ImportExpenses(c *gin.Context) {
	var rows []services.ExpenseRow
	if err := c.ShouldBindJSON(&rows); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: expected JSON array of expense rows"})
		return
	}
	result := h.importService.ImportExpenses(c.Request.Context(), rows)
	c.JSON(http.StatusOK, result)
}
