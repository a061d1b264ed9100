package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/pdf"
	"github.com/ivanblascoverdu/facturacion/internal/services"
	"github.com/ivanblascoverdu/facturacion/internal/store"
	"github.com/ivanblascoverdu/facturacion/internal/utils"
)

// RestInvoiceHandler handles REST requests for invoices. All lifecycle
// transitions go through the billing service; reads go straight to the store.
type RestInvoiceHandler struct {
	store          *store.Store
	billingService services.IBillingService
	pdfRenderer    *pdf.Renderer
}

// NewRestInvoiceHandler creates a new RestInvoiceHandler.
func NewRestInvoiceHandler(st *store.Store, billingService services.IBillingService, pdfRenderer *pdf.Renderer) *RestInvoiceHandler {
	return &RestInvoiceHandler{
		store:          st,
		billingService: billingService,
		pdfRenderer:    pdfRenderer,
	}
}

// ListInvoices handles GET /v1/invoice. An optional status filter narrows the
// result (e.g. ?status=overdue).
func (h *RestInvoiceHandler) ListInvoices(c *gin.Context) {
	invoices := h.store.Invoices()
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.InvoiceStatus(statusStr)
		if !status.Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice status filter"})
			return
		}
		filtered := invoices[:0]
		for _, inv := range invoices {
			if inv.Status == status {
				filtered = append(filtered, inv)
			}
		}
		invoices = filtered
	}
	c.JSON(http.StatusOK, gin.H{"data": invoices})
}

// GetInvoiceByID handles GET /v1/invoice/:id
func (h *RestInvoiceHandler) GetInvoiceByID(c *gin.Context) {
	id, err := utils.ParseShortID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID format"})
		return
	}
	inv, err := h.store.FindInvoice(id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// CreateInvoice handles POST /v1/invoice
func (h *RestInvoiceHandler) CreateInvoice(c *gin.Context) {
	var req struct {
		PatientID utils.ShortID                 `json:"patient_id"`
		Items     []services.InvoiceItemRequest `json:"items"`
		Notes     string                        `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	inv, err := h.billingService.CreateInvoice(c.Request.Context(), req.PatientID, req.Items, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

// MarkPaid handles POST /v1/invoice/:id/pay
func (h *RestInvoiceHandler) MarkPaid(c *gin.Context) {
	id, err := utils.ParseShortID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID format"})
		return
	}
	var req struct {
		PaymentMethod string `json:"payment_method"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	inv, err := h.billingService.MarkPaid(c.Request.Context(), id, req.PaymentMethod)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// SendReminder handles POST /v1/invoice/:id/reminder
func (h *RestInvoiceHandler) SendReminder(c *gin.Context) {
	id, err := utils.ParseShortID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID format"})
		return
	}
	inv, err := h.billingService.SendReminder(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// UpdateStatus handles PUT /v1/invoice/:id/status
func (h *RestInvoiceHandler) UpdateStatus(c *gin.Context) {
	id, err := utils.ParseShortID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID format"})
		return
	}
	var req struct {
		Status models.InvoiceStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	inv, err := h.billingService.UpdateInvoiceStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

// GetInvoicePDF handles GET /v1/invoice/:id/pdf
func (h *RestInvoiceHandler) GetInvoicePDF(c *gin.Context) {
	id, err := utils.ParseShortID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID format"})
		return
	}
	inv, err := h.store.FindInvoice(id)
	if err != nil {
		respondError(c, err)
		return
	}
	patient, err := h.store.FindPatient(inv.PatientID)
	if err != nil {
		respondError(c, err)
		return
	}
	doc, err := h.pdfRenderer.Render(inv, patient, h.store.Clinic())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render invoice PDF"})
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s.pdf", inv.Number))
	c.Data(http.StatusOK, "application/pdf", doc)
}
