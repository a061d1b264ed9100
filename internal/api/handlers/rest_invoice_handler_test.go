package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ivanblascoverdu/facturacion/internal/api/handlers"
	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/pdf"
	"github.com/ivanblascoverdu/facturacion/internal/services"
	"github.com/ivanblascoverdu/facturacion/internal/store"
	"github.com/ivanblascoverdu/facturacion/internal/utils"
)

func TestRestInvoiceHandler_CreateInvoice_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := newHandlerTestStore()
	mockBilling := new(MockBillingService)
	handler := handlers.NewRestInvoiceHandler(st, mockBilling, pdf.NewRenderer())

	r := gin.New()
	r.POST("/v1/invoice", handler.CreateInvoice)

	patientID := utils.NewShortID()
	serviceID := utils.NewShortID()
	expected := &models.Invoice{
		Base:      models.Base{ID: utils.NewShortID()},
		Number:    "FAC-2024-001",
		PatientID: patientID,
		Total:     121,
		Status:    models.InvoicePending,
	}
	mockBilling.On("CreateInvoice", mock.Anything, patientID,
		[]services.InvoiceItemRequest{{ServiceID: serviceID, Quantity: 2}}, "nota").Return(expected, nil)

	body, _ := json.Marshal(gin.H{
		"patient_id": patientID.String(),
		"items":      []gin.H{{"service_id": serviceID.String(), "quantity": 2}},
		"notes":      "nota",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/invoice", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp models.Invoice
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, expected.Number, resp.Number)
	mockBilling.AssertExpectations(t)
}

func TestRestInvoiceHandler_CreateInvoice_InvalidInput(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := newHandlerTestStore()
	mockBilling := new(MockBillingService)
	handler := handlers.NewRestInvoiceHandler(st, mockBilling, pdf.NewRenderer())

	r := gin.New()
	r.POST("/v1/invoice", handler.CreateInvoice)

	mockBilling.On("CreateInvoice", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("invoice requires at least one item: %w", store.ErrInvalidInput))

	body, _ := json.Marshal(gin.H{"patient_id": utils.NewShortID().String()})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/invoice", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRestInvoiceHandler_MarkPaid_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := newHandlerTestStore()
	mockBilling := new(MockBillingService)
	handler := handlers.NewRestInvoiceHandler(st, mockBilling, pdf.NewRenderer())

	r := gin.New()
	r.POST("/v1/invoice/:id/pay", handler.MarkPaid)

	id := utils.NewShortID()
	mockBilling.On("MarkPaid", mock.Anything, id, "cash").
		Return(nil, fmt.Errorf("invoice %s: %w", id.String(), store.ErrNotFound))

	body, _ := json.Marshal(gin.H{"payment_method": "cash"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/invoice/"+id.String()+"/pay", bytes.NewReader(body))
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	mockBilling.AssertExpectations(t)
}

func TestRestInvoiceHandler_SendReminder_Conflict(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := newHandlerTestStore()
	mockBilling := new(MockBillingService)
	handler := handlers.NewRestInvoiceHandler(st, mockBilling, pdf.NewRenderer())

	r := gin.New()
	r.POST("/v1/invoice/:id/reminder", handler.SendReminder)

	id := utils.NewShortID()
	mockBilling.On("SendReminder", mock.Anything, id).
		Return(nil, fmt.Errorf("invoice %s is paid: %w", id.String(), store.ErrInvalidState))

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/v1/invoice/"+id.String()+"/reminder", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	mockBilling.AssertExpectations(t)
}

func TestRestInvoiceHandler_ListInvoices_StatusFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := newHandlerTestStore()
	mockBilling := new(MockBillingService)
	handler := handlers.NewRestInvoiceHandler(st, mockBilling, pdf.NewRenderer())

	patient, err := st.AddPatient(models.Patient{Name: "María", Email: "maria@example.com"})
	require.NoError(t, err)
	_, err = st.InsertInvoice(models.Invoice{PatientID: patient.ID, IssueDate: time.Now(), Status: models.InvoicePending}, nil)
	require.NoError(t, err)
	_, err = st.InsertInvoice(models.Invoice{PatientID: patient.ID, IssueDate: time.Now(), Status: models.InvoiceOverdue}, nil)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/v1/invoice", handler.ListInvoices)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/invoice?status=overdue", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []models.Invoice `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, models.InvoiceOverdue, resp.Data[0].Status)

	// Unknown status filter is a client error
	w = httptest.NewRecorder()
	req, _ = http.NewRequest("GET", "/v1/invoice?status=bogus", nil)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRestInvoiceHandler_GetInvoicePDF(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := newHandlerTestStore()
	mockBilling := new(MockBillingService)
	handler := handlers.NewRestInvoiceHandler(st, mockBilling, pdf.NewRenderer())

	patient, err := st.AddPatient(models.Patient{Name: "María García", Email: "maria@example.com"})
	require.NoError(t, err)
	inv, err := st.InsertInvoice(models.Invoice{
		PatientID: patient.ID,
		IssueDate: time.Now(),
		DueDate:   time.Now().AddDate(0, 0, 30),
		Status:    models.InvoicePending,
		Items:     []models.InvoiceItem{{Description: "Consulta", Quantity: 1, UnitPrice: 49.59, VATRate: 21, Total: 60}},
		Subtotal:  49.59,
		VATAmount: 10.41,
		Total:     60,
	}, nil)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/v1/invoice/:id/pdf", handler.GetInvoicePDF)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/invoice/"+inv.ID.String()+"/pdf", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF")))
}

func TestRestInvoiceHandler_InvalidIDFormat(t *testing.T) {
	gin.SetMode(gin.TestMode)
	st := newHandlerTestStore()
	handler := handlers.NewRestInvoiceHandler(st, new(MockBillingService), pdf.NewRenderer())

	r := gin.New()
	r.GET("/v1/invoice/:id", handler.GetInvoiceByID)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/v1/invoice/not-a-valid-id", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
