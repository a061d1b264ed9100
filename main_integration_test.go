package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanblascoverdu/facturacion/internal/api"
	"github.com/ivanblascoverdu/facturacion/internal/config"
	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/store"
)

// setupIntegrationRouter wires the full API against a fresh in-memory store.
// No external services are involved.
func setupIntegrationRouter() (*gin.Engine, *store.Store) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		InvoicePrefix:       "FAC",
		DefaultVATRate:      21,
		ReminderDays:        []int{7, 15, 30},
		InvoiceDueDays:      30,
		RateLimitBucketSize: 1000,
		RateLimitRefillRate: 1000,
	}
	st := store.New(models.ClinicConfig{
		Name:           "Clínica Salud Alicante",
		InvoicePrefix:  cfg.InvoicePrefix,
		DefaultVATRate: cfg.DefaultVATRate,
		ReminderDays:   cfg.ReminderDays,
	})
	return api.SetupRouter(cfg, st), st
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}
	w := httptest.NewRecorder()
	req, err := http.NewRequest(method, path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func TestIntegration_AppointmentToPaidInvoiceFlow(t *testing.T) {
	r, _ := setupIntegrationRouter()

	// Create patient
	w := doJSON(t, r, "POST", "/v1/patient", gin.H{
		"name":  "María García",
		"email": "maria@example.com",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var patient models.Patient
	decode(t, w, &patient)

	// Create professional and service
	w = doJSON(t, r, "POST", "/v1/professional", gin.H{"name": "Dra. Ruiz", "specialty": "Fisioterapia"})
	require.Equal(t, http.StatusCreated, w.Code)
	var pro models.Professional
	decode(t, w, &pro)

	w = doJSON(t, r, "POST", "/v1/service", gin.H{"name": "Fisioterapia", "price": 45.0, "vat_rate": 21.0})
	require.Equal(t, http.StatusCreated, w.Code)
	var svc models.Service
	decode(t, w, &svc)

	// Book appointment
	w = doJSON(t, r, "POST", "/v1/appointment", gin.H{
		"patient_id":      patient.ID.String(),
		"professional_id": pro.ID.String(),
		"service_id":      svc.ID.String(),
		"date":            time.Now().Format(time.RFC3339),
		"start_time":      "09:00",
		"end_time":        "09:45",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var appt models.Appointment
	decode(t, w, &appt)
	assert.Equal(t, models.AppointmentScheduled, appt.Status)

	// Complete it: this generates the invoice
	w = doJSON(t, r, "POST", "/v1/appointment/"+appt.ID.String()+"/complete", nil)
	require.Equal(t, http.StatusCreated, w.Code)
	var inv models.Invoice
	decode(t, w, &inv)
	assert.Equal(t, "FAC-"+time.Now().Format("2006")+"-001", inv.Number)
	assert.Equal(t, models.InvoicePending, inv.Status)
	assert.InDelta(t, 45, inv.Total, 0.01)
	assert.InDelta(t, inv.Subtotal+inv.VATAmount, inv.Total, 0.01)

	// Completing twice conflicts
	w = doJSON(t, r, "POST", "/v1/appointment/"+appt.ID.String()+"/complete", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// Pay the invoice
	w = doJSON(t, r, "POST", "/v1/invoice/"+inv.ID.String()+"/pay", gin.H{"payment_method": "card"})
	require.Equal(t, http.StatusOK, w.Code)
	var paid models.Invoice
	decode(t, w, &paid)
	assert.Equal(t, models.InvoicePaid, paid.Status)
	require.NotNil(t, paid.PaidDate)

	// Reminder on a paid invoice conflicts
	w = doJSON(t, r, "POST", "/v1/invoice/"+inv.ID.String()+"/reminder", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	// KPIs reflect the payment
	w = doJSON(t, r, "GET", "/v1/dashboard/kpis", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var kpis models.DashboardKPIs
	decode(t, w, &kpis)
	assert.InDelta(t, 45, kpis.CurrentMonthIncome, 0.01)
	assert.Zero(t, kpis.PendingInvoices)
}

func TestIntegration_ManualInvoiceAndAlerts(t *testing.T) {
	r, st := setupIntegrationRouter()

	w := doJSON(t, r, "POST", "/v1/patient", gin.H{"name": "Antonio Pérez", "email": "antonio@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	var patient models.Patient
	decode(t, w, &patient)

	w = doJSON(t, r, "POST", "/v1/service", gin.H{"name": "Consulta", "price": 121.0, "vat_rate": 21.0})
	require.Equal(t, http.StatusCreated, w.Code)
	var svc models.Service
	decode(t, w, &svc)

	// Manual invoice with two units
	w = doJSON(t, r, "POST", "/v1/invoice", gin.H{
		"patient_id": patient.ID.String(),
		"items":      []gin.H{{"service_id": svc.ID.String(), "quantity": 2}},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var inv models.Invoice
	decode(t, w, &inv)
	assert.InDelta(t, 242, inv.Total, 0.01)
	assert.InDelta(t, 200, inv.Subtotal, 0.01)

	// Force it overdue, then generate alerts
	w = doJSON(t, r, "PUT", "/v1/invoice/"+inv.ID.String()+"/status", gin.H{"status": "overdue"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, r, "POST", "/v1/dashboard/alerts/generate", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data []models.Alert `json:"data"`
	}
	decode(t, w, &resp)

	var overdueAlert *models.Alert
	for i := range resp.Data {
		if resp.Data[i].Title == "Facturas vencidas" {
			overdueAlert = &resp.Data[i]
		}
	}
	require.NotNil(t, overdueAlert, "expected an overdue invoices alert")
	assert.Equal(t, models.AlertWarning, overdueAlert.Type)
	assert.Len(t, st.Alerts(), len(resp.Data))

	// Dismiss it
	w = doJSON(t, r, "POST", "/v1/dashboard/alerts/"+overdueAlert.ID.String()+"/dismiss", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestIntegration_BulkImportAndClinicUpdate(t *testing.T) {
	r, _ := setupIntegrationRouter()

	// Partial import: one bad row
	w := doJSON(t, r, "POST", "/v1/import/patients", []gin.H{
		{"name": "Lucía Fernández", "email": "lucia@example.com"},
		{"name": "", "email": "sin-nombre@example.com"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var result struct {
		Imported int `json:"imported"`
		Errors   []struct {
			Row    int    `json:"row"`
			Reason string `json:"reason"`
		} `json:"errors"`
	}
	decode(t, w, &result)
	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)

	// Update clinic record
	w = doJSON(t, r, "PUT", "/v1/clinic", gin.H{
		"name":             "Clínica Nueva",
		"invoice_prefix":   "INV",
		"default_vat_rate": 21,
		"reminder_days":    []int{7, 15, 30},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var clinic models.ClinicConfig
	decode(t, w, &clinic)
	assert.Equal(t, "Clínica Nueva", clinic.Name)
	assert.Equal(t, "INV", clinic.InvoicePrefix)
}
