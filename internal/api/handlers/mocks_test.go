package handlers_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/services"
	"github.com/ivanblascoverdu/facturacion/internal/store"
	"github.com/ivanblascoverdu/facturacion/internal/utils"
)

// --- Mocks ---

// MockBillingService
type MockBillingService struct {
	mock.Mock
}

func (m *MockBillingService) CreateInvoice(ctx context.Context, patientID utils.ShortID, items []services.InvoiceItemRequest, notes string) (*models.Invoice, error) {
	args := m.Called(ctx, patientID, items, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockBillingService) CompleteAppointment(ctx context.Context, appointmentID utils.ShortID) (*models.Invoice, error) {
	args := m.Called(ctx, appointmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockBillingService) MarkPaid(ctx context.Context, invoiceID utils.ShortID, paymentMethod string) (*models.Invoice, error) {
	args := m.Called(ctx, invoiceID, paymentMethod)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockBillingService) SendReminder(ctx context.Context, invoiceID utils.ShortID) (*models.Invoice, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

func (m *MockBillingService) UpdateInvoiceStatus(ctx context.Context, invoiceID utils.ShortID, status models.InvoiceStatus) (*models.Invoice, error) {
	args := m.Called(ctx, invoiceID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Invoice), args.Error(1)
}

// MockKPIService
type MockKPIService struct {
	mock.Mock
}

func (m *MockKPIService) Compute(ctx context.Context, now time.Time) models.DashboardKPIs {
	args := m.Called(ctx, now)
	return args.Get(0).(models.DashboardKPIs)
}

// MockAlertService
type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) Generate(ctx context.Context, now time.Time) []models.Alert {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.Alert)
}

// MockImportService
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) ImportPatients(ctx context.Context, rows []services.PatientRow) services.ImportResult {
	args := m.Called(ctx, rows)
	return args.Get(0).(services.ImportResult)
}

func (m *MockImportService) ImportExpenses(ctx context.Context, rows []services.ExpenseRow) services.ImportResult {
	args := m.Called(ctx, rows)
	return args.Get(0).(services.ImportResult)
}

// --- Shared fixtures ---

func newHandlerTestStore() *store.Store {
	return store.New(models.ClinicConfig{
		Name:           "Clínica Test",
		InvoicePrefix:  "FAC",
		DefaultVATRate: 21,
		ReminderDays:   []int{7, 15, 30},
	})
}
