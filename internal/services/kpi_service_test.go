package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanblascoverdu/facturacion/internal/models"
	"github.com/ivanblascoverdu/facturacion/internal/store"
)

// mid-month reference instant used by all KPI tests
var kpiNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func insertPaidInvoice(t *testing.T, st *store.Store, total float64, paidAt time.Time, items ...models.InvoiceItem) {
	t.Helper()
	patient := mustAddPatient(t, st)
	inv, err := st.InsertInvoice(models.Invoice{
		PatientID: patient.ID,
		Items:     items,
		Total:     total,
		IssueDate: paidAt.AddDate(0, 0, -5),
		Status:    models.InvoicePaid,
		PaidDate:  &paidAt,
	}, nil)
	require.NoError(t, err)
	_ = inv
}

func TestKPIs_EmptyStoreIsAllZeros(t *testing.T) {
	st := testStore()
	svc := NewKPIService(st)

	kpis := svc.Compute(context.Background(), kpiNow)

	assert.Zero(t, kpis.CurrentMonthIncome)
	assert.Zero(t, kpis.PreviousMonthIncome)
	assert.Zero(t, kpis.IncomeChange)
	assert.Zero(t, kpis.CashFlow)
	assert.Zero(t, kpis.CashFlowChange)
	assert.Zero(t, kpis.PendingInvoices)
	assert.Zero(t, kpis.NoShowRate)
	assert.Equal(t, float64(8), kpis.NoShowTarget)
	assert.Empty(t, kpis.TopServices)
	// Empty store: income falls back to 1, expenses are 0
	assert.InDelta(t, 100, kpis.AverageMargin, 0.001)
	assert.Zero(t, kpis.MarginChange)
}

func TestKPIs_IncomeBucketedByPaidDate(t *testing.T) {
	st := testStore()
	svc := NewKPIService(st)

	insertPaidInvoice(t, st, 121, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC))
	insertPaidInvoice(t, st, 60.50, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC))
	// Paid two months ago: outside both windows
	insertPaidInvoice(t, st, 500, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	kpis := svc.Compute(context.Background(), kpiNow)
	assert.InDelta(t, 121, kpis.CurrentMonthIncome, 0.001)
	assert.InDelta(t, 60.50, kpis.PreviousMonthIncome, 0.001)
	assert.InDelta(t, (121-60.50)/60.50*100, kpis.IncomeChange, 0.001)
}

func TestKPIs_PendingInvoices(t *testing.T) {
	st := testStore()
	svc := NewKPIService(st)
	patient := mustAddPatient(t, st)

	// Pending, issued 10 days ago
	_, err := st.InsertInvoice(models.Invoice{
		PatientID: patient.ID,
		Total:     100,
		IssueDate: kpiNow.AddDate(0, 0, -10),
		DueDate:   kpiNow.AddDate(0, 0, 20),
		Status:    models.InvoicePending,
	}, nil)
	require.NoError(t, err)

	// Overdue, issued 30 days ago
	_, err = st.InsertInvoice(models.Invoice{
		PatientID: patient.ID,
		Total:     50,
		IssueDate: kpiNow.AddDate(0, 0, -30),
		DueDate:   kpiNow.AddDate(0, 0, -5),
		Status:    models.InvoiceOverdue,
	}, nil)
	require.NoError(t, err)

	// Cancelled: not pending
	_, err = st.InsertInvoice(models.Invoice{
		PatientID: patient.ID,
		Total:     999,
		IssueDate: kpiNow.AddDate(0, 0, -3),
		Status:    models.InvoiceCancelled,
	}, nil)
	require.NoError(t, err)

	kpis := svc.Compute(context.Background(), kpiNow)
	assert.Equal(t, 2, kpis.PendingInvoices)
	assert.InDelta(t, 150, kpis.PendingInvoicesAmount, 0.001)
	assert.InDelta(t, 20, kpis.AverageDaysPending, 0.001)
}

func TestKPIs_NoShowRate(t *testing.T) {
	st := testStore()
	svc := NewKPIService(st)
	patient := mustAddPatient(t, st)
	catalog := mustAddService(t, st, "Consulta", 60, 21)
	pro, err := st.AddProfessional(models.Professional{Name: "Dra. Ruiz"})
	require.NoError(t, err)

	addAppt := func(status models.AppointmentStatus) {
		_, err := st.AddAppointment(models.Appointment{
			PatientID:      patient.ID,
			ProfessionalID: pro.ID,
			ServiceID:      catalog.ID,
			Date:           time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC),
			Status:         status,
		})
		require.NoError(t, err)
	}
	for i := 0; i < 8; i++ {
		addAppt(models.AppointmentScheduled)
	}
	addAppt(models.AppointmentNoShow)
	addAppt(models.AppointmentNoShow)

	kpis := svc.Compute(context.Background(), kpiNow)
	assert.InDelta(t, 20, kpis.NoShowRate, 0.001)
}

func TestKPIs_MarginGuardWithZeroIncome(t *testing.T) {
	st := testStore()
	svc := NewKPIService(st)
	_, err := st.AddExpense(models.Expense{
		Description: "Material",
		Amount:      100,
		Category:    models.ExpenseSupplies,
		Date:        time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	kpis := svc.Compute(context.Background(), kpiNow)
	// Income clamps to 1: (1 - 100) / 1 * 100
	assert.InDelta(t, -9900, kpis.AverageMargin, 0.001)
	assert.InDelta(t, -100, kpis.CashFlow, 0.001)
}

func TestKPIs_TopServicesGroupedByDescription(t *testing.T) {
	st := testStore()
	svc := NewKPIService(st)
	paidAt := time.Date(2024, 6, 8, 0, 0, 0, 0, time.UTC)

	insertPaidInvoice(t, st, 60, paidAt, models.InvoiceItem{Description: "Consulta", Quantity: 1, Total: 60})
	insertPaidInvoice(t, st, 90, paidAt, models.InvoiceItem{Description: "Consulta", Quantity: 1, Total: 90})
	insertPaidInvoice(t, st, 45, paidAt, models.InvoiceItem{Description: "Fisioterapia", Quantity: 1, Total: 45})
	// Paid last month: excluded from the ranking
	insertPaidInvoice(t, st, 500, time.Date(2024, 5, 8, 0, 0, 0, 0, time.UTC),
		models.InvoiceItem{Description: "Plan nutricional", Quantity: 1, Total: 500})

	kpis := svc.Compute(context.Background(), kpiNow)
	require.Len(t, kpis.TopServices, 2)
	assert.Equal(t, "Consulta", kpis.TopServices[0].Name)
	assert.InDelta(t, 150, kpis.TopServices[0].Revenue, 0.001)
	assert.Equal(t, 2, kpis.TopServices[0].Count)
	assert.Equal(t, "Fisioterapia", kpis.TopServices[1].Name)
}

func TestKPIs_CashFlowChangeGuards(t *testing.T) {
	st := testStore()
	svc := NewKPIService(st)

	// Current month only: previous cash flow is zero, so change must stay zero
	insertPaidInvoice(t, st, 200, time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC))

	kpis := svc.Compute(context.Background(), kpiNow)
	assert.InDelta(t, 200, kpis.CashFlow, 0.001)
	assert.Zero(t, kpis.CashFlowChange)
	assert.Zero(t, kpis.IncomeChange)
	assert.Zero(t, kpis.ExpensesChange)
}
